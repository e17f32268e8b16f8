package rqlite

import (
	"database/sql"
	"fmt"
	"strings"
)

// Binding maps one named field of T onto the matching result column.
type Binding[T any] struct {
	name string
	set  func(dst *T, c Cell) error
}

// Name returns the field name matched against column names.
func (b Binding[T]) Name() string { return b.name }

// Field binds a non-nullable field. A NULL cell fails with
// ErrNullIntoNonNullable.
func Field[T, V any](name string, conv func(Cell) (V, error), ptr func(*T) *V) Binding[T] {
	return Binding[T]{
		name: name,
		set: func(dst *T, c Cell) error {
			if c.Value.IsNull() {
				return ErrNullIntoNonNullable
			}
			v, err := conv(c)
			if err != nil {
				return err
			}
			*ptr(dst) = v
			return nil
		},
	}
}

// NullField binds an sql.Null field. A NULL cell leaves Valid false.
func NullField[T, V any](name string, conv func(Cell) (V, error), ptr func(*T) *sql.Null[V]) Binding[T] {
	return Binding[T]{
		name: name,
		set: func(dst *T, c Cell) error {
			if c.Value.IsNull() {
				*ptr(dst) = sql.Null[V]{}
				return nil
			}
			v, err := conv(c)
			if err != nil {
				return err
			}
			*ptr(dst) = sql.Null[V]{V: v, Valid: true}
			return nil
		},
	}
}

// PointerField binds a pointer field. A NULL cell leaves the pointer nil.
func PointerField[T, V any](name string, conv func(Cell) (V, error), ptr func(*T) **V) Binding[T] {
	return Binding[T]{
		name: name,
		set: func(dst *T, c Cell) error {
			if c.Value.IsNull() {
				*ptr(dst) = nil
				return nil
			}
			v, err := conv(c)
			if err != nil {
				return err
			}
			*ptr(dst) = &v
			return nil
		},
	}
}

// Schema describes how rows become values of T. A Schema is immutable once
// built and may be shared between goroutines.
type Schema[T any] struct {
	fields  []Binding[T]
	strict  bool
	coercer *Coercer
}

// NewSchema returns a lenient schema over the given fields. Fields with no
// matching column keep their zero value and unmatched columns are ignored.
func NewSchema[T any](fields ...Binding[T]) *Schema[T] {
	return &Schema[T]{
		fields:  append([]Binding[T](nil), fields...),
		coercer: DefaultCoercer,
	}
}

// Strict returns a copy of s that fails when a field matches no column or
// more than one column.
func (s *Schema[T]) Strict() *Schema[T] {
	cp := *s
	cp.strict = true
	return &cp
}

// WithCoercer returns a copy of s that resolves declared types with c.
func (s *Schema[T]) WithCoercer(c *Coercer) *Schema[T] {
	cp := *s
	cp.coercer = c
	return &cp
}

// IsStrict reports whether s rejects missing and ambiguous columns.
func (s *Schema[T]) IsStrict() bool { return s.strict }

// Fields returns the field names in declaration order.
func (s *Schema[T]) Fields() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

// resolve finds the column index for each field; -1 marks no match. The
// first column that case-insensitively equals the field name wins.
func (s *Schema[T]) resolve(columns []string) ([]int, error) {
	idx := make([]int, len(s.fields))
	for fi, f := range s.fields {
		idx[fi] = -1
		for ci, col := range columns {
			if !strings.EqualFold(col, f.name) {
				continue
			}
			if idx[fi] < 0 {
				idx[fi] = ci
				if !s.strict {
					break
				}
				continue
			}
			return nil, &ColumnError{
				Column: col,
				Field:  f.name,
				Err:    fmt.Errorf("%w: %q and %q", ErrAmbiguousColumn, columns[idx[fi]], col),
			}
		}
		if idx[fi] < 0 && s.strict {
			return nil, &ColumnError{Field: f.name, Err: ErrMissingColumn}
		}
	}
	return idx, nil
}

// MapRow builds one T from a single row.
func (s *Schema[T]) MapRow(columns, types []string, row []Value) (T, error) {
	idx, err := s.resolve(columns)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.mapRow(idx, columns, types, row)
}

// MapRows builds one T per row of rs, in row order. The result is empty but
// non-nil when rs has no rows.
func (s *Schema[T]) MapRows(rs ResultSet) ([]T, error) {
	idx, err := s.resolve(rs.Columns)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(rs.Values))
	for i, row := range rs.Values {
		v, err := s.mapRow(idx, rs.Columns, rs.Types, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Schema[T]) mapRow(idx []int, columns, types []string, row []Value) (T, error) {
	var out, zero T
	for fi, f := range s.fields {
		ci := idx[fi]
		if ci < 0 {
			continue
		}
		if ci >= len(row) || ci >= len(types) {
			return zero, &ColumnError{
				Column: columns[ci],
				Field:  f.name,
				Err: fmt.Errorf("%w: column %d of %d, row has %d cells and %d types",
					ErrShapeMismatch, ci, len(columns), len(row), len(types)),
			}
		}

		cell := Cell{Column: columns[ci], DeclaredType: types[ci], Value: row[ci]}
		aff, ok := s.coercer.Affinity(cell.DeclaredType)
		if !ok {
			return zero, &ColumnError{
				Column:       cell.Column,
				DeclaredType: cell.DeclaredType,
				Field:        f.name,
				Value:        cell.Value,
				Err:          ErrUnsupportedType,
			}
		}
		cell.Affinity = aff

		if err := f.set(&out, cell); err != nil {
			return zero, &ColumnError{
				Column:       cell.Column,
				DeclaredType: cell.DeclaredType,
				Field:        f.name,
				Value:        cell.Value,
				Err:          err,
			}
		}
	}
	return out, nil
}
