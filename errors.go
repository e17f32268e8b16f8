package rqlite

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery indicates an empty or invalid SQL statement.
	ErrInvalidQuery = errors.New("query is invalid")

	// ErrInvalidParam indicates a parameter whose value cannot be encoded for its kind.
	ErrInvalidParam = errors.New("parameter is invalid")

	// ErrNilTransport is returned by New when no Transport is configured.
	ErrNilTransport = errors.New("transport cannot be nil")

	// ErrMalformedResponse signals a response body that is not a valid rqlite result.
	ErrMalformedResponse = errors.New("response is malformed")

	// ErrNoResultSet means the response carried no result set for the statement.
	ErrNoResultSet = errors.New("response contains no result set")

	// ErrMultipleResultSets means the response carried more than one result set.
	// Only single-statement, single-result queries are supported.
	ErrMultipleResultSets = errors.New("response contains more than one result set")

	// ErrRemoteQuery matches any *QueryError reported by the database.
	ErrRemoteQuery = errors.New("database reported an error")

	// ErrUnsupportedType means a column's declared type has no coercion entry.
	ErrUnsupportedType = errors.New("unsupported declared column type")

	// ErrTypeMismatch means a cell value does not fit the column's declared type
	// or the target field's type.
	ErrTypeMismatch = errors.New("value does not match column or field type")

	// ErrNullIntoNonNullable means a NULL cell was mapped to a field that cannot hold absence.
	ErrNullIntoNonNullable = errors.New("null value for non-nullable field")

	// ErrShapeMismatch means a row or the types list is shorter than the column list.
	ErrShapeMismatch = errors.New("row shape does not match columns")

	// ErrMissingColumn is returned in strict mode when a field matches no column.
	ErrMissingColumn = errors.New("no column matches field")

	// ErrAmbiguousColumn is returned in strict mode when a field matches more than one column.
	ErrAmbiguousColumn = errors.New("more than one column matches field")
)

// QueryError carries an error message reported by the database for a result set.
type QueryError struct {
	// Message is the server-side error, verbatim.
	Message string
}

// Error returns the server-side message unchanged.
func (e *QueryError) Error() string { return e.Message }

// Is reports whether target is ErrRemoteQuery.
func (e *QueryError) Is(target error) bool { return target == ErrRemoteQuery }

// ColumnError describes a failure to map one column of a row onto a field.
type ColumnError struct {
	// Column is the result column name, when one was matched.
	Column string
	// DeclaredType is the type the database reported for Column.
	DeclaredType string
	// Field is the schema field being populated.
	Field string
	// Value is the offending cell value.
	Value Value
	// Err is the underlying sentinel, possibly joined with a cause.
	Err error
}

func (e *ColumnError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("column %q (%s) into field %q: %v", e.Column, e.DeclaredType, e.Field, e.Err)
}

// Unwrap returns the underlying error so errors.Is can match sentinels.
func (e *ColumnError) Unwrap() error { return e.Err }
