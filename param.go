package rqlite

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ParamKind selects how a parameter value is written on the wire.
type ParamKind int

const (
	// ParamText writes the value as a quoted string.
	ParamText ParamKind = iota
	// ParamNumeric writes the value as a bare number.
	ParamNumeric
)

func (k ParamKind) String() string {
	switch k {
	case ParamText:
		return "text"
	case ParamNumeric:
		return "numeric"
	default:
		return "ParamKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Param is a positional bind parameter. A nil Value is sent as SQL NULL
// regardless of Kind.
type Param struct {
	Kind  ParamKind
	Value any
}

// Text returns a text parameter.
func Text(s string) Param { return Param{Kind: ParamText, Value: s} }

// IntParam returns a numeric parameter holding a whole number.
func IntParam(n int64) Param { return Param{Kind: ParamNumeric, Value: n} }

// FloatParam returns a numeric parameter holding a floating point number.
func FloatParam(f float64) Param { return Param{Kind: ParamNumeric, Value: f} }

// Numeric returns a numeric parameter from its exact textual form.
func Numeric(n json.Number) Param { return Param{Kind: ParamNumeric, Value: n} }

// Null returns a parameter bound as SQL NULL.
func Null() Param { return Param{Kind: ParamText} }

// Literal returns the parameter as it appears in the statement array.
// Numeric values are unquoted, text values are quoted and escaped, and nil
// becomes the bare null keyword.
func (p Param) Literal() (string, error) {
	if p.Value == nil {
		return "null", nil
	}

	switch p.Kind {
	case ParamNumeric:
		return numericLiteral(p.Value)
	case ParamText:
		var s string
		switch v := p.Value.(type) {
		case string:
			s = v
		case fmt.Stringer:
			s = v.String()
		default:
			s = fmt.Sprint(v)
		}
		b, err := json.Marshal(s)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidParam, err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("%w: unknown kind %s", ErrInvalidParam, p.Kind)
	}
}

// MarshalJSON encodes the parameter literal.
func (p Param) MarshalJSON() ([]byte, error) {
	lit, err := p.Literal()
	if err != nil {
		return nil, err
	}
	return []byte(lit), nil
}

func numericLiteral(v any) (string, error) {
	switch n := v.(type) {
	case int:
		return strconv.FormatInt(int64(n), 10), nil
	case int8:
		return strconv.FormatInt(int64(n), 10), nil
	case int16:
		return strconv.FormatInt(int64(n), 10), nil
	case int32:
		return strconv.FormatInt(int64(n), 10), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	case uint:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint64:
		return strconv.FormatUint(n, 10), nil
	case float32:
		return floatLiteral(float64(n), 32)
	case float64:
		return floatLiteral(n, 64)
	case json.Number:
		// ParseFloat also accepts NaN, Inf, hex and a leading plus, none of
		// which are JSON numbers.
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil || math.IsInf(f, 0) || !json.Valid([]byte(n)) {
			return "", fmt.Errorf("%w: %q is not a number", ErrInvalidParam, string(n))
		}
		return string(n), nil
	case bool:
		if n {
			return "1", nil
		}
		return "0", nil
	default:
		return "", fmt.Errorf("%w: numeric parameter of type %T", ErrInvalidParam, v)
	}
}

func floatLiteral(f float64, bits int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: non-finite number %v", ErrInvalidParam, f)
	}
	return strconv.FormatFloat(f, 'g', -1, bits), nil
}
