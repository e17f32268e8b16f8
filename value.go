package rqlite

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the wire shape of a decoded cell.
type Kind uint8

const (
	// KindNull is a JSON null.
	KindNull Kind = iota
	// KindInteger is a JSON number with no fraction or exponent that fits
	// in an int64.
	KindInteger
	// KindFloat is any other JSON number.
	KindFloat
	// KindText is a JSON string, including base64 blobs and timestamps.
	KindText
	// KindBoolean is a JSON true or false.
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single loosely-typed cell as decoded from the wire. The zero
// Value is NULL.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
}

// NullValue returns the NULL cell.
func NullValue() Value { return Value{} }

// IntegerValue returns a whole-number cell.
func IntegerValue(v int64) Value { return Value{kind: KindInteger, i: v} }

// FloatValue returns a floating point cell.
func FloatValue(v float64) Value { return Value{kind: KindFloat, f: v} }

// TextValue returns a text cell.
func TextValue(v string) Value { return Value{kind: KindText, s: v} }

// BooleanValue returns a boolean cell.
func BooleanValue(v bool) Value { return Value{kind: KindBoolean, b: v} }

// Kind reports the wire shape of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Integer returns the whole-number payload; ok is false for other kinds.
func (v Value) Integer() (int64, bool) { return v.i, v.kind == KindInteger }

// Float returns the floating point payload; ok is false for other kinds.
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }

// Text returns the text payload; ok is false for other kinds.
func (v Value) Text() (string, bool) { return v.s, v.kind == KindText }

// Boolean returns the boolean payload; ok is false for other kinds.
func (v Value) Boolean() (bool, bool) { return v.b, v.kind == KindBoolean }

func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return strconv.Quote(v.s)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	default:
		return "NULL"
	}
}

// MarshalJSON encodes v back into its wire form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInteger:
		return strconv.AppendInt(nil, v.i, 10), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("%w: non-finite float %v", ErrTypeMismatch, v.f)
		}
		return strconv.AppendFloat(nil, v.f, 'g', -1, 64), nil
	case KindText:
		return json.Marshal(v.s)
	case KindBoolean:
		return strconv.AppendBool(nil, v.b), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes one scalar cell. Numbers without a fraction or
// exponent that fit in an int64 decode as Integer.
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := unmarshalNumber(b, &raw); err != nil {
		return err
	}
	decoded, err := valueOf(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// valueOf converts a value produced by a UseNumber json decoder.
func valueOf(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BooleanValue(x), nil
	case string:
		return TextValue(x), nil
	case json.Number:
		if i, err := strconv.ParseInt(string(x), 10, 64); err == nil {
			return IntegerValue(i), nil
		}
		f, err := strconv.ParseFloat(string(x), 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: number %q: %w", ErrMalformedResponse, x, err)
		}
		return FloatValue(f), nil
	default:
		return Value{}, fmt.Errorf("%w: non-scalar cell of type %T", ErrMalformedResponse, raw)
	}
}
