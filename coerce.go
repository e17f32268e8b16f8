package rqlite

import (
	"encoding/base64"
	"fmt"
	"math"
	"strings"
	"time"
)

// Cell is one non-null value being coerced, with the column context that
// governs how it is read.
type Cell struct {
	Column       string
	DeclaredType string
	Affinity     Affinity
	Value        Value
}

// Converter turns a cell into a value of a field's static type. Converters
// never see NULL cells; the field binder handles absence.
type Converter[V any] func(Cell) (V, error)

// Signed is the set of whole-number field types Int converts into.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is the set of whole-number field types Uint converts into.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Floating is the set of field types Float converts into.
type Floating interface {
	~float32 | ~float64
}

// timestampLayouts are tried in order for text-encoded temporal values.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"15:04:05.999999999",
	"15:04",
}

// effective returns the affinity used for coercion, resolving dynamic
// columns from the cell's own kind.
func (c Cell) effective() Affinity {
	if c.Affinity != AffinityDynamic {
		return c.Affinity
	}
	switch c.Value.Kind() {
	case KindInteger:
		return AffinityInteger
	case KindFloat:
		return AffinityReal
	case KindText:
		return AffinityText
	case KindBoolean:
		return AffinityBoolean
	default:
		return AffinityDynamic
	}
}

func mismatch(c Cell, target string) error {
	return fmt.Errorf("%w: %s value %s in %s column cannot become %s",
		ErrTypeMismatch, c.Value.Kind(), c.Value, c.effective(), target)
}

// Int converts integer, numeric and boolean columns into a signed field.
// Integral floats are accepted since JSON numbers carry no integer type;
// fractions and values outside the target width are rejected.
func Int[N Signed](c Cell) (N, error) {
	i, err := wholeNumber(c)
	if err != nil {
		return 0, err
	}
	n := N(i)
	if int64(n) != i {
		return 0, fmt.Errorf("%w: %d overflows %T", ErrTypeMismatch, i, n)
	}
	return n, nil
}

// Uint converts integer, numeric and boolean columns into an unsigned field.
func Uint[N Unsigned](c Cell) (N, error) {
	i, err := wholeNumber(c)
	if err != nil {
		return 0, err
	}
	n := N(i)
	if i < 0 || uint64(n) != uint64(i) {
		return 0, fmt.Errorf("%w: %d overflows %T", ErrTypeMismatch, i, n)
	}
	return n, nil
}

func wholeNumber(c Cell) (int64, error) {
	switch c.effective() {
	case AffinityInteger, AffinityNumeric, AffinityBoolean:
	default:
		return 0, mismatch(c, "whole number")
	}

	switch c.Value.Kind() {
	case KindInteger:
		i, _ := c.Value.Integer()
		return i, nil
	case KindFloat:
		f, _ := c.Value.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, mismatch(c, "whole number")
		}
		return int64(f), nil
	case KindBoolean:
		if b, _ := c.Value.Boolean(); b {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, mismatch(c, "whole number")
	}
}

// Float converts integer, real and numeric columns into a floating point
// field.
func Float[N Floating](c Cell) (N, error) {
	switch c.effective() {
	case AffinityInteger, AffinityReal, AffinityNumeric:
	default:
		return 0, mismatch(c, "floating point")
	}

	var f float64
	switch c.Value.Kind() {
	case KindInteger:
		i, _ := c.Value.Integer()
		f = float64(i)
	case KindFloat:
		f, _ = c.Value.Float()
	default:
		return 0, mismatch(c, "floating point")
	}

	if floatBits[N]() == 32 && math.Abs(f) > math.MaxFloat32 && !math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v overflows float32", ErrTypeMismatch, f)
	}
	return N(f), nil
}

// floatBits reports the precision of N. 2^24+1 is exact in a float64 and
// rounds in a float32.
func floatBits[N Floating]() int {
	var probe N = 1<<24 + 1
	if float64(probe) == 1<<24+1 {
		return 64
	}
	return 32
}

// String converts text-like columns into a string field. Blob columns yield
// their base64 wire text unchanged.
func String(c Cell) (string, error) {
	switch c.effective() {
	case AffinityText, AffinityTemporal, AffinityBlob:
	default:
		return "", mismatch(c, "string")
	}
	s, ok := c.Value.Text()
	if !ok {
		return "", mismatch(c, "string")
	}
	return s, nil
}

// Bool converts boolean and integer columns holding 0 or 1 into a bool field.
func Bool(c Cell) (bool, error) {
	switch c.effective() {
	case AffinityBoolean, AffinityInteger:
	default:
		return false, mismatch(c, "bool")
	}

	switch c.Value.Kind() {
	case KindBoolean:
		b, _ := c.Value.Boolean()
		return b, nil
	case KindInteger:
		switch i, _ := c.Value.Integer(); i {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	case KindFloat:
		switch f, _ := c.Value.Float(); f {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	case KindText:
		if c.effective() != AffinityBoolean {
			break
		}
		s, _ := c.Value.Text()
		switch strings.ToLower(s) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, mismatch(c, "bool")
}

// Time converts temporal columns into a time.Time in UTC. Text is parsed in
// the SQLite timestamp layouts; numbers are unix seconds.
func Time(c Cell) (time.Time, error) {
	if c.effective() != AffinityTemporal {
		return time.Time{}, mismatch(c, "time")
	}

	switch c.Value.Kind() {
	case KindText:
		s, _ := c.Value.Text()
		return parseTimestamp(s)
	case KindInteger:
		i, _ := c.Value.Integer()
		return time.Unix(i, 0).UTC(), nil
	case KindFloat:
		f, _ := c.Value.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return time.Time{}, mismatch(c, "time")
		}
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC(), nil
	default:
		return time.Time{}, mismatch(c, "time")
	}
}

func parseTimestamp(s string) (time.Time, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(s), "Z")
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a recognised timestamp", ErrTypeMismatch, s)
}

// Bytes converts blob columns, which rqlite sends base64 encoded, into a
// byte slice. Text columns yield their raw bytes.
func Bytes(c Cell) ([]byte, error) {
	s, ok := c.Value.Text()
	if !ok {
		return nil, mismatch(c, "bytes")
	}

	switch c.effective() {
	case AffinityBlob:
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: blob is not base64: %w", ErrTypeMismatch, err)
		}
		return b, nil
	case AffinityText:
		return []byte(s), nil
	default:
		return nil, mismatch(c, "bytes")
	}
}
