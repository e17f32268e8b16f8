package rqlite

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"
)

func cell(declared string, v Value) Cell {
	aff, ok := DefaultCoercer.Affinity(declared)
	if !ok {
		aff = AffinityUnknown
	}
	return Cell{Column: "c", DeclaredType: declared, Affinity: aff, Value: v}
}

func TestAffinity(t *testing.T) {
	t.Parallel()

	tt := []struct {
		declared string
		want     Affinity
		ok       bool
	}{
		{"integer", AffinityInteger, true},
		{"INTEGER", AffinityInteger, true},
		{" BigInt ", AffinityInteger, true},
		{"UNSIGNED  BIG INT", AffinityInteger, true},
		{"varchar(255)", AffinityText, true},
		{"DECIMAL(10, 5)", AffinityNumeric, true},
		{"numeric", AffinityNumeric, true},
		{"double precision", AffinityReal, true},
		{"INTEGER UNSIGNED", AffinityInteger, true},
		{"BIGINT UNSIGNED", AffinityInteger, true},
		{"MEDIUMINT UNSIGNED", AffinityInteger, true},
		{"UNSIGNED INT", AffinityInteger, true},
		{"LONGTEXT", AffinityText, true},
		{"VARCHAR2(20)", AffinityText, true},
		{"CHARACTER VARYING(20)", AffinityText, true},
		{"MEDIUMBLOB", AffinityBlob, true},
		{"FLOAT8", AffinityReal, true},
		{"DOUBLE UNSIGNED", AffinityReal, true},
		{"REAL NUMBER", AffinityReal, true},
		{"text", AffinityText, true},
		{"blob", AffinityBlob, true},
		{"Boolean", AffinityBoolean, true},
		{"DATETIME", AffinityTemporal, true},
		{"", AffinityDynamic, true},
		{"geometry", AffinityUnknown, false},
	}

	for _, tc := range tt {
		got, ok := DefaultCoercer.Affinity(tc.declared)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Affinity(%q): want %s/%v got %s/%v", tc.declared, tc.want, tc.ok, got, ok)
		}
	}
}

func TestCoercerRegister(t *testing.T) {
	t.Parallel()

	c := NewCoercer()
	if _, ok := c.Affinity("uuid"); ok {
		t.Fatalf("uuid should be unknown before registration")
	}
	c.Register("UUID", AffinityText)
	if a, ok := c.Affinity("uuid"); !ok || a != AffinityText {
		t.Fatalf("expected text affinity after registration, got %s/%v", a, ok)
	}
	if _, ok := DefaultCoercer.Affinity("uuid"); ok {
		t.Fatalf("registration leaked into DefaultCoercer")
	}
}

func TestInt(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name    string
		cell    Cell
		want    int64
		wantErr error
	}{
		{name: "integer", cell: cell("integer", IntegerValue(5)), want: 5},
		{name: "integral float", cell: cell("integer", FloatValue(5)), want: 5},
		{name: "fractional float", cell: cell("integer", FloatValue(5.5)), wantErr: ErrTypeMismatch},
		{name: "huge float", cell: cell("integer", FloatValue(1e20)), wantErr: ErrTypeMismatch},
		{name: "boolean column", cell: cell("boolean", BooleanValue(true)), want: 1},
		{name: "dynamic integer", cell: cell("", IntegerValue(3)), want: 3},
		{name: "numeric column", cell: cell("numeric", IntegerValue(5)), want: 5},
		{name: "decimal column", cell: cell("decimal(10,0)", IntegerValue(-12)), want: -12},
		{name: "numeric integral float", cell: cell("numeric", FloatValue(8)), want: 8},
		{name: "numeric fraction", cell: cell("numeric", FloatValue(8.5)), wantErr: ErrTypeMismatch},
		{name: "unsigned integer column", cell: cell("BIGINT UNSIGNED", IntegerValue(9)), want: 9},
		{name: "text in integer column", cell: cell("integer", TextValue("abc")), wantErr: ErrTypeMismatch},
		{name: "real column", cell: cell("real", FloatValue(1)), wantErr: ErrTypeMismatch},
		{name: "text column", cell: cell("text", TextValue("1")), wantErr: ErrTypeMismatch},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Int[int64](tc.cell)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
			if err == nil && got != tc.want {
				t.Fatalf("want %d got %d", tc.want, got)
			}
		})
	}
}

func TestIntWidths(t *testing.T) {
	t.Parallel()

	if _, err := Int[int8](cell("integer", IntegerValue(128))); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected int8 overflow, got %v", err)
	}
	if v, err := Int[int8](cell("integer", IntegerValue(-128))); err != nil || v != -128 {
		t.Fatalf("expected -128, got %d, %v", v, err)
	}
	if _, err := Uint[uint32](cell("integer", IntegerValue(-1))); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected negative into uint to fail, got %v", err)
	}
	if _, err := Uint[uint8](cell("integer", IntegerValue(256))); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected uint8 overflow, got %v", err)
	}
	if v, err := Uint[uint64](cell("bigint", IntegerValue(math.MaxInt64))); err != nil || v != math.MaxInt64 {
		t.Fatalf("expected MaxInt64, got %d, %v", v, err)
	}
}

func TestFloat(t *testing.T) {
	t.Parallel()

	if v, err := Float[float64](cell("real", FloatValue(2.25))); err != nil || v != 2.25 {
		t.Fatalf("expected 2.25, got %v, %v", v, err)
	}
	if v, err := Float[float64](cell("real", IntegerValue(3))); err != nil || v != 3 {
		t.Fatalf("expected 3, got %v, %v", v, err)
	}
	if v, err := Float[float64](cell("integer", IntegerValue(7))); err != nil || v != 7 {
		t.Fatalf("expected 7, got %v, %v", v, err)
	}
	if v, err := Float[float64](cell("numeric", FloatValue(1.25))); err != nil || v != 1.25 {
		t.Fatalf("expected 1.25, got %v, %v", v, err)
	}
	if v, err := Float[float64](cell("decimal(10,2)", IntegerValue(4))); err != nil || v != 4 {
		t.Fatalf("expected 4, got %v, %v", v, err)
	}
	if _, err := Float[float32](cell("real", FloatValue(1e300))); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected float32 overflow, got %v", err)
	}
	if _, err := Float[float64](cell("text", TextValue("1.0"))); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected text into float to fail, got %v", err)
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	if v, err := String(cell("varchar(10)", TextValue("hi"))); err != nil || v != "hi" {
		t.Fatalf("expected hi, got %q, %v", v, err)
	}
	if v, err := String(cell("datetime", TextValue("2024-01-02"))); err != nil || v != "2024-01-02" {
		t.Fatalf("expected raw timestamp text, got %q, %v", v, err)
	}
	if v, err := String(cell("LONGTEXT", TextValue("long"))); err != nil || v != "long" {
		t.Fatalf("expected long, got %q, %v", v, err)
	}
	if v, err := String(cell("character varying(20)", TextValue("cv"))); err != nil || v != "cv" {
		t.Fatalf("expected cv, got %q, %v", v, err)
	}
	if _, err := String(cell("numeric", IntegerValue(1))); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected numeric into string to fail, got %v", err)
	}
	if _, err := String(cell("integer", IntegerValue(1))); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected integer into string to fail, got %v", err)
	}
	if _, err := String(cell("text", IntegerValue(1))); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected integer wire value into string to fail, got %v", err)
	}
}

func TestBool(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name    string
		cell    Cell
		want    bool
		wantErr error
	}{
		{name: "one", cell: cell("boolean", IntegerValue(1)), want: true},
		{name: "zero", cell: cell("boolean", IntegerValue(0)), want: false},
		{name: "float one", cell: cell("boolean", FloatValue(1)), want: true},
		{name: "json true", cell: cell("bool", BooleanValue(true)), want: true},
		{name: "text false", cell: cell("boolean", TextValue("FALSE")), want: false},
		{name: "integer column", cell: cell("integer", IntegerValue(1)), want: true},
		{name: "two", cell: cell("boolean", IntegerValue(2)), wantErr: ErrTypeMismatch},
		{name: "text in integer column", cell: cell("integer", TextValue("true")), wantErr: ErrTypeMismatch},
		{name: "text column", cell: cell("text", TextValue("true")), wantErr: ErrTypeMismatch},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Bool(tc.cell)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
			if err == nil && got != tc.want {
				t.Fatalf("want %v got %v", tc.want, got)
			}
		})
	}
}

func TestTime(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC)

	tt := []struct {
		name    string
		cell    Cell
		want    time.Time
		wantErr error
	}{
		{name: "sqlite default", cell: cell("datetime", TextValue("2024-03-09 14:30:05")), want: base},
		{name: "iso with T", cell: cell("datetime", TextValue("2024-03-09T14:30:05")), want: base},
		{name: "utc suffix", cell: cell("timestamp", TextValue("2024-03-09T14:30:05Z")), want: base},
		{name: "offset", cell: cell("timestamp", TextValue("2024-03-09 16:30:05+02:00")), want: base},
		{name: "fraction", cell: cell("datetime", TextValue("2024-03-09 14:30:05.25")), want: base.Add(250 * time.Millisecond)},
		{name: "date only", cell: cell("date", TextValue("2024-03-09")), want: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)},
		{name: "unix integer", cell: cell("datetime", IntegerValue(base.Unix())), want: base},
		{name: "unix float", cell: cell("datetime", FloatValue(float64(base.Unix())+0.5)), want: base.Add(500 * time.Millisecond)},
		{name: "garbage", cell: cell("datetime", TextValue("yesterday")), wantErr: ErrTypeMismatch},
		{name: "text column", cell: cell("text", TextValue("2024-03-09")), wantErr: ErrTypeMismatch},
		{name: "boolean value", cell: cell("datetime", BooleanValue(true)), wantErr: ErrTypeMismatch},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Time(tc.cell)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
			if err == nil && !got.Equal(tc.want) {
				t.Fatalf("want %v got %v", tc.want, got)
			}
		})
	}
}

func TestBytes(t *testing.T) {
	t.Parallel()

	got, err := Bytes(cell("blob", TextValue("aGVsbG8=")))
	if err != nil {
		t.Fatalf("Bytes returned error: %v", err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("want hello got %q", got)
	}

	if got, err := Bytes(cell("text", TextValue("raw"))); err != nil || string(got) != "raw" {
		t.Fatalf("expected raw text bytes, got %q, %v", got, err)
	}
	if _, err := Bytes(cell("blob", TextValue("%%%"))); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected invalid base64 to fail, got %v", err)
	}
	if _, err := Bytes(cell("blob", IntegerValue(1))); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected integer blob to fail, got %v", err)
	}
}
