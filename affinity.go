package rqlite

import (
	"strings"
	"sync"
)

// Affinity is the coercion class a declared column type resolves to.
type Affinity int

const (
	// AffinityUnknown is the zero value and never resolved from a type.
	AffinityUnknown Affinity = iota
	// AffinityInteger holds whole numbers.
	AffinityInteger
	// AffinityReal holds floating point numbers.
	AffinityReal
	// AffinityNumeric holds whole or floating point numbers. SQLite stores
	// integral values in NUMERIC and DECIMAL columns as integers.
	AffinityNumeric
	// AffinityText holds strings.
	AffinityText
	// AffinityBlob holds base64 encoded bytes.
	AffinityBlob
	// AffinityBoolean holds 0/1 or JSON booleans.
	AffinityBoolean
	// AffinityTemporal holds timestamps as text or unix seconds.
	AffinityTemporal
	// AffinityDynamic applies to columns with no declared type, typically
	// expressions. The cell's own kind decides the coercion.
	AffinityDynamic
)

func (a Affinity) String() string {
	switch a {
	case AffinityInteger:
		return "integer"
	case AffinityReal:
		return "real"
	case AffinityNumeric:
		return "numeric"
	case AffinityText:
		return "text"
	case AffinityBlob:
		return "blob"
	case AffinityBoolean:
		return "boolean"
	case AffinityTemporal:
		return "temporal"
	case AffinityDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

var defaultAffinities = map[string]Affinity{
	"":                  AffinityDynamic,
	"integer":           AffinityInteger,
	"int":               AffinityInteger,
	"bigint":            AffinityInteger,
	"smallint":          AffinityInteger,
	"tinyint":           AffinityInteger,
	"mediumint":         AffinityInteger,
	"int2":              AffinityInteger,
	"int8":              AffinityInteger,
	"unsigned big int":  AffinityInteger,
	"real":              AffinityReal,
	"float":             AffinityReal,
	"double":            AffinityReal,
	"double precision":  AffinityReal,
	"numeric":           AffinityNumeric,
	"decimal":           AffinityNumeric,
	"text":              AffinityText,
	"varchar":           AffinityText,
	"char":              AffinityText,
	"clob":              AffinityText,
	"nvarchar":          AffinityText,
	"nchar":             AffinityText,
	"character":         AffinityText,
	"varying character": AffinityText,
	"native character":  AffinityText,
	"string":            AffinityText,
	"json":              AffinityText,
	"blob":              AffinityBlob,
	"boolean":           AffinityBoolean,
	"bool":              AffinityBoolean,
	"datetime":          AffinityTemporal,
	"timestamp":         AffinityTemporal,
	"date":              AffinityTemporal,
	"time":              AffinityTemporal,
}

// Coercer resolves declared column types to affinities. The zero value is
// not usable; use NewCoercer.
type Coercer struct {
	mu    sync.RWMutex
	table map[string]Affinity
}

// DefaultCoercer is used by schemas that do not set their own.
var DefaultCoercer = NewCoercer()

// NewCoercer returns a Coercer preloaded with the built-in type table.
func NewCoercer() *Coercer {
	table := make(map[string]Affinity, len(defaultAffinities))
	for k, v := range defaultAffinities {
		table[k] = v
	}
	return &Coercer{table: table}
}

// Register maps a declared type name to an affinity. The name is normalized
// the same way declared types are at lookup.
func (c *Coercer) Register(declared string, a Affinity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table[normalizeType(declared)] = a
}

// Affinity resolves a declared type. Names missing from the table fall back
// to SQLite's substring rules, so "BIGINT UNSIGNED" is an integer and
// "VARCHAR2" is text. ok is false when neither matches.
func (c *Coercer) Affinity(declared string) (Affinity, bool) {
	name := normalizeType(declared)

	c.mu.RLock()
	a, ok := c.table[name]
	c.mu.RUnlock()
	if ok {
		return a, true
	}
	return substringAffinity(name)
}

// substringAffinity applies SQLite's declared type rules in their order of
// precedence. SQLite's final NUMERIC catch-all is left out so unrecognised
// names are reported instead of coerced.
func substringAffinity(name string) (Affinity, bool) {
	switch {
	case strings.Contains(name, "int"):
		return AffinityInteger, true
	case strings.Contains(name, "char"), strings.Contains(name, "clob"), strings.Contains(name, "text"):
		return AffinityText, true
	case strings.Contains(name, "blob"):
		return AffinityBlob, true
	case strings.Contains(name, "real"), strings.Contains(name, "floa"), strings.Contains(name, "doub"):
		return AffinityReal, true
	default:
		return AffinityUnknown, false
	}
}

// normalizeType lower-cases, drops any size suffix and collapses whitespace,
// so "VARCHAR (255)" and "varchar" resolve alike.
func normalizeType(declared string) string {
	if i := strings.IndexByte(declared, '('); i >= 0 {
		declared = declared[:i]
	}
	return strings.Join(strings.Fields(strings.ToLower(declared)), " ")
}
