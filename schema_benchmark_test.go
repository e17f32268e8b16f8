package rqlite

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func BenchmarkMaterialize(b *testing.B) {
	// Pre-render a 1000 row response
	var body strings.Builder
	body.WriteString(`{"results":[{"columns":["id","name","score","active","email","created"],` +
		`"types":["integer","text","real","boolean","text","datetime"],"values":[`)
	for i := range 1000 {
		if i > 0 {
			body.WriteByte(',')
		}
		fmt.Fprintf(&body, `[%d,"user-%d",%d.5,%d,null,"2024-01-02 03:04:05"]`, i, i, i, i%2)
	}
	body.WriteString(`]}]}`)
	raw := []byte(body.String())

	b.Run("Decode", func(b *testing.B) {
		b.ResetTimer()
		for range b.N {
			if _, err := DecodeResponse(bytes.NewReader(raw)); err != nil {
				b.Fatalf("DecodeResponse failed: %v", err)
			}
		}
	})

	resp, err := DecodeResponse(bytes.NewReader(raw))
	if err != nil {
		b.Fatalf("DecodeResponse failed: %v", err)
	}

	b.Run("Collect", func(b *testing.B) {
		b.ResetTimer()
		for range b.N {
			if _, err := userSchema.Collect(resp); err != nil {
				b.Fatalf("Collect failed: %v", err)
			}
		}
	})

	stmts := []Statement{{
		SQL:    "SELECT * FROM users WHERE id = ? AND name = ?",
		Params: []Param{IntParam(42), Text(`d"quote`)},
	}}
	b.Run("Encode", func(b *testing.B) {
		b.ResetTimer()
		for range b.N {
			if _, err := EncodeStatements(stmts); err != nil {
				b.Fatalf("EncodeStatements failed: %v", err)
			}
		}
	})
}
