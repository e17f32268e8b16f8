package rqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/tarmac-project/rqlite"
	"github.com/tarmac-project/rqlite/http"
	"github.com/tarmac-project/rqlite/rqlitetest"
)

type product struct {
	SKU   string
	Price float64
	Notes sql.Null[string]
}

var productSchema = rqlite.NewSchema(
	rqlite.Field("sku", rqlite.String, func(p *product) *string { return &p.SKU }),
	rqlite.Field("price", rqlite.Float[float64], func(p *product) *float64 { return &p.Price }),
	rqlite.NullField("notes", rqlite.String, func(p *product) *sql.Null[string] { return &p.Notes }),
)

func TestQueryOverHTTP(t *testing.T) {
	t.Parallel()

	srv := rqlitetest.NewServer(t)
	srv.MustExec(t, "CREATE TABLE products (sku TEXT, price REAL, notes TEXT)")
	srv.MustExec(t, "INSERT INTO products VALUES ('A-1', 2.5, NULL), ('B-2', 10, 'bulk')")

	tr, err := http.New(http.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("http.New returned error: %v", err)
	}
	db, err := rqlite.New(rqlite.Config{Transport: tr})
	if err != nil {
		t.Fatalf("rqlite.New returned error: %v", err)
	}

	products, err := rqlite.QueryParams(context.Background(), db, productSchema,
		"SELECT sku, price, notes FROM products WHERE price > ? ORDER BY sku", rqlite.FloatParam(1))
	if err != nil {
		t.Fatalf("QueryParams returned error: %v", err)
	}

	want := []product{
		{SKU: "A-1", Price: 2.5},
		{SKU: "B-2", Price: 10, Notes: sql.Null[string]{V: "bulk", Valid: true}},
	}
	if len(products) != len(want) {
		t.Fatalf("row count mismatch: want %d got %d", len(want), len(products))
	}
	for i := range want {
		if products[i] != want[i] {
			t.Fatalf("row %d mismatch: want %+v got %+v", i, want[i], products[i])
		}
	}

	// An integer cell in a REAL column still coerces.
	if _, err := db.Exec(context.Background(), "INSERT INTO products VALUES (?, ?, ?)",
		rqlite.Text("C-3"), rqlite.IntParam(7), rqlite.Null()); err != nil {
		t.Fatalf("Exec returned error: %v", err)
	}
	got, err := rqlite.QueryParams(context.Background(), db, productSchema,
		"SELECT * FROM products WHERE sku = ?", rqlite.Text("C-3"))
	if err != nil {
		t.Fatalf("QueryParams returned error: %v", err)
	}
	if len(got) != 1 || got[0].Price != 7 || got[0].Notes.Valid {
		t.Fatalf("unexpected rows %+v", got)
	}
}
