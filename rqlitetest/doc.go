/*
Package rqlitetest provides an in-process stand-in for an rqlite node.

NewServer starts an httptest.Server that accepts the rqlite JSON statement
format on /db/query and /db/execute and answers with rqlite-shaped result
sets: columns, lower-cased declared types, values with blobs base64 encoded,
and per-statement errors. Statements run against a private in-memory SQLite
database, so declared types and affinity behave the way they do on a real
node.

	srv := rqlitetest.NewServer(t)
	srv.MustExec(t, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)")

	transport, _ := http.New(http.Config{BaseURL: srv.URL})

Every statement request is recorded and can be inspected with Requests.
*/
package rqlitetest
