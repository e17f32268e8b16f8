/*
Package rqlite runs SQL statements against an rqlite node and materializes
the tabular JSON results into typed Go values.

The package owns result mapping only. Networking is delegated to a Transport;
the http package provides one for native programs and the host package one
for Tarmac WebAssembly functions.

Rows are mapped through an explicit Schema rather than reflection. Each
binding names a field, matched case-insensitively against column names, a
converter chosen for the field's type, and an accessor for the field:

	type User struct {
		ID    int64
		Name  string
		Email sql.Null[string]
	}

	var users = rqlite.NewSchema(
		rqlite.Field("id", rqlite.Int[int64], func(u *User) *int64 { return &u.ID }),
		rqlite.Field("name", rqlite.String, func(u *User) *string { return &u.Name }),
		rqlite.NullField("email", rqlite.String, func(u *User) *sql.Null[string] { return &u.Email }),
	)

	client, _ := rqlite.New(rqlite.Config{Transport: transport})
	got, err := rqlite.QueryParams(ctx, client, users,
		"SELECT id, name, email FROM users WHERE id > ?", rqlite.IntParam(10))

The column's declared type decides how a cell is read. Unknown declared types,
values that do not fit the field and NULL cells bound to non-nullable fields
all fail with a *ColumnError wrapping one of the package sentinels, so callers
can use errors.Is:

	if errors.Is(err, rqlite.ErrNullIntoNonNullable) { ... }

Errors reported by the database surface as *QueryError carrying the server
message verbatim, and match ErrRemoteQuery.

Parameters are sent alongside the SQL text and bound by the server, never
spliced into the statement.
*/
package rqlite
