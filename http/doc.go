/*
Package http provides an rqlite.Transport for native programs.

Statements are encoded as the rqlite JSON statement array and posted to
/db/query or /db/execute. Parameters travel in the array next to the SQL and
are bound by the node. When a follower answers with a redirect to the
leader, the Transport re-posts the body to the new location, up to
MaxRedirects times.

	transport, err := http.New(http.Config{
		BaseURL: "http://localhost:4001",
		Level:   rqlite.LevelStrong,
	})
	client, err := rqlite.New(rqlite.Config{Transport: transport})

Errors use sentinel values combined with the underlying cause and can be
checked with errors.Is.
*/
package http
