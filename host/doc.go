/*
Package host runs rqlite statements from inside a Tarmac WebAssembly
function.

WebAssembly guests have no sockets, so Transport hands each request to the
host's httpclient capability over waPC and decodes the protobuf reply. It
satisfies rqlite.Transport and plugs into rqlite.New like the native HTTP
transport does.

	tr, err := host.NewTransport(host.Config{
		BaseURL: "http://rqlite:4001",
		Level:   "weak",
	})
	if err != nil {
		return err
	}
	db, err := rqlite.New(rqlite.Config{Transport: tr})

The package also carries the pieces shared by every host capability client
in this module: DefaultNamespace, the Func host call signature, and
CheckStatus for translating host status codes into errors.
*/
package host
