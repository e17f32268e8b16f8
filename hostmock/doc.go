/*
Package hostmock provides a pretend waPC host for tests.

It stands in for the Tarmac runtime when exercising the host transport, the
logging handler and the metrics observer, so that tests can assert exactly
what a component sends to the host without a real host running.

Quick start

	m, _ := hostmock.New(hostmock.Config{
	  ExpectedNamespace:  "tarmac",
	  ExpectedCapability: "httpclient",
	  ExpectedFunction:   "call",
	  Handler: func(c hostmock.Call) ([]byte, error) {
	    // Unmarshal c.Payload and build a reply
	    return reply, nil
	  },
	})

	tr, _ := host.NewTransport(host.Config{BaseURL: "http://rqlite:4001", HostCall: m.HostCall})

Behavior

  - If Fail is true, HostCall returns Error, or ErrOperationFailed when Error is nil.
  - Expected namespace, capability and function are only enforced when set.
  - PayloadValidator runs before a reply is produced.
  - Handler, when set, produces the reply. Otherwise Response does, and
    with neither HostCall returns nil.
  - Every call is recorded and available from Calls.
*/
package hostmock
