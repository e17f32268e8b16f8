/*
Package metrics emits custom metrics through the Tarmac host runtime.

Metrics hands out Counter and Histogram handles backed by protobuf payloads
sent over waPC host calls. Observer builds on them to report every rqlite
round trip made by a Client:

	m, _ := metrics.New(metrics.Config{})
	obs, _ := metrics.NewObserver(m, "orders")
	db, _ := rqlite.New(rqlite.Config{Transport: tr, Observer: obs})

Metric emission follows Prometheus-style ergonomics: Inc and Observe are
best-effort and do not return errors. Marshal or host-call failures are
swallowed so that they never affect the caller's control flow.
*/
package metrics
