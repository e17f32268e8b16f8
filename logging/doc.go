/*
Package logging forwards slog records from Tarmac WebAssembly functions to
the host runtime's logging capability.

Handler renders each record as logfmt text and calls the host function that
matches its level (Trace, Debug, Info, Warn, Error). Pair it with the host
transport so that a guest's rqlite client logs where the host can see them:

	logger, _ := logging.NewLogger(logging.Config{Level: slog.LevelDebug})
	db, _ := rqlite.New(rqlite.Config{Transport: tr, Logger: logger})
*/
package logging
