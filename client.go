package rqlite

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Transport executes statements against an rqlite node. Implementations own
// networking, retries, redirects and timeouts, and must document whether
// they are safe for concurrent use.
type Transport interface {
	// Query runs read statements via the query endpoint.
	Query(ctx context.Context, stmts []Statement) (*Response, error)

	// Execute runs write statements via the execute endpoint.
	Execute(ctx context.Context, stmts []Statement) (*Response, error)
}

// Observer receives one callback per statement sent through a Client.
type Observer interface {
	ObserveQuery(op string, elapsed time.Duration, err error)
}

// Config controls how a Client is built.
type Config struct {
	// Transport carries statements to the database. Required.
	Transport Transport

	// Logger receives debug records for each round trip. Nil discards.
	Logger *slog.Logger

	// Observer, when set, is told about every round trip.
	Observer Observer
}

// ExecResult mirrors the write fields of an execute result set.
type ExecResult struct {
	// LastInsertID is the ID of the last inserted row, when available.
	LastInsertID int64
	// RowsAffected is the number of rows affected by the statement.
	RowsAffected int64
}

// Client runs single statements and materializes their results. It keeps no
// per-call state and is safe for concurrent use when its Transport is.
type Client struct {
	transport Transport
	logger    *slog.Logger
	observer  Observer
}

// New creates a Client.
func New(config Config) (*Client, error) {
	if config.Transport == nil {
		return nil, ErrNilTransport
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		transport: config.Transport,
		logger:    logger,
		observer:  config.Observer,
	}, nil
}

// Query runs statement and maps every returned row through schema.
func Query[T any](ctx context.Context, c *Client, schema *Schema[T], statement string) ([]T, error) {
	return QueryParams(ctx, c, schema, statement)
}

// QueryParams runs statement with positional parameters bound server-side
// and maps every returned row through schema.
func QueryParams[T any](ctx context.Context, c *Client, schema *Schema[T], statement string, params ...Param) ([]T, error) {
	rs, err := c.roundTrip(ctx, "query", Statement{SQL: statement, Params: params})
	if err != nil {
		return nil, err
	}
	return schema.MapRows(rs)
}

// QueryRaw runs statement and returns its single result set undecoded.
func (c *Client) QueryRaw(ctx context.Context, statement string, params ...Param) (ResultSet, error) {
	return c.roundTrip(ctx, "query", Statement{SQL: statement, Params: params})
}

// Exec runs a statement that does not return rows.
func (c *Client) Exec(ctx context.Context, statement string, params ...Param) (ExecResult, error) {
	rs, err := c.roundTrip(ctx, "execute", Statement{SQL: statement, Params: params})
	if err != nil {
		return ExecResult{}, err
	}
	return ExecResult{LastInsertID: rs.LastInsertID, RowsAffected: rs.RowsAffected}, nil
}

// roundTrip sends stmt and returns its single result set. The observer sees
// transport failures and errors reported by the server alike.
func (c *Client) roundTrip(ctx context.Context, op string, stmt Statement) (ResultSet, error) {
	if stmt.SQL == "" {
		return ResultSet{}, ErrInvalidQuery
	}

	start := time.Now()
	var (
		resp *Response
		err  error
	)
	switch op {
	case "execute":
		resp, err = c.transport.Execute(ctx, []Statement{stmt})
	default:
		resp, err = c.transport.Query(ctx, []Statement{stmt})
	}
	elapsed := time.Since(start)

	var rs ResultSet
	if err == nil {
		rs, err = single(resp)
	}

	if c.observer != nil {
		c.observer.ObserveQuery(op, elapsed, err)
	}
	if err != nil {
		c.logger.DebugContext(ctx, "rqlite round trip failed",
			"op", op, "params", len(stmt.Params), "elapsed", elapsed, "error", err)
		return ResultSet{}, err
	}

	c.logger.DebugContext(ctx, "rqlite round trip",
		"op", op, "params", len(stmt.Params), "elapsed", elapsed, "rows", len(rs.Values))
	return rs, nil
}

// Collect validates that resp holds exactly one error-free result set and
// maps its rows in order.
func (s *Schema[T]) Collect(resp *Response) ([]T, error) {
	rs, err := single(resp)
	if err != nil {
		return nil, err
	}
	return s.MapRows(rs)
}

func single(resp *Response) (ResultSet, error) {
	if resp == nil {
		return ResultSet{}, ErrNoResultSet
	}
	if resp.Error != "" {
		return ResultSet{}, &QueryError{Message: resp.Error}
	}

	switch n := len(resp.Results); {
	case n == 0:
		return ResultSet{}, ErrNoResultSet
	case n > 1:
		return ResultSet{}, ErrMultipleResultSets
	}

	rs := resp.Results[0]
	if rs.Error != "" {
		return ResultSet{}, &QueryError{Message: rs.Error}
	}
	return rs, nil
}
