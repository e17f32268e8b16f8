package rqlitetest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/tarmac-project/rqlite"
)

// DefaultVersion is reported in the X-Rqlite-Version header.
const DefaultVersion = "v8.36.3"

// Request records one statement request received by the server.
type Request struct {
	// Path is the endpoint, /db/query or /db/execute.
	Path string
	// Level is the read consistency level query parameter, if any.
	Level string
	// Body is the raw request body.
	Body []byte
	// RequestID is the X-Request-ID header sent by the client.
	RequestID string
}

// Option customizes a Server before it starts.
type Option func(*Server)

// WithBasicAuth requires every request to carry the given credentials.
func WithBasicAuth(username, password string) Option {
	return func(s *Server) {
		s.username = username
		s.password = password
	}
}

// WithVersion overrides the reported server version.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// Server is an httptest.Server speaking the rqlite HTTP API on top of an
// in-memory SQLite database.
type Server struct {
	*httptest.Server

	// DB is the backing database; tests may seed it directly.
	DB *sqlx.DB

	version  string
	username string
	password string

	mu       sync.Mutex
	requests []Request
}

// NewServer starts a Server and registers its shutdown with tb.Cleanup.
func NewServer(tb testing.TB, opts ...Option) *Server {
	tb.Helper()

	// Each server gets a private shared-cache memory database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		tb.Fatalf("rqlitetest: open database: %v", err)
	}
	db.SetMaxOpenConns(1)

	s := &Server{DB: db, version: DefaultVersion}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/db/query", s.handleStatements)
	mux.HandleFunc("/db/execute", s.handleStatements)
	mux.HandleFunc("/status", s.handleStatus)
	s.Server = httptest.NewServer(s.middleware(mux))

	tb.Cleanup(func() {
		s.Close()
		_ = db.Close()
	})
	return s
}

// MustExec runs a statement directly against the backing database.
func (s *Server) MustExec(tb testing.TB, query string, args ...any) {
	tb.Helper()
	if _, err := s.DB.Exec(query, args...); err != nil {
		tb.Fatalf("rqlitetest: exec %q: %v", query, err)
	}
}

// Requests returns a copy of the statement requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Rqlite-Version", s.version)
		if s.username != "" {
			user, pass, ok := r.BasicAuth()
			if !ok || user != s.username || pass != s.password {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"build":{"version":%q}}`, s.version)
}

func (s *Server) handleStatements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Path:      r.URL.Path,
		Level:     r.URL.Query().Get("level"),
		Body:      body,
		RequestID: r.Header.Get("X-Request-ID"),
	})
	s.mu.Unlock()

	stmts, err := parseStatements(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := rqlite.Response{Results: make([]rqlite.ResultSet, 0, len(stmts))}
	start := time.Now()
	for _, stmt := range stmts {
		switch r.URL.Path {
		case "/db/execute":
			resp.Results = append(resp.Results, s.execute(stmt))
		default:
			resp.Results = append(resp.Results, s.query(stmt))
		}
	}
	if _, ok := r.URL.Query()["timings"]; ok {
		resp.Time = time.Since(start).Seconds()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type statement struct {
	sql  string
	args []any
}

// parseStatements accepts the rqlite body format: an array whose elements
// are either SQL strings or arrays of SQL followed by positional parameters.
func parseStatements(body []byte) ([]statement, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw []json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	stmts := make([]statement, 0, len(raw))
	for i, elem := range raw {
		var sql string
		if err := json.Unmarshal(elem, &sql); err == nil {
			stmts = append(stmts, statement{sql: sql})
			continue
		}

		pd := json.NewDecoder(bytes.NewReader(elem))
		pd.UseNumber()
		var parts []any
		if err := pd.Decode(&parts); err != nil || len(parts) == 0 {
			return nil, fmt.Errorf("statement %d is neither a string nor an array", i)
		}
		sql, ok := parts[0].(string)
		if !ok {
			return nil, errors.New("first element of a parameterized statement must be SQL")
		}

		args := make([]any, 0, len(parts)-1)
		for _, p := range parts[1:] {
			args = append(args, bindArg(p))
		}
		stmts = append(stmts, statement{sql: sql, args: args})
	}
	return stmts, nil
}

func bindArg(p any) any {
	n, ok := p.(json.Number)
	if !ok {
		return p
	}
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return i
	}
	f, _ := n.Float64()
	return f
}

func (s *Server) query(stmt statement) rqlite.ResultSet {
	rows, err := s.DB.Queryx(stmt.sql, stmt.args...)
	if err != nil {
		return rqlite.ResultSet{Error: err.Error()}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return rqlite.ResultSet{Error: err.Error()}
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return rqlite.ResultSet{Error: err.Error()}
	}

	rs := rqlite.ResultSet{Columns: columns, Types: make([]string, len(colTypes))}
	for i, ct := range colTypes {
		rs.Types[i] = strings.ToLower(ct.DatabaseTypeName())
	}

	for rows.Next() {
		cells, err := rows.SliceScan()
		if err != nil {
			return rqlite.ResultSet{Error: err.Error()}
		}
		row := make([]rqlite.Value, len(cells))
		for i, c := range cells {
			row[i] = wireValue(c)
		}
		rs.Values = append(rs.Values, row)
	}
	if err := rows.Err(); err != nil {
		return rqlite.ResultSet{Error: err.Error()}
	}
	return rs
}

func (s *Server) execute(stmt statement) rqlite.ResultSet {
	res, err := s.DB.Exec(stmt.sql, stmt.args...)
	if err != nil {
		return rqlite.ResultSet{Error: err.Error()}
	}
	var rs rqlite.ResultSet
	rs.LastInsertID, _ = res.LastInsertId()
	rs.RowsAffected, _ = res.RowsAffected()
	return rs
}

// wireValue converts a driver value into the form rqlite puts on the wire:
// blobs as base64 text, booleans as 0 or 1, timestamps as text.
func wireValue(v any) rqlite.Value {
	switch x := v.(type) {
	case nil:
		return rqlite.NullValue()
	case int64:
		return rqlite.IntegerValue(x)
	case float64:
		return rqlite.FloatValue(x)
	case bool:
		if x {
			return rqlite.IntegerValue(1)
		}
		return rqlite.IntegerValue(0)
	case string:
		return rqlite.TextValue(x)
	case []byte:
		return rqlite.TextValue(base64.StdEncoding.EncodeToString(x))
	case time.Time:
		return rqlite.TextValue(x.UTC().Format(time.RFC3339Nano))
	default:
		return rqlite.TextValue(fmt.Sprint(x))
	}
}
