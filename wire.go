package rqlite

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Level is an rqlite read consistency level, sent with queries.
type Level string

// Read consistency levels understood by rqlite.
const (
	// LevelDefault leaves the choice to the node.
	LevelDefault      Level = ""
	LevelNone         Level = "none"
	LevelWeak         Level = "weak"
	LevelLinearizable Level = "linearizable"
	LevelStrong       Level = "strong"
)

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelDefault, LevelNone, LevelWeak, LevelLinearizable, LevelStrong:
		return true
	default:
		return false
	}
}

// Statement is one SQL statement with optional positional parameters.
type Statement struct {
	SQL    string
	Params []Param
}

// ResultSet is one tabular outcome as returned by rqlite. Columns and Types
// are positionally aligned; every row in Values should have one cell per
// column.
type ResultSet struct {
	Columns      []string  `json:"columns,omitempty"`
	Types        []string  `json:"types,omitempty"`
	Values       [][]Value `json:"values,omitempty"`
	Error        string    `json:"error,omitempty"`
	LastInsertID int64     `json:"last_insert_id,omitempty"`
	RowsAffected int64     `json:"rows_affected,omitempty"`
	Time         float64   `json:"time,omitempty"`
}

// Response is the decoded body of a /db/query or /db/execute call.
type Response struct {
	Results []ResultSet `json:"results"`
	// Error is set when rqlite rejects the request as a whole.
	Error string  `json:"error,omitempty"`
	Time  float64 `json:"time,omitempty"`
}

// DecodeResponse reads an rqlite JSON response body.
func DecodeResponse(r io.Reader) (*Response, error) {
	var resp Response
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&resp); err != nil {
		if errors.Is(err, ErrMalformedResponse) {
			return nil, err
		}
		return nil, errors.Join(ErrMalformedResponse, err)
	}
	return &resp, nil
}

// EncodeStatements builds the JSON request body for a list of statements. A
// statement without parameters is encoded as a string; one with parameters
// as an array holding the SQL followed by each parameter literal, which
// rqlite binds server-side.
func EncodeStatements(stmts []Statement) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, stmt := range stmts {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := appendStatement(&buf, stmt); err != nil {
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func appendStatement(buf *bytes.Buffer, stmt Statement) error {
	if stmt.SQL == "" {
		return ErrInvalidQuery
	}
	sqlText, err := json.Marshal(stmt.SQL)
	if err != nil {
		return errors.Join(ErrInvalidQuery, err)
	}
	if len(stmt.Params) == 0 {
		buf.Write(sqlText)
		return nil
	}

	buf.WriteByte('[')
	buf.Write(sqlText)
	for i, p := range stmt.Params {
		lit, err := p.Literal()
		if err != nil {
			return fmt.Errorf("param %d: %w", i, err)
		}
		buf.WriteByte(',')
		buf.WriteString(lit)
	}
	buf.WriteByte(']')
	return nil
}

func unmarshalNumber(b []byte, dst *any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return errors.Join(ErrMalformedResponse, err)
	}
	return nil
}
