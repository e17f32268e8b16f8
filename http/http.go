package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	version "github.com/hashicorp/go-version"

	"github.com/tarmac-project/rqlite"
)

const (
	// DefaultBaseURL is the address of a local rqlite node.
	DefaultBaseURL = "http://localhost:4001"

	// DefaultMaxRedirects bounds how many leader redirects a request follows.
	DefaultMaxRedirects = 5

	pathQuery   = "/db/query"
	pathExecute = "/db/execute"
	pathStatus  = "/status"

	headerVersion   = "X-Rqlite-Version"
	headerRequestID = "X-Request-ID"

	maxErrorBody = 4 << 10
)

var (
	// ErrInvalidURL indicates a malformed or unsupported base URL.
	ErrInvalidURL = errors.New("invalid URL provided")

	// ErrInvalidLevel indicates an unknown read consistency level.
	ErrInvalidLevel = errors.New("invalid consistency level")

	// ErrMarshalRequest wraps failures while encoding the statement body.
	ErrMarshalRequest = errors.New("failed to create request")

	// ErrRequestFailed wraps network failures talking to the node.
	ErrRequestFailed = errors.New("request to rqlite failed")

	// ErrHTTPStatus means the node answered with a non-success status.
	ErrHTTPStatus = errors.New("rqlite returned an error status")

	// ErrTooManyRedirects means MaxRedirects leader redirects were exceeded.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrVersionUnknown means the node did not report a parseable version.
	ErrVersionUnknown = errors.New("rqlite version unknown")
)

// Config configures a Transport.
type Config struct {
	// BaseURL is the node address, e.g. http://localhost:4001. Credentials
	// in the URL are used for basic auth unless Username is set.
	BaseURL string

	// HTTPClient performs requests. Its redirect policy is replaced so that
	// leader redirects re-send the statement body.
	HTTPClient *http.Client

	// Username and Password enable basic auth.
	Username string
	Password string

	// Level is sent as the read consistency level on queries.
	Level rqlite.Level

	// MaxRedirects bounds leader redirects; zero means DefaultMaxRedirects.
	MaxRedirects int

	// Logger receives debug records for redirects and failures. Nil discards.
	Logger *slog.Logger
}

// Transport runs statements against an rqlite node over HTTP. It is safe
// for concurrent use.
type Transport struct {
	base         *url.URL
	client       *http.Client
	username     string
	password     string
	level        rqlite.Level
	maxRedirects int
	logger       *slog.Logger
}

// Ensure Transport always satisfies rqlite.Transport at compile time.
var _ rqlite.Transport = (*Transport)(nil)

// New creates a Transport from config.
func New(config Config) (*Transport, error) {
	raw := config.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, ErrInvalidURL
	}

	if !config.Level.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLevel, config.Level)
	}

	t := &Transport{
		level:        config.Level,
		username:     config.Username,
		password:     config.Password,
		maxRedirects: config.MaxRedirects,
		logger:       config.Logger,
	}

	if base.User != nil {
		if t.username == "" {
			t.username = base.User.Username()
			t.password, _ = base.User.Password()
		}
		base.User = nil
	}
	t.base = base

	client := &http.Client{Timeout: 30 * time.Second}
	if config.HTTPClient != nil {
		cp := *config.HTTPClient
		client = &cp
	}
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	t.client = client

	if t.maxRedirects <= 0 {
		t.maxRedirects = DefaultMaxRedirects
	}
	if t.logger == nil {
		t.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return t, nil
}

// Query sends read statements to /db/query.
func (t *Transport) Query(ctx context.Context, stmts []rqlite.Statement) (*rqlite.Response, error) {
	q := url.Values{}
	if t.level != rqlite.LevelDefault {
		q.Set("level", string(t.level))
	}
	return t.post(ctx, pathQuery, q, stmts)
}

// Execute sends write statements to /db/execute.
func (t *Transport) Execute(ctx context.Context, stmts []rqlite.Statement) (*rqlite.Response, error) {
	return t.post(ctx, pathExecute, url.Values{}, stmts)
}

// Version asks the node for its version via the X-Rqlite-Version header.
func (t *Transport) Version(ctx context.Context) (*version.Version, error) {
	resp, err := t.do(ctx, http.MethodGet, t.endpoint(pathStatus, nil), nil, uuid.NewString())
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	raw := resp.Header.Get(headerVersion)
	if raw == "" {
		return nil, ErrVersionUnknown
	}
	v, err := version.NewVersion(raw)
	if err != nil {
		return nil, errors.Join(ErrVersionUnknown, err)
	}
	return v, nil
}

func (t *Transport) endpoint(path string, q url.Values) string {
	u := t.base.JoinPath(path)
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (t *Transport) post(ctx context.Context, path string, q url.Values, stmts []rqlite.Statement) (*rqlite.Response, error) {
	body, err := rqlite.EncodeStatements(stmts)
	if err != nil {
		return nil, errors.Join(ErrMarshalRequest, err)
	}

	target := t.endpoint(path, q)
	reqID := uuid.NewString()
	for redirects := 0; ; redirects++ {
		resp, err := t.do(ctx, http.MethodPost, target, body, reqID)
		if err != nil {
			return nil, err
		}

		if !isRedirect(resp.StatusCode) {
			return t.decode(resp)
		}

		loc, locErr := resp.Location()
		drain(resp)
		if locErr != nil {
			return nil, errors.Join(ErrHTTPStatus, fmt.Errorf("redirect without location: %w", locErr))
		}
		if redirects >= t.maxRedirects {
			return nil, fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, redirects)
		}

		t.logger.DebugContext(ctx, "following rqlite redirect",
			"from", target, "to", loc.String(), "request_id", reqID)
		target = loc.String()
	}
}

func (t *Transport) do(ctx context.Context, method, target string, body []byte, reqID string) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, errors.Join(ErrMarshalRequest, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(headerRequestID, reqID)
	if t.username != "" {
		req.SetBasicAuth(t.username, t.password)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.DebugContext(ctx, "rqlite request failed",
			"method", method, "url", target, "request_id", reqID, "error", err)
		return nil, errors.Join(ErrRequestFailed, err)
	}
	return resp, nil
}

func (t *Transport) decode(resp *http.Response) (*rqlite.Response, error) {
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}
	return rqlite.DecodeResponse(resp.Body)
}

func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := fmt.Sprintf("status %d", resp.StatusCode)
	if s := strings.TrimSpace(string(msg)); s != "" {
		detail = fmt.Sprintf("%s: %s", detail, s)
	}
	return errors.Join(ErrHTTPStatus, errors.New(detail))
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

// drain discards the rest of the body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
