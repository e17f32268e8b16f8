package host

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	proto "github.com/tarmac-project/protobuf-go/sdk/http"
	pb "google.golang.org/protobuf/proto"

	"github.com/tarmac-project/rqlite"
)

const (
	capabilityHTTPClient = "httpclient"
	fnCall               = "call"

	// DefaultMaxRedirects bounds how many leader redirects a request follows.
	DefaultMaxRedirects = 5
)

var (
	// ErrInvalidURL indicates a malformed or unsupported base URL.
	ErrInvalidURL = errors.New("invalid URL provided")

	// ErrInvalidLevel indicates an unknown read consistency level.
	ErrInvalidLevel = errors.New("invalid consistency level")

	// ErrMarshalRequest wraps failures while encoding the request payload.
	ErrMarshalRequest = errors.New("failed to create request")

	// ErrUnmarshalResponse wraps failures while decoding the host response.
	ErrUnmarshalResponse = errors.New("failed to unmarshal response")

	// ErrHTTPStatus means the node answered with a non-success status.
	ErrHTTPStatus = errors.New("rqlite returned an error status")

	// ErrTooManyRedirects means MaxRedirects leader redirects were exceeded.
	ErrTooManyRedirects = errors.New("too many redirects")
)

// Config configures a Transport.
type Config struct {
	// Namespace scopes host calls. Empty means DefaultNamespace.
	Namespace string

	// BaseURL is the rqlite node address as seen from the host.
	BaseURL string

	// Username and Password enable basic auth.
	Username string
	Password string

	// Level is sent as the read consistency level on queries: none, weak,
	// linearizable or strong. Empty leaves the server default.
	Level rqlite.Level

	// InsecureSkipVerify disables TLS verification on the host side.
	InsecureSkipVerify bool

	// MaxRedirects bounds leader redirects; zero means DefaultMaxRedirects.
	MaxRedirects int

	// HostCall overrides the waPC host function used for requests.
	HostCall Func
}

// Transport runs rqlite statements through the host httpclient capability.
// It is the transport to use from inside a Tarmac WebAssembly function,
// where sockets are unavailable.
type Transport struct {
	namespace    string
	base         *url.URL
	auth         string
	level        rqlite.Level
	insecure     bool
	maxRedirects int
	hostCall     Func
}

// Ensure Transport always satisfies rqlite.Transport at compile time.
var _ rqlite.Transport = (*Transport)(nil)

// NewTransport creates a Transport from config.
func NewTransport(config Config) (*Transport, error) {
	base, err := url.Parse(config.BaseURL)
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, ErrInvalidURL
	}

	if !config.Level.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLevel, config.Level)
	}

	user, pass := config.Username, config.Password
	if base.User != nil {
		if user == "" {
			user = base.User.Username()
			pass, _ = base.User.Password()
		}
		base.User = nil
	}

	t := &Transport{
		namespace:    Namespace(config.Namespace),
		base:         base,
		level:        config.Level,
		insecure:     config.InsecureSkipVerify,
		maxRedirects: config.MaxRedirects,
		hostCall:     Call(config.HostCall),
	}
	if user != "" {
		t.auth = "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
	}
	if t.maxRedirects <= 0 {
		t.maxRedirects = DefaultMaxRedirects
	}

	return t, nil
}

// Query sends read statements to /db/query.
func (t *Transport) Query(ctx context.Context, stmts []rqlite.Statement) (*rqlite.Response, error) {
	q := url.Values{}
	if t.level != rqlite.LevelDefault {
		q.Set("level", string(t.level))
	}
	return t.post(ctx, "/db/query", q, stmts)
}

// Execute sends write statements to /db/execute.
func (t *Transport) Execute(ctx context.Context, stmts []rqlite.Statement) (*rqlite.Response, error) {
	return t.post(ctx, "/db/execute", nil, stmts)
}

func (t *Transport) post(ctx context.Context, path string, q url.Values, stmts []rqlite.Statement) (*rqlite.Response, error) {
	body, err := rqlite.EncodeStatements(stmts)
	if err != nil {
		return nil, errors.Join(ErrMarshalRequest, err)
	}

	u := t.base.JoinPath(path)
	u.RawQuery = q.Encode()
	target := u.String()

	for redirects := 0; ; redirects++ {
		// The host call itself cannot be interrupted, so honour
		// cancellation between hops.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := t.call(target, body)
		if err != nil {
			return nil, err
		}

		code := int(resp.GetCode())
		switch {
		case code >= 200 && code <= 299:
			return rqlite.DecodeResponse(bytes.NewReader(resp.GetBody()))
		case isRedirect(code):
			loc := header(resp, "Location")
			if loc == "" {
				return nil, errors.Join(ErrHTTPStatus, fmt.Errorf("status %d without location", code))
			}
			if redirects >= t.maxRedirects {
				return nil, fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, redirects)
			}
			next, err := url.Parse(target)
			if err == nil {
				next, err = next.Parse(loc)
			}
			if err != nil {
				return nil, errors.Join(ErrHTTPStatus, err)
			}
			target = next.String()
		default:
			detail := fmt.Sprintf("status %d", code)
			if b := bytes.TrimSpace(resp.GetBody()); len(b) > 0 {
				detail = fmt.Sprintf("%s: %s", detail, b)
			}
			return nil, errors.Join(ErrHTTPStatus, errors.New(detail))
		}
	}
}

// call marshals the protobuf request, performs the host call and checks the
// host status of the reply.
func (t *Transport) call(target string, body []byte) (*proto.HTTPClientResponse, error) {
	headers := map[string]*proto.Header{
		"Content-Type": {Values: []string{"application/json"}},
	}
	if t.auth != "" {
		headers["Authorization"] = &proto.Header{Values: []string{t.auth}}
	}

	req := &proto.HTTPClient{
		Method:   http.MethodPost,
		Url:      target,
		Insecure: t.insecure,
		Body:     body,
		Headers:  headers,
	}
	b, err := pb.Marshal(req)
	if err != nil {
		return nil, errors.Join(ErrMarshalRequest, err)
	}

	raw, err := t.hostCall(t.namespace, capabilityHTTPClient, fnCall, b)
	if err != nil {
		return nil, errors.Join(ErrHostCall, err)
	}

	var resp proto.HTTPClientResponse
	if err := pb.Unmarshal(raw, &resp); err != nil {
		return nil, errors.Join(ErrUnmarshalResponse, err)
	}
	if err := CheckStatus(resp.GetStatus()); err != nil {
		return nil, err
	}
	return &resp, nil
}

func header(resp *proto.HTTPClientResponse, name string) string {
	for k, h := range resp.GetHeaders() {
		if http.CanonicalHeaderKey(k) == name && len(h.GetValues()) > 0 {
			return h.GetValues()[0]
		}
	}
	return ""
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
