package hostmock

import (
	"bytes"
	"errors"
	"sync"
	"testing"
)

var ErrMockError = errors.New("Mock error")

func TestHostMock(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name       string
		cfg        Config
		namespace  string
		capability string
		function   string
		payload    []byte
		want       []byte
		wantErr    error
	}{
		{
			name: "fixed response",
			cfg: Config{
				ExpectedNamespace:  "tarmac",
				ExpectedCapability: "httpclient",
				ExpectedFunction:   "call",
				Response:           func() []byte { return []byte("ok") },
			},
			namespace:  "tarmac",
			capability: "httpclient",
			function:   "call",
			want:       []byte("ok"),
		},
		{
			name:       "wildcard routing",
			cfg:        Config{Response: func() []byte { return []byte("any") }},
			namespace:  "custom",
			capability: "logging",
			function:   "Info",
			want:       []byte("any"),
		},
		{
			name: "handler sees the call",
			cfg: Config{
				Handler: func(c Call) ([]byte, error) {
					return append([]byte(c.Function+":"), c.Payload...), nil
				},
				Response: func() []byte { return []byte("ignored") },
			},
			namespace:  "tarmac",
			capability: "metrics",
			function:   "counter",
			payload:    []byte("hits"),
			want:       []byte("counter:hits"),
		},
		{
			name:       "handler error",
			cfg:        Config{Handler: func(Call) ([]byte, error) { return nil, ErrMockError }},
			namespace:  "tarmac",
			capability: "httpclient",
			function:   "call",
			wantErr:    ErrMockError,
		},
		{
			name:       "custom failure",
			cfg:        Config{Fail: true, Error: ErrMockError, Response: func() []byte { return []byte("x") }},
			namespace:  "tarmac",
			capability: "httpclient",
			function:   "call",
			wantErr:    ErrMockError,
		},
		{
			name:       "default failure",
			cfg:        Config{Fail: true},
			namespace:  "tarmac",
			capability: "httpclient",
			function:   "call",
			wantErr:    ErrOperationFailed,
		},
		{
			name:       "nil response",
			cfg:        Config{ExpectedNamespace: "tarmac"},
			namespace:  "tarmac",
			capability: "httpclient",
			function:   "call",
		},
		{
			name: "payload rejected",
			cfg: Config{
				PayloadValidator: func(p []byte) error {
					if string(p) != "valid" {
						return ErrMockError
					}
					return nil
				},
				Response: func() []byte { return []byte("ok") },
			},
			namespace:  "tarmac",
			capability: "httpclient",
			function:   "call",
			payload:    []byte("invalid"),
			wantErr:    ErrMockError,
		},
		{
			name:       "unexpected namespace",
			cfg:        Config{ExpectedNamespace: "expected"},
			namespace:  "tarmac",
			capability: "httpclient",
			function:   "call",
			wantErr:    ErrUnexpectedNamespace,
		},
		{
			name:       "unexpected capability",
			cfg:        Config{ExpectedCapability: "httpclient"},
			namespace:  "tarmac",
			capability: "kvstore",
			function:   "call",
			wantErr:    ErrUnexpectedCapability,
		},
		{
			name:       "unexpected function",
			cfg:        Config{ExpectedFunction: "call"},
			namespace:  "tarmac",
			capability: "httpclient",
			function:   "get",
			wantErr:    ErrUnexpectedFunction,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mock, err := New(tc.cfg)
			if err != nil {
				t.Fatalf("New Mock instance creation failed: %v", err)
			}

			got, err := mock.HostCall(tc.namespace, tc.capability, tc.function, tc.payload)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Mock call returned unexpected error: got %v, want %v", err, tc.wantErr)
			}
			if !bytes.Equal(got, tc.want) {
				t.Fatalf("Mock call returned unexpected response: got %q, want %q", got, tc.want)
			}

			calls := mock.Calls()
			if len(calls) != 1 || calls[0].Capability != tc.capability || !bytes.Equal(calls[0].Payload, tc.payload) {
				t.Fatalf("unexpected recorded calls %+v", calls)
			}
		})
	}
}

func TestHostMock_Recording(t *testing.T) {
	t.Parallel()

	mock, _ := New(Config{})

	payload := []byte("first")
	_, _ = mock.HostCall("tarmac", "logging", "Info", payload)
	payload[0] = 'F'

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = mock.HostCall("tarmac", "logging", "Debug", nil)
		}()
	}
	wg.Wait()

	calls := mock.Calls()
	if len(calls) != 9 {
		t.Fatalf("expected 9 calls, got %d", len(calls))
	}
	if string(calls[0].Payload) != "first" {
		t.Fatalf("recorded payload must be a copy, got %q", calls[0].Payload)
	}

	mock.Reset()
	if len(mock.Calls()) != 0 {
		t.Fatalf("expected Reset to clear calls")
	}
}
