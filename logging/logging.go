package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tarmac-project/rqlite/host"
)

const capabilityName = "logging"

// LevelTrace sits below slog.LevelDebug and maps to the host Trace function.
const LevelTrace = slog.Level(-8)

// Config controls how a Handler interacts with the host runtime.
type Config struct {
	// Namespace scopes host calls. Empty means host.DefaultNamespace.
	Namespace string

	// Level is the minimum level forwarded to the host. Nil means Info.
	Level slog.Leveler

	// HostCall overrides the waPC host function used for logging operations.
	HostCall host.Func
}

// Handler is an slog.Handler that forwards records to the host logging
// capability. Each record is rendered in logfmt without time or level, and
// the level selects the host function.
type Handler struct {
	namespace string
	hostCall  host.Func
	level     slog.Leveler

	// text renders into buf; derived handlers share both under mu.
	mu   *sync.Mutex
	buf  *bytes.Buffer
	text slog.Handler
}

// Ensure Handler always satisfies slog.Handler at compile time.
var _ slog.Handler = (*Handler)(nil)

// New creates a Handler that emits logs through the host capability.
func New(cfg Config) (*Handler, error) {
	level := cfg.Level
	if level == nil {
		level = slog.LevelInfo
	}

	buf := &bytes.Buffer{}
	text := slog.NewTextHandler(buf, &slog.HandlerOptions{
		// Filtering happens in Enabled.
		Level: slog.Level(-1 << 10),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey) {
				return slog.Attr{}
			}
			return a
		},
	})

	return &Handler{
		namespace: host.Namespace(cfg.Namespace),
		hostCall:  host.Call(cfg.HostCall),
		level:     level,
		mu:        &sync.Mutex{},
		buf:       buf,
		text:      text,
	}, nil
}

// NewLogger is shorthand for slog.New over a new Handler.
func NewLogger(cfg Config) (*slog.Logger, error) {
	h, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return slog.New(h), nil
}

// Enabled reports whether level meets the configured minimum.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle renders r and sends it to the host.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.Reset()
	if err := h.text.Handle(ctx, r); err != nil {
		return err
	}
	msg := bytes.TrimSuffix(h.buf.Bytes(), []byte("\n"))

	if _, err := h.hostCall(h.namespace, capabilityName, function(r.Level), bytes.Clone(msg)); err != nil {
		return errors.Join(host.ErrHostCall, err)
	}
	return nil
}

// WithAttrs returns a Handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.text = h.text.WithAttrs(attrs)
	return &c
}

// WithGroup returns a Handler that nests later attributes under name.
func (h *Handler) WithGroup(name string) slog.Handler {
	c := *h
	c.text = h.text.WithGroup(name)
	return &c
}

func function(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "Error"
	case level >= slog.LevelWarn:
		return "Warn"
	case level >= slog.LevelInfo:
		return "Info"
	case level >= slog.LevelDebug:
		return "Debug"
	default:
		return "Trace"
	}
}
