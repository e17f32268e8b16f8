package metrics

import (
	"errors"
	"regexp"

	proto "github.com/tarmac-project/protobuf-go/sdk/metrics"

	"github.com/tarmac-project/rqlite/host"
)

const (
	capabilityName = "metrics"
	fnCounter      = "counter"
	fnHistogram    = "histogram"
)

var (
	// ErrInvalidMetricName indicates a metric name that does not match the supported format.
	ErrInvalidMetricName = errors.New("metric name is invalid")

	// isMetricNameValid mirrors the name check the host applies.
	isMetricNameValid = regexp.MustCompile(`^[a-zA-Z0-9_:][a-zA-Z0-9_:]*$`)
)

// Config controls how a Metrics instance interacts with the host runtime.
type Config struct {
	// Namespace scopes host calls. Empty means host.DefaultNamespace.
	Namespace string

	// HostCall overrides the waPC host function used for metrics operations.
	HostCall host.Func
}

// Metrics creates metric handles on the host metrics capability.
type Metrics struct {
	namespace string
	hostCall  host.Func
}

// Counter is a named counter metric handle.
type Counter struct {
	name      string
	namespace string
	hostCall  host.Func
}

// Histogram is a named histogram metric handle.
type Histogram struct {
	name      string
	namespace string
	hostCall  host.Func
}

// New creates a Metrics with namespace defaults and optional host-call override.
func New(config Config) (*Metrics, error) {
	return &Metrics{
		namespace: host.Namespace(config.Namespace),
		hostCall:  host.Call(config.HostCall),
	}, nil
}

// NewCounter creates a named counter metric handle.
func (m *Metrics) NewCounter(name string) (*Counter, error) {
	if !isMetricNameValid.MatchString(name) {
		return nil, ErrInvalidMetricName
	}
	return &Counter{name: name, namespace: m.namespace, hostCall: m.hostCall}, nil
}

// Inc increments the counter by one.
func (c *Counter) Inc() {
	payload, err := (&proto.MetricsCounter{Name: c.name}).MarshalVT()
	if err != nil {
		return
	}
	_, _ = c.hostCall(c.namespace, capabilityName, fnCounter, payload)
}

// NewHistogram creates a named histogram metric handle.
func (m *Metrics) NewHistogram(name string) (*Histogram, error) {
	if !isMetricNameValid.MatchString(name) {
		return nil, ErrInvalidMetricName
	}
	return &Histogram{name: name, namespace: m.namespace, hostCall: m.hostCall}, nil
}

// Observe records a value for the histogram.
func (h *Histogram) Observe(value float64) {
	payload, err := (&proto.MetricsHistogram{Name: h.name, Value: value}).MarshalVT()
	if err != nil {
		return
	}
	_, _ = h.hostCall(h.namespace, capabilityName, fnHistogram, payload)
}
