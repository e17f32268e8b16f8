package metrics

import (
	"sync"
	"time"

	"github.com/tarmac-project/rqlite"
)

// Observer reports rqlite round trips as host metrics. For each operation
// (query, execute) it emits <prefix>_<op>_total, <prefix>_<op>_errors_total
// and the <prefix>_<op>_seconds histogram.
type Observer struct {
	prefix  string
	metrics *Metrics

	mu  sync.Mutex
	ops map[string]*opMetrics
}

type opMetrics struct {
	total   *Counter
	errors  *Counter
	seconds *Histogram
}

// Ensure Observer always satisfies rqlite.Observer at compile time.
var _ rqlite.Observer = (*Observer)(nil)

// NewObserver creates an Observer whose metric names start with prefix.
func NewObserver(m *Metrics, prefix string) (*Observer, error) {
	if !isMetricNameValid.MatchString(prefix) {
		return nil, ErrInvalidMetricName
	}
	return &Observer{prefix: prefix, metrics: m, ops: make(map[string]*opMetrics)}, nil
}

// ObserveQuery records one round trip. Operations whose name cannot form a
// valid metric name are dropped.
func (o *Observer) ObserveQuery(op string, elapsed time.Duration, err error) {
	h, ok := o.handles(op)
	if !ok {
		return
	}

	h.total.Inc()
	if err != nil {
		h.errors.Inc()
	}
	h.seconds.Observe(elapsed.Seconds())
}

func (o *Observer) handles(op string) (*opMetrics, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if h, ok := o.ops[op]; ok {
		return h, h != nil
	}

	base := o.prefix + "_" + op
	total, err1 := o.metrics.NewCounter(base + "_total")
	errs, err2 := o.metrics.NewCounter(base + "_errors_total")
	seconds, err3 := o.metrics.NewHistogram(base + "_seconds")
	if err1 != nil || err2 != nil || err3 != nil {
		o.ops[op] = nil
		return nil, false
	}

	h := &opMetrics{total: total, errors: errs, seconds: seconds}
	o.ops[op] = h
	return h, true
}
