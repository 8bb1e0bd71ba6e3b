package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics counts table operations of one run. It uses its own registry so a
// run can be pushed to a Pushgateway without process-level collectors.
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	retries    *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates and registers the run collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tablectl_operations_total",
			Help: "Table operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tablectl_retries_total",
			Help: "Retried table service calls by operation.",
		}, []string{"op"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tablectl_operation_duration_seconds",
			Help:    "Wall time of table operations including retries.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"op"}),
	}
	m.registry.MustRegister(m.operations, m.retries, m.duration)
	return m
}

// ObserveOperation records one finished operation.
func (m *Metrics) ObserveOperation(op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveRetry records one retried call.
func (m *Metrics) ObserveRetry(op string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(op).Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Push sends the collected metrics to a Pushgateway under job, grouped by
// the given labels (for example pipeline and commit).
func (m *Metrics) Push(url, job string, grouping map[string]string) error {
	p := push.New(url, job).Gatherer(m.registry)
	for k, v := range grouping {
		if v != "" {
			p = p.Grouping(k, v)
		}
	}
	if err := p.Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
