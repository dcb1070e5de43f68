package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports store operation counters and latencies.
type PrometheusMetricsRecorder struct {
	operations      *prometheus.CounterVec
	durations       *prometheus.HistogramVec
	persistFailures prometheus.Counter
}

// NewPrometheusMetricsRecorder registers the store collectors on reg. A nil
// reg uses the default registerer.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &PrometheusMetricsRecorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inspector",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Store operations by name and outcome.",
		}, []string{"operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "inspector",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Store operation latency including backing-store writes.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"operation"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inspector",
			Subsystem: "store",
			Name:      "persist_failures_total",
			Help:      "Operations that left the backing store behind the in-memory state.",
		}),
	}
	for _, c := range []prometheus.Collector{r.operations, r.durations, r.persistFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Observe implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	r.operations.WithLabelValues(operation, statusLabel(success)).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
	if !success {
		r.persistFailures.Inc()
	}
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
