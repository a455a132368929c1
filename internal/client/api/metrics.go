package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts backend calls per operation. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "backoffice",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Count of backend requests by operation, method and status code",
			},
			[]string{"op", "method", "code"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "backoffice",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Latency of backend requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op", "method"},
		),
	}
	reg.MustRegister(m.requests, m.latency)
	return m
}

func (m *Metrics) observe(op, method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, method, code).Inc()
	m.latency.WithLabelValues(op, method).Observe(d.Seconds())
}
