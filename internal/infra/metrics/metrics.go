package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors the service exposes on /metrics.
type Metrics struct {
	SortSubmissions *prometheus.CounterVec
	SortedPoles     *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil reg means
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		SortSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poletreat",
			Name:      "sort_submissions_total",
			Help:      "Stock sort submissions by outcome (success, validation_error, persistence_error).",
		}, []string{"outcome"}),
		SortedPoles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poletreat",
			Name:      "sorted_poles_total",
			Help:      "Poles sorted, by category.",
		}, []string{"category"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "poletreat",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.SortSubmissions, m.SortedPoles, m.HTTPDuration)
	return m
}
