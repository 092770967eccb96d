// Package metrics provides Prometheus instrumentation for trustscore.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	enabled     bool
	serviceName string

	// HTTP metrics
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec

	// Explorer metrics
	explorerRequestsTotal *prometheus.CounterVec

	// Scoring metrics
	subScoreTotal      *prometheus.CounterVec
	evaluationTotal    *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
)

// Init initializes the metrics system. It must be called at most once per
// process because collectors register with the default registry.
func Init(enabledFlag bool, svcName string) {
	enabled = enabledFlag
	serviceName = svcName

	if !enabled {
		return
	}

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	explorerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_requests_total",
			Help: "Total number of block explorer and Sourcify requests",
		},
		[]string{"endpoint", "outcome"},
	)

	subScoreTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trust_subscore_total",
			Help: "Sub-scores computed, by kind and ordinal score",
		},
		[]string{"kind", "score"},
	)

	evaluationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trust_evaluation_total",
			Help: "Transaction reviews, by outcome",
		},
		[]string{"outcome"},
	)

	evaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trust_evaluation_duration_seconds",
			Help:    "End-to-end latency of a transaction review",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
		[]string{"outcome"},
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	if !enabled {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	}
	return promhttp.Handler()
}

// Enabled returns whether metrics are enabled.
func Enabled() bool {
	return enabled
}

// ServiceName returns the configured service name for metric labels.
func ServiceName() string {
	return serviceName
}
