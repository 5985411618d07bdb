// Package metrics provides the centralized Prometheus registry for the
// timing service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	CheckpointRecordingsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trailtime",
		Name:      "checkpoint_recordings_total",
		Help:      "Total checkpoint recording attempts by checkpoint and outcome",
	}, []string{"checkpoint", "outcome"})

	TokensIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trailtime",
		Name:      "tokens_issued_total",
		Help:      "Total checkpoint tokens issued by checkpoint",
	}, []string{"checkpoint"})

	TokenVerificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trailtime",
		Name:      "token_verifications_total",
		Help:      "Total token verifications by result",
	}, []string{"result"})
)

// Histogram metrics
var (
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "trailtime",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method, route and status",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Registry returns the shared metrics registry, initialising it on first use
func Registry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			CheckpointRecordingsTotal,
			TokensIssuedTotal,
			TokenVerificationsTotal,
			HTTPRequestDuration,
		)
	})
	return registry
}

// Handler returns the HTTP handler serving the /metrics endpoint
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry(), promhttp.HandlerOpts{})
}

// RecordCheckpoint records a checkpoint recording attempt.
// outcome should be one of: "recorded", "duplicate"
func RecordCheckpoint(checkpoint, outcome string) {
	CheckpointRecordingsTotal.WithLabelValues(checkpoint, outcome).Inc()
}

// RecordTokenIssued records a token issuance
func RecordTokenIssued(checkpoint string) {
	TokensIssuedTotal.WithLabelValues(checkpoint).Inc()
}

// RecordTokenVerification records a token verification.
// result should be one of: "ok", "expired", "invalid"
func RecordTokenVerification(result string) {
	TokenVerificationsTotal.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest records one served HTTP request
func ObserveHTTPRequest(method, route string, status int, seconds float64) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(seconds)
}
