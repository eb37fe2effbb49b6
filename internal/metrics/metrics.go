// Package metrics holds the Prometheus collectors for the goal tracker.
// A nil *Metrics is valid and records nothing, so tests can skip wiring it.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for suggestion requests.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeFailure = "failure"
)

// Metrics bundles every collector the service exposes on /metrics.
type Metrics struct {
	suggestionRequests *prometheus.CounterVec
	suggestionDuration *prometheus.HistogramVec
	storeWrites        *prometheus.CounterVec
}

// New registers all collectors on reg and returns them.
// Pass prometheus.NewRegistry() in tests to avoid global registration clashes.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// source is "remote" for the HTTP client, "planner" for the in-process LLM planner.
		suggestionRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "goals_suggestion_requests_total",
			Help: "Suggestion round trips by source and outcome",
		}, []string{"source", "outcome"}),

		suggestionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "goals_suggestion_duration_seconds",
			Help:    "Suggestion round trip latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		}, []string{"source"}),

		storeWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "goals_store_writes_total",
			Help: "Full goal list snapshot writes by result",
		}, []string{"result"}),
	}
}

// ObserveSuggestion records one finished suggestion round trip.
func (m *Metrics) ObserveSuggestion(source, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.suggestionRequests.WithLabelValues(source, outcome).Inc()
	m.suggestionDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveStoreWrite records one snapshot write. err == nil counts as "ok".
func (m *Metrics) ObserveStoreWrite(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeWrites.WithLabelValues(result).Inc()
}
