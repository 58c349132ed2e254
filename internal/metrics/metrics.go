// Package metrics provides Prometheus collectors for match runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricMatchRunsTotal      = "matcher_runs_total"
	MetricMatchRunDuration    = "matcher_run_duration_seconds"
	MetricCandidatesTotal     = "matcher_candidates_total"
	MetricGateFallbacksTotal  = "matcher_gate_fallbacks_total"
	MetricReputationFallbacks = "matcher_reputation_fallbacks_total"
)

// Outcome label values for completed runs.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeError   = "error"
)

// Candidate stage label values.
const (
	StageReceived         = "received"
	StageMissingEmbedding = "missing_embedding"
	StagePassedGate       = "passed_gate"
	StageScored           = "scored"
)

// Metrics contains Prometheus metrics for match runs.
// All operations are thread-safe.
type Metrics struct {
	runsTotal           *prometheus.CounterVec
	runDuration         prometheus.Histogram
	candidates          *prometheus.CounterVec
	gateFallbacks       prometheus.Counter
	reputationFallbacks prometheus.Counter
}

// NewMetrics creates and returns a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricMatchRunsTotal,
				Help: "Total number of match runs by outcome",
			},
			[]string{"outcome"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricMatchRunDuration,
				Help:    "Histogram of match run duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
		),
		candidates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricCandidatesTotal,
				Help: "Total number of candidates by pipeline stage",
			},
			[]string{"stage"},
		),
		gateFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricGateFallbacksTotal,
				Help: "Total number of runs where no candidate cleared the semantic gate",
			},
		),
		reputationFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricReputationFallbacks,
				Help: "Total number of reputation lookups replaced by the prior",
			},
		),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.runsTotal,
		m.runDuration,
		m.candidates,
		m.gateFallbacks,
		m.reputationFallbacks,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRun records a finished run. A nil receiver is a no-op.
func (m *Metrics) ObserveRun(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(duration.Seconds())
}

// AddCandidates adds n candidates to the given stage. A nil receiver is a no-op.
func (m *Metrics) AddCandidates(stage string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.candidates.WithLabelValues(stage).Add(float64(n))
}

// IncGateFallback records a gate fallback. A nil receiver is a no-op.
func (m *Metrics) IncGateFallback() {
	if m == nil {
		return
	}
	m.gateFallbacks.Inc()
}

// AddReputationFallbacks records n reputation lookups replaced by the prior. A nil receiver is a no-op.
func (m *Metrics) AddReputationFallbacks(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.reputationFallbacks.Add(float64(n))
}
