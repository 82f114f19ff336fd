// Package metrics exposes Prometheus collectors for the optimization engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for OptimizationRuns.
const (
	OutcomeOptimized     = "optimized"
	OutcomeSkipped       = "skipped"
	OutcomeNoImprovement = "no_improvement"
	OutcomeInvalidInput  = "invalid_input"
	OutcomeStale         = "stale"
)

var (
	OptimizationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fi_optimization_runs_total",
			Help: "Total number of optimization runs by outcome",
		},
		[]string{"outcome"},
	)

	OptimizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fi_optimization_duration_seconds",
			Help:    "Duration of optimization runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	SolverProbes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fi_solver_probes_total",
			Help: "Total number of FI age probes evaluated by the solver",
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fi_cache_lookups_total",
			Help: "Projection cache lookups by result",
		},
		[]string{"result"},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fi_cache_evictions_total",
			Help: "Projection cache entries evicted on overflow",
		},
	)

	AdvisoryRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fi_advisory_requests_total",
			Help: "Advisory provider calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	HostFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fi_host_sync_fallbacks_total",
			Help: "Runs executed synchronously because the background host was unavailable",
		},
	)

	RunsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fi_runs_in_flight",
			Help: "Number of optimization runs currently executing in the background",
		},
	)
)
