// Package obsmetrics exposes the orchestrator's run-time counters and
// gauges over a Prometheus /metrics endpoint.
package obsmetrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the metrics the SA/GA phases and the orchestrator update
// during a run.
type Registry struct {
	reg *prometheus.Registry

	IterationsTotal   *prometheus.CounterVec
	EvaluatorErrors   *prometheus.CounterVec
	ChainsStalled     prometheus.Counter
	BestFitness       prometheus.Gauge
	ParetoFrontSize   prometheus.Gauge
	OperatorSelection *prometheus.CounterVec
	RunDuration       prometheus.Histogram
}

// New builds a fresh, isolated registry so concurrent runs in the same
// process (e.g. in tests) never collide on metric names.
func New() *Registry {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Registry{
		reg: reg,
		IterationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hsaga_iterations_total",
			Help: "Iterations completed, by phase (sa, ga).",
		}, []string{"phase"}),
		EvaluatorErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hsaga_evaluator_errors_total",
			Help: "Evaluator failures, by phase.",
		}, []string{"phase"}),
		ChainsStalled: f.NewCounter(prometheus.CounterOpts{
			Name: "hsaga_sa_chains_stalled_total",
			Help: "SA chains marked stalled after a second consecutive evaluator failure.",
		}),
		BestFitness: f.NewGauge(prometheus.GaugeOpts{
			Name: "hsaga_best_fitness",
			Help: "Best fitness observed so far in the current run.",
		}),
		ParetoFrontSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "hsaga_pareto_front_size",
			Help: "Current number of non-dominated solutions on the Pareto front.",
		}),
		OperatorSelection: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hsaga_operator_selections_total",
			Help: "Operator selections made by the adaptive selector, by family and operator.",
		}, []string{"family", "operator"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "hsaga_run_duration_seconds",
			Help:    "Wall-clock duration of completed optimizer runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
}

// Handler returns the HTTP handler to mount at a metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
