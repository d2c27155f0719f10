package orchestrator

import (
	"github.com/dshills/hsaga/pkg/model"
	"github.com/dshills/hsaga/pkg/quality"
	"github.com/dshills/hsaga/pkg/roadnetwork"
	"github.com/dshills/hsaga/pkg/sa"
)

// Timing breaks down wall-clock time spent in each phase, in milliseconds.
type Timing struct {
	SATimeMS   int64 `json:"sa_time_ms"`
	GATimeMS   int64 `json:"ga_time_ms"`
	RoadTimeMS int64 `json:"road_time_ms"`
}

// ConvergenceTraces carries the per-phase best-fitness curves used for
// diagnostics and for the CLI's progress summary.
type ConvergenceTraces struct {
	SA []sa.ChainTrace `json:"sa"`
	GA []float64       `json:"ga_best_fitness"`
}

// ResultBundle is the orchestrator's output (spec.md §6).
type ResultBundle struct {
	BestSolution  *model.Solution              `json:"best_solution"`
	ParetoFront   []*model.Solution            `json:"pareto_front"`
	OperatorStats map[string]map[string]model.OperatorStats `json:"operator_stats"`
	Compliance    quality.ComplianceReport     `json:"compliance"`
	Robustness    *quality.RobustnessReport    `json:"robustness,omitempty"`
	RoadNetwork   *roadnetwork.Network         `json:"road_network"`
	Timing        Timing                       `json:"timing"`
	Convergence   ConvergenceTraces            `json:"convergence"`
	RNGSeedUsed   uint64                       `json:"rng_seed_used"`
	Cancelled     bool                         `json:"cancelled"`
	Diagnostics   []Diagnostic                 `json:"diagnostics,omitempty"`
}
