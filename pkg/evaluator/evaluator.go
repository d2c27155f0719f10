package evaluator

import (
	"context"

	"github.com/dshills/hsaga/pkg/model"
)

// FitnessResult is the return value of an Evaluator call: an aggregate
// scalar (higher is better), a named objective-component map, and an
// optional list of constraint violations the evaluator chose to surface
// (the core's own compliance checker, pkg/quality, runs independently and
// does not require the evaluator to populate this field).
type FitnessResult struct {
	Fitness    float64
	Objectives map[string]float64
	Violations []model.ConstraintViolation
}

// Evaluator computes a FitnessResult for a candidate solution against a
// site. Implementations supplied by the embedding application must be:
//   - Deterministic given identical inputs (no hidden state).
//   - Safe for concurrent use from parallel SA chains and GA batches.
//   - Fast: total runtime per call should be well under one second to
//     support roughly 10^4 evaluations per run.
type Evaluator interface {
	Evaluate(ctx context.Context, sol *model.Solution, site *model.Site) (FitnessResult, error)
}

// Func adapts a plain function to the Evaluator interface, the same
// pattern http.HandlerFunc uses for single-method interfaces.
type Func func(ctx context.Context, sol *model.Solution, site *model.Site) (FitnessResult, error)

func (f Func) Evaluate(ctx context.Context, sol *model.Solution, site *model.Site) (FitnessResult, error) {
	return f(ctx, sol, site)
}
