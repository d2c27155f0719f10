package orchestrator

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed input (duplicate ids, empty building
// list, degenerate site, negative areas). Fatal; surfaced before any
// computation begins (spec.md §7).
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("orchestrator: validation failed: %s", strings.Join(e.Reasons, "; "))
}

// InfeasibleSeedError reports that no valid initial solution was found
// within the configured retry budget. Non-fatal: the solver proceeds with
// the least-violating seed, and this is recorded as a Diagnostic rather
// than returned.
type InfeasibleSeedError struct {
	Phase      string
	Violations int
}

func (e *InfeasibleSeedError) Error() string {
	return fmt.Sprintf("orchestrator: no fully valid seed found in phase %s (best attempt had %d violations)", e.Phase, e.Violations)
}

// EvaluatorError wraps a failure from the caller-supplied Evaluator. Local
// retry against a re-randomized neighbor happens before this is ever
// constructed; it represents the outcome after that retry already failed
// once (chain/individual stalled, non-fatal) or, when every chain in a
// phase stalls, the fatal escalation of that same condition.
type EvaluatorError struct {
	Phase       string
	Fingerprint string
	Err         error
}

func (e *EvaluatorError) Error() string {
	return fmt.Sprintf("orchestrator: evaluator failed in phase %s for solution %s: %v", e.Phase, e.Fingerprint, e.Err)
}

func (e *EvaluatorError) Unwrap() error { return e.Err }

// NumericalFailureError reports a NaN/Inf objective or a singular tensor
// chain that produced non-finite positions, or any condition where the
// run cannot produce a usable result. Fatal; the run aborts with partial
// results retained in the returned ResultBundle where possible.
type NumericalFailureError struct {
	Phase  string
	Detail string
}

func (e *NumericalFailureError) Error() string {
	return fmt.Sprintf("orchestrator: numerical failure in phase %s: %s", e.Phase, e.Detail)
}

// CancelledError reports external cancellation via the run's context.
// Non-fatal: a partial ResultBundle with Cancelled=true is returned
// instead of this error propagating to the caller.
type CancelledError struct{}

func (e *CancelledError) Error() string { return "orchestrator: run cancelled" }

// BudgetExhaustedError reports that the wall-clock budget elapsed before
// the run completed. Non-fatal, handled identically to CancelledError.
type BudgetExhaustedError struct {
	BudgetMS int64
}

func (e *BudgetExhaustedError) Error() string {
	return fmt.Sprintf("orchestrator: wall-clock budget of %dms exhausted", e.BudgetMS)
}

// Diagnostic is a non-fatal condition recorded in ResultBundle.Diagnostics
// rather than returned as an error (spec.md §7's propagation policy).
type Diagnostic struct {
	Kind        string `json:"kind"`
	Phase       string `json:"phase"`
	Iteration   int    `json:"iteration,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Message     string `json:"message"`
}

func diagnosticFor(err error, phase string) Diagnostic {
	d := Diagnostic{Phase: phase, Message: err.Error()}
	switch e := err.(type) {
	case *InfeasibleSeedError:
		d.Kind = "infeasible_seed"
	case *EvaluatorError:
		d.Kind = "evaluator_error"
		d.Fingerprint = e.Fingerprint
	case *CancelledError:
		d.Kind = "cancelled"
	case *BudgetExhaustedError:
		d.Kind = "budget_exhausted"
	default:
		d.Kind = "unknown"
	}
	return d
}
