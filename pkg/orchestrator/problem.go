package orchestrator

import (
	"fmt"

	"github.com/dshills/hsaga/pkg/evaluator"
	"github.com/dshills/hsaga/pkg/ga"
	"github.com/dshills/hsaga/pkg/model"
	"github.com/dshills/hsaga/pkg/sa"
)

// ProblemSpec is the orchestrator's input (spec.md §6).
type ProblemSpec struct {
	ProblemID         string
	Buildings         []*model.Building
	Site              *model.Site
	Eval              evaluator.Evaluator
	SAConfig          sa.Config
	GAConfig          ga.Config
	Weights           map[string]float64
	BoundaryMargin    float64
	RNGSeed           *uint64
	WallClockBudgetMS int64
}

// Validate checks the spec's intrinsic invariants, aggregating every
// violation into a single ValidationError (spec.md §7/§8: empty building
// list, degenerate site, and duplicate ids must all be caught before any
// computation starts).
func (p *ProblemSpec) Validate() error {
	var reasons []string

	if len(p.Buildings) == 0 {
		reasons = append(reasons, "buildings list must not be empty")
	}
	seen := make(map[string]bool, len(p.Buildings))
	for _, b := range p.Buildings {
		if b == nil {
			reasons = append(reasons, "buildings list contains a nil entry")
			continue
		}
		if err := b.Validate(); err != nil {
			reasons = append(reasons, err.Error())
			continue
		}
		if seen[b.ID] {
			reasons = append(reasons, fmt.Sprintf("duplicate building id %q", b.ID))
		}
		seen[b.ID] = true
	}

	if p.Site == nil {
		reasons = append(reasons, "site must not be nil")
	} else if err := p.Site.Validate(); err != nil {
		reasons = append(reasons, err.Error())
	}

	if p.Eval == nil {
		reasons = append(reasons, "evaluator must not be nil")
	}

	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}
