// Package defaulteval provides the evaluator cmd/hsagarun falls back to
// when no application-specific fitness function is wired in. The core
// optimizer treats evaluators as pluggable (spec.md §4.4); this is one
// concrete, weighted implementation built from site-local geometry only.
package defaulteval

import (
	"context"
	"math"

	"github.com/dshills/hsaga/pkg/evaluator"
	"github.com/dshills/hsaga/pkg/model"
)

// Weights names the objective components this evaluator computes and the
// multiplier applied to each before summing into the aggregate fitness.
// Missing keys default to 1.0.
type Weights map[string]float64

func (w Weights) get(name string, def float64) float64 {
	if v, ok := w[name]; ok {
		return v
	}
	return def
}

// Evaluator scores a solution on three geometry-only objectives:
// compactness (inverse of spread around the centroid), adjacency (reward
// for same-type buildings clustering), and separation (reward for
// maintaining clearance above the compliance minimum distance). All three
// are maximize-better, matching the core's fitness convention.
type Evaluator struct {
	Buildings   []*model.Building
	Weights     Weights
	MinDistance float64
}

// New builds an Evaluator over the given buildings with the supplied
// per-objective weights. A minDistance of zero or less defaults to 30 m.
func New(buildings []*model.Building, weights Weights, minDistance float64) *Evaluator {
	if minDistance <= 0 {
		minDistance = 30
	}
	return &Evaluator{Buildings: buildings, Weights: weights, MinDistance: minDistance}
}

func (e *Evaluator) typeOf(id string) model.BuildingType {
	for _, b := range e.Buildings {
		if b.ID == id {
			return b.Type
		}
	}
	return model.Residential
}

func (e *Evaluator) Evaluate(_ context.Context, sol *model.Solution, site *model.Site) (evaluator.FitnessResult, error) {
	ids := sol.SortedIDs()
	n := len(ids)
	if n == 0 {
		return evaluator.FitnessResult{}, nil
	}

	cx := (site.Bounds.XMin + site.Bounds.XMax) / 2
	cy := (site.Bounds.YMin + site.Bounds.YMax) / 2
	center := model.Point{X: cx, Y: cy}

	var spread, adjacency, separation float64
	for i, idA := range ids {
		pa := sol.Positions[idA]
		spread += pa.Dist(center)
		for j := i + 1; j < n; j++ {
			idB := ids[j]
			pb := sol.Positions[idB]
			d := pa.Dist(pb)
			if d <= 0 {
				d = 1e-6
			}
			if e.typeOf(idA) == e.typeOf(idB) {
				adjacency += 1.0 / d
			}
			if d < e.MinDistance {
				separation -= (e.MinDistance - d)
			} else {
				separation += math.Log(d / e.MinDistance)
			}
		}
	}

	compactness := -spread
	objectives := map[string]float64{
		"compactness": compactness,
		"adjacency":   adjacency,
		"separation":  separation,
	}

	fitness := e.Weights.get("compactness", 1.0)*compactness +
		e.Weights.get("adjacency", 1.0)*adjacency +
		e.Weights.get("separation", 1.0)*separation

	return evaluator.FitnessResult{Fitness: fitness, Objectives: objectives}, nil
}
