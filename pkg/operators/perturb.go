package operators

import (
	"math"

	"github.com/dshills/hsaga/pkg/hsrand"
	"github.com/dshills/hsaga/pkg/model"
)

// PerturbationOperator produces one SA neighbor from a solution. It selects
// exactly one building at random and moves it; the rest of the solution is
// carried over unchanged.
type PerturbationOperator interface {
	Name() string
	Perturb(sol *model.Solution, buildings []*model.Building, bounds model.Bounds, margin, temperature float64, rng *hsrand.RNG) *model.Solution
}

func insetBounds(b model.Bounds, margin float64) model.Bounds {
	return model.Bounds{
		XMin: b.XMin + margin,
		YMin: b.YMin + margin,
		XMax: b.XMax - margin,
		YMax: b.YMax - margin,
	}
}

func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		// Degenerate (margin consumed the whole axis): collapse to midpoint.
		return (lo + hi) / 2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func pickBuildingID(sol *model.Solution, rng *hsrand.RNG) string {
	ids := sol.SortedIDs()
	if len(ids) == 0 {
		return ""
	}
	return ids[rng.Intn(len(ids))]
}

// GaussianPerturb moves one building by an N(0, sigma) offset on each axis,
// with sigma = max(MinSigma, ScaleFactor*sqrt(temperature)). The offset is
// clipped to the bounds inset by margin.
type GaussianPerturb struct {
	MinSigma    float64
	ScaleFactor float64
}

// NewGaussianPerturb builds a GaussianPerturb with a 0.5 m sigma floor and
// a sigma of 1.0*sqrt(T) above it.
func NewGaussianPerturb() GaussianPerturb {
	return GaussianPerturb{MinSigma: 0.5, ScaleFactor: 1.0}
}

func (g GaussianPerturb) Name() string { return "gaussian" }

func (g GaussianPerturb) Perturb(sol *model.Solution, buildings []*model.Building, bounds model.Bounds, margin, temperature float64, rng *hsrand.RNG) *model.Solution {
	child := sol.Clone()
	id := pickBuildingID(child, rng)
	if id == "" {
		return child
	}
	sigma := math.Max(g.MinSigma, g.ScaleFactor*math.Sqrt(math.Max(temperature, 0)))
	inset := insetBounds(bounds, margin)
	p := child.Positions[id]
	p.X = clamp(p.X+rng.NormFloat64()*sigma, inset.XMin, inset.XMax)
	p.Y = clamp(p.Y+rng.NormFloat64()*sigma, inset.YMin, inset.YMax)
	child.Positions[id] = p
	return child
}

// SwapPerturb exchanges the positions of two distinct randomly chosen
// buildings. It is a no-op (returns a clone) when fewer than two
// buildings are present.
type SwapPerturb struct{}

func (SwapPerturb) Name() string { return "swap" }

func (SwapPerturb) Perturb(sol *model.Solution, buildings []*model.Building, bounds model.Bounds, margin, temperature float64, rng *hsrand.RNG) *model.Solution {
	child := sol.Clone()
	ids := child.SortedIDs()
	if len(ids) < 2 {
		return child
	}
	i := rng.Intn(len(ids))
	j := rng.Intn(len(ids) - 1)
	if j >= i {
		j++
	}
	a, b := ids[i], ids[j]
	child.Positions[a], child.Positions[b] = child.Positions[b], child.Positions[a]
	return child
}

// RandomResetPerturb draws a fresh uniform position (inset by margin) for
// one randomly chosen building.
type RandomResetPerturb struct{}

func (RandomResetPerturb) Name() string { return "random_reset" }

func (RandomResetPerturb) Perturb(sol *model.Solution, buildings []*model.Building, bounds model.Bounds, margin, temperature float64, rng *hsrand.RNG) *model.Solution {
	child := sol.Clone()
	id := pickBuildingID(child, rng)
	if id == "" {
		return child
	}
	inset := insetBounds(bounds, margin)
	child.Positions[id] = model.Point{
		X: rng.Float64Range(inset.XMin, inset.XMax),
		Y: rng.Float64Range(inset.YMin, inset.YMax),
	}
	return child
}

// DefaultPerturbationOperators returns the three perturbation variants
// named in spec.md §4.1, ready to register under the Perturbation family.
func DefaultPerturbationOperators() []PerturbationOperator {
	return []PerturbationOperator{
		NewGaussianPerturb(),
		SwapPerturb{},
		RandomResetPerturb{},
	}
}
