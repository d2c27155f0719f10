package operators

import (
	"github.com/dshills/hsaga/pkg/hsrand"
	"github.com/dshills/hsaga/pkg/model"
)

// MutationOperator produces one GA child mutation from a solution. Unlike
// PerturbationOperator it is temperature-independent: its noise scale is
// fixed at construction time.
type MutationOperator interface {
	Name() string
	Mutate(sol *model.Solution, buildings []*model.Building, bounds model.Bounds, margin float64, rng *hsrand.RNG) *model.Solution
}

// GaussianMutate moves one building by a fixed-sigma Gaussian offset.
type GaussianMutate struct {
	Sigma float64
}

// NewGaussianMutate builds a GaussianMutate with a reasonable fixed sigma.
func NewGaussianMutate() GaussianMutate {
	return GaussianMutate{Sigma: 5.0}
}

func (g GaussianMutate) Name() string { return "gaussian" }

func (g GaussianMutate) Mutate(sol *model.Solution, buildings []*model.Building, bounds model.Bounds, margin float64, rng *hsrand.RNG) *model.Solution {
	child := sol.Clone()
	id := pickBuildingID(child, rng)
	if id == "" {
		return child
	}
	inset := insetBounds(bounds, margin)
	p := child.Positions[id]
	p.X = clamp(p.X+rng.NormFloat64()*g.Sigma, inset.XMin, inset.XMax)
	p.Y = clamp(p.Y+rng.NormFloat64()*g.Sigma, inset.YMin, inset.YMax)
	child.Positions[id] = p
	return child
}

// SwapMutate exchanges the positions of two distinct randomly chosen
// buildings.
type SwapMutate struct{}

func (SwapMutate) Name() string { return "swap" }

func (SwapMutate) Mutate(sol *model.Solution, buildings []*model.Building, bounds model.Bounds, margin float64, rng *hsrand.RNG) *model.Solution {
	return SwapPerturb{}.Perturb(sol, buildings, bounds, margin, 0, rng)
}

// RandomResetMutate draws a fresh uniform position for one building.
type RandomResetMutate struct{}

func (RandomResetMutate) Name() string { return "random_reset" }

func (RandomResetMutate) Mutate(sol *model.Solution, buildings []*model.Building, bounds model.Bounds, margin float64, rng *hsrand.RNG) *model.Solution {
	return RandomResetPerturb{}.Perturb(sol, buildings, bounds, margin, 0, rng)
}

// DefaultMutationOperators returns the three mutation variants named in
// spec.md §4.1, ready to register under the Mutation family.
func DefaultMutationOperators() []MutationOperator {
	return []MutationOperator{
		NewGaussianMutate(),
		SwapMutate{},
		RandomResetMutate{},
	}
}
