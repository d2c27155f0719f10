package operators

import (
	"github.com/dshills/hsaga/pkg/hsrand"
	"github.com/dshills/hsaga/pkg/model"
)

// CrossoverOperator produces two children from two parent solutions.
type CrossoverOperator interface {
	Name() string
	Cross(p1, p2 *model.Solution, rng *hsrand.RNG) (*model.Solution, *model.Solution)
}

// UniformCrossover independently swaps each building id's position between
// the two parents with probability SwapProbability. Per spec.md §8's
// operator laws: SwapProbability=0 is the identity (children equal their
// same-indexed parent); SwapProbability=1 swaps the parents outright.
type UniformCrossover struct {
	SwapProbability float64
}

// NewUniformCrossover builds a UniformCrossover with the spec default
// swap probability of 0.5.
func NewUniformCrossover() UniformCrossover {
	return UniformCrossover{SwapProbability: 0.5}
}

func (c UniformCrossover) Name() string { return "uniform" }

func (c UniformCrossover) Cross(p1, p2 *model.Solution, rng *hsrand.RNG) (*model.Solution, *model.Solution) {
	c1, c2 := p1.Clone(), p2.Clone()
	ids := p1.SortedIDs()
	for _, id := range ids {
		a, aok := p1.Positions[id]
		b, bok := p2.Positions[id]
		if !aok || !bok {
			continue
		}
		if rng.Float64() < c.SwapProbability {
			c1.Positions[id] = b
			c2.Positions[id] = a
		} else {
			c1.Positions[id] = a
			c2.Positions[id] = b
		}
	}
	return c1, c2
}

// PartiallyMatchedCrossover (PMX-like) partitions building ids, sorted for
// determinism, into NSegments contiguous groups and swaps each parent's
// slice for alternating segments. Building identities are treated as keys
// into a position map, not as a permutation to repair (spec.md §9 Open
// Question 1): every id keeps its own identity across both children, so
// no repair step is needed to maintain validity.
type PartiallyMatchedCrossover struct {
	NSegments int
}

// NewPartiallyMatchedCrossover builds a PMX-like crossover with the given
// segment count, defaulting to 4 if nonpositive.
func NewPartiallyMatchedCrossover(nSegments int) PartiallyMatchedCrossover {
	if nSegments < 1 {
		nSegments = 4
	}
	return PartiallyMatchedCrossover{NSegments: nSegments}
}

func (c PartiallyMatchedCrossover) Name() string { return "pmx" }

func (c PartiallyMatchedCrossover) Cross(p1, p2 *model.Solution, rng *hsrand.RNG) (*model.Solution, *model.Solution) {
	c1, c2 := p1.Clone(), p2.Clone()
	ids := p1.SortedIDs()
	n := len(ids)
	if n == 0 {
		return c1, c2
	}
	segments := c.NSegments
	if segments < 1 || segments > n {
		segments = n
	}
	segLen := (n + segments - 1) / segments

	for seg := 0; seg*segLen < n; seg++ {
		if seg%2 == 0 {
			continue // even segments keep their own parent's values
		}
		start := seg * segLen
		end := start + segLen
		if end > n {
			end = n
		}
		for _, id := range ids[start:end] {
			a, aok := p1.Positions[id]
			b, bok := p2.Positions[id]
			if !aok || !bok {
				continue
			}
			c1.Positions[id] = b
			c2.Positions[id] = a
		}
	}
	return c1, c2
}

// DefaultCrossoverOperators returns the two crossover variants named in
// spec.md §4.1, ready to register under the Crossover family.
func DefaultCrossoverOperators() []CrossoverOperator {
	return []CrossoverOperator{
		NewUniformCrossover(),
		NewPartiallyMatchedCrossover(4),
	}
}
