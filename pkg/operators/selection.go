package operators

import (
	"sort"

	"github.com/dshills/hsaga/pkg/hsrand"
	"github.com/dshills/hsaga/pkg/model"
)

// SelectionOperator samples n individuals from a population, with
// replacement, for use as GA parents.
type SelectionOperator interface {
	Name() string
	Select(population []*model.Solution, n int, rng *hsrand.RNG) []*model.Solution
}

// nonDominatedRanks assigns each solution its front index (0 = first,
// non-dominated front) via the standard iterative peeling used by
// NSGA-II-style algorithms. It is duplicated here, rather than shared with
// pkg/ga's nonDominatedSort, because Tournament's tie-break only needs the
// rank numbers, not full front bookkeeping, and pkg/ga imports this package,
// so the dependency cannot run the other way.
func nonDominatedRanks(pop []*model.Solution) []int {
	n := len(pop)
	ranks := make([]int, n)
	dominatedBy := make([][]int, n)
	dominationCount := make([]int, n)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if pop[i].Dominates(pop[j]) {
				dominatedBy[i] = append(dominatedBy[i], j)
			} else if pop[j].Dominates(pop[i]) {
				dominationCount[i]++
			}
		}
	}

	front := []int{}
	for i := 0; i < n; i++ {
		if dominationCount[i] == 0 {
			ranks[i] = 0
			front = append(front, i)
		}
	}

	rank := 0
	for len(front) > 0 {
		next := []int{}
		for _, i := range front {
			for _, j := range dominatedBy[i] {
				dominationCount[j]--
				if dominationCount[j] == 0 {
					ranks[j] = rank + 1
					next = append(next, j)
				}
			}
		}
		rank++
		front = next
	}
	return ranks
}

// crowdingDistances computes the NSGA-II crowding distance per solution
// within a single population (not restricted to one front); used here
// only as a secondary tie-break, so approximating it over the whole
// population rather than per-front is an acceptable simplification for
// tournament selection.
func crowdingDistances(pop []*model.Solution) []float64 {
	n := len(pop)
	dist := make([]float64, n)
	if n == 0 {
		return dist
	}
	keys := map[string]bool{}
	for _, s := range pop {
		for k := range s.Objectives {
			keys[k] = true
		}
	}
	if len(keys) == 0 {
		return dist
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for key := range keys {
		sort.Slice(idx, func(a, b int) bool {
			return pop[idx[a]].Objectives[key] < pop[idx[b]].Objectives[key]
		})
		lo := pop[idx[0]].Objectives[key]
		hi := pop[idx[n-1]].Objectives[key]
		span := hi - lo
		dist[idx[0]] = infDistance
		dist[idx[n-1]] = infDistance
		if span == 0 {
			continue
		}
		for i := 1; i < n-1; i++ {
			dist[idx[i]] += (pop[idx[i+1]].Objectives[key] - pop[idx[i-1]].Objectives[key]) / span
		}
	}
	return dist
}

const infDistance = 1e18

// Tournament samples K individuals with replacement and returns the
// winner by fitness, breaking ties by dominance rank then crowding
// distance then randomly; repeated n times.
type Tournament struct {
	K int
}

// NewTournament builds a Tournament with the spec default k=3.
func NewTournament() Tournament { return Tournament{K: 3} }

func (t Tournament) Name() string { return "tournament" }

func (t Tournament) Select(population []*model.Solution, n int, rng *hsrand.RNG) []*model.Solution {
	if len(population) == 0 || n <= 0 {
		return nil
	}
	k := t.K
	if k < 1 {
		k = 1
	}
	ranks := nonDominatedRanks(population)
	crowd := crowdingDistances(population)

	winners := make([]*model.Solution, 0, n)
	for i := 0; i < n; i++ {
		best := -1
		for j := 0; j < k; j++ {
			cand := rng.Intn(len(population))
			if best == -1 || better(population, ranks, crowd, cand, best) {
				best = cand
			}
		}
		winners = append(winners, population[best])
	}
	return winners
}

func better(pop []*model.Solution, ranks []int, crowd []float64, a, b int) bool {
	if pop[a].Fitness != pop[b].Fitness {
		return pop[a].Fitness > pop[b].Fitness
	}
	if ranks[a] != ranks[b] {
		return ranks[a] < ranks[b]
	}
	if crowd[a] != crowd[b] {
		return crowd[a] > crowd[b]
	}
	return false
}

// RouletteWheel samples proportional to shifted fitness: (f - f_min)*s + eps.
type RouletteWheel struct {
	Scale   float64
	Epsilon float64
}

// NewRouletteWheel builds a RouletteWheel with unit scale and a small
// epsilon floor so every individual retains nonzero selection probability.
func NewRouletteWheel() RouletteWheel {
	return RouletteWheel{Scale: 1.0, Epsilon: 1e-6}
}

func (r RouletteWheel) Name() string { return "roulette_wheel" }

func (r RouletteWheel) Select(population []*model.Solution, n int, rng *hsrand.RNG) []*model.Solution {
	if len(population) == 0 || n <= 0 {
		return nil
	}
	fMin := population[0].Fitness
	for _, s := range population {
		if s.Fitness < fMin {
			fMin = s.Fitness
		}
	}
	weights := make([]float64, len(population))
	for i, s := range population {
		scale := r.Scale
		if scale == 0 {
			scale = 1
		}
		weights[i] = (s.Fitness-fMin)*scale + r.Epsilon
	}
	winners := make([]*model.Solution, 0, n)
	for i := 0; i < n; i++ {
		idx := rng.WeightedChoice(weights)
		if idx < 0 {
			idx = rng.Intn(len(population))
		}
		winners = append(winners, population[idx])
	}
	return winners
}

// DefaultSelectionOperators returns the two selection variants named in
// spec.md §4.1, ready to register under the Selection family.
func DefaultSelectionOperators() []SelectionOperator {
	return []SelectionOperator{
		NewTournament(),
		NewRouletteWheel(),
	}
}
