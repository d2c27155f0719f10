package ga

import (
	"sort"

	"github.com/dshills/hsaga/pkg/model"
)

// nonDominatedSort peels pop into successive Pareto fronts (front 0 is
// non-dominated within pop, front 1 is non-dominated once front 0 is
// removed, and so on), the same iterative peeling NSGA-II uses.
func nonDominatedSort(pop []*model.Solution) [][]*model.Solution {
	n := len(pop)
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

	var fronts [][]*model.Solution
	current := []int{}
	for i := 0; i < n; i++ {
		if dominationCount[i] == 0 {
			current = append(current, i)
		}
	}
	for len(current) > 0 {
		front := make([]*model.Solution, 0, len(current))
		var next []int
		for _, i := range current {
			front = append(front, pop[i])
			for _, j := range dominatedBy[i] {
				dominationCount[j]--
				if dominationCount[j] == 0 {
					next = append(next, j)
				}
			}
		}
		fronts = append(fronts, front)
		current = next
	}
	return fronts
}

const infDistance = 1e18

// frontCrowding computes the NSGA-II crowding distance restricted to a
// single front, so boundary solutions of that front (not of the whole
// population) get the infinite-distance treatment.
func frontCrowding(front []*model.Solution) []float64 {
	n := len(front)
	dist := make([]float64, n)
	if n == 0 {
		return dist
	}
	keys := map[string]bool{}
	for _, s := range front {
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
			return front[idx[a]].Objectives[key] < front[idx[b]].Objectives[key]
		})
		lo := front[idx[0]].Objectives[key]
		hi := front[idx[n-1]].Objectives[key]
		span := hi - lo
		dist[idx[0]] = infDistance
		dist[idx[n-1]] = infDistance
		if span == 0 {
			continue
		}
		for i := 1; i < n-1; i++ {
			dist[idx[i]] += (front[idx[i+1]].Objectives[key] - front[idx[i-1]].Objectives[key]) / span
		}
	}
	return dist
}

// sortByCrowdingDesc sorts front in place, most isolated (largest crowding
// distance) first, so truncating the slice keeps the most diverse members.
func sortByCrowdingDesc(front []*model.Solution) {
	dist := frontCrowding(front)
	idx := make([]int, len(front))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return dist[idx[a]] > dist[idx[b]] })
	sorted := make([]*model.Solution, len(front))
	for i, j := range idx {
		sorted[i] = front[j]
	}
	copy(front, sorted)
}

// totalPositionDistance sums the per-building Euclidean distance between
// two solutions sharing the same building ids, used as this engine's
// diversity-injection metric (spec.md leaves the exact distance measure
// unspecified).
func totalPositionDistance(a, b *model.Solution) float64 {
	total := 0.0
	for id, pa := range a.Positions {
		if pb, ok := b.Positions[id]; ok {
			total += pa.Dist(pb)
		}
	}
	return total
}

// minDistanceToElites returns the smallest totalPositionDistance between
// candidate and any of the elites.
func minDistanceToElites(candidate *model.Solution, elites []*model.Solution) float64 {
	if len(elites) == 0 {
		return infDistance
	}
	min := infDistance
	for _, e := range elites {
		if d := totalPositionDistance(candidate, e); d < min {
			min = d
		}
	}
	return min
}
