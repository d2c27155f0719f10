package quality

import (
	"math"
	"sort"
	"sync"

	"github.com/dshills/hsaga/pkg/model"
)

// ParetoFront holds a set of mutually non-dominated solutions. All
// objectives are maximized, consistent with model.Solution.Dominates. A
// single mutex guards the member slice; it is never held while calling out
// to an evaluator or RNG (matching the locking discipline used across this
// module's other shared structures).
type ParetoFront struct {
	mu      sync.Mutex
	members []*model.Solution
}

// NewParetoFront returns an empty front.
func NewParetoFront() *ParetoFront {
	return &ParetoFront{}
}

// Insert adds candidate if no current member dominates it, discarding any
// member candidate newly dominates (spec.md §4.11).
func (f *ParetoFront) Insert(candidate *model.Solution) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, m := range f.members {
		if m.Dominates(candidate) {
			return false
		}
	}
	kept := f.members[:0:0]
	for _, m := range f.members {
		if !candidate.Dominates(m) {
			kept = append(kept, m)
		}
	}
	f.members = append(kept, candidate)
	return true
}

// Members returns a snapshot slice of the current front.
func (f *ParetoFront) Members() []*model.Solution {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Solution, len(f.members))
	copy(out, f.members)
	return out
}

// Len reports the current front size.
func (f *ParetoFront) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.members)
}

func sortedKeys(front []*model.Solution) []string {
	set := map[string]bool{}
	for _, s := range front {
		for k := range s.Objectives {
			set[k] = true
		}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Hypervolume computes the volume of objective space dominated by front
// relative to reference (the "worst" corner on every objective, all
// objectives maximized). Two objectives use the exact 2-D sweep; three or
// more use the inclusion-exclusion recursion over the front's dominated
// rectangles, which is exact but exponential in front size, acceptable per
// spec.md §4.11 for the front sizes this engine produces.
func Hypervolume(front []*model.Solution, keys []string, reference map[string]float64) float64 {
	if len(front) == 0 || len(keys) == 0 {
		return 0
	}
	shifted := make([][]float64, len(front))
	for i, s := range front {
		row := make([]float64, len(keys))
		for d, k := range keys {
			u := s.Objectives[k] - reference[k]
			if u < 0 {
				u = 0
			}
			row[d] = u
		}
		shifted[i] = row
	}
	if len(keys) == 2 {
		return hypervolume2D(shifted)
	}
	return hypervolumeND(shifted)
}

// hypervolume2D assumes shifted points are already non-negative offsets
// from the reference corner; it does not assume non-domination, so it first
// strips any point dominated by another in the shifted (maximize) sense.
func hypervolume2D(points [][]float64) float64 {
	pts := nonDominatedShifted(points)
	sort.Slice(pts, func(i, j int) bool { return pts[i][0] < pts[j][0] })

	area := 0.0
	prevX := 0.0
	for _, p := range pts {
		area += (p[0] - prevX) * p[1]
		prevX = p[0]
	}
	return area
}

func nonDominatedShifted(points [][]float64) [][]float64 {
	var out [][]float64
	for i, p := range points {
		dominated := false
		for j, q := range points {
			if i == j {
				continue
			}
			if dominatesShifted(q, p) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, p)
		}
	}
	return out
}

func dominatesShifted(a, b []float64) bool {
	atLeastAsGood, strictlyBetter := true, false
	for d := range a {
		if a[d] < b[d] {
			atLeastAsGood = false
			break
		}
		if a[d] > b[d] {
			strictlyBetter = true
		}
	}
	return atLeastAsGood && strictlyBetter
}

// hypervolumeND computes the union volume of axis-aligned boxes anchored at
// the origin, one per point, via inclusion-exclusion over all 2^n-1
// non-empty subsets.
func hypervolumeND(points [][]float64) float64 {
	n := len(points)
	if n == 0 {
		return 0
	}
	dims := len(points[0])
	total := 0.0
	for mask := 1; mask < (1 << n); mask++ {
		inter := make([]float64, dims)
		for d := range inter {
			inter[d] = math.Inf(1)
		}
		bits := 0
		for i := 0; i < n; i++ {
			if mask&(1<<i) == 0 {
				continue
			}
			bits++
			for d := 0; d < dims; d++ {
				if points[i][d] < inter[d] {
					inter[d] = points[i][d]
				}
			}
		}
		vol := 1.0
		for d := 0; d < dims; d++ {
			vol *= inter[d]
		}
		if bits%2 == 1 {
			total += vol
		} else {
			total -= vol
		}
	}
	return total
}

// consecutiveDistances sorts front by the first objective key and returns
// the Euclidean distances between consecutive points in objective space
// (the "d_i" terms shared by the spread and spacing formulas).
func consecutiveDistances(front []*model.Solution, keys []string) []float64 {
	if len(front) < 2 {
		return nil
	}
	sorted := make([]*model.Solution, len(front))
	copy(sorted, front)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Objectives[keys[0]] < sorted[j].Objectives[keys[0]]
	})
	dists := make([]float64, len(sorted)-1)
	for i := 0; i+1 < len(sorted); i++ {
		sum := 0.0
		for _, k := range keys {
			d := sorted[i+1].Objectives[k] - sorted[i].Objectives[k]
			sum += d * d
		}
		dists[i] = math.Sqrt(sum)
	}
	return dists
}

// Spread computes Delta (spec.md §4.11). Without a reference true Pareto
// front to anchor the two boundary terms d_f/d_l, they are taken as zero,
// the standard simplification when only the obtained front is available.
func Spread(front []*model.Solution) float64 {
	keys := sortedKeys(front)
	if len(keys) == 0 {
		return 0
	}
	d := consecutiveDistances(front, keys)
	if len(d) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range d {
		mean += v
	}
	mean /= float64(len(d))

	sumAbs := 0.0
	for _, v := range d {
		sumAbs += math.Abs(v - mean)
	}
	denom := float64(len(d)) * mean
	if denom == 0 {
		return 0
	}
	return sumAbs / denom
}

// Spacing computes S (spec.md §4.11).
func Spacing(front []*model.Solution) float64 {
	keys := sortedKeys(front)
	if len(keys) == 0 {
		return 0
	}
	d := consecutiveDistances(front, keys)
	if len(d) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range d {
		mean += v
	}
	mean /= float64(len(d))

	sumSq := 0.0
	for _, v := range d {
		sumSq += (mean - v) * (mean - v)
	}
	return math.Sqrt(sumSq / float64(len(d)))
}

// AggregateQuality combines hypervolume, spread, and spacing into a single
// score in roughly [0,1] (spec.md §4.11). hvNorm must already be normalized
// (e.g. hypervolume divided by the objective bounding box's volume).
func AggregateQuality(hvNorm, spread, spacing float64) float64 {
	return 0.5*hvNorm + 0.25*(1-clamp01(spread)) + 0.25*(1-clamp01(spacing))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
