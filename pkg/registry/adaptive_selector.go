package registry

import (
	"math"
	"sort"
	"sync"

	"github.com/dshills/hsaga/pkg/hsrand"
	"github.com/dshills/hsaga/pkg/model"
)

// Strategy names the credit-assignment policy used to pick among operators
// within a family (spec.md §4.2).
type Strategy string

const (
	StrategyUniform         Strategy = "uniform"
	StrategyGreedy          Strategy = "greedy"
	StrategyAdaptivePursuit Strategy = "adaptive_pursuit"
	StrategyUCB             Strategy = "ucb"
	StrategySoftmax         Strategy = "softmax"
)

// AdaptiveSelector chooses which operator to apply from a family on each
// SA/GA step and folds back the outcome of each application into
// per-operator running statistics. All mutable state is guarded by a
// single mutex (spec.md §5's "one mutex per shared structure" rule); the
// mutex is never held across a caller-supplied callback.
type AdaptiveSelector struct {
	mu sync.Mutex

	strategy   Strategy
	windowSize int

	// AdaptivePursuit parameters.
	beta, pMin, pMax float64
	// UCB exploration constant.
	c float64
	// SoftmaxTau returns the temperature at the given progress ratio; if
	// nil, a fixed temperature of 1.0 is used.
	SoftmaxTau func(progress float64) float64

	stats    map[Family]map[string]*model.OperatorStats
	pursuitP map[Family]map[string]float64
}

// NewAdaptiveSelector builds a selector using the given strategy and the
// spec's default tuning constants (beta=0.1, UCB c=sqrt(2)).
func NewAdaptiveSelector(strategy Strategy, windowSize int) *AdaptiveSelector {
	if windowSize < 1 {
		windowSize = 20
	}
	return &AdaptiveSelector{
		strategy:   strategy,
		windowSize: windowSize,
		beta:       0.1,
		pMin:       0, // computed per-K at choose time: 0.1/K
		pMax:       1,
		c:          math.Sqrt2,
		stats:      make(map[Family]map[string]*model.OperatorStats),
		pursuitP:   make(map[Family]map[string]float64),
	}
}

func (a *AdaptiveSelector) ensure(family Family, names []string) map[string]*model.OperatorStats {
	fam, ok := a.stats[family]
	if !ok {
		fam = make(map[string]*model.OperatorStats)
		a.stats[family] = fam
	}
	for _, n := range names {
		if _, ok := fam[n]; !ok {
			fam[n] = &model.OperatorStats{Name: n}
		}
	}
	if a.pursuitP[family] == nil {
		a.pursuitP[family] = make(map[string]float64)
	}
	p := a.pursuitP[family]
	if len(p) != len(names) {
		uniform := 1.0 / float64(len(names))
		for _, n := range names {
			if _, ok := p[n]; !ok {
				p[n] = uniform
			}
		}
	}
	return fam
}

// Choose selects one operator name from names (which must be non-empty)
// according to the selector's strategy, given the current SA/GA progress
// ratio in [0,1] for schedules like Softmax's temperature.
func (a *AdaptiveSelector) Choose(family Family, names []string, progress float64, rng *hsrand.RNG) string {
	if len(names) == 0 {
		return ""
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	a.mu.Lock()
	fam := a.ensure(family, sorted)
	snapshot := make(map[string]model.OperatorStats, len(fam))
	for n, s := range fam {
		snapshot[n] = *s
	}
	pursuit := map[string]float64{}
	for n, p := range a.pursuitP[family] {
		pursuit[n] = p
	}
	a.mu.Unlock()

	switch a.strategy {
	case StrategyGreedy:
		return a.chooseGreedy(sorted, snapshot, rng)
	case StrategyAdaptivePursuit:
		return a.chooseWeighted(sorted, pursuit, rng)
	case StrategyUCB:
		return a.chooseUCB(sorted, snapshot, rng)
	case StrategySoftmax:
		return a.chooseSoftmax(sorted, snapshot, progress, rng)
	default: // StrategyUniform and unrecognized fall back to uniform.
		return sorted[rng.Intn(len(sorted))]
	}
}

func (a *AdaptiveSelector) chooseGreedy(names []string, stats map[string]model.OperatorStats, rng *hsrand.RNG) string {
	best := names[0]
	bestReward := stats[best].RunningReward
	ties := []string{best}
	for _, n := range names[1:] {
		r := stats[n].RunningReward
		if r > bestReward {
			best, bestReward = n, r
			ties = []string{n}
		} else if r == bestReward {
			ties = append(ties, n)
		}
	}
	if len(ties) == 1 {
		return best
	}
	return ties[rng.Intn(len(ties))]
}

func (a *AdaptiveSelector) chooseWeighted(names []string, weights map[string]float64, rng *hsrand.RNG) string {
	w := make([]float64, len(names))
	total := 0.0
	for i, n := range names {
		w[i] = math.Max(weights[n], 0)
		total += w[i]
	}
	if total <= 0 {
		return names[rng.Intn(len(names))]
	}
	idx := rng.WeightedChoice(w)
	if idx < 0 {
		idx = rng.Intn(len(names))
	}
	return names[idx]
}

func (a *AdaptiveSelector) chooseUCB(names []string, stats map[string]model.OperatorStats, rng *hsrand.RNG) string {
	totalUses := 0
	for _, n := range names {
		totalUses += stats[n].Uses
	}
	// Every operator must be tried once before UCB's log term is well
	// defined; untried operators are chosen first, in sorted order.
	for _, n := range names {
		if stats[n].Uses == 0 {
			return n
		}
	}
	best := names[0]
	bestScore := math.Inf(-1)
	for _, n := range names {
		s := stats[n]
		score := s.RunningReward + a.c*math.Sqrt(math.Log(float64(totalUses))/float64(s.Uses))
		if score > bestScore {
			best, bestScore = n, score
		}
	}
	return best
}

func (a *AdaptiveSelector) chooseSoftmax(names []string, stats map[string]model.OperatorStats, progress float64, rng *hsrand.RNG) string {
	tau := 1.0
	if a.SoftmaxTau != nil {
		tau = a.SoftmaxTau(progress)
	}
	if tau <= 0 {
		tau = 1e-6
	}
	weights := make([]float64, len(names))
	for i, n := range names {
		weights[i] = math.Exp(stats[n].RunningReward / tau)
	}
	idx := rng.WeightedChoice(weights)
	if idx < 0 {
		idx = rng.Intn(len(names))
	}
	return names[idx]
}

// Credit folds the outcome of one application back into the chosen
// operator's running statistics, and — when using AdaptivePursuit —
// updates the persistent probability vector: p_i <- p_i + beta*(p* - p_i)
// where p* is pMax for the best-performing operator and pMin for the
// rest, pMin = 0.1/K (spec.md §4.2).
func (a *AdaptiveSelector) Credit(family Family, names []string, chosen string, fNew, fParent float64) {
	improvement := math.Max(0, fNew-fParent)

	a.mu.Lock()
	defer a.mu.Unlock()

	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	fam := a.ensure(family, sorted)
	if s, ok := fam[chosen]; ok {
		s.Record(improvement, a.windowSize)
	}

	if a.strategy != StrategyAdaptivePursuit {
		return
	}
	k := len(sorted)
	if k == 0 {
		return
	}
	pMin := 0.1 / float64(k)
	best := sorted[0]
	bestReward := fam[best].RunningReward
	for _, n := range sorted[1:] {
		if fam[n].RunningReward > bestReward {
			best, bestReward = n, fam[n].RunningReward
		}
	}
	p := a.pursuitP[family]
	for _, n := range sorted {
		target := pMin
		if n == best {
			target = a.pMax
		}
		p[n] += a.beta * (target - p[n])
	}
	// Renormalize so the vector stays a valid probability distribution.
	total := 0.0
	for _, n := range sorted {
		total += p[n]
	}
	if total > 0 {
		for _, n := range sorted {
			p[n] /= total
		}
	}
}

// Stats returns a snapshot copy of the current OperatorStats for family,
// keyed by operator name — for reporting in the ResultBundle.
func (a *AdaptiveSelector) Stats(family Family) map[string]model.OperatorStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]model.OperatorStats, len(a.stats[family]))
	for n, s := range a.stats[family] {
		out[n] = *s
	}
	return out
}
