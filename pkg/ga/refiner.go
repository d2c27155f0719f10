package ga

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/dshills/hsaga/internal/obslog"
	"github.com/dshills/hsaga/internal/obsmetrics"
	"github.com/dshills/hsaga/pkg/evaluator"
	"github.com/dshills/hsaga/pkg/hsrand"
	"github.com/dshills/hsaga/pkg/model"
	"github.com/dshills/hsaga/pkg/operators"
	"github.com/dshills/hsaga/pkg/quality"
	"github.com/dshills/hsaga/pkg/registry"
	"github.com/dshills/hsaga/pkg/schedule"
)

// Config tunes the GA refinement phase (spec.md §4.6 defaults).
type Config struct {
	PopulationSize              int
	Generations                 int
	EliteSize                   int     // default 5
	StallPatience               int     // default Generations/4 when zero
	TournamentK                 int     // default 3
	DiversityInjectionFraction  float64 // default 0.10
	DiversityMinDistance        float64 // default 20
	BoundaryMargin              float64
	MinDistance                 float64
	MaxSeedRetries              int // default 50
	SelectorStrategy            registry.Strategy
	SelectorWindow              int
}

// DefaultConfig returns the spec's stated defaults.
func DefaultConfig() Config {
	return Config{
		PopulationSize:             50,
		Generations:                50,
		EliteSize:                  5,
		TournamentK:                3,
		DiversityInjectionFraction: 0.10,
		DiversityMinDistance:       20,
		BoundaryMargin:             2,
		MinDistance:                10,
		MaxSeedRetries:             50,
		SelectorStrategy:           registry.StrategyAdaptivePursuit,
		SelectorWindow:             20,
	}
}

func (c Config) resolved() Config {
	if c.PopulationSize <= 0 {
		c.PopulationSize = 50
	}
	if c.Generations <= 0 {
		c.Generations = 50
	}
	if c.EliteSize <= 0 {
		c.EliteSize = 5
	}
	if c.StallPatience <= 0 {
		c.StallPatience = c.Generations / 4
	}
	if c.TournamentK <= 0 {
		c.TournamentK = 3
	}
	if c.DiversityInjectionFraction <= 0 {
		c.DiversityInjectionFraction = 0.10
	}
	if c.MaxSeedRetries <= 0 {
		c.MaxSeedRetries = 50
	}
	if c.SelectorStrategy == "" {
		c.SelectorStrategy = registry.StrategyAdaptivePursuit
	}
	if c.SelectorWindow <= 0 {
		c.SelectorWindow = 20
	}
	return c
}

// Result is the GARefiner's output.
type Result struct {
	Population       []*model.Solution
	Archive          []*model.Solution
	Generations      int
	BestFitnessCurve []float64
	Stalled          bool
}

// ProgressEvent reports one generation's progress snapshot for
// progress-stream subscribers (spec.md §4.7).
type ProgressEvent struct {
	Generation  int
	BestFitness float64
	Diversity   float64
	OperatorMix map[string]float64
}

// ProgressFunc receives ProgressEvents published at the end of each
// generation. It must not block.
type ProgressFunc func(ProgressEvent)

// GARefiner runs the tournament/crossover/mutation/replacement loop
// described in spec.md §4.6, pushing non-dominated children into a shared
// Pareto archive as they're produced.
type GARefiner struct {
	Config    Config
	Buildings []*model.Building
	Site      *model.Site
	Eval      evaluator.Evaluator

	MutationRegistry  *registry.OperatorRegistry[operators.MutationOperator]
	CrossoverRegistry *registry.OperatorRegistry[operators.CrossoverOperator]
	MutationSelector  *registry.AdaptiveSelector
	CrossoverSelector *registry.AdaptiveSelector
	Schedules         *schedule.Registry
	Selection         operators.SelectionOperator

	Archive *quality.ParetoFront

	RNG      *hsrand.RNG
	Logger   *obslog.Logger
	Metrics  *obsmetrics.Registry
	Progress ProgressFunc
}

// New builds a GARefiner with the default mutation/crossover registries,
// adaptive-pursuit selectors for both families, tournament selection, and
// the spec's default schedules.
func New(buildings []*model.Building, site *model.Site, eval evaluator.Evaluator, rng *hsrand.RNG, cfg Config) *GARefiner {
	mReg := registry.NewOperatorRegistry[operators.MutationOperator]()
	for _, op := range operators.DefaultMutationOperators() {
		op := op
		mReg.Register(registry.Mutation, op.Name(), func() operators.MutationOperator { return op })
	}
	cReg := registry.NewOperatorRegistry[operators.CrossoverOperator]()
	for _, op := range operators.DefaultCrossoverOperators() {
		op := op
		cReg.Register(registry.Crossover, op.Name(), func() operators.CrossoverOperator { return op })
	}

	cfg = cfg.resolved()
	return &GARefiner{
		Config:            cfg,
		Buildings:         buildings,
		Site:              site,
		Eval:              eval,
		MutationRegistry:  mReg,
		CrossoverRegistry: cReg,
		MutationSelector:  registry.NewAdaptiveSelector(cfg.SelectorStrategy, cfg.SelectorWindow),
		CrossoverSelector: registry.NewAdaptiveSelector(cfg.SelectorStrategy, cfg.SelectorWindow),
		Schedules:         schedule.NewRegistry(),
		Selection:         operators.Tournament{K: cfg.TournamentK},
		Archive:           quality.NewParetoFront(),
		RNG:               rng,
		Logger:            obslog.Nop(),
	}
}

func (g *GARefiner) logger() *obslog.Logger {
	if g.Logger == nil {
		return obslog.Nop()
	}
	return g.Logger
}

func (g *GARefiner) violations(sol *model.Solution) int {
	count := 0
	for _, id := range sol.SortedIDs() {
		if !g.Site.Bounds.Contains(sol.Positions[id], g.Config.BoundaryMargin) {
			count++
		}
	}
	if g.Config.MinDistance > 0 {
		ids := sol.SortedIDs()
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				if sol.Positions[ids[i]].Dist(sol.Positions[ids[j]]) < g.Config.MinDistance {
					count++
				}
			}
		}
	}
	return count
}

func (g *GARefiner) randomIndividual(rng *hsrand.RNG) *model.Solution {
	inset := model.Bounds{
		XMin: g.Site.Bounds.XMin + g.Config.BoundaryMargin,
		YMin: g.Site.Bounds.YMin + g.Config.BoundaryMargin,
		XMax: g.Site.Bounds.XMax - g.Config.BoundaryMargin,
		YMax: g.Site.Bounds.YMax - g.Config.BoundaryMargin,
	}
	var best *model.Solution
	bestViolations := math.MaxInt64
	for i := 0; i < g.Config.MaxSeedRetries; i++ {
		sol := model.NewSolution()
		for _, b := range g.Buildings {
			sol.Positions[b.ID] = model.Point{
				X: rng.Float64Range(inset.XMin, inset.XMax),
				Y: rng.Float64Range(inset.YMin, inset.YMax),
			}
		}
		if v := g.violations(sol); v == 0 {
			return sol
		} else if v < bestViolations {
			best, bestViolations = sol, v
		}
	}
	return best
}

// evaluate evaluates sol, logging and retrying once against a fresh
// individual on error (spec.md §4.12); a second failure returns the error
// to the caller, which substitutes a freshly synthesized individual rather
// than aborting the run.
func (g *GARefiner) evaluate(ctx context.Context, sol *model.Solution, rng *hsrand.RNG) error {
	res, err := g.Eval.Evaluate(ctx, sol, g.Site)
	if err == nil {
		sol.Fitness = res.Fitness
		sol.Objectives = res.Objectives
		return nil
	}
	g.logger().Warn("evaluator failed, retrying once", map[string]any{
		"phase":       "ga",
		"fingerprint": sol.Fingerprint(1),
		"error":       err.Error(),
	})
	if g.Metrics != nil {
		g.Metrics.EvaluatorErrors.WithLabelValues("ga").Inc()
	}
	if fresh := g.randomIndividual(rng); fresh != nil {
		sol.Positions = fresh.Positions
	}
	res, err2 := g.Eval.Evaluate(ctx, sol, g.Site)
	if err2 != nil {
		g.logger().Error(err2, "evaluator failed twice for this individual", map[string]any{
			"phase": "ga", "fingerprint": sol.Fingerprint(1),
		})
		if g.Metrics != nil {
			g.Metrics.EvaluatorErrors.WithLabelValues("ga").Inc()
		}
		return fmt.Errorf("ga: evaluator failed twice in a row: %w", err2)
	}
	sol.Fitness = res.Fitness
	sol.Objectives = res.Objectives
	return nil
}

// SeedPopulation blends SA's top solutions (50%), mutated variants of them
// (30%), and fresh random individuals (20%) into an initial GA population
// of PopulationSize (spec.md §4.6).
func (g *GARefiner) SeedPopulation(ctx context.Context, saTop []*model.Solution, rng *hsrand.RNG) ([]*model.Solution, error) {
	size := g.Config.PopulationSize
	nSA := int(math.Round(0.5 * float64(size)))
	nMutated := int(math.Round(0.3 * float64(size)))
	nFresh := size - nSA - nMutated

	pop := make([]*model.Solution, 0, size)

	if len(saTop) == 0 {
		nFresh = size
		nSA, nMutated = 0, 0
	}
	for i := 0; i < nSA; i++ {
		pop = append(pop, saTop[i%len(saTop)].Clone())
	}

	mutationNames := sortedNames(g.MutationRegistry.Names(registry.Mutation))
	for i := 0; i < nMutated; i++ {
		base := saTop[rng.Intn(len(saTop))]
		name := mutationNames[rng.Intn(len(mutationNames))]
		op, ok := g.MutationRegistry.New(registry.Mutation, name)
		if !ok {
			pop = append(pop, base.Clone())
			continue
		}
		pop = append(pop, op.Mutate(base, g.Buildings, g.Site.Bounds, g.Config.BoundaryMargin, rng))
	}

	for i := 0; i < nFresh; i++ {
		ind := g.randomIndividual(rng)
		if ind == nil {
			ind = model.NewSolution()
		}
		pop = append(pop, ind)
	}

	for _, ind := range pop {
		if err := g.evaluate(ctx, ind, rng); err != nil {
			// Substitute a fresh individual rather than fail the whole run.
			replacement := g.randomIndividual(rng)
			if replacement != nil {
				_ = g.evaluate(ctx, replacement, rng)
				*ind = *replacement
			}
		}
	}
	return pop, nil
}

func sortedNames(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}

// Run executes the generational loop starting from population, returning
// the final population, the accumulated Pareto archive, and convergence
// diagnostics.
func (g *GARefiner) Run(ctx context.Context, population []*model.Solution) (*Result, error) {
	for _, ind := range population {
		g.Archive.Insert(ind)
	}

	bestFitness := bestOf(population)
	var curve []float64
	stall := 0
	stalled := false
	gen := 0

	crossoverNames := sortedNames(g.CrossoverRegistry.Names(registry.Crossover))
	mutationNames := sortedNames(g.MutationRegistry.Names(registry.Mutation))

	for ; gen < g.Config.Generations; gen++ {
		select {
		case <-ctx.Done():
			stalled = true
			goto done
		default:
		}

		progress := float64(gen) / float64(g.Config.Generations)
		crossoverRate := g.Schedules.Value("crossover_rate", progress, 0.7)
		mutationRate := g.Schedules.Value("mutation_rate", progress, 0.1)

		parents := g.Selection.Select(population, g.Config.PopulationSize, g.RNG)
		children := make([]*model.Solution, 0, g.Config.PopulationSize)

		for i := 0; i+1 < len(parents); i += 2 {
			p1, p2 := parents[i], parents[i+1]
			c1, c2 := p1.Clone(), p2.Clone()

			if g.RNG.Float64() < crossoverRate && len(crossoverNames) > 0 {
				name := g.CrossoverSelector.Choose(registry.Crossover, crossoverNames, progress, g.RNG)
				if op, ok := g.CrossoverRegistry.New(registry.Crossover, name); ok {
					c1, c2 = op.Cross(p1, p2, g.RNG)
					parentBest := math.Max(p1.Fitness, p2.Fitness)
					g.CrossoverSelector.Credit(registry.Crossover, crossoverNames, name, math.Max(c1.Fitness, c2.Fitness), parentBest)
				}
			}

			for _, c := range []*model.Solution{c1, c2} {
				evaluated := false
				if g.RNG.Float64() < mutationRate && len(mutationNames) > 0 {
					name := g.MutationSelector.Choose(registry.Mutation, mutationNames, progress, g.RNG)
					if op, ok := g.MutationRegistry.New(registry.Mutation, name); ok {
						preFitness := c.Fitness
						mutated := op.Mutate(c, g.Buildings, g.Site.Bounds, g.Config.BoundaryMargin, g.RNG)
						if err := g.evaluate(ctx, mutated, g.RNG); err == nil {
							g.MutationSelector.Credit(registry.Mutation, mutationNames, name, mutated.Fitness, preFitness)
							c = mutated
							evaluated = true
						}
					}
				}
				if !evaluated {
					if err := g.evaluate(ctx, c, g.RNG); err != nil {
						c = g.randomIndividual(g.RNG)
						if c != nil {
							_ = g.evaluate(ctx, c, g.RNG)
						}
					}
				}
				if c != nil {
					children = append(children, c)
					g.Archive.Insert(c)
				}
			}
		}

		population = g.replace(ctx, population, children, g.RNG)

		curBest := bestOf(population)
		curve = append(curve, curBest)
		if g.Metrics != nil {
			g.Metrics.IterationsTotal.WithLabelValues("ga").Inc()
			g.Metrics.BestFitness.Set(curBest)
			g.Metrics.ParetoFrontSize.Set(float64(g.Archive.Len()))
		}
		if g.Progress != nil {
			g.Progress(ProgressEvent{
				Generation:  gen,
				BestFitness: curBest,
				Diversity:   populationDiversity(population),
				OperatorMix: combinedOperatorMix(g.MutationSelector, g.CrossoverSelector),
			})
		}
		if curBest > bestFitness {
			bestFitness = curBest
			stall = 0
		} else {
			stall++
		}
		if stall >= g.Config.StallPatience {
			stalled = true
			gen++
			break
		}
	}

done:
	return &Result{
		Population:       population,
		Archive:          g.Archive.Members(),
		Generations:      gen,
		BestFitnessCurve: curve,
		Stalled:          stalled,
	}, nil
}

// populationDiversity reports the mean pairwise totalPositionDistance across
// pop, used as this phase's progress-stream diversity reading (spec.md
// §4.7).
func populationDiversity(pop []*model.Solution) float64 {
	if len(pop) < 2 {
		return 0
	}
	total, pairs := 0.0, 0
	for i := 0; i < len(pop); i++ {
		for j := i + 1; j < len(pop); j++ {
			total += totalPositionDistance(pop[i], pop[j])
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return total / float64(pairs)
}

// combinedOperatorMix merges the mutation and crossover selectors' usage
// shares into one progress-stream reading, prefixed by family so the two
// namespaces never collide.
func combinedOperatorMix(mutation, crossover *registry.AdaptiveSelector) map[string]float64 {
	mix := make(map[string]float64)
	for name, v := range selectorMix(mutation, registry.Mutation) {
		mix["mutation/"+name] = v
	}
	for name, v := range selectorMix(crossover, registry.Crossover) {
		mix["crossover/"+name] = v
	}
	return mix
}

func selectorMix(sel *registry.AdaptiveSelector, family registry.Family) map[string]float64 {
	stats := sel.Stats(family)
	total := 0
	for _, s := range stats {
		total += s.Uses
	}
	mix := make(map[string]float64, len(stats))
	if total == 0 {
		for name := range stats {
			mix[name] = 0
		}
		return mix
	}
	for name, s := range stats {
		mix[name] = float64(s.Uses) / float64(total)
	}
	return mix
}

func bestOf(pop []*model.Solution) float64 {
	best := math.Inf(-1)
	for _, s := range pop {
		if s.Fitness > best {
			best = s.Fitness
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return best
}

// replace performs elitist + diversity-injection + NSGA-II replacement
// (spec.md §4.6): the top EliteSize individuals survive unconditionally,
// a DiversityInjectionFraction share of slots go to individuals far from
// the elites (synthesizing fresh ones if the pool lacks enough), and the
// remainder is filled by non-dominated-sort + crowding distance.
func (g *GARefiner) replace(ctx context.Context, population, children []*model.Solution, rng *hsrand.RNG) []*model.Solution {
	pool := make([]*model.Solution, 0, len(population)+len(children))
	pool = append(pool, population...)
	pool = append(pool, children...)
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Fitness > pool[j].Fitness })

	size := g.Config.PopulationSize
	eliteN := g.Config.EliteSize
	if eliteN > len(pool) {
		eliteN = len(pool)
	}
	elites := pool[:eliteN]
	rest := pool[eliteN:]

	diversityN := int(math.Round(g.Config.DiversityInjectionFraction * float64(size)))
	if diversityN > size-eliteN {
		diversityN = size - eliteN
	}
	nsgaN := size - eliteN - diversityN
	if nsgaN < 0 {
		nsgaN = 0
	}

	filled := make([]*model.Solution, 0, size)
	filled = append(filled, elites...)

	fronts := nonDominatedSort(rest)
	for _, front := range fronts {
		need := eliteN + nsgaN - len(filled)
		if need <= 0 {
			break
		}
		if len(front) <= need {
			filled = append(filled, front...)
		} else {
			cp := append([]*model.Solution(nil), front...)
			sortByCrowdingDesc(cp)
			filled = append(filled, cp[:need]...)
		}
	}

	sort.Slice(rest, func(i, j int) bool {
		return minDistanceToElites(rest[i], elites) > minDistanceToElites(rest[j], elites)
	})
	chosen := map[*model.Solution]bool{}
	for _, s := range filled {
		chosen[s] = true
	}
	for _, cand := range rest {
		if len(filled) >= size {
			break
		}
		if chosen[cand] {
			continue
		}
		if minDistanceToElites(cand, elites) >= g.Config.DiversityMinDistance {
			filled = append(filled, cand)
			chosen[cand] = true
		}
	}
	for len(filled) < size {
		fresh := g.randomIndividual(rng)
		if fresh == nil {
			break
		}
		if err := g.evaluate(ctx, fresh, rng); err != nil {
			break
		}
		filled = append(filled, fresh)
	}

	if len(filled) > size {
		filled = filled[:size]
	}
	return filled
}
