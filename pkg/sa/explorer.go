package sa

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/dshills/hsaga/internal/obslog"
	"github.com/dshills/hsaga/internal/obsmetrics"
	"github.com/dshills/hsaga/pkg/evaluator"
	"github.com/dshills/hsaga/pkg/hsrand"
	"github.com/dshills/hsaga/pkg/model"
	"github.com/dshills/hsaga/pkg/operators"
	"github.com/dshills/hsaga/pkg/registry"
)

// Config tunes the SA exploration phase (spec.md §4.5 defaults).
type Config struct {
	NumChains           int
	InitialTemperature  float64
	FinalTemperature    float64
	CoolingRate         float64 // default 0.95
	MaxIterations       int
	StallPatience       int // default MaxIterations/4 when zero
	BoundaryMargin      float64
	MinDistance         float64
	MaxSeedRetries      int // default 100
	SelectorStrategy    registry.Strategy
	SelectorWindow      int
	GAPopulationSize    int // used to derive the default top-m output size
}

// DefaultConfig returns the spec's stated defaults.
func DefaultConfig() Config {
	return Config{
		NumChains:          4,
		InitialTemperature: 1000,
		FinalTemperature:   0.1,
		CoolingRate:        0.95,
		MaxIterations:      500,
		BoundaryMargin:     2,
		MinDistance:        10,
		MaxSeedRetries:     100,
		SelectorStrategy:   registry.StrategyAdaptivePursuit,
		SelectorWindow:     20,
		GAPopulationSize:   50,
	}
}

func (c Config) resolved() Config {
	if c.NumChains <= 0 {
		c.NumChains = 4
	}
	if c.CoolingRate <= 0 || c.CoolingRate >= 1 {
		c.CoolingRate = 0.95
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = 500
	}
	if c.StallPatience <= 0 {
		c.StallPatience = c.MaxIterations / 4
	}
	if c.MaxSeedRetries <= 0 {
		c.MaxSeedRetries = 100
	}
	if c.SelectorStrategy == "" {
		c.SelectorStrategy = registry.StrategyAdaptivePursuit
	}
	if c.SelectorWindow <= 0 {
		c.SelectorWindow = 20
	}
	if c.GAPopulationSize <= 0 {
		c.GAPopulationSize = 50
	}
	return c
}

// ChainTrace records one chain's convergence curve and termination reason.
type ChainTrace struct {
	ChainID          int
	Iterations       int
	BestFitnessCurve []float64
	Stalled          bool
	FinalTemperature float64
}

// Result is the SAExplorer's output: the pooled top-m solutions across all
// chains plus per-chain diagnostics.
type Result struct {
	Top    []*model.Solution
	Traces []ChainTrace
}

// ProgressEvent reports one chain's progress snapshot for progress-stream
// subscribers (spec.md §4.7): iteration index, running best fitness, the
// current spread across chains' working solutions, and the perturbation
// operator usage mix.
type ProgressEvent struct {
	ChainID     int
	Iteration   int
	BestFitness float64
	Diversity   float64
	OperatorMix map[string]float64
}

// ProgressFunc receives ProgressEvents. It may be called concurrently from
// any chain's goroutine and must not block.
type ProgressFunc func(ProgressEvent)

// SAExplorer runs NumChains parallel Metropolis chains against Eval,
// choosing perturbation operators via Selector and cooling geometrically
// (spec.md §4.5).
type SAExplorer struct {
	Config    Config
	Buildings []*model.Building
	Site      *model.Site
	Eval      evaluator.Evaluator
	Registry  *registry.OperatorRegistry[operators.PerturbationOperator]
	Selector  *registry.AdaptiveSelector
	RNG       *hsrand.RNG
	Logger    *obslog.Logger
	Metrics   *obsmetrics.Registry
	Progress  ProgressFunc

	chainMu      sync.Mutex
	chainCurrent []*model.Solution
}

// New builds an SAExplorer with the default perturbation registry and an
// adaptive-pursuit selector, ready to Run.
func New(buildings []*model.Building, site *model.Site, eval evaluator.Evaluator, rng *hsrand.RNG, cfg Config) *SAExplorer {
	reg := registry.NewOperatorRegistry[operators.PerturbationOperator]()
	for _, op := range operators.DefaultPerturbationOperators() {
		op := op
		reg.Register(registry.Perturbation, op.Name(), func() operators.PerturbationOperator { return op })
	}
	cfg = cfg.resolved()
	return &SAExplorer{
		Config:    cfg,
		Buildings: buildings,
		Site:      site,
		Eval:      eval,
		Registry:  reg,
		Selector:  registry.NewAdaptiveSelector(cfg.SelectorStrategy, cfg.SelectorWindow),
		RNG:       rng,
		Logger:    obslog.Nop(),
	}
}

func (e *SAExplorer) logger() *obslog.Logger {
	if e.Logger == nil {
		return obslog.Nop()
	}
	return e.Logger
}

// violations counts how many of sol's placements break the boundary or
// minimum-pairwise-distance invariants, used both for seed repair and as
// the fallback "least violating" ranking when no fully valid seed is found
// within MaxSeedRetries attempts.
func (e *SAExplorer) violations(sol *model.Solution) int {
	count := 0
	margin := e.Config.BoundaryMargin
	for _, id := range sol.SortedIDs() {
		if !e.Site.Bounds.Contains(sol.Positions[id], margin) {
			count++
		}
	}
	if e.Config.MinDistance > 0 {
		ids := sol.SortedIDs()
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				if sol.Positions[ids[i]].Dist(sol.Positions[ids[j]]) < e.Config.MinDistance {
					count++
				}
			}
		}
	}
	return count
}

func (e *SAExplorer) randomSeed(rng *hsrand.RNG) *model.Solution {
	sol := model.NewSolution()
	inset := model.Bounds{
		XMin: e.Site.Bounds.XMin + e.Config.BoundaryMargin,
		YMin: e.Site.Bounds.YMin + e.Config.BoundaryMargin,
		XMax: e.Site.Bounds.XMax - e.Config.BoundaryMargin,
		YMax: e.Site.Bounds.YMax - e.Config.BoundaryMargin,
	}
	for _, b := range e.Buildings {
		sol.Positions[b.ID] = model.Point{
			X: rng.Float64Range(inset.XMin, inset.XMax),
			Y: rng.Float64Range(inset.YMin, inset.YMax),
		}
	}
	return sol
}

// seed generates a valid starting solution, retrying up to MaxSeedRetries
// times and falling back to the least-violating attempt seen (spec.md
// §4.5's seed repair rule).
func (e *SAExplorer) seed(rng *hsrand.RNG) *model.Solution {
	var best *model.Solution
	bestViolations := math.MaxInt64
	for i := 0; i < e.Config.MaxSeedRetries; i++ {
		candidate := e.randomSeed(rng)
		v := e.violations(candidate)
		if v == 0 {
			return candidate
		}
		if v < bestViolations {
			best, bestViolations = candidate, v
		}
	}
	if best == nil {
		best = e.randomSeed(rng)
	}
	return best
}

// evaluateWithRetry evaluates candidate; on error it logs the failure with
// the solution's fingerprint and retries once against a re-randomized
// neighbor. A second failure is returned to the caller, which marks only
// the owning chain stalled (spec.md §4.12).
func (e *SAExplorer) evaluateWithRetry(ctx context.Context, candidate *model.Solution, rng *hsrand.RNG, phase string) (evaluator.FitnessResult, error) {
	res, err := e.Eval.Evaluate(ctx, candidate, e.Site)
	if err == nil {
		return res, nil
	}
	e.logger().Warn("evaluator failed, retrying with a re-randomized neighbor", map[string]any{
		"phase":       phase,
		"fingerprint": candidate.Fingerprint(1),
		"error":       err.Error(),
	})
	if e.Metrics != nil {
		e.Metrics.EvaluatorErrors.WithLabelValues(phase).Inc()
	}
	retryCandidate := operators.RandomResetPerturb{}.Perturb(candidate, e.Buildings, e.Site.Bounds, e.Config.BoundaryMargin, e.Config.InitialTemperature, rng)
	res, err2 := e.Eval.Evaluate(ctx, retryCandidate, e.Site)
	if err2 != nil {
		e.logger().Error(err2, "evaluator failed again after retry, marking chain stalled", map[string]any{
			"phase":       phase,
			"fingerprint": retryCandidate.Fingerprint(1),
		})
		if e.Metrics != nil {
			e.Metrics.EvaluatorErrors.WithLabelValues(phase).Inc()
		}
		return evaluator.FitnessResult{}, fmt.Errorf("sa: evaluator failed twice in a row: %w", err2)
	}
	return res, nil
}

type chainResult struct {
	best        *model.Solution
	bestFitness float64
	trace       ChainTrace
}

// recordCurrent publishes chainID's latest working solution and reports the
// spread across all chains' most recent solutions (spec.md §4.7's
// "population diversity", adapted to SA's per-chain pool).
func (e *SAExplorer) recordCurrent(chainID int, current *model.Solution) float64 {
	e.chainMu.Lock()
	if e.chainCurrent == nil {
		e.chainCurrent = make([]*model.Solution, e.Config.NumChains)
	}
	e.chainCurrent[chainID] = current
	snapshot := append([]*model.Solution(nil), e.chainCurrent...)
	e.chainMu.Unlock()
	return meanPairwiseDistance(snapshot)
}

func meanPairwiseDistance(sols []*model.Solution) float64 {
	total, pairs := 0.0, 0
	for i := 0; i < len(sols); i++ {
		if sols[i] == nil {
			continue
		}
		for j := i + 1; j < len(sols); j++ {
			if sols[j] == nil {
				continue
			}
			for id, p := range sols[i].Positions {
				if q, ok := sols[j].Positions[id]; ok {
					total += p.Dist(q)
				}
			}
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return total / float64(pairs)
}

// operatorMix reports each registered operator's share of uses recorded so
// far in the selector (spec.md §4.7's "operator mix").
func operatorMix(sel *registry.AdaptiveSelector, family registry.Family) map[string]float64 {
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

func (e *SAExplorer) runChain(ctx context.Context, chainID int) chainResult {
	rng := e.RNG.Child(fmt.Sprintf("chain/%d", chainID))
	current := e.seed(rng)
	currentResult, err := e.evaluateWithRetry(ctx, current, rng, "sa")
	trace := ChainTrace{ChainID: chainID}
	if err != nil {
		trace.Stalled = true
		current.Fitness = currentResult.Fitness
		return chainResult{best: current, bestFitness: currentResult.Fitness, trace: trace}
	}
	currentFitness := currentResult.Fitness
	current.Fitness = currentFitness
	current.Objectives = currentResult.Objectives
	best := current.Clone()
	bestFitness := currentFitness

	names := e.Registry.Names(registry.Perturbation)
	sort.Strings(names)

	temperature := e.Config.InitialTemperature
	stall := 0

	for iter := 0; iter < e.Config.MaxIterations; iter++ {
		select {
		case <-ctx.Done():
			trace.Iterations = iter
			return chainResult{best: best, bestFitness: bestFitness, trace: trace}
		default:
		}

		progress := float64(iter) / float64(e.Config.MaxIterations)
		opName := e.Selector.Choose(registry.Perturbation, names, progress, rng)
		op, ok := e.Registry.New(registry.Perturbation, opName)
		if !ok {
			continue
		}

		candidate := op.Perturb(current, e.Buildings, e.Site.Bounds, e.Config.BoundaryMargin, temperature, rng)
		candResult, err := e.evaluateWithRetry(ctx, candidate, rng, "sa")
		if err != nil {
			trace.Stalled = true
			trace.Iterations = iter
			break
		}

		e.Selector.Credit(registry.Perturbation, names, opName, candResult.Fitness, currentFitness)

		candidate.Fitness = candResult.Fitness
		candidate.Objectives = candResult.Objectives

		delta := candResult.Fitness - currentFitness
		accept := delta >= 0 || rng.Float64() < math.Exp(delta/math.Max(temperature, 1e-9))
		if accept {
			current = candidate
			currentFitness = candResult.Fitness
		}

		if candResult.Fitness > bestFitness {
			best = candidate.Clone()
			bestFitness = candResult.Fitness
			stall = 0
		} else {
			stall++
		}

		trace.BestFitnessCurve = append(trace.BestFitnessCurve, bestFitness)
		if e.Metrics != nil {
			e.Metrics.IterationsTotal.WithLabelValues("sa").Inc()
			e.Metrics.BestFitness.Set(bestFitness)
		}
		if e.Progress != nil {
			diversity := e.recordCurrent(chainID, current)
			e.Progress(ProgressEvent{
				ChainID:     chainID,
				Iteration:   iter,
				BestFitness: bestFitness,
				Diversity:   diversity,
				OperatorMix: operatorMix(e.Selector, registry.Perturbation),
			})
		}

		temperature = math.Max(temperature*e.Config.CoolingRate, e.Config.FinalTemperature)
		trace.Iterations = iter + 1

		if temperature <= e.Config.FinalTemperature || stall >= e.Config.StallPatience {
			break
		}
	}

	trace.FinalTemperature = temperature
	return chainResult{best: best, bestFitness: bestFitness, trace: trace}
}

// Run executes all chains concurrently and returns the pooled top-m
// solutions (by fitness) plus every chain's trace. topM is clamped to at
// least 1; callers typically pass ga_population_size*0.5 (spec.md §4.5).
func (e *SAExplorer) Run(ctx context.Context, topM int) (*Result, error) {
	if topM <= 0 {
		topM = int(float64(e.Config.GAPopulationSize) * 0.5)
	}
	if topM <= 0 {
		topM = 1
	}

	n := e.Config.NumChains
	results := make([]chainResult, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(id int) {
			defer wg.Done()
			results[id] = e.runChain(ctx, id)
		}(i)
	}
	wg.Wait()

	pool := make([]*model.Solution, 0, n)
	traces := make([]ChainTrace, 0, n)
	for _, r := range results {
		if r.best != nil {
			pool = append(pool, r.best)
		}
		traces = append(traces, r.trace)
	}

	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Fitness > pool[j].Fitness })
	if len(pool) > topM {
		pool = pool[:topM]
	}

	return &Result{Top: pool, Traces: traces}, nil
}
