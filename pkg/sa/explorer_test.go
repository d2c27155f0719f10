package sa

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/dshills/hsaga/pkg/evaluator"
	"github.com/dshills/hsaga/pkg/hsrand"
	"github.com/dshills/hsaga/pkg/model"
)

func testBuildings() []*model.Building {
	return []*model.Building{
		{ID: "a", Type: model.Educational, Area: 1000, Floors: 2},
		{ID: "b", Type: model.Residential, Area: 1000, Floors: 2},
		{ID: "c", Type: model.Dining, Area: 500, Floors: 1},
	}
}

func testSite() *model.Site {
	return &model.Site{Bounds: model.Bounds{XMin: 0, YMin: 0, XMax: 300, YMax: 300}}
}

// centroidEvaluator rewards solutions whose buildings sit close to the
// site's center, giving the SA loop a smooth hill to climb.
func centroidEvaluator(site *model.Site) evaluator.Evaluator {
	cx := (site.Bounds.XMin + site.Bounds.XMax) / 2
	cy := (site.Bounds.YMin + site.Bounds.YMax) / 2
	center := model.Point{X: cx, Y: cy}
	return evaluator.Func(func(_ context.Context, sol *model.Solution, _ *model.Site) (evaluator.FitnessResult, error) {
		total := 0.0
		for _, p := range sol.Positions {
			total += p.Dist(center)
		}
		return evaluator.FitnessResult{Fitness: -total}, nil
	})
}

func TestRunProducesTopMSolutionsOrderedByFitness(t *testing.T) {
	site := testSite()
	buildings := testBuildings()
	eval := centroidEvaluator(site)
	rng := hsrand.New(42, "sa-test", nil)

	cfg := DefaultConfig()
	cfg.NumChains = 3
	cfg.MaxIterations = 50
	cfg.GAPopulationSize = 4

	explorer := New(buildings, site, eval, rng, cfg)
	result, err := explorer.Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Top) == 0 {
		t.Fatal("expected at least one solution")
	}
	for i := 1; i < len(result.Top); i++ {
		if result.Top[i].Fitness > result.Top[i-1].Fitness {
			t.Fatalf("top solutions not sorted descending by fitness at index %d", i)
		}
	}
	if len(result.Traces) != cfg.NumChains {
		t.Fatalf("expected %d chain traces, got %d", cfg.NumChains, len(result.Traces))
	}
}

func TestRunPublishesProgressEventsWithOperatorMix(t *testing.T) {
	site := testSite()
	buildings := testBuildings()
	eval := centroidEvaluator(site)
	rng := hsrand.New(9, "sa-progress-test", nil)

	cfg := DefaultConfig()
	cfg.NumChains = 2
	cfg.MaxIterations = 20
	cfg.GAPopulationSize = 4

	explorer := New(buildings, site, eval, rng, cfg)
	var events []ProgressEvent
	var mu sync.Mutex
	explorer.Progress = func(ev ProgressEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}

	if _, err := explorer.Run(context.Background(), 0); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("expected at least one published progress event")
	}
	for _, ev := range events {
		if ev.OperatorMix == nil {
			t.Fatal("expected a non-nil operator mix on every progress event")
		}
	}
}

func TestRunIsDeterministicGivenFixedSeed(t *testing.T) {
	site := testSite()
	buildings := testBuildings()
	eval := centroidEvaluator(site)

	run := func() float64 {
		rng := hsrand.New(7, "sa-determinism", nil)
		cfg := DefaultConfig()
		cfg.NumChains = 2
		cfg.MaxIterations = 30
		explorer := New(buildings, site, eval, rng, cfg)
		result, err := explorer.Run(context.Background(), 2)
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if len(result.Top) == 0 {
			t.Fatal("expected at least one solution")
		}
		return result.Top[0].Fitness
	}

	a := run()
	b := run()
	if a != b {
		t.Fatalf("expected deterministic best fitness given a fixed seed, got %v vs %v", a, b)
	}
}

func TestSeedRepairSatisfiesMinDistance(t *testing.T) {
	site := &model.Site{Bounds: model.Bounds{XMin: 0, YMin: 0, XMax: 1000, YMax: 1000}}
	buildings := testBuildings()
	eval := centroidEvaluator(site)
	rng := hsrand.New(1, "seed-test", nil)

	cfg := DefaultConfig()
	cfg.MinDistance = 20
	cfg.MaxSeedRetries = 200
	explorer := New(buildings, site, eval, rng, cfg)

	seeded := explorer.seed(rng.Child("probe"))
	if explorer.violations(seeded) != 0 {
		t.Fatalf("expected a fully valid seed on a roomy site, got %d violations", explorer.violations(seeded))
	}
}

func TestChainStallsOnRepeatedEvaluatorFailureWithoutFailingRun(t *testing.T) {
	site := testSite()
	buildings := testBuildings()
	rng := hsrand.New(3, "fail-test", nil)

	failingEval := evaluator.Func(func(_ context.Context, _ *model.Solution, _ *model.Site) (evaluator.FitnessResult, error) {
		return evaluator.FitnessResult{}, errors.New("boom")
	})

	cfg := DefaultConfig()
	cfg.NumChains = 2
	cfg.MaxIterations = 10
	explorer := New(buildings, site, failingEval, rng, cfg)

	result, err := explorer.Run(context.Background(), 2)
	if err != nil {
		t.Fatalf("Run itself must not fail when a chain stalls: %v", err)
	}
	for _, tr := range result.Traces {
		if !tr.Stalled {
			t.Fatalf("expected chain %d to be marked stalled when the evaluator always errors", tr.ChainID)
		}
	}
}

func TestMetropolisAcceptsWorseMovesAtHighTemperatureMoreOften(t *testing.T) {
	rng := hsrand.New(9, "metropolis-test", nil)
	high, low := 0, 0
	const trials = 2000
	delta := -5.0
	for i := 0; i < trials; i++ {
		if rng.Float64() < math.Exp(delta/1000) {
			high++
		}
	}
	for i := 0; i < trials; i++ {
		if rng.Float64() < math.Exp(delta/0.01) {
			low++
		}
	}
	if high <= low {
		t.Fatalf("expected higher acceptance rate at high temperature: high=%d low=%d", high, low)
	}
}
