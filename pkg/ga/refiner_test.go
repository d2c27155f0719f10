package ga

import (
	"context"
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
		{ID: "d", Type: model.Sports, Area: 800, Floors: 1},
	}
}

func testSite() *model.Site {
	return &model.Site{Bounds: model.Bounds{XMin: 0, YMin: 0, XMax: 500, YMax: 500}}
}

func twoObjectiveEvaluator(site *model.Site) evaluator.Evaluator {
	cx := (site.Bounds.XMin + site.Bounds.XMax) / 2
	cy := (site.Bounds.YMin + site.Bounds.YMax) / 2
	center := model.Point{X: cx, Y: cy}
	return evaluator.Func(func(_ context.Context, sol *model.Solution, _ *model.Site) (evaluator.FitnessResult, error) {
		compactness, spread := 0.0, 0.0
		ids := sol.SortedIDs()
		for _, id := range ids {
			compactness -= sol.Positions[id].Dist(center)
		}
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				spread += sol.Positions[ids[i]].Dist(sol.Positions[ids[j]])
			}
		}
		return evaluator.FitnessResult{
			Fitness:    compactness + 0.1*spread,
			Objectives: map[string]float64{"compactness": compactness, "spread": spread},
		}, nil
	})
}

func seedSASolutions(buildings []*model.Building, site *model.Site, rng *hsrand.RNG, n int) []*model.Solution {
	out := make([]*model.Solution, 0, n)
	inset := model.Bounds{XMin: site.Bounds.XMin + 10, YMin: site.Bounds.YMin + 10, XMax: site.Bounds.XMax - 10, YMax: site.Bounds.YMax - 10}
	for i := 0; i < n; i++ {
		sol := model.NewSolution()
		for _, b := range buildings {
			sol.Positions[b.ID] = model.Point{X: rng.Float64Range(inset.XMin, inset.XMax), Y: rng.Float64Range(inset.YMin, inset.YMax)}
		}
		out = append(out, sol)
	}
	return out
}

func TestSeedPopulationProducesFullyEvaluatedPopulation(t *testing.T) {
	site := testSite()
	buildings := testBuildings()
	eval := twoObjectiveEvaluator(site)
	rng := hsrand.New(1, "ga-seed-test", nil)

	cfg := DefaultConfig()
	cfg.PopulationSize = 20
	refiner := New(buildings, site, eval, rng, cfg)

	saTop := seedSASolutions(buildings, site, rng.Child("sa"), 6)
	pop, err := refiner.SeedPopulation(context.Background(), saTop, rng.Child("seed"))
	if err != nil {
		t.Fatalf("SeedPopulation returned error: %v", err)
	}
	if len(pop) != cfg.PopulationSize {
		t.Fatalf("expected population size %d, got %d", cfg.PopulationSize, len(pop))
	}
	for i, ind := range pop {
		if ind.Objectives == nil {
			t.Fatalf("individual %d has no objectives after seeding", i)
		}
	}
}

func TestRunProducesPopulationAndArchiveOfCorrectSize(t *testing.T) {
	site := testSite()
	buildings := testBuildings()
	eval := twoObjectiveEvaluator(site)
	rng := hsrand.New(5, "ga-run-test", nil)

	cfg := DefaultConfig()
	cfg.PopulationSize = 16
	cfg.Generations = 10
	refiner := New(buildings, site, eval, rng, cfg)

	saTop := seedSASolutions(buildings, site, rng.Child("sa"), 8)
	pop, err := refiner.SeedPopulation(context.Background(), saTop, rng.Child("seed"))
	if err != nil {
		t.Fatalf("SeedPopulation error: %v", err)
	}

	result, err := refiner.Run(context.Background(), pop)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(result.Population) != cfg.PopulationSize {
		t.Fatalf("expected final population size %d, got %d", cfg.PopulationSize, len(result.Population))
	}
	if len(result.Archive) == 0 {
		t.Fatal("expected a non-empty Pareto archive")
	}
	if result.Generations == 0 {
		t.Fatal("expected at least one completed generation")
	}
}

func TestRunPublishesProgressEventsWithDiversityAndMix(t *testing.T) {
	site := testSite()
	buildings := testBuildings()
	eval := twoObjectiveEvaluator(site)
	rng := hsrand.New(11, "ga-progress-test", nil)

	cfg := DefaultConfig()
	cfg.PopulationSize = 16
	cfg.Generations = 6
	refiner := New(buildings, site, eval, rng, cfg)
	var events []ProgressEvent
	refiner.Progress = func(ev ProgressEvent) { events = append(events, ev) }

	saTop := seedSASolutions(buildings, site, rng.Child("sa"), 8)
	pop, err := refiner.SeedPopulation(context.Background(), saTop, rng.Child("seed"))
	if err != nil {
		t.Fatalf("SeedPopulation error: %v", err)
	}
	if _, err := refiner.Run(context.Background(), pop); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(events) == 0 {
		t.Fatal("expected at least one published progress event")
	}
	for i, ev := range events {
		if ev.Generation != i {
			t.Fatalf("expected generation %d, got %d", i, ev.Generation)
		}
		if ev.OperatorMix == nil {
			t.Fatal("expected a non-nil operator mix on every progress event")
		}
		if ev.Diversity < 0 {
			t.Fatalf("expected non-negative diversity, got %v", ev.Diversity)
		}
	}
}

func TestReplacementKeepsEliteIndividuals(t *testing.T) {
	site := testSite()
	buildings := testBuildings()
	eval := twoObjectiveEvaluator(site)
	rng := hsrand.New(11, "ga-elite-test", nil)

	cfg := DefaultConfig()
	cfg.PopulationSize = 10
	cfg.EliteSize = 3
	refiner := New(buildings, site, eval, rng, cfg)

	saTop := seedSASolutions(buildings, site, rng.Child("sa"), 10)
	pop, err := refiner.SeedPopulation(context.Background(), saTop, rng.Child("seed"))
	if err != nil {
		t.Fatalf("SeedPopulation error: %v", err)
	}

	bestBefore := bestOf(pop)
	next := refiner.replace(context.Background(), pop, pop, rng)
	if bestOf(next) < bestBefore {
		t.Fatalf("elitism violated: best fitness dropped from %v to %v", bestBefore, bestOf(next))
	}
	if len(next) != cfg.PopulationSize {
		t.Fatalf("expected replacement to preserve population size %d, got %d", cfg.PopulationSize, len(next))
	}
}

func TestNonDominatedSortFirstFrontIsMutuallyNonDominating(t *testing.T) {
	pop := []*model.Solution{
		{Positions: map[string]model.Point{}, Objectives: map[string]float64{"x": 1, "y": 5}},
		{Positions: map[string]model.Point{}, Objectives: map[string]float64{"x": 5, "y": 1}},
		{Positions: map[string]model.Point{}, Objectives: map[string]float64{"x": 1, "y": 1}},
	}
	fronts := nonDominatedSort(pop)
	if len(fronts) < 2 {
		t.Fatalf("expected at least 2 fronts (dominated point should be peeled off), got %d", len(fronts))
	}
	for _, a := range fronts[0] {
		for _, b := range fronts[0] {
			if a != b && a.Dominates(b) {
				t.Fatalf("front 0 must be mutually non-dominating, but found a dominance relation")
			}
		}
	}
}
