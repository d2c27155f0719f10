package registry

import (
	"testing"

	"github.com/dshills/hsaga/pkg/hsrand"
)

func TestOperatorRegistryRefusesDuplicateNames(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	r := NewOperatorRegistry[int]()
	r.Register(Perturbation, "gaussian", func() int { return 1 })
	r.Register(Perturbation, "gaussian", func() int { return 2 })
}

func TestOperatorRegistryNewUnknown(t *testing.T) {
	r := NewOperatorRegistry[int]()
	_, ok := r.New(Mutation, "nope")
	if ok {
		t.Fatal("expected ok=false for unregistered operator")
	}
}

// TestAdaptivePursuitConvergesToBetterOperator mirrors spec.md §8
// Scenario F: a "good" operator that always improves by 0.01 and a "bad"
// operator that always worsens by 0.01; after 500 applications,
// probability of selecting "good" must exceed 0.85.
func TestAdaptivePursuitConvergesToBetterOperator(t *testing.T) {
	sel := NewAdaptiveSelector(StrategyAdaptivePursuit, 20)
	names := []string{"good", "bad"}
	rng := hsrand.New(1, "t", nil)

	for i := 0; i < 500; i++ {
		chosen := sel.Choose(Perturbation, names, float64(i)/500, rng)
		improvement := -0.01
		if chosen == "good" {
			improvement = 0.01
		}
		sel.Credit(Perturbation, names, chosen, improvement, 0)
	}

	goodPicks := 0
	trials := 1000
	for i := 0; i < trials; i++ {
		if sel.Choose(Perturbation, names, 1.0, rng) == "good" {
			goodPicks++
		}
	}
	rate := float64(goodPicks) / float64(trials)
	if rate <= 0.85 {
		t.Fatalf("adaptive pursuit only selected good operator %v%% of the time, want > 85%%", rate*100)
	}
}

func TestGreedyPicksHighestRunningReward(t *testing.T) {
	sel := NewAdaptiveSelector(StrategyGreedy, 20)
	names := []string{"a", "b"}
	rng := hsrand.New(1, "t", nil)

	sel.Credit(Perturbation, names, "a", 1.0, 0)
	sel.Credit(Perturbation, names, "b", 0.1, 0)

	for i := 0; i < 20; i++ {
		if got := sel.Choose(Perturbation, names, 0, rng); got != "a" {
			t.Fatalf("greedy chose %q, want %q", got, "a")
		}
	}
}

func TestUCBTriesUntriedOperatorsFirst(t *testing.T) {
	sel := NewAdaptiveSelector(StrategyUCB, 20)
	names := []string{"a", "b", "c"}
	rng := hsrand.New(1, "t", nil)

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		chosen := sel.Choose(Perturbation, names, 0, rng)
		seen[chosen] = true
		sel.Credit(Perturbation, names, chosen, 0.5, 0)
	}
	if len(seen) != 3 {
		t.Fatalf("UCB should try every untried operator before repeating, saw %v", seen)
	}
}

func TestUniformDistributesAcrossOperators(t *testing.T) {
	sel := NewAdaptiveSelector(StrategyUniform, 20)
	names := []string{"a", "b"}
	rng := hsrand.New(1, "t", nil)
	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		counts[sel.Choose(Perturbation, names, 0, rng)]++
	}
	for _, n := range names {
		if counts[n] < 800 || counts[n] > 1200 {
			t.Fatalf("uniform selection skewed: counts=%v", counts)
		}
	}
}
