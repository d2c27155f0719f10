package evaluator

import (
	"context"
	"testing"

	"github.com/dshills/hsaga/pkg/model"
)

func TestMemoizedReturnsCachedResultWithoutRecomputing(t *testing.T) {
	calls := 0
	inner := Func(func(ctx context.Context, sol *model.Solution, site *model.Site) (FitnessResult, error) {
		calls++
		return FitnessResult{Fitness: 42}, nil
	})
	m := NewMemoized(inner, 1.0, 10)

	sol := model.NewSolution()
	sol.Positions["a"] = model.Point{X: 1, Y: 2}

	for i := 0; i < 5; i++ {
		res, err := m.Evaluate(context.Background(), sol, &model.Site{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Fitness != 42 {
			t.Fatalf("got fitness %v, want 42", res.Fitness)
		}
	}
	if calls != 1 {
		t.Fatalf("inner evaluator called %d times, want 1", calls)
	}
}

func TestMemoizedEvictsLeastRecentlyUsed(t *testing.T) {
	calls := 0
	inner := Func(func(ctx context.Context, sol *model.Solution, site *model.Site) (FitnessResult, error) {
		calls++
		return FitnessResult{Fitness: float64(calls)}, nil
	})
	m := NewMemoized(inner, 1.0, 2)

	mk := func(x float64) *model.Solution {
		s := model.NewSolution()
		s.Positions["a"] = model.Point{X: x, Y: 0}
		return s
	}

	m.Evaluate(context.Background(), mk(1), &model.Site{})
	m.Evaluate(context.Background(), mk(2), &model.Site{})
	m.Evaluate(context.Background(), mk(3), &model.Site{}) // evicts x=1

	if m.Len() != 2 {
		t.Fatalf("cache length = %d, want 2", m.Len())
	}

	calls = 0
	m.Evaluate(context.Background(), mk(1), &model.Site{})
	if calls != 1 {
		t.Fatalf("expected x=1 to have been evicted and recomputed, calls=%d", calls)
	}
}
