package quality

import (
	"testing"

	"github.com/dshills/hsaga/pkg/model"
)

func sol(fitness float64, objectives map[string]float64) *model.Solution {
	return &model.Solution{Positions: map[string]model.Point{}, Fitness: fitness, Objectives: objectives}
}

func TestParetoFrontDiscardsDominated(t *testing.T) {
	f := NewParetoFront()
	a := sol(1, map[string]float64{"x": 5, "y": 5})
	b := sol(2, map[string]float64{"x": 1, "y": 1})

	if !f.Insert(a) {
		t.Fatal("first insert should always succeed")
	}
	if f.Insert(b) {
		t.Fatal("b is dominated by a on both objectives and should be rejected")
	}
	if f.Len() != 1 {
		t.Fatalf("expected front length 1, got %d", f.Len())
	}
}

func TestParetoFrontRemovesNewlyDominatedMembers(t *testing.T) {
	f := NewParetoFront()
	weak := sol(1, map[string]float64{"x": 3, "y": 3})
	strong := sol(2, map[string]float64{"x": 5, "y": 5})

	f.Insert(weak)
	if !f.Insert(strong) {
		t.Fatal("strong dominates weak and should be inserted")
	}
	members := f.Members()
	if len(members) != 1 || members[0] != strong {
		t.Fatalf("expected only strong to remain, got %v", members)
	}
}

func TestHypervolume2DMatchesManualArea(t *testing.T) {
	front := []*model.Solution{
		sol(0, map[string]float64{"x": 1, "y": 4}),
		sol(0, map[string]float64{"x": 3, "y": 2}),
		sol(0, map[string]float64{"x": 4, "y": 1}),
	}
	hv := Hypervolume(front, []string{"x", "y"}, map[string]float64{"x": 0, "y": 0})
	// area = 1*4 + (3-1)*2 + (4-3)*1 = 4+4+1 = 9
	if hv < 8.9 || hv > 9.1 {
		t.Fatalf("expected hypervolume ~9, got %v", hv)
	}
}

func TestHypervolumeNDNonNegative(t *testing.T) {
	front := []*model.Solution{
		sol(0, map[string]float64{"x": 1, "y": 2, "z": 3}),
		sol(0, map[string]float64{"x": 2, "y": 1, "z": 2}),
		sol(0, map[string]float64{"x": 3, "y": 3, "z": 1}),
	}
	hv := Hypervolume(front, []string{"x", "y", "z"}, map[string]float64{"x": 0, "y": 0, "z": 0})
	if hv <= 0 {
		t.Fatalf("expected positive hypervolume, got %v", hv)
	}
}

func TestSpreadZeroForEvenlySpacedFront(t *testing.T) {
	front := []*model.Solution{
		sol(0, map[string]float64{"x": 0}),
		sol(0, map[string]float64{"x": 1}),
		sol(0, map[string]float64{"x": 2}),
		sol(0, map[string]float64{"x": 3}),
	}
	s := Spread(front)
	if s > 1e-9 {
		t.Fatalf("evenly spaced front should have spread ~0, got %v", s)
	}
}

func TestSpacingZeroForEvenlySpacedFront(t *testing.T) {
	front := []*model.Solution{
		sol(0, map[string]float64{"x": 0}),
		sol(0, map[string]float64{"x": 2}),
		sol(0, map[string]float64{"x": 4}),
	}
	s := Spacing(front)
	if s > 1e-9 {
		t.Fatalf("evenly spaced front should have spacing ~0, got %v", s)
	}
}
