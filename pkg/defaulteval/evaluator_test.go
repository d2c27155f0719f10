package defaulteval

import (
	"context"
	"testing"

	"github.com/dshills/hsaga/pkg/model"
)

func TestEvaluateRewardsSeparationOverCrowding(t *testing.T) {
	buildings := []*model.Building{
		{ID: "a", Type: model.Educational, Area: 1000, Floors: 2},
		{ID: "b", Type: model.Residential, Area: 1000, Floors: 2},
	}
	site := &model.Site{Bounds: model.Bounds{XMin: 0, YMin: 0, XMax: 200, YMax: 200}}
	eval := New(buildings, nil, 30)

	spread := &model.Solution{Positions: map[string]model.Point{
		"a": {X: 10, Y: 10},
		"b": {X: 190, Y: 190},
	}}
	crowded := &model.Solution{Positions: map[string]model.Point{
		"a": {X: 100, Y: 100},
		"b": {X: 101, Y: 100},
	}}

	spreadResult, err := eval.Evaluate(context.Background(), spread, site)
	if err != nil {
		t.Fatalf("evaluate spread: %v", err)
	}
	crowdedResult, err := eval.Evaluate(context.Background(), crowded, site)
	if err != nil {
		t.Fatalf("evaluate crowded: %v", err)
	}

	if crowdedResult.Objectives["separation"] >= spreadResult.Objectives["separation"] {
		t.Fatalf("expected crowding to reduce the separation objective, got crowded=%v spread=%v",
			crowdedResult.Objectives["separation"], spreadResult.Objectives["separation"])
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	buildings := []*model.Building{
		{ID: "a", Type: model.Educational, Area: 1000, Floors: 2},
		{ID: "b", Type: model.Residential, Area: 1000, Floors: 2},
	}
	site := &model.Site{Bounds: model.Bounds{XMin: 0, YMin: 0, XMax: 200, YMax: 200}}
	eval := New(buildings, Weights{"adjacency": 2.0}, 30)
	sol := &model.Solution{Positions: map[string]model.Point{
		"a": {X: 20, Y: 20},
		"b": {X: 150, Y: 150},
	}}

	r1, err := eval.Evaluate(context.Background(), sol, site)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	r2, err := eval.Evaluate(context.Background(), sol, site)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if r1.Fitness != r2.Fitness {
		t.Fatalf("expected deterministic fitness, got %v vs %v", r1.Fitness, r2.Fitness)
	}
}
