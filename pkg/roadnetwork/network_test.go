package roadnetwork

import (
	"testing"

	"github.com/dshills/hsaga/pkg/model"
	"github.com/dshills/hsaga/pkg/tensorfield"
)

func testSite() *model.Site {
	return &model.Site{
		Bounds: model.Bounds{XMin: 0, YMin: 0, XMax: 300, YMax: 300},
		Gateways: []model.Gateway{
			{Position: model.Point{X: 0, Y: 150}, Bearing: 0, Clearance: 5},
			{Position: model.Point{X: 300, Y: 150}, Bearing: 3.14159, Clearance: 5},
		},
	}
}

func TestBuildProducesMajorAndMinorRoads(t *testing.T) {
	site := testSite()
	buildings := []*model.Building{
		{ID: "a", Type: model.Educational, Area: 2000, Floors: 3},
		{ID: "b", Type: model.Residential, Area: 1500, Floors: 4},
	}
	sol := model.NewSolution()
	sol.Positions["a"] = model.Point{X: 100, Y: 100}
	sol.Positions["b"] = model.Point{X: 200, Y: 200}

	field := tensorfield.AssembleCampus(site, buildings, sol, tensorfield.DefaultCampusConfig())
	net, err := Build(site, buildings, sol, DefaultConfig(field, site))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if net.Stats.MajorCount == 0 {
		t.Fatal("expected at least one major road from a gateway")
	}
	if net.Stats.TotalLength <= 0 {
		t.Fatal("expected positive total road length")
	}
	if net.Stats.Beta < 0 {
		t.Fatalf("beta index should be non-negative, got %v", net.Stats.Beta)
	}
}

func TestSimplifyCollapsesCollinearPoints(t *testing.T) {
	pts := []model.Point{
		{X: 0, Y: 0}, {X: 1, Y: 0.01}, {X: 2, Y: -0.01}, {X: 10, Y: 0},
	}
	out := Simplify(pts, 2)
	if len(out) != 2 {
		t.Fatalf("expected collinear points within epsilon to collapse to endpoints, got %d points: %v", len(out), out)
	}
	if out[0] != pts[0] || out[len(out)-1] != pts[len(pts)-1] {
		t.Fatal("simplification must preserve original endpoints")
	}
}

func TestSpatialIndexFindsNearestSegment(t *testing.T) {
	idx := NewSpatialIndex(10)
	idx.AddPolyline([]model.Point{{X: 0, Y: 0}, {X: 100, Y: 0}})

	d, ok := idx.NearestDistance(model.Point{X: 50, Y: 3})
	if !ok {
		t.Fatal("expected a registered segment to be found")
	}
	if d < 2.9 || d > 3.1 {
		t.Fatalf("expected distance ~3, got %v", d)
	}
}

func TestSpatialIndexNearestPointRespectsSearchRadius(t *testing.T) {
	idx := NewSpatialIndex(10)
	idx.AddPolyline([]model.Point{{X: 0, Y: 0}, {X: 100, Y: 0}})

	if _, ok := idx.NearestPoint(model.Point{X: 50, Y: 50}, 5); ok {
		t.Fatal("expected no snap point within a 5 m radius of a 50 m-away segment")
	}
	p, ok := idx.NearestPoint(model.Point{X: 50, Y: 3}, 5)
	if !ok {
		t.Fatal("expected a snap point within radius")
	}
	if p.X < 49 || p.X > 51 || p.Y != 0 {
		t.Fatalf("expected snap near (50,0), got %v", p)
	}
}
