package tensorfield

import (
	"math"
	"testing"

	"github.com/dshills/hsaga/pkg/model"
)

func TestDecomposeDiagonal(t *testing.T) {
	e := Decompose(Tensor{Txx: 4, Tyy: 1, Txy: 0})
	if math.Abs(e.Major-4) > 1e-9 || math.Abs(e.Minor-1) > 1e-9 {
		t.Fatalf("got major=%v minor=%v, want 4 and 1", e.Major, e.Minor)
	}
	if e.Singular {
		t.Fatal("distinct eigenvalues should not be marked singular")
	}
}

func TestDecomposeDegenerateIsSingular(t *testing.T) {
	e := Decompose(Tensor{Txx: 2, Tyy: 2, Txy: 0})
	if !e.Singular {
		t.Fatal("equal eigenvalues should be marked singular")
	}
}

func TestDecomposeReconstructsEigenvalues(t *testing.T) {
	// A generic symmetric tensor.
	tn := Tensor{Txx: 3, Tyy: 5, Txy: 1.5}
	e := Decompose(tn)
	trace := tn.Txx + tn.Tyy
	if math.Abs((e.Major+e.Minor)-trace) > 1e-9 {
		t.Fatalf("eigenvalues should sum to trace: got %v want %v", e.Major+e.Minor, trace)
	}
	det := tn.Txx*tn.Tyy - tn.Txy*tn.Txy
	if math.Abs(e.Major*e.Minor-det) > 1e-9 {
		t.Fatalf("eigenvalues should multiply to determinant: got %v want %v", e.Major*e.Minor, det)
	}
}

func TestContinuousMajorFlipsToMatchPrevious(t *testing.T) {
	e := Decompose(Tensor{Txx: 4, Tyy: 1, Txy: 0})
	prev := [2]float64{-1, 0}
	got := ContinuousMajor(e, prev)
	dot := got[0]*prev[0] + got[1]*prev[1]
	if dot < 0 {
		t.Fatalf("continuous major vector %v should align with prev %v", got, prev)
	}
}

func TestRadialBasisZeroAtCenter(t *testing.T) {
	b := RadialBasis{Center: model.Point{X: 5, Y: 5}, Radius: 10, Weight: 1}
	got := b.Contribution(model.Point{X: 5, Y: 5})
	if got != (Tensor{}) {
		t.Fatalf("radial basis at its own center should be zero, got %+v", got)
	}
}

func TestFieldSampleAtNodesMatchesStoredValues(t *testing.T) {
	bounds := model.Bounds{XMin: 0, YMin: 0, XMax: 100, YMax: 100}
	bases := []Basis{
		RadialBasis{Center: model.Point{X: 30, Y: 30}, Radius: 20, Weight: 1},
		GridBasis{Center: model.Point{X: 50, Y: 50}, Angle: 0.3, Radius: 80, Weight: 0.5, LambdaMajor: 1, LambdaMinor: 0.2},
	}
	f := Build(bounds, 10, bases)
	nx, ny := f.Dims()
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			x := bounds.XMin + float64(i)*10
			y := bounds.YMin + float64(j)*10
			sampled := f.Sample(model.Point{X: x, Y: y})
			stored := f.NodeValue(i, j)
			if math.Abs(sampled.Txx-stored.Txx) > 1e-9 ||
				math.Abs(sampled.Tyy-stored.Tyy) > 1e-9 ||
				math.Abs(sampled.Txy-stored.Txy) > 1e-9 {
				t.Fatalf("node (%d,%d): sampled %+v != stored %+v", i, j, sampled, stored)
			}
		}
	}
}

func TestAssembleCampusProducesNonTrivialField(t *testing.T) {
	site := &model.Site{
		Bounds: model.Bounds{XMin: 0, YMin: 0, XMax: 200, YMax: 200},
		Gateways: []model.Gateway{
			{Position: model.Point{X: 0, Y: 100}, Bearing: 0, Clearance: 5},
		},
	}
	buildings := []*model.Building{
		{ID: "a", Type: model.Educational, Area: 2000, Floors: 4},
	}
	sol := model.NewSolution()
	sol.Positions["a"] = model.Point{X: 100, Y: 100}

	f := AssembleCampus(site, buildings, sol, DefaultCampusConfig())
	nz := f.Sample(model.Point{X: 100, Y: 100})
	if nz.Txx == 0 && nz.Tyy == 0 && nz.Txy == 0 {
		t.Fatal("expected a non-trivial tensor near a placed building")
	}
}
