package tensorfield

import (
	"math"

	"github.com/dshills/hsaga/pkg/model"
)

// Tensor is a symmetric 2x2 tensor stored as its three free components.
type Tensor struct {
	Txx, Tyy, Txy float64
}

// Add returns the component-wise sum of two tensors.
func (t Tensor) Add(o Tensor) Tensor {
	return Tensor{Txx: t.Txx + o.Txx, Tyy: t.Tyy + o.Tyy, Txy: t.Txy + o.Txy}
}

// Scale returns t scaled by s.
func (t Tensor) Scale(s float64) Tensor {
	return Tensor{Txx: t.Txx * s, Tyy: t.Tyy * s, Txy: t.Txy * s}
}

// EigenDegeneracyEpsilon is the threshold below which |lambda1 - lambda2|
// marks a point as a singularity (spec.md §4.8).
const EigenDegeneracyEpsilon = 1e-6

// Eigen is the result of decomposing a symmetric 2x2 tensor.
type Eigen struct {
	Major, Minor float64     // eigenvalues, Major >= Minor
	MajorVector  [2]float64  // unit eigenvector for Major
	MinorVector  [2]float64  // unit eigenvector for Minor
	Singular     bool        // |Major-Minor| < EigenDegeneracyEpsilon
}

// Decompose computes the closed-form eigendecomposition of a symmetric 2x2
// tensor [[Txx, Txy], [Txy, Tyy]]. This is a specialization of the general
// Jacobi-rotation approach (as used for arbitrary n in
// katalvlaran/lvlath/matrix/ops.Eigen) to the fixed 2x2 case, where the
// closed-form solution is exact and needs no iteration.
func Decompose(t Tensor) Eigen {
	trace := t.Txx + t.Tyy
	diff := t.Txx - t.Tyy
	disc := math.Sqrt(diff*diff + 4*t.Txy*t.Txy)

	lambda1 := (trace + disc) / 2
	lambda2 := (trace - disc) / 2

	e := Eigen{Major: lambda1, Minor: lambda2}
	e.Singular = math.Abs(lambda1-lambda2) < EigenDegeneracyEpsilon

	// Eigenvector for lambda1: solve (Txx - lambda1) vx + Txy vy = 0.
	var vx, vy float64
	if math.Abs(t.Txy) > 1e-12 {
		vx = t.Txy
		vy = lambda1 - t.Txx
	} else if t.Txx >= t.Tyy {
		vx, vy = 1, 0
	} else {
		vx, vy = 0, 1
	}
	norm := math.Hypot(vx, vy)
	if norm < 1e-12 {
		vx, vy, norm = 1, 0, 1
	}
	e.MajorVector = [2]float64{vx / norm, vy / norm}
	// Minor eigenvector is perpendicular.
	e.MinorVector = [2]float64{-e.MajorVector[1], e.MajorVector[0]}
	return e
}

// ContinuousMajor picks the sign of a freshly decomposed major eigenvector
// that keeps it as close as possible to prev (the previous sample along a
// streamline), preventing spurious direction flips between adjacent
// samples (spec.md §4.8 "define its sign to minimize direction flipping").
func ContinuousMajor(e Eigen, prev [2]float64) [2]float64 {
	dot := e.MajorVector[0]*prev[0] + e.MajorVector[1]*prev[1]
	if dot < 0 {
		return [2]float64{-e.MajorVector[0], -e.MajorVector[1]}
	}
	return e.MajorVector
}

func gaussianWeight(d, r float64) float64 {
	if r <= 0 {
		return 0
	}
	ratio := d / r
	return math.Exp(-(ratio * ratio))
}

// Basis is a single-source contribution to the composite tensor field.
type Basis interface {
	// Contribution returns the (already distance-weighted) tensor this
	// basis contributes at point p.
	Contribution(p model.Point) Tensor
}

// rotationDiag returns R(theta)*diag(lambdaMajor,lambdaMinor)*R(theta)^T.
func rotationDiag(theta, lambdaMajor, lambdaMinor float64) Tensor {
	c, s := math.Cos(theta), math.Sin(theta)
	// R = [[c,-s],[s,c]]; T = R * D * R^T
	txx := c*c*lambdaMajor + s*s*lambdaMinor
	tyy := s*s*lambdaMajor + c*c*lambdaMinor
	txy := c * s * (lambdaMajor - lambdaMinor)
	return Tensor{Txx: txx, Tyy: tyy, Txy: txy}
}

// GridBasis is a grid-aligned tensor contribution, oriented at Angle
// radians, decaying with Gaussian weight from Center over Radius, scaled
// by Weight and by the configured eigenvalue ratio (LambdaMajor > LambdaMinor > 0).
type GridBasis struct {
	Center                   model.Point
	Angle                    float64
	Radius                   float64
	Weight                   float64
	LambdaMajor, LambdaMinor float64
}

func (g GridBasis) Contribution(p model.Point) Tensor {
	d := p.Dist(g.Center)
	w := gaussianWeight(d, g.Radius) * g.Weight
	if w == 0 {
		return Tensor{}
	}
	return rotationDiag(g.Angle, g.LambdaMajor, g.LambdaMinor).Scale(w)
}

// RadialBasis is a radial tensor contribution whose major eigenvector
// points along (p - Center); it is exactly zero at Center and decays with
// Gaussian weight over Radius, scaled by Weight.
type RadialBasis struct {
	Center model.Point
	Radius float64
	Weight float64
}

func (r RadialBasis) Contribution(p model.Point) Tensor {
	dx := p.X - r.Center.X
	dy := p.Y - r.Center.Y
	d2 := dx*dx + dy*dy
	if d2 < 1e-12 {
		return Tensor{}
	}
	d := math.Sqrt(d2)
	w := gaussianWeight(d, r.Radius) * r.Weight
	if w == 0 {
		return Tensor{}
	}
	return Tensor{
		Txx: dx * dx / d2,
		Tyy: dy * dy / d2,
		Txy: dx * dy / d2,
	}.Scale(w)
}
