package tensorfield

import (
	"math"

	"github.com/dshills/hsaga/pkg/model"
)

// Field is a tensor field precomputed on a regular grid over a bounding
// box, sampled elsewhere by bilinear interpolation (spec.md §4.8).
type Field struct {
	bounds   model.Bounds
	cellSize float64
	nx, ny   int
	grid     []Tensor // row-major, grid[j*nx+i] is the node at (xmin+i*cell, ymin+j*cell)
}

// Build assembles a Field over bounds with the given grid cell size,
// superposing every basis's contribution at each grid node.
func Build(bounds model.Bounds, cellSize float64, bases []Basis) *Field {
	if cellSize <= 0 {
		cellSize = 10
	}
	nx := int(math.Ceil(bounds.Width()/cellSize)) + 1
	ny := int(math.Ceil(bounds.Height()/cellSize)) + 1
	if nx < 2 {
		nx = 2
	}
	if ny < 2 {
		ny = 2
	}
	f := &Field{bounds: bounds, cellSize: cellSize, nx: nx, ny: ny}
	f.grid = make([]Tensor, nx*ny)
	for j := 0; j < ny; j++ {
		y := bounds.YMin + float64(j)*cellSize
		for i := 0; i < nx; i++ {
			x := bounds.XMin + float64(i)*cellSize
			p := model.Point{X: x, Y: y}
			var sum Tensor
			for _, b := range bases {
				sum = sum.Add(b.Contribution(p))
			}
			f.grid[j*nx+i] = sum
		}
	}
	return f
}

// NodeValue returns the exact grid value at node (i,j), used by the
// round-trip test (spec.md §8: "tensor field sampled at grid centers
// equals the stored grid values").
func (f *Field) NodeValue(i, j int) Tensor {
	return f.grid[j*f.nx+i]
}

// Dims returns the grid's node counts (nx, ny).
func (f *Field) Dims() (int, int) { return f.nx, f.ny }

// Sample bilinearly interpolates the field at an arbitrary point p. Points
// outside the grid are clamped to the nearest edge.
func (f *Field) Sample(p model.Point) Tensor {
	fx := (p.X - f.bounds.XMin) / f.cellSize
	fy := (p.Y - f.bounds.YMin) / f.cellSize

	i0 := int(math.Floor(fx))
	j0 := int(math.Floor(fy))
	i0 = clampInt(i0, 0, f.nx-2)
	j0 = clampInt(j0, 0, f.ny-2)
	i1, j1 := i0+1, j0+1

	tx := clamp01(fx - float64(i0))
	ty := clamp01(fy - float64(j0))

	v00 := f.grid[j0*f.nx+i0]
	v10 := f.grid[j0*f.nx+i1]
	v01 := f.grid[j1*f.nx+i0]
	v11 := f.grid[j1*f.nx+i1]

	top := lerp(v00, v10, tx)
	bottom := lerp(v01, v11, tx)
	return lerp(top, bottom, ty)
}

func lerp(a, b Tensor, t float64) Tensor {
	return Tensor{
		Txx: a.Txx + (b.Txx-a.Txx)*t,
		Tyy: a.Tyy + (b.Tyy-a.Tyy)*t,
		Txy: a.Txy + (b.Txy-a.Txy)*t,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
