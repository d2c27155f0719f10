package roadnetwork

import "github.com/dshills/hsaga/pkg/model"

// Simplify runs Ramer-Douglas-Peucker on points with tolerance epsilon
// (spec.md §4.10 step 4, default epsilon 2 m). Endpoints are always kept.
func Simplify(points []model.Point, epsilon float64) []model.Point {
	if len(points) < 3 {
		return points
	}
	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true
	rdp(points, 0, len(points)-1, epsilon, keep)

	out := make([]model.Point, 0, len(points))
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

func rdp(points []model.Point, lo, hi int, epsilon float64, keep []bool) {
	if hi <= lo+1 {
		return
	}
	maxDist := -1.0
	split := lo
	for i := lo + 1; i < hi; i++ {
		d := distPointSegment(points[i], points[lo], points[hi])
		if d > maxDist {
			maxDist = d
			split = i
		}
	}
	if maxDist <= epsilon {
		return
	}
	keep[split] = true
	rdp(points, lo, split, epsilon, keep)
	rdp(points, split, hi, epsilon, keep)
}
