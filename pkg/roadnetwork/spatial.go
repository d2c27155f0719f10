package roadnetwork

import (
	"math"

	"github.com/dshills/hsaga/pkg/model"
)

// segment is a single edge of a traced or simplified polyline.
type segment struct {
	a, b model.Point
}

func distPointSegment(p, a, b model.Point) float64 {
	vx, vy := b.X-a.X, b.Y-a.Y
	wx, wy := p.X-a.X, p.Y-a.Y
	l2 := vx*vx + vy*vy
	if l2 < 1e-12 {
		return p.Dist(a)
	}
	t := (wx*vx + wy*vy) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := model.Point{X: a.X + t*vx, Y: a.Y + t*vy}
	return p.Dist(proj)
}

func nearestPointOnSegment(p, a, b model.Point) (model.Point, float64) {
	vx, vy := b.X-a.X, b.Y-a.Y
	wx, wy := p.X-a.X, p.Y-a.Y
	l2 := vx*vx + vy*vy
	if l2 < 1e-12 {
		return a, p.Dist(a)
	}
	t := (wx*vx + wy*vy) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := model.Point{X: a.X + t*vx, Y: a.Y + t*vy}
	return proj, p.Dist(proj)
}

// gridCell is the coordinate of a uniform bucket in the spatial index.
type gridCell struct{ i, j int }

// SpatialIndex is a uniform-grid bucket index over road segments, used both
// as the streamline package's ProximityIndex during tracing and for
// endpoint snapping once a road is finished. Bucket size is chosen close to
// the tracer's default proximity radius so a query only ever touches the
// querying cell and its eight neighbors.
type SpatialIndex struct {
	cellSize float64
	buckets  map[gridCell][]segment
}

// NewSpatialIndex creates an empty index with the given bucket size.
func NewSpatialIndex(cellSize float64) *SpatialIndex {
	if cellSize <= 0 {
		cellSize = 10
	}
	return &SpatialIndex{cellSize: cellSize, buckets: make(map[gridCell][]segment)}
}

func (idx *SpatialIndex) cellOf(p model.Point) gridCell {
	return gridCell{
		i: int(math.Floor(p.X / idx.cellSize)),
		j: int(math.Floor(p.Y / idx.cellSize)),
	}
}

// AddPolyline registers every segment of a finished road so later traces
// and snap queries can see it. Each segment is stored in every cell its
// bounding box covers, so a segment longer than one cell is still found
// from any cell along it.
func (idx *SpatialIndex) AddPolyline(points []model.Point) {
	for i := 0; i+1 < len(points); i++ {
		seg := segment{a: points[i], b: points[i+1]}
		ca, cb := idx.cellOf(seg.a), idx.cellOf(seg.b)
		for ci := min(ca.i, cb.i); ci <= max(ca.i, cb.i); ci++ {
			for cj := min(ca.j, cb.j); cj <= max(ca.j, cb.j); cj++ {
				cell := gridCell{i: ci, j: cj}
				idx.buckets[cell] = append(idx.buckets[cell], seg)
			}
		}
	}
}

// NearestDistance implements streamline.ProximityIndex: the minimum
// distance from p to any previously registered segment, searching the
// query point's cell and its immediate neighbors.
func (idx *SpatialIndex) NearestDistance(p model.Point) (float64, bool) {
	center := idx.cellOf(p)
	best := math.Inf(1)
	found := false
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			cell := gridCell{i: center.i + di, j: center.j + dj}
			for _, seg := range idx.buckets[cell] {
				d := distPointSegment(p, seg.a, seg.b)
				if d < best {
					best = d
					found = true
				}
			}
		}
	}
	return best, found
}

// NearestPoint returns the closest point lying on any registered segment
// within searchRadius of p, used to snap a minor road's endpoint onto a
// major road.
func (idx *SpatialIndex) NearestPoint(p model.Point, searchRadius float64) (model.Point, bool) {
	center := idx.cellOf(p)
	span := int(math.Ceil(searchRadius/idx.cellSize)) + 1
	best := math.Inf(1)
	var bestPoint model.Point
	found := false
	for di := -span; di <= span; di++ {
		for dj := -span; dj <= span; dj++ {
			cell := gridCell{i: center.i + di, j: center.j + dj}
			for _, seg := range idx.buckets[cell] {
				proj, d := nearestPointOnSegment(p, seg.a, seg.b)
				if d < best {
					best = d
					bestPoint = proj
					found = true
				}
			}
		}
	}
	if !found || best > searchRadius {
		return model.Point{}, false
	}
	return bestPoint, true
}
