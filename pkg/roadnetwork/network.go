package roadnetwork

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"

	"github.com/dshills/hsaga/pkg/model"
	"github.com/dshills/hsaga/pkg/streamline"
	"github.com/dshills/hsaga/pkg/tensorfield"
)

// RoadType classifies a traced road by seeding priority (spec.md §4.10).
type RoadType string

const (
	Major RoadType = "major"
	Minor RoadType = "minor"
)

// Road is one simplified, traced polyline.
type Road struct {
	Type     RoadType     `json:"type"`
	Polyline []model.Point `json:"vertices"`
	Length   float64      `json:"length"`
}

// Stats summarizes the road network's connectivity (spec.md §4.10 step 5).
type Stats struct {
	MajorCount  int     `json:"major_count"`
	MinorCount  int     `json:"minor_count"`
	TotalLength float64 `json:"total_length"`
	Beta        float64 `json:"beta"`  // E/V
	Gamma       float64 `json:"gamma"` // E/(3(V-2))
	Alpha       float64 `json:"alpha"` // (E-V+P)/(2V-5), P = connected components
	Vertices    int     `json:"vertices"`
	Edges       int     `json:"edges"`
}

// Network is the finished road layout plus its connectivity statistics.
type Network struct {
	Roads []Road `json:"roads"`
	Stats Stats  `json:"stats"`
}

// Config tunes the builder (spec.md §4.9/§4.10 defaults).
type Config struct {
	Tracer        streamline.Config
	SnapRadius    float64 // default 8 m, shared with the tracer's proximity_radius
	RDPEpsilon    float64 // default 2 m
	IndexCellSize float64 // default 20 m
}

// DefaultConfig returns the builder defaults bound to field and site.
func DefaultConfig(field *tensorfield.Field, site *model.Site) Config {
	return Config{
		Tracer:        streamline.DefaultConfig(field, site, nil),
		SnapRadius:    8,
		RDPEpsilon:    2,
		IndexCellSize: 20,
	}
}

// Build seeds streamlines from every gateway (major roads, traced first so
// their basis contribution shapes the field for everything after) and from
// every building centroid (minor roads, snapped onto a nearby major road
// when their free-traced endpoint lands within SnapRadius of one), then
// simplifies every polyline and computes Kansky connectivity indices over
// the resulting intersection graph.
func Build(site *model.Site, buildings []*model.Building, solution *model.Solution, cfg Config) (*Network, error) {
	index := NewSpatialIndex(cfg.IndexCellSize)
	cfg.Tracer.Index = index
	tracer := streamline.New(cfg.Tracer)

	var roads []Road
	var majorPolylines [][]model.Point

	for _, gw := range site.Gateways {
		dir := [2]float64{math.Cos(gw.Bearing), math.Sin(gw.Bearing)}
		res := tracer.TraceBidirectional(gw.Position, &dir)
		if len(res.Points) < 2 {
			continue
		}
		simplified := Simplify(res.Points, cfg.RDPEpsilon)
		index.AddPolyline(simplified)
		majorPolylines = append(majorPolylines, simplified)
		roads = append(roads, Road{Type: Major, Polyline: simplified, Length: res.Length})
	}

	for _, b := range buildings {
		pos, ok := solution.Positions[b.ID]
		if !ok {
			continue
		}
		res := tracer.TraceBidirectional(pos, nil)
		if len(res.Points) < 2 {
			continue
		}
		snapEndpoints(res.Points, majorPolylines, cfg.SnapRadius)
		simplified := Simplify(res.Points, cfg.RDPEpsilon)
		index.AddPolyline(simplified)
		roads = append(roads, Road{Type: Minor, Polyline: simplified, Length: res.Length})
	}

	stats, err := computeStats(roads)
	if err != nil {
		return nil, fmt.Errorf("roadnetwork: computing network stats: %w", err)
	}
	return &Network{Roads: roads, Stats: stats}, nil
}

// snapEndpoints moves either end of points that falls within radius of any
// major polyline onto the nearest point of that polyline.
func snapEndpoints(points []model.Point, majors [][]model.Point, radius float64) {
	if len(points) == 0 || len(majors) == 0 {
		return
	}
	snap := func(i int) {
		best := math.Inf(1)
		var bestPoint model.Point
		found := false
		for _, poly := range majors {
			for j := 0; j+1 < len(poly); j++ {
				proj, d := nearestPointOnSegment(points[i], poly[j], poly[j+1])
				if d < best {
					best, bestPoint, found = d, proj, true
				}
			}
		}
		if found && best <= radius {
			points[i] = bestPoint
		}
	}
	snap(0)
	snap(len(points) - 1)
}

func vertexKey(p model.Point) string {
	const quantum = 0.5
	return fmt.Sprintf("%d,%d", int64(math.Round(p.X/quantum)), int64(math.Round(p.Y/quantum)))
}

// computeStats builds the road intersection graph with lvlath/core (every
// distinct polyline vertex is a graph vertex, every consecutive pair an
// edge) and derives the Kansky indices. Connectivity (for the alpha index's
// component count P) is established with lvlath/bfs rather than hand-rolled
// union-find, since an unweighted BFS already answers "how many components"
// one run per unvisited vertex.
func computeStats(roads []Road) (Stats, error) {
	g := core.NewGraph(core.WithMultiEdges())

	var major, minor int
	var total float64
	for _, r := range roads {
		if r.Type == Major {
			major++
		} else {
			minor++
		}
		total += r.Length
		for i, p := range r.Polyline {
			id := vertexKey(p)
			if !g.HasVertex(id) {
				if err := g.AddVertex(id); err != nil {
					return Stats{}, fmt.Errorf("adding vertex %s: %w", id, err)
				}
			}
			if i > 0 {
				from := vertexKey(r.Polyline[i-1])
				if !g.HasEdge(from, id) {
					if _, err := g.AddEdge(from, id, 0); err != nil {
						return Stats{}, fmt.Errorf("adding edge %s->%s: %w", from, id, err)
					}
				}
			}
		}
	}

	v := g.VertexCount()
	e := g.EdgeCount()

	components, err := countComponents(g)
	if err != nil {
		return Stats{}, err
	}

	s := Stats{
		MajorCount:  major,
		MinorCount:  minor,
		TotalLength: total,
		Vertices:    v,
		Edges:       e,
	}
	if v > 0 {
		s.Beta = float64(e) / float64(v)
	}
	if v > 2 {
		s.Gamma = float64(e) / (3 * float64(v-2))
	}
	if v > 2 {
		s.Alpha = (float64(e) - float64(v) + float64(components)) / (2*float64(v) - 5)
	}
	return s, nil
}

func countComponents(g *core.Graph) (int, error) {
	visited := make(map[string]bool)
	components := 0
	for _, id := range g.Vertices() {
		if visited[id] {
			continue
		}
		components++
		res, err := bfs.BFS(g, id)
		if err != nil {
			return 0, fmt.Errorf("bfs from %s: %w", id, err)
		}
		for _, v := range res.Order {
			visited[v] = true
		}
		visited[id] = true
	}
	return components, nil
}
