package tensorfield

import (
	"math"

	"github.com/dshills/hsaga/pkg/model"
)

// DefaultImportance is the per-type importance table used to scale each
// building's radial-basis weight (spec.md §9 Open Question 2: the exact
// weighting rule is product-tunable; this spec fixes the Gaussian-decay
// shape and treats the table itself as configuration).
var DefaultImportance = map[model.BuildingType]float64{
	model.Administrative: 1.0,
	model.Library:        0.9,
	model.Educational:    0.85,
	model.Research:       0.8,
	model.Health:         0.8,
	model.Social:         0.7,
	model.Dining:         0.65,
	model.Sports:         0.6,
	model.Commercial:     0.55,
	model.Residential:    0.5,
}

// CampusConfig tunes the campus field assembly weights from spec.md §4.8.
type CampusConfig struct {
	GridCellSize      float64
	BackgroundWeight  float64 // default 0.3
	BackgroundRadius  float64 // default: half the site's longer dimension
	GatewayWeight     float64 // default 0.5
	GatewayRadius     float64 // default: large, e.g. site diagonal
	BuildingBaseRadius float64 // multiplier on sqrt(area) for radial basis radius
	Importance        map[model.BuildingType]float64
}

// DefaultCampusConfig returns the spec's default weights.
func DefaultCampusConfig() CampusConfig {
	return CampusConfig{
		GridCellSize:       10,
		BackgroundWeight:   0.3,
		GatewayWeight:      0.5,
		BuildingBaseRadius: 1.5,
		Importance:         DefaultImportance,
	}
}

// AssembleCampus builds the composite campus tensor field: a background
// grid basis aligned with the site's dominant (longest-edge) orientation,
// a radial basis at each placed building's centroid, and a grid basis per
// gateway oriented along its bearing (spec.md §4.8).
func AssembleCampus(site *model.Site, buildings []*model.Building, solution *model.Solution, cfg CampusConfig) *Field {
	if cfg.Importance == nil {
		cfg.Importance = DefaultImportance
	}
	diag := math.Hypot(site.Bounds.Width(), site.Bounds.Height())
	bgRadius := cfg.BackgroundRadius
	if bgRadius == 0 {
		bgRadius = math.Max(site.Bounds.Width(), site.Bounds.Height()) / 2
	}
	gwRadius := cfg.GatewayRadius
	if gwRadius == 0 {
		gwRadius = diag
	}

	var bases []Basis
	center := model.Point{
		X: (site.Bounds.XMin + site.Bounds.XMax) / 2,
		Y: (site.Bounds.YMin + site.Bounds.YMax) / 2,
	}
	bases = append(bases, GridBasis{
		Center:      center,
		Angle:       site.Bounds.LongestEdgeAngle(),
		Radius:      bgRadius,
		Weight:      cfg.BackgroundWeight,
		LambdaMajor: 1.0,
		LambdaMinor: 0.2,
	})

	for _, b := range buildings {
		pos, ok := positionOf(solution, b.ID)
		if !ok {
			continue
		}
		importance := cfg.Importance[b.Type]
		if importance == 0 {
			importance = 0.5
		}
		bases = append(bases, RadialBasis{
			Center: pos,
			Radius: cfg.BuildingBaseRadius * math.Sqrt(math.Max(b.Footprint(), 1)),
			Weight: importance,
		})
	}

	for _, gw := range site.Gateways {
		bases = append(bases, GridBasis{
			Center:      gw.Position,
			Angle:       gw.Bearing,
			Radius:      gwRadius,
			Weight:      cfg.GatewayWeight,
			LambdaMajor: 1.0,
			LambdaMinor: 0.1,
		})
	}

	return Build(site.Bounds, cfg.GridCellSize, bases)
}

func positionOf(sol *model.Solution, id string) (model.Point, bool) {
	if sol == nil {
		return model.Point{}, false
	}
	p, ok := sol.Positions[id]
	return p, ok
}
