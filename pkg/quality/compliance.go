package quality

import (
	"fmt"
	"math"
	"sort"

	"github.com/dshills/hsaga/pkg/model"
)

// Status is the overall compliance verdict for a checked solution.
type Status string

const (
	FullyCompliant       Status = "FULLY_COMPLIANT"
	NonCompliantLow      Status = "NON_COMPLIANT_LOW"
	NonCompliantHigh     Status = "NON_COMPLIANT_HIGH"
	NonCompliantCritical Status = "NON_COMPLIANT_CRITICAL"
)

// ComplianceConfig holds the thresholds for every rule in spec.md §4.11's
// minimum rule set, with the spec's stated defaults.
type ComplianceConfig struct {
	MinDistance        float64 // default 30 m
	FireSeparationBase float64 // default 6 m (rule also applies max_height/2)
	BoundaryMargin     float64 // default 5 m
	CoverageMax        float64 // default 0.3
	FARMax             float64 // default 1.5
	GreenSpaceMin      float64 // default 0.3
	MaxHeight          float64 // default 30 m
	SetbackFront       float64 // default 5 m
	SetbackSide        float64 // default 3 m
	GatewayEdgeMargin  float64 // tolerance for deciding a boundary edge is gateway-facing, default 1 m
}

// DefaultComplianceConfig returns the spec's minimum rule set defaults.
func DefaultComplianceConfig() ComplianceConfig {
	return ComplianceConfig{
		MinDistance: 30, FireSeparationBase: 6, BoundaryMargin: 5,
		CoverageMax: 0.3, FARMax: 1.5, GreenSpaceMin: 0.3,
		MaxHeight: 30, SetbackFront: 5, SetbackSide: 3, GatewayEdgeMargin: 1,
	}
}

// ComplianceReport is the ComplianceChecker's output (spec.md §4.11).
type ComplianceReport struct {
	Status         Status
	SeverityCounts map[string]int
	Violations     []model.ConstraintViolation
}

// translationTR is a tiny bilingual phrase table for the checker's
// explanations; the regulatory text a real deployment cites would replace
// this with localized rule copy supplied by the embedding application.
var translationTR = map[string]string{
	"min_distance":      "İki bina arasındaki mesafe asgari gereklilikten az.",
	"fire_separation":   "Yangın güvenliği için bina arası mesafe yetersiz.",
	"site_boundary":     "Bina, arsa sınırı içine yerleştirilmemiş.",
	"gateway_clearance": "Bina, giriş noktasının açıklık yarıçapı içinde.",
	"coverage_ratio":    "Toplam taban alanı izin verilen kapsama oranını aşıyor.",
	"far":               "Toplam inşaat alanı oranı (FAR) sınırı aşıyor.",
	"green_space":       "Yeşil alan oranı asgari gerekliliğin altında.",
	"building_height":   "Bina yüksekliği izin verilen azami değeri aşıyor.",
	"setbacks":          "Bina, sınır çekme mesafesi gerekliliğini karşılamıyor.",
}

func violation(ruleID string, severity model.Severity, ids []string, measured, required float64, unit, explanation string) model.ConstraintViolation {
	return model.ConstraintViolation{
		RuleID:        ruleID,
		Severity:      severity,
		BuildingIDs:   ids,
		Measured:      measured,
		Required:      required,
		Unit:          unit,
		Explanation:   explanation,
		ExplanationTR: translationTR[ruleID],
	}
}

// Check runs every rule in the minimum set against the placed buildings and
// returns the aggregated report, violations sorted critical-first.
func Check(site *model.Site, buildings []*model.Building, sol *model.Solution, cfg ComplianceConfig) ComplianceReport {
	var violations []model.ConstraintViolation

	violations = append(violations, checkPairwise(site, buildings, sol, cfg)...)
	violations = append(violations, checkSiteBoundary(site, buildings, sol, cfg)...)
	violations = append(violations, checkGatewayClearance(site, buildings, sol)...)
	violations = append(violations, checkAreaRules(site, buildings, cfg)...)
	violations = append(violations, checkHeights(buildings, cfg)...)
	violations = append(violations, checkSetbacks(site, buildings, sol, cfg)...)

	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].Severity > violations[j].Severity
	})

	counts := map[string]int{}
	worst := model.SeverityInfo
	for _, v := range violations {
		counts[v.Severity.String()]++
		if v.Severity > worst {
			worst = v.Severity
		}
	}

	status := FullyCompliant
	if len(violations) > 0 {
		switch {
		case worst >= model.SeverityCritical:
			status = NonCompliantCritical
		case worst >= model.SeverityHigh:
			status = NonCompliantHigh
		default:
			status = NonCompliantLow
		}
	}

	return ComplianceReport{Status: status, SeverityCounts: counts, Violations: violations}
}

func checkPairwise(site *model.Site, buildings []*model.Building, sol *model.Solution, cfg ComplianceConfig) []model.ConstraintViolation {
	var out []model.ConstraintViolation
	for i := 0; i < len(buildings); i++ {
		pi, ok := sol.Positions[buildings[i].ID]
		if !ok {
			continue
		}
		for j := i + 1; j < len(buildings); j++ {
			pj, ok := sol.Positions[buildings[j].ID]
			if !ok {
				continue
			}
			d := pi.Dist(pj)
			ids := []string{buildings[i].ID, buildings[j].ID}

			if d < cfg.MinDistance {
				out = append(out, violation("min_distance", model.SeverityHigh, ids, d, cfg.MinDistance, "m",
					fmt.Sprintf("Buildings %s and %s are %.1fm apart, below the %.1fm minimum separation.", ids[0], ids[1], d, cfg.MinDistance)))
			}

			maxHeight := math.Max(buildings[i].Height(), buildings[j].Height())
			required := math.Max(cfg.FireSeparationBase, maxHeight/2)
			if d < required {
				out = append(out, violation("fire_separation", model.SeverityCritical, ids, d, required, "m",
					fmt.Sprintf("Buildings %s and %s are %.1fm apart, below the %.1fm fire separation requirement.", ids[0], ids[1], d, required)))
			}
		}
	}
	return out
}

func checkSiteBoundary(site *model.Site, buildings []*model.Building, sol *model.Solution, cfg ComplianceConfig) []model.ConstraintViolation {
	var out []model.ConstraintViolation
	for _, b := range buildings {
		p, ok := sol.Positions[b.ID]
		if !ok {
			continue
		}
		if !site.Bounds.Contains(p, cfg.BoundaryMargin) {
			out = append(out, violation("site_boundary", model.SeverityCritical, []string{b.ID}, 0, cfg.BoundaryMargin, "m",
				fmt.Sprintf("Building %s is not placed within the site boundary inset by %.1fm.", b.ID, cfg.BoundaryMargin)))
		}
	}
	return out
}

func checkGatewayClearance(site *model.Site, buildings []*model.Building, sol *model.Solution) []model.ConstraintViolation {
	var out []model.ConstraintViolation
	for _, b := range buildings {
		p, ok := sol.Positions[b.ID]
		if !ok {
			continue
		}
		for _, gw := range site.Gateways {
			d := p.Dist(gw.Position)
			if d < gw.Clearance {
				out = append(out, violation("gateway_clearance", model.SeverityCritical, []string{b.ID}, d, gw.Clearance, "m",
					fmt.Sprintf("Building %s is %.1fm from a gateway, inside its %.1fm clearance radius.", b.ID, d, gw.Clearance)))
			}
		}
	}
	return out
}

func checkAreaRules(site *model.Site, buildings []*model.Building, cfg ComplianceConfig) []model.ConstraintViolation {
	area := site.Bounds.Area()
	if area <= 0 {
		return nil
	}
	var footprint, builtArea float64
	ids := make([]string, 0, len(buildings))
	for _, b := range buildings {
		footprint += b.Footprint()
		builtArea += float64(b.Floors) * b.Footprint()
		ids = append(ids, b.ID)
	}

	var out []model.ConstraintViolation
	coverage := footprint / area
	if coverage > cfg.CoverageMax {
		out = append(out, violation("coverage_ratio", model.SeverityMedium, ids, coverage, cfg.CoverageMax, "ratio",
			fmt.Sprintf("Total footprint coverage is %.2f, above the %.2f maximum.", coverage, cfg.CoverageMax)))
	}

	far := builtArea / area
	if far > cfg.FARMax {
		out = append(out, violation("far", model.SeverityMedium, ids, far, cfg.FARMax, "ratio",
			fmt.Sprintf("Floor area ratio is %.2f, above the %.2f maximum.", far, cfg.FARMax)))
	}

	green := (area - footprint) / area
	if green < cfg.GreenSpaceMin {
		out = append(out, violation("green_space", model.SeverityMedium, ids, green, cfg.GreenSpaceMin, "ratio",
			fmt.Sprintf("Green space ratio is %.2f, below the %.2f minimum.", green, cfg.GreenSpaceMin)))
	}
	return out
}

func checkHeights(buildings []*model.Building, cfg ComplianceConfig) []model.ConstraintViolation {
	var out []model.ConstraintViolation
	for _, b := range buildings {
		h := b.Height()
		if h > cfg.MaxHeight {
			out = append(out, violation("building_height", model.SeverityHigh, []string{b.ID}, h, cfg.MaxHeight, "m",
				fmt.Sprintf("Building %s is %.1fm tall, above the %.1fm maximum.", b.ID, h, cfg.MaxHeight)))
		}
	}
	return out
}

// edgeDistances returns the distance from p to each of the site's four
// bounding edges in the fixed order [left, right, bottom, top].
func edgeDistances(p model.Point, b model.Bounds) [4]float64 {
	return [4]float64{
		p.X - b.XMin,
		b.XMax - p.X,
		p.Y - b.YMin,
		b.YMax - p.Y,
	}
}

// isFrontEdge reports whether any gateway sits on the given edge (within
// GatewayEdgeMargin), treating that edge as the site's "front" for setback
// purposes; every other edge is a "side" edge.
func isFrontEdge(edge int, site *model.Site, margin float64) bool {
	for _, gw := range site.Gateways {
		d := edgeDistances(gw.Position, site.Bounds)
		if d[edge] <= margin {
			return true
		}
	}
	return false
}

func checkSetbacks(site *model.Site, buildings []*model.Building, sol *model.Solution, cfg ComplianceConfig) []model.ConstraintViolation {
	var out []model.ConstraintViolation
	for _, b := range buildings {
		p, ok := sol.Positions[b.ID]
		if !ok {
			continue
		}
		d := edgeDistances(p, site.Bounds)
		nearest, minDist := 0, d[0]
		for i := 1; i < 4; i++ {
			if d[i] < minDist {
				minDist, nearest = d[i], i
			}
		}
		required := cfg.SetbackSide
		if isFrontEdge(nearest, site, cfg.GatewayEdgeMargin) {
			required = cfg.SetbackFront
		}
		if minDist < required {
			out = append(out, violation("setbacks", model.SeverityHigh, []string{b.ID}, minDist, required, "m",
				fmt.Sprintf("Building %s is %.1fm from the site boundary, below the %.1fm setback requirement.", b.ID, minDist, required)))
		}
	}
	return out
}
