package quality

import (
	"testing"

	"github.com/dshills/hsaga/pkg/model"
)

func testSiteForCompliance() *model.Site {
	return &model.Site{
		Bounds: model.Bounds{XMin: 0, YMin: 0, XMax: 200, YMax: 200},
		Gateways: []model.Gateway{
			{Position: model.Point{X: 0, Y: 100}, Bearing: 0, Clearance: 10},
		},
	}
}

func TestCheckFullyCompliant(t *testing.T) {
	site := testSiteForCompliance()
	buildings := []*model.Building{
		{ID: "a", Type: model.Educational, Area: 1000, Floors: 2},
		{ID: "b", Type: model.Residential, Area: 1000, Floors: 2},
	}
	sol := model.NewSolution()
	sol.Positions["a"] = model.Point{X: 50, Y: 50}
	sol.Positions["b"] = model.Point{X: 150, Y: 150}

	report := Check(site, buildings, sol, DefaultComplianceConfig())
	if report.Status != FullyCompliant {
		t.Fatalf("expected fully compliant, got %v with violations %+v", report.Status, report.Violations)
	}
}

func TestCheckDetectsMinDistanceViolation(t *testing.T) {
	site := testSiteForCompliance()
	buildings := []*model.Building{
		{ID: "a", Type: model.Educational, Area: 500, Floors: 2},
		{ID: "b", Type: model.Residential, Area: 500, Floors: 2},
	}
	sol := model.NewSolution()
	sol.Positions["a"] = model.Point{X: 100, Y: 100}
	sol.Positions["b"] = model.Point{X: 105, Y: 100}

	report := Check(site, buildings, sol, DefaultComplianceConfig())
	found := false
	for _, v := range report.Violations {
		if v.RuleID == "min_distance" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a min_distance violation for two buildings 5m apart")
	}
	if report.Status == FullyCompliant {
		t.Fatal("expected a non-compliant status")
	}
}

func TestCheckDetectsGatewayClearanceViolation(t *testing.T) {
	site := testSiteForCompliance()
	buildings := []*model.Building{
		{ID: "a", Type: model.Educational, Area: 500, Floors: 2},
	}
	sol := model.NewSolution()
	sol.Positions["a"] = model.Point{X: 2, Y: 100}

	report := Check(site, buildings, sol, DefaultComplianceConfig())
	if report.Status != NonCompliantCritical {
		t.Fatalf("gateway clearance violations are critical, got status %v", report.Status)
	}
}

func TestCheckDetectsCoverageAndFAR(t *testing.T) {
	site := &model.Site{Bounds: model.Bounds{XMin: 0, YMin: 0, XMax: 50, YMax: 50}}
	buildings := []*model.Building{
		{ID: "a", Type: model.Commercial, Area: 4000, Floors: 2},
	}
	sol := model.NewSolution()
	sol.Positions["a"] = model.Point{X: 25, Y: 25}

	report := Check(site, buildings, sol, DefaultComplianceConfig())
	rules := map[string]bool{}
	for _, v := range report.Violations {
		rules[v.RuleID] = true
	}
	if !rules["coverage_ratio"] {
		t.Error("expected a coverage_ratio violation")
	}
	if !rules["far"] {
		t.Error("expected a far violation")
	}
	if !rules["green_space"] {
		t.Error("expected a green_space violation")
	}
}

func TestBilingualExplanationPresent(t *testing.T) {
	site := testSiteForCompliance()
	buildings := []*model.Building{{ID: "a", Type: model.Educational, Area: 500, Floors: 2}}
	sol := model.NewSolution()
	sol.Positions["a"] = model.Point{X: 2, Y: 100}

	report := Check(site, buildings, sol, DefaultComplianceConfig())
	for _, v := range report.Violations {
		if v.ExplanationTR == "" {
			t.Fatalf("rule %s is missing a Turkish explanation", v.RuleID)
		}
	}
}
