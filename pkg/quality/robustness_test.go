package quality

import (
	"context"
	"testing"

	"github.com/dshills/hsaga/pkg/evaluator"
	"github.com/dshills/hsaga/pkg/hsrand"
	"github.com/dshills/hsaga/pkg/model"
)

// distanceFromOriginEvaluator rewards solutions whose positions stay close
// to their starting point, so larger perturbations deterministically lower
// fitness -- useful for exercising the sensitivity/stability-radius math
// without a real campus evaluator.
func distanceFromOriginEvaluator(baseline *model.Solution) evaluator.Evaluator {
	return evaluator.Func(func(_ context.Context, sol *model.Solution, _ *model.Site) (evaluator.FitnessResult, error) {
		drift := 0.0
		for id, p := range sol.Positions {
			base, ok := baseline.Positions[id]
			if !ok {
				continue
			}
			drift += p.Dist(base)
		}
		return evaluator.FitnessResult{Fitness: 100 - drift}, nil
	})
}

func TestAnalyzeReportsSensitivityAndGrade(t *testing.T) {
	baseline := model.NewSolution()
	baseline.Positions["a"] = model.Point{X: 50, Y: 50}
	baseline.Positions["b"] = model.Point{X: 100, Y: 100}

	eval := distanceFromOriginEvaluator(baseline)
	rng := hsrand.New(1, "robustness-test", nil)
	analyzer := &Analyzer{Eval: eval, RNG: rng, Config: RobustnessConfig{
		NSamples: 20, PositionSigmaBase: 10, BisectionSteps: 5, BisectionSamples: 5,
	}}

	report, err := analyzer.Analyze(context.Background(), baseline, &model.Site{}, 100)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if report.SensitivityScore <= 0 {
		t.Fatalf("expected positive sensitivity (perturbation lowers fitness), got %v", report.SensitivityScore)
	}
	if report.CI95Low > report.CI95High {
		t.Fatalf("CI95 low %v should not exceed high %v", report.CI95Low, report.CI95High)
	}
	if report.StabilityRadius < 0 || report.StabilityRadius > 1 {
		t.Fatalf("stability radius must be in [0,1], got %v", report.StabilityRadius)
	}
	if report.Grade == "" {
		t.Fatal("expected a non-empty grade")
	}
}

func TestAnalyzeStrengthScalesSensitivity(t *testing.T) {
	baseline := model.NewSolution()
	baseline.Positions["a"] = model.Point{X: 50, Y: 50}
	baseline.Positions["b"] = model.Point{X: 100, Y: 100}

	eval := distanceFromOriginEvaluator(baseline)

	weak := &Analyzer{Eval: eval, RNG: hsrand.New(7, "robustness-weak", nil), Config: RobustnessConfig{
		NSamples: 200, PositionSigmaBase: 10, Strength: 0.05, BisectionSteps: 5, BisectionSamples: 5,
	}}
	strong := &Analyzer{Eval: eval, RNG: hsrand.New(7, "robustness-strong", nil), Config: RobustnessConfig{
		NSamples: 200, PositionSigmaBase: 10, Strength: 1.0, BisectionSteps: 5, BisectionSamples: 5,
	}}

	weakReport, err := weak.Analyze(context.Background(), baseline, &model.Site{}, 100)
	if err != nil {
		t.Fatalf("Analyze (weak): %v", err)
	}
	strongReport, err := strong.Analyze(context.Background(), baseline, &model.Site{}, 100)
	if err != nil {
		t.Fatalf("Analyze (strong): %v", err)
	}

	if weakReport.SensitivityScore >= strongReport.SensitivityScore {
		t.Fatalf("expected strength=0.05 to produce lower sensitivity than strength=1.0, got weak=%v strong=%v",
			weakReport.SensitivityScore, strongReport.SensitivityScore)
	}
	if weakReport.Grade != Excellent {
		t.Fatalf("expected strength=0.05 to grade EXCELLENT per spec.md Scenario D, got %v (score %v)", weakReport.Grade, weakReport.SensitivityScore)
	}
}

func TestAnalyzeDefaultsStrengthToOne(t *testing.T) {
	baseline := model.NewSolution()
	baseline.Positions["a"] = model.Point{X: 50, Y: 50}
	eval := distanceFromOriginEvaluator(baseline)

	explicit := &Analyzer{Eval: eval, RNG: hsrand.New(3, "robustness-explicit", nil), Config: RobustnessConfig{
		NSamples: 50, PositionSigmaBase: 10, Strength: 1.0,
	}}
	implicit := &Analyzer{Eval: eval, RNG: hsrand.New(3, "robustness-explicit", nil), Config: RobustnessConfig{
		NSamples: 50, PositionSigmaBase: 10,
	}}

	explicitReport, err := explicit.Analyze(context.Background(), baseline, &model.Site{}, 100)
	if err != nil {
		t.Fatalf("Analyze (explicit): %v", err)
	}
	implicitReport, err := implicit.Analyze(context.Background(), baseline, &model.Site{}, 100)
	if err != nil {
		t.Fatalf("Analyze (implicit): %v", err)
	}
	if explicitReport.SensitivityScore != implicitReport.SensitivityScore {
		t.Fatalf("expected an unset Strength to default to 1.0, got explicit=%v implicit=%v",
			explicitReport.SensitivityScore, implicitReport.SensitivityScore)
	}
}

func TestGradeForThresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  Grade
	}{
		{0.01, Excellent},
		{0.10, Good},
		{0.20, Fair},
		{0.50, Poor},
	}
	for _, c := range cases {
		if got := GradeFor(c.score); got != c.want {
			t.Errorf("GradeFor(%v) = %v, want %v", c.score, got, c.want)
		}
	}
}
