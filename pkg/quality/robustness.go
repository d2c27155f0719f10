package quality

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/dshills/hsaga/pkg/evaluator"
	"github.com/dshills/hsaga/pkg/hsrand"
	"github.com/dshills/hsaga/pkg/model"
)

// Grade buckets a stability_radius-independent sensitivity reading into the
// four bands named in spec.md §4.11.
type Grade string

const (
	Excellent Grade = "EXCELLENT"
	Good      Grade = "GOOD"
	Fair      Grade = "FAIR"
	Poor      Grade = "POOR"
)

// GradeFor buckets sensitivityScore per spec.md §4.11's thresholds.
func GradeFor(sensitivityScore float64) Grade {
	s := math.Abs(sensitivityScore)
	switch {
	case s < 0.05:
		return Excellent
	case s < 0.15:
		return Good
	case s < 0.30:
		return Fair
	default:
		return Poor
	}
}

// RobustnessConfig tunes the Monte-Carlo perturbation sweep (spec.md §4.11
// defaults).
type RobustnessConfig struct {
	NSamples          int     // default 100
	PositionSigmaBase float64 // meters per unit strength, default 10
	Strength          float64 // main sweep perturbation strength, default 1.0 (spec.md §4.11: sigma = strength*PositionSigmaBase)
	BisectionSteps    int     // default 10
	BisectionSamples  int     // samples per bisection probe, default 10
}

// DefaultRobustnessConfig returns the spec defaults.
func DefaultRobustnessConfig() RobustnessConfig {
	return RobustnessConfig{NSamples: 100, PositionSigmaBase: 10, Strength: 1.0, BisectionSteps: 10, BisectionSamples: 10}
}

// RobustnessReport is the output of one robustness analysis run.
type RobustnessReport struct {
	SensitivityScore       float64
	CI95Low, CI95High      float64
	WorstCaseFitness       float64
	CoefficientOfVariation float64
	StabilityRadius        float64
	Grade                  Grade
}

// Analyzer runs Monte-Carlo perturbation testing against an Evaluator
// (spec.md §4.11). Buildings carry no orientation in this data model, so
// only positional Gaussian noise is applied; the spec's rotation term is
// optional and has no field to perturb here.
type Analyzer struct {
	Eval   evaluator.Evaluator
	RNG    *hsrand.RNG
	Config RobustnessConfig
}

// NewAnalyzer builds an Analyzer with the default config.
func NewAnalyzer(eval evaluator.Evaluator, rng *hsrand.RNG) *Analyzer {
	return &Analyzer{Eval: eval, RNG: rng, Config: DefaultRobustnessConfig()}
}

func perturb(sol *model.Solution, sigma float64, rng *hsrand.RNG) *model.Solution {
	out := sol.Clone()
	for id, p := range out.Positions {
		out.Positions[id] = model.Point{
			X: p.X + rng.NormFloat64()*sigma,
			Y: p.Y + rng.NormFloat64()*sigma,
		}
	}
	return out
}

func (a *Analyzer) sample(ctx context.Context, sol *model.Solution, site *model.Site, sigma float64, n int) ([]float64, error) {
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		cand := perturb(sol, sigma, a.RNG)
		res, err := a.Eval.Evaluate(ctx, cand, site)
		if err != nil {
			return nil, fmt.Errorf("quality: robustness sample %d: %w", i, err)
		}
		out = append(out, res.Fitness)
	}
	return out, nil
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := p * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}

func stddevOf(xs []float64, mean float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range xs {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// Analyze perturbs baseline at cfg.Strength (sigma = strength*PositionSigmaBase,
// spec.md §4.11) for the main Monte-Carlo sweep, then separately bisects over
// strength in [0,1] to find the stability radius.
func (a *Analyzer) Analyze(ctx context.Context, baseline *model.Solution, site *model.Site, baselineFitness float64) (*RobustnessReport, error) {
	cfg := a.Config
	if cfg.NSamples <= 0 {
		cfg = DefaultRobustnessConfig()
	}
	if cfg.Strength <= 0 {
		cfg.Strength = 1.0
	}

	samples, err := a.sample(ctx, baseline, site, cfg.Strength*cfg.PositionSigmaBase, cfg.NSamples)
	if err != nil {
		return nil, err
	}

	sensitivity := 0.0
	if baselineFitness != 0 {
		for _, f := range samples {
			sensitivity += (baselineFitness - f) / math.Abs(baselineFitness)
		}
		sensitivity /= float64(len(samples))
	}

	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	mean := meanOf(samples)
	sd := stddevOf(samples, mean)
	cv := 0.0
	if mean != 0 {
		cv = sd / mean
	}

	radius, err := a.stabilityRadius(ctx, baseline, site, baselineFitness, cfg)
	if err != nil {
		return nil, err
	}

	return &RobustnessReport{
		SensitivityScore:       sensitivity,
		CI95Low:                percentile(sorted, 0.025),
		CI95High:               percentile(sorted, 0.975),
		WorstCaseFitness:       sorted[0],
		CoefficientOfVariation: cv,
		StabilityRadius:        radius,
		Grade:                  GradeFor(sensitivity),
	}, nil
}

// stabilityRadius binary-searches for the largest strength in [0,1] whose
// mean perturbed fitness stays >= 0.5*baselineFitness, over BisectionSteps
// iterations (spec.md §4.11).
func (a *Analyzer) stabilityRadius(ctx context.Context, baseline *model.Solution, site *model.Site, baselineFitness float64, cfg RobustnessConfig) (float64, error) {
	threshold := 0.5 * baselineFitness
	lo, hi := 0.0, 1.0
	for i := 0; i < cfg.BisectionSteps; i++ {
		mid := (lo + hi) / 2
		samples, err := a.sample(ctx, baseline, site, mid*cfg.PositionSigmaBase, cfg.BisectionSamples)
		if err != nil {
			return 0, err
		}
		if meanOf(samples) >= threshold {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo, nil
}
