package orchestrator

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/hsaga/internal/obslog"
	"github.com/dshills/hsaga/internal/obsmetrics"
	"github.com/dshills/hsaga/pkg/ga"
	"github.com/dshills/hsaga/pkg/hsrand"
	"github.com/dshills/hsaga/pkg/model"
	"github.com/dshills/hsaga/pkg/quality"
	"github.com/dshills/hsaga/pkg/registry"
	"github.com/dshills/hsaga/pkg/roadnetwork"
	"github.com/dshills/hsaga/pkg/sa"
	"github.com/dshills/hsaga/pkg/tensorfield"
)

// HSAGAOrchestrator validates a ProblemSpec, runs SA then GA, assembles
// the road network and quality reports, and returns the finished
// ResultBundle (spec.md §4.7).
type HSAGAOrchestrator struct {
	Logger           *obslog.Logger
	Metrics          *obsmetrics.Registry
	Progress         *ProgressStream
	RunRobustness    bool
	RobustnessConfig quality.RobustnessConfig
}

// New builds an HSAGAOrchestrator with a no-op logger and a 64-slot
// progress stream.
func New() *HSAGAOrchestrator {
	return &HSAGAOrchestrator{
		Logger:   obslog.Nop(),
		Progress: NewProgressStream(64),
	}
}

func resolveSeed(seed *uint64) (uint64, error) {
	if seed != nil {
		return *seed, nil
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("orchestrator: failed to read system entropy for rng seed: %w", err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// configHash returns a stable fingerprint of the spec's tunable config so
// derived RNG substreams change whenever the configuration does, even at
// a fixed seed (hsrand.New's derivation formula).
func configHash(spec *ProblemSpec) []byte {
	b, err := json.Marshal(struct {
		SA sa.Config
		GA ga.Config
	}{SA: spec.SAConfig, GA: spec.GAConfig})
	if err != nil {
		return nil
	}
	return b
}

func pickBest(pop []*model.Solution) *model.Solution {
	var best *model.Solution
	for _, s := range pop {
		if best == nil || s.Fitness > best.Fitness {
			best = s
		}
	}
	return best
}

// Run validates spec, executes the SA exploration phase followed by the GA
// refinement phase, assembles the road network from the best solution, and
// runs the compliance checker (and, if enabled, the robustness analyzer)
// before returning the finished ResultBundle (spec.md §4.7).
func (o *HSAGAOrchestrator) Run(ctx context.Context, spec *ProblemSpec) (*ResultBundle, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	seed, err := resolveSeed(spec.RNGSeed)
	if err != nil {
		return nil, err
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if spec.WallClockBudgetMS > 0 {
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(spec.WallClockBudgetMS)*time.Millisecond)
		defer cancel()
	}

	hash := configHash(spec)
	masterRNG := hsrand.New(seed, "run", hash)

	var diagnostics []Diagnostic

	saStart := time.Now()
	explorer := sa.New(spec.Buildings, spec.Site, spec.Eval, masterRNG.Child("sa"), spec.SAConfig)
	explorer.Logger = o.Logger.With("sa")
	explorer.Metrics = o.Metrics
	if o.Progress != nil {
		explorer.Progress = func(ev sa.ProgressEvent) {
			o.Progress.Publish(ProgressEvent{
				Iteration:   ev.Iteration,
				Phase:       PhaseSA,
				BestFitness: ev.BestFitness,
				Diversity:   ev.Diversity,
				OperatorMix: ev.OperatorMix,
			})
		}
	}
	saResult, err := explorer.Run(runCtx, 0)
	if err != nil {
		return nil, &EvaluatorError{Phase: "sa", Err: err}
	}
	saElapsed := time.Since(saStart)

	for _, tr := range saResult.Traces {
		if tr.Stalled {
			diagnostics = append(diagnostics, diagnosticFor(&EvaluatorError{Phase: "sa", Fingerprint: fmt.Sprintf("chain-%d", tr.ChainID), Err: errors.New("evaluator failed twice in a row")}, "sa"))
		}
	}
	if len(saResult.Top) == 0 {
		return nil, &NumericalFailureError{Phase: "sa", Detail: "every SA chain stalled; no valid solutions to refine"}
	}

	gaStart := time.Now()
	refiner := ga.New(spec.Buildings, spec.Site, spec.Eval, masterRNG.Child("ga"), spec.GAConfig)
	refiner.Logger = o.Logger.With("ga")
	refiner.Metrics = o.Metrics
	if o.Progress != nil {
		refiner.Progress = func(ev ga.ProgressEvent) {
			o.Progress.Publish(ProgressEvent{
				Iteration:   ev.Generation,
				Phase:       PhaseGA,
				BestFitness: ev.BestFitness,
				Diversity:   ev.Diversity,
				OperatorMix: ev.OperatorMix,
			})
		}
	}
	seedPop, err := refiner.SeedPopulation(runCtx, saResult.Top, masterRNG.Child("ga-seed"))
	if err != nil {
		return nil, &EvaluatorError{Phase: "ga", Err: err}
	}
	gaResult, err := refiner.Run(runCtx, seedPop)
	if err != nil {
		return nil, &EvaluatorError{Phase: "ga", Err: err}
	}
	gaElapsed := time.Since(gaStart)

	cancelled := false
	if runCtx.Err() != nil {
		cancelled = true
		if spec.WallClockBudgetMS > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			diagnostics = append(diagnostics, diagnosticFor(&BudgetExhaustedError{BudgetMS: spec.WallClockBudgetMS}, "ga"))
		} else {
			diagnostics = append(diagnostics, diagnosticFor(&CancelledError{}, "ga"))
		}
	}

	best := pickBest(gaResult.Population)
	if best == nil {
		return nil, &NumericalFailureError{Phase: "ga", Detail: "refinement produced an empty population"}
	}

	roadStart := time.Now()
	field := tensorfield.AssembleCampus(spec.Site, spec.Buildings, best, tensorfield.DefaultCampusConfig())
	network, err := roadnetwork.Build(spec.Site, spec.Buildings, best, roadnetwork.DefaultConfig(field, spec.Site))
	if err != nil {
		diagnostics = append(diagnostics, Diagnostic{Kind: "numerical_failure", Phase: "road", Message: err.Error()})
		network = &roadnetwork.Network{}
	}
	roadElapsed := time.Since(roadStart)

	compliance := quality.Check(spec.Site, spec.Buildings, best, quality.DefaultComplianceConfig())

	var robustness *quality.RobustnessReport
	if o.RunRobustness {
		analyzer := quality.NewAnalyzer(spec.Eval, masterRNG.Child("robustness"))
		if o.RobustnessConfig.NSamples > 0 {
			analyzer.Config = o.RobustnessConfig
		}
		report, rErr := analyzer.Analyze(runCtx, best, spec.Site, best.Fitness)
		if rErr != nil {
			diagnostics = append(diagnostics, Diagnostic{Kind: "numerical_failure", Phase: "robustness", Message: rErr.Error()})
		} else {
			robustness = report
		}
	}

	bundle := &ResultBundle{
		BestSolution: best,
		ParetoFront:  gaResult.Archive,
		OperatorStats: map[string]map[string]model.OperatorStats{
			"perturbation": explorer.Selector.Stats(registry.Perturbation),
			"mutation":     refiner.MutationSelector.Stats(registry.Mutation),
			"crossover":    refiner.CrossoverSelector.Stats(registry.Crossover),
		},
		Compliance:  compliance,
		Robustness:  robustness,
		RoadNetwork: network,
		Timing: Timing{
			SATimeMS:   saElapsed.Milliseconds(),
			GATimeMS:   gaElapsed.Milliseconds(),
			RoadTimeMS: roadElapsed.Milliseconds(),
		},
		Convergence: ConvergenceTraces{
			SA: saResult.Traces,
			GA: gaResult.BestFitnessCurve,
		},
		RNGSeedUsed: seed,
		Cancelled:   cancelled,
		Diagnostics: diagnostics,
	}
	return bundle, nil
}
