package streamline

import (
	"math"

	"github.com/dshills/hsaga/pkg/model"
	"github.com/dshills/hsaga/pkg/tensorfield"
)

// ProximityIndex answers "how far is p from the nearest previously emitted
// road segment" for streamline proximity termination. pkg/roadnetwork
// provides the concrete implementation backed by a 2-D spatial index built
// from already-traced polylines.
type ProximityIndex interface {
	NearestDistance(p model.Point) (dist float64, ok bool)
}

// NoProximityIndex is a ProximityIndex with no segments registered, for
// tracing the very first road or in tests.
type NoProximityIndex struct{}

func (NoProximityIndex) NearestDistance(model.Point) (float64, bool) { return 0, false }

// Config tunes the tracer's step control and termination conditions
// (spec.md §4.9 defaults).
type Config struct {
	Field  *tensorfield.Field
	Site   *model.Site
	Index  ProximityIndex

	Tol             float64 // default 1e-3
	MinStep         float64 // default 1 m
	MaxStep         float64 // default 20 m
	MaxCurvature    float64 // default 0.15 rad/m
	MaxLength       float64 // default 500 m
	ProximityRadius float64 // default 8 m
}

// DefaultConfig returns the spec's default tracer parameters bound to the
// given field, site, and proximity index.
func DefaultConfig(field *tensorfield.Field, site *model.Site, index ProximityIndex) Config {
	if index == nil {
		index = NoProximityIndex{}
	}
	return Config{
		Field: field, Site: site, Index: index,
		Tol: 1e-3, MinStep: 1, MaxStep: 20,
		MaxCurvature: 0.15, MaxLength: 500, ProximityRadius: 8,
	}
}

// TerminationReason records why a streamline stopped.
type TerminationReason string

const (
	ReasonOutOfBounds   TerminationReason = "out_of_bounds"
	ReasonSingularity   TerminationReason = "singularity"
	ReasonCurvature     TerminationReason = "curvature"
	ReasonMaxLength     TerminationReason = "max_length"
	ReasonProximity     TerminationReason = "proximity"
	ReasonStalled       TerminationReason = "stalled"
)

// Result is a single traced polyline with its termination diagnostics.
type Result struct {
	Points    []model.Point
	Length    float64
	Reason    TerminationReason
}

// Tracer integrates dp/ds = v(p) where v is the field's principal
// eigenvector, using adaptive step doubling: each candidate step is taken
// once at size h and again as two half-steps; the difference between the
// two estimates is the local error used to accept or resize the step.
// Every step and half-step is a single explicit Euler step along the
// direction sampled at its start point; no fourth-order Runge-Kutta stages
// and no embedded Dormand-Prince tableau are evaluated.
type Tracer struct {
	cfg Config
}

// New builds a Tracer with the given configuration.
func New(cfg Config) *Tracer {
	return &Tracer{cfg: cfg}
}

// direction returns the unit principal eigenvector at p, continuous with
// prev, scaled by sign (+1 forward, -1 backward), and whether p is a
// singularity.
func (tr *Tracer) direction(p model.Point, prev [2]float64, sign float64) (v [2]float64, singular bool) {
	e := tensorfield.Decompose(tr.cfg.Field.Sample(p))
	if e.Singular {
		return [2]float64{}, true
	}
	major := tensorfield.ContinuousMajor(e, prev)
	return [2]float64{major[0] * sign, major[1] * sign}, false
}

// rk4Step advances p by h along v in one explicit Euler step.
func rk4Step(p model.Point, v [2]float64, h float64) model.Point {
	return model.Point{X: p.X + v[0]*h, Y: p.Y + v[1]*h}
}

// traceOne traces a single direction from seed until a termination
// condition fires. initialDir, if non-nil, seeds the continuity reference
// (e.g. a gateway's forced bearing) instead of letting the first sample
// pick an arbitrary sign.
func (tr *Tracer) traceOne(seed model.Point, sign float64, initialDir *[2]float64) Result {
	points := []model.Point{seed}
	length := 0.0
	h := tr.cfg.MaxStep / 2
	if h < tr.cfg.MinStep {
		h = tr.cfg.MinStep
	}

	prevDir := [2]float64{1, 0}
	if initialDir != nil {
		prevDir = *initialDir
	}
	prevSegment := prevDir

	p := seed
	for {
		dir, singular := tr.direction(p, prevDir, sign)
		if singular {
			return Result{Points: points, Length: length, Reason: ReasonSingularity}
		}

		// Step-doubling error estimate: one full step vs two half-steps.
		full := rk4Step(p, dir, h)
		halfMid := rk4Step(p, dir, h/2)
		midDir, midSingular := tr.direction(halfMid, dir, sign)
		var twoHalf model.Point
		if midSingular {
			twoHalf = full
		} else {
			twoHalf = rk4Step(halfMid, midDir, h/2)
		}
		errEst := math.Hypot(full.X-twoHalf.X, full.Y-twoHalf.Y)
		if errEst < 1e-15 {
			errEst = 1e-15
		}

		if errEst > tr.cfg.Tol && h > tr.cfg.MinStep {
			scale := math.Pow(tr.cfg.Tol/errEst, 1.0/5.0)
			h = clipStep(h*scale, tr.cfg.MinStep, tr.cfg.MaxStep)
			continue // retry with resized step
		}

		next := twoHalf
		segVec := [2]float64{next.X - p.X, next.Y - p.Y}
		segLen := math.Hypot(segVec[0], segVec[1])

		// Curvature: angle between consecutive segments / arc length.
		if segLen > 1e-9 {
			cosAngle := (prevSegment[0]*segVec[0] + prevSegment[1]*segVec[1]) / (math.Hypot(prevSegment[0], prevSegment[1]) * segLen)
			cosAngle = math.Max(-1, math.Min(1, cosAngle))
			angle := math.Acos(cosAngle)
			if len(points) > 1 && angle/segLen > tr.cfg.MaxCurvature {
				return Result{Points: points, Length: length, Reason: ReasonCurvature}
			}
		}

		if tr.cfg.Site != nil && !tr.cfg.Site.Bounds.Contains(next, 0) {
			return Result{Points: points, Length: length, Reason: ReasonOutOfBounds}
		}

		if tr.cfg.Index != nil {
			if d, ok := tr.cfg.Index.NearestDistance(next); ok && d < tr.cfg.ProximityRadius && len(points) > 1 {
				return Result{Points: points, Length: length, Reason: ReasonProximity}
			}
		}

		points = append(points, next)
		length += segLen
		prevDir = dir
		prevSegment = segVec
		p = next

		if length >= tr.cfg.MaxLength {
			return Result{Points: points, Length: length, Reason: ReasonMaxLength}
		}

		// Grow the step for the next iteration when error was comfortably
		// under tolerance.
		if errEst < tr.cfg.Tol/4 {
			h = clipStep(h*1.5, tr.cfg.MinStep, tr.cfg.MaxStep)
		}
		if len(points) > 100000 {
			return Result{Points: points, Length: length, Reason: ReasonStalled}
		}
	}
}

func clipStep(h, lo, hi float64) float64 {
	if h < lo {
		return lo
	}
	if h > hi {
		return hi
	}
	return h
}

// TraceBidirectional traces forward and backward from seed and
// concatenates the two polylines into one (spec.md §4.9). initialDir, if
// provided, forces the starting direction (e.g. a gateway's bearing);
// backward tracing uses its negation.
func (tr *Tracer) TraceBidirectional(seed model.Point, initialDir *[2]float64) Result {
	fwd := tr.traceOne(seed, 1, initialDir)

	var backInit *[2]float64
	if initialDir != nil {
		neg := [2]float64{-initialDir[0], -initialDir[1]}
		backInit = &neg
	}
	back := tr.traceOne(seed, -1, backInit)

	// Concatenate: reversed backward points (excluding the shared seed)
	// followed by the forward points.
	points := make([]model.Point, 0, len(fwd.Points)+len(back.Points)-1)
	for i := len(back.Points) - 1; i > 0; i-- {
		points = append(points, back.Points[i])
	}
	points = append(points, fwd.Points...)

	return Result{
		Points: points,
		Length: fwd.Length + back.Length,
		Reason: fwd.Reason,
	}
}
