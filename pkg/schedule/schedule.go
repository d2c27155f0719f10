package schedule

import "math"

// Curve evaluates a scheduled parameter value at a given progress point.
// Progress is current_step/total_steps, clamped to [0,1].
type Curve interface {
	// Evaluate returns the scheduled value at the given progress.
	Evaluate(progress float64) float64
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Constant always returns the same value regardless of progress.
type Constant struct {
	Value float64
}

func (c Constant) Evaluate(float64) float64 { return c.Value }

// Linear interpolates between V0 (progress 0) and V1 (progress 1).
type Linear struct {
	V0, V1 float64
}

func (c Linear) Evaluate(progress float64) float64 {
	p := clamp01(progress)
	return c.V0 + (c.V1-c.V0)*p
}

// Exponential interpolates geometrically between V0 and V1: V0*(V1/V0)^p.
// Both endpoints must be strictly positive for the curve to be well
// defined; NewExponential enforces this.
type Exponential struct {
	V0, V1 float64
}

// NewExponential constructs an Exponential curve, substituting a small
// positive floor for non-positive endpoints so the curve stays well
// defined (a zero or negative temperature/rate endpoint is a
// configuration error the caller should have already rejected, but the
// curve itself never panics or emits NaN).
func NewExponential(v0, v1 float64) Exponential {
	const floor = 1e-9
	if v0 <= 0 {
		v0 = floor
	}
	if v1 <= 0 {
		v1 = floor
	}
	return Exponential{V0: v0, V1: v1}
}

func (c Exponential) Evaluate(progress float64) float64 {
	p := clamp01(progress)
	if c.V0 <= 0 || c.V1 <= 0 {
		return c.V0
	}
	return c.V0 * math.Pow(c.V1/c.V0, p)
}

// Cosine oscillates between V0 and V1 over the given number of cycles,
// settling at V1 when cycles is an odd integer (at V0 for an even one)
// and progress reaches 1:
// V1 + 0.5*(V0-V1)*(1+cos(pi*p*cycles)).
type Cosine struct {
	V0, V1 float64
	Cycles float64
}

func (c Cosine) Evaluate(progress float64) float64 {
	p := clamp01(progress)
	cycles := c.Cycles
	if cycles == 0 {
		cycles = 1
	}
	return c.V1 + 0.5*(c.V0-c.V1)*(1+math.Cos(math.Pi*p*cycles))
}

// DiversitySample is the running population-state snapshot an Adaptive
// curve blends against: average pairwise position standard deviation
// (diversity) and the number of generations/iterations since the last
// best-fitness improvement (convergence, expressed as a plateau length).
type DiversitySample struct {
	Diversity     float64
	PlateauLength int
}

// Adaptive blends between V0 and V1 based on recent population diversity
// and convergence. Low diversity or a long plateau pushes the blend
// toward V1 (more disruptive exploration); high diversity and fresh
// improvements keep it near V0.
type Adaptive struct {
	V0, V1 float64
	// WDiv weights the diversity term; WConv weights the convergence term.
	// Both default to 0.5 when left at zero (NewAdaptive sets the defaults;
	// a caller building the struct literal directly gets DiversityNorm
	// and PlateauNorm treated as equally-weighted contributions to the
	// blend only when it supplies them explicitly).
	WDiv, WConv float64
	// DiversityNorm and PlateauNorm rescale the raw sample into [0,1]
	// before blending; both default to 1 (no rescale) if zero.
	DiversityNorm float64
	PlateauNorm   float64

	Sample DiversitySample
}

// NewAdaptive builds an Adaptive curve with the spec's default 0.5/0.5
// weighting and no rescale.
func NewAdaptive(v0, v1, divNorm, plateauNorm float64) *Adaptive {
	return &Adaptive{
		V0: v0, V1: v1,
		WDiv: 0.5, WConv: 0.5,
		DiversityNorm: divNorm,
		PlateauNorm:   plateauNorm,
	}
}

func (c *Adaptive) Evaluate(progress float64) float64 {
	p := clamp01(progress)
	base := c.V0 + (c.V1-c.V0)*p

	divNorm := c.DiversityNorm
	if divNorm <= 0 {
		divNorm = 1
	}
	plateauNorm := c.PlateauNorm
	if plateauNorm <= 0 {
		plateauNorm = 1
	}

	lowDiversity := clamp01(1 - c.Sample.Diversity/divNorm)
	longPlateau := clamp01(float64(c.Sample.PlateauLength) / plateauNorm)

	wDiv, wConv := c.WDiv, c.WConv
	if wDiv == 0 && wConv == 0 {
		wDiv, wConv = 0.5, 0.5
	}
	disruption := wDiv*lowDiversity + wConv*longPlateau
	disruption = clamp01(disruption)

	return base + (c.V1-base)*disruption
}

// Registry is a named lookup of scheduler curves, mirroring the operator
// registry's (name -> instance) shape but for parameter schedules rather
// than stateful strategies (spec.md §4.2's registry pattern, reused here
// since schedules share the same "named, swappable strategy" need).
type Registry struct {
	curves map[string]Curve
}

// NewRegistry returns a Registry pre-populated with the spec's default
// schedules for mutation_rate, temperature, and crossover_rate
// (spec.md §4.3).
func NewRegistry() *Registry {
	r := &Registry{curves: make(map[string]Curve)}
	r.curves["mutation_rate"] = Linear{V0: 0.30, V1: 0.045}
	r.curves["temperature"] = NewExponential(1000, 0.1)
	r.curves["crossover_rate"] = Linear{V0: 0.80, V1: 0.56}
	return r
}

// Set registers or replaces a named curve.
func (r *Registry) Set(name string, c Curve) {
	r.curves[name] = c
}

// Get returns the named curve itself, or ok=false if no curve with that
// name was registered.
func (r *Registry) Get(name string) (Curve, bool) {
	c, ok := r.curves[name]
	return c, ok
}

// Value evaluates the named curve at progress, returning fallback if the
// name is not registered.
func (r *Registry) Value(name string, progress, fallback float64) float64 {
	c, ok := r.curves[name]
	if !ok {
		return fallback
	}
	return c.Evaluate(progress)
}
