package schedule

import (
	"math"
	"testing"
)

func TestLinearEndpoints(t *testing.T) {
	c := Linear{V0: 0.3, V1: 0.045}
	if got := c.Evaluate(0); math.Abs(got-0.3) > 1e-12 {
		t.Fatalf("Evaluate(0) = %v, want 0.3", got)
	}
	if got := c.Evaluate(1); math.Abs(got-0.045) > 1e-12 {
		t.Fatalf("Evaluate(1) = %v, want 0.045", got)
	}
}

func TestExponentialEndpoints(t *testing.T) {
	c := NewExponential(1000, 0.1)
	if got := c.Evaluate(0); math.Abs(got-1000) > 1e-9 {
		t.Fatalf("Evaluate(0) = %v, want 1000", got)
	}
	if got := c.Evaluate(1); math.Abs(got-0.1) > 1e-9 {
		t.Fatalf("Evaluate(1) = %v, want 0.1", got)
	}
}

func TestCosineSettlesAtV1(t *testing.T) {
	c := Cosine{V0: 1, V1: 0, Cycles: 1}
	if got := c.Evaluate(1); math.Abs(got-0) > 1e-9 {
		t.Fatalf("Evaluate(1) = %v, want 0", got)
	}
	if got := c.Evaluate(0); math.Abs(got-1) > 1e-9 {
		t.Fatalf("Evaluate(0) = %v, want 1", got)
	}
}

func TestAdaptiveBlendsTowardV1OnPlateau(t *testing.T) {
	c := NewAdaptive(0.1, 0.9, 1.0, 10.0)
	c.Sample = DiversitySample{Diversity: 1.0, PlateauLength: 0}
	fresh := c.Evaluate(0.5)

	c.Sample = DiversitySample{Diversity: 0.0, PlateauLength: 10}
	stalled := c.Evaluate(0.5)

	if stalled <= fresh {
		t.Fatalf("stalled value %v should exceed fresh value %v", stalled, fresh)
	}
}

func TestClamp01(t *testing.T) {
	c := Linear{V0: 0, V1: 10}
	if got := c.Evaluate(-5); got != 0 {
		t.Fatalf("Evaluate(-5) = %v, want 0", got)
	}
	if got := c.Evaluate(5); got != 10 {
		t.Fatalf("Evaluate(5) = %v, want 10", got)
	}
}

func TestRegistryDefaults(t *testing.T) {
	r := NewRegistry()
	if v := r.Value("mutation_rate", 0, -1); math.Abs(v-0.30) > 1e-12 {
		t.Fatalf("mutation_rate at progress 0 = %v, want 0.30", v)
	}
	if v := r.Value("temperature", 1, -1); math.Abs(v-0.1) > 1e-9 {
		t.Fatalf("temperature at progress 1 = %v, want 0.1", v)
	}
	if v := r.Value("unknown", 0.5, -42); v != -42 {
		t.Fatalf("unknown curve should fall back, got %v", v)
	}
}
