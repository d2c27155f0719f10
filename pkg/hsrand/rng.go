package hsrand

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
)

// RNG is a deterministic, stage-scoped random source.
type RNG struct {
	seed      uint64
	stageName string
	source    *rand.Rand
}

// New derives a stage-specific RNG from a master seed, a stage name, and an
// opaque configuration hash (see package doc for the derivation formula).
func New(masterSeed uint64, stageName string, configHash []byte) *RNG {
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], masterSeed)
	h.Write(buf[:])
	h.Write([]byte(stageName))
	h.Write(configHash)

	digest := h.Sum(nil)
	derived := binary.BigEndian.Uint64(digest[:8])

	return &RNG{
		seed:      derived,
		stageName: stageName,
		source:    rand.New(rand.NewSource(int64(derived))),
	}
}

// Child derives a further sub-stream scoped under this RNG's stage, for
// example a per-iteration or per-chain substream. It re-derives from this
// RNG's own seed rather than consuming entropy from source, so deriving two
// children with different suffixes never perturbs either's own Uint64/Float64
// sequence.
func (r *RNG) Child(suffix string) *RNG {
	return New(r.seed, r.stageName+"/"+suffix, nil)
}

// Seed returns the derived seed for this RNG.
func (r *RNG) Seed() uint64 { return r.seed }

// StageName returns the stage name this RNG was created for.
func (r *RNG) StageName() string { return r.stageName }

// Uint64 returns a pseudo-random 64-bit unsigned integer.
func (r *RNG) Uint64() uint64 { return r.source.Uint64() }

// Intn returns a pseudo-random integer in [0, n). Panics if n <= 0.
func (r *RNG) Intn(n int) int { return r.source.Intn(n) }

// Float64 returns a pseudo-random float64 in [0.0, 1.0).
func (r *RNG) Float64() float64 { return r.source.Float64() }

// NormFloat64 returns a pseudo-random value from the standard normal
// distribution (mean 0, stddev 1), used by Gaussian perturbation/mutation.
func (r *RNG) NormFloat64() float64 { return r.source.NormFloat64() }

// Shuffle pseudo-randomizes the order of n elements via swap.
func (r *RNG) Shuffle(n int, swap func(i, j int)) { r.source.Shuffle(n, swap) }

// IntRange returns a pseudo-random integer in [lo, hi]. Panics if lo > hi.
func (r *RNG) IntRange(lo, hi int) int {
	if lo > hi {
		panic("hsrand: IntRange lo must be <= hi")
	}
	if lo == hi {
		return lo
	}
	return lo + r.source.Intn(hi-lo+1)
}

// Float64Range returns a pseudo-random float64 in [lo, hi). Panics if lo >= hi.
func (r *RNG) Float64Range(lo, hi float64) float64 {
	if lo >= hi {
		panic("hsrand: Float64Range lo must be < hi")
	}
	return lo + r.source.Float64()*(hi-lo)
}

// Bool returns a pseudo-random boolean.
func (r *RNG) Bool() bool { return r.source.Intn(2) == 1 }

// WeightedChoice selects an index from non-negative weights, returning -1
// if weights is empty or sums to zero.
func (r *RNG) WeightedChoice(weights []float64) int {
	if len(weights) == 0 {
		return -1
	}
	total := 0.0
	for _, w := range weights {
		if w < 0 {
			panic("hsrand: WeightedChoice weights must be non-negative")
		}
		total += w
	}
	if total == 0 {
		return -1
	}
	draw := r.Float64() * total
	cum := 0.0
	for i, w := range weights {
		cum += w
		if draw < cum {
			return i
		}
	}
	return len(weights) - 1
}
