// Package hsrand provides deterministic random number generation for the
// H-SAGA optimizer.
//
// # Overview
//
// The RNG type ensures reproducible optimization runs by deriving
// stage-specific seeds from a master seed. This allows each SA chain and
// each GA generation to draw from an independent random sequence while the
// overall run remains reproducible given the same master seed.
//
// # Sub-seed derivation
//
//	seed_stage = H(masterSeed, stageName, configHash)
//
// where H is SHA-256 and the first 8 bytes of the digest become the
// uint64 seed fed to math/rand. masterSeed is the orchestrator's single
// source of truth (spec.md §4.7); stageName identifies the chain or
// generation ("sa.chain.3", "ga.generation.12"); configHash binds the
// sequence to the run's configuration so that changing a parameter also
// changes the random sequence it drives.
//
// # Thread safety
//
// RNG instances are NOT thread-safe. Each SA chain worker and each GA
// batch worker must use its own RNG instance, derived before the worker
// is spawned and passed in explicitly (spec.md §5).
package hsrand
