// Package operators implements the pluggable perturbation, mutation,
// crossover, and selection strategies used by the SA and GA phases
// (spec.md §4.1). Every operator is constructed from a parameter record,
// carries no mutable state of its own, and takes its random source as an
// explicit argument so applications remain deterministic given identical
// inputs and RNG state. Operators are looked up by name through
// pkg/registry rather than referenced by concrete type.
package operators
