// Package orchestrator wires the SA exploration phase, the GA refinement
// phase, road network generation, and the quality engine into a single
// HSAGAOrchestrator run, owning the RNG seed and the progress stream.
package orchestrator
