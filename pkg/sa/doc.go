// Package sa implements the simulated-annealing exploration phase: parallel
// Metropolis chains with an adaptive perturbation selector and geometric
// cooling, seeding the genetic-algorithm refinement phase.
package sa
