// Package ga implements the genetic-algorithm refinement phase: a
// tournament-selected, scheduled crossover/mutation loop with elitist and
// diversity-preserving replacement, feeding confirmed non-dominated
// solutions into a shared Pareto archive.
package ga
