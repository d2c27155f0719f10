// Package quality implements the constraint/quality engine: a Pareto front
// with hypervolume/spread/spacing indicators, a Monte-Carlo robustness
// analyzer, and a rule-based compliance checker over placed buildings
// (spec.md §4.11).
package quality
