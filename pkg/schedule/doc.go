// Package schedule implements the ParameterScheduler value-over-progress
// curve library (spec.md §4.3): constant, linear, exponential, cosine, and
// diversity/convergence-adaptive curves mapping a progress ratio in [0,1]
// to a scheduled parameter value such as mutation rate or temperature.
package schedule
