// Package model defines the value types shared across the H-SAGA optimizer:
// buildings, sites, gateways, solutions, Pareto dominance, constraint violations,
// and per-operator statistics. Types here carry no behavior beyond invariant
// checks and derived-quantity accessors; the algorithms that produce and
// consume them live in the sibling packages.
package model
