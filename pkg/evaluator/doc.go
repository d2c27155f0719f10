// Package evaluator defines the Evaluator contract the core consumes from
// the embedding application (spec.md §4.4, §6): a deterministic,
// thread-safe function from (solution, site) to a fitness scalar, a named
// objective map, and an optional list of constraint violations. It also
// provides a memoizing decorator keyed by a canonical solution fingerprint.
package evaluator
