// Package registry implements the OperatorRegistry and the adaptive
// operator selector described in spec.md §4.2: a named (family, name) ->
// factory lookup for operator instances, and a selector that chooses which
// registered operator to apply next based on running per-operator reward.
package registry
