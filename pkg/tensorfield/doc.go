// Package tensorfield implements the semantic tensor field spec.md §4.8
// describes: a 2x2 symmetric tensor field assembled by superposing radial
// and grid basis contributions seeded from placed buildings and gateways,
// sampled by bilinear interpolation over a precomputed grid, and
// eigendecomposed in closed form to yield the principal direction the
// streamline tracer (pkg/streamline) follows.
package tensorfield
