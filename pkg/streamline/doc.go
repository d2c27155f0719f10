// Package streamline implements the adaptive Runge-Kutta streamline tracer
// of spec.md §4.9: integral curves of a tensor field's principal
// eigenvector, realized as road polylines, with step-size control, a
// curvature cutoff, a maximum length, and proximity termination against
// previously emitted roads.
package streamline
