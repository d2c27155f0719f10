// Package roadnetwork assembles a campus road network from a tensor field:
// it seeds streamlines at gateways and building centroids, traces major
// roads before minor roads so major roads shape the field first, snaps
// minor-road endpoints onto nearby major roads, simplifies every polyline
// with Ramer-Douglas-Peucker, and reports Kansky connectivity indices over
// the resulting intersection graph (spec.md §4.10).
package roadnetwork
