// Package paratree implements the parallel tree coordinator: the
// rank-aware layer built on top of octree.LocalTree that owns the
// partition table, orchestrates the collective operations (adapt, global
// refine/coarsen, load balance, ghost halo rebuild, payload exchange) and
// exposes the user-facing API surface. It plays the role the teacher's
// MassifContext plays for one massif's worth of MMR state, generalized
// across a whole rank-addressed fleet instead of a single process's view
// of one blob.
package paratree
