// Package octree implements the local tree: one rank's sorted vector of
// octants plus its parallel vector of ghost octants, and every operation
// that only needs local state — refine, coarsen, 2:1 balance, neighbour
// search and connectivity. It knows nothing about ranks, partition tables
// or transport; paratree layers the distributed coordinator on top.
//
// As with the octant package, navigation favours bit/Morton arithmetic and
// binary search over materialised tree structure, following the teacher's
// mmr package's own style of flat, formula-driven indexing.
package octree
