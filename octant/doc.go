package octant

/*
An Octant never knows its neighbours, its tree, or its rank. Everything it
exposes is derived on demand from (X, Y, Z, Level) and the per-dimension
globals table in package dim. This keeps the type trivially copyable and
comparable by value, and keeps octree/paratree free to hold octants
directly in slices without any indirection or ownership questions.

The neighbour-Morton helpers (neighbours.go) are the one place this package
does real work: given a face, edge or node incidence, they return the
Morton codes of the candidate neighbour cubes on the other side, at either
half-size (one level finer, used while 2:1 balancing) or a fixed
"maxdepth" size (used while probing at the deepest level the local tree
currently contains). They never touch actual storage — it is octree's job
to take these candidate codes and binary search for them.
*/
