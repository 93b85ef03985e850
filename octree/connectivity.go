package octree

import "github.com/adaptivemesh/go-pablo/dim"

// nodeKey is a hashable logical node coordinate triple (Z unused/0 in 2D).
type nodeKey struct{ X, Y, Z uint32 }

// UpdateConnectivity implements spec.md §4.D.6: enumerates unique logical
// node coordinates across local octants, returning nodes (one entry per
// unique coordinate) and connectivity (per-octant, per-corner node index
// into nodes). Idempotent — calling it twice without an intervening
// mutation produces byte-identical output (spec.md §8.6), because node
// discovery order is simply octants-then-corners, both already sorted.
func (t *LocalTree) UpdateConnectivity() ([][]uint32, [][]int) {
	index := make(map[nodeKey]int)
	var nodes [][]uint32
	connectivity := make([][]int, len(t.octants))

	nNodes := dim.Get(t.D).NNodes
	for oi, o := range t.octants {
		conn := make([]int, nNodes)
		for corner := 0; corner < nNodes; corner++ {
			c := o.GetNode(corner)
			k := nodeKey{X: c[0], Y: c[1]}
			if len(c) == 3 {
				k.Z = c[2]
			}
			idx, ok := index[k]
			if !ok {
				idx = len(nodes)
				index[k] = idx
				nodes = append(nodes, c)
			}
			conn[corner] = idx
		}
		connectivity[oi] = conn
	}

	t.nodes = nodes
	t.connectivity = connectivity
	return nodes, connectivity
}

// Nodes returns the node table from the most recent UpdateConnectivity
// call (nil if it has never been called, or was discarded before the next
// adapt per spec.md §4.D.6).
func (t *LocalTree) Nodes() [][]uint32 { return t.nodes }

// Connectivity returns the per-octant node-index table from the most
// recent UpdateConnectivity call.
func (t *LocalTree) Connectivity() [][]int { return t.connectivity }

// GhostConnectivity returns the per-ghost node-index table from the most
// recent UpdateGhostsConnectivity call.
func (t *LocalTree) GhostConnectivity() [][]int { return t.ghostConnectivity }

// UpdateGhostsConnectivity implements spec.md §4.D.6's ghost variant:
// "ghost connectivity uses the same node table extended with ghost-only
// nodes." It runs UpdateConnectivity's local pass first, then folds every
// ghost corner into the same nodeKey index, reusing a local octant's node
// index wherever a ghost corner coincides with one and appending a new
// entry for every ghost-only corner. Local octant indices into the
// returned table are unaffected, since ghost-only nodes are only ever
// appended past the end.
func (t *LocalTree) UpdateGhostsConnectivity() ([][]uint32, [][]int) {
	nodes, _ := t.UpdateConnectivity()

	index := make(map[nodeKey]int, len(nodes))
	for i, n := range nodes {
		k := nodeKey{X: n[0], Y: n[1]}
		if len(n) == 3 {
			k.Z = n[2]
		}
		index[k] = i
	}

	nNodes := dim.Get(t.D).NNodes
	ghostConn := make([][]int, len(t.ghosts))
	for gi, g := range t.ghosts {
		conn := make([]int, nNodes)
		for corner := 0; corner < nNodes; corner++ {
			c := g.GetNode(corner)
			k := nodeKey{X: c[0], Y: c[1]}
			if len(c) == 3 {
				k.Z = c[2]
			}
			idx, ok := index[k]
			if !ok {
				idx = len(nodes)
				index[k] = idx
				nodes = append(nodes, c)
			}
			conn[corner] = idx
		}
		ghostConn[gi] = conn
	}

	t.nodes = nodes
	t.ghostConnectivity = ghostConn
	return nodes, ghostConn
}

// DiscardConnectivity clears cached connectivity, as required before the
// next adapt (spec.md §4.D.6: "discarded before next adapt").
func (t *LocalTree) DiscardConnectivity() {
	t.nodes = nil
	t.connectivity = nil
	t.ghostConnectivity = nil
}
