package octree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adaptivemesh/go-pablo/dim"
	"github.com/adaptivemesh/go-pablo/octant"
)

// One refine gives 4 local octants; a single ghost anchored just across
// the east boundary shares its west-face corners with the local east
// octant's east-face corners and contributes two ghost-only corners of
// its own.
func TestUpdateGhostsConnectivity(t *testing.T) {
	tree := New(dim.Two, []octant.Octant{Root(dim.Two)})
	for j := range tree.Octants() {
		require.NoError(t, tree.SetMarker(j, 1))
	}
	tree.RefineOnePass()
	require.Equal(t, 4, tree.NumOctants())

	half := uint32(1) << 29
	full := uint32(1) << 30
	localIdx := indexAtAnchor(t, tree, half, 0, 1)

	ghost := octant.Octant{D: dim.Two, Level: 1, X: full, Y: 0}
	tree.SetGhosts([]octant.Octant{ghost})

	baseline, _ := tree.UpdateConnectivity()
	baseLen := len(baseline)
	localConn := tree.Connectivity()

	nodes, ghostConn := tree.UpdateGhostsConnectivity()
	require.Len(t, ghostConn, 1)
	require.Len(t, ghostConn[0], 4)
	require.Equal(t, baseLen+2, len(nodes))

	require.Equal(t, localConn[localIdx][1], ghostConn[0][0])
	require.Equal(t, localConn[localIdx][3], ghostConn[0][2])
	require.GreaterOrEqual(t, ghostConn[0][1], baseLen)
	require.GreaterOrEqual(t, ghostConn[0][3], baseLen)

	require.Equal(t, nodes, tree.Nodes())
	require.Equal(t, ghostConn, tree.GhostConnectivity())

	tree.DiscardConnectivity()
	require.Nil(t, tree.Nodes())
	require.Nil(t, tree.Connectivity())
	require.Nil(t, tree.GhostConnectivity())
}
