package octree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adaptivemesh/go-pablo/dim"
	"github.com/adaptivemesh/go-pablo/octant"
)

// The ghost bloom filter only ever holds a ghost's own anchor Morton. A
// ghost coarser than the probing octant's half-size candidate — exactly
// the shape 2:1 balance must detect across a coarser neighbour — has an
// anchor that does not equal either candidate code, so a direct filter
// query on the raw candidate would miss it. FindNeighbours must still
// resolve the ghost correctly once the ancestor walk is applied.
func TestFindNeighboursGhostBloomCoarserGhost(t *testing.T) {
	base := uint32(1) << 28
	local := octant.Octant{D: dim.Two, Level: 2, X: base, Y: base}
	tree := New(dim.Two, []octant.Octant{local}, WithGhostBloomFilter(true))

	ghost := octant.Octant{D: dim.Two, Level: 1, X: base * 2, Y: 0}
	tree.SetGhosts([]octant.Octant{ghost})
	require.NotNil(t, tree.ghostBloom)

	// Neither of the two half-size candidates across the +x face equals
	// the ghost's own anchor Morton, confirming this exercises the bug's
	// exact shape rather than coincidentally aligning with it.
	candidates := local.ComputeHalfSizeMorton(1)
	require.Len(t, candidates, 2)
	for _, c := range candidates {
		require.NotEqual(t, ghost.ComputeMorton(), c)
		require.True(t, tree.ghostBloomMayCover(c))
	}

	refs, err := tree.FindNeighbours(0, 1, 1, 2)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	require.True(t, refs[0].IsGhost)
	require.Equal(t, 0, refs[0].Index)
}
