package octree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adaptivemesh/go-pablo/dim"
	"github.com/adaptivemesh/go-pablo/octant"
)

// S1: 2D serial root, marker=1, one refine pass -> 4 octants at level 1,
// anchors (0,0), (2^29,0), (0,2^29), (2^29,2^29).
func TestRefineOnePassS1(t *testing.T) {
	tree := New(dim.Two, []octant.Octant{Root(dim.Two)})
	require.NoError(t, tree.SetMarker(0, 1))

	tree.RefineOnePass()

	require.Equal(t, 4, tree.NumOctants())
	half := uint32(1) << 29
	wantAnchors := [][2]uint32{{0, 0}, {half, 0}, {0, half}, {half, half}}
	for i, o := range tree.Octants() {
		require.Equal(t, uint8(1), o.Level)
		require.Equal(t, wantAnchors[i][0], o.X)
		require.Equal(t, wantAnchors[i][1], o.Y)
	}
	require.NoError(t, tree.CheckSorted())
}

// S5: 3D global refine x4 -> 4096 leaves, all level 4.
func TestGlobalRefine3D(t *testing.T) {
	tree := New(dim.Three, []octant.Octant{Root(dim.Three)})
	for i := 0; i < 4; i++ {
		for j := range tree.Octants() {
			require.NoError(t, tree.SetMarker(j, 1))
		}
		tree.RefineOnePass()
	}
	require.Equal(t, 4096, tree.NumOctants())
	for _, o := range tree.Octants() {
		require.Equal(t, uint8(4), o.Level)
	}
	require.NoError(t, tree.CheckSorted())
}
