package octree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adaptivemesh/go-pablo/dim"
	"github.com/adaptivemesh/go-pablo/octant"
)

func refinedOnce(t *testing.T, d dim.Dim) *LocalTree {
	t.Helper()
	tree := New(d, []octant.Octant{Root(d)})
	require.NoError(t, tree.SetMarker(0, 1))
	tree.RefineOnePass()
	return tree
}

// S3: refine once, mark all 4 leaves -1, coarsen -> root restored, isNewC set.
func TestCoarsenFamily(t *testing.T) {
	tree := refinedOnce(t, dim.Two)
	for i := range tree.Octants() {
		require.NoError(t, tree.SetMarker(i, -1))
	}

	tree.CoarsenOnePass()

	require.Equal(t, 1, tree.NumOctants())
	o := tree.Octants()[0]
	require.Equal(t, uint8(0), o.Level)
	require.True(t, o.Flags.IsNewC)
	require.NoError(t, tree.CheckSorted())
}

// S4: same as S3 but only 3 of 4 leaves marked -1 -> no coarsening.
func TestCoarsenPartialFamily(t *testing.T) {
	tree := refinedOnce(t, dim.Two)
	for i := 0; i < 3; i++ {
		require.NoError(t, tree.SetMarker(i, -1))
	}

	tree.CoarsenOnePass()

	require.Equal(t, 4, tree.NumOctants())
	for i, o := range tree.Octants() {
		require.Equal(t, uint8(1), o.Level)
		if i < 3 {
			require.Equal(t, int8(0), o.Marker)
		} else {
			require.Equal(t, int8(0), o.Marker)
		}
	}
	require.NoError(t, tree.CheckSorted())
}
