package octree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adaptivemesh/go-pablo/dim"
	"github.com/adaptivemesh/go-pablo/octant"
)

// S2: two global refines (16 octants), mark the octant at anchor (0,0)
// level 2 with marker=2 and run two refine passes, dropping that one
// octant to level 4 while its face neighbours stay at level 2 — a genuine
// two-level jump, not the already-balanced one-level case. Balance21 with
// balanceCodim=1 must then raise the two face-adjacent neighbours across
// (2^28,0) and (0,2^28) to level 3 so no incident pair differs by more
// than one level; a final refine pass realises those markers, replacing
// the two level-2 neighbours with 4 level-3 children each: 31-2+8=37.
func TestBalance21S2(t *testing.T) {
	tree := New(dim.Two, []octant.Octant{Root(dim.Two)})
	for i := 0; i < 2; i++ {
		for j := range tree.Octants() {
			require.NoError(t, tree.SetMarker(j, 1))
		}
		tree.RefineOnePass()
	}
	require.Equal(t, 16, tree.NumOctants())

	idx := indexAtAnchor(t, tree, 0, 0, 2)
	require.NoError(t, tree.SetMarker(idx, 2))
	tree.RefineOnePass()
	tree.RefineOnePass()
	require.Equal(t, 31, tree.NumOctants())

	const half = uint32(1) << 28
	require.True(t, hasAnchor(tree, half, 0, 2), "east neighbour should still be unrefined before balance")
	require.True(t, hasAnchor(tree, 0, half, 2), "north neighbour should still be unrefined before balance")

	tree.SetBalanceCodimension(1)
	require.NoError(t, tree.Balance21(tree.LocalMaxDepth()))
	tree.RefineOnePass()

	require.NoError(t, tree.CheckSorted())
	require.Equal(t, 37, tree.NumOctants())
	require.False(t, hasAnchor(tree, half, 0, 2), "east neighbour must have refined to satisfy 2:1 balance")
	require.False(t, hasAnchor(tree, 0, half, 2), "north neighbour must have refined to satisfy 2:1 balance")
}

func indexAtAnchor(t *testing.T, tree *LocalTree, x, y uint32, level uint8) int {
	t.Helper()
	idx, ok := findAnchor(tree, x, y, level)
	if !ok {
		t.Fatalf("no octant found at (%d,%d) level %d", x, y, level)
	}
	return idx
}

func hasAnchor(tree *LocalTree, x, y uint32, level uint8) bool {
	_, ok := findAnchor(tree, x, y, level)
	return ok
}

func findAnchor(tree *LocalTree, x, y uint32, level uint8) (int, bool) {
	for i, o := range tree.Octants() {
		if o.X == x && o.Y == y && o.Level == level {
			return i, true
		}
	}
	return 0, false
}
