package pablotesting

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adaptivemesh/go-pablo/octant"
	"github.com/adaptivemesh/go-pablo/paratree"
)

// AssertSortedUnique checks spec.md §8 invariant 1 on a single rank's
// local octants.
func AssertSortedUnique(t *testing.T, pt *paratree.ParallelTree) {
	t.Helper()
	n := pt.GetNumOctants()
	for i := 1; i < n; i++ {
		prev, err := pt.GetOctant(i - 1)
		require.NoError(t, err)
		cur, err := pt.GetOctant(i)
		require.NoError(t, err)
		require.True(t, octant.Less(prev, cur), "octants %d and %d out of order", i-1, i)
	}
}

// AssertCoversRoot checks spec.md §8 invariant 2: concatenating every
// rank's octants in rank order covers the root cube exactly once, i.e.
// the finest-grid Morton ranges of consecutive leaves are contiguous from
// 0 to the full domain with no gap or overlap.
func AssertCoversRoot(t *testing.T, fleet []*paratree.ParallelTree) {
	t.Helper()
	all := AllOctants(fleet)
	require.NotEmpty(t, all)

	require.Equal(t, uint64(0), all[0].ComputeMorton(), "first leaf must start at the domain origin")
	for i := 1; i < len(all); i++ {
		prevLast := all[i-1].BuildLastDesc().ComputeMorton()
		cur := all[i].ComputeMorton()
		require.Equal(t, prevLast+1, cur, "gap or overlap between leaves %d and %d", i-1, i)
	}
}

// AssertBalanced checks spec.md §8 invariant 3 across every rank's local
// octants and their ghosts, for every face incidence (codim 1) — the
// cheapest and most common codimension to verify directly.
func AssertBalanced(t *testing.T, pt *paratree.ParallelTree) {
	t.Helper()
	n := pt.GetNumOctants()
	for i := 0; i < n; i++ {
		o, err := pt.GetOctant(i)
		require.NoError(t, err)
		for face := 0; face < 2*o.D.N(); face++ {
			refs, err := pt.FindNeighbours(i, face, 1)
			require.NoError(t, err)
			for _, ref := range refs {
				var neighbour octant.Octant
				if ref.IsGhost {
					neighbour, err = pt.GetGhostOctant(ref.Index)
				} else {
					neighbour, err = pt.GetOctant(ref.Index)
				}
				require.NoError(t, err)
				diff := int(o.Level) - int(neighbour.Level)
				require.LessOrEqual(t, diff, 1)
				require.GreaterOrEqual(t, diff, -1)
			}
		}
	}
}

// AssertPartitionTableConsistent checks spec.md §8 invariant 4: the
// partition table is non-decreasing and its last entry plus one equals
// the global octant count.
func AssertPartitionTableConsistent(t *testing.T, fleet []*paratree.ParallelTree) {
	t.Helper()
	require.NotEmpty(t, fleet)
	table := fleet[0].PartitionRangeGlobalIdx()
	for r := 1; r < len(table); r++ {
		require.GreaterOrEqual(t, table[r], table[r-1])
	}
	require.Equal(t, fleet[0].GlobalNumOctants(), table[len(table)-1]+1)
}
