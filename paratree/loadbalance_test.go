package paratree_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adaptivemesh/go-pablo/dim"
	"github.com/adaptivemesh/go-pablo/pablotesting"
	"github.com/adaptivemesh/go-pablo/paratree"
)

// S6: P=2, 64 leaves collectively constructed on every rank via repeated
// AdaptGlobalRefine (a collective op, driven identically on every rank),
// then LoadBalance equalizes to 32 leaves per rank; the global order is
// preserved and a second LoadBalance is a no-op.
func TestAdaptS6(t *testing.T) {
	fleet, err := pablotesting.NewFleet(dim.Two, 2)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		err := pablotesting.RunCollective(fleet, func(pt *paratree.ParallelTree) error {
			return pt.AdaptGlobalRefine()
		})
		require.NoError(t, err)
	}

	total := fleet[0].GetNumOctants() + fleet[1].GetNumOctants()
	require.Equal(t, 64, total)

	pablotesting.AssertCoversRoot(t, fleet)
	pablotesting.AssertPartitionTableConsistent(t, fleet)

	err = pablotesting.RunCollective(fleet, func(pt *paratree.ParallelTree) error {
		return pt.LoadBalance()
	})
	require.NoError(t, err)

	require.Equal(t, 32, fleet[0].GetNumOctants())
	require.Equal(t, 32, fleet[1].GetNumOctants())
	pablotesting.AssertCoversRoot(t, fleet)

	err = pablotesting.RunCollective(fleet, func(pt *paratree.ParallelTree) error {
		return pt.LoadBalance()
	})
	require.NoError(t, err)
	require.Equal(t, 32, fleet[0].GetNumOctants())
	require.Equal(t, 32, fleet[1].GetNumOctants())
}

// Every rank in a fleet agrees on the same fleet UUID, generated once by
// rank 0 at construction and broadcast to every other rank.
func TestFleetIDSharedAcrossRanks(t *testing.T) {
	fleet, err := pablotesting.NewFleet(dim.Two, 3)
	require.NoError(t, err)

	id0 := fleet[0].FleetID()
	require.NotEqual(t, id0.String(), "00000000-0000-0000-0000-000000000000")
	for _, pt := range fleet[1:] {
		require.Equal(t, id0, pt.FleetID())
	}
}
