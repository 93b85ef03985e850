package paratree_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adaptivemesh/go-pablo/dim"
	"github.com/adaptivemesh/go-pablo/pablotesting"
	"github.com/adaptivemesh/go-pablo/paratree"
)

// P=2, refine a few rounds then load-balance so each rank has a real
// ghost halo across the partition boundary, and confirm
// UpdateGhostsConnectivity extends the node table with ghost-only nodes
// rather than just repeating the local pass.
func TestUpdateGhostsConnectivity(t *testing.T) {
	fleet, err := pablotesting.NewFleet(dim.Two, 2)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, pablotesting.RunCollective(fleet, func(pt *paratree.ParallelTree) error {
			return pt.AdaptGlobalRefine()
		}))
	}
	require.NoError(t, pablotesting.RunCollective(fleet, func(pt *paratree.ParallelTree) error {
		return pt.LoadBalance()
	}))

	for _, pt := range fleet {
		if pt.GetNumGhosts() == 0 {
			continue
		}
		localNodes, localConn := pt.UpdateConnectivity()
		nodes, ghostConn := pt.UpdateGhostsConnectivity()

		require.Len(t, ghostConn, pt.GetNumGhosts())
		require.GreaterOrEqual(t, len(nodes), len(localNodes))
		for _, conn := range ghostConn {
			for _, idx := range conn {
				require.GreaterOrEqual(t, idx, 0)
				require.Less(t, idx, len(nodes))
			}
		}
		_ = localConn
		return
	}
	t.Fatal("no rank in the fleet had a ghost halo to test against")
}
