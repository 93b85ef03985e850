package paratree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adaptivemesh/go-pablo/dim"
	"github.com/adaptivemesh/go-pablo/pabloerrors"
	"github.com/adaptivemesh/go-pablo/transport"
)

// A leading empty rank's partitionRangeGlobalIdx entry must not collide
// with "owns real global idx 0": GetLocalIdx(0, laterRank) must resolve
// to the rank that actually owns it rather than erroring, and the empty
// rank itself is never resolvable.
func TestGetLocalIdxSkipsEmptyLeadingRank(t *testing.T) {
	pt, err := New(dim.Two, transport.Null{})
	require.NoError(t, err)
	pt.size = 3
	pt.partitionRangeGlobalIdx = []uint64{emptyPartitionRange, 2, 5}

	idx, err := pt.GetLocalIdx(0, 1)
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	idx, err = pt.GetLocalIdx(2, 1)
	require.NoError(t, err)
	require.Equal(t, 2, idx)

	idx, err = pt.GetLocalIdx(3, 2)
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	_, err = pt.GetLocalIdx(0, 0)
	require.ErrorIs(t, err, pabloerrors.ErrIndexOutOfRange)
}

func TestOwnerOfOldGlobalIdxSkipsEmptyLeadingRank(t *testing.T) {
	pt, err := New(dim.Two, transport.Null{})
	require.NoError(t, err)
	pt.size = 3
	pt.partitionRangeGlobalIdx = []uint64{emptyPartitionRange, 2, 5}

	require.Equal(t, 1, pt.ownerOfOldGlobalIdx(0))
	require.Equal(t, 1, pt.ownerOfOldGlobalIdx(2))
	require.Equal(t, 2, pt.ownerOfOldGlobalIdx(3))
}
