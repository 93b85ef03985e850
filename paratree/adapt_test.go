package paratree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adaptivemesh/go-pablo/dim"
	"github.com/adaptivemesh/go-pablo/transport"
)

// S1: 2D serial (P=1), root, marker=1, adapt once: 4 octants, all level 1,
// anchors (0,0), (2^29,0), (0,2^29), (2^29,2^29).
func TestAdaptS1(t *testing.T) {
	pt, err := New(dim.Two, transport.Null{})
	require.NoError(t, err)
	require.Equal(t, 1, pt.GetNumOctants())

	require.NoError(t, pt.SetMarker(0, 1))
	require.NoError(t, pt.Adapt())

	require.Equal(t, 4, pt.GetNumOctants())
	half := uint32(1) << 29
	wantAnchors := map[[2]uint32]bool{
		{0, 0}: true, {half, 0}: true, {0, half}: true, {half, half}: true,
	}
	for i := 0; i < 4; i++ {
		o, err := pt.GetOctant(i)
		require.NoError(t, err)
		require.EqualValues(t, 1, o.Level)
		require.True(t, wantAnchors[[2]uint32{o.X, o.Y}], "unexpected anchor (%d,%d)", o.X, o.Y)
	}
}

// S3: refine once (4 octants), mark all -1, adapt: coarsens back to 1 leaf
// (root) with isNewC=true.
func TestAdaptS3(t *testing.T) {
	pt, err := New(dim.Two, transport.Null{})
	require.NoError(t, err)
	require.NoError(t, pt.AdaptGlobalRefine())
	require.Equal(t, 4, pt.GetNumOctants())

	for i := 0; i < 4; i++ {
		require.NoError(t, pt.SetMarker(i, -1))
	}
	require.NoError(t, pt.Adapt())

	require.Equal(t, 1, pt.GetNumOctants())
	o, err := pt.GetOctant(0)
	require.NoError(t, err)
	require.EqualValues(t, 0, o.Level)
	require.True(t, o.Flags.IsNewC)
}

// S4: same setup as S3 but only 3 of 4 leaves marked -1: no coarsening.
func TestAdaptS4(t *testing.T) {
	pt, err := New(dim.Two, transport.Null{})
	require.NoError(t, err)
	require.NoError(t, pt.AdaptGlobalRefine())
	require.Equal(t, 4, pt.GetNumOctants())

	for i := 0; i < 3; i++ {
		require.NoError(t, pt.SetMarker(i, -1))
	}
	require.NoError(t, pt.Adapt())

	require.Equal(t, 4, pt.GetNumOctants())
}

// S5: 3D, adaptGlobalRefine x4: 4096 leaves, all level 4.
func TestAdaptS5(t *testing.T) {
	pt, err := New(dim.Three, transport.Null{})
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, pt.AdaptGlobalRefine())
	}
	require.Equal(t, 4096, pt.GetNumOctants())
	for i := 0; i < pt.GetNumOctants(); i++ {
		o, err := pt.GetOctant(i)
		require.NoError(t, err)
		require.EqualValues(t, 4, o.Level)
	}
}

func indexAtAnchorS2(t *testing.T, pt *ParallelTree, x, y uint32, level uint8) int {
	t.Helper()
	idx, ok := findAnchorS2(t, pt, x, y, level)
	if !ok {
		t.Fatalf("no octant found at (%d,%d) level %d", x, y, level)
	}
	return idx
}

func findAnchorS2(t *testing.T, pt *ParallelTree, x, y uint32, level uint8) (int, bool) {
	t.Helper()
	for i := 0; i < pt.GetNumOctants(); i++ {
		o, err := pt.GetOctant(i)
		require.NoError(t, err)
		if o.X == x && o.Y == y && o.Level == level {
			return i, true
		}
	}
	return 0, false
}

// S2: two global refines (16 octants), mark the octant at anchor (0,0)
// level 2 with marker=2 — a genuine two-level request, not the
// already-balanced one-level case octree's equivalent test used to use —
// then Adapt with balanceCodim=1 twice (Adapt only realises one level of
// refine per call): the two face-adjacent neighbours across (2^28,0) and
// (0,2^28) must refine once each to stay within one level of the marked
// octant's eventual level 4, giving 13+4+4+16=37 octants.
func TestAdaptS2(t *testing.T) {
	pt, err := New(dim.Two, transport.Null{})
	require.NoError(t, err)
	require.NoError(t, pt.AdaptGlobalRefine())
	require.NoError(t, pt.AdaptGlobalRefine())
	require.Equal(t, 16, pt.GetNumOctants())

	idx := indexAtAnchorS2(t, pt, 0, 0, 2)
	require.NoError(t, pt.SetMarker(idx, 2))
	pt.SetBalanceCodimension(1)
	require.NoError(t, pt.Adapt())
	require.NoError(t, pt.Adapt())

	require.Equal(t, 37, pt.GetNumOctants())
	const half = uint32(1) << 28
	_, eastStillLevel2 := findAnchorS2(t, pt, half, 0, 2)
	require.False(t, eastStillLevel2, "east neighbour must have refined to satisfy 2:1 balance")
	_, northStillLevel2 := findAnchorS2(t, pt, 0, half, 2)
	require.False(t, northStillLevel2, "north neighbour must have refined to satisfy 2:1 balance")
}

