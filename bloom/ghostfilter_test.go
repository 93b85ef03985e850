package bloom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGhostFilterInsertAndQuery(t *testing.T) {
	elementCount := uint64(128)
	bitsPerElement := uint64(10)
	k := uint8(7)

	mBits := MBitsSafeCast(MBitsV1(elementCount, bitsPerElement))
	require.NotZero(t, mBits)
	total := RegionBytesV1(mBits)

	region := make([]byte, total)
	require.NoError(t, InitV1(region, elementCount, bitsPerElement, k))

	h, ok, err := DecodeHeaderV1(region)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, BitOrderLSB0, h.BitOrder)
	require.Equal(t, k, h.K)
	require.NotZero(t, h.MBits)
	require.Equal(t, uint32(0), h.NInserted)

	// Empty filter is definitely-not-present for any Morton code.
	ok0, err := MaybeContainsV1(region, 0xA5A5A5A5A5A5A5A5)
	require.NoError(t, err)
	require.False(t, ok0)

	require.NoError(t, InsertV1(region, 0xA5A5A5A5A5A5A5A5))

	ok0, err = MaybeContainsV1(region, 0xA5A5A5A5A5A5A5A5)
	require.NoError(t, err)
	require.True(t, ok0)

	for i := uint64(0); i < 10; i++ {
		require.NoError(t, InsertV1(region, i))
	}
	for i := uint64(0); i < 10; i++ {
		ok, err := MaybeContainsV1(region, i)
		require.NoError(t, err)
		require.True(t, ok)
	}

	h2, ok, err := DecodeHeaderV1(region)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(1+10), h2.NInserted)
}

func TestGhostFilterRejectsUninitializedRegion(t *testing.T) {
	elementCount := uint64(8)
	bitsPerElement := uint64(8)

	mBits := MBitsSafeCast(MBitsV1(elementCount, bitsPerElement))
	require.NotZero(t, mBits)
	total := RegionBytesV1(mBits)

	region := make([]byte, total) // remains all-zero

	_, err := MaybeContainsV1(region, 42)
	require.ErrorIs(t, err, ErrNotInitialized)

	err = InsertV1(region, 42)
	require.ErrorIs(t, err, ErrNotInitialized)
}
