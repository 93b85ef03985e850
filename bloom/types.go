// Package bloom implements the optional ghost-Morton membership prefilter
// SPEC_FULL.md §4.L adds ahead of octree's binary search in ghosts: "might
// this Morton code be a ghost" before paying for the real search. It is
// adapted from the source's own 4-way, 32-byte-element bloom package (kept
// as a persisted index region alongside massif blobs) down to what this
// domain actually needs: one filter, over 8-byte Morton codes, rebuilt from
// scratch in memory every time the ghost halo is rebuilt rather than
// persisted to disk.
package bloom

import "errors"

const (
	// HeaderBytes is the fixed header size for the V1 layout.
	HeaderBytes = 16

	MagicV1        = "GBL1"
	VersionV1 uint8 = 1

	// BitOrderLSB0 means bit 0 is the least-significant bit of byte 0.
	BitOrderLSB0 uint8 = 0
)

var (
	ErrBadRegionSize  = errors.New("bloom: region buffer too small")
	ErrNotInitialized = errors.New("bloom: header not initialized")

	ErrBadMagic    = errors.New("bloom: header magic invalid")
	ErrBadVersion  = errors.New("bloom: header version invalid")
	ErrBadBitOrder = errors.New("bloom: header bitOrder unsupported")
	ErrBadK        = errors.New("bloom: header k invalid")
	ErrBadMBits    = errors.New("bloom: header mBits invalid")

	ErrMBitsOverflow = errors.New("bloom: mBits overflows supported range")
)

// HeaderV1 describes one filter's sizing and fill, the same fields the
// source keeps per-filter, minus the Filters count (there is only one here).
type HeaderV1 struct {
	BitOrder  uint8
	K         uint8
	MBits     uint32
	NInserted uint32
}
