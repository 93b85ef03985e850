package bloom

const ghostDomainV1 = 0xB0

// InitV1 initializes a zero-filled region with a HeaderV1 sized for
// elementCount Morton codes at bitsPerElement density.
//
// The caller must allocate region with at least RegionBytesV1(mBits), where:
//
//	mBits = uint32(bitsPerElement * elementCount)
func InitV1(region []byte, elementCount uint64, bitsPerElement uint64, k uint8) error {
	if elementCount == 0 || bitsPerElement == 0 {
		return ErrBadMBits
	}
	if err := CheckBPE(bitsPerElement); err != nil {
		return err
	}
	mBits := MBitsSafeCast(MBitsV1(elementCount, bitsPerElement))
	if mBits == 0 {
		return ErrMBitsOverflow
	}
	bitsetBytes := BitsetBytesV1(mBits)
	need := uint64(HeaderBytes) + uint64(bitsetBytes)
	if uint64(len(region)) < need {
		return ErrBadRegionSize
	}

	clear(region[:need])

	return EncodeHeaderV1(region, HeaderV1{
		BitOrder:  BitOrderLSB0,
		K:         k,
		MBits:     mBits,
		NInserted: 0,
	})
}

// InsertV1 inserts the Morton code morton and increments NInserted.
func InsertV1(region []byte, morton uint64) error {
	h, ok, err := DecodeHeaderV1(region)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotInitialized
	}

	bitset, err := bitsetOf(region, h)
	if err != nil {
		return err
	}

	h1, h2 := hashPairV1(morton)
	setBitsLSB0(bitset, uint64(h.MBits), h.K, h1, h2)

	h.NInserted++
	return EncodeHeaderV1(region, h)
}

// MaybeContainsV1 checks membership for morton.
//
// Returns (false,nil) if the filter says "definitely not present".
// Returns (true,nil) if the filter says "maybe present".
func MaybeContainsV1(region []byte, morton uint64) (bool, error) {
	h, ok, err := DecodeHeaderV1(region)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrNotInitialized
	}

	bitset, err := bitsetOf(region, h)
	if err != nil {
		return false, err
	}

	h1, h2 := hashPairV1(morton)
	return testBitsLSB0(bitset, uint64(h.MBits), h.K, h1, h2), nil
}

func bitsetOf(region []byte, h HeaderV1) ([]byte, error) {
	bitsetBytes := BitsetBytesV1(h.MBits)
	off := uint64(HeaderBytes)
	end := off + uint64(bitsetBytes)
	if uint64(len(region)) < end {
		return nil, ErrBadRegionSize
	}
	return region[off:end], nil
}

// hashPairV1 derives two independent hashes of morton via splitmix64, cheap
// enough to run on every neighbour-Morton probe during balance21 — unlike
// the source's SHA-256-over-32-bytes, which assumed element hashing was
// already off the hot path (it ran once per inserted log value, not once
// per candidate neighbour).
func hashPairV1(morton uint64) (h1, h2 uint64) {
	h1 = splitmix64(morton ^ uint64(ghostDomainV1))
	h2 = splitmix64(h1)
	if h2 == 0 {
		h2 = 1
	}
	return h1, h2
}

func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

func setBitsLSB0(bitset []byte, mBits uint64, k uint8, h1, h2 uint64) {
	for i := uint64(0); i < uint64(k); i++ {
		j := (h1 + i*h2) % mBits
		byteIdx := j >> 3
		bit := uint8(j & 7)
		bitset[byteIdx] |= 1 << bit
	}
}

func testBitsLSB0(bitset []byte, mBits uint64, k uint8, h1, h2 uint64) bool {
	for i := uint64(0); i < uint64(k); i++ {
		j := (h1 + i*h2) % mBits
		byteIdx := j >> 3
		bit := uint8(j & 7)
		if bitset[byteIdx]&(1<<bit) == 0 {
			return false
		}
	}
	return true
}
