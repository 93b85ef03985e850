package bloom

// bitsPerGhost and probesPerGhost are the fixed density/probe-count this
// package uses for ghost layers: ~10 bits/element and k=7 probes gives a
// false-positive rate under 1% for any reasonably sized halo, the same
// target density the source picks for its own log-value filters.
const (
	bitsPerGhost   = 10
	probesPerGhost = 7
)

// MortonFilter is the ergonomic, in-memory handle octree reaches for: build
// one from a rank's current ghost layer, then ask it whether a candidate
// neighbour Morton code might be a ghost before paying for the binary
// search in the sorted ghost slice.
type MortonFilter struct {
	region []byte
}

// NewMortonFilter builds a filter sized for the given ghost mortons and
// inserts all of them. Returns a nil filter (always "maybe") if mortons is
// empty, since there is nothing to usefully filter.
func NewMortonFilter(mortons []uint64) *MortonFilter {
	if len(mortons) == 0 {
		return nil
	}

	mBits := MBitsSafeCast(MBitsV1(uint64(len(mortons)), bitsPerGhost))
	if mBits == 0 {
		return nil
	}
	region := make([]byte, RegionBytesV1(mBits))
	if err := InitV1(region, uint64(len(mortons)), bitsPerGhost, probesPerGhost); err != nil {
		return nil
	}
	f := &MortonFilter{region: region}
	for _, m := range mortons {
		f.Insert(m)
	}
	return f
}

// Insert adds morton to the filter.
func (f *MortonFilter) Insert(morton uint64) {
	if f == nil {
		return
	}
	_ = InsertV1(f.region, morton)
}

// MaybeContains reports whether morton might be in the filter. A nil
// receiver always answers true, so callers can use a nil *MortonFilter to
// mean "no prefilter available, always fall back to the real search".
func (f *MortonFilter) MaybeContains(morton uint64) bool {
	if f == nil {
		return true
	}
	ok, err := MaybeContainsV1(f.region, morton)
	if err != nil {
		return true
	}
	return ok
}
