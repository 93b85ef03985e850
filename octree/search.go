package octree

import (
	"github.com/adaptivemesh/go-pablo/dim"
	"github.com/adaptivemesh/go-pablo/octant"
)

// findLeafContaining returns the index in list (sorted by octant.Less) of
// the leaf whose cube contains the finest-grid point encoded by target,
// and true. Relies on the Morton-cube property: every point inside an
// aligned power-of-two cube has a Morton code in the contiguous range
// [own Morton, last-descendant Morton], and leaves are sorted by their own
// Morton ascending, so a binary search for the rightmost entry whose own
// Morton is <= target and whose last-descendant Morton is >= target finds
// the unique covering leaf. Returns ok=false if nothing covers target
// (target falls outside list's range, or in a gap during merge scratch
// state — never true of a consistent local tree).
func findLeafContaining(list []octant.Octant, target uint64) (idx int, ok bool) {
	lo, hi := 0, len(list)
	for lo < hi {
		mid := (lo + hi) / 2
		if list[mid].ComputeMorton() <= target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	idx = lo - 1
	if idx < 0 {
		return 0, false
	}
	last := list[idx].BuildLastDesc().ComputeMorton()
	if target <= last {
		return idx, true
	}
	return 0, false
}

// ghostBloomMayCover conservatively reports whether some ghost could cover
// the finest-grid point code. The filter only ever holds a ghost's own
// anchor Morton (rebuildGhostBloom), and a ghost coarser than code's probe
// granularity has an anchor equal to code's ancestor-cube anchor at the
// ghost's own level, not to code itself — so a single query against the raw
// code would miss every coarser covering ghost. Walking code's ancestor
// anchor from MaxLevel down to 0 and testing each against the filter
// restores the no-false-negative property Bloom filters are meant to have.
func (t *LocalTree) ghostBloomMayCover(code uint64) bool {
	x, y, z := decodeAnchor(t.D, code)
	probe := octant.Octant{D: t.D, Level: t.D.MaxLevel(), X: x, Y: y, Z: z}
	for {
		if t.ghostBloom.MaybeContains(probe.ComputeMorton()) {
			return true
		}
		if probe.Level == 0 {
			return false
		}
		probe = probe.BuildFather()
	}
}

func decodeAnchor(d dim.Dim, code uint64) (x, y, z uint32) {
	if d == dim.Three {
		return octant.DecodeMorton3(code)
	}
	x, y = octant.DecodeMorton2(code)
	return x, y, 0
}

// NeighbourRef names one leaf found by FindNeighbours/enforceBalanceAt:
// its index within whichever slice it lives in, and whether that slice is
// the ghost layer rather than the local octants.
type NeighbourRef struct {
	Index   int
	IsGhost bool
}

// locateCandidates resolves a set of candidate Morton codes (already sized
// to the probe granularity by an octant.Compute*Morton helper) against
// both octants and ghosts, deduplicating references to the same covering
// leaf across multiple candidate codes (this happens whenever the real
// leaf is coarser than the probe size).
func (t *LocalTree) locateCandidates(codes []uint64) []NeighbourRef {
	seen := make(map[NeighbourRef]bool, len(codes))
	var out []NeighbourRef
	for _, code := range codes {
		if idx, ok := findLeafContaining(t.octants, code); ok {
			ref := NeighbourRef{Index: idx}
			if !seen[ref] {
				seen[ref] = true
				out = append(out, ref)
			}
			continue
		}
		if t.ghostBloom != nil && !t.ghostBloomMayCover(code) {
			continue
		}
		if idx, ok := findLeafContaining(t.ghosts, code); ok {
			ref := NeighbourRef{Index: idx, IsGhost: true}
			if !seen[ref] {
				seen[ref] = true
				out = append(out, ref)
			}
		}
	}
	return out
}

// OctantsCoveringCodes resolves codes against local octants only (never
// ghosts) and returns the deduplicated set of covering leaves, in the
// order their codes were presented. paratree uses this to answer a peer
// rank's ghost-halo request: the peer sends the boundary Morton codes it
// needs covered, this rank resolves them against its own authoritative
// octants.
func (t *LocalTree) OctantsCoveringCodes(codes []uint64) []octant.Octant {
	seen := make(map[int]bool, len(codes))
	var out []octant.Octant
	for _, code := range codes {
		idx, ok := findLeafContaining(t.octants, code)
		if !ok || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, t.octants[idx])
	}
	return out
}

// BoundaryCandidateCodes returns, for every local octant, the min-size
// neighbour Morton codes across every face (and, for codim>1, every edge/
// node) up to maxDepth — the full set of points a peer rank's octants
// would need to cover for this octant's neighbourhood to be resolvable.
// Used to drive ghost-halo exchange: codes landing outside this rank's own
// partition range identify which peer(s) must be asked for ghosts.
func (t *LocalTree) BoundaryCandidateCodes(maxDepth uint8) []uint64 {
	codim := t.balanceCodim
	var codes []uint64
	for _, o := range t.octants {
		for c := 1; c <= codim; c++ {
			n := incidenceCount(o.D, c)
			for iface := 0; iface < n; iface++ {
				codes = append(codes, candidateCodes(o, iface, c, maxDepth, false)...)
			}
		}
	}
	return codes
}
