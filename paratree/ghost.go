package paratree

import (
	"errors"
	"sort"

	"github.com/adaptivemesh/go-pablo/octant"
	"github.com/adaptivemesh/go-pablo/pabloerrors"
	"github.com/adaptivemesh/go-pablo/transport"
	"github.com/adaptivemesh/go-pablo/wire"
)

// rebuildGhostHalo implements spec.md §4.E.3: a two-phase request/response
// exchange over partitionFirstDesc/partitionLastDesc. Every rank first
// figures out, for each of its own boundary candidate Morton codes, which
// peer rank's partition range covers it; it asks that peer for the octant
// covering the code, and answers the same request from every other peer.
func (pt *ParallelTree) rebuildGhostHalo() error {
	if pt.size == 1 {
		pt.local.SetGhosts(nil)
		return nil
	}

	requestTag := func(src, dst int) transport.MessageTag {
		return transport.MessageTag{SourceRank: src, DestRank: dst}
	}
	responseTag := func(src, dst int) transport.MessageTag {
		return transport.MessageTag{SourceRank: src, DestRank: dst}
	}

	requests := pt.groupCodesByOwner(pt.local.BoundaryCandidateCodes(pt.maxDepthGlobal))

	for r := 0; r < pt.size; r++ {
		if r == pt.rank {
			continue
		}
		out := wire.NewBuffer()
		if err := out.WritePartitionTable(requests[r]); err != nil {
			return err
		}
		if err := pt.transport.Send(r, requestTag(pt.rank, r), out.Bytes()); err != nil {
			return errors.Join(pabloerrors.ErrTransportFailed, err)
		}
	}

	peerRequests := make(map[int][]uint64, pt.size-1)
	for r := 0; r < pt.size; r++ {
		if r == pt.rank {
			continue
		}
		data, err := pt.transport.Recv(r, requestTag(r, pt.rank))
		if err != nil {
			return errors.Join(pabloerrors.ErrTransportFailed, err)
		}
		codes, err := wire.NewBufferFromBytes(data).ReadPartitionTable()
		if err != nil {
			return errors.Join(pabloerrors.ErrTransportFailed, err)
		}
		peerRequests[r] = codes
	}

	for r := 0; r < pt.size; r++ {
		if r == pt.rank {
			continue
		}
		resolved := pt.local.OctantsCoveringCodes(peerRequests[r])
		out := wire.NewBuffer()
		if err := out.WriteOctants(resolved); err != nil {
			return err
		}
		if err := pt.transport.Send(r, responseTag(pt.rank, r), out.Bytes()); err != nil {
			return errors.Join(pabloerrors.ErrTransportFailed, err)
		}
	}

	var ghosts []octant.Octant
	for r := 0; r < pt.size; r++ {
		if r == pt.rank {
			continue
		}
		data, err := pt.transport.Recv(r, responseTag(r, pt.rank))
		if err != nil {
			return errors.Join(pabloerrors.ErrTransportFailed, err)
		}
		received, err := wire.NewBufferFromBytes(data).ReadOctants()
		if err != nil {
			return errors.Join(pabloerrors.ErrTransportFailed, err)
		}
		for i := range received {
			received[i].Flags.PBoundaryFace = 0xff
		}
		ghosts = append(ghosts, received...)
	}

	sort.Slice(ghosts, func(i, j int) bool { return octant.Less(ghosts[i], ghosts[j]) })
	ghosts = dedupGhosts(ghosts)
	pt.local.SetGhosts(ghosts)
	return nil
}

// groupCodesByOwner buckets codes by which rank's partition range covers
// them, skipping codes that resolve to this rank (no ghost needed — the
// neighbour is already local) or to no rank at all (a domain-boundary
// probe with no real neighbour).
func (pt *ParallelTree) groupCodesByOwner(codes []uint64) map[int][]uint64 {
	buckets := make(map[int]map[uint64]bool, pt.size)
	for _, code := range codes {
		r, ok := pt.ownerRank(code)
		if !ok || r == pt.rank {
			continue
		}
		if buckets[r] == nil {
			buckets[r] = make(map[uint64]bool)
		}
		buckets[r][code] = true
	}
	out := make(map[int][]uint64, pt.size)
	for r := 0; r < pt.size; r++ {
		if r == pt.rank {
			continue
		}
		set := buckets[r]
		list := make([]uint64, 0, len(set))
		for c := range set {
			list = append(list, c)
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		out[r] = list
	}
	return out
}

// ownerRank finds the rank whose [partitionFirstDesc[r], partitionLastDesc[r]]
// range covers code, via binary search over the ascending, non-overlapping
// partitionLastDesc table.
func (pt *ParallelTree) ownerRank(code uint64) (int, bool) {
	lo, hi := 0, len(pt.partitionLastDesc)
	for lo < hi {
		mid := (lo + hi) / 2
		if pt.partitionLastDesc[mid] < code {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= len(pt.partitionLastDesc) {
		return 0, false
	}
	if code < pt.partitionFirstDesc[lo] {
		return 0, false
	}
	return lo, true
}

func dedupGhosts(sorted []octant.Octant) []octant.Octant {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, o := range sorted[1:] {
		if !o.Equal(out[len(out)-1]) {
			out = append(out, o)
		}
	}
	return out
}
