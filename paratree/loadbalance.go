package paratree

import (
	"errors"
	"sort"

	"github.com/adaptivemesh/go-pablo/octant"
	"github.com/adaptivemesh/go-pablo/pabloerrors"
	"github.com/adaptivemesh/go-pablo/payload"
	"github.com/adaptivemesh/go-pablo/transport"
	"github.com/adaptivemesh/go-pablo/wire"
)

// LoadBalance redistributes octants to equalize the per-rank count in
// uniform mode (spec.md §4.E.4) without touching any payload.
func (pt *ParallelTree) LoadBalance() error {
	return pt.loadBalance(nil, 0)
}

// LoadBalanceWithAdapter redistributes octants in family-preserving mode
// (no family within levels of maxDepthGlobal is split across ranks),
// migrating payload through adapter alongside each moved octant.
func (pt *ParallelTree) LoadBalanceWithAdapter(adapter payload.LBAdapter, levels int) error {
	return pt.loadBalance(adapter, levels)
}

func (pt *ParallelTree) loadBalance(adapter payload.LBAdapter, levels int) error {
	pt.log.Infow("loadBalance: start", "rank", pt.rank, "local_octants", pt.local.NumOctants())

	target := pt.uniformTargetPartition()
	if levels > 0 {
		nudged, err := pt.familyPreservingTargets(target, levels)
		if err != nil {
			return err
		}
		target = nudged
	}

	oldLower := pt.prevUpper() + 1
	oldUpper := oldLower + int64(pt.local.NumOctants()) - 1

	sendPlan := pt.computeSendPlan(oldLower, oldUpper, target)

	received, err := pt.exchangeOctants(sendPlan, adapter)
	if err != nil {
		return err
	}

	kept := pt.octantsOutsideSendRanges(sendPlan)
	merged := append(kept, received...)
	sort.Slice(merged, func(i, j int) bool { return octant.Less(merged[i], merged[j]) })
	pt.local.SetOctants(merged)

	if err := pt.recomputeBookkeeping(); err != nil {
		return err
	}
	if err := pt.rebuildGhostHalo(); err != nil {
		return err
	}
	pt.epoch++

	pt.log.Infow("loadBalance: done", "rank", pt.rank, "local_octants", pt.local.NumOctants())
	return nil
}

// uniformTargetPartition returns new_partition[r] = ((r+1)*G)/P - 1 per
// spec.md §4.E.4's uniform mode.
func (pt *ParallelTree) uniformTargetPartition() []uint64 {
	g := pt.globalNumOctants
	target := make([]uint64, pt.size)
	for r := 0; r < pt.size; r++ {
		upper := (uint64(r+1) * g) / uint64(pt.size)
		if upper == 0 {
			target[r] = 0
		} else {
			target[r] = upper - 1
		}
	}
	return target
}

// familyPreservingTargets nudges each boundary in target forward (toward the
// higher rank) so that no family within levels of maxDepthGlobal is split
// across ranks by the new partition, per spec.md §4.E.4's family-preserving
// mode. Each boundary falls inside exactly one rank's old (pre-balance)
// octant range; that rank is the only one holding the two adjacent octants
// needed to tell whether the cut lands inside a family (BuildFather
// equality), so every rank inspects only the boundaries it owns and the
// owners' nudges are merged by resolveBoundaryProposals.
func (pt *ParallelTree) familyPreservingTargets(target []uint64, levels int) ([]uint64, error) {
	if pt.size == 1 {
		return target, nil
	}

	floor := pt.familyFloorLevel(levels)

	proposal := append([]uint64(nil), target...)
	for b := 0; b < pt.size-1; b++ {
		if pt.ownerOfOldGlobalIdx(target[b]) != pt.rank {
			continue
		}
		if nudged, ok := pt.nudgeBoundaryForFamily(target[b], floor); ok {
			proposal[b] = nudged
		}
	}

	return pt.resolveBoundaryProposals(target, proposal)
}

// familyFloorLevel returns the shallowest level at which the family check
// applies: only families at or below maxDepthGlobal-levels are protected,
// per spec.md §4.E.4's "within levels of maxDepthGlobal" qualifier.
func (pt *ParallelTree) familyFloorLevel(levels int) uint8 {
	if levels <= 0 {
		return pt.maxDepthGlobal
	}
	if uint8(levels) >= pt.maxDepthGlobal {
		return 0
	}
	return pt.maxDepthGlobal - uint8(levels)
}

// ownerOfOldGlobalIdx returns the rank that currently (pre-balance) holds
// globalIdx, computed from partitionRangeGlobalIdx — every rank already
// holds an identical copy of this table, so every rank reaches the same
// answer without further communication.
func (pt *ParallelTree) ownerOfOldGlobalIdx(globalIdx uint64) int {
	for r, upper := range pt.partitionRangeGlobalIdx {
		if upper == emptyPartitionRange {
			continue
		}
		if globalIdx <= upper {
			return r
		}
	}
	return pt.size - 1
}

// nudgeBoundaryForFamily checks whether the octant at boundary and its
// immediate successor (both held locally, since the caller already
// confirmed this rank owns boundary) share a father at a protected level;
// if so it walks forward over the rest of that family and returns the new
// boundary past its last member. A boundary that already sits on this
// rank's last local octant has nowhere to nudge to and is left alone.
func (pt *ParallelTree) nudgeBoundaryForFamily(boundary uint64, floor uint8) (uint64, bool) {
	localIdx, err := pt.GetLocalIdx(boundary, pt.rank)
	if err != nil {
		return boundary, false
	}
	octants := pt.local.Octants()
	if localIdx+1 >= len(octants) {
		return boundary, false
	}

	a, b := octants[localIdx], octants[localIdx+1]
	if a.Level < floor {
		return boundary, false
	}
	if !a.BuildFather().Equal(b.BuildFather()) {
		return boundary, false
	}

	father := a.BuildFather()
	end := localIdx + 1
	for end+1 < len(octants) && octants[end+1].BuildFather().Equal(father) {
		end++
	}
	newGlobal, err := pt.GetGlobalIdx(end)
	if err != nil {
		return boundary, false
	}
	return newGlobal, true
}

// resolveBoundaryProposals gathers every rank's proposal vector to rank 0,
// keeps each boundary slot from the rank that owns it under the old
// partition (every rank computes ownership identically from original, so
// this is unambiguous), clamps the result to stay non-decreasing so
// computeSendPlan never sees an inverted range, and broadcasts the merged
// table back — the same gather-to-rank-0-then-broadcast shape as
// allGatherUint64, generalized from a scalar to a vector per rank.
func (pt *ParallelTree) resolveBoundaryProposals(original, proposal []uint64) ([]uint64, error) {
	tag := func(src, dst int) transport.MessageTag {
		return transport.MessageTag{SourceRank: src, DestRank: dst, ByteLength: 8 * len(proposal)}
	}

	if pt.rank != 0 {
		out := wire.NewBuffer()
		if err := out.WritePartitionTable(proposal); err != nil {
			return nil, err
		}
		if err := pt.transport.Send(0, tag(pt.rank, 0), out.Bytes()); err != nil {
			return nil, errors.Join(pabloerrors.ErrTransportFailed, err)
		}
		data, err := pt.transport.Recv(0, tag(0, pt.rank))
		if err != nil {
			return nil, errors.Join(pabloerrors.ErrTransportFailed, err)
		}
		return wire.NewBufferFromBytes(data).ReadPartitionTable()
	}

	proposals := make([][]uint64, pt.size)
	proposals[0] = proposal
	for r := 1; r < pt.size; r++ {
		data, err := pt.transport.Recv(r, tag(r, 0))
		if err != nil {
			return nil, errors.Join(pabloerrors.ErrTransportFailed, err)
		}
		v, err := wire.NewBufferFromBytes(data).ReadPartitionTable()
		if err != nil {
			return nil, errors.Join(pabloerrors.ErrTransportFailed, err)
		}
		proposals[r] = v
	}

	merged := make([]uint64, pt.size)
	for b := 0; b < pt.size-1; b++ {
		owner := pt.ownerOfOldGlobalIdx(original[b])
		merged[b] = proposals[owner][b]
	}
	merged[pt.size-1] = original[pt.size-1]
	for b := 1; b < pt.size; b++ {
		if merged[b] < merged[b-1] {
			merged[b] = merged[b-1]
		}
	}

	out := wire.NewBuffer()
	if err := out.WritePartitionTable(merged); err != nil {
		return nil, err
	}
	for r := 1; r < pt.size; r++ {
		if err := pt.transport.Send(r, tag(0, r), out.Bytes()); err != nil {
			return nil, errors.Join(pabloerrors.ErrTransportFailed, err)
		}
	}
	return merged, nil
}

// computeSendPlan figures out, for each other rank, the contiguous global
// index range of this rank's local octants that must move there under the
// new partition table.
func (pt *ParallelTree) computeSendPlan(oldLower, oldUpper int64, target []uint64) map[int][2]int64 {
	plan := make(map[int][2]int64)
	if oldUpper < oldLower {
		return plan
	}
	for r := 0; r < pt.size; r++ {
		lo := int64(0)
		if r > 0 {
			lo = int64(target[r-1]) + 1
		}
		hi := int64(target[r])
		start := max64(lo, oldLower)
		end := min64(hi, oldUpper)
		if start > end {
			continue
		}
		if r == pt.rank {
			continue
		}
		plan[r] = [2]int64{start - oldLower, end - oldLower}
	}
	return plan
}

func (pt *ParallelTree) octantsOutsideSendRanges(plan map[int][2]int64) []octant.Octant {
	octants := pt.local.Octants()
	sent := make([]bool, len(octants))
	for _, rng := range plan {
		for i := rng[0]; i <= rng[1]; i++ {
			if i >= 0 && int(i) < len(sent) {
				sent[i] = true
			}
		}
	}
	out := make([]octant.Octant, 0, len(octants))
	for i, o := range octants {
		if !sent[i] {
			out = append(out, o)
		}
	}
	return out
}

// exchangeOctants ships the local index ranges named in plan to their
// target ranks. Every rank sends one batch (possibly empty) to every
// other rank and receives one from each, so no separate negotiation round
// is needed.
func (pt *ParallelTree) exchangeOctants(plan map[int][2]int64, adapter payload.LBAdapter) ([]octant.Octant, error) {
	octants := pt.local.Octants()

	for r := 0; r < pt.size; r++ {
		if r == pt.rank {
			continue
		}
		rng, ok := plan[r]
		var batch []octant.Octant
		if ok {
			batch = octants[rng[0] : rng[1]+1]
		}
		buf := wire.NewBuffer()
		if err := buf.WriteOctants(batch); err != nil {
			return nil, err
		}
		if adapter != nil && ok {
			if err := adapter.Gather(buf, int(rng[0]), int(rng[1]+1)); err != nil {
				return nil, err
			}
		}
		if err := pt.sendTagged(r, buf.Bytes()); err != nil {
			return nil, err
		}
	}

	var received []octant.Octant
	for r := 0; r < pt.size; r++ {
		if r == pt.rank {
			continue
		}
		data, err := pt.recvTagged(r)
		if err != nil {
			return nil, err
		}
		buf := wire.NewBufferFromBytes(data)
		batch, err := buf.ReadOctants()
		if err != nil {
			return nil, errors.Join(pabloerrors.ErrTransportFailed, err)
		}
		if adapter != nil && len(batch) > 0 {
			if err := adapter.Scatter(buf); err != nil {
				return nil, err
			}
		}
		received = append(received, batch...)
	}
	return received, nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
