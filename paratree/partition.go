package paratree

import (
	"errors"

	"github.com/adaptivemesh/go-pablo/pabloerrors"
	"github.com/adaptivemesh/go-pablo/transport"
	"github.com/adaptivemesh/go-pablo/wire"
)

// allGatherUint64 gathers one uint64 per rank to rank 0 and broadcasts the
// full vector back to every rank, using plain Send/Recv — the transport
// layer has no native allgather, only AllReduceAnd/Barrier, so bookkeeping
// recomputation builds it from the primitives spec.md §6 actually names.
func (pt *ParallelTree) allGatherUint64(v uint64) ([]uint64, error) {
	if pt.size == 1 {
		return []uint64{v}, nil
	}

	cid, err := pt.nextCollectiveID()
	if err != nil {
		return nil, errors.Join(pabloerrors.ErrTransportFailed, err)
	}
	tag := func(src, dst int) transport.MessageTag {
		return transport.MessageTag{SourceRank: src, DestRank: dst, CollectiveID: cid, ByteLength: 8}
	}

	if pt.rank != 0 {
		out := wire.NewBuffer()
		out.WriteUint64(v)
		if err := pt.transport.Send(0, tag(pt.rank, 0), out.Bytes()); err != nil {
			return nil, errors.Join(pabloerrors.ErrTransportFailed, err)
		}
		data, err := pt.transport.Recv(0, tag(0, pt.rank))
		if err != nil {
			return nil, errors.Join(pabloerrors.ErrTransportFailed, err)
		}
		table, err := wire.NewBufferFromBytes(data).ReadPartitionTable()
		if err != nil {
			return nil, errors.Join(pabloerrors.ErrTransportFailed, err)
		}
		return table, nil
	}

	values := make([]uint64, pt.size)
	values[0] = v
	for r := 1; r < pt.size; r++ {
		data, err := pt.transport.Recv(r, tag(r, 0))
		if err != nil {
			return nil, errors.Join(pabloerrors.ErrTransportFailed, err)
		}
		rv, err := wire.NewBufferFromBytes(data).ReadUint64()
		if err != nil {
			return nil, errors.Join(pabloerrors.ErrTransportFailed, err)
		}
		values[r] = rv
	}

	out := wire.NewBuffer()
	if err := out.WritePartitionTable(values); err != nil {
		return nil, err
	}
	for r := 1; r < pt.size; r++ {
		if err := pt.transport.Send(r, tag(0, r), out.Bytes()); err != nil {
			return nil, errors.Join(pabloerrors.ErrTransportFailed, err)
		}
	}
	return values, nil
}

// broadcastBytes sends payload from rank 0 to every other rank and returns
// it unchanged on every rank, the byte-oriented counterpart to
// allGatherUint64's broadcast half — used for fleet-wide identifiers that
// only rank 0 generates (the fleet UUID), never aggregated per-rank.
func (pt *ParallelTree) broadcastBytes(payload []byte) ([]byte, error) {
	if pt.size == 1 {
		return payload, nil
	}

	cid, err := pt.nextCollectiveID()
	if err != nil {
		return nil, errors.Join(pabloerrors.ErrTransportFailed, err)
	}
	tag := func(src, dst int) transport.MessageTag {
		return transport.MessageTag{SourceRank: src, DestRank: dst, CollectiveID: cid, ByteLength: len(payload)}
	}

	if pt.rank != 0 {
		data, err := pt.transport.Recv(0, tag(0, pt.rank))
		if err != nil {
			return nil, errors.Join(pabloerrors.ErrTransportFailed, err)
		}
		return wire.NewBufferFromBytes(data).ReadBytes()
	}

	for r := 1; r < pt.size; r++ {
		out := wire.NewBuffer()
		out.WriteBytes(payload)
		if err := pt.transport.Send(r, tag(0, r), out.Bytes()); err != nil {
			return nil, errors.Join(pabloerrors.ErrTransportFailed, err)
		}
	}
	return payload, nil
}

// emptyPartitionRange marks a partitionRangeGlobalIdx entry for a rank that
// owns no octants (only possible as a prefix of ranks 0..k, since running
// counts never decrease). It must be distinguishable from "owns real global
// idx 0," which the literal 0 can't do once a leading rank is empty.
const emptyPartitionRange = ^uint64(0)

// recomputeBookkeeping implements spec.md §4.E.2 step 4: gathers every
// rank's local octant count, first-descendant and last-descendant Morton,
// and max level, then derives partitionRangeGlobalIdx (inclusive upper
// global index per rank), partitionFirstDesc, partitionLastDesc,
// globalNumOctants and maxDepthGlobal.
func (pt *ParallelTree) recomputeBookkeeping() error {
	localCount := uint64(pt.local.NumOctants())
	counts, err := pt.allGatherUint64(localCount)
	if err != nil {
		return err
	}

	table := make([]uint64, pt.size)
	var running uint64
	for r, c := range counts {
		running += c
		if running == 0 {
			table[r] = emptyPartitionRange
		} else {
			table[r] = running - 1
		}
	}
	pt.partitionRangeGlobalIdx = table
	pt.globalNumOctants = running

	var firstMorton, lastMorton uint64
	octants := pt.local.Octants()
	if len(octants) > 0 {
		firstMorton = octants[0].BuildFirstDesc().ComputeMorton()
		lastMorton = octants[len(octants)-1].BuildLastDesc().ComputeMorton()
	}
	firsts, err := pt.allGatherUint64(firstMorton)
	if err != nil {
		return err
	}
	lasts, err := pt.allGatherUint64(lastMorton)
	if err != nil {
		return err
	}
	pt.partitionFirstDesc = firsts
	pt.partitionLastDesc = lasts

	var localMax uint8
	for _, o := range octants {
		if o.Level > localMax {
			localMax = o.Level
		}
	}
	levels, err := pt.allGatherUint64(uint64(localMax))
	if err != nil {
		return err
	}
	var globalMax uint8
	for _, lvl := range levels {
		if uint8(lvl) > globalMax {
			globalMax = uint8(lvl)
		}
	}
	pt.maxDepthGlobal = globalMax

	return nil
}

// GetGlobalIdx returns the global index of local octant i, per spec.md
// §4.E.1: partitionRangeGlobalIdx[r-1] + 1 + i, with [-1] = -1.
func (pt *ParallelTree) GetGlobalIdx(i int) (uint64, error) {
	if i < 0 || i >= pt.local.NumOctants() {
		return 0, pabloerrors.ErrIndexOutOfRange
	}
	return uint64(pt.prevUpper() + 1 + int64(i)), nil
}

// GetLocalIdx returns the local index on rank that holds globalIdx.
func (pt *ParallelTree) GetLocalIdx(globalIdx uint64, rank int) (int, error) {
	if rank < 0 || rank >= pt.size {
		return 0, pabloerrors.ErrIndexOutOfRange
	}
	if pt.partitionRangeGlobalIdx[rank] == emptyPartitionRange {
		return 0, pabloerrors.ErrIndexOutOfRange
	}
	prevUpper := int64(-1)
	if rank > 0 {
		prevUpper = pt.resolvedUpper(rank - 1)
	}
	local := int64(globalIdx) - prevUpper - 1
	if local < 0 {
		return 0, pabloerrors.ErrIndexOutOfRange
	}
	return int(local), nil
}

func (pt *ParallelTree) prevUpper() int64 {
	if pt.rank == 0 {
		return -1
	}
	return pt.resolvedUpper(pt.rank - 1)
}

// resolvedUpper returns the inclusive upper global index owned by rank r or
// any earlier rank, skipping back over empty leading ranks, or -1 if r and
// everything before it is empty.
func (pt *ParallelTree) resolvedUpper(r int) int64 {
	for ; r >= 0; r-- {
		if pt.partitionRangeGlobalIdx[r] != emptyPartitionRange {
			return int64(pt.partitionRangeGlobalIdx[r])
		}
	}
	return -1
}

// GlobalNumOctants returns the total octant count across the fleet.
func (pt *ParallelTree) GlobalNumOctants() uint64 { return pt.globalNumOctants }

// MaxDepthGlobal returns the deepest level present on any rank.
func (pt *ParallelTree) MaxDepthGlobal() uint8 { return pt.maxDepthGlobal }

// PartitionRangeGlobalIdx returns a copy of the current partition table.
func (pt *ParallelTree) PartitionRangeGlobalIdx() []uint64 {
	return append([]uint64(nil), pt.partitionRangeGlobalIdx...)
}
