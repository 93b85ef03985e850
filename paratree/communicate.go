package paratree

import (
	"errors"

	"github.com/adaptivemesh/go-pablo/pabloerrors"
	"github.com/adaptivemesh/go-pablo/payload"
	"github.com/adaptivemesh/go-pablo/wire"
)

// Communicate implements spec.md §4.E.5: for every peer this rank borders,
// pack the payload of the local octants that peer's ghosts shadow, and
// unpack what comes back into adapter's ghost payload shadow array in the
// order ghosts are presented. Returns a GhostIndex that maps every ghost
// slot to itself.
func (pt *ParallelTree) Communicate(adapter payload.CommAdapter) (payload.GhostIndex, error) {
	if pt.size == 1 {
		return payload.GhostIndex{PriorSlot: identitySlots(pt.local.NumGhosts())}, nil
	}

	for r := 0; r < pt.size; r++ {
		if r == pt.rank {
			continue
		}
		indices := pt.boundaryOctantsFor(r)
		buf := wire.NewBuffer()
		buf.WriteUint64(uint64(len(indices)))
		for _, i := range indices {
			if err := adapter.Gather(buf, i); err != nil {
				return payload.GhostIndex{}, err
			}
		}
		if err := pt.sendTagged(r, buf.Bytes()); err != nil {
			return payload.GhostIndex{}, err
		}
	}

	ghostCursor := 0
	for r := 0; r < pt.size; r++ {
		if r == pt.rank {
			continue
		}
		data, err := pt.recvTagged(r)
		if err != nil {
			return payload.GhostIndex{}, err
		}
		buf := wire.NewBufferFromBytes(data)
		n, err := buf.ReadUint64()
		if err != nil {
			return payload.GhostIndex{}, errors.Join(pabloerrors.ErrTransportFailed, err)
		}
		for k := uint64(0); k < n; k++ {
			if ghostCursor >= pt.local.NumGhosts() {
				return payload.GhostIndex{}, pabloerrors.ErrInvariantViolation
			}
			if err := adapter.Scatter(buf, ghostCursor); err != nil {
				return payload.GhostIndex{}, err
			}
			ghostCursor++
		}
	}

	return payload.GhostIndex{PriorSlot: identitySlots(pt.local.NumGhosts())}, nil
}

// boundaryOctantsFor returns the local indices whose neighbourhood a ghost
// rebuild previously resolved against rank r — approximated here as every
// local octant carrying a process-boundary flag, which rebuildGhostHalo
// only ever sets on octants that answered some peer's request.
func (pt *ParallelTree) boundaryOctantsFor(r int) []int {
	var out []int
	for i, o := range pt.local.Octants() {
		if o.Flags.PBoundaryFace != 0 {
			out = append(out, i)
		}
	}
	return out
}

func identitySlots(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
