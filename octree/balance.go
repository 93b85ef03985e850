package octree

import "github.com/adaptivemesh/go-pablo/pabloerrors"

// Balance21 implements spec.md §4.D.4: a fixed-point iteration enforcing
// that for every pair of adjacent leaves whose incidence has codimension
// <= balanceCodim, the level difference is at most 1. Candidates are the
// half-size neighbour codes of each incidence, so maxDepth does not change
// which neighbours are probed.
//
// The work set starts as every octant (matching a first call on a freshly
// adapted tree); each round visits the current work set and raises markers
// where a neighbour is more than one level finer. An octant whose marker
// was raised re-enters the next round together with its local neighbours.
// Terminates when a round changes nothing, or fails with
// ErrBalanceNonConvergent after 2*MaxLevel rounds (spec.md §7).
func (t *LocalTree) Balance21(maxDepth uint8) error {
	codim := t.balanceCodim

	work := make([]int, len(t.octants))
	for i := range t.octants {
		work[i] = i
	}

	maxRounds := 2 * int(t.D.MaxLevel())
	for round := 0; len(work) > 0; round++ {
		if round >= maxRounds {
			return pabloerrors.ErrBalanceNonConvergent
		}

		nextSeen := make(map[int]bool)
		var next []int
		enqueue := func(idx int) {
			if !nextSeen[idx] {
				nextSeen[idx] = true
				next = append(next, idx)
			}
		}

		for _, idx := range work {
			if idx < 0 || idx >= len(t.octants) {
				continue
			}
			if t.enforceBalanceAt(idx, codim, maxDepth, enqueue) {
				enqueue(idx)
			}
		}

		work = next
	}
	return nil
}

// enforceBalanceAt raises octant idx's marker until every incident
// neighbour within codim satisfies N.Level+N.Marker <= O.Level+O.Marker+1.
// When idx's marker changes, its local neighbour indices are passed to
// enqueue so they re-enter the work set (ghosts are read-only: their
// level+marker informs our own marker but they are never themselves
// enqueued). Returns whether idx's own marker changed.
func (t *LocalTree) enforceBalanceAt(idx, codim int, maxDepth uint8, enqueue func(int)) bool {
	o := t.octants[idx]
	changed := false
	var touched []int

	for c := 1; c <= codim; c++ {
		n := incidenceCount(t.D, c)
		for iface := 0; iface < n; iface++ {
			codes := candidateCodes(o, iface, c, maxDepth, true)
			for _, ref := range t.locateCandidates(codes) {
				neighbour := t.octants[ref.Index]
				if ref.IsGhost {
					neighbour = t.ghosts[ref.Index]
				}
				want := int(neighbour.Level) + int(neighbour.Marker)
				have := int(o.Level) + int(o.Marker)
				if want > have+1 {
					o.Marker = int8(want - 1 - int(o.Level))
					have = want - 1
					changed = true
				}
				if !ref.IsGhost && ref.Index != idx {
					touched = append(touched, ref.Index)
				}
			}
		}
	}

	if changed {
		t.octants[idx] = o
		for _, n := range touched {
			enqueue(n)
		}
	}
	return changed
}
