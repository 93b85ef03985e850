package paratree

import (
	"errors"

	"github.com/adaptivemesh/go-pablo/dim"
	"github.com/adaptivemesh/go-pablo/octant"
	"github.com/adaptivemesh/go-pablo/pabloerrors"
	"github.com/adaptivemesh/go-pablo/wire"
)

// Adapt implements spec.md §4.E.2: pre-balance across borders, cross-border
// family coarsening, a local refine pass, a local coarsen pass, bookkeeping
// recomputation and a ghost halo rebuild. It is collective: every rank in
// the fleet must call it.
func (pt *ParallelTree) Adapt() error {
	_, err := pt.adapt(nil)
	return err
}

// AdaptWithMapper behaves like Adapt but additionally returns, for each
// octant in the post-adapt local sequence, the pre-adapt local index of the
// octant it derives from (identity/refine: that octant's own prior index;
// coarsen: the first member of the coarsened family).
func (pt *ParallelTree) AdaptWithMapper() ([]int, error) {
	return pt.adapt(&struct{}{})
}

func (pt *ParallelTree) adapt(wantMapper *struct{}) ([]int, error) {
	pt.log.Infow("adapt: start", "rank", pt.rank, "local_octants", pt.local.NumOctants())

	if err := pt.preBalanceAcrossBorders(); err != nil {
		pt.log.Errorw("adapt: pre-balance failed", "rank", pt.rank, "err", err)
		return nil, err
	}
	if err := pt.crossBorderCoarsen(); err != nil {
		pt.log.Errorw("adapt: cross-border coarsen failed", "rank", pt.rank, "err", err)
		return nil, err
	}

	refineMap := pt.local.RefineOnePass()
	coarsenMap := pt.local.CoarsenOnePass()

	var mapping []int
	if wantMapper != nil {
		mapping = composeMapping(refineMap, coarsenMap)
	}

	if err := pt.recomputeBookkeeping(); err != nil {
		pt.log.Errorw("adapt: bookkeeping failed", "rank", pt.rank, "err", err)
		return nil, err
	}
	if err := pt.rebuildGhostHalo(); err != nil {
		pt.log.Errorw("adapt: ghost halo rebuild failed", "rank", pt.rank, "err", err)
		return nil, err
	}

	pt.log.Infow("adapt: done", "rank", pt.rank, "local_octants", pt.local.NumOctants(), "ghosts", pt.local.NumGhosts())
	return mapping, nil
}

// composeMapping folds RefineOnePass's mapping (pre-refine index per
// post-refine octant) through CoarsenOnePass's mapping (pre-coarsen index
// per post-coarsen octant), yielding pre-adapt index per final octant.
func composeMapping(refineMap, coarsenMap []int) []int {
	out := make([]int, len(coarsenMap))
	for i, pre := range coarsenMap {
		if pre >= 0 && pre < len(refineMap) {
			out[i] = refineMap[pre]
		} else {
			out[i] = pre
		}
	}
	return out
}

// AdaptGlobalRefine marks every local octant for refinement and runs a
// single collective refine pass (no balancing) — spec.md §6's
// adaptGlobalRefine, used directly by scenario S5.
func (pt *ParallelTree) AdaptGlobalRefine() error {
	pt.log.Infow("adaptGlobalRefine: start", "rank", pt.rank, "local_octants", pt.local.NumOctants())
	for i := 0; i < pt.local.NumOctants(); i++ {
		if err := pt.local.SetMarker(i, 1); err != nil {
			return err
		}
	}
	pt.local.RefineOnePass()
	if err := pt.recomputeBookkeeping(); err != nil {
		return err
	}
	if err := pt.rebuildGhostHalo(); err != nil {
		return err
	}
	pt.log.Infow("adaptGlobalRefine: done", "rank", pt.rank, "local_octants", pt.local.NumOctants())
	return nil
}

// AdaptGlobalCoarse marks every local octant for coarsening and runs a
// single collective coarsen pass — spec.md §6's adaptGlobalCoarse.
func (pt *ParallelTree) AdaptGlobalCoarse() error {
	pt.log.Infow("adaptGlobalCoarse: start", "rank", pt.rank, "local_octants", pt.local.NumOctants())
	for i := 0; i < pt.local.NumOctants(); i++ {
		if err := pt.local.SetMarker(i, -1); err != nil {
			return err
		}
	}
	pt.local.CoarsenOnePass()
	if err := pt.recomputeBookkeeping(); err != nil {
		return err
	}
	if err := pt.rebuildGhostHalo(); err != nil {
		return err
	}
	pt.log.Infow("adaptGlobalCoarse: done", "rank", pt.rank, "local_octants", pt.local.NumOctants())
	return nil
}

// preBalanceAcrossBorders implements spec.md §4.E.2 step 1: exchange the
// last octant's marker/notBalance with the right neighbor and the first
// octant's with the left neighbor, run balance21 locally, and repeat until
// an allreduce reports no rank changed a marker on the last round. Bounded
// at 2*MaxLevel rounds like the local fixed point, since a non-convergent
// border exchange is exactly as fatal as a non-convergent local one.
func (pt *ParallelTree) preBalanceAcrossBorders() error {
	if pt.size == 1 {
		return pt.local.Balance21(pt.maxDepthGlobal)
	}

	maxRounds := int(2 * pt.d().MaxLevel())
	for round := 0; round < maxRounds; round++ {
		changed, err := pt.exchangeBorderMarkers()
		if err != nil {
			return err
		}
		before := make([]int8, pt.local.NumOctants())
		for i, o := range pt.local.Octants() {
			before[i] = o.Marker
		}
		if err := pt.local.Balance21(pt.maxDepthGlobal); err != nil {
			return err
		}
		for i, o := range pt.local.Octants() {
			if o.Marker != before[i] {
				changed = true
				break
			}
		}
		anyChanged, err := pt.transport.AllReduceAnd(!changed)
		if err != nil {
			return errors.Join(pabloerrors.ErrTransportFailed, err)
		}
		if anyChanged {
			return nil
		}
	}
	return pabloerrors.ErrBalanceNonConvergent
}

// exchangeBorderMarkers ships this rank's first and last octant to its
// left and right neighbor respectively, raises the matching local
// boundary octant's marker to at least the peer's (level+marker)-1, and
// reports whether it changed anything.
func (pt *ParallelTree) exchangeBorderMarkers() (bool, error) {
	octants := pt.local.Octants()
	if len(octants) == 0 {
		if pt.rank > 0 {
			if _, err := pt.recvBorderOctant(pt.rank - 1); err != nil {
				return false, err
			}
		}
		if pt.rank+1 < pt.size {
			if _, err := pt.recvBorderOctant(pt.rank + 1); err != nil {
				return false, err
			}
		}
		return false, nil
	}

	changed := false

	if pt.rank+1 < pt.size {
		if err := pt.sendBorderOctant(pt.rank+1, octants[len(octants)-1]); err != nil {
			return false, err
		}
	}
	if pt.rank > 0 {
		if err := pt.sendBorderOctant(pt.rank-1, octants[0]); err != nil {
			return false, err
		}
	}

	if pt.rank > 0 {
		peer, err := pt.recvBorderOctant(pt.rank - 1)
		if err != nil {
			return false, err
		}
		if raiseBoundaryMarker(&octants[0], peer) {
			changed = true
		}
	}
	if pt.rank+1 < pt.size {
		peer, err := pt.recvBorderOctant(pt.rank + 1)
		if err != nil {
			return false, err
		}
		last := len(octants) - 1
		if raiseBoundaryMarker(&octants[last], peer) {
			changed = true
		}
	}
	return changed, nil
}

// raiseBoundaryMarker enforces the 2:1 constraint from a peer's border
// octant onto ours, mirroring octree.enforceBalanceAt's rule but across
// the process boundary where no local search can see the neighbor.
func raiseBoundaryMarker(o *octant.Octant, peer octant.Octant) bool {
	need := int(peer.Level) + int(peer.Marker) - int(o.Level) - 1
	if need > int(o.Marker) {
		o.Marker = int8(need)
		return true
	}
	return false
}

func (pt *ParallelTree) sendBorderOctant(to int, o octant.Octant) error {
	buf := wire.NewBuffer()
	if err := buf.WriteOctants([]octant.Octant{o}); err != nil {
		return err
	}
	return pt.sendTagged(to, buf.Bytes())
}

func (pt *ParallelTree) recvBorderOctant(from int) (octant.Octant, error) {
	data, err := pt.recvTagged(from)
	if err != nil {
		return octant.Octant{}, err
	}
	got, err := wire.NewBufferFromBytes(data).ReadOctants()
	if err != nil {
		return octant.Octant{}, errors.Join(pabloerrors.ErrTransportFailed, err)
	}
	if len(got) != 1 {
		return octant.Octant{}, pabloerrors.ErrInvariantViolation
	}
	return got[0], nil
}

func (pt *ParallelTree) d() dim.Dim { return pt.local.D }
