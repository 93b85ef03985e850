package paratree

import (
	"github.com/adaptivemesh/go-pablo/octant"
	"github.com/adaptivemesh/go-pablo/octree"
)

// GetNumOctants returns the number of local octants.
func (pt *ParallelTree) GetNumOctants() int { return pt.local.NumOctants() }

// GetNumGhosts returns the number of ghost octants.
func (pt *ParallelTree) GetNumGhosts() int { return pt.local.NumGhosts() }

// GetOctant returns local octant i.
func (pt *ParallelTree) GetOctant(i int) (octant.Octant, error) { return pt.local.Octant(i) }

// GetGhostOctant returns ghost octant i.
func (pt *ParallelTree) GetGhostOctant(i int) (octant.Octant, error) { return pt.local.GhostOctant(i) }

// GetLevel returns local octant i's refinement level.
func (pt *ParallelTree) GetLevel(i int) (uint8, error) {
	o, err := pt.local.Octant(i)
	if err != nil {
		return 0, err
	}
	return o.Level, nil
}

// GetCenter returns the physical-domain center of local octant i.
func (pt *ParallelTree) GetCenter(i int) ([]float64, error) {
	o, err := pt.local.Octant(i)
	if err != nil {
		return nil, err
	}
	return pt.mapper.MapPoint(o.GetCenter()), nil
}

// GetNodes returns the unique node coordinate table built by the last
// UpdateConnectivity call (nil if connectivity hasn't been built, or was
// discarded since).
func (pt *ParallelTree) GetNodes() [][]uint32 { return pt.local.Nodes() }

// GetMarker returns local octant i's refine/coarsen marker.
func (pt *ParallelTree) GetMarker(i int) (int8, error) {
	o, err := pt.local.Octant(i)
	if err != nil {
		return 0, err
	}
	return o.Marker, nil
}

// GetIsNewR reports whether local octant i was produced by the last refine.
func (pt *ParallelTree) GetIsNewR(i int) (bool, error) {
	o, err := pt.local.Octant(i)
	if err != nil {
		return false, err
	}
	return o.Flags.IsNewR, nil
}

// GetIsNewC reports whether local octant i was produced by the last coarsen.
func (pt *ParallelTree) GetIsNewC(i int) (bool, error) {
	o, err := pt.local.Octant(i)
	if err != nil {
		return false, err
	}
	return o.Flags.IsNewC, nil
}

// GetBound reports whether face is a domain boundary for local octant i.
func (pt *ParallelTree) GetBound(i, face int) (bool, error) {
	o, err := pt.local.Octant(i)
	if err != nil {
		return false, err
	}
	return o.Flags.HasBoundaryFace(face), nil
}

// GetPbound reports whether face is a process boundary for local octant i.
func (pt *ParallelTree) GetPbound(i, face int) (bool, error) {
	o, err := pt.local.Octant(i)
	if err != nil {
		return false, err
	}
	return o.Flags.HasPBoundaryFace(face), nil
}

// GetBalance reports local octant i's notBalance bit.
func (pt *ParallelTree) GetBalance(i int) (bool, error) {
	o, err := pt.local.Octant(i)
	if err != nil {
		return false, err
	}
	return o.Flags.NotBalance, nil
}

// SetMarker sets local octant i's refine/coarsen marker.
func (pt *ParallelTree) SetMarker(i int, m int8) error { return pt.local.SetMarker(i, m) }

// SetBalance sets local octant i's notBalance bit.
func (pt *ParallelTree) SetBalance(i int, flag bool) error { return pt.local.SetBalance(i, flag) }

// SetBalanceCodimension sets the codimension 2:1 balance is enforced across.
func (pt *ParallelTree) SetBalanceCodimension(c int) { pt.local.SetBalanceCodimension(c) }

// UpdateConnectivity rebuilds the node table and per-octant connectivity
// for local octants — spec.md §4.D.6/§6, exposed through the facade since
// hosts never touch octree.LocalTree directly.
func (pt *ParallelTree) UpdateConnectivity() ([][]uint32, [][]int) {
	return pt.local.UpdateConnectivity()
}

// UpdateGhostsConnectivity rebuilds local connectivity and then extends the
// resulting node table with ghost-only corners, returning the extended
// table and the per-ghost node-index connectivity into it (spec.md
// §4.D.6's distinct collective — "ghost connectivity uses the same node
// table extended with ghost-only nodes").
func (pt *ParallelTree) UpdateGhostsConnectivity() ([][]uint32, [][]int) {
	return pt.local.UpdateGhostsConnectivity()
}

// FindNeighbours exposes the local tree's neighbour search (spec.md
// §4.D.5) through the facade, for hosts and tests that need it directly
// rather than through adapt/balance.
func (pt *ParallelTree) FindNeighbours(idx, iface, codim int) ([]octree.NeighbourRef, error) {
	return pt.local.FindNeighbours(idx, iface, codim, pt.maxDepthGlobal)
}
