package octree

import (
	"github.com/adaptivemesh/go-pablo/dim"
	"github.com/adaptivemesh/go-pablo/octant"
)

// isFamily reports whether group is exactly the nChildren children of a
// common father, in the Z-order BuildChildren produces: it rebuilds the
// father from group[0] and compares every member's shape (anchor + level,
// via octant.Equal) against the expected child set.
func isFamily(group []octant.Octant, nChildren int) bool {
	if len(group) != nChildren {
		return false
	}
	if group[0].Level == 0 {
		return false // root has no father
	}
	father := group[0].BuildFather()
	expected := father.BuildChildren()
	for i, o := range group {
		if !o.Equal(expected[i]) {
			return false
		}
	}
	return true
}

// canCoarsen reports whether every member of a detected family is eligible
// to coarsen: Marker <= -1 and NotBalance clear on all of them.
func canCoarsen(group []octant.Octant) bool {
	for _, o := range group {
		if o.Marker > -1 || o.Flags.NotBalance {
			return false
		}
	}
	return true
}

// coarsenFamily builds the father octant per spec.md §4.D.3: level-1,
// marker' = min(0, max of members' markers) + 1, isNewC set, boundary and
// process-boundary flags OR'd across members, notBalance AND'd (always
// false here, since canCoarsen already required it clear on every member).
func coarsenFamily(group []octant.Octant) octant.Octant {
	father := group[0].BuildFather()

	maxMarker := group[0].Marker
	var boundary, pboundary uint8
	notBalance := true
	for _, o := range group {
		if o.Marker > maxMarker {
			maxMarker = o.Marker
		}
		boundary |= o.Flags.BoundaryFace
		pboundary |= o.Flags.PBoundaryFace
		notBalance = notBalance && o.Flags.NotBalance
	}
	if maxMarker > 0 {
		maxMarker = 0
	}

	father.Marker = maxMarker + 1
	father.Flags = octant.Flags{
		BoundaryFace:  boundary,
		PBoundaryFace: pboundary,
		NotBalance:    notBalance,
		IsNewC:        true,
	}
	return father
}

// CoarsenOnePass implements spec.md §4.D.3: scans for contiguous families
// eligible to coarsen; non-families and partial groups are left in place
// with the magnitude of any negative marker decremented (one coarsen
// consumed towards the next pass). Cross-process families are never
// detected here — they straddle a partition boundary and paratree handles
// them separately (§4.E.2 step 2) before this pass ever runs.
//
// mapping[i] is the pre-pass index of the first member of the family that
// produced new octants[i] (or its own pre-pass index if unchanged).
func (t *LocalTree) CoarsenOnePass() (mapping []int) {
	nChildren := dim.Get(t.D).NChildren
	out := make([]octant.Octant, 0, len(t.octants))
	mapping = make([]int, 0, len(t.octants))

	i := 0
	for i < len(t.octants) {
		if i+nChildren <= len(t.octants) {
			group := t.octants[i : i+nChildren]
			if isFamily(group, nChildren) {
				if canCoarsen(group) {
					out = append(out, coarsenFamily(group))
					mapping = append(mapping, i)
					i += nChildren
					continue
				}
				for k, o := range group {
					out = append(out, decrementNegativeMarker(o))
					mapping = append(mapping, i+k)
				}
				i += nChildren
				continue
			}
		}
		out = append(out, decrementNegativeMarker(t.octants[i]))
		mapping = append(mapping, i)
		i++
	}

	t.octants = out
	t.recomputeLocalMaxDepth()
	return mapping
}

func decrementNegativeMarker(o octant.Octant) octant.Octant {
	if o.Marker < 0 {
		o.Marker++
	}
	return o
}

// CombineFamily exposes coarsenFamily for paratree's cross-border
// coarsening: once a family's members are assembled from two ranks,
// combining them into a father octant is the same operation as a local
// family coarsen, it just runs on a group that isn't contiguous in either
// rank's own slice.
func CombineFamily(group []octant.Octant) octant.Octant {
	return coarsenFamily(group)
}

// IsFamily exposes isFamily for paratree.
func IsFamily(group []octant.Octant, nChildren int) bool {
	return isFamily(group, nChildren)
}

// CanCoarsen exposes canCoarsen for paratree.
func CanCoarsen(group []octant.Octant) bool {
	return canCoarsen(group)
}

// DropTrailing removes the last n local octants, used after a cross-border
// coarsen has shipped them into a peer's father octant.
func (t *LocalTree) DropTrailing(n int) {
	t.octants = t.octants[:len(t.octants)-n]
	t.recomputeLocalMaxDepth()
}

// DropLeading removes the first n local octants, the counterpart to
// DropTrailing on the receiving side of a cross-border coarsen.
func (t *LocalTree) DropLeading(n int) {
	t.octants = append([]octant.Octant(nil), t.octants[n:]...)
	t.recomputeLocalMaxDepth()
}

// AppendOctant appends o to the end of the local sequence, used when a
// cross-border coarsen resolves in this rank's favor (it owns the new
// father and it sorts after everything already here).
func (t *LocalTree) AppendOctant(o octant.Octant) {
	t.octants = append(t.octants, o)
	t.recomputeLocalMaxDepth()
}
