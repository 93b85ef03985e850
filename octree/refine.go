package octree

import "github.com/adaptivemesh/go-pablo/octant"

// RefineOnePass implements spec.md §4.D.2: every octant with Marker > 0 and
// Level < MaxLevel is replaced in place by its children in Z-order; every
// other octant is copied unchanged (including one already at MaxLevel —
// refine silently no-ops there, per §7's ErrMaxLevelReached kind, which is
// never actually returned). The result is sorted because BuildChildren's
// Z-order matches octant.Less restricted to one family.
//
// mapping[i] is the pre-pass index the new octants[i] was derived from
// (shared by every child of a refined octant), for callers building a
// payload.LBAdapter-driven index map.
func (t *LocalTree) RefineOnePass() (mapping []int) {
	out := make([]octant.Octant, 0, len(t.octants))
	mapping = make([]int, 0, len(t.octants))

	for i, o := range t.octants {
		if o.Marker > 0 && o.Level < o.MaxLevel() {
			children := o.BuildChildren()
			out = append(out, children...)
			for range children {
				mapping = append(mapping, i)
			}
			continue
		}
		out = append(out, o)
		mapping = append(mapping, i)
	}

	t.octants = out
	t.recomputeLocalMaxDepth()
	return mapping
}
