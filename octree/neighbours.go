package octree

import (
	"github.com/adaptivemesh/go-pablo/dim"
	"github.com/adaptivemesh/go-pablo/octant"
)

// FindNeighbours implements spec.md §4.D.5: returns every leaf (local or
// ghost) incident across the face/edge/node named by (iface, codim) of
// local octant idx. codim is interpreted per-dimension: 1 always means
// face; for dim=2, codim 2 means node (2D has no distinct edge incidence);
// for dim=3, codim 2 means edge and codim 3 means node. iface indexes into
// whichever incidence codim selects.
func (t *LocalTree) FindNeighbours(idx, iface, codim int, maxDepth uint8) ([]NeighbourRef, error) {
	o, err := t.Octant(idx)
	if err != nil {
		return nil, err
	}
	codes := candidateCodes(o, iface, codim, maxDepth, true)
	if codes == nil {
		return nil, nil
	}
	refs := t.locateCandidates(codes)
	out := make([]NeighbourRef, 0, len(refs))
	for _, r := range refs {
		if r.IsGhost || r.Index != idx {
			out = append(out, r)
		}
	}
	return out, nil
}

// candidateCodes maps (iface, codim) onto the right octant.Compute*Morton
// family. half selects half-size candidates (balance21's virtual Morton
// with balance=true); otherwise min-size-at-maxDepth candidates are used.
func candidateCodes(o octant.Octant, iface, codim int, maxDepth uint8, half bool) []uint64 {
	switch codim {
	case 1:
		if half {
			return o.ComputeHalfSizeMorton(iface)
		}
		return o.ComputeMinSizeMorton(iface, maxDepth)
	case 2:
		if o.D == dim.Three {
			if half {
				return o.ComputeEdgeHalfSizeMorton(iface)
			}
			return o.ComputeEdgeMinSizeMorton(iface, maxDepth)
		}
		if half {
			return o.ComputeNodeHalfSizeMorton(iface)
		}
		return o.ComputeNodeMinSizeMorton(iface, maxDepth)
	case 3:
		if half {
			return o.ComputeNodeHalfSizeMorton(iface)
		}
		return o.ComputeNodeMinSizeMorton(iface, maxDepth)
	default:
		return nil
	}
}

// incidenceCount returns how many face/edge/node slots codim has for o's
// dimension, driving the loop balance21 runs per octant.
func incidenceCount(d dim.Dim, codim int) int {
	g := dim.Get(d)
	switch codim {
	case 1:
		return g.NFaces
	case 2:
		if d == dim.Three {
			return g.NEdges
		}
		return g.NNodes
	case 3:
		return g.NNodes
	default:
		return 0
	}
}
