// Package dim holds the per-dimension constant tables shared by every other
// package in the module: face/edge/node counts, face-normal and incidence
// tables, and the maximum refinement level. Everything here is read-only
// once the package initializes, exactly as the source treats its globals
// table.
package dim

// Dim selects between the quadtree (Two) and octree (Three) variant. The
// source parameterises its octant and tree classes by an integer template
// argument; we use a tagged enum instead and dispatch on it at the small
// number of points where the two geometries actually differ.
type Dim uint8

const (
	Two Dim = iota
	Three
)

// MaxLevel returns the deepest level representable by a 64 bit Morton index
// for the given dimension. 2D interleaves 2 bits per level (30 levels fit in
// 60 bits), 3D interleaves 3 bits per level (20 levels fit in 60 bits).
func (d Dim) MaxLevel() uint8 {
	switch d {
	case Two:
		return 30
	case Three:
		return 20
	default:
		panic("dim: invalid dimension")
	}
}

// N returns the numeric dimension (2 or 3).
func (d Dim) N() int {
	switch d {
	case Two:
		return 2
	case Three:
		return 3
	default:
		panic("dim: invalid dimension")
	}
}

func (d Dim) String() string {
	switch d {
	case Two:
		return "2D"
	case Three:
		return "3D"
	default:
		return "invalid"
	}
}

// Globals is the read-only constant table for a dimension: child/face/edge/
// node counts plus the incidence tables used throughout octant and octree
// neighbour searches.
type Globals struct {
	Dim       Dim
	NChildren int
	NFaces    int
	NEdges    int // 0 in 2D
	NNodes    int

	// Normals[face] is the outward unit normal of that face, one entry per axis.
	Normals [][]int8

	// NodeFace[node] lists the faces incident on that node.
	NodeFace [][]int

	// EdgeFace[edge] lists the two faces incident on that edge (3D only, nil in 2D).
	EdgeFace [][]int

	// NodeEdge[node] lists the edges incident on that node (3D only, nil in 2D).
	NodeEdge [][]int
}

var (
	globals2D = buildGlobals(Two)
	globals3D = buildGlobals(Three)
)

// Get returns the shared, read-only Globals table for d.
func Get(d Dim) *Globals {
	switch d {
	case Two:
		return globals2D
	case Three:
		return globals3D
	default:
		panic("dim: invalid dimension")
	}
}

// OctantsPerLevel returns nchildren^level, the number of octants a single
// global-refine pass to exactly that level would produce from one root.
func (g *Globals) OctantsPerLevel(level uint8) uint64 {
	count := uint64(1)
	for i := uint8(0); i < level; i++ {
		count *= uint64(g.NChildren)
	}
	return count
}

// buildGlobals derives every incidence table from the bit structure of the
// Z-order child numbering rather than hand-transcribing arrays: child/node i
// occupies bit b of axis b in the unit cube, so every table below falls out
// of simple bit arithmetic. This mirrors the source's own preference for
// deriving bookkeeping constants from formulas (see mmr's HeightIndexSize,
// PeakStackLen) rather than hardcoding lookup tables.
func buildGlobals(d Dim) *Globals {
	n := d.N()
	nChildren := 1 << n
	nFaces := 2 * n
	nNodes := nChildren
	nEdges := 0
	if n == 3 {
		nEdges = 12
	}

	g := &Globals{
		Dim:       d,
		NChildren: nChildren,
		NFaces:    nFaces,
		NEdges:    nEdges,
		NNodes:    nNodes,
	}

	g.Normals = make([][]int8, nFaces)
	for face := 0; face < nFaces; face++ {
		axis := face / 2
		sign := int8(-1)
		if face%2 == 1 {
			sign = 1
		}
		normal := make([]int8, n)
		normal[axis] = sign
		g.Normals[face] = normal
	}

	g.NodeFace = make([][]int, nNodes)
	for node := 0; node < nNodes; node++ {
		faces := make([]int, 0, n)
		for axis := 0; axis < n; axis++ {
			bit := (node >> axis) & 1
			faces = append(faces, 2*axis+bit)
		}
		g.NodeFace[node] = faces
	}

	if n != 3 {
		return g
	}

	// 3D edges: axis = e/4 is the axis the edge runs along; the remaining two
	// axes (in ascending order) are pinned to the two bits of e%4.
	g.EdgeFace = make([][]int, nEdges)
	edgeOtherAxes := make([][2]int, nEdges)
	edgeFixedBits := make([][2]int, nEdges)
	for e := 0; e < nEdges; e++ {
		axis := e / 4
		m := e % 4
		other := otherAxes(axis)
		bits := [2]int{m & 1, (m >> 1) & 1}
		edgeOtherAxes[e] = other
		edgeFixedBits[e] = bits
		g.EdgeFace[e] = []int{2*other[0] + bits[0], 2*other[1] + bits[1]}
	}

	g.NodeEdge = make([][]int, nNodes)
	for node := 0; node < nNodes; node++ {
		edges := make([]int, 0, n)
		for e := 0; e < nEdges; e++ {
			other := edgeOtherAxes[e]
			bits := edgeFixedBits[e]
			if (node>>other[0])&1 == bits[0] && (node>>other[1])&1 == bits[1] {
				edges = append(edges, e)
			}
		}
		g.NodeEdge[node] = edges
	}

	return g
}

// otherAxes returns, in ascending order, the two axes other than axis (3D only).
func otherAxes(axis int) [2]int {
	all := [3]int{0, 1, 2}
	var out [2]int
	j := 0
	for _, a := range all {
		if a != axis {
			out[j] = a
			j++
		}
	}
	return out
}
