package octant

import "github.com/adaptivemesh/go-pablo/dim"

// GetCenter returns the logical-domain center of the octant's cube. Centers
// can fall on a half-integer grid point at the finest level, so this is
// reported in floating point; domain.Mapper scales it into physical units.
func (o Octant) GetCenter() []float64 {
	half := float64(o.GetSize()) / 2
	c := o.coords()
	out := make([]float64, len(c))
	for i, v := range c {
		out[i] = float64(v) + half
	}
	return out
}

// GetFaceCenter returns the logical-domain center of the given face: the
// cube center projected onto that face's plane.
func (o Octant) GetFaceCenter(face int) []float64 {
	g := dim.Get(o.D)
	center := o.GetCenter()
	axis := face / 2
	if face%2 == 0 {
		center[axis] = float64(o.coords()[axis])
	} else {
		center[axis] = float64(o.coords()[axis]) + float64(o.GetSize())
	}
	_ = g
	return center
}

// GetNode returns the integer logical coordinates of corner i (0-indexed in
// the same Z-order used for children: bit b of i selects the + side of
// axis b).
func (o Octant) GetNode(i int) []uint32 {
	c := o.coords()
	size := o.GetSize()
	out := make([]uint32, len(c))
	for axis := range c {
		out[axis] = c[axis]
		if (i>>uint(axis))&1 == 1 {
			out[axis] += size
		}
	}
	return out
}

// GetNormal returns the outward unit normal of face, one entry per axis.
func (o Octant) GetNormal(face int) []int8 {
	return dim.Get(o.D).Normals[face]
}
