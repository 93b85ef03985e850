package octant

// BuildFather returns the parent octant: the anchor snapped down to the
// parent's grid and the level decremented by one. Panics if Level is
// already 0 — callers (octree's coarsen pass) only call this on octants
// known to have a father.
func (o Octant) BuildFather() Octant {
	if o.Level == 0 {
		panic("octant: root has no father")
	}
	parentSize := uint64(o.GetSize()) * 2
	father := o
	father.Level = o.Level - 1
	c := o.coords()
	for i, v := range c {
		c[i] = uint32(uint64(v) &^ (parentSize - 1))
	}
	father.setCoords(c)
	father.Marker = 0
	father.Flags = Flags{}
	father.PayloadID = 0
	return father
}

// BuildChildren returns the NChildren children of o, in Z-order (child i has
// bit b of i selecting the + side of axis b). Children inherit
// marker' = max(0, marker-1), IsNewR = true, and carry only the boundary/
// process-boundary flags for faces that coincide with one of o's own
// boundary faces — every interior face is cleared, matching the source's
// rule that a freshly split interior face can never be a domain or process
// boundary.
func (o Octant) BuildChildren() []Octant {
	n := o.D.N()
	nChildren := 1 << n
	childSize := o.GetSize() / 2
	childMarker := o.Marker - 1
	if childMarker < 0 {
		childMarker = 0
	}
	parentCoords := o.coords()

	children := make([]Octant, nChildren)
	for i := 0; i < nChildren; i++ {
		c := Octant{
			D:      o.D,
			Level:  o.Level + 1,
			Marker: childMarker,
		}
		coords := make([]uint32, n)
		for axis := 0; axis < n; axis++ {
			coords[axis] = parentCoords[axis]
			if (i>>uint(axis))&1 == 1 {
				coords[axis] += childSize
			}
		}
		c.setCoords(coords)

		var flags Flags
		for face := 0; face < 2*n; face++ {
			axis := face / 2
			side := face % 2
			bit := (i >> uint(axis)) & 1
			if bit != side {
				continue // interior face, stays cleared
			}
			if o.Flags.HasBoundaryFace(face) {
				flags.setBoundaryFace(face, true)
			}
			if o.Flags.HasPBoundaryFace(face) {
				flags.setPBoundaryFace(face, true)
			}
		}
		flags.IsNewR = true
		c.Flags = flags
		children[i] = c
	}
	return children
}

// BuildLastDesc returns the MaxLevel-level octant at the far corner of o's
// cube: the sentinel used to delimit o's range in Morton-with-level order.
func (o Octant) BuildLastDesc() Octant {
	maxLevel := o.MaxLevel()
	size := o.GetSize()
	last := Octant{D: o.D, Level: maxLevel}
	c := o.coords()
	for i := range c {
		c[i] += size - 1
	}
	last.setCoords(c)
	return last
}

// BuildFirstDesc returns the finest-level octant at o's own anchor corner:
// the sentinel used as the lower order bound of o's range.
func (o Octant) BuildFirstDesc() Octant {
	maxLevel := o.MaxLevel()
	first := Octant{D: o.D, Level: maxLevel}
	first.setCoords(o.coords())
	return first
}
