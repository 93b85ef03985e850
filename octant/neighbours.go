package octant

import "sort"

// Neighbour-Morton helpers. For an incidence of codimension c (1 = face,
// 2 = edge, 3 = node) exactly c axes are "pinned" to a direction (the
// incidence's normal/diagonal), and the remaining dim-c axes are free to
// tile candidate neighbours across the incidence. A same-size neighbour is
// one candidate; a half-size (one level finer) neighbour set has
// 2^(dim-c) candidates; a min-size (maxdepth-level) neighbour set has
// (2^(maxdepth-level))^(dim-c) candidates. All three shapes are handled by
// neighboursAcrossIncidence below, parameterised only by the candidate
// cube's size — exactly the kind of single-arithmetic-core-many-callers
// shape the source's mmr package uses for its own navigation primitives.

// neighboursAcrossIncidence returns the Morton codes, in ascending order, of
// every candidate neighbour cube of side neighbourSize across the incidence
// whose pinned axes/signs are given. A nil result (with ok=false) means the
// incidence lies on the domain boundary or neighbourSize is not attainable
// (e.g. requesting a half-size neighbour of an already-finest octant).
func (o Octant) neighboursAcrossIncidence(pinnedAxes []int, signs []int8, neighbourSize uint32) (codes []uint64, ok bool) {
	if neighbourSize == 0 {
		return nil, false
	}
	n := o.D.N()
	size := o.GetSize()
	coords := o.coords()
	domainWidth := uint32(1) << o.MaxLevel()

	pinned := make(map[int]int8, len(pinnedAxes))
	axisCoord := make([]uint32, n)
	copy(axisCoord, coords)
	for i, axis := range pinnedAxes {
		sign := signs[i]
		pinned[axis] = sign
		if sign < 0 {
			if coords[axis] < neighbourSize {
				return nil, false // underflows the domain: a domain boundary
			}
			axisCoord[axis] = coords[axis] - neighbourSize
		} else {
			next := coords[axis] + size
			if next+neighbourSize > domainWidth {
				return nil, false // overflows the domain: a domain boundary
			}
			axisCoord[axis] = next
		}
	}

	var freeAxes []int
	for axis := 0; axis < n; axis++ {
		if _, isPinned := pinned[axis]; !isPinned {
			freeAxes = append(freeAxes, axis)
		}
	}

	countPerAxis := int(size / neighbourSize)
	if countPerAxis == 0 {
		countPerAxis = 1
	}
	total := 1
	for range freeAxes {
		total *= countPerAxis
	}

	codes = make([]uint64, 0, total)
	for idx := 0; idx < total; idx++ {
		c := make([]uint32, n)
		copy(c, axisCoord)
		rem := idx
		for _, axis := range freeAxes {
			k := rem % countPerAxis
			rem /= countPerAxis
			c[axis] = coords[axis] + uint32(k)*neighbourSize
		}
		var m uint64
		if n == 3 {
			m = EncodeMorton3(c[0], c[1], c[2])
		} else {
			m = EncodeMorton2(c[0], c[1])
		}
		codes = append(codes, m)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes, true
}

func faceAxisSign(face int) (axis int, sign int8) {
	axis = face / 2
	if face%2 == 0 {
		sign = -1
	} else {
		sign = 1
	}
	return
}

// ComputeHalfSizeMorton returns up to 2^(dim-1) Morton codes of the
// half-sized (next-finer-level) neighbours across face. Returns nil if face
// is a domain boundary or o is already at MaxLevel.
func (o Octant) ComputeHalfSizeMorton(face int) []uint64 {
	if o.Level >= o.MaxLevel() {
		return nil
	}
	axis, sign := faceAxisSign(face)
	codes, _ := o.neighboursAcrossIncidence([]int{axis}, []int8{sign}, o.GetSize()/2)
	return codes
}

// ComputeMinSizeMorton returns 2^((maxdepth-level)*(dim-1)) Morton codes of
// the maxdepth-sized neighbours across face, sorted. Returns nil if face is
// a domain boundary.
func (o Octant) ComputeMinSizeMorton(face int, maxdepth uint8) []uint64 {
	finest := uint32(1) << (o.MaxLevel() - maxdepth)
	axis, sign := faceAxisSign(face)
	codes, _ := o.neighboursAcrossIncidence([]int{axis}, []int8{sign}, finest)
	return codes
}

// ComputeVirtualMorton returns the half-size neighbours if balance is true,
// else the min-size neighbours at maxdepth.
func (o Octant) ComputeVirtualMorton(face int, maxdepth uint8, balance bool) []uint64 {
	if balance {
		return o.ComputeHalfSizeMorton(face)
	}
	return o.ComputeMinSizeMorton(face, maxdepth)
}

// edgeAxesSigns returns the two pinned axes and their signs for a 3D edge
// index (0-11): axis = edge/4 runs along the edge; the other two axes
// (ascending order) are pinned per the low two bits of edge%4.
func edgeAxesSigns(edge int) (axes []int, signs []int8) {
	axis := edge / 4
	m := edge % 4
	all := [3]int{0, 1, 2}
	for _, a := range all {
		if a == axis {
			continue
		}
		axes = append(axes, a)
	}
	bit0 := m & 1
	bit1 := (m >> 1) & 1
	sign := func(b int) int8 {
		if b == 0 {
			return -1
		}
		return 1
	}
	signs = []int8{sign(bit0), sign(bit1)}
	return
}

// ComputeEdgeHalfSizeMorton returns the (3D-only) half-size neighbours
// across edge. Always returns nil in 2D, since 2D has no distinct edge
// incidence (codim 2 in 2D is the node incidence).
func (o Octant) ComputeEdgeHalfSizeMorton(edge int) []uint64 {
	if o.D.N() != 3 || o.Level >= o.MaxLevel() {
		return nil
	}
	axes, signs := edgeAxesSigns(edge)
	codes, _ := o.neighboursAcrossIncidence(axes, signs, o.GetSize()/2)
	return codes
}

// ComputeEdgeMinSizeMorton returns the (3D-only) maxdepth-sized neighbours
// across edge.
func (o Octant) ComputeEdgeMinSizeMorton(edge int, maxdepth uint8) []uint64 {
	if o.D.N() != 3 {
		return nil
	}
	finest := uint32(1) << (o.MaxLevel() - maxdepth)
	axes, signs := edgeAxesSigns(edge)
	codes, _ := o.neighboursAcrossIncidence(axes, signs, finest)
	return codes
}

// ComputeEdgeVirtualMorton is the edge analogue of ComputeVirtualMorton.
func (o Octant) ComputeEdgeVirtualMorton(edge int, maxdepth uint8, balance bool) []uint64 {
	if balance {
		return o.ComputeEdgeHalfSizeMorton(edge)
	}
	return o.ComputeEdgeMinSizeMorton(edge, maxdepth)
}

// nodeAxesSigns returns all dim axes pinned, with signs derived from node's
// Z-order bit pattern (bit 0 -> "-" side, bit 1 -> "+" side), matching the
// same convention used for face indices.
func nodeAxesSigns(n, node int) (axes []int, signs []int8) {
	axes = make([]int, n)
	signs = make([]int8, n)
	for axis := 0; axis < n; axis++ {
		axes[axis] = axis
		if (node>>uint(axis))&1 == 0 {
			signs[axis] = -1
		} else {
			signs[axis] = 1
		}
	}
	return
}

// ComputeNodeHalfSizeMorton returns the single half-size neighbour diagonal
// across node (a corner incidence has exactly one candidate at any size).
func (o Octant) ComputeNodeHalfSizeMorton(node int) []uint64 {
	if o.Level >= o.MaxLevel() {
		return nil
	}
	axes, signs := nodeAxesSigns(o.D.N(), node)
	codes, _ := o.neighboursAcrossIncidence(axes, signs, o.GetSize()/2)
	return codes
}

// ComputeNodeMinSizeMorton returns the single maxdepth-sized neighbour
// diagonal across node.
func (o Octant) ComputeNodeMinSizeMorton(node int, maxdepth uint8) []uint64 {
	finest := uint32(1) << (o.MaxLevel() - maxdepth)
	axes, signs := nodeAxesSigns(o.D.N(), node)
	codes, _ := o.neighboursAcrossIncidence(axes, signs, finest)
	return codes
}

// ComputeNodeVirtualMorton is the node analogue of ComputeVirtualMorton.
func (o Octant) ComputeNodeVirtualMorton(node int, maxdepth uint8, balance bool) []uint64 {
	if balance {
		return o.ComputeNodeHalfSizeMorton(node)
	}
	return o.ComputeNodeMinSizeMorton(node, maxdepth)
}
