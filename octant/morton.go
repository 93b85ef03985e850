package octant

import "github.com/adaptivemesh/go-pablo/dim"

// Morton index computation by magic-bits bitwise interleave, following the
// classic "part1by1"/"part1by2" bit-spreading trick: each axis coordinate is
// spread out so there are one (2D) or two (3D) zero bits between each of its
// bits, then the spread values are OR'd together shifted by their axis
// index. This is the same flavour of pure-bit-arithmetic navigation the
// source's mmr package favours for its own flat index space (see
// mmr.IndexHeight and mmr.JumpLeftPerfect): no table, no recursion, just
// masks and shifts.
//
// The Morton index deliberately does not encode level — two octants at
// different levels but the same anchor corner share a Morton code, and
// ordering between them is resolved by the explicit level tie-break in
// Less (see order.go).

// spread2 spreads the low 32 bits of x so that there is one zero bit between
// each of its original bits, e.g. spread2(0b101) = 0b010001.
func spread2(x uint64) uint64 {
	x &= 0x00000000ffffffff
	x = (x | (x << 16)) & 0x0000ffff0000ffff
	x = (x | (x << 8)) & 0x00ff00ff00ff00ff
	x = (x | (x << 4)) & 0x0f0f0f0f0f0f0f0f
	x = (x | (x << 2)) & 0x3333333333333333
	x = (x | (x << 1)) & 0x5555555555555555
	return x
}

// compact2 is the inverse of spread2: given a value with a zero bit between
// each real bit, it packs the real bits back together at the low end.
func compact2(x uint64) uint64 {
	x &= 0x5555555555555555
	x = (x | (x >> 1)) & 0x3333333333333333
	x = (x | (x >> 2)) & 0x0f0f0f0f0f0f0f0f
	x = (x | (x >> 4)) & 0x00ff00ff00ff00ff
	x = (x | (x >> 8)) & 0x0000ffff0000ffff
	x = (x | (x >> 16)) & 0x00000000ffffffff
	return x
}

// spread3 spreads the low 21 bits of x so that there are two zero bits
// between each of its original bits. 21 bits comfortably covers the 3D
// MaxLevel of 20.
func spread3(x uint64) uint64 {
	x &= 0x1fffff
	x = (x | (x << 32)) & 0x1f00000000ffff
	x = (x | (x << 16)) & 0x1f0000ff0000ff
	x = (x | (x << 8)) & 0x100f00f00f00f00f
	x = (x | (x << 4)) & 0x10c30c30c30c30c3
	x = (x | (x << 2)) & 0x1249249249249249
	return x
}

// compact3 is the inverse of spread3.
func compact3(x uint64) uint64 {
	x &= 0x1249249249249249
	x = (x | (x >> 2)) & 0x10c30c30c30c30c3
	x = (x | (x >> 4)) & 0x100f00f00f00f00f
	x = (x | (x >> 8)) & 0x1f0000ff0000ff
	x = (x | (x >> 16)) & 0x1f00000000ffff
	x = (x | (x >> 32)) & 0x1fffff
	return x
}

// EncodeMorton2 interleaves x and y into a single 2D Morton index.
func EncodeMorton2(x, y uint32) uint64 {
	return spread2(uint64(x)) | (spread2(uint64(y)) << 1)
}

// DecodeMorton2 is the inverse of EncodeMorton2.
func DecodeMorton2(m uint64) (x, y uint32) {
	return uint32(compact2(m)), uint32(compact2(m >> 1))
}

// EncodeMorton3 interleaves x, y and z into a single 3D Morton index.
func EncodeMorton3(x, y, z uint32) uint64 {
	return spread3(uint64(x)) | (spread3(uint64(y)) << 1) | (spread3(uint64(z)) << 2)
}

// DecodeMorton3 is the inverse of EncodeMorton3.
func DecodeMorton3(m uint64) (x, y, z uint32) {
	return uint32(compact3(m)), uint32(compact3(m >> 1)), uint32(compact3(m >> 2))
}

// ComputeMorton returns the Morton index of o's anchor. It does not include
// the level; callers that need a total order use Less (order.go), which
// breaks Morton ties by level.
func (o Octant) ComputeMorton() uint64 {
	if o.D == dim.Three {
		return EncodeMorton3(o.X, o.Y, o.Z)
	}
	return EncodeMorton2(o.X, o.Y)
}
