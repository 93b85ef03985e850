// Package octant implements the immutable-shape leaf type PABLO's tree
// packages are built from: an integer anchor, a level, a signed refine/
// coarsen marker and a small flag bundle, plus the Morton and neighbour-
// Morton arithmetic used to order and search the tree.
//
// The navigation style here — deriving positions and sizes from bit
// arithmetic on the index rather than materialising a tree structure —
// follows the same approach the source's mmr package uses for its flat
// post-order node sequence (see mmr.IndexHeight and friends): no node ever
// needs to know about its neighbours directly, everything is recomputed from
// the anchor and level on demand.
package octant

import (
	"github.com/adaptivemesh/go-pablo/dim"
)

// Flags is the per-octant bit bundle: one bit per face for domain-boundary,
// one bit per face for process-boundary, plus the new/coarsened/no-balance
// markers and a spare aux bit.
type Flags struct {
	BoundaryFace  uint8 // bitmask, bit i set means face i lies on the domain boundary
	PBoundaryFace uint8 // bitmask, bit i set means face i lies on a process boundary
	IsNewR        bool
	IsNewC        bool
	NotBalance    bool
	Aux           bool
}

// HasBoundaryFace reports whether face is flagged as a domain boundary.
func (f Flags) HasBoundaryFace(face int) bool { return f.BoundaryFace&(1<<uint(face)) != 0 }

// HasPBoundaryFace reports whether face is flagged as a process boundary.
func (f Flags) HasPBoundaryFace(face int) bool { return f.PBoundaryFace&(1<<uint(face)) != 0 }

func (f *Flags) setBoundaryFace(face int, v bool) {
	bit := uint8(1) << uint(face)
	if v {
		f.BoundaryFace |= bit
	} else {
		f.BoundaryFace &^= bit
	}
}

func (f *Flags) setPBoundaryFace(face int, v bool) {
	bit := uint8(1) << uint(face)
	if v {
		f.PBoundaryFace |= bit
	} else {
		f.PBoundaryFace &^= bit
	}
}

// Octant is a single leaf: an axis-aligned cube of side 2^(MaxLevel-Level)
// anchored at (X, Y[, Z]), all coordinates multiples of that side length.
// Two octants compare equal iff (X, Y, Z, Level) match — Marker, flags and
// PayloadID are mutable bookkeeping, not part of identity.
type Octant struct {
	D     dim.Dim
	X     uint32
	Y     uint32
	Z     uint32 // unused (always 0) in 2D
	Level uint8
	Marker int8
	Flags  Flags

	// PayloadID lets a host correlate this octant with an entry in its own
	// payload store; set and interpreted only by payload.Adapter
	// implementations, never by octant/octree/paratree logic itself.
	PayloadID int
}

// MaxLevel returns the maximum legal level for this octant's dimension.
func (o Octant) MaxLevel() uint8 { return o.D.MaxLevel() }

// GetSize returns the edge length of the octant's cube, 2^(MaxLevel-Level).
func (o Octant) GetSize() uint32 {
	return uint32(1) << (o.MaxLevel() - o.Level)
}

// GetArea returns the integer area of one face of the octant's cube: size in
// 2D (a face is an edge), size^2 in 3D (a face is a square).
func (o Octant) GetArea() uint64 {
	size := uint64(o.GetSize())
	if o.D == dim.Three {
		return size * size
	}
	return size
}

// GetVolume returns the integer volume of the octant's cube: size^2 in 2D
// (area of the square), size^3 in 3D.
func (o Octant) GetVolume() uint64 {
	size := uint64(o.GetSize())
	if o.D == dim.Three {
		return size * size * size
	}
	return size * size
}

// Equal reports whether o and other occupy the same cube: identical anchor
// and level. Marker and flags are not part of identity.
func (o Octant) Equal(other Octant) bool {
	return o.D == other.D && o.X == other.X && o.Y == other.Y && o.Z == other.Z && o.Level == other.Level
}

// coords returns the anchor as a per-axis slice sized for o's dimension.
func (o Octant) coords() []uint32 {
	if o.D == dim.Three {
		return []uint32{o.X, o.Y, o.Z}
	}
	return []uint32{o.X, o.Y}
}

func (o *Octant) setCoords(c []uint32) {
	o.X = c[0]
	o.Y = c[1]
	if o.D == dim.Three {
		o.Z = c[2]
	}
}
