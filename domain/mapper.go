// Package domain implements the affine mapping between the logical integer
// grid every octant is anchored on and the physical real-valued domain a
// host application actually simulates over. It is deliberately the simplest
// possible mapper — origin plus uniform side-length scaling — the same
// scope the source gives its own transformation mapper: "a default
// (temporary) implementation of a scaling and translation... has to be
// implemented and customized by the user for different applications."
// PABLO's own affine mapper is the one piece of that customization point
// this module owns; anything fancier (curvilinear, per-axis scaling) is a
// host concern.
package domain

import "github.com/adaptivemesh/go-pablo/dim"

// Mapper maps between the logical domain [0, 2^MaxLevel)^dim and a physical
// cube of side L anchored at (X0, Y0, Z0).
type Mapper struct {
	D          dim.Dim
	X0, Y0, Z0 float64
	L          float64
}

// NewUnitMapper returns the default mapper: physical domain is the unit
// cube at the origin.
func NewUnitMapper(d dim.Dim) Mapper {
	return Mapper{D: d, L: 1}
}

// NewMapper returns a mapper for the physical cube of side L anchored at
// (x0, y0, z0).
func NewMapper(d dim.Dim, x0, y0, z0, l float64) Mapper {
	return Mapper{D: d, X0: x0, Y0: y0, Z0: z0, L: l}
}

func (m Mapper) scale() float64 {
	return m.L / float64(uint64(1)<<m.D.MaxLevel())
}

// MapPoint converts a logical-domain point (one entry per axis) into
// physical coordinates.
func (m Mapper) MapPoint(logical []float64) []float64 {
	s := m.scale()
	origin := [3]float64{m.X0, m.Y0, m.Z0}
	out := make([]float64, len(logical))
	for i, v := range logical {
		out[i] = origin[i] + v*s
	}
	return out
}

// MapSize converts a logical-domain edge length into a physical length.
func (m Mapper) MapSize(logicalSize float64) float64 {
	return m.scale() * logicalSize
}

// MapArea converts a logical-domain (dim-1)-measure into a physical area:
// a length in 2D, an area in 3D.
func (m Mapper) MapArea(logicalArea float64) float64 {
	s := m.scale()
	exp := m.D.N() - 1
	factor := 1.0
	for i := 0; i < exp; i++ {
		factor *= s
	}
	return factor * logicalArea
}

// MapVolume converts a logical-domain dim-measure into a physical volume.
func (m Mapper) MapVolume(logicalVolume float64) float64 {
	s := m.scale()
	factor := 1.0
	for i := 0; i < m.D.N(); i++ {
		factor *= s
	}
	return factor * logicalVolume
}

// InverseMapPoint converts a physical-domain point back into logical
// coordinates.
func (m Mapper) InverseMapPoint(physical []float64) []float64 {
	s := m.scale()
	origin := [3]float64{m.X0, m.Y0, m.Z0}
	out := make([]float64, len(physical))
	for i, v := range physical {
		out[i] = (v - origin[i]) / s
	}
	return out
}
