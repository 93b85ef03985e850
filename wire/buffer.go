package wire

import (
	"encoding/binary"
	"errors"

	"github.com/adaptivemesh/go-pablo/octant"
)

// ErrBufferUnderflow is returned when a read would run past the end of the
// buffer's remaining bytes.
var ErrBufferUnderflow = errors.New("wire: buffer underflow")

// Buffer is a growable byte stream with a read cursor, the concrete
// realization of the "opaque typed-buffer interface" spec.md §1 treats as
// an external collaborator for payload bytes. Octant batches, marker lists
// and partition tables are the core's own framing on top of it; arbitrary
// user payload bytes written by a payload.Adapter are opaque to Buffer too
// — it is just a byte sink for those.
type Buffer struct {
	data []byte
	pos  int
}

// NewBuffer returns an empty write buffer.
func NewBuffer() *Buffer { return &Buffer{} }

// NewBufferFromBytes wraps b for reading (and further appending).
func NewBufferFromBytes(b []byte) *Buffer { return &Buffer{data: b} }

// Bytes returns the full underlying byte slice written so far.
func (b *Buffer) Bytes() []byte { return b.data }

// Len returns the number of unread bytes remaining.
func (b *Buffer) Len() int { return len(b.data) - b.pos }

// WriteUint64 appends v as 8 little-endian bytes.
func (b *Buffer) WriteUint64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.data = append(b.data, tmp[:]...)
}

// ReadUint64 reads 8 little-endian bytes.
func (b *Buffer) ReadUint64() (uint64, error) {
	if b.Len() < 8 {
		return 0, ErrBufferUnderflow
	}
	v := binary.LittleEndian.Uint64(b.data[b.pos : b.pos+8])
	b.pos += 8
	return v, nil
}

// WriteInt8 appends a single signed byte.
func (b *Buffer) WriteInt8(v int8) {
	b.data = append(b.data, byte(v))
}

// ReadInt8 reads a single signed byte.
func (b *Buffer) ReadInt8() (int8, error) {
	if b.Len() < 1 {
		return 0, ErrBufferUnderflow
	}
	v := int8(b.data[b.pos])
	b.pos++
	return v, nil
}

// WriteBytes appends a length-prefixed raw byte slice, used to frame
// opaque payload.Adapter output.
func (b *Buffer) WriteBytes(v []byte) {
	b.WriteUint64(uint64(len(v)))
	b.data = append(b.data, v...)
}

// ReadBytes reads a length-prefixed raw byte slice.
func (b *Buffer) ReadBytes() ([]byte, error) {
	n, err := b.ReadUint64()
	if err != nil {
		return nil, err
	}
	if uint64(b.Len()) < n {
		return nil, ErrBufferUnderflow
	}
	v := b.data[b.pos : b.pos+int(n)]
	b.pos += int(n)
	return v, nil
}

// wireOctant is the CBOR-friendly, field-stable twin of octant.Octant.
type wireOctant struct {
	D         uint8
	X, Y, Z   uint32
	Level     uint8
	Marker    int8
	Boundary  uint8
	PBoundary uint8
	IsNewR    bool
	IsNewC    bool
	NotBal    bool
	Aux       bool
	PayloadID int
}

func toWire(o octant.Octant) wireOctant {
	return wireOctant{
		D: uint8(o.D), X: o.X, Y: o.Y, Z: o.Z, Level: o.Level, Marker: o.Marker,
		Boundary: o.Flags.BoundaryFace, PBoundary: o.Flags.PBoundaryFace,
		IsNewR: o.Flags.IsNewR, IsNewC: o.Flags.IsNewC, NotBal: o.Flags.NotBalance,
		Aux: o.Flags.Aux, PayloadID: o.PayloadID,
	}
}

func fromWire(w wireOctant) octant.Octant {
	return octant.Octant{
		D: dimFromUint8(w.D), X: w.X, Y: w.Y, Z: w.Z, Level: w.Level, Marker: w.Marker,
		Flags: octant.Flags{
			BoundaryFace: w.Boundary, PBoundaryFace: w.PBoundary,
			IsNewR: w.IsNewR, IsNewC: w.IsNewC, NotBalance: w.NotBal, Aux: w.Aux,
		},
		PayloadID: w.PayloadID,
	}
}

// WriteOctants appends a length-prefixed, canonically-CBOR-encoded batch of
// octants.
func (b *Buffer) WriteOctants(octants []octant.Octant) error {
	wired := make([]wireOctant, len(octants))
	for i, o := range octants {
		wired[i] = toWire(o)
	}
	payload, err := cborMarshal(wired)
	if err != nil {
		return err
	}
	b.WriteBytes(payload)
	return nil
}

// ReadOctants reads a batch written by WriteOctants.
func (b *Buffer) ReadOctants() ([]octant.Octant, error) {
	payload, err := b.ReadBytes()
	if err != nil {
		return nil, err
	}
	var wired []wireOctant
	if err := cborUnmarshal(payload, &wired); err != nil {
		return nil, err
	}
	out := make([]octant.Octant, len(wired))
	for i, w := range wired {
		out[i] = fromWire(w)
	}
	return out, nil
}

// WriteMarkers appends a length-prefixed list of signed markers.
func (b *Buffer) WriteMarkers(markers []int8) error {
	payload, err := cborMarshal(markers)
	if err != nil {
		return err
	}
	b.WriteBytes(payload)
	return nil
}

// ReadMarkers reads a list written by WriteMarkers.
func (b *Buffer) ReadMarkers() ([]int8, error) {
	payload, err := b.ReadBytes()
	if err != nil {
		return nil, err
	}
	var markers []int8
	if err := cborUnmarshal(payload, &markers); err != nil {
		return nil, err
	}
	return markers, nil
}

// WritePartitionTable appends a length-prefixed partition range table.
func (b *Buffer) WritePartitionTable(table []uint64) error {
	payload, err := cborMarshal(table)
	if err != nil {
		return err
	}
	b.WriteBytes(payload)
	return nil
}

// ReadPartitionTable reads a table written by WritePartitionTable.
func (b *Buffer) ReadPartitionTable() ([]uint64, error) {
	payload, err := b.ReadBytes()
	if err != nil {
		return nil, err
	}
	var table []uint64
	if err := cborUnmarshal(payload, &table); err != nil {
		return nil, err
	}
	return table, nil
}
