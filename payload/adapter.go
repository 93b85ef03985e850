// Package payload defines the capability interfaces a host supplies so that
// user data carried alongside octants can survive ghost exchange, adapt and
// load balance without the core ever knowing the data's shape. These mirror
// the role the source's storage.Cacher / storage.PathProvider interfaces
// play for massif blobs: narrow, serialization-shaped contracts the host
// implements once, that the core calls at precisely-defined points.
package payload

import "github.com/adaptivemesh/go-pablo/wire"

// CommAdapter packs and unpacks payload for ghost exchange (communicate,
// §4.E.5). Indices passed to Size/Gather/Scatter are local-tree indices.
type CommAdapter interface {
	// Size returns the number of bytes Gather will write for local octant i.
	Size(i int) int
	// Gather appends the payload for local octant i to buf.
	Gather(buf *wire.Buffer, i int) error
	// Scatter reads a payload from buf into the ghost payload shadow array
	// at ghost index i, in the order ghosts are presented.
	Scatter(buf *wire.Buffer, i int) error
}

// LBAdapter packs and unpacks payload for a loadBalance call (§4.E.4,
// §4.G): the sending rank calls Gather and the receiving rank calls
// Scatter. No operation in this module calls Size, Assign, Move,
// RefineInto or CoarsenInto; adapt takes no adapter, and AdaptWithMapper
// only returns the index mapping.
type LBAdapter interface {
	// Size returns the number of bytes Gather will write for the local
	// index range [begin, end).
	Size(begin, end int) int
	// Gather serializes the payload range [begin, end) into buf.
	Gather(buf *wire.Buffer, begin, end int) error
	// Scatter deserializes a buffer received from a peer, appending the
	// decoded payloads to local storage.
	Scatter(buf *wire.Buffer) error

	// Assign copies the payload at src onto dst.
	Assign(dst, src int) error
	// Move relocates the payload at src to dst, leaving src unspecified.
	Move(dst, src int) error

	// RefineInto interpolates the payload of parent into each of its
	// children.
	RefineInto(children []int, parent int) error
	// CoarsenInto interpolates the payloads of children into their new
	// parent.
	CoarsenInto(parent int, children []int) error
}

// GhostIndex names, for each ghost slot, the slot its payload came from
// (-1 if the ghost has no prior payload). Communicate is the only
// operation that returns one, and it maps every slot to itself; Adapt,
// LoadBalance and the ghost-halo rebuild return no GhostIndex.
//
// The source implicitly couples ghost_data to ghost order; this explicit
// handle is the one place SPEC_FULL.md asks for more safety than the
// source gives, per design note "Ghost payload synchronization".
type GhostIndex struct {
	// PriorSlot[i] is the pre-collective ghost slot that now-ghost i's
	// payload should be copied from, or -1 if there is none.
	PriorSlot []int
}
