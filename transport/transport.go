// Package transport is the MPI-like message-passing abstraction paratree
// is built on: rank/size discovery, point-to-point send/recv tagged per
// spec.md §6, and the two collectives (logical-AND allreduce, barrier) the
// adapt/balance fixed point needs. It generalizes the shape of the source's
// own fake Azure Service Bus sender/receiver (mmrtesting's
// TestSendCallCounter/TestReceiverCallCounter) from a single queue to a
// full rank-addressed fleet.
package transport

import "errors"

// ErrNoTransport is returned by the degenerate Null transport for any
// cross-rank call: a P=1 tree never needs to talk to a peer.
var ErrNoTransport = errors.New("transport: no transport configured for a single-rank tree")

// MessageTag identifies an in-flight message exactly as spec.md §6
// prescribes: source, destination, the collective it belongs to, and its
// byte length (useful for logging and for pre-sizing receive buffers).
type MessageTag struct {
	SourceRank   int
	DestRank     int
	CollectiveID uint64
	ByteLength   int
}

// Transport is the message-passing contract paratree depends on. All
// methods are blocking; none of them are safe to call concurrently from
// multiple goroutines against the same rank's Transport value (matching
// the single-threaded-cooperative-per-process model of spec.md §5).
type Transport interface {
	Rank() int
	Size() int

	// Send blocks until payload has been handed off to rank to's inbox.
	Send(to int, tag MessageTag, payload []byte) error
	// Recv blocks until a payload from rank from is available, and returns it.
	Recv(from int, tag MessageTag) ([]byte, error)

	// AllReduceAnd performs a collective logical AND of local across every
	// rank, returning the same result on every rank.
	AllReduceAnd(local bool) (bool, error)
	// Barrier blocks until every rank has called Barrier.
	Barrier() error
}
