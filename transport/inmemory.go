package transport

import (
	"errors"
	"sync"
)

// Bus is the shared state backing a fleet of InMemory transports: one
// directed channel per (sender, receiver) rank pair, plus the bookkeeping
// for a reusable collective allreduce/barrier.
type Bus struct {
	p        int
	channels map[[2]int]chan []byte

	mu         sync.Mutex
	cond       *sync.Cond
	generation int
	arrived    int
	accum      bool
	lastResult bool
}

// NewBus allocates a Bus wiring p ranks together.
func NewBus(p int) *Bus {
	b := &Bus{p: p, channels: make(map[[2]int]chan []byte)}
	b.cond = sync.NewCond(&b.mu)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			if i != j {
				b.channels[[2]int{i, j}] = make(chan []byte, 256)
			}
		}
	}
	return b
}

// Rank returns an InMemory transport bound to rank r on this bus.
func (b *Bus) Rank(r int) *InMemory {
	return &InMemory{bus: b, rank: r}
}

// InMemory is an in-process fake transport, the multi-rank analogue of the
// source's TestSendCallCounter/TestReceiverCallCounter fakes: it stands in
// for a real MPI/message-bus transport in tests, and backs the P=1
// in-process facade when there is exactly one rank on the bus.
type InMemory struct {
	bus  *Bus
	rank int
}

func (t *InMemory) Rank() int { return t.rank }
func (t *InMemory) Size() int { return t.bus.p }

func (t *InMemory) Send(to int, tag MessageTag, payload []byte) error {
	ch, ok := t.bus.channels[[2]int{t.rank, to}]
	if !ok {
		return errors.New("transport: invalid destination rank")
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	ch <- cp
	return nil
}

func (t *InMemory) Recv(from int, tag MessageTag) ([]byte, error) {
	ch, ok := t.bus.channels[[2]int{from, t.rank}]
	if !ok {
		return nil, errors.New("transport: invalid source rank")
	}
	return <-ch, nil
}

// AllReduceAnd blocks until every rank on the bus has called it for this
// round, then returns the logical AND of everyone's local value to every
// rank. The round is identified purely by arrival order — each rank must
// call AllReduceAnd/Barrier the same number of times, which holds because
// they are collective operations per spec.md §5.
func (t *InMemory) AllReduceAnd(local bool) (bool, error) {
	b := t.bus
	b.mu.Lock()
	defer b.mu.Unlock()

	myGen := b.generation
	if b.arrived == 0 {
		b.accum = true
	}
	b.arrived++
	if !local {
		b.accum = false
	}
	if b.arrived == b.p {
		b.lastResult = b.accum
		b.arrived = 0
		b.generation++
		b.cond.Broadcast()
		return b.lastResult, nil
	}
	for b.generation == myGen {
		b.cond.Wait()
	}
	return b.lastResult, nil
}

// Barrier blocks until every rank has arrived, implemented as an
// AllReduceAnd whose result is discarded.
func (t *InMemory) Barrier() error {
	_, err := t.AllReduceAnd(true)
	return err
}
