// Package pablotesting wires up the fakes a paratree test needs: a shared
// in-memory transport bus standing in for MPI, and assertion helpers
// implementing spec.md §8's testable invariants directly, the way
// mmrtesting's TestContext wires up fakes for a whole test rather than
// leaving every test to reassemble them.
package pablotesting

import (
	"sync"

	"github.com/adaptivemesh/go-pablo/dim"
	"github.com/adaptivemesh/go-pablo/octant"
	"github.com/adaptivemesh/go-pablo/paratree"
	"github.com/adaptivemesh/go-pablo/transport"
)

// NewFleet builds p ParallelTree instances sharing one transport.Bus.
// Construction is itself collective (it gathers the initial partition
// table), so every rank's paratree.New runs on its own goroutine; NewFleet
// blocks until all p are ready.
func NewFleet(d dim.Dim, p int, opts ...paratree.Option) ([]*paratree.ParallelTree, error) {
	bus := transport.NewBus(p)
	trees := make([]*paratree.ParallelTree, p)
	errs := make([]error, p)

	var wg sync.WaitGroup
	wg.Add(p)
	for r := 0; r < p; r++ {
		r := r
		go func() {
			defer wg.Done()
			tr := bus.Rank(r)
			tree, err := paratree.New(d, tr, opts...)
			trees[r] = tree
			errs[r] = err
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return trees, nil
}

// RunCollective runs fn concurrently across every tree in fleet, on its own
// goroutine per rank, and returns the first error encountered (if any) —
// the shape every collective call in a multi-rank test needs, since a real
// collective blocks on cross-rank messages and every rank must call in.
func RunCollective(fleet []*paratree.ParallelTree, fn func(pt *paratree.ParallelTree) error) error {
	errs := make([]error, len(fleet))
	var wg sync.WaitGroup
	wg.Add(len(fleet))
	for i, pt := range fleet {
		i, pt := i, pt
		go func() {
			defer wg.Done()
			errs[i] = fn(pt)
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// AllOctants concatenates every rank's local octants in rank order — the
// global sequence spec.md §8 invariant 2 requires to cover the root cube
// exactly once.
func AllOctants(fleet []*paratree.ParallelTree) []octant.Octant {
	var all []octant.Octant
	for _, pt := range fleet {
		for i := 0; i < pt.GetNumOctants(); i++ {
			o, err := pt.GetOctant(i)
			if err != nil {
				continue
			}
			all = append(all, o)
		}
	}
	return all
}
