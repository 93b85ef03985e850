package octree

import (
	"sort"

	"github.com/adaptivemesh/go-pablo/bloom"
	"github.com/adaptivemesh/go-pablo/dim"
	"github.com/adaptivemesh/go-pablo/internal/telemetry"
	"github.com/adaptivemesh/go-pablo/octant"
	"github.com/adaptivemesh/go-pablo/pabloerrors"
)

// LocalTree owns one rank's sorted octants and ghost octants, plus the
// bookkeeping the source's LocalTree class keeps alongside them:
// localMaxDepth, balanceCodim, and connectivity arrays materialised only on
// request.
type LocalTree struct {
	D dim.Dim

	octants []octant.Octant
	ghosts  []octant.Octant

	balanceCodim  int
	localMaxDepth uint8

	ghostBloomEnabled bool
	ghostBloom        *bloom.MortonFilter

	log telemetry.Logger

	nodes             [][]uint32
	connectivity      [][]int
	ghostConnectivity [][]int
}

// Option configures a LocalTree at construction.
type Option func(*LocalTree)

// WithGhostBloomFilter enables the optional Morton-ghost prefilter,
// rebuilt every time the ghost layer changes. Worthwhile once ghost sets
// are large enough that a binary search dominates neighbour-search cost.
func WithGhostBloomFilter(enabled bool) Option {
	return func(t *LocalTree) { t.ghostBloomEnabled = enabled }
}

// WithLogger overrides the default no-op logger.
func WithLogger(log telemetry.Logger) Option {
	return func(t *LocalTree) { t.log = log }
}

// Root returns the level-0 octant covering the entire logical domain for d.
func Root(d dim.Dim) octant.Octant {
	return octant.Octant{D: d, Level: 0}
}

// New builds a LocalTree seeded with initial (already sorted under
// octant.Less, which is the caller's responsibility — paratree seeds rank 0
// with a single Root(d) and every other rank with nil).
func New(d dim.Dim, initial []octant.Octant, opts ...Option) *LocalTree {
	t := &LocalTree{
		D:            d,
		octants:      append([]octant.Octant(nil), initial...),
		balanceCodim: 1,
		log:          telemetry.NewNoop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.recomputeLocalMaxDepth()
	return t
}

// NumOctants returns the number of local octants.
func (t *LocalTree) NumOctants() int { return len(t.octants) }

// NumGhosts returns the number of ghost octants.
func (t *LocalTree) NumGhosts() int { return len(t.ghosts) }

// Octant returns local octant i.
func (t *LocalTree) Octant(i int) (octant.Octant, error) {
	if i < 0 || i >= len(t.octants) {
		return octant.Octant{}, pabloerrors.ErrIndexOutOfRange
	}
	return t.octants[i], nil
}

// GhostOctant returns ghost octant i.
func (t *LocalTree) GhostOctant(i int) (octant.Octant, error) {
	if i < 0 || i >= len(t.ghosts) {
		return octant.Octant{}, pabloerrors.ErrIndexOutOfRange
	}
	return t.ghosts[i], nil
}

// Octants exposes the full local slice for paratree's internal use (not
// part of the user-facing facade, which stays index-addressed).
func (t *LocalTree) Octants() []octant.Octant { return t.octants }

// Ghosts exposes the full ghost slice for paratree's internal use.
func (t *LocalTree) Ghosts() []octant.Octant { return t.ghosts }

// SetOctants replaces the local octant slice wholesale (used by paratree
// after migration/cross-border coarsening assembles a new sorted run).
func (t *LocalTree) SetOctants(o []octant.Octant) {
	t.octants = o
	t.recomputeLocalMaxDepth()
}

// SetGhosts replaces the ghost slice wholesale and rebuilds the optional
// Bloom prefilter over it.
func (t *LocalTree) SetGhosts(g []octant.Octant) {
	t.ghosts = g
	t.rebuildGhostBloom()
}

// SetMarker sets the refine/coarsen marker of local octant i.
func (t *LocalTree) SetMarker(i int, m int8) error {
	if i < 0 || i >= len(t.octants) {
		return pabloerrors.ErrIndexOutOfRange
	}
	t.octants[i].Marker = m
	return nil
}

// SetBalance sets the notBalance bit of local octant i.
func (t *LocalTree) SetBalance(i int, flag bool) error {
	if i < 0 || i >= len(t.octants) {
		return pabloerrors.ErrIndexOutOfRange
	}
	t.octants[i].Flags.NotBalance = flag
	return nil
}

// BalanceCodimension returns the currently configured balance codimension.
func (t *LocalTree) BalanceCodimension() int { return t.balanceCodim }

// SetBalanceCodimension sets the codimension 2:1 balance is enforced
// across (1=face, 2=+edge, 3=+node). Values above dim are clamped to dim,
// per design note (iii) — the source leaves balanceCodim > dim undefined.
func (t *LocalTree) SetBalanceCodimension(c int) {
	if c < 1 {
		c = 1
	}
	if n := t.D.N(); c > n {
		c = n
	}
	t.balanceCodim = c
}

// LocalMaxDepth returns the deepest level among local octants.
func (t *LocalTree) LocalMaxDepth() uint8 { return t.localMaxDepth }

func (t *LocalTree) recomputeLocalMaxDepth() {
	var max uint8
	for _, o := range t.octants {
		if o.Level > max {
			max = o.Level
		}
	}
	t.localMaxDepth = max
}

func (t *LocalTree) rebuildGhostBloom() {
	if !t.ghostBloomEnabled {
		t.ghostBloom = nil
		return
	}
	mortons := make([]uint64, len(t.ghosts))
	for i, g := range t.ghosts {
		mortons[i] = g.ComputeMorton()
	}
	t.ghostBloom = bloom.NewMortonFilter(mortons)
}

// CheckSorted verifies the strictly-increasing Morton-with-level invariant
// spec.md §4.D.1/§8.1 requires after every mutation. Returns
// pabloerrors.ErrInvariantViolation on the first violation found.
func (t *LocalTree) CheckSorted() error {
	for i := 1; i < len(t.octants); i++ {
		if !octant.Less(t.octants[i-1], t.octants[i]) {
			return pabloerrors.ErrInvariantViolation
		}
	}
	if !sort.SliceIsSorted(t.ghosts, func(i, j int) bool { return octant.Less(t.ghosts[i], t.ghosts[j]) }) {
		return pabloerrors.ErrInvariantViolation
	}
	return nil
}
