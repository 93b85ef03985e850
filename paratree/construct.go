package paratree

import (
	"time"

	"github.com/google/uuid"

	"github.com/adaptivemesh/go-pablo/dim"
	"github.com/adaptivemesh/go-pablo/domain"
	"github.com/adaptivemesh/go-pablo/internal/snowflake"
	"github.com/adaptivemesh/go-pablo/octant"
	"github.com/adaptivemesh/go-pablo/octree"
	"github.com/adaptivemesh/go-pablo/transport"
)

// New builds a ParallelTree over the unit domain: rank 0 starts with one
// root octant (level 0), every other rank starts empty, per spec.md §3's
// lifecycle. Construction is itself collective — every rank in tr must
// call New (or NewWithMapper) before any other collective runs — since it
// performs the initial partition-table gather.
func New(d dim.Dim, tr transport.Transport, opts ...Option) (*ParallelTree, error) {
	m := domain.NewUnitMapper(d)
	return newParallelTree(d, &m, tr, opts...)
}

// NewWithMapper builds a ParallelTree over the physical cube of side L
// anchored at (x0, y0, z0).
func NewWithMapper(d dim.Dim, x0, y0, z0, l float64, tr transport.Transport, opts ...Option) (*ParallelTree, error) {
	m := domain.NewMapper(d, x0, y0, z0, l)
	return newParallelTree(d, &m, tr, opts...)
}

func newParallelTree(d dim.Dim, m *domain.Mapper, tr transport.Transport, opts ...Option) (*ParallelTree, error) {
	c := newConfig(opts)

	var initial []octant.Octant
	if tr.Rank() == 0 {
		initial = []octant.Octant{octree.Root(d)}
	}

	pt := &ParallelTree{
		local:     octree.New(d, initial, c.localOpts...),
		mapper:    m,
		transport: tr,
		rank:      tr.Rank(),
		size:      tr.Size(),
		epochTime: time.Unix(0, 0).UTC(),
		log:       c.log,
		signer:    c.signer,
		verifier:  c.verifier,
	}
	pt.idGen = snowflake.NewGenerator(pt.rank, pt.epochTime)

	var localID []byte
	if pt.rank == 0 {
		id := uuid.New()
		localID = id[:]
	}
	idBytes, err := pt.broadcastBytes(localID)
	if err != nil {
		return nil, err
	}
	if pt.fleetID, err = uuid.FromBytes(idBytes); err != nil {
		return nil, err
	}

	if err := pt.recomputeBookkeeping(); err != nil {
		return nil, err
	}
	if err := pt.rebuildGhostHalo(); err != nil {
		return nil, err
	}
	return pt, nil
}

func (pt *ParallelTree) nextCollectiveID() (uint64, error) {
	return pt.idGen.Next(time.Now())
}

// Rank returns this tree's rank.
func (pt *ParallelTree) Rank() int { return pt.rank }

// Size returns the fleet size.
func (pt *ParallelTree) Size() int { return pt.size }

// Mapper returns the physical-domain affine mapper.
func (pt *ParallelTree) Mapper() domain.Mapper { return *pt.mapper }
