package paratree

import (
	"time"

	"github.com/google/uuid"
	"github.com/veraison/go-cose"

	"github.com/adaptivemesh/go-pablo/domain"
	"github.com/adaptivemesh/go-pablo/internal/snowflake"
	"github.com/adaptivemesh/go-pablo/internal/telemetry"
	"github.com/adaptivemesh/go-pablo/octree"
	"github.com/adaptivemesh/go-pablo/transport"
)

// ParallelTree is the parallel tree coordinator: spec.md §3's "parallel
// tree state" plus every collective operation named in §4.E and the
// facade API of §6.
type ParallelTree struct {
	local  *octree.LocalTree
	mapper *domain.Mapper

	transport transport.Transport
	rank      int
	size      int

	partitionRangeGlobalIdx []uint64
	partitionFirstDesc      []uint64
	partitionLastDesc       []uint64
	globalNumOctants        uint64
	maxDepthGlobal          uint8
	epoch                   uint32

	idGen     *snowflake.Generator
	epochTime time.Time
	log       telemetry.Logger

	signer   cose.Signer
	verifier cose.Verifier

	fleetID uuid.UUID
}

// FleetID returns the UUID rank 0 generated at construction and broadcast
// to every rank — a stable identifier for one fleet's lifetime, the way
// the teacher tags a log tenant with a UUID rather than a bare integer
// (see massifs/storage's tenant-path UUIDs). No log line or seal carries
// it; hosts read it through this method.
func (pt *ParallelTree) FleetID() uuid.UUID { return pt.fleetID }

// Option configures a ParallelTree at construction, via an intermediate
// config struct since some options (the ghost Bloom filter) must be
// forwarded to the octree.LocalTree constructor rather than applied to
// ParallelTree directly.
type Option func(*config)

type config struct {
	log        telemetry.Logger
	localOpts  []octree.Option
	signer     cose.Signer
	verifier   cose.Verifier
}

// WithLogger overrides the default no-op logger.
func WithLogger(log telemetry.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithGhostBloomFilter threads through to the underlying local tree's
// ghost Morton prefilter (component L).
func WithGhostBloomFilter(enabled bool) Option {
	return func(c *config) { c.localOpts = append(c.localOpts, octree.WithGhostBloomFilter(enabled)) }
}

// WithSigner configures the COSE signer used by PartitionSeal; without one,
// sealing is unavailable and PartitionSeal returns ErrNoSigner.
func WithSigner(signer cose.Signer) Option {
	return func(c *config) { c.signer = signer }
}

// WithVerifier configures the COSE verifier used by VerifySeal.
func WithVerifier(verifier cose.Verifier) Option {
	return func(c *config) { c.verifier = verifier }
}

func newConfig(opts []Option) *config {
	c := &config{log: telemetry.NewNoop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
