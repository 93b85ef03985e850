package paratree

import (
	"errors"
	"time"

	"github.com/adaptivemesh/go-pablo/seal"
)

// ErrNoSigner is returned by PartitionSeal when the tree was built without
// WithSigner: sealing is an optional integrity extra, never required for
// correctness.
var ErrNoSigner = errors.New("paratree: no signer configured")

// ErrNoVerifier is returned by VerifySeal when the tree was built without
// WithVerifier.
var ErrNoVerifier = errors.New("paratree: no verifier configured")

// PartitionSeal signs a digest of this rank's current partition range —
// SPEC_FULL.md §4.K — letting a peer or auditor confirm what this rank
// claims to own without shipping any octants.
func (pt *ParallelTree) PartitionSeal() (seal.Seal, error) {
	if pt.signer == nil {
		return seal.Seal{}, ErrNoSigner
	}
	state := seal.PartitionState{
		Rank:                 pt.rank,
		PartitionRangeGlobal: pt.currentPartitionUpper(),
		FirstDescMorton:      pt.currentFirstDesc(),
		LastDescMorton:       pt.currentLastDesc(),
		GlobalNumOctants:     pt.globalNumOctants,
		Epoch:                pt.epoch,
	}
	return seal.Sign(pt.signer, state, time.Now())
}

// VerifySeal checks s against the configured verifier and returns the
// attested partition state.
func (pt *ParallelTree) VerifySeal(s seal.Seal) (seal.PartitionState, error) {
	if pt.verifier == nil {
		return seal.PartitionState{}, ErrNoVerifier
	}
	return seal.Verify(pt.verifier, s)
}

// currentPartitionUpper reports this rank's inclusive upper global index for
// the signed seal. A rank owning no octants has no such index: it reports
// the upper bound of the last non-empty rank at or before it (0 if none —
// rank 0 itself is empty), which is what resolvedUpper already computes.
func (pt *ParallelTree) currentPartitionUpper() uint64 {
	if pt.rank >= len(pt.partitionRangeGlobalIdx) {
		return 0
	}
	u := pt.resolvedUpper(pt.rank)
	if u < 0 {
		return 0
	}
	return uint64(u)
}

func (pt *ParallelTree) currentFirstDesc() uint64 {
	if pt.rank < len(pt.partitionFirstDesc) {
		return pt.partitionFirstDesc[pt.rank]
	}
	return 0
}

func (pt *ParallelTree) currentLastDesc() uint64 {
	if pt.rank < len(pt.partitionLastDesc) {
		return pt.partitionLastDesc[pt.rank]
	}
	return 0
}
