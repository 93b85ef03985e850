// Package seal implements the optional partition-range attestation
// SPEC_FULL.md §4.K adds: a COSE-signed digest of a rank's partition range,
// letting a verifier confirm what a rank claims to own without shipping its
// octants. This is additive to spec.md — the original PABLO has no
// attestation layer — but it is exactly the shape of integrity feature this
// corpus reaches for (the teacher signs its own partition ("massif") state
// the same way, see massifs.RootSigner/massifs/cose), so it is carried as
// part of the ambient stack rather than invented from nothing.
package seal

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/veraison/go-cose"
)

// ErrSealVerifyFailed mirrors the teacher's own sentinel for a seal whose
// signature does not check out.
var ErrSealVerifyFailed = errors.New("seal: signature verification failed")

// PartitionState is the payload a Seal commits to: enough of one rank's
// partition bookkeeping (spec.md §4.E.1) to let a verifier confirm the rank
// owns exactly the global index range it claims.
type PartitionState struct {
	Rank                 int    `cbor:"1,keyasint"`
	PartitionRangeGlobal uint64 `cbor:"2,keyasint"`
	FirstDescMorton      uint64 `cbor:"3,keyasint"`
	LastDescMorton       uint64 `cbor:"4,keyasint"`
	GlobalNumOctants     uint64 `cbor:"5,keyasint"`
	Epoch                uint32 `cbor:"6,keyasint"`
	Timestamp            int64  `cbor:"7,keyasint"`
}

// Seal is a COSE Sign1 message over a CBOR-encoded PartitionState.
type Seal struct {
	Bytes []byte
}

// Sign produces a Seal over state, signed by signer.
func Sign(signer cose.Signer, state PartitionState, now time.Time) (Seal, error) {
	state.Timestamp = now.UnixMilli()
	payload, err := cbor.Marshal(state)
	if err != nil {
		return Seal{}, err
	}
	msg := cose.Sign1Message{
		Headers: cose.Headers{
			Protected: cose.ProtectedHeader{cose.HeaderLabelAlgorithm: signer.Algorithm()},
		},
		Payload: payload,
	}
	if err := msg.Sign(rand.Reader, nil, signer); err != nil {
		return Seal{}, err
	}
	b, err := msg.MarshalCBOR()
	if err != nil {
		return Seal{}, err
	}
	return Seal{Bytes: b}, nil
}

// Verify checks seal against verifier and, on success, returns the attested
// PartitionState.
func Verify(verifier cose.Verifier, seal Seal) (PartitionState, error) {
	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(seal.Bytes); err != nil {
		return PartitionState{}, err
	}
	if err := msg.Verify(nil, verifier); err != nil {
		return PartitionState{}, errors.Join(ErrSealVerifyFailed, err)
	}
	var state PartitionState
	if err := cbor.Unmarshal(msg.Payload, &state); err != nil {
		return PartitionState{}, err
	}
	return state, nil
}
