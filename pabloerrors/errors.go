// Package pabloerrors defines the sentinel errors octree and paratree
// operations return, grounded directly on the teacher's own package-level
// `var (...)` sentinel blocks (see massifs/errors.go, massifs/blobnotfounderr.go):
// a small, fixed set of named failures rather than ad-hoc string errors.
package pabloerrors

import "errors"

var (
	// ErrInvariantViolation means the local tree's sorted-unique invariant
	// broke, or a peer's message did not have the shape the protocol
	// expects. A transport failure during migration is returned as
	// ErrTransportFailed, with no rollback of octants already moved.
	ErrInvariantViolation = errors.New("pablo: invariant violation")

	// ErrIndexOutOfRange is returned by index-addressed getters.
	ErrIndexOutOfRange = errors.New("pablo: index out of range")

	// ErrMaxLevelReached is never returned to a caller — refine silently
	// no-ops on an octant already at MaxLevel, per spec. It exists as a
	// sentinel so internal code paths can document that choice with
	// errors.Is rather than a bare comment.
	ErrMaxLevelReached = errors.New("pablo: max level reached")

	// ErrBalanceNonConvergent is returned when balance21 does not reach a
	// fixed point within 2*MaxLevel rounds.
	ErrBalanceNonConvergent = errors.New("pablo: balance did not converge")

	// ErrTransportFailed wraps any failure from the transport layer during
	// a collective operation.
	ErrTransportFailed = errors.New("pablo: transport failed")

	// ErrNoPayloadAdapter names a payload migration or exchange attempted
	// without an adapter. No function in this module returns it: load
	// balance with a nil adapter migrates octants only, and Communicate
	// does not check its adapter for nil.
	ErrNoPayloadAdapter = errors.New("pablo: no payload adapter configured")
)
