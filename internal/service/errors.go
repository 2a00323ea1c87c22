package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for the reconciliation services. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrNoLocalEndpoint is returned when an operation requires a local
	// endpoint but the session is foreign (neither side is local).
	ErrNoLocalEndpoint = errors.New("session has no local endpoint")

	// ErrPathEscapesRoot is returned when a conflict root resolves outside
	// its synchronization root. The operation is aborted rather than
	// touching paths outside the managed tree.
	ErrPathEscapesRoot = errors.New("conflict path escapes synchronization root")

	// ErrConflictNotFound is returned when a referenced conflict root is not
	// present on the session.
	ErrConflictNotFound = errors.New("conflict not found on session")

	// ErrRestoreExhausted wraps the final failure after all restore attempts
	// for one profile are spent.
	ErrRestoreExhausted = errors.New("restore attempts exhausted")
)

// ManualResolutionError signals that a conflict cannot be auto-applied for
// the session's endpoint type (container endpoints) and carries the
// human-runnable script that performs the equivalent resolution. This is a
// deliberate reduced-guarantee fallback, never a silent no-op.
type ManualResolutionError struct {
	Root   string
	Script string
}

func (e *ManualResolutionError) Error() string {
	return fmt.Sprintf("conflict at %q requires manual resolution; run the generated script", e.Root)
}
