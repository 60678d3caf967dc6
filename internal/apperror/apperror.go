// ABOUTME: Sentinel errors shared across the habit engine packages.
// ABOUTME: Callers classify failures with errors.Is; surfaces map them to exit codes or HTTP statuses.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the referenced habit, goal, or achievement is
	// unknown to this owner.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput covers rejected input: empty required fields,
	// non-positive targets or deltas, future-dated check-ins.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict means a uniqueness invariant would be violated.
	ErrConflict = errors.New("conflict")

	// ErrAlreadyCheckedIn is the duplicate check-in case of ErrConflict.
	// It wraps ErrConflict so errors.Is(err, ErrConflict) also holds.
	ErrAlreadyCheckedIn = fmt.Errorf("already checked in today: %w", ErrConflict)

	// ErrUnavailable means the backing store could not be reached. The
	// operation aborted cleanly; retrying is the caller's decision.
	ErrUnavailable = errors.New("store unavailable")
)

// NotFound wraps ErrNotFound with the entity kind and identifier.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// Invalid wraps ErrInvalidInput with a reason.
func Invalid(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrInvalidInput)
}
