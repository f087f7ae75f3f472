/*
errors.go - Centralized error types for the batch lifecycle

PURPOSE:
  All lifecycle error values in one place. Callers discriminate with
  errors.Is; the HTTP layer maps them onto status codes.

ERROR CATEGORIES:
  1. Transition errors - disallowed status changes
  2. Guard errors      - mutations on locked or missing batches
*/
package batch

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTransition is returned when a status change is not
	// permitted by the lifecycle table. Never applied silently.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrBatchLocked is returned when editing a batch past its editable
	// status (commit, rename, record changes on confirmed/paid batches).
	ErrBatchLocked = errors.New("batch is no longer editable")

	// ErrBatchNotFound is returned when a referenced batch doesn't exist.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrBatchNotDeletable is returned when deleting a paid or cancelled batch.
	ErrBatchNotDeletable = errors.New("batch cannot be deleted")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidTransitionError reports the attempted edge.
type InvalidTransitionError struct {
	BatchID BatchID
	From    Status
	To      Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s (batch %s)", e.From, e.To, e.BatchID)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// IsClientError returns true if the error is due to a caller mistake
// rather than a system failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrBatchLocked) ||
		errors.Is(err, ErrBatchNotDeletable)
}
