package batch

import "context"

// =============================================================================
// STORE - Batch persistence interface
// =============================================================================

// Store persists payment batches. The in-memory implementation lives in
// batch/store; store/sqlite at the repo root persists to disk.
type Store interface {
	// Save inserts or replaces a batch.
	Save(ctx context.Context, b PaymentBatch) error

	// Get returns a batch, or nil when it doesn't exist.
	Get(ctx context.Context, id BatchID) (*PaymentBatch, error)

	// List returns all batches ordered by creation date, then id.
	List(ctx context.Context) ([]PaymentBatch, error)

	// Delete removes a batch. Deleting a missing batch is not an error.
	Delete(ctx context.Context, id BatchID) error
}
