/*
service.go - Batch administration and the commit operation

PURPOSE:
  Service is the bridge between the calculation engine and the batch
  lifecycle. Commit takes the current calculation list, snapshots the
  aggregate total and member count onto the batch, and persists it.
  The remaining methods wrap the lifecycle transitions with persistence.

SIMULATED SAVE DELAY:
  Commit sleeps a fixed, configurable delay standing in for a future
  network call. The delay is cooperative (the context can end it early)
  and always "succeeds" - there is no retry or failure mode to model in
  a single-process, in-memory system.
*/
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/stipend-engine/payroll"
)

// =============================================================================
// SERVICE
// =============================================================================

// Service coordinates batch mutations against a Store.
type Service struct {
	Store Store

	// Now returns the current time; tests override it for stable stamps.
	Now func() time.Time

	// SaveDelay simulates the latency of a future persistence call.
	// Zero disables it.
	SaveDelay time.Duration
}

func NewService(store Store) *Service {
	return &Service{Store: store, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// =============================================================================
// BATCH ADMINISTRATION
// =============================================================================

// Create opens a new draft batch.
func (s *Service) Create(ctx context.Context, id BatchID, name string, kind payroll.PaymentType, description, createdBy string) (*PaymentBatch, error) {
	if id == "" {
		id = BatchID(fmt.Sprintf("pay%d", s.now().UnixNano()))
	}
	b := PaymentBatch{
		ID:          id,
		Name:        name,
		Type:        kind,
		Status:      StatusDraft,
		CreatedDate: s.now(),
		Description: description,
		CreatedBy:   createdBy,
		TotalAmount: payroll.Yen(0),
	}
	if err := s.Store.Save(ctx, b); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateDetails renames or re-describes a batch. Editable batches only.
func (s *Service) UpdateDetails(ctx context.Context, id BatchID, name, description string) (*PaymentBatch, error) {
	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Editable() {
		return nil, fmt.Errorf("update batch %s: %w", id, ErrBatchLocked)
	}
	b.Name = name
	b.Description = description
	if err := s.Store.Save(ctx, *b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes a batch, permitted while status is not paid/cancelled.
func (s *Service) Delete(ctx context.Context, id BatchID) error {
	b, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !b.Deletable() {
		return fmt.Errorf("delete batch %s (status %s): %w", id, b.Status, ErrBatchNotDeletable)
	}
	return s.Store.Delete(ctx, id)
}

// =============================================================================
// COMMIT - Snapshot calculation results onto the batch
// =============================================================================

// Commit writes the aggregate of the given calculations onto the batch:
// TotalAmount = sum of per-member totals, MemberCount = list length.
// Only editable (draft) batches accept a commit; afterwards the results
// are read-only until the batch is reverted.
func (s *Service) Commit(ctx context.Context, id BatchID, calcs []payroll.PayrollCalculation) (*PaymentBatch, error) {
	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Editable() {
		return nil, fmt.Errorf("commit batch %s (status %s): %w", id, b.Status, ErrBatchLocked)
	}

	if s.SaveDelay > 0 {
		select {
		case <-time.After(s.SaveDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	b.TotalAmount = payroll.TotalAmount(calcs)
	b.MemberCount = len(calcs)
	if err := s.Store.Save(ctx, *b); err != nil {
		return nil, err
	}
	return b, nil
}

// =============================================================================
// LIFECYCLE TRANSITIONS (persisted)
// =============================================================================

// Confirm finalizes a draft batch for payment.
func (s *Service) Confirm(ctx context.Context, id BatchID, scheduledPaymentDate *time.Time) (*PaymentBatch, error) {
	return s.mutate(ctx, id, func(b *PaymentBatch) error {
		return b.Confirm(s.now(), scheduledPaymentDate)
	})
}

// Revert reopens a confirmed batch for editing.
func (s *Service) Revert(ctx context.Context, id BatchID) (*PaymentBatch, error) {
	return s.mutate(ctx, id, func(b *PaymentBatch) error {
		return b.Revert()
	})
}

// MarkPaid records that a confirmed batch has been disbursed.
func (s *Service) MarkPaid(ctx context.Context, id BatchID) (*PaymentBatch, error) {
	return s.mutate(ctx, id, func(b *PaymentBatch) error {
		return b.MarkPaid(s.now())
	})
}

// Cancel terminally withdraws a draft batch.
func (s *Service) Cancel(ctx context.Context, id BatchID) (*PaymentBatch, error) {
	return s.mutate(ctx, id, func(b *PaymentBatch) error {
		return b.Cancel()
	})
}

func (s *Service) mutate(ctx context.Context, id BatchID, fn func(*PaymentBatch) error) (*PaymentBatch, error) {
	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(b); err != nil {
		return nil, err
	}
	if err := s.Store.Save(ctx, *b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) get(ctx context.Context, id BatchID) (*PaymentBatch, error) {
	b, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("batch %s: %w", id, ErrBatchNotFound)
	}
	return b, nil
}
