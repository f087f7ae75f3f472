/*
lifecycle.go - Batch status state machine

PURPOSE:
  Implements the transition table and the date stamps each edge applies.
  The UI disables disallowed actions, but the guard lives here so a
  non-UI caller cannot force an illegal status change either.

TRANSITION TABLE:
  draft     --confirm--> confirmed   stamps confirmedDate (+ scheduled date)
  draft     --cancel---> cancelled   terminal
  confirmed --revert---> draft       clears confirmation stamps
  confirmed --pay------> paid        stamps paymentDate
*/
package batch

import "time"

// transitions enumerates every legal edge.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusDraft, StatusPaid},
	StatusPaid:      {},
	StatusCancelled: {},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (b *PaymentBatch) transition(to Status) error {
	if !CanTransition(b.Status, to) {
		return &InvalidTransitionError{BatchID: b.ID, From: b.Status, To: to}
	}
	b.Status = to
	return nil
}

// Confirm moves draft -> confirmed, stamping the confirmation date and
// recording the scheduled payment date when provided.
func (b *PaymentBatch) Confirm(now time.Time, scheduledPaymentDate *time.Time) error {
	if err := b.transition(StatusConfirmed); err != nil {
		return err
	}
	b.ConfirmedDate = &now
	if scheduledPaymentDate != nil {
		b.ScheduledPaymentDate = scheduledPaymentDate
	}
	return nil
}

// Revert moves confirmed -> draft and clears the confirmation stamps,
// reopening the batch for editing.
func (b *PaymentBatch) Revert() error {
	if err := b.transition(StatusDraft); err != nil {
		return err
	}
	b.ConfirmedDate = nil
	b.ScheduledPaymentDate = nil
	return nil
}

// MarkPaid moves confirmed -> paid and stamps the payment date.
func (b *PaymentBatch) MarkPaid(now time.Time) error {
	if err := b.transition(StatusPaid); err != nil {
		return err
	}
	b.PaymentDate = &now
	return nil
}

// Cancel moves draft -> cancelled. Terminal: a cancelled batch accepts
// no further transitions, though it remained deletable while draft.
func (b *PaymentBatch) Cancel() error {
	return b.transition(StatusCancelled)
}
