/*
Package batch manages the payment-batch lifecycle for stipend payouts.

PURPOSE:
  A PaymentBatch is the unit of payroll administration: one batch
  aggregates many members' stipend calculations for one pay run. This
  package owns the batch's status state machine, the date stamps each
  transition applies, and the commit operation that snapshots engine
  output onto the batch.

STATE MACHINE:
  draft -----confirm----> confirmed ----mark paid----> paid
    |  <-----revert-----/
    \------cancel------> cancelled (terminal)

  - Only draft batches are editable: commit, rename, and per-record
    edits are rejected afterwards.
  - Deletion is permitted while status is not in {paid, cancelled}.
  - Any transition outside the table is rejected with an explicit
    InvalidTransition error; the batch is left untouched.

TOTALS ARE A SNAPSHOT:
  TotalAmount and MemberCount are written at commit time and equal the
  sum/count of the calculations produced for the batch at that moment.
  They are not a live view; re-editing a session does not move them
  until the next commit.

SEE ALSO:
  - lifecycle.go: Transition table and guards
  - service.go: Commit and batch administration
  - store/: In-memory store; store/sqlite at the repo root persists
*/
package batch

import (
	"time"

	"github.com/warp/stipend-engine/payroll"
)

// =============================================================================
// BATCH
// =============================================================================

type BatchID string

// Status is the batch's position in the payment lifecycle.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// statusLabels are the administrative display names.
var statusLabels = map[Status]string{
	StatusDraft:     "作成中",
	StatusConfirmed: "確定",
	StatusPaid:      "支払済",
	StatusCancelled: "取消",
}

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// PaymentBatch is one administrative pay run.
type PaymentBatch struct {
	ID          BatchID
	Name        string
	Type        payroll.PaymentType
	Status      Status
	CreatedDate time.Time
	Description string
	CreatedBy   string

	// Stamped by lifecycle transitions.
	ConfirmedDate        *time.Time
	ScheduledPaymentDate *time.Time
	PaymentDate          *time.Time

	// Snapshot of the last committed calculation run.
	TotalAmount payroll.Money
	MemberCount int
}

// Editable reports whether calculation results and batch fields may
// still be changed. This is the field-level guard: past draft, records
// are read-only.
func (b *PaymentBatch) Editable() bool {
	return b.Status == StatusDraft
}

// Deletable reports whether the batch may be removed outright.
func (b *PaymentBatch) Deletable() bool {
	return b.Status != StatusPaid && b.Status != StatusCancelled
}
