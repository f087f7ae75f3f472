package batch_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/stipend-engine/batch"
	"github.com/warp/stipend-engine/payroll"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func draftBatch() batch.PaymentBatch {
	return batch.PaymentBatch{
		ID:          "pay-test",
		Name:        "テストバッチ",
		Type:        payroll.TypeDispatch,
		Status:      batch.StatusDraft,
		CreatedDate: time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount: payroll.Yen(0),
	}
}

func stamp(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// TRANSITION TESTS
// =============================================================================

func TestLifecycle_ConfirmStampsDates(t *testing.T) {
	// GIVEN: A draft batch
	// WHEN: Confirming with a scheduled payment date
	// THEN: Status, confirmation stamp, and schedule are all set

	b := draftBatch()
	scheduled := stamp(2024, 8, 10)

	if err := b.Confirm(stamp(2024, 8, 5), &scheduled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Status != batch.StatusConfirmed {
		t.Errorf("expected confirmed, got %s", b.Status)
	}
	if b.ConfirmedDate == nil || !b.ConfirmedDate.Equal(stamp(2024, 8, 5)) {
		t.Errorf("confirmed date not stamped: %v", b.ConfirmedDate)
	}
	if b.ScheduledPaymentDate == nil || !b.ScheduledPaymentDate.Equal(scheduled) {
		t.Errorf("scheduled date not recorded: %v", b.ScheduledPaymentDate)
	}
}

func TestLifecycle_RevertClearsStamps(t *testing.T) {
	// GIVEN: A confirmed batch with stamps
	// WHEN: Reverting
	// THEN: Back to draft with confirmation stamps cleared

	b := draftBatch()
	scheduled := stamp(2024, 8, 10)
	if err := b.Confirm(stamp(2024, 8, 5), &scheduled); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if err := b.Revert(); err != nil {
		t.Fatalf("revert: %v", err)
	}
	if b.Status != batch.StatusDraft {
		t.Errorf("expected draft, got %s", b.Status)
	}
	if b.ConfirmedDate != nil || b.ScheduledPaymentDate != nil {
		t.Error("confirmation stamps should be cleared")
	}
	if !b.Editable() {
		t.Error("reverted batch should be editable again")
	}
}

func TestLifecycle_MarkPaidStampsPaymentDate(t *testing.T) {
	b := draftBatch()
	if err := b.Confirm(stamp(2024, 8, 5), nil); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := b.MarkPaid(stamp(2024, 8, 10)); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if b.Status != batch.StatusPaid {
		t.Errorf("expected paid, got %s", b.Status)
	}
	if b.PaymentDate == nil || !b.PaymentDate.Equal(stamp(2024, 8, 10)) {
		t.Errorf("payment date not stamped: %v", b.PaymentDate)
	}
}

func TestLifecycle_PaidIsTerminal(t *testing.T) {
	// GIVEN: A paid batch
	// WHEN: Attempting any further transition
	// THEN: Rejected with ErrInvalidTransition; the batch is untouched

	b := draftBatch()
	_ = b.Confirm(stamp(2024, 8, 5), nil)
	_ = b.MarkPaid(stamp(2024, 8, 10))
	before := b

	for name, attempt := range map[string]func() error{
		"revert": b.Revert,
		"cancel": b.Cancel,
		"confirm": func() error {
			return b.Confirm(stamp(2024, 8, 11), nil)
		},
	} {
		err := attempt()
		if !errors.Is(err, batch.ErrInvalidTransition) {
			t.Errorf("%s on paid batch: expected ErrInvalidTransition, got %v", name, err)
		}
	}
	if b != before {
		t.Errorf("batch mutated by rejected transition: %+v", b)
	}
}

func TestLifecycle_CancelOnlyFromDraft(t *testing.T) {
	// GIVEN: A confirmed batch
	// WHEN: Cancelling
	// THEN: Rejected - confirmed batches must be reverted first

	b := draftBatch()
	_ = b.Confirm(stamp(2024, 8, 5), nil)

	err := b.Cancel()
	if !errors.Is(err, batch.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	var ite *batch.InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatal("expected InvalidTransitionError detail")
	}
	if ite.From != batch.StatusConfirmed || ite.To != batch.StatusCancelled {
		t.Errorf("unexpected edge in error: %s -> %s", ite.From, ite.To)
	}
}

func TestLifecycle_CancelledIsTerminal(t *testing.T) {
	b := draftBatch()
	if err := b.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := b.Revert(); !errors.Is(err, batch.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCanTransition_Table(t *testing.T) {
	cases := []struct {
		from, to batch.Status
		want     bool
	}{
		{batch.StatusDraft, batch.StatusConfirmed, true},
		{batch.StatusDraft, batch.StatusCancelled, true},
		{batch.StatusDraft, batch.StatusPaid, false},
		{batch.StatusConfirmed, batch.StatusDraft, true},
		{batch.StatusConfirmed, batch.StatusPaid, true},
		{batch.StatusConfirmed, batch.StatusCancelled, false},
		{batch.StatusPaid, batch.StatusDraft, false},
		{batch.StatusCancelled, batch.StatusDraft, false},
	}
	for _, c := range cases {
		if got := batch.CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestDeletable_ByStatus(t *testing.T) {
	// Draft and confirmed batches may be deleted; paid and cancelled not.
	for status, want := range map[batch.Status]bool{
		batch.StatusDraft:     true,
		batch.StatusConfirmed: true,
		batch.StatusPaid:      false,
		batch.StatusCancelled: false,
	} {
		b := draftBatch()
		b.Status = status
		if got := b.Deletable(); got != want {
			t.Errorf("Deletable() in %s = %v, want %v", status, got, want)
		}
	}
}

func TestStatusLabels(t *testing.T) {
	if batch.StatusDraft.Label() != "作成中" {
		t.Errorf("draft label: %s", batch.StatusDraft.Label())
	}
	if batch.StatusPaid.Label() != "支払済" {
		t.Errorf("paid label: %s", batch.StatusPaid.Label())
	}
	if batch.Status("bogus").Valid() {
		t.Error("bogus status should not validate")
	}
}
