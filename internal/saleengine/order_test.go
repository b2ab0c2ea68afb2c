package saleengine

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-vendas/internal/money"
)

var testSettings = Settings{TaxRateBps: 600} // 6.00%

func draftWithItems(t *testing.T) *Draft {
	t.Helper()
	d := &Draft{
		CustomerID: uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"),
		SellerID:   uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"),
		Status:     StatusPending,
		Category:   "SERVICE",
		EntryDate:  date(2024, time.January, 1),
		ExitDate:   date(2024, time.January, 1),
		ApplyTax:   true,
	}
	if err := d.Ledger.Add(productA, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	return d
}

func TestComputeGrandTotalIsSubtotalPlusTax(t *testing.T) {
	var l Ledger
	_ = l.Add(productA, 2) // 240.00
	summary := Compute(l.Items(), true, testSettings)
	if summary.Subtotal != money.MustParse("240.00") {
		t.Fatalf("subtotal = %s", money.Format(summary.Subtotal))
	}
	if summary.Tax != money.MustParse("14.40") {
		t.Fatalf("tax = %s, want 14.40", money.Format(summary.Tax))
	}
	if summary.GrandTotal != summary.Subtotal+summary.Tax {
		t.Fatalf("grand total %d != subtotal %d + tax %d", summary.GrandTotal, summary.Subtotal, summary.Tax)
	}
}

func TestComputeTaxZeroWhenNotApplied(t *testing.T) {
	var l Ledger
	_ = l.Add(productA, 2)
	summary := Compute(l.Items(), false, Settings{TaxRateBps: 2500})
	if summary.Tax != 0 {
		t.Fatalf("tax = %d, want 0", summary.Tax)
	}
	if summary.TaxRateBps != 0 {
		t.Fatalf("rate = %d, want 0", summary.TaxRateBps)
	}
	if summary.GrandTotal != summary.Subtotal {
		t.Fatalf("grand total should equal subtotal when tax is off")
	}
}

func TestGenerateInstallmentsReplacesSchedule(t *testing.T) {
	d := draftWithItems(t)
	d.PaymentCondition = "15/30"
	if err := d.GenerateInstallments(testSettings); err != nil {
		t.Fatalf("generate: %v", err)
	}
	first := d.Installments
	if len(first) != 2 {
		t.Fatalf("expected 2 installments, got %d", len(first))
	}

	d.PaymentCondition = "10/20/30"
	if err := d.GenerateInstallments(testSettings); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if len(d.Installments) != 3 {
		t.Fatalf("expected the old schedule to be fully replaced, got %d entries", len(d.Installments))
	}
	for i, inst := range d.Installments {
		if inst.Number != i+1 {
			t.Fatalf("sequence renumbered from 1, got %d at position %d", inst.Number, i)
		}
	}
}

func TestGenerateInstallmentsKeepsScheduleOnError(t *testing.T) {
	d := draftWithItems(t)
	d.PaymentCondition = "15/30"
	if err := d.GenerateInstallments(testSettings); err != nil {
		t.Fatalf("generate: %v", err)
	}

	d.PaymentCondition = "15/x"
	err := d.GenerateInstallments(testSettings)
	if !errors.Is(err, ErrInvalidTerm) {
		t.Fatalf("expected ErrInvalidTerm, got %v", err)
	}
	if len(d.Installments) != 2 {
		t.Fatalf("prior schedule must stay untouched on validation failure")
	}
}

func TestGenerateInstallmentsRequiresItems(t *testing.T) {
	d := draftWithItems(t)
	d.Ledger.Remove(productA.ID)
	d.PaymentCondition = "15"
	if err := d.GenerateInstallments(testSettings); !errors.Is(err, ErrNonPositiveTotal) {
		t.Fatalf("expected ErrNonPositiveTotal for an empty cart, got %v", err)
	}
}

func TestDraftValidate(t *testing.T) {
	d := draftWithItems(t)
	d.CustomerID = uuid.Nil
	if err := d.Validate(); !errors.Is(err, ErrMissingCustomer) {
		t.Fatalf("expected ErrMissingCustomer, got %v", err)
	}
	d = draftWithItems(t)
	d.SellerID = uuid.Nil
	if err := d.Validate(); !errors.Is(err, ErrMissingSeller) {
		t.Fatalf("expected ErrMissingSeller, got %v", err)
	}
	d = draftWithItems(t)
	d.Ledger.Remove(productA.ID)
	if err := d.Validate(); !errors.Is(err, ErrNoItems) {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
}

func TestToCommitPayloadSerialisesFixedPointStrings(t *testing.T) {
	d := draftWithItems(t)
	d.PaymentCondition = "15/30/45"
	_ = d.Ledger.SetUnitPrice(productA.ID, money.MustParse("100.00"))
	d.ApplyTax = false
	if err := d.GenerateInstallments(testSettings); err != nil {
		t.Fatalf("generate: %v", err)
	}
	payload, err := d.ToCommitPayload()
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.Items[0].UnitPrice != "100.00" {
		t.Fatalf("unit price = %q", payload.Items[0].UnitPrice)
	}
	if len(payload.Installments) != 3 {
		t.Fatalf("expected 3 installments in payload")
	}
	if payload.Installments[2].Amount != "33.34" {
		t.Fatalf("last amount = %q, want 33.34", payload.Installments[2].Amount)
	}
	if payload.Installments[0].DueDate != "2024-01-16" {
		t.Fatalf("first due date = %q, want 2024-01-16", payload.Installments[0].DueDate)
	}
	if payload.EntryDate != "2024-01-01" {
		t.Fatalf("entry date = %q", payload.EntryDate)
	}
}

func TestStatusMachineAllowsAnyTransition(t *testing.T) {
	states := []Status{StatusPending, StatusCompleted, StatusCanceled}
	for _, from := range states {
		for _, to := range states {
			if !CanTransition(from, to) {
				t.Fatalf("transition %s -> %s should be permitted", from, to)
			}
		}
	}
	if CanTransition(StatusPending, Status("SHIPPED")) {
		t.Fatalf("unknown target state must be rejected")
	}
	if _, err := ParseStatus("archived"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}
