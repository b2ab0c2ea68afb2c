package saleengine

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-vendas/internal/money"
)

var (
	productA = Product{
		ID:                uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Name:              "Limpeza de pele",
		SalePrice:         money.MustParse("120.00"),
		CommissionRateBps: 1000, // 10%
		PaysCommission:    true,
	}
	productB = Product{
		ID:                uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		Name:              "Massagem",
		SalePrice:         money.MustParse("80.00"),
		CommissionRateBps: 500, // 5%
		PaysCommission:    false,
	}
)

func TestLedgerMergesDuplicateProducts(t *testing.T) {
	var l Ledger
	if err := l.Add(productA, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := l.Add(productA, 3); err != nil {
		t.Fatalf("add: %v", err)
	}
	items := l.Items()
	if len(items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", items[0].Quantity)
	}
}

func TestLedgerRejectsZeroQuantity(t *testing.T) {
	var l Ledger
	if err := l.Add(productA, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestLedgerPriceOverrideSurvivesMerge(t *testing.T) {
	var l Ledger
	_ = l.Add(productA, 1)
	if err := l.SetUnitPrice(productA.ID, money.MustParse("99.90")); err != nil {
		t.Fatalf("set price: %v", err)
	}
	// Adding more quantity merges into the existing line and must not reset
	// the manual price back to the catalog value.
	_ = l.Add(productA, 1)
	items := l.Items()
	if items[0].UnitPrice != money.MustParse("99.90") {
		t.Fatalf("unit price = %s, want 99.90", money.Format(items[0].UnitPrice))
	}
	if l.Subtotal() != money.MustParse("199.80") {
		t.Fatalf("subtotal = %s, want 199.80", money.Format(l.Subtotal()))
	}
}

func TestLedgerSetUnitPriceValidation(t *testing.T) {
	var l Ledger
	_ = l.Add(productA, 1)
	if err := l.SetUnitPrice(productA.ID, -1); !errors.Is(err, ErrNegativePrice) {
		t.Fatalf("expected ErrNegativePrice, got %v", err)
	}
	if err := l.SetUnitPrice(productB.ID, 100); !errors.Is(err, ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
}

func TestLedgerRemove(t *testing.T) {
	var l Ledger
	_ = l.Add(productA, 1)
	_ = l.Add(productB, 2)
	l.Remove(productA.ID)
	items := l.Items()
	if len(items) != 1 || items[0].ProductID != productB.ID {
		t.Fatalf("expected only product B to remain")
	}
}

func TestCommissionUsesPerLineFlag(t *testing.T) {
	var l Ledger
	_ = l.Add(productA, 2) // 240.00 at 10% -> 24.00
	_ = l.Add(productB, 1) // flag off by default
	if got := Commission(l.Items()); got != money.MustParse("24.00") {
		t.Fatalf("commission = %s, want 24.00", money.Format(got))
	}

	// Toggling B on adds its contribution without touching A's.
	if err := l.SetPaysCommission(productB.ID, true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got := Commission(l.Items()); got != money.MustParse("28.00") {
		t.Fatalf("commission = %s, want 28.00", money.Format(got))
	}

	// Toggling A off leaves only B.
	if err := l.SetPaysCommission(productA.ID, false); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got := Commission(l.Items()); got != money.MustParse("4.00") {
		t.Fatalf("commission = %s, want 4.00", money.Format(got))
	}
}

func TestCommissionRoundsOnceAtTheEnd(t *testing.T) {
	// Three lines of 0.33 at 5% each: per-line rounding would give 0.02 each
	// (0.0165 -> 0.02, summed 0.06); a single final rounding gives 0.05.
	p := func(id string) Product {
		return Product{
			ID:                uuid.MustParse(id),
			SalePrice:         33,
			CommissionRateBps: 500,
			PaysCommission:    true,
		}
	}
	var l Ledger
	_ = l.Add(p("33333333-3333-3333-3333-333333333333"), 1)
	_ = l.Add(p("44444444-4444-4444-4444-444444444444"), 1)
	_ = l.Add(p("55555555-5555-5555-5555-555555555555"), 1)
	if got := Commission(l.Items()); got != 5 {
		t.Fatalf("commission = %d, want 5", got)
	}
}
