package saleengine

import (
	"errors"
	"testing"
	"time"

	"github.com/noah-isme/backend-vendas/internal/money"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestScheduleSplitsRemainderOntoLastInstallment(t *testing.T) {
	installments, err := Schedule(money.MustParse("100.00"), date(2024, time.January, 1), "15/30/45")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct {
		number int
		due    time.Time
		amount string
	}{
		{1, date(2024, time.January, 16), "33.33"},
		{2, date(2024, time.January, 31), "33.33"},
		{3, date(2024, time.February, 15), "33.34"},
	}
	if len(installments) != len(want) {
		t.Fatalf("expected %d installments, got %d", len(want), len(installments))
	}
	for i, w := range want {
		got := installments[i]
		if got.Number != w.number {
			t.Fatalf("installment %d: number %d, want %d", i, got.Number, w.number)
		}
		if !got.DueDate.Equal(w.due) {
			t.Fatalf("installment %d: due %s, want %s", i, got.DueDate, w.due)
		}
		if money.Format(got.Amount) != w.amount {
			t.Fatalf("installment %d: amount %s, want %s", i, money.Format(got.Amount), w.amount)
		}
	}
}

func TestScheduleSingleInstallment(t *testing.T) {
	ref := date(2024, time.March, 10)
	installments, err := Schedule(money.MustParse("10.00"), ref, "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(installments) != 1 {
		t.Fatalf("expected one installment, got %d", len(installments))
	}
	if installments[0].Amount != money.MustParse("10.00") {
		t.Fatalf("amount = %s, want 10.00", money.Format(installments[0].Amount))
	}
	if !installments[0].DueDate.Equal(date(2024, time.March, 13)) {
		t.Fatalf("due = %s, want 2024-03-13", installments[0].DueDate)
	}
}

func TestScheduleExactSumInvariant(t *testing.T) {
	ref := date(2024, time.June, 1)
	totals := []money.Money{1, 2, 99, 100, 101, 12345, 100000, 999999, 1000001}
	for n := 1; n <= 12; n++ {
		term := ""
		for i := 0; i < n; i++ {
			if i > 0 {
				term += "/"
			}
			term += "30"
		}
		for _, total := range totals {
			installments, err := Schedule(total, ref, term)
			if err != nil {
				t.Fatalf("n=%d total=%d: %v", n, total, err)
			}
			var sum money.Money
			for i, inst := range installments {
				sum += inst.Amount
				if inst.Number != i+1 {
					t.Fatalf("n=%d total=%d: sequence gap at %d", n, total, i)
				}
			}
			if sum != total {
				t.Fatalf("n=%d total=%d: amounts sum to %d", n, total, sum)
			}
		}
	}
}

func TestScheduleValidation(t *testing.T) {
	ref := date(2024, time.January, 1)
	if _, err := Schedule(1000, time.Time{}, "15"); !errors.Is(err, ErrMissingReferenceDate) {
		t.Fatalf("expected ErrMissingReferenceDate, got %v", err)
	}
	if _, err := Schedule(1000, ref, ""); !errors.Is(err, ErrEmptyTerm) {
		t.Fatalf("expected ErrEmptyTerm, got %v", err)
	}
	if _, err := Schedule(1000, ref, "15/x"); !errors.Is(err, ErrInvalidTerm) {
		t.Fatalf("expected ErrInvalidTerm, got %v", err)
	}
	if _, err := Schedule(1000, ref, "15/-3"); !errors.Is(err, ErrInvalidTerm) {
		t.Fatalf("expected ErrInvalidTerm for negative offset, got %v", err)
	}
	if _, err := Schedule(0, ref, "15"); !errors.Is(err, ErrNonPositiveTotal) {
		t.Fatalf("expected ErrNonPositiveTotal, got %v", err)
	}
}

func TestScheduleAllowsZeroAndRepeatedOffsets(t *testing.T) {
	ref := date(2024, time.May, 5)
	installments, err := Schedule(3000, ref, "0/0/45/30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(installments) != 4 {
		t.Fatalf("expected 4 installments, got %d", len(installments))
	}
	if !installments[0].DueDate.Equal(ref) || !installments[1].DueDate.Equal(ref) {
		t.Fatalf("zero offsets should fall due on the reference date")
	}
	// Order preserved even though offsets are non-monotonic.
	if !installments[3].DueDate.Equal(date(2024, time.June, 4)) {
		t.Fatalf("fourth installment due %s, want 2024-06-04", installments[3].DueDate)
	}
}
