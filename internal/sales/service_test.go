package sales

import (
	"errors"
	"testing"
	"time"

	"github.com/noah-isme/backend-vendas/internal/common"
	"github.com/noah-isme/backend-vendas/internal/money"
	"github.com/noah-isme/backend-vendas/internal/saleengine"
)

func TestVerifyInstallmentsAcceptsExactSum(t *testing.T) {
	inputs := []InstallmentInput{
		{Number: 1, DueDate: "2024-01-16", Amount: "33.33"},
		{Number: 2, DueDate: "2024-01-31", Amount: "33.33"},
		{Number: 3, DueDate: "2024-02-15", Amount: "33.34"},
	}
	out, err := verifyInstallments(inputs, money.MustParse("100.00"))
	if err != nil {
		t.Fatalf("verifyInstallments: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d installments, want 3", len(out))
	}
	if out[2].Amount != 3334 {
		t.Fatalf("last amount = %d, want 3334", out[2].Amount)
	}
}

func TestVerifyInstallmentsSortsByNumber(t *testing.T) {
	inputs := []InstallmentInput{
		{Number: 2, DueDate: "2024-01-31", Amount: "50.00"},
		{Number: 1, DueDate: "2024-01-16", Amount: "50.00"},
	}
	out, err := verifyInstallments(inputs, money.MustParse("100.00"))
	if err != nil {
		t.Fatalf("verifyInstallments: %v", err)
	}
	if out[0].Number != 1 || out[1].Number != 2 {
		t.Fatalf("numbers = %d, %d, want 1, 2", out[0].Number, out[1].Number)
	}
}

func TestVerifyInstallmentsRejectsGaps(t *testing.T) {
	inputs := []InstallmentInput{
		{Number: 1, DueDate: "2024-01-16", Amount: "50.00"},
		{Number: 3, DueDate: "2024-02-15", Amount: "50.00"},
	}
	if _, err := verifyInstallments(inputs, money.MustParse("100.00")); err == nil {
		t.Fatal("expected an error for a numbering gap")
	}
}

func TestVerifyInstallmentsRejectsSumMismatch(t *testing.T) {
	inputs := []InstallmentInput{
		{Number: 1, DueDate: "2024-01-16", Amount: "33.33"},
		{Number: 2, DueDate: "2024-01-31", Amount: "33.33"},
		{Number: 3, DueDate: "2024-02-15", Amount: "33.33"},
	}
	_, err := verifyInstallments(inputs, money.MustParse("100.00"))
	var appErr *common.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.HTTPStatus != 422 {
		t.Fatalf("status = %d, want 422", appErr.HTTPStatus)
	}
	details, ok := appErr.Details.(map[string]string)
	if !ok {
		t.Fatalf("details = %T, want map[string]string", appErr.Details)
	}
	if _, ok := details["installments"]; !ok {
		t.Fatalf("details = %v, want an installments entry", details)
	}
}

func TestVerifyInstallmentsRejectsBadAmount(t *testing.T) {
	inputs := []InstallmentInput{
		{Number: 1, DueDate: "2024-01-16", Amount: "abc"},
	}
	if _, err := verifyInstallments(inputs, money.MustParse("10.00")); err == nil {
		t.Fatal("expected an error for a non-decimal amount")
	}
}

func TestScheduleErrorMapsEngineErrors(t *testing.T) {
	cases := []struct {
		in    error
		field string
	}{
		{saleengine.ErrMissingReferenceDate, "exit_date"},
		{saleengine.ErrEmptyTerm, "payment_condition"},
		{saleengine.ErrInvalidTerm, "payment_condition"},
		{saleengine.ErrNonPositiveTotal, "items"},
	}
	for _, tc := range cases {
		var appErr *common.AppError
		if !errors.As(scheduleError(tc.in), &appErr) {
			t.Fatalf("%v: expected AppError", tc.in)
		}
		details, ok := appErr.Details.(map[string]string)
		if !ok {
			t.Fatalf("%v: details = %T, want map[string]string", tc.in, appErr.Details)
		}
		if _, ok := details[tc.field]; !ok {
			t.Fatalf("%v: details = %v, want field %q", tc.in, details, tc.field)
		}
	}
}

func TestInstallmentViewsFormatting(t *testing.T) {
	installments, err := saleengine.Schedule(money.MustParse("100.00"), mustDate(t, "2024-01-01"), "15/30/45")
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	views := installmentViews(installments)
	want := []InstallmentView{
		{Number: 1, DueDate: "2024-01-16", Amount: "33.33"},
		{Number: 2, DueDate: "2024-01-31", Amount: "33.33"},
		{Number: 3, DueDate: "2024-02-15", Amount: "33.34"},
	}
	if len(views) != len(want) {
		t.Fatalf("got %d views, want %d", len(views), len(want))
	}
	for i := range want {
		if views[i] != want[i] {
			t.Fatalf("view %d = %+v, want %+v", i, views[i], want[i])
		}
	}
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return d
}
