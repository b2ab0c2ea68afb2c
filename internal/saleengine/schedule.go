package saleengine

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/backend-vendas/internal/money"
)

var (
	// ErrMissingReferenceDate is returned when no reference date is set for scheduling.
	ErrMissingReferenceDate = errors.New("reference date is required")
	// ErrEmptyTerm is returned when the payment term is blank.
	ErrEmptyTerm = errors.New("payment term is required")
	// ErrInvalidTerm is returned when the payment term does not parse as day offsets.
	ErrInvalidTerm = errors.New("payment term must be day offsets separated by '/', e.g. 15 or 15/30/45")
	// ErrNonPositiveTotal is returned when there is no amount to schedule.
	ErrNonPositiveTotal = errors.New("total must be greater than zero")
)

// Installment is one entry of the due schedule.
type Installment struct {
	Number  int
	DueDate time.Time
	Amount  money.Money
}

// ParseTerm splits a payment term such as "15/30/45" into day offsets.
// Token order is preserved and defines installment numbering. Offsets may be
// zero or repeated; monotonicity is not required.
func ParseTerm(term string) ([]int, error) {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return nil, ErrEmptyTerm
	}
	tokens := strings.Split(trimmed, "/")
	offsets := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		days, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil || days < 0 {
			return nil, ErrInvalidTerm
		}
		offsets = append(offsets, days)
	}
	return offsets, nil
}

// Schedule partitions total into one installment per term offset. Every
// installment carries the rounded per-installment base; the full remainder
// goes to the last one so the amounts sum exactly to total at the minor unit.
// Due dates are reference plus offset calendar days.
func Schedule(total money.Money, reference time.Time, term string) ([]Installment, error) {
	if reference.IsZero() {
		return nil, ErrMissingReferenceDate
	}
	offsets, err := ParseTerm(term)
	if err != nil {
		return nil, err
	}
	if total <= 0 {
		return nil, ErrNonPositiveTotal
	}
	n := int64(len(offsets))
	base := money.DivRound(total, n)
	remainder := total - base*n

	installments := make([]Installment, len(offsets))
	for i, days := range offsets {
		installments[i] = Installment{
			Number:  i + 1,
			DueDate: reference.AddDate(0, 0, days),
			Amount:  base,
		}
	}
	installments[len(installments)-1].Amount += remainder
	return installments, nil
}
