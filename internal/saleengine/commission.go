package saleengine

import "github.com/noah-isme/backend-vendas/internal/money"

// Commission sums line total times commission rate over the lines whose flag
// is set. Per-line products stay in minor-unit-times-bps precision and the
// division happens once at the end, so no drift accumulates across lines.
// The result is informational and never added to the grand total.
func Commission(items []LineItem) money.Money {
	var scaled int64
	for _, it := range items {
		if !it.PaysCommission {
			continue
		}
		scaled += it.Total() * it.CommissionRateBps
	}
	if scaled == 0 {
		return 0
	}
	return money.DivRound(scaled, 10_000)
}
