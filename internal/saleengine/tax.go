package saleengine

import "github.com/noah-isme/backend-vendas/internal/money"

// Tax applies the configured rate to the subtotal when the per-sale toggle is
// on. With the toggle off the tax is zero regardless of the rate.
func Tax(subtotal money.Money, rateBps int64, applied bool) money.Money {
	if !applied || rateBps <= 0 {
		return 0
	}
	return money.ApplyBps(subtotal, rateBps)
}
