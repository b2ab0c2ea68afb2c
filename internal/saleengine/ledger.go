package saleengine

import (
	"errors"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-vendas/internal/money"
)

var (
	// ErrInvalidQuantity is returned when a line quantity drops below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrNegativePrice is returned when a unit price override is negative.
	ErrNegativePrice = errors.New("unit price must not be negative")
	// ErrLineNotFound is returned when an operation targets a product with no line.
	ErrLineNotFound = errors.New("no line item for product")
)

// Product is the read-only catalog view the ledger needs to open a line.
type Product struct {
	ID                uuid.UUID
	Name              string
	SalePrice         money.Money
	CommissionRateBps int64
	PaysCommission    bool
}

// LineItem is one row of the sale. Unit price and the commission flag are
// decoupled from the catalog once the line exists.
type LineItem struct {
	ProductID         uuid.UUID
	ProductName       string
	Quantity          int64
	UnitPrice         money.Money
	CommissionRateBps int64
	PaysCommission    bool
}

// Total returns quantity times unit price for the line.
func (li LineItem) Total() money.Money {
	return li.Quantity * li.UnitPrice
}

// Ledger holds the mutable line items of a draft sale. Adding the same
// product twice merges into a single line; rows are kept in insertion order.
type Ledger struct {
	items []LineItem
}

// NewLedger builds a ledger from existing lines, used when editing a stored sale.
func NewLedger(items []LineItem) *Ledger {
	l := &Ledger{items: make([]LineItem, len(items))}
	copy(l.items, items)
	return l
}

// Add opens a line for the product or increments the quantity of the
// existing one. Price and commission flag default from the catalog only
// when the line is first created.
func (l *Ledger) Add(p Product, quantity int64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	for i := range l.items {
		if l.items[i].ProductID == p.ID {
			l.items[i].Quantity += quantity
			return nil
		}
	}
	l.items = append(l.items, LineItem{
		ProductID:         p.ID,
		ProductName:       p.Name,
		Quantity:          quantity,
		UnitPrice:         p.SalePrice,
		CommissionRateBps: p.CommissionRateBps,
		PaysCommission:    p.PaysCommission,
	})
	return nil
}

// Remove drops the line for the product, if any.
func (l *Ledger) Remove(productID uuid.UUID) {
	for i := range l.items {
		if l.items[i].ProductID == productID {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return
		}
	}
}

// SetUnitPrice overrides the line price independently of the catalog.
func (l *Ledger) SetUnitPrice(productID uuid.UUID, price money.Money) error {
	if price < 0 {
		return ErrNegativePrice
	}
	for i := range l.items {
		if l.items[i].ProductID == productID {
			l.items[i].UnitPrice = price
			return nil
		}
	}
	return ErrLineNotFound
}

// SetPaysCommission toggles the commission flag for the line. The flag takes
// precedence over the product default for the rest of the line's life.
func (l *Ledger) SetPaysCommission(productID uuid.UUID, pays bool) error {
	for i := range l.items {
		if l.items[i].ProductID == productID {
			l.items[i].PaysCommission = pays
			return nil
		}
	}
	return ErrLineNotFound
}

// Items returns a copy of the current lines in order.
func (l *Ledger) Items() []LineItem {
	out := make([]LineItem, len(l.items))
	copy(out, l.items)
	return out
}

// Len reports the number of lines.
func (l *Ledger) Len() int {
	return len(l.items)
}

// Subtotal sums quantity times unit price across all lines. The inputs are
// already in minor units, so the sum is exact with no rounding step.
func (l *Ledger) Subtotal() money.Money {
	var total money.Money
	for _, it := range l.items {
		total += it.Total()
	}
	return total
}
