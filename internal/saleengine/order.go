package saleengine

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-vendas/internal/money"
)

var (
	// ErrMissingCustomer is returned when a sale is committed without a customer.
	ErrMissingCustomer = errors.New("customer is required")
	// ErrMissingSeller is returned when a sale is committed without a seller.
	ErrMissingSeller = errors.New("seller is required")
	// ErrNoItems is returned when a sale has no line items.
	ErrNoItems = errors.New("at least one item is required")
)

// Settings is the read-only configuration snapshot injected into computations.
type Settings struct {
	TaxRateBps int64
}

// Summary aggregates the financial components of a sale.
type Summary struct {
	Subtotal   money.Money
	Commission money.Money
	TaxRateBps int64
	Tax        money.Money
	GrandTotal money.Money
}

// Compute derives the financial summary for the given lines. The tax rate is
// taken from the settings snapshot and zeroed when applyTax is off, matching
// what gets persisted on commit.
func Compute(items []LineItem, applyTax bool, settings Settings) Summary {
	ledger := NewLedger(items)
	subtotal := ledger.Subtotal()
	rate := settings.TaxRateBps
	if !applyTax {
		rate = 0
	}
	tax := Tax(subtotal, rate, applyTax)
	return Summary{
		Subtotal:   subtotal,
		Commission: Commission(items),
		TaxRateBps: rate,
		Tax:        tax,
		GrandTotal: subtotal + tax,
	}
}

// Draft is an in-memory sale being edited. It is authoritative only after the
// store confirms persistence; until then every field mutates freely.
type Draft struct {
	CustomerID       uuid.UUID
	SellerID         uuid.UUID
	Status           Status
	Category         string
	EntryDate        time.Time
	ExitDate         time.Time
	PaymentCondition string
	ApplyTax         bool

	Ledger       Ledger
	Installments []Installment
}

// GenerateInstallments rebuilds the due schedule from the current grand
// total, exit date and payment condition. On success the previous schedule is
// fully replaced; on any validation failure it is left untouched.
func (d *Draft) GenerateInstallments(settings Settings) error {
	summary := Compute(d.Ledger.Items(), d.ApplyTax, settings)
	installments, err := Schedule(summary.GrandTotal, d.ExitDate, d.PaymentCondition)
	if err != nil {
		return err
	}
	d.Installments = installments
	return nil
}

// Validate checks the commit preconditions: resolved customer and seller
// references and a non-empty item list.
func (d *Draft) Validate() error {
	if d.CustomerID == uuid.Nil {
		return ErrMissingCustomer
	}
	if d.SellerID == uuid.Nil {
		return ErrMissingSeller
	}
	if d.Ledger.Len() == 0 {
		return ErrNoItems
	}
	return nil
}

// PayloadItem is a resolved line in the commit payload.
type PayloadItem struct {
	ProductID      uuid.UUID `json:"product_id"`
	Quantity       int64     `json:"quantity"`
	UnitPrice      string    `json:"unit_price"`
	PaysCommission bool      `json:"pays_commission"`
}

// PayloadInstallment is one schedule entry in the commit payload. The amount
// travels as a fixed-point decimal string, never a binary float.
type PayloadInstallment struct {
	Number  int    `json:"installment_number"`
	DueDate string `json:"due_date"`
	Amount  string `json:"amount"`
}

// CommitPayload is the serialisable form handed to the store.
type CommitPayload struct {
	CustomerID       uuid.UUID            `json:"customer_id"`
	SellerID         uuid.UUID            `json:"seller_id"`
	Status           Status               `json:"status"`
	Category         string               `json:"category"`
	EntryDate        string               `json:"entry_date"`
	ExitDate         string               `json:"exit_date,omitempty"`
	PaymentCondition string               `json:"payment_condition,omitempty"`
	ApplyTax         bool                 `json:"apply_tax"`
	Items            []PayloadItem        `json:"items"`
	Installments     []PayloadInstallment `json:"installments"`
}

const dateLayout = "2006-01-02"

// ToCommitPayload validates the draft and builds the commit payload.
func (d *Draft) ToCommitPayload() (CommitPayload, error) {
	if err := d.Validate(); err != nil {
		return CommitPayload{}, err
	}
	items := d.Ledger.Items()
	payloadItems := make([]PayloadItem, 0, len(items))
	for _, it := range items {
		payloadItems = append(payloadItems, PayloadItem{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPrice:      money.Format(it.UnitPrice),
			PaysCommission: it.PaysCommission,
		})
	}
	installments := make([]PayloadInstallment, 0, len(d.Installments))
	for _, inst := range d.Installments {
		installments = append(installments, PayloadInstallment{
			Number:  inst.Number,
			DueDate: inst.DueDate.Format(dateLayout),
			Amount:  money.Format(inst.Amount),
		})
	}
	exitDate := ""
	if !d.ExitDate.IsZero() {
		exitDate = d.ExitDate.Format(dateLayout)
	}
	return CommitPayload{
		CustomerID:       d.CustomerID,
		SellerID:         d.SellerID,
		Status:           d.Status,
		Category:         d.Category,
		EntryDate:        d.EntryDate.Format(dateLayout),
		ExitDate:         exitDate,
		PaymentCondition: d.PaymentCondition,
		ApplyTax:         d.ApplyTax,
		Items:            payloadItems,
		Installments:     installments,
	}, nil
}
