package sales

import (
	"time"

	"github.com/noah-isme/backend-vendas/internal/money"
	"github.com/noah-isme/backend-vendas/internal/saleengine"
)

// ItemInput is one line of a sale payload. Monetary values travel as
// fixed-point decimal strings end to end.
type ItemInput struct {
	ProductID      string `json:"product_id" validate:"required,uuid"`
	Quantity       int64  `json:"quantity" validate:"required,min=1"`
	UnitPrice      string `json:"unit_price" validate:"required"`
	PaysCommission *bool  `json:"pays_commission"`
}

// InstallmentInput is one due-schedule entry supplied by the client. The
// server re-verifies numbering and the exact-sum invariant before persisting.
type InstallmentInput struct {
	Number  int    `json:"installment_number" validate:"required,min=1"`
	DueDate string `json:"due_date" validate:"required"`
	Amount  string `json:"amount" validate:"required"`
}

// SaleInput is the commit payload for creating or replacing a sale.
type SaleInput struct {
	CustomerID       string             `json:"customer_id" validate:"required,uuid"`
	SellerID         string             `json:"seller_id" validate:"required,uuid"`
	Status           string             `json:"status" validate:"omitempty,oneof=PENDING COMPLETED CANCELED"`
	Category         string             `json:"category" validate:"omitempty,oneof=SERVICE"`
	EntryDate        string             `json:"entry_date" validate:"required"`
	ExitDate         string             `json:"exit_date"`
	PaymentCondition string             `json:"payment_condition"`
	ApplyTax         *bool              `json:"apply_tax"`
	Items            []ItemInput        `json:"items" validate:"required,min=1,dive"`
	Installments     []InstallmentInput `json:"installments" validate:"omitempty,dive"`
}

// PreviewInput drives the interactive computation loop: totals plus, when a
// payment condition is present, a freshly generated due schedule.
type PreviewInput struct {
	Items            []ItemInput `json:"items" validate:"required,min=1,dive"`
	ExitDate         string      `json:"exit_date"`
	PaymentCondition string      `json:"payment_condition"`
	ApplyTax         *bool       `json:"apply_tax"`
	TaxRate          *string     `json:"tax_rate"`
}

// StatusInput is the payload of the explicit status-set operation.
type StatusInput struct {
	Status string `json:"status" validate:"required,oneof=PENDING COMPLETED CANCELED"`
}

// PartyView is an embedded customer or seller reference.
type PartyView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ItemView is a resolved line in API responses.
type ItemView struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int64  `json:"quantity"`
	UnitPrice      string `json:"unit_price"`
	Subtotal       string `json:"subtotal"`
	PaysCommission bool   `json:"pays_commission"`
}

// InstallmentView is one due-schedule entry in API responses.
type InstallmentView struct {
	Number  int    `json:"installment_number"`
	DueDate string `json:"due_date"`
	Amount  string `json:"amount"`
}

// SummaryView carries the computed financial components.
type SummaryView struct {
	Subtotal   string `json:"subtotal"`
	Commission string `json:"commission"`
	TaxRate    string `json:"tax_rate"`
	Tax        string `json:"tax"`
	GrandTotal string `json:"grand_total"`
}

// PreviewView is the response of the preview operation.
type PreviewView struct {
	Summary      SummaryView       `json:"summary"`
	Installments []InstallmentView `json:"installments"`
}

// SaleView is the full sale representation.
type SaleView struct {
	ID               string            `json:"id"`
	Customer         PartyView         `json:"customer"`
	Seller           PartyView         `json:"seller"`
	Status           string            `json:"status"`
	Category         string            `json:"category"`
	EntryDate        string            `json:"entry_date"`
	ExitDate         string            `json:"exit_date,omitempty"`
	PaymentCondition string            `json:"payment_condition,omitempty"`
	ApplyTax         bool              `json:"apply_tax"`
	Summary          SummaryView       `json:"summary"`
	Items            []ItemView        `json:"items"`
	Installments     []InstallmentView `json:"installments"`
	CreatedAt        time.Time         `json:"created_at"`
}

// ListEntry is the compact sale representation used by list endpoints.
type ListEntry struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	Status       string    `json:"status"`
	GrandTotal   string    `json:"grand_total"`
	EntryDate    string    `json:"entry_date"`
	CreatedAt    time.Time `json:"created_at"`
}

const dateLayout = "2006-01-02"

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func installmentViews(installments []saleengine.Installment) []InstallmentView {
	out := make([]InstallmentView, 0, len(installments))
	for _, inst := range installments {
		out = append(out, InstallmentView{
			Number:  inst.Number,
			DueDate: formatDate(inst.DueDate),
			Amount:  money.Format(inst.Amount),
		})
	}
	return out
}
