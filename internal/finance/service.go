package finance

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-vendas/internal/common"
	"github.com/noah-isme/backend-vendas/internal/money"
)

// Receivable statuses. PENDING entries are open; PAID entries carry a
// payment date.
const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
)

// Receivable is one open or settled amount owed by a customer. Entries are
// fanned out from sale installments but survive sale deletion.
type Receivable struct {
	ID           string    `json:"id"`
	SaleID       string    `json:"sale_id,omitempty"`
	CustomerID   string    `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	Description  string    `json:"description"`
	Amount       string    `json:"amount"`
	DueDate      string    `json:"due_date"`
	PaymentDate  string    `json:"payment_date,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// Service provides the receivables ledger.
type Service struct {
	Pool *pgxpool.Pool
}

const dateLayout = "2006-01-02"

// List returns receivables ordered by due date, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]Receivable, int64, error) {
	filter := strings.TrimSpace(strings.ToUpper(status))
	if filter != "" && filter != StatusPending && filter != StatusPaid {
		return nil, 0, common.NewValidationError("invalid status filter", map[string]string{"status": "must be PENDING or PAID"})
	}
	var total int64
	if err := s.Pool.QueryRow(ctx, `
		SELECT count(*) FROM accounts_receivable WHERE ($1 = '' OR status = $1)`, filter).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT r.id, r.sale_id, r.customer_id, c.name, r.description, r.amount,
		       r.due_date, r.payment_date, r.status, r.created_at
		FROM accounts_receivable r
		JOIN customers c ON c.id = r.customer_id
		WHERE ($1 = '' OR r.status = $1)
		ORDER BY r.due_date, r.created_at
		LIMIT $2 OFFSET $3`, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Receivable
	for rows.Next() {
		rec, err := scanReceivable(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}

// MarkPaid settles a pending receivable with the given payment date. Paying
// an already paid entry is rejected.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID, paymentDate time.Time) (Receivable, error) {
	row := s.Pool.QueryRow(ctx, `
		UPDATE accounts_receivable
		SET status = $2, payment_date = $3, updated_at = now()
		WHERE id = $1 AND status = $4
		RETURNING id, sale_id, customer_id,
		          (SELECT name FROM customers WHERE customers.id = accounts_receivable.customer_id),
		          description, amount, due_date, payment_date, status, created_at`,
		id, StatusPaid, paymentDate, StatusPending)
	rec, err := scanReceivable(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Receivable{}, common.NewAppError("NOT_FOUND", "no pending receivable with this id", http.StatusNotFound, nil)
		}
		return Receivable{}, err
	}
	return rec, nil
}

// Summary aggregates the open and settled receivable totals.
type Summary struct {
	PendingCount int64  `json:"pending_count"`
	PendingTotal string `json:"pending_total"`
	PaidCount    int64  `json:"paid_count"`
	PaidTotal    string `json:"paid_total"`
	OverdueCount int64  `json:"overdue_count"`
}

// Summarize computes the receivables totals in one pass.
func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	var (
		sum                     Summary
		pendingTotal, paidTotal money.Money
	)
	err := s.Pool.QueryRow(ctx, `
		SELECT count(*) FILTER (WHERE status = $1),
		       COALESCE(sum(amount) FILTER (WHERE status = $1), 0),
		       count(*) FILTER (WHERE status = $2),
		       COALESCE(sum(amount) FILTER (WHERE status = $2), 0),
		       count(*) FILTER (WHERE status = $1 AND due_date < CURRENT_DATE)
		FROM accounts_receivable`, StatusPending, StatusPaid).
		Scan(&sum.PendingCount, &pendingTotal, &sum.PaidCount, &paidTotal, &sum.OverdueCount)
	if err != nil {
		return Summary{}, err
	}
	sum.PendingTotal = money.Format(pendingTotal)
	sum.PaidTotal = money.Format(paidTotal)
	return sum, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceivable(row rowScanner) (Receivable, error) {
	var (
		rec         Receivable
		id          uuid.UUID
		saleID      *uuid.UUID
		customerID  uuid.UUID
		amount      money.Money
		dueDate     time.Time
		paymentDate *time.Time
	)
	if err := row.Scan(&id, &saleID, &customerID, &rec.CustomerName, &rec.Description,
		&amount, &dueDate, &paymentDate, &rec.Status, &rec.CreatedAt); err != nil {
		return Receivable{}, err
	}
	rec.ID = id.String()
	if saleID != nil {
		rec.SaleID = saleID.String()
	}
	rec.CustomerID = customerID.String()
	rec.Amount = money.Format(amount)
	rec.DueDate = dueDate.Format(dateLayout)
	if paymentDate != nil {
		rec.PaymentDate = paymentDate.Format(dateLayout)
	}
	return rec, nil
}
