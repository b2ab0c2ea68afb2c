package sales

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-vendas/internal/catalog"
	"github.com/noah-isme/backend-vendas/internal/common"
	"github.com/noah-isme/backend-vendas/internal/customer"
	"github.com/noah-isme/backend-vendas/internal/money"
	"github.com/noah-isme/backend-vendas/internal/obs"
	"github.com/noah-isme/backend-vendas/internal/saleengine"
	"github.com/noah-isme/backend-vendas/internal/seller"
	"github.com/noah-isme/backend-vendas/internal/settings"
)

// Service coordinates the sale aggregate: it resolves catalog and party
// references, runs the computation engine, and persists the whole aggregate
// (sale, items, installments, receivables) in one transaction.
type Service struct {
	Pool      *pgxpool.Pool
	Catalog   *catalog.Service
	Customers *customer.Service
	Sellers   *seller.Service
	Settings  *settings.Service
	Log       zerolog.Logger
}

// commitPlan is the fully resolved, recomputed form of a sale payload. All
// monetary values are server-derived; client totals are never trusted.
type commitPlan struct {
	customerID       uuid.UUID
	sellerID         uuid.UUID
	status           saleengine.Status
	category         string
	entryDate        time.Time
	exitDate         time.Time
	paymentCondition string
	applyTax         bool
	summary          saleengine.Summary
	items            []saleengine.LineItem
	installments     []saleengine.Installment
}

// Preview recomputes totals and, when a payment condition is present, a fresh
// due schedule. Nothing is persisted.
func (s *Service) Preview(ctx context.Context, in PreviewInput) (PreviewView, error) {
	items, err := s.buildItems(ctx, in.Items)
	if err != nil {
		return PreviewView{}, err
	}
	snapshot, err := s.Settings.Snapshot(ctx)
	if err != nil {
		return PreviewView{}, err
	}
	if in.TaxRate != nil {
		bps, err := money.BpsFromPercent(*in.TaxRate)
		if err != nil || bps < 0 || bps > 10_000 {
			return PreviewView{}, common.NewValidationError("invalid preview payload", map[string]string{"tax_rate": "must be a percent between 0 and 100"})
		}
		snapshot.TaxRateBps = bps
	}
	applyTax := in.ApplyTax == nil || *in.ApplyTax
	summary := saleengine.Compute(items, applyTax, snapshot)

	view := PreviewView{Summary: summaryView(summary), Installments: []InstallmentView{}}
	if strings.TrimSpace(in.PaymentCondition) != "" {
		exitDate, err := requireDate(in.ExitDate, "exit_date")
		if err != nil {
			return PreviewView{}, err
		}
		installments, err := saleengine.Schedule(summary.GrandTotal, exitDate, in.PaymentCondition)
		if err != nil {
			return PreviewView{}, scheduleError(err)
		}
		view.Installments = installmentViews(installments)
	}
	return view, nil
}

// Create persists a new sale aggregate and returns the stored representation.
func (s *Service) Create(ctx context.Context, in SaleInput) (SaleView, error) {
	plan, err := s.plan(ctx, in)
	if err != nil {
		return SaleView{}, err
	}
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return SaleView{}, err
	}
	defer tx.Rollback(ctx)

	var id uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO sales (customer_id, seller_id, status, category, entry_date, exit_date,
		                   payment_condition, apply_tax, subtotal, tax_rate_bps, tax_amount,
		                   total_amount, commission_amount)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		plan.customerID, plan.sellerID, string(plan.status), plan.category,
		plan.entryDate, nullableDate(plan.exitDate), plan.paymentCondition, plan.applyTax,
		plan.summary.Subtotal, plan.summary.TaxRateBps, plan.summary.Tax,
		plan.summary.GrandTotal, plan.summary.Commission).Scan(&id)
	if err != nil {
		return SaleView{}, err
	}
	if err := insertChildren(ctx, tx, id, plan); err != nil {
		return SaleView{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return SaleView{}, err
	}
	s.recordCommit(id, plan, "sale created")
	return s.Get(ctx, id)
}

// Update replaces an existing sale aggregate wholesale: the sale row is
// rewritten and items, installments and receivables are regenerated from the
// payload. Partial edits are not supported.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in SaleInput) (SaleView, error) {
	plan, err := s.plan(ctx, in)
	if err != nil {
		return SaleView{}, err
	}
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return SaleView{}, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE sales
		SET customer_id = $2, seller_id = $3, status = $4, category = $5, entry_date = $6,
		    exit_date = $7, payment_condition = NULLIF($8, ''), apply_tax = $9, subtotal = $10,
		    tax_rate_bps = $11, tax_amount = $12, total_amount = $13, commission_amount = $14,
		    updated_at = now()
		WHERE id = $1`,
		id, plan.customerID, plan.sellerID, string(plan.status), plan.category,
		plan.entryDate, nullableDate(plan.exitDate), plan.paymentCondition, plan.applyTax,
		plan.summary.Subtotal, plan.summary.TaxRateBps, plan.summary.Tax,
		plan.summary.GrandTotal, plan.summary.Commission)
	if err != nil {
		return SaleView{}, err
	}
	if tag.RowsAffected() == 0 {
		return SaleView{}, common.NewAppError("NOT_FOUND", "sale not found", http.StatusNotFound, nil)
	}
	for _, q := range []string{
		`DELETE FROM sale_items WHERE sale_id = $1`,
		`DELETE FROM installments WHERE sale_id = $1`,
		`DELETE FROM accounts_receivable WHERE sale_id = $1`,
	} {
		if _, err := tx.Exec(ctx, q, id); err != nil {
			return SaleView{}, err
		}
	}
	if err := insertChildren(ctx, tx, id, plan); err != nil {
		return SaleView{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return SaleView{}, err
	}
	s.recordCommit(id, plan, "sale replaced")
	return s.Get(ctx, id)
}

// UpdateStatus sets the sale status directly. Any known status may follow any
// other; unknown values are rejected before touching the store.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, raw string) error {
	next, err := saleengine.ParseStatus(raw)
	if err != nil {
		return common.NewValidationError("invalid status payload", map[string]string{"status": "must be one of PENDING, COMPLETED, CANCELED"})
	}
	var current string
	err = s.Pool.QueryRow(ctx, `SELECT status FROM sales WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewAppError("NOT_FOUND", "sale not found", http.StatusNotFound, nil)
		}
		return err
	}
	from, err := saleengine.ParseStatus(current)
	if err != nil {
		return err
	}
	if !saleengine.CanTransition(from, next) {
		return common.NewValidationError("invalid status transition", map[string]string{"status": fmt.Sprintf("cannot move from %s to %s", from, next)})
	}
	_, err = s.Pool.Exec(ctx, `UPDATE sales SET status = $2, updated_at = now() WHERE id = $1`, id, string(next))
	return err
}

// List returns sales ordered by creation time, newest first, optionally
// filtered by status.
func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]ListEntry, int64, error) {
	filter := strings.TrimSpace(strings.ToUpper(status))
	if filter != "" {
		if _, err := saleengine.ParseStatus(filter); err != nil {
			return nil, 0, common.NewValidationError("invalid status filter", map[string]string{"status": "must be one of PENDING, COMPLETED, CANCELED"})
		}
	}
	var total int64
	if err := s.Pool.QueryRow(ctx, `
		SELECT count(*) FROM sales WHERE ($1 = '' OR status = $1)`, filter).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT s.id, c.name, s.status, s.total_amount, s.entry_date, s.created_at
		FROM sales s
		JOIN customers c ON c.id = s.customer_id
		WHERE ($1 = '' OR s.status = $1)
		ORDER BY s.created_at DESC
		LIMIT $2 OFFSET $3`, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []ListEntry
	for rows.Next() {
		var e ListEntry
		var id uuid.UUID
		var grandTotal money.Money
		var entryDate time.Time
		if err := rows.Scan(&id, &e.CustomerName, &e.Status, &grandTotal, &entryDate, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		e.ID = id.String()
		e.GrandTotal = money.Format(grandTotal)
		e.EntryDate = formatDate(entryDate)
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// Get loads the full sale aggregate.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (SaleView, error) {
	var (
		v          SaleView
		saleID     uuid.UUID
		custID     uuid.UUID
		sellID     uuid.UUID
		entryDate  time.Time
		exitDate   *time.Time
		payCond    *string
		subtotal   money.Money
		rateBps    int64
		tax        money.Money
		grandTotal money.Money
		commission money.Money
	)
	err := s.Pool.QueryRow(ctx, `
		SELECT s.id, s.customer_id, c.name, s.seller_id, v.name, s.status, s.category,
		       s.entry_date, s.exit_date, s.payment_condition, s.apply_tax,
		       s.subtotal, s.tax_rate_bps, s.tax_amount, s.total_amount, s.commission_amount,
		       s.created_at
		FROM sales s
		JOIN customers c ON c.id = s.customer_id
		JOIN sellers v ON v.id = s.seller_id
		WHERE s.id = $1`, id).
		Scan(&saleID, &custID, &v.Customer.Name, &sellID, &v.Seller.Name, &v.Status, &v.Category,
			&entryDate, &exitDate, &payCond, &v.ApplyTax,
			&subtotal, &rateBps, &tax, &grandTotal, &commission, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SaleView{}, common.NewAppError("NOT_FOUND", "sale not found", http.StatusNotFound, nil)
		}
		return SaleView{}, err
	}
	v.ID = saleID.String()
	v.Customer.ID = custID.String()
	v.Seller.ID = sellID.String()
	v.EntryDate = formatDate(entryDate)
	if exitDate != nil {
		v.ExitDate = formatDate(*exitDate)
	}
	if payCond != nil {
		v.PaymentCondition = *payCond
	}
	v.Summary = SummaryView{
		Subtotal:   money.Format(subtotal),
		Commission: money.Format(commission),
		TaxRate:    money.PercentFromBps(rateBps),
		Tax:        money.Format(tax),
		GrandTotal: money.Format(grandTotal),
	}

	itemRows, err := s.Pool.Query(ctx, `
		SELECT i.product_id, p.name, i.quantity, i.unit_price, i.pays_commission
		FROM sale_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.sale_id = $1
		ORDER BY p.name`, id)
	if err != nil {
		return SaleView{}, err
	}
	defer itemRows.Close()
	v.Items = []ItemView{}
	for itemRows.Next() {
		var it ItemView
		var productID uuid.UUID
		var qty int64
		var unitPrice money.Money
		if err := itemRows.Scan(&productID, &it.ProductName, &qty, &unitPrice, &it.PaysCommission); err != nil {
			return SaleView{}, err
		}
		it.ProductID = productID.String()
		it.Quantity = qty
		it.UnitPrice = money.Format(unitPrice)
		it.Subtotal = money.Format(qty * unitPrice)
		v.Items = append(v.Items, it)
	}
	if err := itemRows.Err(); err != nil {
		return SaleView{}, err
	}

	instRows, err := s.Pool.Query(ctx, `
		SELECT installment_number, due_date, amount
		FROM installments
		WHERE sale_id = $1
		ORDER BY installment_number`, id)
	if err != nil {
		return SaleView{}, err
	}
	defer instRows.Close()
	v.Installments = []InstallmentView{}
	for instRows.Next() {
		var inst InstallmentView
		var dueDate time.Time
		var amount money.Money
		if err := instRows.Scan(&inst.Number, &dueDate, &amount); err != nil {
			return SaleView{}, err
		}
		inst.DueDate = formatDate(dueDate)
		inst.Amount = money.Format(amount)
		v.Installments = append(v.Installments, inst)
	}
	return v, instRows.Err()
}

func (s *Service) plan(ctx context.Context, in SaleInput) (commitPlan, error) {
	customerID, err := uuid.Parse(in.CustomerID)
	if err != nil {
		return commitPlan{}, common.NewValidationError("invalid sale payload", map[string]string{"customer_id": "must be a UUID"})
	}
	sellerID, err := uuid.Parse(in.SellerID)
	if err != nil {
		return commitPlan{}, common.NewValidationError("invalid sale payload", map[string]string{"seller_id": "must be a UUID"})
	}
	if ok, err := s.Customers.Exists(ctx, customerID); err != nil {
		return commitPlan{}, err
	} else if !ok {
		return commitPlan{}, common.NewValidationError("invalid sale payload", map[string]string{"customer_id": "unknown customer"})
	}
	if ok, err := s.Sellers.Exists(ctx, sellerID); err != nil {
		return commitPlan{}, err
	} else if !ok {
		return commitPlan{}, common.NewValidationError("invalid sale payload", map[string]string{"seller_id": "unknown seller"})
	}

	entryDate, err := requireDate(in.EntryDate, "entry_date")
	if err != nil {
		return commitPlan{}, err
	}
	var exitDate time.Time
	if strings.TrimSpace(in.ExitDate) != "" {
		exitDate, err = requireDate(in.ExitDate, "exit_date")
		if err != nil {
			return commitPlan{}, err
		}
	}

	status := saleengine.StatusPending
	if in.Status != "" {
		status, err = saleengine.ParseStatus(in.Status)
		if err != nil {
			return commitPlan{}, common.NewValidationError("invalid sale payload", map[string]string{"status": "must be one of PENDING, COMPLETED, CANCELED"})
		}
	}
	category := in.Category
	if category == "" {
		category = "SERVICE"
	}

	items, err := s.buildItems(ctx, in.Items)
	if err != nil {
		return commitPlan{}, err
	}
	snapshot, err := s.Settings.Snapshot(ctx)
	if err != nil {
		return commitPlan{}, err
	}
	applyTax := in.ApplyTax == nil || *in.ApplyTax
	summary := saleengine.Compute(items, applyTax, snapshot)

	paymentCondition := strings.TrimSpace(in.PaymentCondition)
	var installments []saleengine.Installment
	switch {
	case len(in.Installments) > 0:
		installments, err = verifyInstallments(in.Installments, summary.GrandTotal)
		if err != nil {
			return commitPlan{}, err
		}
	case paymentCondition != "":
		if exitDate.IsZero() {
			return commitPlan{}, common.NewValidationError("invalid sale payload", map[string]string{"exit_date": "is required to schedule installments"})
		}
		installments, err = saleengine.Schedule(summary.GrandTotal, exitDate, paymentCondition)
		if err != nil {
			return commitPlan{}, scheduleError(err)
		}
	}

	return commitPlan{
		customerID:       customerID,
		sellerID:         sellerID,
		status:           status,
		category:         category,
		entryDate:        entryDate,
		exitDate:         exitDate,
		paymentCondition: paymentCondition,
		applyTax:         applyTax,
		summary:          summary,
		items:            items,
		installments:     installments,
	}, nil
}

// buildItems resolves the payload lines against the catalog and replays them
// through the ledger, so merging and override semantics match the engine.
func (s *Service) buildItems(ctx context.Context, inputs []ItemInput) ([]saleengine.LineItem, error) {
	ids := make([]uuid.UUID, 0, len(inputs))
	parsed := make([]uuid.UUID, len(inputs))
	for i, in := range inputs {
		id, err := uuid.Parse(in.ProductID)
		if err != nil {
			return nil, itemError(i, "product_id", "must be a UUID")
		}
		parsed[i] = id
		ids = append(ids, id)
	}
	products, err := s.Catalog.EngineProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	ledger := saleengine.NewLedger(nil)
	for i, in := range inputs {
		product, ok := products[parsed[i]]
		if !ok {
			return nil, itemError(i, "product_id", "unknown product")
		}
		if err := ledger.Add(product, in.Quantity); err != nil {
			return nil, itemError(i, "quantity", "must be at least 1")
		}
		price, perr := money.Parse(in.UnitPrice)
		if perr != nil || price < 0 {
			return nil, itemError(i, "unit_price", "must be a non-negative decimal")
		}
		if err := ledger.SetUnitPrice(parsed[i], price); err != nil {
			return nil, err
		}
		if in.PaysCommission != nil {
			if err := ledger.SetPaysCommission(parsed[i], *in.PaysCommission); err != nil {
				return nil, err
			}
		}
	}
	return ledger.Items(), nil
}

// verifyInstallments checks a client-supplied schedule before it is trusted:
// numbers must run 1..N without gaps and the amounts must sum exactly to the
// recomputed grand total at the minor unit.
func verifyInstallments(inputs []InstallmentInput, total money.Money) ([]saleengine.Installment, error) {
	out := make([]saleengine.Installment, len(inputs))
	for i, in := range inputs {
		dueDate, err := parseDate(in.DueDate)
		if err != nil {
			return nil, itemFieldError("installments", i, "due_date", "must be a date in YYYY-MM-DD form")
		}
		amount, err := money.Parse(in.Amount)
		if err != nil || amount < 0 {
			return nil, itemFieldError("installments", i, "amount", "must be a non-negative decimal")
		}
		out[i] = saleengine.Installment{Number: in.Number, DueDate: dueDate, Amount: amount}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	var sum money.Money
	for i, inst := range out {
		if inst.Number != i+1 {
			return nil, common.NewValidationError("invalid sale payload", map[string]string{"installments": "numbers must run 1..N without gaps"})
		}
		sum += inst.Amount
	}
	if sum != total {
		return nil, common.NewValidationError("invalid sale payload", map[string]string{
			"installments": fmt.Sprintf("amounts sum to %s but the grand total is %s", money.Format(sum), money.Format(total)),
		})
	}
	return out, nil
}

func insertChildren(ctx context.Context, tx pgx.Tx, saleID uuid.UUID, plan commitPlan) error {
	for _, it := range plan.items {
		_, err := tx.Exec(ctx, `
			INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, pays_commission)
			VALUES ($1, $2, $3, $4, $5)`,
			saleID, it.ProductID, it.Quantity, it.UnitPrice, it.PaysCommission)
		if err != nil {
			return err
		}
	}
	for _, inst := range plan.installments {
		_, err := tx.Exec(ctx, `
			INSERT INTO installments (sale_id, installment_number, due_date, amount)
			VALUES ($1, $2, $3, $4)`,
			saleID, inst.Number, inst.DueDate, inst.Amount)
		if err != nil {
			return err
		}
		description := fmt.Sprintf("Sale %s, installment %d/%d", saleID, inst.Number, len(plan.installments))
		_, err = tx.Exec(ctx, `
			INSERT INTO accounts_receivable (sale_id, customer_id, description, amount, due_date)
			VALUES ($1, $2, $3, $4, $5)`,
			saleID, plan.customerID, description, inst.Amount, inst.DueDate)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) recordCommit(id uuid.UUID, plan commitPlan, msg string) {
	obs.SalesCommittedTotal.WithLabelValues(string(plan.status)).Inc()
	obs.InstallmentsGeneratedTotal.Add(float64(len(plan.installments)))
	obs.ReceivablesCreatedTotal.Add(float64(len(plan.installments)))
	s.Log.Info().
		Str("sale_id", id.String()).
		Str("status", string(plan.status)).
		Int("items", len(plan.items)).
		Int("installments", len(plan.installments)).
		Str("grand_total", money.Format(plan.summary.GrandTotal)).
		Msg(msg)
}

func summaryView(sum saleengine.Summary) SummaryView {
	return SummaryView{
		Subtotal:   money.Format(sum.Subtotal),
		Commission: money.Format(sum.Commission),
		TaxRate:    money.PercentFromBps(sum.TaxRateBps),
		Tax:        money.Format(sum.Tax),
		GrandTotal: money.Format(sum.GrandTotal),
	}
}

func requireDate(value, field string) (time.Time, error) {
	t, err := parseDate(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, common.NewValidationError("invalid sale payload", map[string]string{field: "must be a date in YYYY-MM-DD form"})
	}
	return t, nil
}

func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func itemError(index int, field, msg string) error {
	return itemFieldError("items", index, field, msg)
}

func itemFieldError(list string, index int, field, msg string) error {
	key := fmt.Sprintf("%s[%d].%s", list, index, field)
	return common.NewValidationError("invalid sale payload", map[string]string{key: msg})
}

func scheduleError(err error) error {
	switch {
	case errors.Is(err, saleengine.ErrMissingReferenceDate):
		return common.NewValidationError("invalid sale payload", map[string]string{"exit_date": "is required to schedule installments"})
	case errors.Is(err, saleengine.ErrEmptyTerm), errors.Is(err, saleengine.ErrInvalidTerm):
		return common.NewValidationError("invalid sale payload", map[string]string{"payment_condition": "must be day offsets separated by '/', e.g. 15 or 15/30/45"})
	case errors.Is(err, saleengine.ErrNonPositiveTotal):
		return common.NewValidationError("invalid sale payload", map[string]string{"items": "grand total must be greater than zero to schedule installments"})
	default:
		return err
	}
}
