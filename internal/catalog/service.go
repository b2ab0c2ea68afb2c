package catalog

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-vendas/internal/common"
	"github.com/noah-isme/backend-vendas/internal/money"
	"github.com/noah-isme/backend-vendas/internal/saleengine"
)

const listCacheKey = "catalog:products:all"

// Product is the API-facing product model. Prices travel as fixed-point
// decimal strings and rates as percent strings.
type Product struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	SKU            string    `json:"sku"`
	Description    string    `json:"description,omitempty"`
	SalePrice      string    `json:"sale_price"`
	CommissionRate string    `json:"commission_rate"`
	PaysCommission bool      `json:"pays_commission"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Input captures the payload for creating or updating a product.
type Input struct {
	Name           string `json:"name" validate:"required"`
	SKU            string `json:"sku" validate:"required"`
	Description    string `json:"description"`
	SalePrice      string `json:"sale_price" validate:"required"`
	CommissionRate string `json:"commission_rate"`
	PaysCommission bool   `json:"pays_commission"`
}

// Service provides product master data backed by Postgres with a Redis
// read-through cache on the list the sale form loads.
type Service struct {
	Pool  *pgxpool.Pool
	Cache *Cache
}

type productRow struct {
	ID                uuid.UUID
	Name              string
	SKU               string
	Description       string
	SalePrice         money.Money
	CommissionRateBps int64
	PaysCommission    bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// List returns every product ordered by name. The sale form loads the full
// catalog up front, so the result is cached as one entry.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	var cached []Product
	if ok, err := s.Cache.GetJSON(ctx, listCacheKey, &cached); err == nil && ok {
		return cached, nil
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, sku, COALESCE(description, ''), sale_price, commission_rate_bps, pays_commission, created_at, updated_at
		FROM products
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p productRow
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.SalePrice, &p.CommissionRateBps, &p.PaysCommission, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, toProduct(p))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	_ = s.Cache.SetJSON(ctx, listCacheKey, out)
	return out, nil
}

// Get returns one product by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	var p productRow
	err := s.Pool.QueryRow(ctx, `
		SELECT id, name, sku, COALESCE(description, ''), sale_price, commission_rate_bps, pays_commission, created_at, updated_at
		FROM products
		WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.SalePrice, &p.CommissionRateBps, &p.PaysCommission, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, nil)
		}
		return Product{}, err
	}
	return toProduct(p), nil
}

// Create inserts a product.
func (s *Service) Create(ctx context.Context, in Input) (Product, error) {
	salePrice, rateBps, err := parseMoneyFields(in)
	if err != nil {
		return Product{}, err
	}
	var p productRow
	err = s.Pool.QueryRow(ctx, `
		INSERT INTO products (name, sku, description, sale_price, commission_rate_bps, pays_commission)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
		RETURNING id, name, sku, COALESCE(description, ''), sale_price, commission_rate_bps, pays_commission, created_at, updated_at`,
		strings.TrimSpace(in.Name), strings.TrimSpace(in.SKU), strings.TrimSpace(in.Description), salePrice, rateBps, in.PaysCommission).
		Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.SalePrice, &p.CommissionRateBps, &p.PaysCommission, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Product{}, common.NewValidationError("duplicate product", map[string]string{"sku": "already exists"})
		}
		return Product{}, err
	}
	s.Cache.Invalidate(ctx, listCacheKey)
	return toProduct(p), nil
}

// Update replaces the mutable fields of a product.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (Product, error) {
	salePrice, rateBps, err := parseMoneyFields(in)
	if err != nil {
		return Product{}, err
	}
	var p productRow
	err = s.Pool.QueryRow(ctx, `
		UPDATE products
		SET name = $2, sku = $3, description = NULLIF($4, ''), sale_price = $5,
		    commission_rate_bps = $6, pays_commission = $7, updated_at = now()
		WHERE id = $1
		RETURNING id, name, sku, COALESCE(description, ''), sale_price, commission_rate_bps, pays_commission, created_at, updated_at`,
		id, strings.TrimSpace(in.Name), strings.TrimSpace(in.SKU), strings.TrimSpace(in.Description), salePrice, rateBps, in.PaysCommission).
		Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.SalePrice, &p.CommissionRateBps, &p.PaysCommission, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, nil)
		}
		if isUniqueViolation(err) {
			return Product{}, common.NewValidationError("duplicate product", map[string]string{"sku": "already exists"})
		}
		return Product{}, err
	}
	s.Cache.Invalidate(ctx, listCacheKey)
	return toProduct(p), nil
}

// EngineProducts resolves the given product ids into the read-only view the
// sale engine consumes. Missing ids are simply absent from the result map.
func (s *Service) EngineProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]saleengine.Product, error) {
	out := make(map[uuid.UUID]saleengine.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, sale_price, commission_rate_bps, pays_commission
		FROM products
		WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p saleengine.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SalePrice, &p.CommissionRateBps, &p.PaysCommission); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func parseMoneyFields(in Input) (salePrice money.Money, rateBps int64, err error) {
	salePrice, err = money.Parse(in.SalePrice)
	if err != nil || salePrice < 0 {
		return 0, 0, common.NewValidationError("invalid product payload", map[string]string{"sale_price": "must be a non-negative decimal"})
	}
	if strings.TrimSpace(in.CommissionRate) != "" {
		rateBps, err = money.BpsFromPercent(in.CommissionRate)
		if err != nil || rateBps < 0 || rateBps > 10_000 {
			return 0, 0, common.NewValidationError("invalid product payload", map[string]string{"commission_rate": "must be a percent between 0 and 100"})
		}
	}
	return salePrice, rateBps, nil
}

func toProduct(p productRow) Product {
	return Product{
		ID:             p.ID.String(),
		Name:           p.Name,
		SKU:            p.SKU,
		Description:    p.Description,
		SalePrice:      money.Format(p.SalePrice),
		CommissionRate: money.PercentFromBps(p.CommissionRateBps),
		PaysCommission: p.PaysCommission,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
