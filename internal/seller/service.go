package seller

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

// Seller is the API-facing seller model. The commission rate here is the
// seller's default percentage, informational alongside per-product rates.
type Seller struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone,omitempty"`
	CommissionRate string    `json:"commission_rate"`
	CreatedAt      time.Time `json:"created_at"`
}

// Input captures the payload for creating a seller.
type Input struct {
	Name           string `json:"name" validate:"required"`
	Phone          string `json:"phone"`
	CommissionRate string `json:"commission_rate"`
}

// Service provides seller master data.
type Service struct {
	Pool *pgxpool.Pool
}

// List returns sellers ordered by name, paginated.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Seller, int64, error) {
	var total int64
	if err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM sellers`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, COALESCE(phone, ''), commission_rate_bps, created_at
		FROM sellers
		ORDER BY name
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Seller
	for rows.Next() {
		sl, err := scanSeller(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, sl)
	}
	return out, total, rows.Err()
}

// Get returns one seller by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Seller, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(phone, ''), commission_rate_bps, created_at
		FROM sellers
		WHERE id = $1`, id)
	sl, err := scanSeller(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Seller{}, common.NewAppError("NOT_FOUND", "seller not found", http.StatusNotFound, nil)
		}
		return Seller{}, err
	}
	return sl, nil
}

// Exists reports whether the seller id resolves.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var found bool
	err := s.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sellers WHERE id = $1)`, id).Scan(&found)
	return found, err
}

// Create inserts a seller.
func (s *Service) Create(ctx context.Context, in Input) (Seller, error) {
	var rateBps int64
	if strings.TrimSpace(in.CommissionRate) != "" {
		var err error
		rateBps, err = money.BpsFromPercent(in.CommissionRate)
		if err != nil || rateBps < 0 || rateBps > 10_000 {
			return Seller{}, common.NewValidationError("invalid seller payload", map[string]string{"commission_rate": "must be a percent between 0 and 100"})
		}
	}
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO sellers (name, phone, commission_rate_bps)
		VALUES ($1, NULLIF($2, ''), $3)
		RETURNING id, name, COALESCE(phone, ''), commission_rate_bps, created_at`,
		strings.TrimSpace(in.Name), strings.TrimSpace(in.Phone), rateBps)
	return scanSeller(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSeller(row rowScanner) (Seller, error) {
	var sl Seller
	var id uuid.UUID
	var rateBps int64
	if err := row.Scan(&id, &sl.Name, &sl.Phone, &rateBps, &sl.CreatedAt); err != nil {
		return Seller{}, err
	}
	sl.ID = id.String()
	sl.CommissionRate = money.PercentFromBps(rateBps)
	return sl, nil
}
