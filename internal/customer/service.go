package customer

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
)

// Customer is the API-facing customer model.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Input captures the payload for creating a customer.
type Input struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

// Service provides customer master data.
type Service struct {
	Pool *pgxpool.Pool
}

// List returns customers ordered by name, paginated.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Customer, int64, error) {
	var total int64
	if err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, COALESCE(email, ''), COALESCE(phone, ''), created_at
		FROM customers
		ORDER BY name
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		var id uuid.UUID
		if err := rows.Scan(&id, &c.Name, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		c.ID = id.String()
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Get returns one customer by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Customer, error) {
	var c Customer
	var rowID uuid.UUID
	err := s.Pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(email, ''), COALESCE(phone, ''), created_at
		FROM customers
		WHERE id = $1`, id).
		Scan(&rowID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, common.NewAppError("NOT_FOUND", "customer not found", http.StatusNotFound, nil)
		}
		return Customer{}, err
	}
	c.ID = rowID.String()
	return c, nil
}

// Exists reports whether the customer id resolves.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var found bool
	err := s.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&found)
	return found, err
}

// Create inserts a customer.
func (s *Service) Create(ctx context.Context, in Input) (Customer, error) {
	var c Customer
	var id uuid.UUID
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO customers (name, email, phone)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
		RETURNING id, name, COALESCE(email, ''), COALESCE(phone, ''), created_at`,
		strings.TrimSpace(in.Name), strings.TrimSpace(in.Email), strings.TrimSpace(in.Phone)).
		Scan(&id, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Customer{}, common.NewValidationError("duplicate customer", map[string]string{"email": "already exists"})
		}
		return Customer{}, err
	}
	c.ID = id.String()
	return c, nil
}
