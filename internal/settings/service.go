package settings

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-vendas/internal/saleengine"
)

const cacheKey = "settings:company"

// Service loads the company settings singleton. The snapshot feeds every
// computation, so reads go through a short-lived Redis cache.
type Service struct {
	Pool *pgxpool.Pool
	R    *redis.Client
	TTL  time.Duration
}

// Snapshot returns the current read-only settings snapshot.
func (s *Service) Snapshot(ctx context.Context) (saleengine.Settings, error) {
	if s.R != nil {
		if raw, err := s.R.Get(ctx, cacheKey).Result(); err == nil {
			if bps, convErr := strconv.ParseInt(raw, 10, 64); convErr == nil {
				return saleengine.Settings{TaxRateBps: bps}, nil
			}
		}
	}
	var bps int64
	err := s.Pool.QueryRow(ctx, `SELECT tax_rate_bps FROM company_settings WHERE id = 1`).Scan(&bps)
	if err != nil {
		return saleengine.Settings{}, err
	}
	if s.R != nil {
		_ = s.R.Set(ctx, cacheKey, strconv.FormatInt(bps, 10), s.TTL).Err()
	}
	return saleengine.Settings{TaxRateBps: bps}, nil
}

// UpdateTaxRate sets the default tax rate and drops the cached snapshot.
func (s *Service) UpdateTaxRate(ctx context.Context, bps int64) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE company_settings SET tax_rate_bps = $1, updated_at = now() WHERE id = 1`, bps)
	if err != nil {
		return err
	}
	if s.R != nil {
		_ = s.R.Del(ctx, cacheKey).Err()
	}
	return nil
}
