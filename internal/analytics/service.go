package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-vendas/internal/money"
)

// DailyPoint is one day of the completed-sales series.
type DailyPoint struct {
	Day     string `json:"day"`
	Count   int64  `json:"count"`
	Revenue string `json:"revenue"`
}

// RecentSale is a compact entry for the dashboard's latest-sales panel.
type RecentSale struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	Status       string    `json:"status"`
	GrandTotal   string    `json:"grand_total"`
	CreatedAt    time.Time `json:"created_at"`
}

// Dashboard aggregates the headline counters shown on the home screen.
type Dashboard struct {
	Customers      int64        `json:"customers"`
	Products       int64        `json:"products"`
	Sellers        int64        `json:"sellers"`
	PendingSales   int64        `json:"pending_sales"`
	CompletedSales int64        `json:"completed_sales"`
	MonthRevenue   string       `json:"month_revenue"`
	RecentSales    []RecentSale `json:"recent_sales"`
}

// Service provides cached read models over the sales data. Results are
// approximate by design: the cache may lag writes by up to TTL.
type Service struct {
	Pool      *pgxpool.Pool
	R         *redis.Client
	TTL       time.Duration
	RangeDays int
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cacheKey(parts ...any) string {
	formatted := make([]string, 0, len(parts))
	for _, part := range parts {
		formatted = append(formatted, fmt.Sprint(part))
	}
	return strings.Join(formatted, ":")
}

// SalesDaily returns the completed-sales series for the configured window,
// one point per calendar day, newest day last. Days without sales are absent.
func (s *Service) SalesDaily(ctx context.Context) ([]DailyPoint, error) {
	days := s.RangeDays
	if days <= 0 {
		days = 30
	}
	since := s.now().AddDate(0, 0, -days)
	key := cacheKey("an", "daily", days, since.Format("2006-01-02"))
	var cached []DailyPoint
	if s.getCached(ctx, key, &cached) {
		return cached, nil
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT to_char(created_at::date, 'YYYY-MM-DD'), count(*), COALESCE(sum(total_amount), 0)
		FROM sales
		WHERE status = 'COMPLETED' AND created_at >= $1
		GROUP BY created_at::date
		ORDER BY created_at::date`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DailyPoint{}
	for rows.Next() {
		var p DailyPoint
		var revenue money.Money
		if err := rows.Scan(&p.Day, &p.Count, &revenue); err != nil {
			return nil, err
		}
		p.Revenue = money.Format(revenue)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.store(ctx, key, out)
	return out, nil
}

// Dashboard returns the headline counters and the five newest sales.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	key := cacheKey("an", "dashboard")
	var cached Dashboard
	if s.getCached(ctx, key, &cached) {
		return cached, nil
	}

	var d Dashboard
	var monthRevenue money.Money
	monthStart := s.now().AddDate(0, 0, 1-s.now().Day()).Format("2006-01-02")
	err := s.Pool.QueryRow(ctx, `
		SELECT (SELECT count(*) FROM customers),
		       (SELECT count(*) FROM products),
		       (SELECT count(*) FROM sellers),
		       (SELECT count(*) FROM sales WHERE status = 'PENDING'),
		       (SELECT count(*) FROM sales WHERE status = 'COMPLETED'),
		       (SELECT COALESCE(sum(total_amount), 0) FROM sales
		        WHERE status = 'COMPLETED' AND created_at >= $1::date)`, monthStart).
		Scan(&d.Customers, &d.Products, &d.Sellers, &d.PendingSales, &d.CompletedSales, &monthRevenue)
	if err != nil {
		return Dashboard{}, err
	}
	d.MonthRevenue = money.Format(monthRevenue)

	rows, err := s.Pool.Query(ctx, `
		SELECT s.id::text, c.name, s.status, s.total_amount, s.created_at
		FROM sales s
		JOIN customers c ON c.id = s.customer_id
		ORDER BY s.created_at DESC
		LIMIT 5`)
	if err != nil {
		return Dashboard{}, err
	}
	defer rows.Close()
	d.RecentSales = []RecentSale{}
	for rows.Next() {
		var r RecentSale
		var grandTotal money.Money
		if err := rows.Scan(&r.ID, &r.CustomerName, &r.Status, &grandTotal, &r.CreatedAt); err != nil {
			return Dashboard{}, err
		}
		r.GrandTotal = money.Format(grandTotal)
		d.RecentSales = append(d.RecentSales, r)
	}
	if err := rows.Err(); err != nil {
		return Dashboard{}, err
	}
	s.store(ctx, key, d)
	return d, nil
}

func (s *Service) getCached(ctx context.Context, key string, dst any) bool {
	if s.R == nil || s.TTL <= 0 {
		return false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}
