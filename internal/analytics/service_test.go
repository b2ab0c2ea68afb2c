package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, now time.Time) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &Service{
		R:         client,
		TTL:       time.Minute,
		RangeDays: 30,
		Now:       func() time.Time { return now },
	}, mr
}

func TestSalesDailyServedFromCache(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	svc, mr := newTestService(t, now)

	since := now.AddDate(0, 0, -30).Format("2006-01-02")
	cached := []DailyPoint{
		{Day: "2024-03-10", Count: 2, Revenue: "150.00"},
		{Day: "2024-03-12", Count: 1, Revenue: "99.90"},
	}
	data, err := json.Marshal(cached)
	require.NoError(t, err)
	require.NoError(t, mr.Set("an:daily:30:"+since, string(data)))

	// Pool is nil: a cache miss would panic, so this proves the hit path.
	points, err := svc.SalesDaily(context.Background())
	require.NoError(t, err)
	require.Equal(t, cached, points)
}

func TestDashboardServedFromCache(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	svc, mr := newTestService(t, now)

	cached := Dashboard{
		Customers:      4,
		Products:       7,
		Sellers:        2,
		PendingSales:   3,
		CompletedSales: 9,
		MonthRevenue:   "1234.56",
		RecentSales:    []RecentSale{},
	}
	data, err := json.Marshal(cached)
	require.NoError(t, err)
	require.NoError(t, mr.Set("an:dashboard", string(data)))

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, cached.MonthRevenue, d.MonthRevenue)
	require.Equal(t, cached.CompletedSales, d.CompletedSales)
}

func TestStoreRespectsTTL(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	svc, mr := newTestService(t, now)

	svc.store(context.Background(), "an:test", []DailyPoint{{Day: "2024-03-01", Count: 1, Revenue: "10.00"}})
	require.True(t, mr.Exists("an:test"))

	mr.FastForward(2 * time.Minute)
	require.False(t, mr.Exists("an:test"))
}

func TestCacheDisabledWithoutTTL(t *testing.T) {
	svc := &Service{TTL: 0}
	var out []DailyPoint
	require.False(t, svc.getCached(context.Background(), "an:none", &out))
}
