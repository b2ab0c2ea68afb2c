package health

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-vendas/internal/common"
)

// Pinger probes one dependency.
type Pinger func(ctx context.Context) error

// Handler exposes liveness and readiness endpoints. Liveness never touches
// dependencies; readiness probes each registered pinger under a short timeout.
type Handler struct {
	Probes  map[string]Pinger
	Timeout time.Duration
}

// PoolPinger probes a Postgres pool.
func PoolPinger(pool *pgxpool.Pool) Pinger {
	return func(ctx context.Context) error { return pool.Ping(ctx) }
}

// RedisPinger probes a Redis client.
func RedisPinger(client *redis.Client) Pinger {
	return func(ctx context.Context) error { return client.Ping(ctx).Err() }
}

// Live reports process liveness.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready probes every dependency and reports per-dependency status. Any
// failing probe turns the response into a 503.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	status := make(map[string]string, len(h.Probes))
	healthy := true
	for name, probe := range h.Probes {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
		err := probe(ctx)
		cancel()
		if err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	common.JSON(w, code, status)
}

func (h Handler) timeout() time.Duration {
	if h.Timeout <= 0 {
		return 500 * time.Millisecond
	}
	return h.Timeout
}
