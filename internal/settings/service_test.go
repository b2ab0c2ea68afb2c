package settings

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestSnapshotServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, mr.Set(cacheKey, "750"))

	// Pool is nil: a cache miss would panic, so this proves the hit path.
	svc := &Service{R: client, TTL: time.Minute}
	snapshot, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 750, snapshot.TaxRateBps)
}
