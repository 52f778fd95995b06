package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return map[string]Cache{
		"redis":  NewRedis(client),
		"memory": NewMemory(),
	}
}

func TestCacheContract(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for i := int64(1); i <= 3; i++ {
				n, err := c.IncrementRateLimit(ctx, "1.2.3.4", time.Minute)
				require.NoError(t, err)
				assert.Equal(t, i, n)
			}

			assert.False(t, c.IsTokenBlacklisted(ctx, "jti-1"))
			require.NoError(t, c.BlacklistToken(ctx, "jti-1", time.Hour))
			assert.True(t, c.IsTokenBlacklisted(ctx, "jti-1"))

			first, err := c.Claim(ctx, "evt_1", time.Hour)
			require.NoError(t, err)
			second, err := c.Claim(ctx, "evt_1", time.Hour)
			require.NoError(t, err)
			assert.True(t, first)
			assert.False(t, second)

			require.NoError(t, c.Forget(ctx, "evt_1"))
			again, err := c.Claim(ctx, "evt_1", time.Hour)
			require.NoError(t, err)
			assert.True(t, again)
		})
	}
}

func TestMemoryWindowExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	_, _ = m.IncrementRateLimit(ctx, "k", time.Minute)
	n, _ := m.IncrementRateLimit(ctx, "k", time.Minute)
	assert.Equal(t, int64(2), n)

	now = now.Add(time.Minute)
	n, _ = m.IncrementRateLimit(ctx, "k", time.Minute)
	assert.Equal(t, int64(1), n)
}
