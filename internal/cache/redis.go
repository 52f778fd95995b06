package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// --- Rate Limiting Global ---

func (r *Redis) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error) {
	key = "ratelimit:" + key
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// La fenêtre démarre au premier appel.
	if n == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// --- Blacklist JWT (révocation avant expiration) ---

func (r *Redis) BlacklistToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	key := fmt.Sprintf("blacklist:%s", tokenID)
	return r.client.Set(ctx, key, "revoked", ttl).Err()
}

func (r *Redis) IsTokenBlacklisted(ctx context.Context, tokenID string) bool {
	key := fmt.Sprintf("blacklist:%s", tokenID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		log.WithError(err).Warn("⚠️ Erreur vérification blacklist")
		return false
	}
	return exists > 0
}

// --- Idempotence ---

func (r *Redis) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, "once:"+key, "1", ttl).Result()
}

func (r *Redis) Forget(ctx context.Context, key string) error {
	return r.client.Del(ctx, "once:"+key).Err()
}
