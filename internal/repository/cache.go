// internal/repository/cache.go
package repository

import (
	"context"
	"encoding/json"
	"time"

	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/models"

	"github.com/redis/go-redis/v9"
)

const founderCachePrefix = "founder:profile:"

// FounderStore is the read side of the founder repository.
type FounderStore interface {
	GetByID(ctx context.Context, id string) (*models.Founder, error)
}

// FounderCache serves founder profiles from Redis, falling back to the
// store on a miss and filling the cache afterwards.
type FounderCache struct {
	redis  *redis.Client
	store  FounderStore
	ttl    time.Duration
	logger logger.Logger
}

func NewFounderCache(rdb *redis.Client, store FounderStore, ttl time.Duration, log logger.Logger) *FounderCache {
	return &FounderCache{
		redis:  rdb,
		store:  store,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "founder-cache"}),
	}
}

func founderCacheKey(id string) string {
	return founderCachePrefix + id
}

func (c *FounderCache) GetByID(ctx context.Context, id string) (*models.Founder, error) {
	key := founderCacheKey(id)

	if val, err := c.redis.Get(ctx, key).Result(); err == nil {
		var f models.Founder
		if err := json.Unmarshal([]byte(val), &f); err == nil {
			return &f, nil
		}
		c.logger.Warn("discarding undecodable cache entry", map[string]interface{}{"key": key})
	} else if err != redis.Nil {
		c.logger.Warn("founder cache read failed", map[string]interface{}{"key": key, "error": err})
	}

	f, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(f); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("founder cache write failed", map[string]interface{}{"key": key, "error": err})
		}
	}
	return f, nil
}

// Invalidate drops the cached profile, e.g. after a new embedding is stored.
func (c *FounderCache) Invalidate(ctx context.Context, id string) error {
	return c.redis.Del(ctx, founderCacheKey(id)).Err()
}
