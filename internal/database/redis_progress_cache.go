package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"grimoire-server/internal/models"
)

// RedisProgressCache keeps recently used progression snapshots in Redis
// so the level list does not hit Postgres on every request. It is a
// cache only: misses and Redis failures fall through to the repository.
type RedisProgressCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisProgressCache creates the cache with the given entry TTL.
func NewRedisProgressCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisProgressCache {
	return &RedisProgressCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisProgressCache"),
	}
}

func progressKey(userID uuid.UUID) string {
	return fmt.Sprintf("progress:%s", userID)
}

// Get returns the cached snapshot, or models.ErrNotFound on a miss.
func (c *RedisProgressCache) Get(ctx context.Context, userID uuid.UUID) (models.ProgressSnapshot, error) {
	raw, err := c.client.Get(ctx, progressKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrNotFound
		}
		c.logger.Warn("Redis get failed", zap.Stringer("userID", userID), zap.Error(err))
		return nil, err
	}
	snapshot := models.ProgressSnapshot{}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		// A corrupt entry behaves like a miss; it will be overwritten.
		c.logger.Warn("Dropping unreadable cache entry", zap.Stringer("userID", userID), zap.Error(err))
		return nil, models.ErrNotFound
	}
	return snapshot, nil
}

// Set stores the snapshot. Failures are logged, not returned: the cache
// must never fail a progression mutation.
func (c *RedisProgressCache) Set(ctx context.Context, userID uuid.UUID, snapshot models.ProgressSnapshot) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		c.logger.Warn("Failed to marshal snapshot for cache", zap.Stringer("userID", userID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, progressKey(userID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Redis set failed", zap.Stringer("userID", userID), zap.Error(err))
	}
}

// Invalidate drops the cached snapshot for a user.
func (c *RedisProgressCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := c.client.Del(ctx, progressKey(userID)).Err(); err != nil {
		c.logger.Warn("Redis del failed", zap.Stringer("userID", userID), zap.Error(err))
	}
}
