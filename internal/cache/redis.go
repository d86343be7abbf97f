// Package cache stores recommendation responses in redis, keyed by user,
// strategy and limit. Entries are invalidated when the user rates a
// movie and flushed wholesale after a retrain.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/cinematch/cinematch/internal/domain"
)

const defaultTTL = 10 * time.Minute

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func buildKey(userID int64, strategy domain.Strategy, limit int) string {
	return fmt.Sprintf("rec:user:%d:strategy:%s:limit:%d", userID, strategy, limit)
}

// Get returns cached recommendations, with found=false on a miss.
func (c *Cache) Get(ctx context.Context, userID int64, strategy domain.Strategy, limit int) ([]domain.Recommendation, bool, error) {
	key := buildKey(userID, strategy, limit)
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var recs []domain.Recommendation
	if err := json.Unmarshal([]byte(val), &recs); err != nil {
		return nil, false, fmt.Errorf("cache unmarshal %s: %w", key, err)
	}
	return recs, true, nil
}

// Set stores recommendations for the cache TTL.
func (c *Cache) Set(ctx context.Context, userID int64, strategy domain.Strategy, limit int, recs []domain.Recommendation) error {
	key := buildKey(userID, strategy, limit)
	val, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// ClearUser drops all cached entries for one user, used when their
// ratings change.
func (c *Cache) ClearUser(ctx context.Context, userID int64) error {
	return c.clearPattern(ctx, fmt.Sprintf("rec:user:%d:strategy:*", userID))
}

// ClearAll drops every recommendation entry, used after a retrain swaps
// the model.
func (c *Cache) ClearAll(ctx context.Context) error {
	return c.clearPattern(ctx, "rec:user:*")
}

func (c *Cache) clearPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
