package topics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dailyink/dailyink/internal/writemode"
)

// RedisCache stores topics under topic:{YYYY-MM-DD}:{mode}.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(day string, mode writemode.Mode) string {
	return fmt.Sprintf("topic:%s:%s", day, mode)
}

func (c *RedisCache) Get(ctx context.Context, day time.Time, mode writemode.Mode) (*Topic, bool, error) {
	key := cacheKey(day.Format(dayLayout), mode)
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}

	var t Topic
	if err := json.Unmarshal([]byte(val), &t); err != nil {
		// Treat a corrupt entry as a miss; the next Put overwrites it.
		return nil, false, nil
	}
	return &t, true, nil
}

func (c *RedisCache) Put(ctx context.Context, t *Topic) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling topic: %w", err)
	}
	key := cacheKey(t.Day, t.Mode)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
