package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisStore shares counters between instances. Each fixed window is one key
// that expires after two windows.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore wraps a go-redis client.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

func (s *RedisStore) windowKey(key string, start time.Time, window time.Duration) string {
	return fmt.Sprintf("%s%s:%d", s.prefix, key, start.UnixNano()/int64(window))
}

// Hit implements Store.
func (s *RedisStore) Hit(ctx context.Context, key string, window time.Duration, now time.Time) (Counts, error) {
	start := windowStart(now, window)
	currentKey := s.windowKey(key, start, window)
	previousKey := s.windowKey(key, start.Add(-window), window)

	var incr *redis.IntCmd
	var prev *redis.StringCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, currentKey)
		prev = pipe.Get(ctx, previousKey)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return Counts{}, fmt.Errorf("redis rate limit hit: %w", err)
	}

	if incr.Val() == 1 {
		if err := s.client.PExpire(ctx, currentKey, 2*window).Err(); err != nil {
			return Counts{}, fmt.Errorf("redis rate limit expire: %w", err)
		}
	}

	previous, err := prev.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Counts{}, fmt.Errorf("redis rate limit previous window: %w", err)
	}

	return Counts{Current: incr.Val(), Previous: previous, WindowStart: start}, nil
}
