package ratelimit

import (
	"context"
	"log/slog"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Module provides a Limiter backed by Redis when REDIS_ADDR is set and by
// process memory otherwise.
var Module = fx.Options(
	fx.Provide(newStores, New, newSweeper),
	fx.Invoke(registerLifecycle),
)

type storesResult struct {
	fx.Out

	Store  Store
	Memory *MemoryStore
}

func newStores(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) storesResult {
	if cfg.RedisAddr == "" {
		mem := NewMemoryStore()
		return storesResult{Store: mem, Memory: mem}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("redis unreachable, rate limiting will fail open", slog.String("error", err.Error()))
			}
			return nil
		},
		OnStop: func(context.Context) error { return client.Close() },
	})
	return storesResult{Store: NewRedisStore(client)}
}

func newSweeper(mem *MemoryStore, cfg *config.Config, logger *slog.Logger) *Sweeper {
	return NewSweeper(mem, cfg.RateLimitSweepInterval, logger)
}

func registerLifecycle(lc fx.Lifecycle, s *Sweeper) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start(context.Background())
			return nil
		},
		OnStop: func(context.Context) error {
			s.Stop()
			return nil
		},
	})
}
