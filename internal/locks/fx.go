package locks

import (
	"context"

	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("locks",
	fx.Provide(NewRedisClient),
	fx.Provide(New),
)

// NewRedisClient returns nil when redis.addr is empty.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config) redis.UniversalClient {
	if cfg.Redis.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client
}

// New returns a Redis-backed Locker when a client is configured, otherwise an
// in-process one (correct only for a single replica).
func New(client redis.UniversalClient, cfg config.Config, log *zap.Logger) Locker {
	log = log.Named("locks")
	if client == nil {
		log.Info("redis not configured, using in-process delivery locks")
		return NewMemoryLocker()
	}
	log.Info("using redis delivery locks", zap.String("addr", cfg.Redis.Addr))
	return NewRedisLocker(client, "storefront:checkout:")
}
