package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/OtabekovsProject/bot-media/config"
)

const connectTimeout = 5 * time.Second

// Module provides the Redis client for fx dependency injection
var Module = fx.Module("redis",
	fx.Provide(NewClientWithLifecycle),
)

// NewClientWithLifecycle connects to Redis when enabled.
// It returns a nil client when Redis is disabled.
func NewClientWithLifecycle(lc fx.Lifecycle, cfg *config.RedisConfig, logger zerolog.Logger) (*goredis.Client, error) {
	if !cfg.Enabled {
		logger.Info().Msg("Redis disabled, conversation state kept in memory")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			logger.Info().Msg("Closing Redis connection")
			return client.Close()
		},
	})

	logger.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("Redis connected")
	return client, nil
}
