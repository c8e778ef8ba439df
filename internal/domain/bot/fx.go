// Package bot contains the bot domain module
package bot

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/OtabekovsProject/bot-media/config"
	kafkaDelivery "github.com/OtabekovsProject/bot-media/internal/domain/bot/delivery/kafka"
	telegramDelivery "github.com/OtabekovsProject/bot-media/internal/domain/bot/delivery/telegram"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
	kafkaRepo "github.com/OtabekovsProject/bot-media/internal/domain/bot/repository/kafka"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/repository/postgres"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/repository/state"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/usecase/buissines"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/workers"
	"github.com/OtabekovsProject/bot-media/internal/infrastructure/telegram"
)

// Module provides bot domain components for fx dependency injection
var Module = fx.Module("bot",
	// Repository
	fx.Provide(postgres.NewUserRepository),
	fx.Provide(postgres.NewChannelRepository),
	fx.Provide(kafkaRepo.NewProducer),
	fx.Provide(provideStateStore),

	// UseCase
	fx.Provide(buissines.NewStateMachine),
	fx.Provide(buissines.NewSubscriptionGate),
	fx.Provide(buissines.NewUseCase),
	fx.Provide(buissines.NewAdminService),
	fx.Provide(buissines.NewBroadcaster),
	fx.Provide(buissines.NewMediaService),

	// Delivery - Telegram
	fx.Provide(telegramDelivery.NewSubscriptionGuard),
	fx.Provide(telegramDelivery.NewHandlers),
	fx.Provide(telegramDelivery.NewRouter),

	// Delivery - Kafka
	fx.Provide(kafkaDelivery.NewHandlers),

	// Workers
	workers.Module,

	// Close the dispatch loop: the bot delivers updates to the router
	fx.Invoke(wireAndRegister),
)

// provideStateStore keeps conversations in Redis when it is enabled, in memory otherwise
func provideStateStore(client *goredis.Client, cfg *config.RedisConfig, logger zerolog.Logger) deps.StateStore {
	if client == nil {
		logger.Info().Msg("Using in-memory conversation state")
		return state.NewMemoryStore(cfg.StateTTL)
	}
	return state.NewRedisStore(client, cfg.StateTTL)
}

// wireAndRegister installs the router as the bot's update handler
func wireAndRegister(
	lc fx.Lifecycle,
	bot *telegram.Bot,
	router *telegramDelivery.Router,
	publisher deps.EventPublisher,
	logger zerolog.Logger,
) {
	bot.SetHandler(router.Dispatch)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if err := publisher.Close(); err != nil {
				logger.Error().Err(err).Msg("Failed to close event publisher")
				return err
			}
			return nil
		},
	})
}
