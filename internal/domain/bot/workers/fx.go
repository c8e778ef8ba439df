package workers

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/OtabekovsProject/bot-media/config"
	kafkaHandlers "github.com/OtabekovsProject/bot-media/internal/domain/bot/delivery/kafka"
)

// Module provides workers for fx dependency injection
var Module = fx.Module("bot-workers",
	fx.Invoke(registerBroadcastConsumer),
)

// registerBroadcastConsumer starts the broadcast consumer when Kafka is enabled
func registerBroadcastConsumer(
	lc fx.Lifecycle,
	cfg *config.KafkaConfig,
	handlers *kafkaHandlers.Handlers,
	logger zerolog.Logger,
) {
	if !cfg.Enabled {
		logger.Info().Msg("Kafka disabled, broadcast consumer not started")
		return
	}

	consumer := NewBroadcastConsumer(cfg, handlers, logger.With().Str("component", "broadcast-consumer").Logger())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			consumer.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			return consumer.Stop()
		},
	})
}
