package telegram

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/OtabekovsProject/bot-media/config"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/consts"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
)

// Module provides Telegram bot for fx dependency injection
var Module = fx.Module("telegram",
	fx.Provide(provideBot),
	fx.Provide(
		func(b *Bot) deps.Messenger { return b },
		func(b *Bot) deps.MembershipOracle { return b },
	),
	fx.Invoke(registerLifecycle),
)

// provideBot creates Telegram bot from config
func provideBot(cfg *config.TelegramConfig, logger zerolog.Logger) (*Bot, error) {
	return NewBot(cfg, logger)
}

// registerLifecycle starts polling or webhook processing with the app
func registerLifecycle(lc fx.Lifecycle, bot *Bot, cfg *config.TelegramConfig, logger zerolog.Logger) {
	var cancel context.CancelFunc
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			if cfg.WebhookEnabled() {
				if err := bot.RegisterWebhook(startCtx); err != nil {
					return err
				}
			} else if err := bot.PreparePolling(startCtx); err != nil {
				return err
			}

			if err := bot.SetCommands(startCtx, consts.AllCommands); err != nil {
				logger.Warn().Err(err).Msg("Failed to register command menu")
			}

			// Create a long-lived context for the bot
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())

			go func() {
				defer close(done)
				if cfg.WebhookEnabled() {
					bot.StartWebhook(ctx)
					return
				}
				bot.Start(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			if cancel != nil {
				cancel()
			}

			select {
			case <-done:
			case <-stopCtx.Done():
			}

			if cfg.WebhookEnabled() {
				return bot.UnregisterWebhook(stopCtx)
			}
			return nil
		},
	})
}
