// Package http wires the HTTP server into the app
package http

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/OtabekovsProject/bot-media/config"
	"github.com/OtabekovsProject/bot-media/internal/infrastructure/http/server"
	"github.com/OtabekovsProject/bot-media/internal/infrastructure/telegram"
)

// Module provides HTTP server for fx DI
var Module = fx.Module("http",
	fx.Provide(NewServerFx),
	fx.Invoke(func(*server.Server) {}),
)

// NewServerFx creates HTTP server with lifecycle hooks for fx DI
func NewServerFx(
	lc fx.Lifecycle,
	serviceCfg *config.ServiceConfig,
	telegramCfg *config.TelegramConfig,
	db *gorm.DB,
	rdb *goredis.Client,
	bot *telegram.Bot,
	logger zerolog.Logger,
) *server.Server {
	srv := server.NewServer(serviceCfg.Port, serviceCfg.Name, logger)

	srv.RegisterMetrics()
	checks := map[string]server.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	srv.RegisterHealth(checks)
	srv.RegisterStatus(bot)

	if telegramCfg.WebhookEnabled() {
		srv.RegisterWebhook(telegramCfg.WebhookPath, bot.WebhookHandler())
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return srv
}
