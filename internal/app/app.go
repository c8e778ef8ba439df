// Package app contains application bootstrap
package app

import (
	"go.uber.org/fx"

	"github.com/OtabekovsProject/bot-media/config"
	"github.com/OtabekovsProject/bot-media/internal/domain"
	"github.com/OtabekovsProject/bot-media/internal/infrastructure"
)

// CreateApp creates fx application with all modules
func CreateApp() fx.Option {
	return fx.Options(
		// Configuration
		fx.Provide(config.Out),

		// Infrastructure (logger, metrics, database, redis, telegram, media, http)
		infrastructure.Module,

		// Domain (bot business logic, workers)
		domain.Module,
	)
}
