package logger

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/OtabekovsProject/bot-media/config"
)

// Module provides logger for fx dependency injection
var Module = fx.Module("logger",
	fx.Provide(provideLogger),
)

// provideLogger creates logger from config
func provideLogger(cfg *config.LoggingConfig) zerolog.Logger {
	return New(cfg.Level)
}
