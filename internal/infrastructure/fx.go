// Package infrastructure contains infrastructure layer components
package infrastructure

import (
	"go.uber.org/fx"

	"github.com/OtabekovsProject/bot-media/internal/infrastructure/database"
	"github.com/OtabekovsProject/bot-media/internal/infrastructure/http"
	"github.com/OtabekovsProject/bot-media/internal/infrastructure/logger"
	"github.com/OtabekovsProject/bot-media/internal/infrastructure/media"
	"github.com/OtabekovsProject/bot-media/internal/infrastructure/metrics"
	"github.com/OtabekovsProject/bot-media/internal/infrastructure/redis"
	"github.com/OtabekovsProject/bot-media/internal/infrastructure/telegram"
)

// Module provides all infrastructure components for fx dependency injection
var Module = fx.Module("infrastructure",
	logger.Module,
	metrics.Module,
	database.Module,
	redis.Module,
	telegram.Module,
	media.Module,
	http.Module,
)
