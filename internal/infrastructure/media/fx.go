package media

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/OtabekovsProject/bot-media/config"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
	"github.com/OtabekovsProject/bot-media/internal/infrastructure/metrics"
)

// Module provides the media job runner for fx dependency injection
var Module = fx.Module("media",
	fx.Provide(NewRunner),
)

// NewRunner wires yt-dlp and the recognizer behind the bounded pool
func NewRunner(cfg *config.MediaConfig, m *metrics.Metrics, logger zerolog.Logger) deps.MediaRunner {
	return NewPool(NewYtDlp(cfg, logger), NewAudD(cfg, logger), cfg, m, logger)
}
