// Package kafka contains Kafka delivery handlers
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/dto"
	boterrors "github.com/OtabekovsProject/bot-media/internal/domain/bot/errors"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/usecase/buissines"
	"github.com/OtabekovsProject/bot-media/internal/infrastructure/metrics"
)

// BroadcastRunner runs a broadcast to all users
type BroadcastRunner interface {
	Run(ctx context.Context, actorID int64, content buissines.Content) (dto.BroadcastReport, error)
}

// Handlers contains Kafka message handlers
type Handlers struct {
	broadcaster BroadcastRunner
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewHandlers creates new Kafka handlers
func NewHandlers(broadcaster *buissines.Broadcaster, m *metrics.Metrics, logger zerolog.Logger) *Handlers {
	return NewHandlersWith(broadcaster, m, logger)
}

// NewHandlersWith creates Kafka handlers over any broadcast runner
func NewHandlersWith(broadcaster BroadcastRunner, m *metrics.Metrics, logger zerolog.Logger) *Handlers {
	return &Handlers{
		broadcaster: broadcaster,
		metrics:     m,
		logger:      logger,
	}
}

// HandleBroadcastRequest handles broadcast request events from Kafka
func (h *Handlers) HandleBroadcastRequest(ctx context.Context, data []byte) error {
	var event dto.BroadcastRequestEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Error().Err(err).Msg("Failed to unmarshal broadcast request event")
		return fmt.Errorf("failed to unmarshal broadcast request: %w", err)
	}

	if strings.TrimSpace(event.Text) == "" {
		h.logger.Warn().Str("request_id", event.ID).Msg("Broadcast request has empty text, skipping")
		return boterrors.ErrEmptyMessage
	}

	h.logger.Info().
		Str("request_id", event.ID).
		Int64("requested_by", event.RequestedBy).
		Msg("Processing broadcast request")

	report, err := h.broadcaster.Run(ctx, event.RequestedBy, buissines.TextContent{Text: event.Text})
	h.metrics.RecordBroadcast(report.Delivered, report.Failed())
	if err != nil {
		h.logger.Error().Err(err).Str("request_id", event.ID).Msg("Broadcast request failed")
		return err
	}

	h.logger.Info().
		Str("request_id", event.ID).
		Int("total", report.Total).
		Int("delivered", report.Delivered).
		Msg("Broadcast request completed")
	return nil
}
