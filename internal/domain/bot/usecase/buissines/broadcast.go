package buissines

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/OtabekovsProject/bot-media/config"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/dto"
)

// BroadcastHeader precedes every broadcast message
const BroadcastHeader = "📢 <b>ADMIN XABARI</b>"

// Content is what a broadcast delivers to each recipient after the header
type Content interface {
	Deliver(ctx context.Context, messenger deps.Messenger, chatID int64) error
}

// CopyContent re-sends an existing message, keeping its media
type CopyContent struct {
	FromChatID int64
	MessageID  int
}

// Deliver implements Content
func (c CopyContent) Deliver(ctx context.Context, messenger deps.Messenger, chatID int64) error {
	return messenger.CopyMessage(ctx, chatID, c.FromChatID, c.MessageID)
}

// TextContent sends a plain HTML text
type TextContent struct {
	Text string
}

// Deliver implements Content
func (c TextContent) Deliver(ctx context.Context, messenger deps.Messenger, chatID int64) error {
	_, err := messenger.SendText(ctx, chatID, c.Text, deps.SendOptions{})
	return err
}

// Broadcaster sends one message to every known user
type Broadcaster struct {
	users     deps.UserRepository
	messenger deps.Messenger
	publisher deps.EventPublisher
	delay     time.Duration
	logger    zerolog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(
	users deps.UserRepository,
	messenger deps.Messenger,
	publisher deps.EventPublisher,
	cfg *config.BroadcastConfig,
	logger zerolog.Logger,
) *Broadcaster {
	return &Broadcaster{
		users:     users,
		messenger: messenger,
		publisher: publisher,
		delay:     cfg.Delay,
		logger:    logger.With().Str("component", "broadcaster").Logger(),
	}
}

// Run delivers content to all users, one at a time and paced.
// A failed recipient is counted and skipped. There is no delivery ledger,
// so running twice sends twice.
func (b *Broadcaster) Run(ctx context.Context, actorID int64, content Content) (dto.BroadcastReport, error) {
	users, err := b.users.ListUsers(ctx)
	if err != nil {
		return dto.BroadcastReport{}, fmt.Errorf("list broadcast recipients: %w", err)
	}

	limit := rate.Inf
	if b.delay > 0 {
		limit = rate.Every(b.delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	report := dto.BroadcastReport{Total: len(users)}
	b.logger.Info().Int64("actor_id", actorID).Int("total", report.Total).Msg("Broadcast started")

	for _, u := range users {
		if err := limiter.Wait(ctx); err != nil {
			b.logger.Warn().Err(err).Int("delivered", report.Delivered).Msg("Broadcast interrupted")
			return report, err
		}

		if err := b.deliver(ctx, u.TelegramID, content); err != nil {
			b.logger.Debug().Err(err).Int64("user_id", u.TelegramID).Msg("Broadcast delivery failed")
			continue
		}
		report.Delivered++
	}

	b.logger.Info().
		Int64("actor_id", actorID).
		Int("total", report.Total).
		Int("delivered", report.Delivered).
		Msg("Broadcast completed")

	ev := dto.NewAuditEvent(dto.EventBroadcastCompleted)
	ev.ActorID = actorID
	ev.Total = report.Total
	ev.Delivered = report.Delivered
	publishAudit(ctx, b.publisher, ev, b.logger)

	return report, nil
}

func (b *Broadcaster) deliver(ctx context.Context, chatID int64, content Content) error {
	if _, err := b.messenger.SendText(ctx, chatID, BroadcastHeader, deps.SendOptions{}); err != nil {
		return err
	}
	return content.Deliver(ctx, b.messenger, chatID)
}
