package buissines

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
)

// SubscriptionGate decides whether a user is subscribed to every required channel
type SubscriptionGate struct {
	channels deps.ChannelRepository
	oracle   deps.MembershipOracle
	logger   zerolog.Logger
}

// NewSubscriptionGate creates a new SubscriptionGate
func NewSubscriptionGate(channels deps.ChannelRepository, oracle deps.MembershipOracle, logger zerolog.Logger) *SubscriptionGate {
	return &SubscriptionGate{
		channels: channels,
		oracle:   oracle,
		logger:   logger.With().Str("component", "subscription-gate").Logger(),
	}
}

// Outstanding returns the required channels the user has not joined.
// Channels whose membership cannot be checked are skipped, and a failure to
// load the channel list lets the user through.
func (g *SubscriptionGate) Outstanding(ctx context.Context, userID int64) []entities.RequiredChannel {
	channels, err := g.channels.ListChannels(ctx)
	if err != nil {
		g.logger.Warn().Err(err).Int64("user_id", userID).Msg("Failed to load required channels, letting user through")
		return nil
	}

	var outstanding []entities.RequiredChannel
	for _, ch := range channels {
		status, err := g.oracle.MemberStatus(ctx, ch.ChannelID, userID)
		if err != nil {
			g.logger.Warn().
				Err(err).
				Int64("user_id", userID).
				Str("channel_id", ch.ChannelID).
				Msg("Membership check failed, skipping channel")
			continue
		}
		if !status.IsSubscribed() {
			outstanding = append(outstanding, ch)
		}
	}

	return outstanding
}
