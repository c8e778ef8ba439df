package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/consts"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/usecase/buissines"
)

const (
	msgSubscribePrompt   = "🚫 <b>Kechirasiz! Botdan foydalanish uchun quyidagi kanallarga obuna bo'ling:</b>"
	msgStillNotSubscribe = "❌ Hali obuna bo'lmadingiz! Iltimos, kanallarga a'zo bo'ling."
	msgSubscribeToUse    = "🚫 Foydalanish uchun obuna bo'ling!"
)

// SubscriptionGuard is the forced subscription gate
type SubscriptionGuard struct {
	gate      *buissines.SubscriptionGate
	messenger deps.Messenger
	logger    zerolog.Logger
}

// NewSubscriptionGuard creates the forced subscription gate
func NewSubscriptionGuard(gate *buissines.SubscriptionGate, messenger deps.Messenger, logger zerolog.Logger) *SubscriptionGuard {
	return &SubscriptionGuard{
		gate:      gate,
		messenger: messenger,
		logger:    logger,
	}
}

// Check stops events from users missing a required channel.
// It re-checks membership on every event.
func (g *SubscriptionGuard) Check(ctx context.Context, event *entities.Event) *Decision {
	if event.Sender == nil {
		return nil
	}

	outstanding := g.gate.Outstanding(ctx, event.UserID())
	if len(outstanding) == 0 {
		return nil
	}

	g.logger.Debug().
		Int64("user_id", event.UserID()).
		Int("outstanding", len(outstanding)).
		Msg("User is not subscribed to required channels")

	if event.IsCallback() {
		text := msgSubscribeToUse
		if event.CallbackData == consts.CallbackCheckSub {
			text = msgStillNotSubscribe
		}
		return &Decision{
			Reason: "subscription",
			Render: func(ctx context.Context) error {
				return g.messenger.AnswerCallback(ctx, event.CallbackID, text, true)
			},
		}
	}

	return &Decision{
		Reason: "subscription",
		Render: func(ctx context.Context) error {
			_, err := g.messenger.SendText(ctx, event.ChatID, msgSubscribePrompt, deps.SendOptions{
				Keyboard: subscribeKeyboard(outstanding),
			})
			return err
		},
	}
}
