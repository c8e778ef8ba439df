package telegram

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/dto"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/usecase/buissines"
	"github.com/OtabekovsProject/bot-media/internal/infrastructure/metrics"
)

const (
	msgSubscriptionConfirmed = "✅ <b>Rahmat! Obuna tasdiqlandi.</b>\nEndi bemalol foydalanishingiz mumkin."
	msgChooseFormat          = "🎬 <b>Formatni tanlang:</b>"
	msgLinkNotFound          = "❌ Havola topilmadi."
)

// Handlers contains Telegram update handlers
type Handlers struct {
	uc          *buissines.UseCase
	admin       *buissines.AdminService
	fsm         *buissines.StateMachine
	broadcaster *buissines.Broadcaster
	media       *buissines.MediaService
	messenger   deps.Messenger
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewHandlers creates new Telegram handlers
func NewHandlers(
	uc *buissines.UseCase,
	admin *buissines.AdminService,
	fsm *buissines.StateMachine,
	broadcaster *buissines.Broadcaster,
	media *buissines.MediaService,
	messenger deps.Messenger,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Handlers {
	return &Handlers{
		uc:          uc,
		admin:       admin,
		fsm:         fsm,
		broadcaster: broadcaster,
		media:       media,
		messenger:   messenger,
		metrics:     m,
		logger:      logger,
	}
}

// HandleStart handles /start command
func (h *Handlers) HandleStart(ctx context.Context, event *entities.Event) error {
	if event.Sender == nil {
		return nil
	}

	resp, err := h.uc.HandleStart(ctx, &dto.StartCommandRequest{
		UserID:   event.Sender.ID,
		FullName: event.Sender.FullName,
		Username: event.Sender.Username,
	})
	if err != nil {
		return err
	}
	return h.reply(ctx, event, resp.Message, nil)
}

// HandleHelp handles /help command
func (h *Handlers) HandleHelp(ctx context.Context, event *entities.Event) error {
	resp, err := h.uc.HandleHelp(ctx)
	if err != nil {
		return err
	}
	return h.reply(ctx, event, resp.Message, nil)
}

// HandleCheckSub confirms the subscription once the gate has let the recheck through
func (h *Handlers) HandleCheckSub(ctx context.Context, event *entities.Event) error {
	h.answer(ctx, event, "", false)
	if event.MessageID != 0 {
		if err := h.messenger.DeleteMessage(ctx, event.ChatID, event.MessageID); err != nil {
			h.logger.Debug().Err(err).Msg("Failed to delete subscription prompt")
		}
	}
	_, err := h.messenger.SendText(ctx, event.ChatID, msgSubscriptionConfirmed, deps.SendOptions{})
	return err
}

// HandleLink offers the format choice; nothing is downloaded yet
func (h *Handlers) HandleLink(ctx context.Context, event *entities.Event) error {
	_, err := h.messenger.SendText(ctx, event.ChatID, msgChooseFormat, deps.SendOptions{
		ReplyTo:  event.MessageID,
		Keyboard: formatKeyboard(),
	})
	return err
}

// HandleDownloadVideo downloads the link the format message replies to
func (h *Handlers) HandleDownloadVideo(ctx context.Context, event *entities.Event) error {
	url, ok := h.linkFromReply(ctx, event)
	if !ok {
		return nil
	}
	return h.media.FetchVideo(ctx, buissines.Reply{ChatID: event.ChatID, ReplyTo: event.MessageID}, url)
}

// HandleDownloadMusic recognizes the song in the link the format message replies to
func (h *Handlers) HandleDownloadMusic(ctx context.Context, event *entities.Event) error {
	url, ok := h.linkFromReply(ctx, event)
	if !ok {
		return nil
	}
	return h.media.FetchMusic(ctx, buissines.Reply{ChatID: event.ChatID, ReplyTo: event.MessageID}, url)
}

// HandleMedia recognizes the song in an audio, voice or video attachment
func (h *Handlers) HandleMedia(ctx context.Context, event *entities.Event) error {
	return h.media.RecognizeFile(ctx, buissines.Reply{ChatID: event.ChatID, ReplyTo: event.MessageID}, event.FileID, event.Media)
}

// HandleSearch searches a song by the message text
func (h *Handlers) HandleSearch(ctx context.Context, event *entities.Event) error {
	query := strings.TrimSpace(event.Text)
	return h.media.SearchSong(ctx, buissines.Reply{ChatID: event.ChatID, ReplyTo: event.MessageID}, query)
}

// linkFromReply reads the URL back from the message the buttons were attached to
func (h *Handlers) linkFromReply(ctx context.Context, event *entities.Event) (string, bool) {
	text := strings.TrimSpace(event.ReplyToText)
	if text == "" {
		h.answer(ctx, event, msgLinkNotFound, true)
		return "", false
	}

	h.answer(ctx, event, "", false)
	if url := urlPattern.FindString(text); url != "" {
		return url, true
	}
	return text, true
}

// reply sends a text to the event's chat
func (h *Handlers) reply(ctx context.Context, event *entities.Event, text string, kb entities.Keyboard) error {
	_, err := h.messenger.SendText(ctx, event.ChatID, text, deps.SendOptions{Keyboard: kb})
	return err
}

// answer acknowledges a button press; failures only matter to the spinner
func (h *Handlers) answer(ctx context.Context, event *entities.Event, text string, alert bool) {
	if event.CallbackID == "" {
		return
	}
	if err := h.messenger.AnswerCallback(ctx, event.CallbackID, text, alert); err != nil {
		h.logger.Debug().Err(err).Msg("Failed to answer callback")
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
