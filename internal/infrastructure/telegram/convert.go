package telegram

import (
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
)

// ToEvent reduces an update to a domain event.
// Updates other than messages and callback queries are ignored.
func ToEvent(update *models.Update) (*entities.Event, bool) {
	switch {
	case update == nil:
		return nil, false
	case update.Message != nil:
		return messageEvent(update.Message), true
	case update.CallbackQuery != nil:
		return callbackEvent(update.CallbackQuery), true
	default:
		return nil, false
	}
}

func messageEvent(msg *models.Message) *entities.Event {
	event := &entities.Event{
		Kind:      entities.EventMessage,
		Sender:    toSender(msg.From),
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      msg.Text,
	}

	switch {
	case msg.Video != nil:
		event.Media, event.FileID = entities.MediaVideo, msg.Video.FileID
	case msg.Audio != nil:
		event.Media, event.FileID = entities.MediaAudio, msg.Audio.FileID
	case msg.Voice != nil:
		event.Media, event.FileID = entities.MediaVoice, msg.Voice.FileID
	case msg.VideoNote != nil:
		event.Media, event.FileID = entities.MediaVideoNote, msg.VideoNote.FileID
	case len(msg.Photo) > 0:
		event.Media, event.FileID = entities.MediaImage, msg.Photo[len(msg.Photo)-1].FileID
	case msg.Document != nil:
		event.Media, event.FileID = entities.MediaDocument, msg.Document.FileID
	}
	if event.Text == "" {
		event.Text = msg.Caption
	}

	if msg.ReplyToMessage != nil {
		event.ReplyToText = msg.ReplyToMessage.Text
	}
	return event
}

func callbackEvent(cb *models.CallbackQuery) *entities.Event {
	from := cb.From
	event := &entities.Event{
		Kind:         entities.EventCallback,
		Sender:       toSender(&from),
		CallbackID:   cb.ID,
		CallbackData: cb.Data,
	}

	// buttons on messages older than 48h arrive without the message body
	if msg := cb.Message.Message; msg != nil {
		event.ChatID = msg.Chat.ID
		event.MessageID = msg.ID
		event.Text = msg.Text
		if msg.ReplyToMessage != nil {
			event.ReplyToText = msg.ReplyToMessage.Text
		}
	} else if im := cb.Message.InaccessibleMessage; im != nil {
		event.ChatID = im.Chat.ID
		event.MessageID = im.MessageID
	}
	if event.ChatID == 0 {
		event.ChatID = from.ID
	}
	return event
}

func toSender(u *models.User) *entities.Sender {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &entities.Sender{
		ID:       u.ID,
		FullName: strings.TrimSpace(u.FirstName + " " + u.LastName),
		Username: u.Username,
	}
}
