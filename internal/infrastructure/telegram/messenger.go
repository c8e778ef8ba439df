package telegram

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/valyala/fasthttp"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
	boterrors "github.com/OtabekovsProject/bot-media/internal/domain/bot/errors"
)

var (
	_ deps.Messenger        = (*Bot)(nil)
	_ deps.MembershipOracle = (*Bot)(nil)
)

// SendText implements deps.Messenger interface
func (b *Bot) SendText(ctx context.Context, chatID int64, text string, opts deps.SendOptions) (int, error) {
	if text == "" {
		return 0, boterrors.ErrEmptyMessage
	}

	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	params := &tgbot.SendMessageParams{
		ChatID:             chatID,
		Text:               text,
		ParseMode:          models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: tgbot.True()},
	}
	if opts.ReplyTo != 0 {
		params.ReplyParameters = &models.ReplyParameters{MessageID: opts.ReplyTo, AllowSendingWithoutReply: true}
	}
	if kb := toMarkup(opts.Keyboard); kb != nil {
		params.ReplyMarkup = kb
	}

	msg, err := b.bot.SendMessage(ctx, params)
	if err != nil {
		return 0, b.wrap("sendMessage", chatID, err)
	}
	return msg.ID, nil
}

// EditText implements deps.Messenger interface
func (b *Bot) EditText(ctx context.Context, chatID int64, messageID int, text string, kb entities.Keyboard) error {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	params := &tgbot.EditMessageTextParams{
		ChatID:             chatID,
		MessageID:          messageID,
		Text:               text,
		ParseMode:          models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: tgbot.True()},
	}
	if markup := toMarkup(kb); markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := b.bot.EditMessageText(ctx, params); err != nil {
		// editing to identical content is not a failure
		if strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		return b.wrap("editMessageText", chatID, err)
	}
	return nil
}

// DeleteMessage implements deps.Messenger interface
func (b *Bot) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	if _, err := b.bot.DeleteMessage(ctx, &tgbot.DeleteMessageParams{ChatID: chatID, MessageID: messageID}); err != nil {
		return b.wrap("deleteMessage", chatID, err)
	}
	return nil
}

// AnswerCallback implements deps.Messenger interface
func (b *Bot) AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	if _, err := b.bot.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	}); err != nil {
		return b.wrap("answerCallbackQuery", 0, err)
	}
	return nil
}

// SendFile implements deps.Messenger interface
func (b *Bot) SendFile(ctx context.Context, chatID int64, kind entities.MediaKind, path string, meta deps.FileMeta) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	upload := &models.InputFileUpload{Filename: filepath.Base(path), Data: f}

	switch kind {
	case entities.MediaImage:
		_, err = b.bot.SendPhoto(ctx, &tgbot.SendPhotoParams{
			ChatID:    chatID,
			Photo:     upload,
			Caption:   meta.Caption,
			ParseMode: models.ParseModeHTML,
		})
	case entities.MediaAudio:
		_, err = b.bot.SendAudio(ctx, &tgbot.SendAudioParams{
			ChatID:    chatID,
			Audio:     upload,
			Caption:   meta.Caption,
			ParseMode: models.ParseModeHTML,
			Title:     meta.Title,
			Performer: meta.Performer,
		})
	case entities.MediaVideo:
		_, err = b.bot.SendVideo(ctx, &tgbot.SendVideoParams{
			ChatID:            chatID,
			Video:             upload,
			Caption:           meta.Caption,
			ParseMode:         models.ParseModeHTML,
			SupportsStreaming: true,
		})
	default:
		_, err = b.bot.SendDocument(ctx, &tgbot.SendDocumentParams{
			ChatID:    chatID,
			Document:  upload,
			Caption:   meta.Caption,
			ParseMode: models.ParseModeHTML,
		})
	}
	if err != nil {
		return b.wrap("send "+string(kind), chatID, err)
	}
	return nil
}

// SendDocumentBytes implements deps.Messenger interface
func (b *Bot) SendDocumentBytes(ctx context.Context, chatID int64, filename string, data []byte, caption string) error {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	if _, err := b.bot.SendDocument(ctx, &tgbot.SendDocumentParams{
		ChatID:    chatID,
		Document:  &models.InputFileUpload{Filename: filename, Data: bytes.NewReader(data)},
		Caption:   caption,
		ParseMode: models.ParseModeHTML,
	}); err != nil {
		return b.wrap("sendDocument", chatID, err)
	}
	return nil
}

// CopyMessage implements deps.Messenger interface
func (b *Bot) CopyMessage(ctx context.Context, chatID, fromChatID int64, messageID int) error {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	if _, err := b.bot.CopyMessage(ctx, &tgbot.CopyMessageParams{
		ChatID:     chatID,
		FromChatID: fromChatID,
		MessageID:  messageID,
	}); err != nil {
		return b.wrap("copyMessage", chatID, err)
	}
	return nil
}

// DownloadFile implements deps.Messenger interface
func (b *Bot) DownloadFile(ctx context.Context, fileID, dest string) error {
	ctx, cancel := context.WithTimeout(ctx, DownloadTimeout)
	defer cancel()

	file, err := b.bot.GetFile(ctx, &tgbot.GetFileParams{FileID: fileID})
	if err != nil {
		return b.wrap("getFile", 0, err)
	}

	deadline, _ := ctx.Deadline()
	status, body, err := b.files.GetDeadline(nil, b.bot.FileDownloadLink(file), deadline)
	if err != nil {
		return fmt.Errorf("download file: %w", err)
	}
	if status != fasthttp.StatusOK {
		return fmt.Errorf("download file: status %d", status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}
	if err := os.WriteFile(dest, body, 0o600); err != nil {
		return fmt.Errorf("write download: %w", err)
	}
	return nil
}

// BotUsername implements deps.Messenger interface
func (b *Bot) BotUsername(ctx context.Context) (string, error) {
	me, err := b.self(ctx)
	if err != nil {
		return "", err
	}
	return me.Username, nil
}

// MemberStatus implements deps.MembershipOracle interface
func (b *Bot) MemberStatus(ctx context.Context, channelID string, userID int64) (entities.MemberStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	member, err := b.bot.GetChatMember(ctx, &tgbot.GetChatMemberParams{
		ChatID: chatRef(channelID),
		UserID: userID,
	})
	if err != nil {
		return "", b.wrap("getChatMember", 0, err)
	}
	return entities.MemberStatus(member.Type), nil
}

// ResolveChat implements deps.MembershipOracle interface
func (b *Bot) ResolveChat(ctx context.Context, ref string) (*entities.ChatInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	chat, err := b.bot.GetChat(ctx, &tgbot.GetChatParams{ChatID: chatRef(ref)})
	if err != nil {
		return nil, b.wrap("getChat", 0, err)
	}

	return &entities.ChatInfo{
		ID:         chat.ID,
		Title:      chat.Title,
		Username:   chat.Username,
		InviteLink: chat.InviteLink,
	}, nil
}

// SelfID implements deps.MembershipOracle interface
func (b *Bot) SelfID(ctx context.Context) (int64, error) {
	me, err := b.self(ctx)
	if err != nil {
		return 0, err
	}
	return me.ID, nil
}

// chatRef passes numeric ids as int64 and handles as strings
func chatRef(ref string) any {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id
	}
	return ref
}

func toMarkup(kb entities.Keyboard) *models.InlineKeyboardMarkup {
	if len(kb) == 0 {
		return nil
	}

	rows := make([][]models.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]models.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, models.InlineKeyboardButton{
				Text:         btn.Text,
				URL:          btn.URL,
				CallbackData: btn.Data,
			})
		}
		rows = append(rows, buttons)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func (b *Bot) wrap(method string, chatID int64, err error) error {
	b.logger.Debug().Err(err).Str("method", method).Int64("chat_id", chatID).Msg("Telegram API call failed")
	return fmt.Errorf("%w: %s: %v", boterrors.ErrTelegramAPI, method, err)
}
