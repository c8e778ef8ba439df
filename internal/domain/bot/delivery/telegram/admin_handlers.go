package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/consts"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
	boterrors "github.com/OtabekovsProject/bot-media/internal/domain/bot/errors"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/usecase/buissines"
)

// Admin console texts
const (
	msgNoChannels         = "📭 Kanallar yo'q"
	msgNoAdminsToRemove   = "📭 O'chirish uchun admin yo'q"
	msgNoChannelsToRemove = "📭 O'chirish uchun kanal yo'q"
	msgAdminRevoked       = "✅ Adminlik olib tashlandi!"
	msgChannelRemoved     = "✅ Kanal o'chirildi!"
	msgRemoveFailed       = "😔 O'chirishda xatolik."

	msgAskChannel   = "📝 <b>Kanal linkini yuboring.</b>\n\nMisol: <code>@kanalim</code> yoki <code>https://t.me/kanalim</code>\n\n⚠️ Bot kanalga ADMIN bo'lishi shart!"
	msgAskBroadcast = "🗣 <b>Xabarni yuboring.</b>\n\nMatn, Rasm, Video yoki Forward qilishingiz mumkin."
	msgAskGrantID   = "👮‍♂️ <b>Admin qilish uchun ID yuboring.</b>"
	msgPickRevoke   = "❌ <b>Adminlikdan o'chirish uchun tanlang:</b>"
	msgPickChannel  = "🗑 <b>O'chirish uchun kanalni tanlang:</b>"

	msgChannelBadFormat = "❌ Noto'g'ri format. Username (@kanal) yoki Link yuboring."
	msgChannelNotFound  = "❌ Kanal topilmadi."
	msgBotNotAdmin      = "🚫 <b>Xatolik!</b> Bot bu kanalda admin emas."
	msgChannelAddFailed = "😔 Kechirasiz, kanal qo'shishda muammo yuz berdi. Qaytadan urinib ko'ring."

	msgGrantBadID       = "❌ ID raqam bo'lishi kerak."
	msgGrantUnknownUser = "❌ Foydalanuvchi topilmadi. U avval botga /start yuborishi kerak."

	msgBroadcastSending = "⏳ <b>Xabar yuborilmoqda...</b>"
	msgUsersFileCaption = "📋 Barcha foydalanuvchilar ro'yxati"
)

// HandleAdmin handles /admin command
func (h *Handlers) HandleAdmin(ctx context.Context, event *entities.Event) error {
	if !h.admin.IsAdmin(ctx, event.UserID()) {
		return nil
	}
	return h.showMenu(ctx, event, false)
}

// HandleAdminBack clears any flow, then shows the menu again
func (h *Handlers) HandleAdminBack(ctx context.Context, event *entities.Event) error {
	if err := h.fsm.Reset(ctx, event.UserID()); err != nil {
		h.logger.Warn().Err(err).Int64("user_id", event.UserID()).Msg("Failed to reset conversation")
	}
	if !h.requireAdmin(ctx, event) {
		return nil
	}
	h.answer(ctx, event, "", false)
	return h.showMenu(ctx, event, true)
}

// HandleAdminChannels lists required channels
func (h *Handlers) HandleAdminChannels(ctx context.Context, event *entities.Event) error {
	if !h.requireAdmin(ctx, event) {
		return nil
	}

	channels, err := h.admin.ListChannels(ctx)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		h.answer(ctx, event, msgNoChannels, true)
		return nil
	}
	h.answer(ctx, event, "", false)

	var b strings.Builder
	b.WriteString("📋 <b>Ulangan kanallar:</b>\n\n")
	for _, ch := range channels {
		fmt.Fprintf(&b, "ID: <code>%s</code>\nLink: %s\n\n", html.EscapeString(ch.ChannelID), html.EscapeString(ch.URL))
	}
	return h.messenger.EditText(ctx, event.ChatID, event.MessageID, b.String(), backKeyboard())
}

// HandleAdminUsers lists users inline, or as a file when there are many
func (h *Handlers) HandleAdminUsers(ctx context.Context, event *entities.Event) error {
	if !h.requireAdmin(ctx, event) {
		return nil
	}

	users, err := h.admin.ListUsers(ctx)
	if err != nil {
		return err
	}
	h.answer(ctx, event, "", false)

	if len(users) > consts.UsersInlineLimit {
		var b strings.Builder
		for _, u := range users {
			username := u.Username
			if username == "" {
				username = "None"
			}
			fmt.Fprintf(&b, "ID: %d | Name: %s | User: @%s | Admin: %t\n", u.TelegramID, u.FullName, username, u.IsAdmin)
		}
		return h.messenger.SendDocumentBytes(ctx, event.ChatID, "users.txt", []byte(b.String()), msgUsersFileCaption)
	}

	var b strings.Builder
	b.WriteString("👥 <b>Foydalanuvchilar:</b>\n\n")
	for _, u := range users {
		if u.IsAdmin {
			b.WriteString("👮‍♂️ ")
		}
		fmt.Fprintf(&b, "ID: <code>%d</code> | <a href='tg://user?id=%d'>%s</a> (@%s)\n",
			u.TelegramID, u.TelegramID, html.EscapeString(u.FullName), html.EscapeString(u.Username))
	}

	return h.messenger.EditText(ctx, event.ChatID, event.MessageID, truncateUsersText(b.String()), backKeyboard())
}

// truncateUsersText keeps the list under the message limit without cutting a line's markup in half
func truncateUsersText(text string) string {
	if len(text) <= consts.UsersTextLimit {
		return text
	}
	cut := strings.LastIndex(text[:consts.UsersTextLimit], "\n")
	if cut < 0 {
		cut = consts.UsersTextLimit
	}
	return text[:cut] + "\n..."
}

// HandleAdminAddChannel starts the add channel flow
func (h *Handlers) HandleAdminAddChannel(ctx context.Context, event *entities.Event) error {
	return h.enterFlow(ctx, event, entities.StateAwaitingChannelLink, msgAskChannel)
}

// HandleAdminBroadcast starts the broadcast flow
func (h *Handlers) HandleAdminBroadcast(ctx context.Context, event *entities.Event) error {
	return h.enterFlow(ctx, event, entities.StateAwaitingBroadcastContent, msgAskBroadcast)
}

// HandleAdminGrant starts the grant admin flow
func (h *Handlers) HandleAdminGrant(ctx context.Context, event *entities.Event) error {
	return h.enterFlow(ctx, event, entities.StateAwaitingAdminGrantID, msgAskGrantID)
}

func (h *Handlers) enterFlow(ctx context.Context, event *entities.Event, state entities.State, prompt string) error {
	if !h.requireAdmin(ctx, event) {
		return nil
	}
	if err := h.fsm.Enter(ctx, event.UserID(), state, nil); err != nil {
		return err
	}
	h.answer(ctx, event, "", false)
	return h.messenger.EditText(ctx, event.ChatID, event.MessageID, prompt, cancelKeyboard())
}

// HandleAdminRemove renders the stored admins as revoke buttons
func (h *Handlers) HandleAdminRemove(ctx context.Context, event *entities.Event) error {
	if !h.requireAdmin(ctx, event) {
		return nil
	}

	admins, err := h.admin.ListAdmins(ctx)
	if err != nil {
		return err
	}
	if len(admins) == 0 {
		h.answer(ctx, event, msgNoAdminsToRemove, true)
		return nil
	}

	if err := h.fsm.Enter(ctx, event.UserID(), entities.StateAwaitingAdminRevokeTarget, nil); err != nil {
		return err
	}
	h.answer(ctx, event, "", false)
	return h.messenger.EditText(ctx, event.ChatID, event.MessageID, msgPickRevoke, revokeKeyboard(admins))
}

// HandleRemoveAdmin revokes the admin picked from the list
func (h *Handlers) HandleRemoveAdmin(ctx context.Context, event *entities.Event) error {
	if !h.requireAdmin(ctx, event) {
		return nil
	}

	targetID, err := buissines.ParseUserID(strings.TrimPrefix(event.CallbackData, consts.CallbackRemoveAdminPrefix))
	if err != nil {
		h.answer(ctx, event, msgRemoveFailed, true)
		return nil
	}

	err = h.admin.RevokeAdmin(ctx, event.UserID(), targetID)
	if resetErr := h.fsm.Reset(ctx, event.UserID()); resetErr != nil {
		h.logger.Warn().Err(resetErr).Int64("user_id", event.UserID()).Msg("Failed to reset conversation")
	}
	if err != nil {
		h.logger.Warn().Err(err).Int64("user_id", targetID).Msg("Failed to revoke admin")
		h.answer(ctx, event, msgRemoveFailed, true)
		return nil
	}

	h.answer(ctx, event, msgAdminRevoked, true)
	return h.showMenu(ctx, event, true)
}

// HandleAdminDeleteChannelMenu renders the required channels as delete buttons
func (h *Handlers) HandleAdminDeleteChannelMenu(ctx context.Context, event *entities.Event) error {
	if !h.requireAdmin(ctx, event) {
		return nil
	}

	channels, err := h.admin.ListChannels(ctx)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		h.answer(ctx, event, msgNoChannelsToRemove, true)
		return nil
	}

	h.answer(ctx, event, "", false)
	return h.messenger.EditText(ctx, event.ChatID, event.MessageID, msgPickChannel, deleteChannelKeyboard(channels))
}

// HandleDeleteChannel removes the channel picked from the list
func (h *Handlers) HandleDeleteChannel(ctx context.Context, event *entities.Event) error {
	if !h.requireAdmin(ctx, event) {
		return nil
	}

	channelID := strings.TrimPrefix(event.CallbackData, consts.CallbackDeleteChannelPrefix)
	if err := h.admin.RemoveChannel(ctx, event.UserID(), channelID); err != nil {
		h.logger.Warn().Err(err).Str("channel_id", channelID).Msg("Failed to remove channel")
		h.answer(ctx, event, msgRemoveFailed, true)
		return nil
	}

	h.answer(ctx, event, msgChannelRemoved, true)
	return h.showMenu(ctx, event, true)
}

// HandleChannelLink continues the add channel flow. Any outcome ends the flow.
func (h *Handlers) HandleChannelLink(ctx context.Context, event *entities.Event) error {
	defer h.resetFlow(ctx, event)

	if !h.admin.IsAdmin(ctx, event.UserID()) {
		return nil
	}

	channel, err := h.admin.AddChannel(ctx, event.UserID(), event.Text)
	if err != nil {
		h.logger.Info().Err(err).Int64("user_id", event.UserID()).Msg("Channel was not added")
		return h.replyTo(ctx, event, channelErrorText(err))
	}

	return h.replyTo(ctx, event, fmt.Sprintf("✅ <b>Kanal qo'shildi!</b>\nID: %s\nLink: %s",
		html.EscapeString(channel.ChannelID), html.EscapeString(channel.URL)))
}

func channelErrorText(err error) string {
	switch {
	case errors.Is(err, boterrors.ErrInvalidChannelRef):
		return msgChannelBadFormat
	case errors.Is(err, boterrors.ErrChannelNotFound):
		return msgChannelNotFound
	case errors.Is(err, boterrors.ErrBotNotChannelAdmin):
		return msgBotNotAdmin
	default:
		return msgChannelAddFailed
	}
}

// HandleAdminGrantID continues the grant admin flow; a malformed id keeps the flow open
func (h *Handlers) HandleAdminGrantID(ctx context.Context, event *entities.Event) error {
	if !h.admin.IsAdmin(ctx, event.UserID()) {
		h.resetFlow(ctx, event)
		return nil
	}

	targetID, err := buissines.ParseUserID(event.Text)
	if err != nil {
		return h.replyTo(ctx, event, msgGrantBadID)
	}

	defer h.resetFlow(ctx, event)

	if err := h.admin.GrantAdmin(ctx, event.UserID(), targetID); err != nil {
		if errors.Is(err, boterrors.ErrUserNotFound) {
			return h.replyTo(ctx, event, msgGrantUnknownUser)
		}
		return err
	}
	return h.replyTo(ctx, event, fmt.Sprintf("✅ Foydalanuvchi (%d) ADMIN qilindi!", targetID))
}

// HandleBroadcastContent sends the admin's next message to every user
func (h *Handlers) HandleBroadcastContent(ctx context.Context, event *entities.Event) error {
	if !h.admin.IsAdmin(ctx, event.UserID()) {
		h.resetFlow(ctx, event)
		return nil
	}

	// claim the flow first so a second message cannot start another run
	claimed, err := h.fsm.Complete(ctx, event.UserID(), entities.StateAwaitingBroadcastContent)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	status, err := h.messenger.SendText(ctx, event.ChatID, msgBroadcastSending, deps.SendOptions{ReplyTo: event.MessageID})
	if err != nil {
		return err
	}

	report, err := h.broadcaster.Run(ctx, event.UserID(), buissines.CopyContent{
		FromChatID: event.ChatID,
		MessageID:  event.MessageID,
	})
	h.metrics.RecordBroadcast(report.Delivered, report.Failed())
	if err != nil && report.Total == 0 {
		return err
	}

	text := fmt.Sprintf("✅ <b>Xabar tarqatildi!</b>\n\nJami: %d\nYuborildi: %d", report.Total, report.Delivered)
	return h.messenger.EditText(ctx, event.ChatID, status, text, nil)
}

// showMenu renders the admin menu, editing the pressed message for callbacks
func (h *Handlers) showMenu(ctx context.Context, event *entities.Event, edit bool) error {
	total, err := h.admin.Stats(ctx)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("⚙️ <b>Admin Panel</b>\n\n👥 <b>Jami foydalanuvchilar:</b> %d\n\nBoshqaruv uchun tugmani bosing:", total)
	if edit && event.MessageID != 0 {
		return h.messenger.EditText(ctx, event.ChatID, event.MessageID, text, adminMenuKeyboard())
	}
	return h.reply(ctx, event, text, adminMenuKeyboard())
}

// requireAdmin silently stops non-admins
func (h *Handlers) requireAdmin(ctx context.Context, event *entities.Event) bool {
	if h.admin.IsAdmin(ctx, event.UserID()) {
		return true
	}
	h.logger.Warn().Int64("user_id", event.UserID()).Str("callback", event.CallbackData).Msg("Admin action by non-admin")
	h.answer(ctx, event, "", false)
	return false
}

func (h *Handlers) resetFlow(ctx context.Context, event *entities.Event) {
	if err := h.fsm.Reset(ctx, event.UserID()); err != nil {
		h.logger.Warn().Err(err).Int64("user_id", event.UserID()).Msg("Failed to reset conversation")
	}
}

func (h *Handlers) replyTo(ctx context.Context, event *entities.Event, text string) error {
	_, err := h.messenger.SendText(ctx, event.ChatID, text, deps.SendOptions{ReplyTo: event.MessageID})
	return err
}
