package telegram

import (
	"strings"
	"unicode/utf8"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/consts"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
)

func adminMenuKeyboard() entities.Keyboard {
	return entities.Keyboard{
		entities.Row(
			entities.Button{Text: "📢 Kanallar", Data: consts.CallbackAdminChannels},
			entities.Button{Text: "➕ Kanal qo'shish", Data: consts.CallbackAdminAddChannel},
		),
		entities.Row(
			entities.Button{Text: "🗣 Reklama (Broadcast)", Data: consts.CallbackAdminBroadcast},
			entities.Button{Text: "👥 Users", Data: consts.CallbackAdminUsers},
		),
		entities.Row(
			entities.Button{Text: "👮‍♂️ Admin qilish", Data: consts.CallbackAdminGrant},
			entities.Button{Text: "❌ Admin o'chirish", Data: consts.CallbackAdminRemove},
		),
		entities.Row(
			entities.Button{Text: "🗑 Kanal o'chirish", Data: consts.CallbackAdminDelChannelMenu},
		),
	}
}

func backKeyboard() entities.Keyboard {
	return entities.Keyboard{entities.Row(entities.Button{Text: "🔙 Ortga", Data: consts.CallbackAdminBack})}
}

func cancelKeyboard() entities.Keyboard {
	return entities.Keyboard{entities.Row(entities.Button{Text: "🔙 Bekor qilish", Data: consts.CallbackAdminBack})}
}

func formatKeyboard() entities.Keyboard {
	return entities.Keyboard{entities.Row(
		entities.Button{Text: "📹 Video", Data: consts.CallbackDownloadVideo},
		entities.Button{Text: "🎵 Musiqa (To'liq)", Data: consts.CallbackDownloadMusic},
	)}
}

func subscribeKeyboard(channels []entities.RequiredChannel) entities.Keyboard {
	kb := make(entities.Keyboard, 0, len(channels)+1)
	for _, ch := range channels {
		kb = append(kb, entities.Row(entities.Button{Text: "📢 Kanalga obuna bo‘lish", URL: ch.URL}))
	}
	return append(kb, entities.Row(entities.Button{Text: "✅ Tekshirish", Data: consts.CallbackCheckSub}))
}

func revokeKeyboard(admins []entities.User) entities.Keyboard {
	kb := make(entities.Keyboard, 0, len(admins)+1)
	for _, u := range admins {
		kb = append(kb, entities.Row(entities.Button{
			Text: "❌ " + truncateRunes(u.DisplayName(), consts.ButtonLabelLimit),
			Data: consts.CallbackRemoveAdminPrefix + formatID(u.TelegramID),
		}))
	}
	return append(kb, backKeyboard()...)
}

func deleteChannelKeyboard(channels []entities.RequiredChannel) entities.Keyboard {
	kb := make(entities.Keyboard, 0, len(channels)+1)
	for _, ch := range channels {
		kb = append(kb, entities.Row(entities.Button{
			Text: "🗑 " + channelLabel(ch.URL),
			Data: consts.CallbackDeleteChannelPrefix + ch.ChannelID,
		}))
	}
	return append(kb, backKeyboard()...)
}

// channelLabel shortens "https://t.me/name" to "@name"
func channelLabel(url string) string {
	label := strings.Replace(url, "https://t.me/", "@", 1)
	label = strings.Replace(label, "https://", "", 1)
	return truncateRunes(label, consts.ChannelLabelLimit)
}

// truncateRunes cuts s to at most n runes
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
