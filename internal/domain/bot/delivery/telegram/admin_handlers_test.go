package telegram

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/consts"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
)

func TestAdmin_NonAdminIsIgnored(t *testing.T) {
	h := newHarness(t)

	h.router.Dispatch(context.Background(), message(testUserID, "/admin"))
	require.Empty(t, h.messenger.sentTexts())

	h.router.Dispatch(context.Background(), callback(testUserID, consts.CallbackAdminUsers))
	require.Empty(t, h.messenger.edits)
	require.Equal(t, answered{}, h.messenger.lastAnswer())
}

func TestAdmin_MenuShowsUserCount(t *testing.T) {
	h := newHarness(t, entities.User{TelegramID: 7}, entities.User{TelegramID: 8})

	h.router.Dispatch(context.Background(), message(testAdminID, "/admin"))

	last := h.messenger.lastText()
	require.Contains(t, last.Text, "<b>Jami foydalanuvchilar:</b> 2")
	require.Len(t, last.Opts.Keyboard, 4)
}

func TestAdmin_AddChannelFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.oracle.resolveFn = func(ref string) (*entities.ChatInfo, error) {
		require.Equal(t, "@newschannel", ref)
		return &entities.ChatInfo{ID: -1001234, Username: "newschannel"}, nil
	}
	h.oracle.statusFn = func(string, int64) (entities.MemberStatus, error) {
		return entities.MemberStatusAdministrator, nil
	}

	h.router.Dispatch(ctx, callback(testAdminID, consts.CallbackAdminAddChannel))
	require.Equal(t, msgAskChannel, h.messenger.lastEdit().Text)

	h.router.Dispatch(ctx, message(testAdminID, "@newschannel"))

	require.Len(t, h.channels.channels, 1)
	require.Equal(t, "-1001234", h.channels.channels[0].ChannelID)
	require.Equal(t, "https://t.me/newschannel", h.channels.channels[0].URL)
	require.Contains(t, h.messenger.lastText().Text, "Kanal qo'shildi!")

	conv, err := h.fsm.Current(ctx, testAdminID)
	require.NoError(t, err)
	require.Equal(t, entities.StateNone, conv.State)
}

func TestAdmin_AddChannelErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		resolve  func(string) (*entities.ChatInfo, error)
		status   entities.MemberStatus
		expected string
	}{
		{
			name:     "bad format",
			input:    "just words",
			expected: msgChannelBadFormat,
		},
		{
			name:     "not found",
			input:    "@ghost",
			expected: msgChannelNotFound,
		},
		{
			name:  "bot not admin",
			input: "https://t.me/somechannel",
			resolve: func(string) (*entities.ChatInfo, error) {
				return &entities.ChatInfo{ID: -100}, nil
			},
			status:   entities.MemberStatusMember,
			expected: msgBotNotAdmin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			h.oracle.resolveFn = tt.resolve
			h.oracle.statusFn = func(string, int64) (entities.MemberStatus, error) {
				if tt.status == "" {
					return entities.MemberStatusMember, nil
				}
				return tt.status, nil
			}
			require.NoError(t, h.fsm.Enter(ctx, testAdminID, entities.StateAwaitingChannelLink, nil))

			h.router.Dispatch(ctx, message(testAdminID, tt.input))

			require.Equal(t, tt.expected, h.messenger.lastText().Text)
			require.Empty(t, h.channels.channels)
			conv, err := h.fsm.Current(ctx, testAdminID)
			require.NoError(t, err)
			require.Equal(t, entities.StateNone, conv.State)
		})
	}
}

func TestAdmin_GrantFlow(t *testing.T) {
	h := newHarness(t, entities.User{TelegramID: 555, FullName: "Ali"})
	ctx := context.Background()

	h.router.Dispatch(ctx, callback(testAdminID, consts.CallbackAdminGrant))
	require.Equal(t, msgAskGrantID, h.messenger.lastEdit().Text)

	h.router.Dispatch(ctx, message(testAdminID, "abc"))
	require.Equal(t, msgGrantBadID, h.messenger.lastText().Text)

	h.router.Dispatch(ctx, message(testAdminID, " 555 "))
	require.Equal(t, "✅ Foydalanuvchi (555) ADMIN qilindi!", h.messenger.lastText().Text)
	require.True(t, h.users.users[555].IsAdmin)

	conv, err := h.fsm.Current(ctx, testAdminID)
	require.NoError(t, err)
	require.Equal(t, entities.StateNone, conv.State)
}

func TestAdmin_GrantUnknownUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.fsm.Enter(ctx, testAdminID, entities.StateAwaitingAdminGrantID, nil))

	h.router.Dispatch(ctx, message(testAdminID, "777"))

	require.Equal(t, msgGrantUnknownUser, h.messenger.lastText().Text)
	conv, err := h.fsm.Current(ctx, testAdminID)
	require.NoError(t, err)
	require.Equal(t, entities.StateNone, conv.State)
}

func TestAdmin_RemoveAdmin(t *testing.T) {
	h := newHarness(t, entities.User{TelegramID: 555, FullName: "Ali", Username: "ali", IsAdmin: true})
	ctx := context.Background()

	h.router.Dispatch(ctx, callback(testAdminID, consts.CallbackAdminRemove))
	edit := h.messenger.lastEdit()
	require.Equal(t, msgPickRevoke, edit.Text)
	require.Equal(t, "rm_admin_555", edit.Keyboard[0][0].Data)
	require.Equal(t, "❌ Ali (@ali)", edit.Keyboard[0][0].Text)

	h.router.Dispatch(ctx, callback(testAdminID, "rm_admin_555"))

	require.Equal(t, []int64{555}, h.users.setCalls)
	require.False(t, h.users.users[555].IsAdmin)
	require.Equal(t, answered{Text: msgAdminRevoked, Alert: true}, h.messenger.lastAnswer())
	require.Contains(t, h.messenger.lastEdit().Text, "Admin Panel")

	conv, err := h.fsm.Current(ctx, testAdminID)
	require.NoError(t, err)
	require.Equal(t, entities.StateNone, conv.State)
}

func TestAdmin_RemoveAdminFailure(t *testing.T) {
	h := newHarness(t)
	h.users.setAdminFn = func(int64, bool) (bool, error) { return false, errBoom }

	h.router.Dispatch(context.Background(), callback(testAdminID, "rm_admin_555"))

	require.Len(t, h.users.setCalls, 1)
	require.Equal(t, answered{Text: msgRemoveFailed, Alert: true}, h.messenger.lastAnswer())
}

func TestAdmin_RemoveWithNoAdmins(t *testing.T) {
	h := newHarness(t)

	h.router.Dispatch(context.Background(), callback(testAdminID, consts.CallbackAdminRemove))

	require.Equal(t, answered{Text: msgNoAdminsToRemove, Alert: true}, h.messenger.lastAnswer())
	require.Empty(t, h.messenger.edits)
}

func TestAdmin_ChannelsListAndDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.router.Dispatch(ctx, callback(testAdminID, consts.CallbackAdminChannels))
	require.Equal(t, answered{Text: msgNoChannels, Alert: true}, h.messenger.lastAnswer())

	h.channels.channels = []entities.RequiredChannel{{ChannelID: "-100", URL: "https://t.me/news"}}

	h.router.Dispatch(ctx, callback(testAdminID, consts.CallbackAdminChannels))
	require.Contains(t, h.messenger.lastEdit().Text, "ID: <code>-100</code>\nLink: https://t.me/news")

	h.router.Dispatch(ctx, callback(testAdminID, consts.CallbackAdminDelChannelMenu))
	edit := h.messenger.lastEdit()
	require.Equal(t, msgPickChannel, edit.Text)
	require.Equal(t, "🗑 @news", edit.Keyboard[0][0].Text)
	require.Equal(t, "del_ch_-100", edit.Keyboard[0][0].Data)

	h.router.Dispatch(ctx, callback(testAdminID, "del_ch_-100"))
	require.Empty(t, h.channels.channels)
	require.Equal(t, answered{Text: msgChannelRemoved, Alert: true}, h.messenger.lastAnswer())

	h.router.Dispatch(ctx, callback(testAdminID, "del_ch_-100"))
	require.Equal(t, answered{Text: msgRemoveFailed, Alert: true}, h.messenger.lastAnswer())
}

func TestAdmin_UsersInline(t *testing.T) {
	h := newHarness(t, entities.User{TelegramID: 555, FullName: "Ali <3", Username: "ali", IsAdmin: true})

	h.router.Dispatch(context.Background(), callback(testAdminID, consts.CallbackAdminUsers))

	text := h.messenger.lastEdit().Text
	require.True(t, strings.HasPrefix(text, "👥 <b>Foydalanuvchilar:</b>"))
	require.Contains(t, text, "👮‍♂️ ID: <code>555</code> | <a href='tg://user?id=555'>Ali &lt;3</a> (@ali)")
}

func TestAdmin_UsersAsFileWhenMany(t *testing.T) {
	users := make([]entities.User, 0, consts.UsersInlineLimit+1)
	for i := 0; i <= consts.UsersInlineLimit; i++ {
		users = append(users, entities.User{TelegramID: int64(1000 + i), FullName: fmt.Sprintf("User %d", i)})
	}
	h := newHarness(t, users...)

	h.router.Dispatch(context.Background(), callback(testAdminID, consts.CallbackAdminUsers))

	require.Equal(t, []string{"users.txt"}, h.messenger.documents)
	require.Empty(t, h.messenger.edits)
}

func TestTruncateUsersText(t *testing.T) {
	short := "line\n"
	require.Equal(t, short, truncateUsersText(short))

	long := strings.Repeat("0123456789\n", consts.UsersTextLimit/10)
	got := truncateUsersText(long)
	require.LessOrEqual(t, len(got), consts.UsersTextLimit+4)
	require.True(t, strings.HasSuffix(got, "\n..."))
}

func TestAdmin_BroadcastFlow(t *testing.T) {
	h := newHarness(t, entities.User{TelegramID: 7}, entities.User{TelegramID: 8})
	ctx := context.Background()

	h.router.Dispatch(ctx, callback(testAdminID, consts.CallbackAdminBroadcast))
	require.Equal(t, msgAskBroadcast, h.messenger.lastEdit().Text)

	content := message(testAdminID, "")
	content.Media = entities.MediaVideo
	content.FileID = "video-1"
	h.router.Dispatch(ctx, content)

	require.ElementsMatch(t, []int64{7, 8}, h.messenger.copies)
	require.Equal(t, "✅ <b>Xabar tarqatildi!</b>\n\nJami: 2\nYuborildi: 2", h.messenger.lastEdit().Text)

	conv, err := h.fsm.Current(ctx, testAdminID)
	require.NoError(t, err)
	require.Equal(t, entities.StateNone, conv.State)

	// the flow is over, a second message is routed normally
	h.router.Dispatch(ctx, message(testAdminID, "/help"))
	require.Len(t, h.messenger.copies, 2)
}

func TestAdmin_BackResetsFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.fsm.Enter(ctx, testAdminID, entities.StateAwaitingBroadcastContent, nil))

	h.router.Dispatch(ctx, callback(testAdminID, consts.CallbackAdminBack))

	conv, err := h.fsm.Current(ctx, testAdminID)
	require.NoError(t, err)
	require.Equal(t, entities.StateNone, conv.State)
	require.Contains(t, h.messenger.lastEdit().Text, "Admin Panel")
}

func TestAdmin_DemotedAdminLeavesFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.fsm.Enter(ctx, testUserID, entities.StateAwaitingChannelLink, nil))

	h.router.Dispatch(ctx, message(testUserID, "@newschannel"))

	require.Empty(t, h.channels.channels)
	conv, err := h.fsm.Current(ctx, testUserID)
	require.NoError(t, err)
	require.Equal(t, entities.StateNone, conv.State)
}
