// Package consts contains constants for the bot domain
package consts

// Command represents a bot command
type Command struct {
	Name        string
	Description string
}

// Text returns the command as typed by users
func (c Command) Text() string {
	return "/" + c.Name
}

// Bot commands
var (
	CommandStart = Command{Name: "start", Description: "Botni ishga tushirish"}
	CommandHelp  = Command{Name: "help", Description: "Yordam"}
	CommandAdmin = Command{Name: "admin", Description: "Admin panel"}
)

// AllCommands contains all available bot commands for menu registration
var AllCommands = []Command{
	CommandStart,
	CommandHelp,
}

// Callback data of inline buttons
const (
	CallbackCheckSub = "check_sub"

	CallbackDownloadVideo = "dl_video"
	CallbackDownloadMusic = "dl_music"

	CallbackAdminChannels       = "admin_channels"
	CallbackAdminAddChannel     = "admin_add_channel"
	CallbackAdminBroadcast      = "admin_broadcast"
	CallbackAdminUsers          = "admin_users"
	CallbackAdminGrant          = "admin_grant"
	CallbackAdminRemove         = "admin_remove"
	CallbackAdminDelChannelMenu = "admin_del_channel_menu"
	CallbackAdminBack           = "admin_back"

	// Prefixed callbacks carry an id after the prefix
	CallbackRemoveAdminPrefix   = "rm_admin_"
	CallbackDeleteChannelPrefix = "del_ch_"
)

// Limits
const (
	// UsersInlineLimit is the user count above which the list is sent as a file
	UsersInlineLimit = 50
	// UsersTextLimit is where the inline users list gets truncated
	UsersTextLimit = 4000
	// ButtonLabelLimit is the max label length taken from user names
	ButtonLabelLimit = 25
	// ChannelLabelLimit is the max label length taken from channel URLs
	ChannelLabelLimit = 20
)
