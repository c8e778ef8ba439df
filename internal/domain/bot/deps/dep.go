// Package deps contains interface definitions for the bot domain dependencies
package deps

import (
	"context"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/dto"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
)

// SendOptions tweaks an outgoing text message
type SendOptions struct {
	// ReplyTo is the message id to reply to, 0 for none
	ReplyTo  int
	Keyboard entities.Keyboard
}

// FileMeta describes a file being uploaded to a chat
type FileMeta struct {
	Caption   string
	Title     string
	Performer string
}

// Messenger defines interface for talking to users through the messaging platform.
// Implemented by the telegram infrastructure; kept narrow so handlers and usecases
// can be tested with hand-written mocks.
type Messenger interface {
	// SendText sends an HTML text message and returns its id
	SendText(ctx context.Context, chatID int64, text string, opts SendOptions) (messageID int, err error)

	// EditText replaces the text and keyboard of a sent message
	EditText(ctx context.Context, chatID int64, messageID int, text string, kb entities.Keyboard) error

	// DeleteMessage deletes a message from chat
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error

	// AnswerCallback acknowledges a button press, optionally with an alert
	AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error

	// SendFile uploads a local file as photo, audio, video or document depending on kind
	SendFile(ctx context.Context, chatID int64, kind entities.MediaKind, path string, meta FileMeta) error

	// SendDocumentBytes uploads in-memory content as a document
	SendDocumentBytes(ctx context.Context, chatID int64, filename string, data []byte, caption string) error

	// CopyMessage copies a message into another chat without the forward header
	CopyMessage(ctx context.Context, chatID, fromChatID int64, messageID int) error

	// DownloadFile stores a platform file at dest
	DownloadFile(ctx context.Context, fileID, dest string) error

	// BotUsername returns the bot's own username, without "@"
	BotUsername(ctx context.Context) (string, error)
}

// MembershipOracle answers channel membership questions
type MembershipOracle interface {
	// MemberStatus returns the user's status in the channel
	MemberStatus(ctx context.Context, channelID string, userID int64) (entities.MemberStatus, error)

	// ResolveChat resolves "@handle" or a numeric chat id to chat info
	ResolveChat(ctx context.Context, ref string) (*entities.ChatInfo, error)

	// SelfID returns the bot's own user id
	SelfID(ctx context.Context) (int64, error)
}

// UserRepository defines interface for user data access
type UserRepository interface {
	// UpsertUser inserts the user or refreshes name and username of an existing one.
	// created is true only for the insert.
	UpsertUser(ctx context.Context, user *entities.User) (created bool, err error)

	// CountUsers returns the number of known users
	CountUsers(ctx context.Context) (int64, error)

	// ListUsers returns all users
	ListUsers(ctx context.Context) ([]entities.User, error)

	// ListAdmins returns users with the admin flag set
	ListAdmins(ctx context.Context) ([]entities.User, error)

	// IsAdmin reports the stored admin flag
	IsAdmin(ctx context.Context, telegramID int64) (bool, error)

	// SetAdmin sets the admin flag; found is false when no such user exists
	SetAdmin(ctx context.Context, telegramID int64, admin bool) (found bool, err error)
}

// ChannelRepository defines interface for required channel data access
type ChannelRepository interface {
	// AddChannel inserts the channel, ignoring an existing one with the same id
	AddChannel(ctx context.Context, channel *entities.RequiredChannel) error

	// ListChannels returns all required channels
	ListChannels(ctx context.Context) ([]entities.RequiredChannel, error)

	// RemoveChannel deletes the channel by its platform id
	RemoveChannel(ctx context.Context, channelID string) error
}

// StateStore keeps one Conversation per user
type StateStore interface {
	// Get returns the conversation or a zero one with StateNone
	Get(ctx context.Context, userID int64) (entities.Conversation, error)

	// Set replaces the conversation
	Set(ctx context.Context, userID int64, conv entities.Conversation) error

	// Clear drops the conversation
	Clear(ctx context.Context, userID int64) error

	// CompareAndSwap moves the state from expected to next atomically.
	// Swapping to StateNone clears the conversation data.
	CompareAndSwap(ctx context.Context, userID int64, expected, next entities.State) (bool, error)
}

// MediaRunner runs external download and recognition jobs.
// Every file it produces is registered on the job so job.Cleanup removes it.
type MediaRunner interface {
	// Download fetches job.Source (a URL)
	Download(ctx context.Context, job *entities.PendingJob) (*entities.MediaResult, error)

	// SearchAndFetch searches job.Source (free text) and fetches the best match as MP3
	SearchAndFetch(ctx context.Context, job *entities.PendingJob) (*entities.MediaResult, error)

	// Recognize identifies a song in the file; nil track means no match
	Recognize(ctx context.Context, path string) (*entities.Track, error)
}

// EventPublisher defines interface for publishing audit events
type EventPublisher interface {
	// Publish sends the event; implementations must not block handlers for long
	Publish(ctx context.Context, event *dto.AuditEvent) error

	// Close closes the publisher
	Close() error
}
