package buissines

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/OtabekovsProject/bot-media/config"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/dto"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
	boterrors "github.com/OtabekovsProject/bot-media/internal/domain/bot/errors"
)

// ResolutionOutcome is the result kind of a channel reference lookup
type ResolutionOutcome int

const (
	OutcomeFound ResolutionOutcome = iota + 1
	OutcomeNotFound
	OutcomeInvalid
)

// Resolution is the outcome of ResolveChannelRef
type Resolution struct {
	Outcome ResolutionOutcome
	Chat    *entities.ChatInfo
	// Err is the lookup error for OutcomeNotFound
	Err error
}

var (
	channelHandleRe     = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	channelLinkPrefixes = []string{"https://t.me/", "http://t.me/", "t.me/", "@"}
)

// AdminService implements the admin console operations
type AdminService struct {
	users     deps.UserRepository
	channels  deps.ChannelRepository
	oracle    deps.MembershipOracle
	publisher deps.EventPublisher
	cfg       *config.TelegramConfig
	logger    zerolog.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(
	users deps.UserRepository,
	channels deps.ChannelRepository,
	oracle deps.MembershipOracle,
	publisher deps.EventPublisher,
	cfg *config.TelegramConfig,
	logger zerolog.Logger,
) *AdminService {
	return &AdminService{
		users:     users,
		channels:  channels,
		oracle:    oracle,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger.With().Str("component", "admin").Logger(),
	}
}

// IsAdmin reports whether the user is a configured or a stored admin.
// A storage failure is treated as "not admin".
func (s *AdminService) IsAdmin(ctx context.Context, userID int64) bool {
	if s.cfg.IsAdminID(userID) {
		return true
	}

	ok, err := s.users.IsAdmin(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to check admin flag")
		return false
	}
	return ok
}

// Stats returns the total number of users
func (s *AdminService) Stats(ctx context.Context) (int64, error) {
	return s.users.CountUsers(ctx)
}

// ListChannels returns the required channels
func (s *AdminService) ListChannels(ctx context.Context) ([]entities.RequiredChannel, error) {
	return s.channels.ListChannels(ctx)
}

// ListUsers returns every known user
func (s *AdminService) ListUsers(ctx context.Context) ([]entities.User, error) {
	return s.users.ListUsers(ctx)
}

// ListAdmins returns users holding the stored admin flag
func (s *AdminService) ListAdmins(ctx context.Context) ([]entities.User, error) {
	return s.users.ListAdmins(ctx)
}

// ResolveChannelRef turns "@handle", "https://t.me/handle" or a numeric chat id into a chat
func (s *AdminService) ResolveChannelRef(ctx context.Context, input string) Resolution {
	ref, ok := parseChannelRef(input)
	if !ok {
		return Resolution{Outcome: OutcomeInvalid}
	}

	chat, err := s.oracle.ResolveChat(ctx, ref)
	if err != nil {
		return Resolution{Outcome: OutcomeNotFound, Err: err}
	}
	return Resolution{Outcome: OutcomeFound, Chat: chat}
}

// parseChannelRef normalizes user input to a ref the platform understands
func parseChannelRef(input string) (string, bool) {
	text := strings.TrimSpace(input)
	if text == "" {
		return "", false
	}

	for _, prefix := range channelLinkPrefixes {
		if strings.HasPrefix(text, prefix) {
			handle := strings.TrimSuffix(strings.TrimPrefix(text, prefix), "/")
			if !channelHandleRe.MatchString(handle) {
				return "", false
			}
			return "@" + handle, true
		}
	}

	if _, err := strconv.ParseInt(text, 10, 64); err == nil {
		return text, true
	}
	return "", false
}

// AddChannel resolves the reference, verifies the bot administers the channel and stores it
func (s *AdminService) AddChannel(ctx context.Context, actorID int64, input string) (*entities.RequiredChannel, error) {
	res := s.ResolveChannelRef(ctx, input)
	switch res.Outcome {
	case OutcomeInvalid:
		return nil, boterrors.ErrInvalidChannelRef
	case OutcomeNotFound:
		return nil, fmt.Errorf("%w: %v", boterrors.ErrChannelNotFound, res.Err)
	}

	channelID := strconv.FormatInt(res.Chat.ID, 10)

	selfID, err := s.oracle.SelfID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get bot identity: %w", err)
	}
	status, err := s.oracle.MemberStatus(ctx, channelID, selfID)
	if err != nil {
		return nil, fmt.Errorf("check bot membership in %s: %w", channelID, err)
	}
	if !status.IsPrivileged() {
		return nil, boterrors.ErrBotNotChannelAdmin
	}

	channel := &entities.RequiredChannel{
		ChannelID: channelID,
		URL:       res.Chat.CanonicalURL(strings.TrimSpace(input)),
	}
	if err := s.channels.AddChannel(ctx, channel); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("actor_id", actorID).Str("channel_id", channelID).Msg("Required channel added")

	ev := dto.NewAuditEvent(dto.EventChannelAdded)
	ev.ActorID = actorID
	ev.ChannelID = channel.ChannelID
	ev.ChannelURL = channel.URL
	s.publish(ctx, ev)

	return channel, nil
}

// RemoveChannel deletes a required channel
func (s *AdminService) RemoveChannel(ctx context.Context, actorID int64, channelID string) error {
	if err := s.channels.RemoveChannel(ctx, channelID); err != nil {
		return err
	}

	s.logger.Info().Int64("actor_id", actorID).Str("channel_id", channelID).Msg("Required channel removed")

	ev := dto.NewAuditEvent(dto.EventChannelRemoved)
	ev.ActorID = actorID
	ev.ChannelID = channelID
	s.publish(ctx, ev)
	return nil
}

// ParseUserID parses an admin-typed user id
func ParseUserID(text string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, boterrors.ErrInvalidUserID
	}
	return id, nil
}

// GrantAdmin sets the admin flag of a known user
func (s *AdminService) GrantAdmin(ctx context.Context, actorID, targetID int64) error {
	return s.setAdmin(ctx, actorID, targetID, true)
}

// RevokeAdmin clears the admin flag of a known user
func (s *AdminService) RevokeAdmin(ctx context.Context, actorID, targetID int64) error {
	return s.setAdmin(ctx, actorID, targetID, false)
}

func (s *AdminService) setAdmin(ctx context.Context, actorID, targetID int64, admin bool) error {
	found, err := s.users.SetAdmin(ctx, targetID, admin)
	if err != nil {
		return err
	}
	if !found {
		return boterrors.ErrUserNotFound
	}

	eventType := dto.EventAdminRevoked
	if admin {
		eventType = dto.EventAdminGranted
	}

	s.logger.Info().
		Int64("actor_id", actorID).
		Int64("user_id", targetID).
		Bool("admin", admin).
		Msg("Admin flag updated")

	ev := dto.NewAuditEvent(eventType)
	ev.ActorID = actorID
	ev.UserID = targetID
	s.publish(ctx, ev)
	return nil
}

// publish sends an audit event; failures are logged only
func (s *AdminService) publish(ctx context.Context, ev *dto.AuditEvent) {
	publishAudit(ctx, s.publisher, ev, s.logger)
}

func publishAudit(ctx context.Context, publisher deps.EventPublisher, ev *dto.AuditEvent, logger zerolog.Logger) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, ev); err != nil {
		logger.Warn().Err(err).Str("event_type", ev.Type).Msg("Failed to publish audit event")
	}
}
