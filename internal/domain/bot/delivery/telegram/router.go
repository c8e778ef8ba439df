// Package telegram contains Telegram delivery layer
package telegram

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/consts"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/usecase/buissines"
	"github.com/OtabekovsProject/bot-media/internal/infrastructure/metrics"
	pkgerrors "github.com/OtabekovsProject/bot-media/pkg/errors"
)

const msgApology = "😔 Kechirasiz, hozir xizmat mavjud emas."

// urlPattern matches link-shaped text anywhere in a message
var urlPattern = regexp.MustCompile(
	`https?://[a-zA-Z0-9][a-zA-Z0-9-]*(?:\.[a-zA-Z0-9-]+)*\.[^\s]{2,}|www\.[a-zA-Z0-9][a-zA-Z0-9-]+[a-zA-Z0-9]\.[^\s]{2,}`,
)

// HandlerFunc handles one routed event
type HandlerFunc func(ctx context.Context, event *entities.Event) error

// Decision stops dispatch; Render delivers the gate's own response
type Decision struct {
	Reason string
	Render func(ctx context.Context) error
}

// Gate runs before routing; a non-nil Decision stops the event
type Gate func(ctx context.Context, event *entities.Event) *Decision

type prefixRoute struct {
	prefix  string
	handler HandlerFunc
}

// Router resolves every event to at most one handler.
// Order: active conversation state, exact command or callback, callback prefix,
// media kind, then text pattern. Unmatched events are dropped.
type Router struct {
	gates     []Gate
	fsm       *buissines.StateMachine
	messenger deps.Messenger
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	states    map[entities.State]HandlerFunc
	commands  map[string]HandlerFunc
	callbacks map[string]HandlerFunc
	prefixes  []prefixRoute
	media     map[entities.MediaKind]HandlerFunc
	onLink    HandlerFunc
	onText    HandlerFunc
}

// NewRouter creates new Telegram router with all routes registered
func NewRouter(
	handlers *Handlers,
	guard *SubscriptionGuard,
	fsm *buissines.StateMachine,
	messenger deps.Messenger,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Router {
	r := &Router{
		fsm:       fsm,
		messenger: messenger,
		metrics:   m,
		logger:    logger.With().Str("component", "router").Logger(),
		states:    make(map[entities.State]HandlerFunc),
		commands:  make(map[string]HandlerFunc),
		callbacks: make(map[string]HandlerFunc),
		media:     make(map[entities.MediaKind]HandlerFunc),
	}

	r.Use(guard.Check)
	r.RegisterRoutes(handlers)
	return r
}

// Use appends a gate
func (r *Router) Use(g Gate) {
	r.gates = append(r.gates, g)
}

// RegisterRoutes registers all handlers
func (r *Router) RegisterRoutes(h *Handlers) {
	// Conversation continuations; the revoke step is button driven
	r.states[entities.StateAwaitingChannelLink] = h.HandleChannelLink
	r.states[entities.StateAwaitingBroadcastContent] = h.HandleBroadcastContent
	r.states[entities.StateAwaitingAdminGrantID] = h.HandleAdminGrantID

	r.commands[consts.CommandStart.Text()] = h.HandleStart
	r.commands[consts.CommandHelp.Text()] = h.HandleHelp
	r.commands[consts.CommandAdmin.Text()] = h.HandleAdmin

	r.callbacks[consts.CallbackCheckSub] = h.HandleCheckSub
	r.callbacks[consts.CallbackDownloadVideo] = h.HandleDownloadVideo
	r.callbacks[consts.CallbackDownloadMusic] = h.HandleDownloadMusic
	r.callbacks[consts.CallbackAdminChannels] = h.HandleAdminChannels
	r.callbacks[consts.CallbackAdminAddChannel] = h.HandleAdminAddChannel
	r.callbacks[consts.CallbackAdminBroadcast] = h.HandleAdminBroadcast
	r.callbacks[consts.CallbackAdminUsers] = h.HandleAdminUsers
	r.callbacks[consts.CallbackAdminGrant] = h.HandleAdminGrant
	r.callbacks[consts.CallbackAdminRemove] = h.HandleAdminRemove
	r.callbacks[consts.CallbackAdminDelChannelMenu] = h.HandleAdminDeleteChannelMenu
	r.callbacks[consts.CallbackAdminBack] = h.HandleAdminBack

	r.prefixes = []prefixRoute{
		{prefix: consts.CallbackRemoveAdminPrefix, handler: h.HandleRemoveAdmin},
		{prefix: consts.CallbackDeleteChannelPrefix, handler: h.HandleDeleteChannel},
	}

	r.media[entities.MediaVideo] = h.HandleMedia
	r.media[entities.MediaAudio] = h.HandleMedia
	r.media[entities.MediaVoice] = h.HandleMedia
	r.media[entities.MediaVideoNote] = h.HandleMedia

	r.onLink = h.HandleLink
	r.onText = h.HandleSearch

	r.logger.Info().
		Int("commands", len(r.commands)).
		Int("callbacks", len(r.callbacks)+len(r.prefixes)).
		Msg("All Telegram handlers registered successfully")
}

// Dispatch runs the gates and the matching handler.
// It never panics and never returns an error: failures end in an apology.
func (r *Router) Dispatch(ctx context.Context, event *entities.Event) {
	kind := eventKind(event)
	r.metrics.RecordUpdate(kind)

	for _, gate := range r.gates {
		decision := r.runGate(ctx, gate, event)
		if decision == nil {
			continue
		}

		r.metrics.RecordGateDenial(kind)
		if decision.Render != nil {
			r.invoke(ctx, "gate:"+decision.Reason, event, func(ctx context.Context, _ *entities.Event) error {
				return decision.Render(ctx)
			})
		}
		return
	}

	route, handler := r.resolve(ctx, event)
	if handler == nil {
		return
	}
	r.invoke(ctx, route, event, handler)
}

func (r *Router) runGate(ctx context.Context, gate Gate, event *entities.Event) (decision *Decision) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Interface("panic", rec).Int64("user_id", event.UserID()).Msg("Gate panicked, letting event through")
			decision = nil
		}
	}()
	return gate(ctx, event)
}

// resolve picks the handler and a route name for logs and metrics
func (r *Router) resolve(ctx context.Context, event *entities.Event) (string, HandlerFunc) {
	if event.IsCallback() {
		if h, ok := r.callbacks[event.CallbackData]; ok {
			return "callback:" + event.CallbackData, h
		}
		for _, p := range r.prefixes {
			if strings.HasPrefix(event.CallbackData, p.prefix) {
				return "callback:" + p.prefix, p.handler
			}
		}
		return "", nil
	}

	if !event.IsMessage() {
		return "", nil
	}

	if event.Sender != nil {
		conv, err := r.fsm.Current(ctx, event.UserID())
		if err != nil {
			r.logger.Warn().Err(err).Int64("user_id", event.UserID()).Msg("Failed to load conversation state")
		} else if h, ok := r.states[conv.State]; ok {
			return "state:" + string(conv.State), h
		}
	}

	if cmd := commandOf(event.Text); cmd != "" {
		if h, ok := r.commands[cmd]; ok {
			return "command:" + cmd, h
		}
	}

	if h, ok := r.media[event.Media]; ok {
		return "media:" + string(event.Media), h
	}

	text := strings.TrimSpace(event.Text)
	switch {
	case event.Media != entities.MediaNone || text == "":
		return "", nil
	case urlPattern.MatchString(text):
		return "link", r.onLink
	case !strings.HasPrefix(text, "/"):
		return "search", r.onText
	default:
		return "", nil
	}
}

// invoke runs one handler isolated from panics
func (r *Router) invoke(ctx context.Context, route string, event *entities.Event, h HandlerFunc) {
	start := time.Now()
	reason := ""

	defer func() {
		if rec := recover(); rec != nil {
			reason = "panic"
			r.logger.Error().
				Interface("panic", rec).
				Str("route", route).
				Int64("user_id", event.UserID()).
				Msg("Handler panicked")
			r.apologize(ctx, event)
		}
		r.metrics.RecordHandler(route, reason, time.Since(start))
	}()

	if err := h(ctx, event); err != nil {
		reason = "error"
		r.logger.Error().
			Err(err).
			Str("error_type", pkgerrors.TypeOf(err).String()).
			Str("route", route).
			Int64("user_id", event.UserID()).
			Msg("Handler failed")
		r.apologize(ctx, event)
	}
}

func (r *Router) apologize(ctx context.Context, event *entities.Event) {
	if event.ChatID == 0 {
		return
	}
	if _, err := r.messenger.SendText(ctx, event.ChatID, msgApology, deps.SendOptions{}); err != nil {
		r.logger.Debug().Err(err).Int64("chat_id", event.ChatID).Msg("Failed to send apology")
	}
}

// commandOf returns "/cmd" from "/cmd@bot args", or "" for non-commands
func commandOf(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return cmd
}

func eventKind(event *entities.Event) string {
	switch {
	case event.IsCallback():
		return "callback"
	case event.Media != entities.MediaNone:
		return string(event.Media)
	case event.IsMessage():
		return "text"
	default:
		return fmt.Sprintf("unknown_%d", event.Kind)
	}
}
