// Package telegram contains Telegram bot infrastructure
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/OtabekovsProject/bot-media/config"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/consts"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
)

// Constants for Telegram API
const (
	RequestTimeout  = 30 * time.Second
	UploadTimeout   = 5 * time.Minute
	DownloadTimeout = 2 * time.Minute
)

// EventHandler receives every update converted to a domain event
type EventHandler func(ctx context.Context, event *entities.Event)

// Bot wraps the Telegram bot for infrastructure layer.
// It implements deps.Messenger and deps.MembershipOracle.
type Bot struct {
	bot    *tgbot.Bot
	cfg    *config.TelegramConfig
	files  *fasthttp.Client
	logger zerolog.Logger

	mu      sync.RWMutex
	handler EventHandler

	meMu sync.Mutex
	me   *models.User
}

// NewBot creates a new Telegram bot wrapper
func NewBot(cfg *config.TelegramConfig, logger zerolog.Logger, opts ...tgbot.Option) (*Bot, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	b := &Bot{
		cfg:    cfg,
		files:  &fasthttp.Client{Name: "bot-media", MaxResponseBodySize: 50 << 20},
		logger: logger.With().Str("component", "telegram").Logger(),
	}

	options := []tgbot.Option{
		tgbot.WithDefaultHandler(b.dispatch),
	}
	if cfg.Workers > 0 {
		options = append(options, tgbot.WithWorkers(cfg.Workers))
	}
	if cfg.WebhookSecret != "" {
		options = append(options, tgbot.WithWebhookSecretToken(cfg.WebhookSecret))
	}
	options = append(options, opts...)

	bot, err := tgbot.New(cfg.BotToken, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	b.bot = bot

	b.logger.Info().Msg("Telegram bot created successfully")
	return b, nil
}

// SetHandler installs the update handler; updates arriving before it are dropped
func (b *Bot) SetHandler(h EventHandler) {
	b.mu.Lock()
	b.handler = h
	b.mu.Unlock()
}

func (b *Bot) dispatch(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	b.mu.RLock()
	h := b.handler
	b.mu.RUnlock()

	if h == nil {
		b.logger.Warn().Int64("update_id", update.ID).Msg("No update handler installed, dropping update")
		return
	}

	event, ok := ToEvent(update)
	if !ok {
		return
	}
	h(ctx, event)
}

// PreparePolling removes any configured webhook together with pending updates
func (b *Bot) PreparePolling(ctx context.Context) error {
	if _, err := b.bot.DeleteWebhook(ctx, &tgbot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	return nil
}

// SetCommands publishes the command menu shown in Telegram clients
func (b *Bot) SetCommands(ctx context.Context, commands []consts.Command) error {
	items := make([]models.BotCommand, 0, len(commands))
	for _, c := range commands {
		items = append(items, models.BotCommand{Command: c.Name, Description: c.Description})
	}

	if _, err := b.bot.SetMyCommands(ctx, &tgbot.SetMyCommandsParams{Commands: items}); err != nil {
		return fmt.Errorf("failed to set commands: %w", err)
	}
	return nil
}

// Start receives updates by long polling (blocking call)
func (b *Bot) Start(ctx context.Context) {
	b.logger.Info().Msg("Starting Telegram bot in polling mode...")
	b.bot.Start(ctx)
	b.logger.Info().Msg("Telegram bot stopped")
}

// RegisterWebhook points Telegram at WebhookURL+WebhookPath
func (b *Bot) RegisterWebhook(ctx context.Context) error {
	url := b.cfg.WebhookURL + b.cfg.WebhookPath
	if _, err := b.bot.SetWebhook(ctx, &tgbot.SetWebhookParams{
		URL:         url,
		SecretToken: b.cfg.WebhookSecret,
	}); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	b.logger.Info().Str("path", b.cfg.WebhookPath).Msg("Webhook registered")
	return nil
}

// StartWebhook processes updates pushed through WebhookHandler (blocking call)
func (b *Bot) StartWebhook(ctx context.Context) {
	b.logger.Info().Msg("Starting Telegram bot in webhook mode...")
	b.bot.StartWebhook(ctx)
	b.logger.Info().Msg("Telegram bot stopped")
}

// UnregisterWebhook removes the webhook on shutdown
func (b *Bot) UnregisterWebhook(ctx context.Context) error {
	if _, err := b.bot.DeleteWebhook(ctx, &tgbot.DeleteWebhookParams{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	return nil
}

// WebhookHandler returns the handler accepting Telegram webhook requests
func (b *Bot) WebhookHandler() http.HandlerFunc {
	return b.bot.WebhookHandler()
}

// WebhookStatus describes the webhook as Telegram sees it
type WebhookStatus struct {
	URL              string
	PendingUpdates   int
	LastErrorMessage string
}

// WebhookStatus fetches the current webhook info
func (b *Bot) WebhookStatus(ctx context.Context) (*WebhookStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	info, err := b.bot.GetWebhookInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook info: %w", err)
	}

	return &WebhookStatus{
		URL:              info.URL,
		PendingUpdates:   info.PendingUpdateCount,
		LastErrorMessage: info.LastErrorMessage,
	}, nil
}

// self returns the bot's own user, cached after the first successful call
func (b *Bot) self(ctx context.Context) (*models.User, error) {
	b.meMu.Lock()
	defer b.meMu.Unlock()

	if b.me != nil {
		return b.me, nil
	}

	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	me, err := b.bot.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get bot info: %w", err)
	}
	b.me = me
	return me, nil
}
