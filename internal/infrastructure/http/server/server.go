// Package server contains the fasthttp server for metrics, health, webhook and status
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net"
	"net/http"
	"time"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/OtabekovsProject/bot-media/internal/infrastructure/telegram"
)

const healthTimeout = 3 * time.Second

// HealthCheck reports whether a dependency is usable
type HealthCheck func(ctx context.Context) error

// StatusSource provides what the status page shows
type StatusSource interface {
	SelfID(ctx context.Context) (int64, error)
	WebhookStatus(ctx context.Context) (*telegram.WebhookStatus, error)
}

// Server represents fasthttp server
type Server struct {
	server *fasthttp.Server
	Router *router.Router
	addr   string
	logger zerolog.Logger
}

// NewServer creates a new fasthttp server
func NewServer(port, name string, logger zerolog.Logger) *Server {
	r := router.New()

	srv := &fasthttp.Server{
		Handler:      r.Handler,
		Name:         name,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		server: srv,
		Router: r,
		addr:   fmt.Sprintf(":%s", port),
		logger: logger.With().Str("component", "http").Logger(),
	}
}

// Handler returns the root request handler
func (s *Server) Handler() fasthttp.RequestHandler {
	return s.server.Handler
}

// RegisterMetrics registers Prometheus metrics endpoint
func (s *Server) RegisterMetrics() {
	s.Router.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))
}

// RegisterHealth registers /health running every check
func (s *Server) RegisterHealth(checks map[string]HealthCheck) {
	s.Router.GET("/health", func(ctx *fasthttp.RequestCtx) {
		checkCtx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		defer cancel()

		status := fasthttp.StatusOK
		result := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(checkCtx); err != nil {
				status = fasthttp.StatusServiceUnavailable
				result["status"] = "degraded"
				result[name] = err.Error()
				continue
			}
			result[name] = "ok"
		}

		body, _ := json.Marshal(result)
		ctx.SetStatusCode(status)
		ctx.SetContentType("application/json")
		ctx.SetBody(body)
	})
}

// RegisterWebhook mounts the Telegram webhook receiver
func (s *Server) RegisterWebhook(path string, h http.HandlerFunc) {
	s.Router.POST(path, fasthttpadaptor.NewFastHTTPHandlerFunc(h))
}

// RegisterStatus mounts the bot status page at /
func (s *Server) RegisterStatus(src StatusSource) {
	s.Router.GET("/", func(ctx *fasthttp.RequestCtx) {
		reqCtx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		defer cancel()

		ctx.SetContentType("text/html; charset=utf-8")

		info, err := src.WebhookStatus(reqCtx)
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("Bot running, but failed to get webhook info: " + html.EscapeString(err.Error()))
			return
		}

		id, err := src.SelfID(reqCtx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to get bot id for status page")
		}

		fmt.Fprintf(ctx,
			"🤖 <b>Bot is running!</b><br>Unique ID: %d<br>Webhook URL: %s<br>Pending updates: %d<br>Last error: %s",
			id,
			html.EscapeString(info.URL),
			info.PendingUpdates,
			html.EscapeString(info.LastErrorMessage),
		)
	})
}

// Start binds the listen address and serves in a separate goroutine.
// A bind failure is returned to the caller.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.logger.Info().
		Str("addr", ln.Addr().String()).
		Msg("Starting HTTP server")

	go func() {
		if err := s.server.Serve(ln); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server")

	if err := s.server.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped gracefully")
	return nil
}
