// Package server is the HTTP surface: webhook receipt, direct ask, message
// send/broadcast, and health reporting. Handlers are thin pass-throughs to
// the dispatcher, generator, and messenger.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"orunmila/internal/agent"
	"orunmila/internal/config"
	"orunmila/internal/dispatch"
	"orunmila/internal/domain"
	"orunmila/internal/metrics"
)

const maxBodySize = 1 << 20 // 1MB

// Messenger is the outbound side of the platform client used by the direct
// send and broadcast routes. Satisfied by *telex.Client.
type Messenger interface {
	Send(ctx context.Context, reply domain.Reply) (*domain.DeliveryResult, error)
	Broadcast(ctx context.Context, chatIDs []string, text string) domain.BroadcastResult
}

// Server wires routes to components and owns the http.Server lifecycle.
type Server struct {
	cfg        *config.Config
	dispatcher *dispatch.Dispatcher
	generator  *agent.Generator
	messenger  Messenger
	logger     *slog.Logger
	version    string
	server     *http.Server
}

type Options struct {
	Config     *config.Config
	Dispatcher *dispatch.Dispatcher
	Generator  *agent.Generator
	Messenger  Messenger
	Logger     *slog.Logger
	Version    string
}

func New(opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Server{
		cfg:        opts.Config,
		dispatcher: opts.Dispatcher,
		generator:  opts.Generator,
		messenger:  opts.Messenger,
		logger:     opts.Logger,
		version:    opts.Version,
	}
}

// Routes builds the handler tree, wrapped with request-ID and logging
// middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /webhook/telex", s.handleWebhook)
	mux.HandleFunc("POST /agent/ask", s.handleAsk)
	mux.HandleFunc("GET /agent/greeting", s.handleGreeting)
	mux.HandleFunc("GET /agent/help", s.handleHelp)
	mux.HandleFunc("POST /messages/send", s.handleSend)
	mux.HandleFunc("POST /messages/broadcast", s.handleBroadcast)
	mux.Handle("GET /metrics", metrics.Collector.Handler())

	return s.withRequestID(s.withLogging(mux))
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second, // direct-ask waits on the completion service
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("http server starting", "addr", addr, "version", s.version)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("http server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}
