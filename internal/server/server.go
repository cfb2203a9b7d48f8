package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tokenScope/internal/feed"
	"tokenScope/internal/session"
	"tokenScope/internal/stats"
)

// Config holds runtime settings for the HTTP server.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Server exposes the screener over HTTP: a WebSocket endpoint that opens one
// session per connection, plus small JSON APIs for health, stats, and the
// raw token list.
type Server struct {
	cfg       Config
	registry  *session.Registry
	poller    *feed.Poller
	collector *stats.Collector
	logger    *zap.Logger
	upgrader  websocket.Upgrader
}

// New builds a Server with its dependencies.
func New(cfg Config, registry *session.Registry, poller *feed.Poller, collector *stats.Collector, logger *zap.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:       cfg,
		registry:  registry,
		poller:    poller,
		collector: collector,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// routes builds the request mux. WebSocket sessions inherit ctx so they shut
// down with the server rather than with the upgrade request.
func (s *Server) routes(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.handleWS(ctx, w, r)
	})
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/tokens", s.handleTokens)
	return mux
}

// Run serves until the context is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.registry == nil {
		return fmt.Errorf("session registry is nil")
	}
	if s.poller == nil {
		return fmt.Errorf("feed poller is nil")
	}

	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.routes(ctx),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
