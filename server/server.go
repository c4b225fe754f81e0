// Package server exposes loaded documents over HTTP and WebSocket.
//
// Clients load a document, then fetch each page's PNG raster and its
// projected text layer separately and place the fragments over the image
// without further geometry. Resize messages on the WebSocket rerender the
// visible pages at the new container width.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/tsawler/pdflayer/config"
	"github.com/tsawler/pdflayer/document"
)

// Server manages the HTTP server and routes
type Server struct {
	cfg         *config.Config
	loader      *document.Loader
	logger      arbor.ILogger
	store       *Store
	router      *http.ServeMux
	server      *http.Server
	resizeDelay time.Duration
	upgrader    *websocket.Upgrader
}

// New creates a new HTTP server
func New(cfg *config.Config, loader *document.Loader, logger arbor.ILogger) *Server {
	if logger == nil {
		logger = arbor.NewLogger()
	}
	s := &Server{
		cfg:         cfg,
		loader:      loader,
		logger:      logger,
		store:       NewStore(),
		resizeDelay: config.Duration(cfg.Server.ResizeDelay, document.DefaultResizeDelay),
		upgrader:    newUpgrader(cfg.Server.AllowedOrigins),
	}

	s.router = s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.withMiddleware(s.router)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info().
		Str("address", s.server.Addr).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and closes every open document.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	s.store.CloseAll()
	s.logger.Info().Msg("HTTP server stopped")
	return err
}
