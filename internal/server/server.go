// Package server provides the HTTP API for the Gurukul runtime.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/gurukul-labs/gurukul/internal/answer"
	"github.com/gurukul-labs/gurukul/internal/bundle"
	"github.com/gurukul-labs/gurukul/internal/config"
	"github.com/gurukul-labs/gurukul/internal/embedding"
	"github.com/gurukul-labs/gurukul/internal/retrieval"
)

// Server serves retrieval and answer requests over HTTP. The loaded
// bundle is held behind an atomic pointer: queries in flight keep the
// handle they started with, and Reload swaps in a new version without
// locking.
type Server struct {
	engine   *retrieval.Engine
	composer *answer.Composer
	embedder embedding.Embedder
	config   *config.Config
	logger   *zap.Logger
	bundle   atomic.Pointer[bundle.Bundle]
	server   *http.Server
}

// NewServer creates a server with the given dependencies. The initial
// bundle must already be opened and verified.
func NewServer(
	b *bundle.Bundle,
	engine *retrieval.Engine,
	composer *answer.Composer,
	embedder embedding.Embedder,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	s := &Server{
		engine:   engine,
		composer: composer,
		embedder: embedder,
		config:   cfg,
		logger:   logger,
	}
	s.bundle.Store(b)
	return s
}

// Bundle returns the currently served bundle handle.
func (s *Server) Bundle() *bundle.Bundle {
	return s.bundle.Load()
}

// Reload opens the configured bundle directory again and swaps it in.
// In-flight queries finish against the old handle; new queries see the
// new version. A bundle that fails verification is never swapped in.
func (s *Server) Reload() error {
	b, err := bundle.Open(s.config.Bundle.Path)
	if err != nil {
		return fmt.Errorf("reload bundle: %w", err)
	}
	old := s.bundle.Swap(b)
	s.logger.Info("bundle reloaded",
		zap.String("version", b.Version),
		zap.Int("chunks", b.Count()),
		zap.String("previous_version", old.Version),
	)
	return nil
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/retrieve", s.handleRetrieve)
	r.Post("/api/v1/ask", s.handleAsk)
	r.Post("/api/v1/reload", s.handleReload)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
