// ABOUTME: HTTP server wiring the document QA engine behind a JSON API
// ABOUTME: Owns the mux, middleware chain, and graceful shutdown
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"docqa/internal/cache"
	"docqa/internal/config"
	"docqa/internal/ingest"
	"docqa/internal/orchestrator"
)

// Server exposes the engine over HTTP
type Server struct {
	cfg      *config.Config
	pipeline *ingest.Pipeline
	orch     *orchestrator.Orchestrator
	cache    *cache.Manager
	validate *validator.Validate
	httpSrv  *http.Server
}

// New builds a server around the wired engine components
func New(cfg *config.Config, pipeline *ingest.Pipeline, orch *orchestrator.Orchestrator, cacheMgr *cache.Manager) *Server {
	s := &Server{
		cfg:      cfg,
		pipeline: pipeline,
		orch:     orch,
		cache:    cacheMgr,
		validate: validator.New(),
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.withMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the fully wrapped handler, used by tests
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Start blocks serving requests until Shutdown is called
func (s *Server) Start() error {
	log.Printf("[Server] Listening on %s", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("[Server] Shutting down")
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
