// Package api serves verse lookups over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ppiankov/ssuula/internal/cache"
	"github.com/ppiankov/ssuula/internal/logging"
	"github.com/ppiankov/ssuula/internal/model"
	"github.com/ppiankov/ssuula/internal/pipeline"
	"github.com/ppiankov/ssuula/internal/quran"
)

// Resolver is the part of the translation service the API needs
type Resolver interface {
	Generation() cache.Generation
	Invalidate() cache.Generation
	Translation(ctx context.Context) (*pipeline.Translation, error)
	Resolve(ctx context.Context, chapter, verse int) (model.ResolvedVerse, error)
	ResolveChapter(ctx context.Context, chapter int) ([]model.ResolvedVerse, error)
	ResolveRange(ctx context.Context, ref quran.Ref) ([]model.ResolvedVerse, error)
}

// Server is the HTTP front of a Resolver
type Server struct {
	svc       Resolver
	version   string
	startTime time.Time
}

// NewServer creates a server for svc
func NewServer(svc Resolver, version string) *Server {
	return &Server{svc: svc, version: version, startTime: time.Now()}
}

// Handler returns the routed handler wrapped in request ID and logging middleware
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.routes()
	handler = logging.LoggingMiddleware(handler)
	return logging.RequestIDMiddleware(handler)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/chapters", s.handleChapters)
	mux.HandleFunc("GET /v1/chapters/{chapter}", s.handleChapter)
	mux.HandleFunc("GET /v1/chapters/{chapter}/verses/{verse}", s.handleVerse)
	mux.HandleFunc("GET /v1/verses/{ref}", s.handleRef)
	mux.HandleFunc("GET /v1/report", s.handleReport)
	mux.HandleFunc("POST /v1/reload", s.handleReload)

	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("api listening", "addr", addr, "generation", s.svc.Generation().String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logging.Info("api shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
