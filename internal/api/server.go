// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package api assembles the HTTP surface: the chi router, middleware
// stack, and the search, details, and health handlers.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/mediacircle/searchd/internal/api/handlers"
	"github.com/mediacircle/searchd/internal/domain"
	"github.com/mediacircle/searchd/internal/index"
	"github.com/mediacircle/searchd/internal/metrics"
	"github.com/mediacircle/searchd/internal/search"
)

// Dependencies carries everything the router needs.
type Dependencies struct {
	Config       *domain.Config
	IndexClient  *index.Client
	Orchestrator *search.Orchestrator
	Metrics      *metrics.Metrics
}

// Server is the HTTP server for the search API.
type Server struct {
	deps *Dependencies
	srv  *http.Server
}

// NewServer creates the API server.
func NewServer(deps *Dependencies) *Server {
	return &Server{deps: deps}
}

// Handler builds the full router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID"},
		MaxAge:         300,
	}).Handler)

	searchHandler := handlers.NewSearchHandler(s.deps.Orchestrator, s.deps.Metrics)
	streamHandler := handlers.NewStreamHandler(s.deps.Orchestrator, s.deps.Metrics)
	detailsHandler := handlers.NewDetailsHandler(s.deps.IndexClient)
	healthHandler := handlers.NewHealthHandler(s.deps.IndexClient)

	r.Route("/api", func(r chi.Router) {
		r.Get("/autocomplete", searchHandler.Autocomplete)
		r.Get("/autocomplete/stream", streamHandler.Autocomplete)
		r.Get("/search", searchHandler.Search)
		r.Get("/search/stream", streamHandler.Search)
		r.Post("/details", detailsHandler.Details)
		r.Route("/health", healthHandler.Routes)
		r.Get("/version", handlers.NewVersionHandler().GetVersion)
	})

	if s.deps.Config != nil && s.deps.Config.MetricsEnabled && s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	}

	return r
}

// ListenAndServe starts the server and blocks until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.deps.Config.Host, s.deps.Config.Port)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: SSE responses stay open for the request lifetime.
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("API server listening")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("Shutting down API server")
	return s.srv.Shutdown(shutdownCtx)
}

// requestLogger logs one line per request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Debug().
			Str("requestID", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
