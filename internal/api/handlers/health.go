// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/mediacircle/searchd/internal/index"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	client *index.Client
}

// NewHealthHandler creates a new health handler. client may be nil in
// tests; readiness then reports ok without probing.
func NewHealthHandler(client *index.Client) *HealthHandler {
	return &HealthHandler{client: client}
}

// Routes registers the health endpoints.
func (h *HealthHandler) Routes(r chi.Router) {
	r.Get("/", h.HandleHealth)
	r.Get("/liveness", h.HandleLiveness)
	r.Get("/readiness", h.HandleReady)
}

// HandleLiveness handles liveness checks for orchestration probes.
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HandleHealth handles liveness checks.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReady handles readiness checks: the service is ready once the
// index answers a ping.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if h.client != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.client.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Readiness probe failed: index unreachable")
			RespondError(w, http.StatusServiceUnavailable, "Search index unavailable")
			return
		}
	}

	RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
