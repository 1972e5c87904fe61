// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mediacircle/searchd/internal/metrics"
	"github.com/mediacircle/searchd/internal/models"
	"github.com/mediacircle/searchd/internal/query"
	"github.com/mediacircle/searchd/internal/search"
)

const (
	defaultResultLimit = 10
	maxResultLimit     = 50
)

// SearchHandler serves the batch autocomplete and search endpoints.
type SearchHandler struct {
	orchestrator *search.Orchestrator
	metrics      *metrics.Metrics
}

// NewSearchHandler creates the batch search handler. metrics may be nil
// when collection is disabled.
func NewSearchHandler(orchestrator *search.Orchestrator, m *metrics.Metrics) *SearchHandler {
	return &SearchHandler{orchestrator: orchestrator, metrics: m}
}

// Autocomplete handles GET /api/autocomplete
func (h *SearchHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, models.ModeAutocomplete)
}

// Search handles GET /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, models.ModeSearch)
}

func (h *SearchHandler) handle(w http.ResponseWriter, r *http.Request, mode models.Mode) {
	req, ok := ParseSearchRequest(w, r, mode, defaultResultLimit, maxResultLimit)
	if !ok {
		return
	}

	if h.metrics != nil {
		h.metrics.RequestsInFlight.Inc()
		defer h.metrics.RequestsInFlight.Dec()
	}

	parsed := query.Parse(req.Query, req.Raw)
	parsed.Filters = append(parsed.Filters, query.ParseFilterList(req.Filters)...)

	out := h.orchestrator.Collect(r.Context(), mode, parsed, req.Sources, req.Limit)
	if out.IndexUnavailable {
		log.Error().Str("mode", string(mode)).Str("query", req.Query).Msg("Index unavailable for batch request")
		RespondError(w, http.StatusServiceUnavailable, "Search index unavailable")
		return
	}

	RespondJSON(w, http.StatusOK, out.Envelope)
}
