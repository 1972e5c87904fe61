// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mediacircle/searchd/internal/metrics"
	"github.com/mediacircle/searchd/internal/models"
	"github.com/mediacircle/searchd/internal/query"
	"github.com/mediacircle/searchd/internal/search"
)

// SSE event type constants
const (
	streamEventResult     = "result"
	streamEventExactMatch = "exact_match"
	streamEventDone       = "done"
)

// ResultEventPayload is the per-source payload of a result event.
type ResultEventPayload struct {
	Source    string              `json:"source"`
	Results   []models.ResultItem `json:"results"`
	LatencyMS int64               `json:"latency_ms"`
}

// DoneEventPayload closes the stream; emitted exactly once, last.
type DoneEventPayload struct {
	Sources    []string `json:"sources"`
	SourceHint []string `json:"source_hint,omitempty"`
}

// StreamHandler serves the SSE variants of autocomplete and search.
type StreamHandler struct {
	orchestrator *search.Orchestrator
	metrics      *metrics.Metrics
}

// NewStreamHandler creates the SSE search handler.
func NewStreamHandler(orchestrator *search.Orchestrator, m *metrics.Metrics) *StreamHandler {
	return &StreamHandler{orchestrator: orchestrator, metrics: m}
}

// Autocomplete handles GET /api/autocomplete/stream
func (h *StreamHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, models.ModeAutocomplete)
}

// Search handles GET /api/search/stream
func (h *StreamHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, models.ModeSearch)
}

func (h *StreamHandler) handle(w http.ResponseWriter, r *http.Request, mode models.Mode) {
	req, ok := ParseSearchRequest(w, r, mode, defaultResultLimit, maxResultLimit)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		RespondError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	if h.metrics != nil {
		h.metrics.RequestsInFlight.Inc()
		defer h.metrics.RequestsInFlight.Dec()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	parsed := query.Parse(req.Query, req.Raw)
	parsed.Filters = append(parsed.Filters, query.ParseFilterList(req.Filters)...)

	stream := h.orchestrator.Run(r.Context(), mode, parsed, req.Sources, req.Limit)
	arbiter := search.NewArbiter(parsed.Text)

	// Sources outside the enabled set never report; close their ranks up
	// front so arbitration is not held open by them.
	enabled := make(map[string]struct{}, len(stream.Enabled))
	for _, tag := range stream.Enabled {
		enabled[tag] = struct{}{}
	}
	for _, tag := range models.ExactMatchPriority {
		if _, ok := enabled[tag]; !ok {
			arbiter.Observe(tag, nil)
		}
	}

	ctx := r.Context()
	clientGone := false
	matchEmitted := false

	for res := range stream.Results {
		if clientGone {
			// Keep draining so the fan-out goroutines can finish.
			continue
		}

		if err := sendEvent(w, flusher, streamEventResult, ResultEventPayload{
			Source:    res.Source,
			Results:   res.Items,
			LatencyMS: res.LatencyMS,
		}); err != nil {
			log.Debug().Err(err).Str("source", res.Source).Msg("SSE send failed; client gone")
			clientGone = true
			continue
		}

		var candidates []models.ResultItem
		if res.State == search.StateDone {
			candidates = res.Items
		}
		if winner, decided := arbiter.Observe(res.Source, candidates); decided && winner != nil {
			matchEmitted = true
			if err := sendEvent(w, flusher, streamEventExactMatch, search.ExactMatchPayload(winner)); err != nil {
				clientGone = true
			}
		}

		if ctx.Err() != nil {
			clientGone = true
		}
	}

	if clientGone {
		return
	}

	// A winner can still be pending when a higher-priority source never
	// reported (timed out before terminating); force the decision before
	// closing the stream.
	if winner := arbiter.Finish(); winner != nil && !matchEmitted {
		if err := sendEvent(w, flusher, streamEventExactMatch, search.ExactMatchPayload(winner)); err != nil {
			return
		}
	}

	if err := sendEvent(w, flusher, streamEventDone, DoneEventPayload{
		Sources:    stream.Enabled,
		SourceHint: parsed.SourceHint,
	}); err != nil {
		log.Debug().Err(err).Msg("SSE done event send failed")
	}
}

// sendEvent writes one SSE frame: "event: <type>\ndata: <json>\n\n".
func sendEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, data); err != nil {
		return err
	}

	flusher.Flush()
	return nil
}
