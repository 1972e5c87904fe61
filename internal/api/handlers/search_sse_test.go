// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediacircle/searchd/internal/models"
	"github.com/mediacircle/searchd/internal/query"
	"github.com/mediacircle/searchd/internal/search"
)

type sseEvent struct {
	Type string
	Data string
}

// resultEventJSON mirrors ResultEventPayload for decoding; models.ResultItem
// is an interface and cannot be a json.Unmarshal target.
type resultEventJSON struct {
	Source    string            `json:"source"`
	Results   []json.RawMessage `json:"results"`
	LatencyMS int64             `json:"latency_ms"`
}

func parseSSE(t *testing.T, body string) []sseEvent {
	t.Helper()

	var events []sseEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	var current sseEvent
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.Type = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.Data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if current.Type != "" {
				events = append(events, current)
				current = sseEvent{}
			}
		}
	}
	return events
}

func TestStreamEmitsResultsThenDone(t *testing.T) {
	h := NewStreamHandler(testOrchestrator(map[string]search.Runner{
		models.SourceMovie: movieRunner("tmdb_movie_438631", "Dune"),
	}), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/search/stream?q=dune", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := parseSSE(t, rec.Body.String())
	require.NotEmpty(t, events)

	// Exactly one done event, and it is last.
	doneCount := 0
	for _, e := range events {
		if e.Type == "done" {
			doneCount++
		}
	}
	assert.Equal(t, 1, doneCount)
	assert.Equal(t, "done", events[len(events)-1].Type)

	// One result event per enabled source, including empty ones.
	resultSources := map[string]bool{}
	for _, e := range events {
		if e.Type != "result" {
			continue
		}
		var payload resultEventJSON
		require.NoError(t, json.Unmarshal([]byte(e.Data), &payload))
		assert.NotNil(t, payload.Results)
		resultSources[payload.Source] = true
	}
	for _, tag := range models.AllSources {
		assert.True(t, resultSources[tag], "missing result event for %s", tag)
	}
}

func TestStreamExactMatchBeforeDone(t *testing.T) {
	slowMovie := func(ctx context.Context, parsed query.Parsed, mode models.Mode, limit int) ([]models.ResultItem, search.State, error) {
		time.Sleep(20 * time.Millisecond)
		return movieRunner("tmdb_movie_438631", "Dune")(ctx, parsed, mode, limit)
	}
	h := NewStreamHandler(testOrchestrator(map[string]search.Runner{
		models.SourceMovie: slowMovie,
		models.SourceTV: func(ctx context.Context, parsed query.Parsed, mode models.Mode, limit int) ([]models.ResultItem, search.State, error) {
			item := &models.MediaItem{Item: models.Item{MCID: "tmdb_tv_9999", MCType: models.MCTypeTV, SearchTitle: "Dune"}}
			item.SetCanonicalName("dune")
			return []models.ResultItem{item}, search.StateDone, nil
		},
	}), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/search/stream?q=dune", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	events := parseSSE(t, rec.Body.String())

	var matchIdx, doneIdx = -1, -1
	for i, e := range events {
		switch e.Type {
		case "exact_match":
			require.Equal(t, -1, matchIdx, "at most one exact_match event")
			matchIdx = i
		case "done":
			doneIdx = i
		}
	}
	require.GreaterOrEqual(t, matchIdx, 0, "expected an exact_match event")
	assert.Less(t, matchIdx, doneIdx)

	var payload struct {
		MCID   string `json:"mc_id"`
		MCType string `json:"mc_type"`
	}
	require.NoError(t, json.Unmarshal([]byte(events[matchIdx].Data), &payload))
	assert.Equal(t, "movie", payload.MCType, "priority picks movie over tv despite tv finishing first")
	assert.Equal(t, "tmdb_movie_438631", payload.MCID)
}

func TestStreamAutocompleteExcludesBrokeredSources(t *testing.T) {
	h := NewStreamHandler(testOrchestrator(nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/autocomplete/stream?q=dune", nil)
	rec := httptest.NewRecorder()
	h.Autocomplete(rec, req)

	events := parseSSE(t, rec.Body.String())
	for _, e := range events {
		if e.Type != "result" {
			continue
		}
		var payload resultEventJSON
		require.NoError(t, json.Unmarshal([]byte(e.Data), &payload))
		assert.True(t, models.IsIndexedSource(payload.Source),
			"brokered source %s must not emit in autocomplete mode", payload.Source)
	}
}

func TestStreamNarrowedSourcesStillDecideExactMatch(t *testing.T) {
	h := NewStreamHandler(testOrchestrator(map[string]search.Runner{
		models.SourceTV: func(ctx context.Context, parsed query.Parsed, mode models.Mode, limit int) ([]models.ResultItem, search.State, error) {
			item := &models.MediaItem{Item: models.Item{MCID: "tmdb_tv_9999", MCType: models.MCTypeTV, SearchTitle: "Dune"}}
			item.SetCanonicalName("dune")
			return []models.ResultItem{item}, search.StateDone, nil
		},
	}), nil)

	// Movie is excluded by the sources filter; the tv candidate must not
	// be held open waiting for it.
	req := httptest.NewRequest(http.MethodGet, "/api/search/stream?q=dune&sources=tv", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	events := parseSSE(t, rec.Body.String())
	found := false
	for _, e := range events {
		if e.Type == "exact_match" {
			found = true
		}
	}
	assert.True(t, found, "tv exact match must be emitted when movie is filtered out")
}
