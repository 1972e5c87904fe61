// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediacircle/searchd/internal/index"
	"github.com/mediacircle/searchd/internal/models"
	"github.com/mediacircle/searchd/internal/query"
	"github.com/mediacircle/searchd/internal/search"
	"github.com/mediacircle/searchd/pkg/stringutils"
)

func testOrchestrator(perSource map[string]search.Runner) *search.Orchestrator {
	runners := make(map[string]search.Runner, len(models.AllSources))
	empty := func(ctx context.Context, parsed query.Parsed, mode models.Mode, limit int) ([]models.ResultItem, search.State, error) {
		return []models.ResultItem{}, search.StateDone, nil
	}
	for _, tag := range models.AllSources {
		runners[tag] = empty
	}
	for tag, r := range perSource {
		runners[tag] = r
	}
	timeouts := search.Timeouts{
		AutocompleteIndex: 100 * time.Millisecond,
		SearchIndex:       200 * time.Millisecond,
		Brokered:          200 * time.Millisecond,
		Slack:             100 * time.Millisecond,
	}
	return search.New(timeouts, runners)
}

func movieRunner(mcID, title string) search.Runner {
	return func(ctx context.Context, parsed query.Parsed, mode models.Mode, limit int) ([]models.ResultItem, search.State, error) {
		item := &models.MediaItem{
			Item: models.Item{MCID: mcID, MCType: models.MCTypeMovie, Source: "tmdb", SearchTitle: title},
		}
		item.SetCanonicalName(stringutils.Canonicalize(title))
		return []models.ResultItem{item}, search.StateDone, nil
	}
}

func TestSearchEnvelopeComplete(t *testing.T) {
	h := NewSearchHandler(testOrchestrator(map[string]search.Runner{
		models.SourceMovie: movieRunner("tmdb_movie_438631", "Dune"),
	}), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=dune", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	for _, key := range append([]string{"exact_match"}, models.AllSources...) {
		assert.Contains(t, envelope, key)
	}
	// Absent sources are empty arrays, never null.
	assert.JSONEq(t, "[]", string(envelope["tv"]))
	assert.JSONEq(t, "[]", string(envelope["news"]))
}

func TestSearchExactMatchInEnvelope(t *testing.T) {
	h := NewSearchHandler(testOrchestrator(map[string]search.Runner{
		models.SourceMovie: movieRunner("tmdb_movie_438631", "Dune"),
	}), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=dune", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	var envelope struct {
		ExactMatch *struct {
			MCID   string `json:"mc_id"`
			MCType string `json:"mc_type"`
		} `json:"exact_match"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.ExactMatch)
	assert.Equal(t, "tmdb_movie_438631", envelope.ExactMatch.MCID)
	assert.Equal(t, "movie", envelope.ExactMatch.MCType)
}

func TestAutocompleteShortQueryEmptyEnvelope(t *testing.T) {
	h := NewSearchHandler(testOrchestrator(nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/autocomplete?q=d", nil)
	rec := httptest.NewRecorder()
	h.Autocomplete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Movie []json.RawMessage `json:"movie"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Movie)
}

func TestSearchInvalidLimitRejected(t *testing.T) {
	h := NewSearchHandler(testOrchestrator(nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=dune&limit=abc", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchUnknownSourceRejected(t *testing.T) {
	h := NewSearchHandler(testOrchestrator(nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=dune&sources=movie,webring", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchIndexUnavailable(t *testing.T) {
	h := NewSearchHandler(testOrchestrator(map[string]search.Runner{
		models.SourceMovie: func(ctx context.Context, parsed query.Parsed, mode models.Mode, limit int) ([]models.ResultItem, search.State, error) {
			return []models.ResultItem{}, search.StateFailed, errors.Wrap(index.ErrUnavailable, "dial tcp: connection refused")
		},
	}), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=dune", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSourceHintEchoedAndNarrows(t *testing.T) {
	personHit := func(ctx context.Context, parsed query.Parsed, mode models.Mode, limit int) ([]models.ResultItem, search.State, error) {
		item := &models.PersonItem{Item: models.Item{MCID: "tmdb_person_31", MCType: models.MCTypePerson, SearchTitle: "Tom Hanks"}}
		return []models.ResultItem{item}, search.StateDone, nil
	}
	h := NewSearchHandler(testOrchestrator(map[string]search.Runner{
		models.SourcePerson: personHit,
		models.SourceMovie:  movieRunner("tmdb_movie_1", "Tom"),
	}), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/autocomplete?q="+strings.ReplaceAll("person:tom", ":", "%3A"), nil)
	rec := httptest.NewRecorder()
	h.Autocomplete(rec, req)

	var envelope struct {
		SourceHint []string          `json:"source_hint"`
		Person     []json.RawMessage `json:"person"`
		Movie      []json.RawMessage `json:"movie"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, []string{"person"}, envelope.SourceHint)
	assert.Len(t, envelope.Person, 1)
	assert.Empty(t, envelope.Movie)
}
