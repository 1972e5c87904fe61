// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package querydebounce

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediacircle/searchd/internal/models"
)

type fetchRecorder struct {
	mu    sync.Mutex
	calls []struct {
		Query string
		Mode  models.Mode
	}
	respond func(ctx context.Context, query string, mode models.Mode) (*models.Envelope, error)
}

func (f *fetchRecorder) fetch(ctx context.Context, query string, mode models.Mode) (*models.Envelope, error) {
	f.mu.Lock()
	f.calls = append(f.calls, struct {
		Query string
		Mode  models.Mode
	}{query, mode})
	f.mu.Unlock()

	if f.respond != nil {
		return f.respond(ctx, query, mode)
	}
	return models.NewEnvelope(), nil
}

func (f *fetchRecorder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func envelopeWithMovie(mcID string) *models.Envelope {
	e := models.NewEnvelope()
	e.Movie = []models.ResultItem{
		&models.MediaItem{Item: models.Item{MCID: mcID, MCType: models.MCTypeMovie, SearchTitle: "Dune"}},
	}
	return e
}

func TestKeystrokeFiresBothTiers(t *testing.T) {
	rec := &fetchRecorder{}
	d := New(rec.fetch, nil, WithDelays(20*time.Millisecond, 50*time.Millisecond))
	defer d.Stop()

	d.Keystroke("dune")

	require.Eventually(t, func() bool { return rec.callCount() == 2 }, time.Second, 5*time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, models.ModeAutocomplete, rec.calls[0].Mode)
	assert.Equal(t, models.ModeSearch, rec.calls[1].Mode)
	assert.Equal(t, "dune", rec.calls[0].Query)
}

func TestKeystrokeSupersedesPrevious(t *testing.T) {
	rec := &fetchRecorder{}
	d := New(rec.fetch, nil, WithDelays(30*time.Millisecond, 500*time.Millisecond))
	defer d.Stop()

	d.Keystroke("d")
	d.Keystroke("du")
	d.Keystroke("dun")
	d.Keystroke("dune")

	time.Sleep(100 * time.Millisecond)

	// Only the last text reached tier-1; earlier timers were cancelled.
	rec.mu.Lock()
	for _, call := range rec.calls {
		assert.Equal(t, "dune", call.Query)
	}
	rec.mu.Unlock()
}

func TestUnchangedKeystrokeIsNoOp(t *testing.T) {
	rec := &fetchRecorder{}
	d := New(rec.fetch, nil, WithDelays(20*time.Millisecond, 40*time.Millisecond))
	defer d.Stop()

	d.Keystroke("dune")
	time.Sleep(70 * time.Millisecond)
	first := rec.callCount()

	d.Keystroke("dune")
	time.Sleep(70 * time.Millisecond)

	assert.Equal(t, first, rec.callCount())
}

func TestEnterFiresSearchImmediately(t *testing.T) {
	rec := &fetchRecorder{}
	d := New(rec.fetch, nil, WithDelays(10*time.Second, 10*time.Second))
	defer d.Stop()

	d.Keystroke("dune")
	d.Enter()

	require.Eventually(t, func() bool { return rec.callCount() >= 1 }, time.Second, 5*time.Millisecond)
	rec.mu.Lock()
	assert.Equal(t, models.ModeSearch, rec.calls[0].Mode)
	rec.mu.Unlock()
}

func TestStaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	rec := &fetchRecorder{
		respond: func(ctx context.Context, query string, mode models.Mode) (*models.Envelope, error) {
			if query == "old" {
				<-release
				return envelopeWithMovie("tmdb_movie_old"), nil
			}
			return envelopeWithMovie("tmdb_movie_new"), nil
		},
	}

	var updates atomic.Int64
	d := New(rec.fetch, func(envelope *models.Envelope, mode models.Mode) {
		updates.Add(1)
	}, WithDelays(10*time.Millisecond, 10*time.Second))
	defer d.Stop()

	d.Keystroke("old")
	require.Eventually(t, func() bool { return rec.callCount() == 1 }, time.Second, 5*time.Millisecond)

	// Supersede while the first request is blocked in flight.
	d.Keystroke("new")
	require.Eventually(t, func() bool { return rec.callCount() == 2 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return updates.Load() == 1 }, time.Second, 5*time.Millisecond)

	close(release)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int64(1), updates.Load(), "stale response must not produce an update")
	require.Len(t, d.Snapshot().Movie, 1)
	assert.Equal(t, "tmdb_movie_new", d.Snapshot().Movie[0].Base().MCID)
}

func TestSearchTierOverwritesAutocomplete(t *testing.T) {
	rec := &fetchRecorder{
		respond: func(ctx context.Context, query string, mode models.Mode) (*models.Envelope, error) {
			if mode == models.ModeAutocomplete {
				return envelopeWithMovie("tmdb_movie_fast"), nil
			}
			return envelopeWithMovie("tmdb_movie_full"), nil
		},
	}

	d := New(rec.fetch, nil, WithDelays(10*time.Millisecond, 40*time.Millisecond))
	defer d.Stop()

	d.Keystroke("dune")
	require.Eventually(t, func() bool { return rec.callCount() == 2 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		movies := d.Snapshot().Movie
		return len(movies) == 1 && movies[0].Base().MCID == "tmdb_movie_full"
	}, time.Second, 5*time.Millisecond)
}

func TestAutocompleteNeverOverwritesSearch(t *testing.T) {
	searchDone := make(chan struct{})
	rec := &fetchRecorder{
		respond: func(ctx context.Context, query string, mode models.Mode) (*models.Envelope, error) {
			if mode == models.ModeAutocomplete {
				// Arrive after the search tier has already merged.
				<-searchDone
				return envelopeWithMovie("tmdb_movie_fast"), nil
			}
			return envelopeWithMovie("tmdb_movie_full"), nil
		},
	}

	d := New(rec.fetch, func(envelope *models.Envelope, mode models.Mode) {
		if mode == models.ModeSearch {
			close(searchDone)
		}
	}, WithDelays(10*time.Millisecond, 20*time.Millisecond))
	defer d.Stop()

	d.Keystroke("dune")

	require.Eventually(t, func() bool { return rec.callCount() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	require.Len(t, d.Snapshot().Movie, 1)
	assert.Equal(t, "tmdb_movie_full", d.Snapshot().Movie[0].Base().MCID)
}
