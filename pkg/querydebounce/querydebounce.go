// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package querydebounce drives keystroke-paced querying for client
// embedders: a fast autocomplete tier and a slower search tier share one
// accumulator, with every keystroke superseding all in-flight work.
package querydebounce

import (
	"context"
	"sync"
	"time"

	"github.com/mediacircle/searchd/internal/models"
)

const (
	// DefaultAutocompleteDelay is the tier-1 pause after the last keystroke.
	DefaultAutocompleteDelay = 300 * time.Millisecond
	// DefaultSearchDelay is the tier-2 pause after the last keystroke.
	DefaultSearchDelay = 750 * time.Millisecond
)

// FetchFunc issues one request for the query text in the given mode and
// returns the response envelope.
type FetchFunc func(ctx context.Context, query string, mode models.Mode) (*models.Envelope, error)

// UpdateFunc receives each accepted envelope merge. mode tells the caller
// which tier produced it.
type UpdateFunc func(envelope *models.Envelope, mode models.Mode)

// Debouncer coordinates the two query tiers. Tier-1 (autocomplete) fires
// after a short pause; tier-2 (search) after a longer one, or immediately
// on Enter. A keystroke with changed text cancels all in-flight requests
// and clears the accumulator; stale responses are discarded.
type Debouncer struct {
	fetch  FetchFunc
	update UpdateFunc

	autocompleteDelay time.Duration
	searchDelay       time.Duration

	mu          sync.Mutex
	text        string
	generation  uint64
	cancel      context.CancelFunc
	requestCtx  context.Context
	timers      []*time.Timer
	accumulator *models.Envelope
	// searchFilled marks source keys the search tier has written this
	// generation; the autocomplete tier never overwrites them.
	searchFilled map[string]bool
	stopped      bool
}

// Option customizes a Debouncer.
type Option func(*Debouncer)

// WithDelays overrides the tier delays.
func WithDelays(autocomplete, search time.Duration) Option {
	return func(d *Debouncer) {
		d.autocompleteDelay = autocomplete
		d.searchDelay = search
	}
}

// New creates a debouncer. update is invoked from request goroutines; the
// caller serializes its own UI state.
func New(fetch FetchFunc, update UpdateFunc, opts ...Option) *Debouncer {
	d := &Debouncer{
		fetch:             fetch,
		update:            update,
		autocompleteDelay: DefaultAutocompleteDelay,
		searchDelay:       DefaultSearchDelay,
		accumulator:       models.NewEnvelope(),
		searchFilled:      make(map[string]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Keystroke registers the current input text. Unchanged text is a no-op;
// changed text supersedes everything in flight and restarts both tiers.
func (d *Debouncer) Keystroke(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || text == d.text {
		return
	}

	d.supersedeLocked(text)

	gen := d.generation
	d.timers = []*time.Timer{
		time.AfterFunc(d.autocompleteDelay, func() { d.dispatch(gen, text, models.ModeAutocomplete) }),
		time.AfterFunc(d.searchDelay, func() { d.dispatch(gen, text, models.ModeSearch) }),
	}
}

// Enter fires the search tier immediately for the current text, bypassing
// the tier-2 timer. The autocomplete tier is cancelled.
func (d *Debouncer) Enter() {
	d.mu.Lock()
	if d.stopped || d.text == "" {
		d.mu.Unlock()
		return
	}
	for _, t := range d.timers {
		t.Stop()
	}
	d.timers = nil
	gen, text := d.generation, d.text
	d.mu.Unlock()

	d.dispatch(gen, text, models.ModeSearch)
}

// Snapshot returns the current accumulator contents.
func (d *Debouncer) Snapshot() *models.Envelope {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.accumulator
}

// Stop cancels all in-flight work and timers. The debouncer is unusable
// afterwards.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.supersedeLocked("")
}

// supersedeLocked cancels in-flight requests and timers, clears the
// accumulator, and bumps the generation so stale responses are refused.
func (d *Debouncer) supersedeLocked(text string) {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	for _, t := range d.timers {
		t.Stop()
	}
	d.timers = nil

	d.text = text
	d.generation++
	d.accumulator = models.NewEnvelope()
	d.searchFilled = make(map[string]bool)
}

func (d *Debouncer) dispatch(gen uint64, text string, mode models.Mode) {
	d.mu.Lock()
	if d.stopped || gen != d.generation {
		d.mu.Unlock()
		return
	}
	if d.cancel == nil {
		var ctx context.Context
		ctx, d.cancel = context.WithCancel(context.Background())
		d.requestCtx = ctx
	}
	ctx := d.requestCtx
	d.mu.Unlock()

	envelope, err := d.fetch(ctx, text, mode)
	if err != nil || envelope == nil {
		return
	}

	d.mu.Lock()
	// Discard stale responses: the query moved on while this was in flight.
	if d.stopped || gen != d.generation {
		d.mu.Unlock()
		return
	}
	d.mergeLocked(envelope, mode)
	merged := d.accumulator
	d.mu.Unlock()

	if d.update != nil {
		d.update(merged, mode)
	}
}

// mergeLocked folds a response into the accumulator. Search-tier results
// overwrite autocomplete-tier results for every key they touch; the
// autocomplete tier never overwrites a key the search tier has filled.
func (d *Debouncer) mergeLocked(envelope *models.Envelope, mode models.Mode) {
	overwrite := mode == models.ModeSearch

	for _, tag := range models.AllSources {
		incoming := envelope.Get(tag)
		if overwrite {
			d.accumulator.Set(tag, incoming)
			d.searchFilled[tag] = true
			continue
		}
		if len(incoming) == 0 || d.searchFilled[tag] {
			continue
		}
		d.accumulator.Set(tag, incoming)
	}

	if envelope.ExactMatch != nil || overwrite {
		d.accumulator.ExactMatch = envelope.ExactMatch
	}
	if envelope.SourceHint != nil {
		d.accumulator.SourceHint = envelope.SourceHint
	}
}
