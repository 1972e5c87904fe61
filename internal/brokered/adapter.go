// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package brokered wraps the external providers behind a uniform fetch
// contract. Adapter failures never propagate: transport and HTTP errors
// become a structured error with a status code and an empty item list.
package brokered

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mediacircle/searchd/internal/models"
)

// FetchFunc is the opaque provider call: free text in, items out.
type FetchFunc func(ctx context.Context, text string, limit int) ([]models.ResultItem, error)

// Result is the uniform outcome of one brokered fetch.
type Result struct {
	Items      []models.ResultItem
	LatencyMS  int64
	Err        error
	StatusCode int
}

// Adapter applies the per-provider timeout and error policy around a
// FetchFunc.
type Adapter struct {
	source  string
	fetch   FetchFunc
	timeout time.Duration
}

// NewAdapter wraps fetch for the given source tag. A zero timeout disables
// the adapter-level deadline (the request context still applies).
func NewAdapter(source string, timeout time.Duration, fetch FetchFunc) *Adapter {
	return &Adapter{source: source, fetch: fetch, timeout: timeout}
}

// Source returns the source tag this adapter serves.
func (a *Adapter) Source() string { return a.source }

// Fetch runs the provider call under the adapter timeout. It never
// panics and never returns a nil item slice. Context cancellation aborts
// in-flight work and yields an empty result promptly.
func (a *Adapter) Fetch(ctx context.Context, text string, limit int) Result {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	started := time.Now()
	items, err := a.safeFetch(ctx, text, limit)
	latency := time.Since(started).Milliseconds()

	if err != nil {
		status := statusCodeOf(err)
		if ctx.Err() == nil {
			log.Warn().Err(err).Str("source", a.source).Int("status", status).
				Int64("latencyMs", latency).Msg("Brokered fetch failed")
		}
		return Result{Items: []models.ResultItem{}, LatencyMS: latency, Err: err, StatusCode: status}
	}

	if items == nil {
		items = []models.ResultItem{}
	}
	return Result{Items: items, LatencyMS: latency, StatusCode: 200}
}

// safeFetch guards against provider client panics; a panicking provider is
// indistinguishable from a failed one to the caller.
func (a *Adapter) safeFetch(ctx context.Context, text string, limit int) (items []models.ResultItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Str("source", a.source).Msg("Brokered provider panicked")
			items = nil
			err = errProviderPanic
		}
	}()
	return a.fetch(ctx, text, limit)
}
