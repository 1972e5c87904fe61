// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package search

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mediacircle/searchd/internal/brokered"
	"github.com/mediacircle/searchd/internal/index"
	"github.com/mediacircle/searchd/internal/metrics"
	"github.com/mediacircle/searchd/internal/models"
	"github.com/mediacircle/searchd/internal/query"
)

// Timeouts holds the per-source deadlines. The request-wide deadline is
// derived: max of the applicable per-source deadlines plus the slack.
type Timeouts struct {
	AutocompleteIndex time.Duration
	SearchIndex       time.Duration
	Brokered          time.Duration
	Slack             time.Duration
}

// DefaultTimeouts returns the production deadline set.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		AutocompleteIndex: 250 * time.Millisecond,
		SearchIndex:       1500 * time.Millisecond,
		Brokered:          2500 * time.Millisecond,
		Slack:             500 * time.Millisecond,
	}
}

// Orchestrator fans a request out to every enabled source under per-source
// deadlines and publishes terminal results as they arrive.
type Orchestrator struct {
	timeouts    Timeouts
	descriptors map[string]*Descriptor
	metrics     *metrics.Metrics
}

// WithMetrics attaches the prometheus instruments. Nil disables recording.
func (o *Orchestrator) WithMetrics(m *metrics.Metrics) *Orchestrator {
	o.metrics = m
	return o
}

// New builds an orchestrator over an explicit runner table. Tags absent
// from the table are never enabled.
func New(timeouts Timeouts, runners map[string]Runner) *Orchestrator {
	descriptors := make(map[string]*Descriptor, len(runners))
	for tag, run := range runners {
		descriptors[tag] = &Descriptor{
			Tag:      tag,
			Priority: exactPriority(tag),
			Brokered: !models.IsIndexedSource(tag),
			Run:      run,
		}
	}
	return &Orchestrator{timeouts: timeouts, descriptors: descriptors}
}

// Providers holds the configured brokered adapters. Nil entries mean the
// provider is not configured; its source stays an empty array.
type Providers struct {
	News    *brokered.Adapter
	Video   *brokered.Adapter
	Ratings *brokered.Adapter
	Artist  *brokered.Adapter
	Album   *brokered.Adapter
}

// NewFromIndex wires the production runner table: one index runner per
// indexed collection plus a brokered runner per configured provider.
func NewFromIndex(timeouts Timeouts, executor *index.Executor, providers Providers) *Orchestrator {
	runners := make(map[string]Runner, len(models.AllSources))
	for _, tag := range models.IndexedSources {
		runners[tag] = IndexRunner(executor, tag)
	}
	for tag, adapter := range map[string]*brokered.Adapter{
		models.SourceNews:    providers.News,
		models.SourceVideo:   providers.Video,
		models.SourceRatings: providers.Ratings,
		models.SourceArtist:  providers.Artist,
		models.SourceAlbum:   providers.Album,
	} {
		if adapter != nil {
			runners[tag] = BrokeredRunner(tag, adapter)
		}
	}
	return New(timeouts, runners)
}

// Stream is one in-flight fan-out. Results carries each source's terminal
// outcome in completion order and is closed once every enabled source has
// terminated or the request-wide deadline fired.
type Stream struct {
	Results <-chan SourceResult
	Enabled []string
}

// RequestDeadline returns the request-wide deadline for the mode.
func (o *Orchestrator) RequestDeadline(mode models.Mode) time.Duration {
	if mode == models.ModeAutocomplete {
		return o.timeouts.AutocompleteIndex + o.timeouts.Slack
	}
	d := o.timeouts.SearchIndex
	if o.timeouts.Brokered > d {
		d = o.timeouts.Brokered
	}
	return d + o.timeouts.Slack
}

func (o *Orchestrator) sourceTimeout(d *Descriptor, mode models.Mode) time.Duration {
	if d.Brokered {
		return o.timeouts.Brokered
	}
	if mode == models.ModeAutocomplete {
		return o.timeouts.AutocompleteIndex
	}
	return o.timeouts.SearchIndex
}

// Run launches every enabled source concurrently. requested narrows the
// source set; the parsed source hint narrows it further; autocomplete mode
// hard-excludes brokered sources regardless of either.
func (o *Orchestrator) Run(ctx context.Context, mode models.Mode, parsed query.Parsed, requested []string, limit int) *Stream {
	enabled := enabledSources(o.descriptors, requested, parsed.SourceHint, mode)

	tags := make([]string, len(enabled))
	for i, d := range enabled {
		tags[i] = d.Tag
	}

	results := make(chan SourceResult, len(enabled))
	reqCtx, cancel := context.WithTimeout(ctx, o.RequestDeadline(mode))

	var g errgroup.Group
	for _, d := range enabled {
		g.Go(func() error {
			srcCtx, srcCancel := context.WithTimeout(reqCtx, o.sourceTimeout(d, mode))
			defer srcCancel()

			started := time.Now()
			items, state, err := d.Run(srcCtx, parsed, mode, limit)
			elapsed := time.Since(started)

			if items == nil {
				items = []models.ResultItem{}
			}
			if errors.Is(reqCtx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
				state = StateCancelled
			}
			if state != StateDone {
				log.Debug().Str("source", d.Tag).Str("state", string(state)).Err(err).
					Dur("duration", elapsed).Msg("Source terminated abnormally")
			}
			if o.metrics != nil {
				o.metrics.SourceDuration.WithLabelValues(d.Tag, string(mode)).Observe(elapsed.Seconds())
				o.metrics.SourceResults.WithLabelValues(d.Tag).Add(float64(len(items)))
				if state != StateDone {
					o.metrics.SourceFailures.WithLabelValues(d.Tag, string(state)).Inc()
				}
			}

			results <- SourceResult{
				Source:    d.Tag,
				Items:     items,
				LatencyMS: elapsed.Milliseconds(),
				State:     state,
				Err:       err,
			}
			return nil
		})
	}

	go func() {
		g.Wait()
		cancel()
		close(results)
	}()

	return &Stream{Results: results, Enabled: tags}
}

// Outcome is the fully-collected batch result of one request.
type Outcome struct {
	Envelope *models.Envelope
	// IndexUnavailable is set when an indexed source failed on a
	// connection-level error, which the batch transport maps to 503.
	IndexUnavailable bool
}

// Collect runs the fan-out to completion and assembles the response
// envelope, including exact-match arbitration.
func (o *Orchestrator) Collect(ctx context.Context, mode models.Mode, parsed query.Parsed, requested []string, limit int) Outcome {
	stream := o.Run(ctx, mode, parsed, requested, limit)

	envelope := models.NewEnvelope()
	envelope.SourceHint = parsed.SourceHint

	arbiter := NewArbiter(parsed.Text)
	unavailable := false

	for res := range stream.Results {
		envelope.Set(res.Source, res.Items)
		if res.State == StateDone {
			arbiter.Observe(res.Source, res.Items)
		} else {
			arbiter.Observe(res.Source, nil)
		}
		if res.State == StateFailed && errors.Is(res.Err, index.ErrUnavailable) {
			unavailable = true
		}
	}

	if winner := arbiter.Finish(); winner != nil {
		envelope.ExactMatch = ExactMatchPayload(winner)
	}
	return Outcome{Envelope: envelope, IndexUnavailable: unavailable}
}

// IndexRunner serves one indexed collection: build the query, execute it,
// normalize the documents, and rescale popularity.
func IndexRunner(executor *index.Executor, source string) Runner {
	return func(ctx context.Context, parsed query.Parsed, mode models.Mode, limit int) ([]models.ResultItem, State, error) {
		built := query.Build(source, parsed, mode, limit)

		result, err := executor.Execute(ctx, built)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, StateCancelled, err
			}
			return []models.ResultItem{}, StateFailed, err
		}

		items := make([]models.ResultItem, 0, len(result.Docs))
		for _, doc := range result.Docs {
			items = append(items, index.Normalize(source, doc))
		}
		applyPopularity(source, items)

		if result.TimedOut {
			return items, StateTimedOut, nil
		}
		return items, StateDone, nil
	}
}

// BrokeredRunner serves one provider-backed source through its adapter.
// Short queries never reach the provider; the index builders apply the
// same gate.
func BrokeredRunner(source string, adapter *brokered.Adapter) Runner {
	return func(ctx context.Context, parsed query.Parsed, mode models.Mode, limit int) ([]models.ResultItem, State, error) {
		if limit <= 0 || query.ShortText(parsed.Text) {
			return []models.ResultItem{}, StateDone, nil
		}

		result := adapter.Fetch(ctx, parsed.Text, limit)
		if result.Err != nil {
			switch {
			case errors.Is(result.Err, context.Canceled):
				return nil, StateCancelled, result.Err
			case errors.Is(result.Err, context.DeadlineExceeded):
				return result.Items, StateTimedOut, result.Err
			default:
				return result.Items, StateFailed, result.Err
			}
		}

		applyPopularity(source, result.Items)
		return result.Items, StateDone, nil
	}
}
