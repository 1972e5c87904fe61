// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package search fans a parsed query out to every enabled source, collects
// per-source results as they terminate, and arbitrates the single exact
// match across sources.
package search

import (
	"context"

	"github.com/mediacircle/searchd/internal/models"
	"github.com/mediacircle/searchd/internal/query"
)

// State is the lifecycle state of one source within a request. Transitions
// are monotonic: pending -> running -> one of the terminal states.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateDone      State = "done"
	StateTimedOut  State = "timed_out"
	StateCancelled State = "cancelled"
	StateFailed    State = "failed"
)

// Terminal reports whether the state is one a source cannot leave.
func (s State) Terminal() bool {
	switch s {
	case StateDone, StateTimedOut, StateCancelled, StateFailed:
		return true
	}
	return false
}

// Runner executes one source for a request. Implementations return the
// normalized items and the terminal state; items must be non-nil on every
// terminal state except cancellation.
type Runner func(ctx context.Context, parsed query.Parsed, mode models.Mode, limit int) ([]models.ResultItem, State, error)

// Descriptor describes one source in the fixed source table: its tag,
// exact-match priority (lower wins, <0 means never an exact-match
// candidate), whether it is brokered (and so excluded in autocomplete
// mode), and the runner that serves it.
type Descriptor struct {
	Tag      string
	Priority int
	Brokered bool
	Run      Runner
}

// SourceResult is the terminal outcome of one source for one request.
type SourceResult struct {
	Source    string
	Items     []models.ResultItem
	LatencyMS int64
	State     State
	Err       error
}

// exactPriority returns the arbitration rank of a source tag, or -1 when
// the source never produces an exact match.
func exactPriority(tag string) int {
	for i, s := range models.ExactMatchPriority {
		if s == tag {
			return i
		}
	}
	return -1
}

// enabledSources intersects the fixed source set with the request sources
// filter, the parsed source hint, and the mode exclusion mask. Order
// follows models.AllSources so fan-out and envelope assembly stay
// deterministic.
func enabledSources(descriptors map[string]*Descriptor, requested, hint []string, mode models.Mode) []*Descriptor {
	allow := func(set []string, tag string) bool {
		if len(set) == 0 {
			return true
		}
		for _, s := range set {
			if s == tag {
				return true
			}
		}
		return false
	}

	var enabled []*Descriptor
	for _, tag := range models.AllSources {
		d, ok := descriptors[tag]
		if !ok {
			continue
		}
		if mode == models.ModeAutocomplete && d.Brokered {
			continue
		}
		if !allow(requested, tag) || !allow(hint, tag) {
			continue
		}
		enabled = append(enabled, d)
	}
	return enabled
}
