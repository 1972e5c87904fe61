// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package search

import (
	"github.com/mediacircle/searchd/internal/models"
	"github.com/mediacircle/searchd/pkg/stringutils"
)

// Arbiter picks at most one exact match per request. Sources report their
// terminal result through Observe in completion order; the arbiter holds
// back a candidate until every higher-priority source has terminated, so
// the winner is determined by source priority rather than completion time.
//
// Not safe for concurrent use; callers feed it from a single goroutine.
type Arbiter struct {
	canonical string
	// open tracks exact-match-eligible sources that have not terminated,
	// keyed by priority rank.
	open map[int]bool
	// candidates holds the best candidate per priority rank.
	candidates map[int]models.ResultItem
	decided    bool
	winner     models.ResultItem
}

// NewArbiter builds an arbiter for the given query text. The text is
// canonicalized once; item canonical names are precomputed during
// normalization so each comparison is a string equality.
func NewArbiter(queryText string) *Arbiter {
	a := &Arbiter{
		canonical:  stringutils.Canonicalize(queryText),
		open:       make(map[int]bool, len(models.ExactMatchPriority)),
		candidates: make(map[int]models.ResultItem, 2),
	}
	for i := range models.ExactMatchPriority {
		a.open[i] = true
	}
	return a
}

// Observe records the terminal result of one source and returns the winner
// as soon as arbitration can no longer change: either a candidate exists
// whose priority beats every still-open source, or every eligible source
// has terminated. The second return is true exactly once per request.
func (a *Arbiter) Observe(source string, items []models.ResultItem) (models.ResultItem, bool) {
	rank := exactPriority(source)
	if rank < 0 || a.decided {
		return nil, false
	}

	delete(a.open, rank)

	if a.canonical != "" {
		for _, item := range items {
			if item.Base().CanonicalName() == a.canonical {
				a.candidates[rank] = item
				break
			}
		}
	}

	return a.tryDecide()
}

// Finish forces a decision from whatever has been observed. Sources that
// never reported (timed out, cancelled) are treated as empty.
func (a *Arbiter) Finish() models.ResultItem {
	if a.decided {
		return a.winner
	}
	a.open = map[int]bool{}
	winner, _ := a.tryDecide()
	return winner
}

func (a *Arbiter) tryDecide() (models.ResultItem, bool) {
	best := -1
	for rank := range a.candidates {
		if best < 0 || rank < best {
			best = rank
		}
	}

	if best >= 0 {
		// A higher-priority source still running could displace the best
		// candidate; hold until none remains.
		for rank := range a.open {
			if rank < best {
				return nil, false
			}
		}
		a.decided = true
		a.winner = a.candidates[best]
		return a.winner, true
	}

	if len(a.open) == 0 {
		a.decided = true
		return nil, true
	}
	return nil, false
}

// exactMediaPayload overlays a media item with the cast restructured into
// {name, id|null} pairs for the exact-match payload. The shallower Cast
// field shadows the embedded string list during JSON emission.
type exactMediaPayload struct {
	*models.MediaItem
	Cast []models.CastCredit `json:"cast,omitempty"`
}

// ExactMatchPayload shapes the winning item for the response envelope.
// Media items get their flat cast names zipped with cast_ids; every other
// type is emitted as-is.
func ExactMatchPayload(item models.ResultItem) any {
	if item == nil {
		return nil
	}
	media, ok := item.(*models.MediaItem)
	if !ok {
		return item
	}

	credits := make([]models.CastCredit, 0, len(media.Cast))
	for i, name := range media.Cast {
		credit := models.CastCredit{Name: name}
		if i < len(media.CastIDs) && media.CastIDs[i] != "" {
			id := media.CastIDs[i]
			credit.ID = &id
		}
		credits = append(credits, credit)
	}
	return &exactMediaPayload{MediaItem: media, Cast: credits}
}
