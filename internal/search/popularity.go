// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package search

import (
	"github.com/mediacircle/searchd/internal/models"
)

// scoreRange bounds the raw score distribution of one source. Raw values
// outside the range clamp to the nearest bound.
type scoreRange struct {
	min float64
	max float64
}

// scoreRanges maps each source tag to its observed raw score bounds.
// Indexed media and person popularity comes from TMDB (long-tailed, capped
// at 1000 / 500); podcasts carry the PodcastIndex 0-29 value; books and
// authors store composite scores already on a 0-100 scale. Ratings raw
// scores are the 0-10 user rating; artists report Last.fm listener counts.
var scoreRanges = map[string]scoreRange{
	models.SourceMovie:   {0, 1000},
	models.SourceTV:      {0, 1000},
	models.SourcePerson:  {0, 500},
	models.SourcePodcast: {0, 29},
	models.SourceBook:    {0, 100},
	models.SourceAuthor:  {0, 100},
	models.SourceRatings: {0, 10},
	models.SourceArtist:  {0, 10_000_000},
}

// NormalizePopularity maps a raw per-source score onto the common 0-100
// popularity scale: 100 * clamp01((r - min) / (max - min)). Sources with no
// score distribution (news, video, album) always yield 0. The mapping is
// deterministic and monotonic in r.
func NormalizePopularity(source string, raw float64) float64 {
	r, ok := scoreRanges[source]
	if !ok || r.max <= r.min {
		return 0
	}
	v := (raw - r.min) / (r.max - r.min)
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return 100 * v
}

// applyPopularity rewrites each item's popularity from the source's raw
// scale to 0-100 in place.
func applyPopularity(source string, items []models.ResultItem) {
	for _, item := range items {
		base := item.Base()
		base.Popularity = NormalizePopularity(source, base.Popularity)
	}
}
