// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mediacircle/searchd/internal/models"
)

func TestNormalizePopularity(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		raw      float64
		expected float64
	}{
		{name: "movie midpoint", source: models.SourceMovie, raw: 500, expected: 50},
		{name: "movie above cap clamps", source: models.SourceMovie, raw: 4200, expected: 100},
		{name: "movie negative clamps", source: models.SourceMovie, raw: -3, expected: 0},
		{name: "podcast full scale", source: models.SourcePodcast, raw: 29, expected: 100},
		{name: "book passthrough scale", source: models.SourceBook, raw: 73.5, expected: 73.5},
		{name: "ratings ten is hundred", source: models.SourceRatings, raw: 10, expected: 100},
		{name: "unknown source yields zero", source: models.SourceNews, raw: 9000, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, NormalizePopularity(tt.source, tt.raw), 0.001)
		})
	}
}

func TestNormalizePopularityMonotonic(t *testing.T) {
	prev := -1.0
	for raw := 0.0; raw <= 1200; raw += 50 {
		v := NormalizePopularity(models.SourceMovie, raw)
		assert.GreaterOrEqual(t, v, prev)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
		prev = v
	}
}

func TestApplyPopularityInPlace(t *testing.T) {
	items := []models.ResultItem{
		mediaItem("tmdb_movie_1", "Dune", models.MCTypeMovie),
		mediaItem("tmdb_movie_2", "Dune: Part Two", models.MCTypeMovie),
	}
	items[0].Base().Popularity = 250
	items[1].Base().Popularity = 2500

	applyPopularity(models.SourceMovie, items)

	assert.InDelta(t, 25, items[0].Base().Popularity, 0.001)
	assert.InDelta(t, 100, items[1].Base().Popularity, 0.001)
}
