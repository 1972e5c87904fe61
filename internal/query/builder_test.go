// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediacircle/searchd/internal/models"
)

func TestBuildShortQueryIsNoOp(t *testing.T) {
	for _, q := range []string{"", "a", " a ", "a "} {
		built := Build(models.SourceMovie, Parse(q, false), models.ModeAutocomplete, 10)
		assert.True(t, built.NoOp, "query %q must not reach the index", q)
	}

	built := Build(models.SourceMovie, Parse("ab", false), models.ModeAutocomplete, 10)
	assert.False(t, built.NoOp, "two characters trigger indexed search")
}

func TestBuildZeroLimitIsNoOp(t *testing.T) {
	built := Build(models.SourceTV, Parse("office", false), models.ModeSearch, 0)
	assert.True(t, built.NoOp)
}

func TestBuildAutocompletePrefix(t *testing.T) {
	built := Build(models.SourceTV, Parse("the offi", false), models.ModeAutocomplete, 10)
	require.False(t, built.NoOp)
	// Stopword "the" is stripped; trailing token is a prefix.
	assert.Contains(t, built.Query, "offi*")
	assert.NotContains(t, built.Query, "the")
	assert.Equal(t, "idx:media", built.Index)
}

func TestBuildSearchModeExactToken(t *testing.T) {
	built := Build(models.SourceMovie, Parse("dune", false), models.ModeSearch, 10)
	require.False(t, built.NoOp)
	assert.NotContains(t, built.Query, "*")
}

func TestBuildWeightedFields(t *testing.T) {
	built := Build(models.SourceMovie, Parse("heat", false), models.ModeSearch, 10)
	assert.Contains(t, built.Query, "@search_title:(heat)")
	assert.Contains(t, built.Query, "$weight: 5.0")
	assert.Contains(t, built.Query, "@cast:(heat)")
	assert.Contains(t, built.Query, "@director:(heat)")
	assert.Contains(t, built.Query, "@keywords:(heat)")
}

func TestBuildPersonFields(t *testing.T) {
	built := Build(models.SourcePerson, Parse("brad pitt", false), models.ModeSearch, 10)
	assert.Contains(t, built.Query, "@search_title:(brad pitt)")
	assert.Contains(t, built.Query, "@also_known_as:(brad pitt)")
	assert.Contains(t, built.Query, "@known_for_titles:(brad pitt)")
	assert.Equal(t, []string{"popularity"}, built.TieBreakFields)
}

func TestBuildPodcastStopwords(t *testing.T) {
	built := Build(models.SourcePodcast, Parse("daily podcast", false), models.ModeSearch, 10)
	require.False(t, built.NoOp)
	assert.Contains(t, built.Query, "daily")
	assert.NotContains(t, built.Query, "podcast)")
}

func TestBuildTagFilters(t *testing.T) {
	parsed := Parse("dune [genres=sci-fi]", false)
	built := Build(models.SourceMovie, parsed, models.ModeSearch, 10)
	assert.Contains(t, built.Query, "@genres:{science_fiction|speculative|fiction}")
}

func TestBuildYearRange(t *testing.T) {
	parsed := Parsed{Text: "dune", Filters: []Filter{{Field: "year", Values: []string{"2010_2020"}}}}
	built := Build(models.SourceMovie, parsed, models.ModeSearch, 10)
	assert.Contains(t, built.Query, "@year:[2010 2020]")

	parsed = Parsed{Text: "dune", Filters: []Filter{{Field: "year", Values: []string{"2021"}}}}
	built = Build(models.SourceMovie, parsed, models.ModeSearch, 10)
	assert.Contains(t, built.Query, "@year:[2021 2021]")
}

func TestBuildDropsForeignFilters(t *testing.T) {
	// Author accepts no filters; the clause must not leak into the query.
	parsed := Parse("tolkien [genres=fantasy]", false)
	built := Build(models.SourceAuthor, parsed, models.ModeSearch, 10)
	assert.NotContains(t, built.Query, "genres")
	assert.Contains(t, built.Query, "@name:(tolkien)")
}

func TestBuildRawPassthrough(t *testing.T) {
	parsed := Parse("@search_title:(dune*)", true)
	built := Build(models.SourceMovie, parsed, models.ModeSearch, 10)
	assert.Equal(t, "@search_title:(dune*)", built.Query)
}

func TestBuildEscapesQuerySyntax(t *testing.T) {
	built := Build(models.SourceMovie, Parse("dune (part*", false), models.ModeSearch, 10)
	assert.NotContains(t, built.Query, "(part")
	assert.Contains(t, built.Query, "part")
}
