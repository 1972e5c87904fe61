// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stringutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple_title", input: "The Office", expected: "the office"},
		{name: "trims_whitespace", input: "  Dune  ", expected: "dune"},
		{name: "strips_apostrophe", input: "Bob's Burgers", expected: "bobs burgers"},
		{name: "hyphen_becomes_space", input: "Spider-Man", expected: "spider man"},
		{name: "strips_colon", input: "CSI: Miami", expected: "csi miami"},
		{name: "diacritics_removed", input: "Amélie", expected: "amelie"},
		{name: "ligature_decomposed", input: "Björk", expected: "bjork"},
		{name: "collapses_spaces", input: "Brad   Pitt", expected: "brad pitt"},
		{name: "empty", input: "", expected: ""},
		{name: "punctuation_only", input: "!?.,", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Canonicalize(tt.input))
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{"The Office", "Spider-Man", "Amélie", "Bob's Burgers", "dune"}
	for _, in := range inputs {
		once := Canonicalize(in)
		assert.Equal(t, once, Canonicalize(once), "canonicalize must be idempotent for %q", in)
	}
}

func TestNormalizeUnicode(t *testing.T) {
	assert.Equal(t, "Shogun", NormalizeUnicode("Shōgun"))
	assert.Equal(t, "naive", NormalizeUnicode("naïve"))
	assert.Equal(t, "AE", NormalizeUnicode("Æ"))
}
