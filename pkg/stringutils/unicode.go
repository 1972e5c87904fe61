// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stringutils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// unicodeNormalizer caches expensive NormalizeUnicode results to avoid repeated NFKD transformations.
	unicodeNormalizer = NewNormalizer(defaultNormalizerTTL, normalizeUnicodeInner)

	// canonicalNormalizer caches Canonicalize results. Canonical names are
	// computed for every indexed document on the query path, so identical
	// titles across requests hit the cache.
	canonicalNormalizer = NewNormalizer(defaultNormalizerTTL, canonicalizeInner)
)

// normalizeUnicodeInner is the inner transformation function used by unicodeNormalizer.
func normalizeUnicodeInner(s string) string {
	// Handle special characters that NFKD doesn't decompose to ASCII equivalents
	// (these are distinct letters in Nordic/Germanic languages, not composed characters)
	s = strings.ReplaceAll(s, "æ", "ae")
	s = strings.ReplaceAll(s, "Æ", "AE")
	s = strings.ReplaceAll(s, "œ", "oe")
	s = strings.ReplaceAll(s, "Œ", "OE")
	s = strings.ReplaceAll(s, "ø", "o")
	s = strings.ReplaceAll(s, "Ø", "O")
	s = strings.ReplaceAll(s, "ß", "ss")
	s = strings.ReplaceAll(s, "ð", "d")
	s = strings.ReplaceAll(s, "Ð", "D")
	s = strings.ReplaceAll(s, "þ", "th")
	s = strings.ReplaceAll(s, "Þ", "TH")

	// Create transformer fresh per-call (transform.Chain is not thread-safe for concurrent use).
	// Caching via unicodeNormalizer prevents repeated transformations for identical inputs.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// canonicalizeInner is the inner transformation function used by canonicalNormalizer.
func canonicalizeInner(s string) string {
	s = unicodeNormalizer.Normalize(s)
	s = strings.ToLower(strings.TrimSpace(s))

	// Strip punctuation entirely; keep letters, digits, and word gaps.
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '/':
			if !lastSpace && b.Len() > 0 {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return Intern(strings.TrimSpace(b.String()))
}

// NormalizeUnicode removes diacritics and decomposes ligatures with caching.
// Examples:
//   - "Shōgun" → "Shogun"
//   - "Amélie" → "Amelie"
//   - "Björk" → "Bjork"
//   - "æ" → "ae"
func NormalizeUnicode(s string) string {
	return unicodeNormalizer.Normalize(s)
}

// Canonicalize produces the canonical primary-name form used for exact-match
// comparison: diacritics removed, lowercased, trimmed, punctuation stripped,
// separators collapsed to single spaces.
//
// Canonicalize is idempotent: Canonicalize(Canonicalize(x)) == Canonicalize(x).
//
// Examples:
//   - "The Office"   → "the office"
//   - "Spider-Man"   → "spider man"
//   - "Bob's Burgers" → "bobs burgers"
//   - "Amélie"       → "amelie"
func Canonicalize(s string) string {
	return canonicalNormalizer.Normalize(s)
}
