// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package stringutils provides string utilities for the query path:
// interning via Go's unique package for memory-efficient deduplication of
// frequently repeated strings (source tags, genre names, canonical titles),
// plus cached unicode canonicalization.
package stringutils

import (
	"strings"
	"unique"
)

// Intern returns a canonical representation of the string using Go's unique package.
// Identical strings will share the same underlying memory, reducing allocations
// and enabling fast equality comparisons.
//
// Use this for strings that are frequently repeated across the application:
//   - Source tags and collection names
//   - Genre, category, and subject names
//   - Canonical titles
//
// The returned string is semantically identical to the input.
func Intern(s string) string {
	if s == "" {
		return ""
	}
	return unique.Make(s).Value()
}

// InternNormalized interns a trimmed and lowercased version of the string.
// This is the canonical form for case-insensitive string matching.
func InternNormalized(s string) string {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "" {
		return ""
	}
	return unique.Make(normalized).Value()
}

// InternAll interns all strings in a slice, returning a new slice with interned values.
// Empty strings are preserved as empty strings (not interned).
func InternAll(strings []string) []string {
	if len(strings) == 0 {
		return strings
	}
	result := make([]string, len(strings))
	for i, s := range strings {
		result[i] = Intern(s)
	}
	return result
}
