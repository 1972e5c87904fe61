// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package query

import (
	"strings"
	"unicode"

	"github.com/mediacircle/searchd/pkg/stringutils"
)

// iptcAliases maps common spellings to the canonical taxonomy token.
var iptcAliases = map[string]string{
	"sci_fi":    "science_fiction",
	"scifi":     "science_fiction",
	"sf":        "science_fiction",
	"romcom":    "romantic_comedy",
	"rom_com":   "romantic_comedy",
	"docu":      "documentary",
	"doc":       "documentary",
	"biopic":    "biographical",
	"whodunit":  "mystery",
	"kids":      "children",
	"childrens": "children",
	"true_crime": "crime",
}

// iptcParents maps a taxonomy token to its parent categories. Expansion
// walks parents transitively, so a child inherits its whole ancestry.
var iptcParents = map[string][]string{
	"science_fiction":  {"speculative"},
	"fantasy":          {"speculative"},
	"speculative":      {"fiction"},
	"romantic_comedy":  {"romance", "comedy"},
	"romance":          {"fiction"},
	"comedy":           {"entertainment"},
	"thriller":         {"fiction"},
	"mystery":          {"fiction"},
	"crime":            {"fiction"},
	"horror":           {"fiction"},
	"western":          {"fiction"},
	"historical":       {"fiction"},
	"biographical":     {"non_fiction"},
	"documentary":      {"non_fiction"},
	"memoir":           {"biographical"},
	"self_help":        {"non_fiction"},
	"science":          {"non_fiction"},
	"history":          {"non_fiction"},
	"children":         {"family"},
	"animation":        {"family"},
	"drama":            {"fiction"},
	"action":           {"fiction"},
	"adventure":        {"fiction"},
}

// NormalizeTag lowercases a token, strips non-alphanumerics, and collapses
// inter-word gaps to single underscores. It is deterministic and total:
// the empty string is a legal result, never an error.
//
// NormalizeTag is idempotent: NormalizeTag(NormalizeTag(x)) == NormalizeTag(x).
func NormalizeTag(token string) string {
	token = stringutils.NormalizeUnicode(token)
	token = strings.ToLower(strings.TrimSpace(token))

	var b strings.Builder
	b.Grow(len(token))
	gap := false
	for _, r := range token {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if gap && b.Len() > 0 {
				b.WriteByte('_')
			}
			gap = false
			b.WriteRune(r)
		default:
			// Any run of separators or punctuation is a single word gap.
			gap = true
		}
	}
	return stringutils.Intern(b.String())
}

// ExpandTag normalizes a token and expands it through the IPTC taxonomy:
// the canonical token plus every ancestor category. Tokens outside the
// taxonomy expand to just their normalized form.
//
// Example: "sci-fi" → ["science_fiction", "speculative", "fiction"].
func ExpandTag(token string) []string {
	normalized := NormalizeTag(token)
	if normalized == "" {
		return nil
	}
	if canonical, ok := iptcAliases[normalized]; ok {
		normalized = canonical
	}

	expanded := []string{normalized}
	seen := map[string]struct{}{normalized: {}}

	// Walk the parent chain breadth-first. The taxonomy is a DAG; seen
	// guards against shared ancestors being emitted twice.
	queue := []string{normalized}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, parent := range iptcParents[current] {
			if _, ok := seen[parent]; ok {
				continue
			}
			seen[parent] = struct{}{}
			expanded = append(expanded, parent)
			queue = append(queue, parent)
		}
	}
	return expanded
}
