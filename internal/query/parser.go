// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package query turns free text into per-source index queries: parsing the
// source-hint prefix and filter segments, normalizing tags through the IPTC
// taxonomy, and composing RediSearch query strings per collection.
package query

import (
	"regexp"
	"strings"

	"github.com/mediacircle/searchd/internal/models"
	"github.com/mediacircle/searchd/pkg/stringutils"
)

// Filter is one conjunctive clause of (field, values). Values are
// normalized and disjunctive: the IPTC expansion fans a single user token
// into several acceptable values.
type Filter struct {
	Field  string
	Values []string
}

// Parsed is the outcome of parsing a raw query. Parsing never fails; the
// empty string is a legal parse.
type Parsed struct {
	// Text is the remaining free text, trimmed and whitespace-collapsed.
	Text string
	// SourceHint holds the source tags named by a leading "tag:" or
	// "tag,tag:" prefix; nil when no hint was given.
	SourceHint []string
	// Filters holds the lifted [tag=value] and keyword:"name" clauses.
	Filters []Filter
	// Raw bypasses parsing entirely; Text carries the verbatim input.
	Raw bool
}

var (
	bracketFilterRe = regexp.MustCompile(`\[([^\[\]=]+)=([^\[\]]+)\]`)
	keywordFilterRe = regexp.MustCompile(`keyword:"([^"]*)"`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// Parse splits a raw query into {source_hint?, filters[], text}. When raw
// is set the text is forwarded verbatim and no parsing happens.
func Parse(q string, raw bool) Parsed {
	if raw {
		return Parsed{Text: q, Raw: true}
	}

	text := q

	hint, rest, ok := splitSourceHint(text)
	if ok {
		text = rest
	}

	var filters []Filter

	text = keywordFilterRe.ReplaceAllStringFunc(text, func(segment string) string {
		m := keywordFilterRe.FindStringSubmatch(segment)
		if values := ExpandTag(m[1]); len(values) > 0 {
			filters = append(filters, Filter{Field: "keywords", Values: values})
		}
		return " "
	})

	text = bracketFilterRe.ReplaceAllStringFunc(text, func(segment string) string {
		m := bracketFilterRe.FindStringSubmatch(segment)
		field := NormalizeTag(m[1])
		if field == "" {
			return " "
		}
		if values := ExpandTag(m[2]); len(values) > 0 {
			filters = append(filters, Filter{Field: field, Values: values})
		}
		return " "
	})

	return Parsed{
		Text:       collapseWhitespace(text),
		SourceHint: hint,
		Filters:    filters,
	}
}

// ParseFilterList parses the request-level filters parameter: a comma
// separated list of field=value pairs. Bare tokens without a field are
// treated as keyword filters.
func ParseFilterList(raw string) []Filter {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var filters []Filter
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		field := "keywords"
		value := part
		if k, v, ok := strings.Cut(part, "="); ok {
			if normalized := NormalizeTag(k); normalized != "" {
				field = normalized
			}
			value = v
		}
		if values := ExpandTag(value); len(values) > 0 {
			filters = append(filters, Filter{Field: field, Values: values})
		}
	}
	return filters
}

// splitSourceHint strips a leading "tag:" or "tag,tag:" prefix when every
// comma-separated token matches the fixed source set (case-insensitive).
func splitSourceHint(text string) ([]string, string, bool) {
	trimmed := strings.TrimLeft(text, " ")
	idx := strings.Index(trimmed, ":")
	if idx <= 0 {
		return nil, text, false
	}

	prefix := trimmed[:idx]
	tokens := strings.Split(prefix, ",")
	hint := make([]string, 0, len(tokens))
	for _, token := range tokens {
		tag := stringutils.InternNormalized(token)
		if !models.IsKnownSource(tag) {
			return nil, text, false
		}
		hint = append(hint, tag)
	}
	return hint, trimmed[idx+1:], true
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// ShortText reports whether text carries fewer than two non-whitespace
// characters. Such queries reach neither the index nor the brokered
// providers; the response is an all-empty envelope.
func ShortText(text string) bool {
	n := 0
	for _, word := range strings.Fields(text) {
		n += len([]rune(word))
		if n >= 2 {
			return false
		}
	}
	return true
}
