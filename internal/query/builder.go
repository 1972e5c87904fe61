// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mediacircle/searchd/internal/models"
)

// Stopwords the index ignores; they are stripped from text clauses before
// composing the query so a trailing stopword never becomes the prefix term.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"is": {}, "it": {},
}

// podcastStopwords extends the base set for the podcast collection, where
// nearly every document contains these words.
var podcastStopwords = map[string]struct{}{
	"podcast": {}, "show": {},
}

// IndexQuery is the built query handed to the executor.
type IndexQuery struct {
	Source string
	Index  string
	Query  string
	Limit  int

	// NoOp marks a query the executor must not send to the index
	// (short text, zero limit).
	NoOp bool

	// TieBreakFields orders equal-relevance documents deterministically,
	// highest value first, applied left to right.
	TieBreakFields []string
}

// weightedField pairs an index field with its relevance weight in the
// full-text clause.
type weightedField struct {
	field  string
	weight float64
}

// textFields is the weighted full-text field list per indexed source.
var textFields = map[string][]weightedField{
	models.SourceTV:      {{"search_title", 5}, {"cast", 2}, {"director", 2}, {"keywords", 1}},
	models.SourceMovie:   {{"search_title", 5}, {"cast", 2}, {"director", 2}, {"keywords", 1}},
	models.SourcePerson:  {{"search_title", 5}, {"also_known_as", 3}, {"known_for_titles", 1}},
	models.SourcePodcast: {{"search_title", 5}, {"author", 3}, {"categories", 1}},
	models.SourceBook:    {{"search_title", 5}, {"author_search", 3}, {"subjects_search", 1}},
	models.SourceAuthor:  {{"search_title", 5}, {"name", 4}},
}

// tagFields lists the filter fields each source accepts, mapped to the TAG
// field in the index. Filters naming other fields are dropped for that
// source rather than pushed to the index.
var tagFields = map[string]map[string]string{
	models.SourceTV:      {"genres": "genres", "origin_country": "origin_country", "us_rating": "us_rating", "cast_names": "cast_names", "keywords": "keywords"},
	models.SourceMovie:   {"genres": "genres", "origin_country": "origin_country", "us_rating": "us_rating", "cast_names": "cast_names", "keywords": "keywords"},
	models.SourcePerson:  {"mc_subtype": "mc_subtype", "known_for_department": "known_for_department"},
	models.SourcePodcast: {"language": "language", "categories": "categories"},
	models.SourceBook:    {"language": "language", "subjects_normalized": "subjects_normalized", "genres": "subjects_normalized", "keywords": "subjects_normalized"},
	models.SourceAuthor:  {},
}

// numericFields lists range-filterable NUMERIC fields per source.
var numericFields = map[string]map[string]string{
	models.SourceTV:    {"year": "year"},
	models.SourceMovie: {"year": "year"},
	models.SourceBook:  {"first_publish_year": "first_publish_year", "year": "first_publish_year"},
}

// tieBreaks gives the deterministic sort ladder per source, applied after
// relevance. Values sort descending.
var tieBreaks = map[string][]string{
	models.SourceTV:      {"popularity", "year"},
	models.SourceMovie:   {"popularity", "year"},
	models.SourcePerson:  {"popularity"},
	models.SourcePodcast: {"popularity"},
	models.SourceBook:    {"popularity_score"},
	models.SourceAuthor:  {"quality_score"},
}

// indexNames maps source tags to the RediSearch index per collection.
var indexNames = map[string]string{
	models.SourceTV:      "idx:media",
	models.SourceMovie:   "idx:media",
	models.SourcePerson:  "idx:person",
	models.SourcePodcast: "idx:podcast",
	models.SourceBook:    "idx:book",
	models.SourceAuthor:  "idx:author",
}

// IndexName returns the RediSearch index serving the given source tag.
func IndexName(source string) string { return indexNames[source] }

// Build composes the index query for one source. mode selects the
// prefix/autocomplete policy for the trailing token.
func Build(source string, parsed Parsed, mode models.Mode, limit int) IndexQuery {
	q := IndexQuery{
		Source:         source,
		Index:          indexNames[source],
		Limit:          limit,
		TieBreakFields: tieBreaks[source],
	}

	if limit <= 0 {
		q.NoOp = true
		return q
	}

	if parsed.Raw {
		q.Query = parsed.Text
		if strings.TrimSpace(q.Query) == "" {
			q.NoOp = true
		}
		return q
	}

	if ShortText(parsed.Text) {
		q.NoOp = true
		return q
	}

	var parts []string
	if text := buildTextClause(source, parsed.Text, mode); text != "" {
		parts = append(parts, text)
	}
	parts = append(parts, buildFilterClauses(source, parsed.Filters)...)

	if len(parts) == 0 {
		q.NoOp = true
		return q
	}

	q.Query = strings.Join(parts, " ")
	return q
}

// buildTextClause produces the weighted full-text disjunction for the
// source's field list. In autocomplete mode the trailing token is a prefix.
func buildTextClause(source, text string, mode models.Mode) string {
	words := splitWords(source, text)
	if len(words) == 0 {
		return ""
	}

	if mode == models.ModeAutocomplete {
		words[len(words)-1] += "*"
	}
	terms := strings.Join(words, " ")

	fields := textFields[source]
	clauses := make([]string, 0, len(fields))
	for _, f := range fields {
		clause := fmt.Sprintf("(@%s:(%s))", f.field, terms)
		if f.weight != 1 {
			clause = fmt.Sprintf("%s => { $weight: %s }", clause, strconv.FormatFloat(f.weight, 'f', 1, 64))
		}
		clauses = append(clauses, clause)
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return "(" + strings.Join(clauses, " | ") + ")"
}

// buildFilterClauses converts parsed filters into conjunctive TAG and
// NUMERIC clauses for the source. Values are already normalized; the IPTC
// fan-out becomes a disjunction inside a single TAG clause. Raw user text
// is never pushed into a TAG clause.
func buildFilterClauses(source string, filters []Filter) []string {
	var parts []string
	for _, f := range filters {
		if field, ok := numericFields[source][f.Field]; ok {
			if clause := buildNumericClause(field, f.Values); clause != "" {
				parts = append(parts, clause)
				continue
			}
		}
		field, ok := tagFields[source][f.Field]
		if !ok {
			continue
		}
		values := make([]string, 0, len(f.Values))
		for _, v := range f.Values {
			if v = NormalizeTag(v); v != "" {
				values = append(values, escapeTagValue(v))
			}
		}
		if len(values) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("@%s:{%s}", field, strings.Join(values, "|")))
	}
	return parts
}

// buildNumericClause turns "2010", "2010_2020", or an open-ended bound into
// a NUMERIC range clause. Non-numeric values yield no clause.
func buildNumericClause(field string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	// Only the first value is meaningful for a range; IPTC expansion never
	// applies to numeric tokens.
	value := values[0]

	if lo, hi, ok := strings.Cut(value, "_"); ok {
		if isNumeric(lo) && isNumeric(hi) {
			return fmt.Sprintf("@%s:[%s %s]", field, lo, hi)
		}
		return ""
	}
	if isNumeric(value) {
		return fmt.Sprintf("@%s:[%s %s]", field, value, value)
	}
	return ""
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// escapeTagValue escapes characters RediSearch treats specially inside TAG
// clauses. Normalized values only carry word characters, but raw index
// values retained through expansion may include dashes.
func escapeTagValue(v string) string {
	return strings.ReplaceAll(v, "-", "\\-")
}

// splitWords lowercases, tokenizes, and strips stopwords for the source.
func splitWords(source, text string) []string {
	raw := strings.Fields(strings.ToLower(text))
	words := make([]string, 0, len(raw))
	for _, w := range raw {
		if _, ok := stopwords[w]; ok {
			continue
		}
		if source == models.SourcePodcast {
			if _, ok := podcastStopwords[w]; ok {
				continue
			}
		}
		if w = escapeTextToken(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// escapeTextToken drops query-syntax characters from a user token so free
// text can never break out of the text clause.
func escapeTextToken(w string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '@', '{', '}', '[', ']', '(', ')', '|', '*', '%', '~', '"', '\'', ':', '-', '=', '>', '<':
			return -1
		}
		return r
	}, w)
}
