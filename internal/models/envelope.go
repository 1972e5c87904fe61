// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

// Mode selects the query semantics of a request.
type Mode string

const (
	ModeAutocomplete Mode = "autocomplete"
	ModeSearch       Mode = "search"
)

// Source tags. Indexed sources are served from the local inverted index,
// brokered sources by external providers.
const (
	SourceTV      = "tv"
	SourceMovie   = "movie"
	SourcePerson  = "person"
	SourcePodcast = "podcast"
	SourceAuthor  = "author"
	SourceBook    = "book"
	SourceNews    = "news"
	SourceVideo   = "video"
	SourceRatings = "ratings"
	SourceArtist  = "artist"
	SourceAlbum   = "album"
)

// IndexedSources lists the inverted-index collections.
var IndexedSources = []string{
	SourceTV, SourceMovie, SourcePerson, SourcePodcast, SourceAuthor, SourceBook,
}

// BrokeredSources lists the provider-backed sources. They are excluded
// entirely in autocomplete mode.
var BrokeredSources = []string{
	SourceNews, SourceVideo, SourceRatings, SourceArtist, SourceAlbum,
}

// AllSources is the fixed source tag set, also used for source-hint parsing.
var AllSources = append(append([]string{}, IndexedSources...), BrokeredSources...)

// ExactMatchPriority orders sources for exact-match arbitration. A source
// earlier in this list beats any later one.
var ExactMatchPriority = []string{
	SourceMovie, SourceTV, SourcePerson, SourcePodcast, SourceBook, SourceAuthor,
}

// Request is the parsed request envelope shared by both transports.
type Request struct {
	Query   string   `json:"q"`
	Sources []string `json:"sources,omitempty"`
	Filters string   `json:"filters,omitempty"`
	Limit   int      `json:"limit,omitempty"`
	Raw     bool     `json:"raw,omitempty"`
	Mode    Mode     `json:"mode"`
}

// Envelope is the batch response shape. Every key is always present;
// absent sources are empty arrays, never null.
type Envelope struct {
	ExactMatch any          `json:"exact_match"`
	TV         []ResultItem `json:"tv"`
	Movie      []ResultItem `json:"movie"`
	Person     []ResultItem `json:"person"`
	Podcast    []ResultItem `json:"podcast"`
	Author     []ResultItem `json:"author"`
	Book       []ResultItem `json:"book"`
	News       []ResultItem `json:"news"`
	Video      []ResultItem `json:"video"`
	Ratings    []ResultItem `json:"ratings"`
	Artist     []ResultItem `json:"artist"`
	Album      []ResultItem `json:"album"`
	SourceHint []string     `json:"source_hint,omitempty"`
}

// NewEnvelope returns an envelope with every array initialized so JSON
// emission yields [] rather than null.
func NewEnvelope() *Envelope {
	return &Envelope{
		TV:      []ResultItem{},
		Movie:   []ResultItem{},
		Person:  []ResultItem{},
		Podcast: []ResultItem{},
		Author:  []ResultItem{},
		Book:    []ResultItem{},
		News:    []ResultItem{},
		Video:   []ResultItem{},
		Ratings: []ResultItem{},
		Artist:  []ResultItem{},
		Album:   []ResultItem{},
	}
}

// Set stores items under the given source tag. Unknown tags are ignored.
func (e *Envelope) Set(source string, items []ResultItem) {
	if items == nil {
		items = []ResultItem{}
	}
	switch source {
	case SourceTV:
		e.TV = items
	case SourceMovie:
		e.Movie = items
	case SourcePerson:
		e.Person = items
	case SourcePodcast:
		e.Podcast = items
	case SourceAuthor:
		e.Author = items
	case SourceBook:
		e.Book = items
	case SourceNews:
		e.News = items
	case SourceVideo:
		e.Video = items
	case SourceRatings:
		e.Ratings = items
	case SourceArtist:
		e.Artist = items
	case SourceAlbum:
		e.Album = items
	}
}

// Get returns the items stored under the given source tag.
func (e *Envelope) Get(source string) []ResultItem {
	switch source {
	case SourceTV:
		return e.TV
	case SourceMovie:
		return e.Movie
	case SourcePerson:
		return e.Person
	case SourcePodcast:
		return e.Podcast
	case SourceAuthor:
		return e.Author
	case SourceBook:
		return e.Book
	case SourceNews:
		return e.News
	case SourceVideo:
		return e.Video
	case SourceRatings:
		return e.Ratings
	case SourceArtist:
		return e.Artist
	case SourceAlbum:
		return e.Album
	}
	return nil
}

// IsIndexedSource reports whether the tag names an inverted-index collection.
func IsIndexedSource(tag string) bool {
	for _, s := range IndexedSources {
		if s == tag {
			return true
		}
	}
	return false
}

// IsKnownSource reports whether the tag is a member of the fixed source set.
func IsKnownSource(tag string) bool {
	for _, s := range AllSources {
		if s == tag {
			return true
		}
	}
	return false
}
