// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package models defines the public item shapes shared by the index, the
// brokered providers, and both transports. Field names follow the wire
// contract the mobile clients already consume.
package models

// MCType identifies the content type of an item.
type MCType string

const (
	MCTypeMovie       MCType = "movie"
	MCTypeTV          MCType = "tv"
	MCTypePerson      MCType = "person"
	MCTypePodcast     MCType = "podcast"
	MCTypeBook        MCType = "book"
	MCTypeNewsArticle MCType = "news_article"
	MCTypeVideo       MCType = "video"
	MCTypeMusicAlbum  MCType = "music_album"
)

// MCSubType refines person items.
type MCSubType string

const (
	MCSubTypeActor       MCSubType = "actor"
	MCSubTypeDirector    MCSubType = "director"
	MCSubTypeWriter      MCSubType = "writer"
	MCSubTypeAuthor      MCSubType = "author"
	MCSubTypeMusicArtist MCSubType = "music_artist"
	MCSubTypePodcaster   MCSubType = "podcaster"
)

// Item is the base shape shared by every result.
//
// MCID is stable across the lifetime of a document; two items with equal
// MCID must be treated as the same entity.
type Item struct {
	MCID        string    `json:"mc_id"`
	MCType      MCType    `json:"mc_type"`
	MCSubtype   MCSubType `json:"mc_subtype,omitempty"`
	Source      string    `json:"source,omitempty"`
	SourceID    string    `json:"source_id,omitempty"`
	SearchTitle string    `json:"search_title"`
	Title       string    `json:"title,omitempty"`
	Popularity  float64   `json:"popularity"`
	Rating      float64   `json:"rating,omitempty"`
	Image       string    `json:"image,omitempty"`
	Overview    string    `json:"overview,omitempty"`

	// canonicalName is precomputed during normalization so the exact-match
	// arbiter does not re-normalize per comparison. Never serialized.
	canonicalName string
}

// SetCanonicalName stores the canonicalized primary name of the item.
func (i *Item) SetCanonicalName(name string) { i.canonicalName = name }

// CanonicalName returns the canonicalized primary name of the item.
func (i *Item) CanonicalName() string { return i.canonicalName }

// ResultItem is implemented by every typed item so heterogeneous result
// lists can flow through the orchestrator and transports uniformly.
type ResultItem interface {
	Base() *Item
}

// CastCredit is a {name, id} pair used in exact-match payloads where the
// flat cast name list is zipped with cast_ids.
type CastCredit struct {
	Name string  `json:"name"`
	ID   *string `json:"id"`
}

// Director identifies the single credited director of a movie.
type Director struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

// MediaItem is a movie or television series served from the index.
type MediaItem struct {
	Item

	Year            int             `json:"year,omitempty"`
	Genres          []string        `json:"genres,omitempty"`
	Cast            []string        `json:"cast,omitempty"`
	CastNames       []string        `json:"cast_names,omitempty"`
	CastIDs         []string        `json:"cast_ids,omitempty"`
	Director        *Director       `json:"director,omitempty"`
	Keywords        []string        `json:"keywords,omitempty"`
	OriginCountry   []string        `json:"origin_country,omitempty"`
	ReleaseDate     string          `json:"release_date,omitempty"`
	FirstAirDate    string          `json:"first_air_date,omitempty"`
	LastAirDate     string          `json:"last_air_date,omitempty"`
	USRating        string          `json:"us_rating,omitempty"`
	Runtime         int             `json:"runtime,omitempty"`
	NumberOfSeasons int             `json:"number_of_seasons,omitempty"`
	Networks        []string        `json:"networks,omitempty"`
	CreatedBy       []string        `json:"created_by,omitempty"`
	SeriesStatus    string          `json:"series_status,omitempty"`
	WatchProviders  map[string]any  `json:"watch_providers,omitempty"`
}

func (m *MediaItem) Base() *Item { return &m.Item }

// PersonItem is an actor, director, writer, or other person from the index.
type PersonItem struct {
	Item

	KnownForDepartment string   `json:"known_for_department,omitempty"`
	Birthday           string   `json:"birthday,omitempty"`
	Deathday           string   `json:"deathday,omitempty"`
	PlaceOfBirth       string   `json:"place_of_birth,omitempty"`
	Age                int      `json:"age,omitempty"`
	IsDeceased         bool     `json:"is_deceased,omitempty"`
	KnownForTitles     []string `json:"known_for_titles,omitempty"`
	// AlsoKnownAs is pipe-separated alternate names, matching the stored
	// document format.
	AlsoKnownAs string `json:"also_known_as,omitempty"`
}

func (p *PersonItem) Base() *Item { return &p.Item }

// PodcastItem is a podcast feed from the index.
type PodcastItem struct {
	Item

	URL            string   `json:"url,omitempty"`
	Site           string   `json:"site,omitempty"`
	Author         string   `json:"author,omitempty"`
	Language       string   `json:"language,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	EpisodeCount   int      `json:"episode_count,omitempty"`
	ITunesID       int64    `json:"itunes_id,omitempty"`
	PodcastGUID    string   `json:"podcast_guid,omitempty"`
	LastUpdateTime int64    `json:"last_update_time,omitempty"`
}

func (p *PodcastItem) Base() *Item { return &p.Item }

// CoverURLs holds the book cover image set.
type CoverURLs struct {
	Small  string `json:"small,omitempty"`
	Medium string `json:"medium,omitempty"`
	Large  string `json:"large,omitempty"`
}

// BookItem is an OpenLibrary work from the index.
type BookItem struct {
	Item

	Author             string     `json:"author,omitempty"`
	AuthorName         []string   `json:"author_name,omitempty"`
	ISBN               []string   `json:"isbn,omitempty"`
	PrimaryISBN13      string     `json:"primary_isbn13,omitempty"`
	FirstPublishYear   int        `json:"first_publish_year,omitempty"`
	Subjects           []string   `json:"subjects,omitempty"`
	SubjectsNormalized []string   `json:"subjects_normalized,omitempty"`
	RatingsAverage     float64    `json:"ratings_average,omitempty"`
	RatingsCount       int        `json:"ratings_count,omitempty"`
	CoverURLs          *CoverURLs `json:"cover_urls,omitempty"`
	PopularityScore    float64    `json:"popularity_score,omitempty"`
	OpenLibraryKey     string     `json:"openlibrary_key,omitempty"`
	OpenLibraryURL     string     `json:"openlibrary_url,omitempty"`
}

func (b *BookItem) Base() *Item { return &b.Item }

// AuthorItem is an OpenLibrary author from the index.
type AuthorItem struct {
	Item

	Bio            string  `json:"bio,omitempty"`
	BirthDate      string  `json:"birth_date,omitempty"`
	DeathDate      string  `json:"death_date,omitempty"`
	WorkCount      int     `json:"work_count,omitempty"`
	WikidataID     string  `json:"wikidata_id,omitempty"`
	OpenLibraryKey string  `json:"openlibrary_key,omitempty"`
	QualityScore   float64 `json:"quality_score,omitempty"`
}

func (a *AuthorItem) Base() *Item { return &a.Item }
