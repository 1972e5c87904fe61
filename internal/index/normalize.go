// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package index

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mediacircle/searchd/internal/models"
	"github.com/mediacircle/searchd/pkg/stringutils"
)

var trailingNumericID = regexp.MustCompile(`_(\d+)$`)

// Normalize maps a raw index document to the public item shape for the
// given source. It injects mc_id, swaps title/search_title, converts unix
// timestamps, repairs legacy person ids, and precomputes the canonical
// name. It never introduces fields absent from the stored document.
func Normalize(source string, doc Doc) models.ResultItem {
	base := baseItem(doc)

	switch source {
	case models.SourceTV, models.SourceMovie:
		return normalizeMedia(doc, base)
	case models.SourcePerson:
		return normalizePerson(doc, base)
	case models.SourcePodcast:
		return normalizePodcast(doc, base)
	case models.SourceBook:
		return normalizeBook(doc, base)
	case models.SourceAuthor:
		return normalizeAuthor(doc, base)
	}
	return nil
}

func baseItem(doc Doc) models.Item {
	f := doc.Fields

	mcID := getString(f, "id")
	if mcID == "" {
		mcID = stripKeyPrefix(doc.ID)
	}

	item := models.Item{
		MCID:        mcID,
		MCType:      models.MCType(getString(f, "mc_type")),
		MCSubtype:   models.MCSubType(getString(f, "mc_subtype")),
		Source:      getString(f, "source"),
		SourceID:    getString(f, "source_id"),
		SearchTitle: getString(f, "search_title"),
		Title:       getString(f, "title"),
		Popularity:  getFloat(f, "popularity"),
		Rating:      getFloat(f, "rating"),
		Image:       getString(f, "image"),
		Overview:    getString(f, "overview"),
	}

	// title and search_title mirror each other: whichever the document
	// carries populates the other for display and ranking.
	if item.SearchTitle == "" && item.Title != "" {
		item.SearchTitle = item.Title
	} else if item.Title == "" && item.SearchTitle != "" {
		item.Title = item.SearchTitle
	}

	item.SetCanonicalName(stringutils.Canonicalize(item.SearchTitle))
	return item
}

func normalizeMedia(doc Doc, base models.Item) *models.MediaItem {
	f := doc.Fields
	item := &models.MediaItem{
		Item:            base,
		Year:            getInt(f, "year"),
		Genres:          getStrings(f, "genres"),
		Cast:            getStrings(f, "cast"),
		CastNames:       getStrings(f, "cast_names"),
		CastIDs:         getStrings(f, "cast_ids"),
		Keywords:        getStrings(f, "keywords"),
		OriginCountry:   getStrings(f, "origin_country"),
		ReleaseDate:     getString(f, "release_date"),
		FirstAirDate:    getString(f, "first_air_date"),
		LastAirDate:     getString(f, "last_air_date"),
		USRating:        getString(f, "us_rating"),
		Runtime:         getInt(f, "runtime"),
		NumberOfSeasons: getInt(f, "number_of_seasons"),
		Networks:        getStrings(f, "networks"),
		CreatedBy:       getStrings(f, "created_by"),
		SeriesStatus:    getString(f, "series_status"),
	}

	if wp, ok := f["watch_providers"].(map[string]any); ok {
		item.WatchProviders = wp
	}

	// Directors are a single credited object for movies, absent for tv.
	if item.MCType == models.MCTypeMovie {
		switch d := f["director"].(type) {
		case map[string]any:
			item.Director = &models.Director{Name: getString(d, "name"), ID: getString(d, "id")}
		case string:
			if d != "" {
				item.Director = &models.Director{Name: d}
			}
		}
	}

	return item
}

func normalizePerson(doc Doc, base models.Item) *models.PersonItem {
	f := doc.Fields
	item := &models.PersonItem{
		Item:               base,
		KnownForDepartment: getString(f, "known_for_department"),
		Birthday:           getString(f, "birthday"),
		Deathday:           getString(f, "deathday"),
		PlaceOfBirth:       getString(f, "place_of_birth"),
		Age:                getInt(f, "age"),
		IsDeceased:         getBool(f, "is_deceased"),
		KnownForTitles:     getStrings(f, "known_for_titles"),
		AlsoKnownAs:        getString(f, "also_known_as"),
	}

	// Legacy person documents predate the source-prefixed id scheme: repair
	// "person_17419" to "tmdb_person_17419" and recover source_id from the
	// trailing numeric id. Authors keep their OpenLibrary ids untouched.
	if item.MCSubtype != models.MCSubTypeAuthor {
		if strings.HasPrefix(item.MCID, "person_") {
			item.MCID = "tmdb_" + item.MCID
		}
		if item.SourceID == "" {
			if m := trailingNumericID.FindStringSubmatch(item.MCID); m != nil {
				item.SourceID = m[1]
			}
		}
	}

	return item
}

func normalizePodcast(doc Doc, base models.Item) *models.PodcastItem {
	f := doc.Fields
	return &models.PodcastItem{
		Item:           base,
		URL:            getString(f, "url"),
		Site:           getString(f, "site"),
		Author:         getString(f, "author"),
		Language:       getString(f, "language"),
		Categories:     getStrings(f, "categories"),
		EpisodeCount:   getInt(f, "episode_count"),
		ITunesID:       getInt64(f, "itunes_id"),
		PodcastGUID:    getString(f, "podcast_guid"),
		LastUpdateTime: getInt64(f, "last_update_time"),
	}
}

func normalizeBook(doc Doc, base models.Item) *models.BookItem {
	f := doc.Fields
	item := &models.BookItem{
		Item:               base,
		Author:             getString(f, "author"),
		AuthorName:         getStrings(f, "author_name"),
		ISBN:               getStrings(f, "isbn"),
		PrimaryISBN13:      getString(f, "primary_isbn13"),
		FirstPublishYear:   getInt(f, "first_publish_year"),
		Subjects:           getStrings(f, "subjects"),
		SubjectsNormalized: getStrings(f, "subjects_normalized"),
		RatingsAverage:     getFloat(f, "ratings_average"),
		RatingsCount:       getInt(f, "ratings_count"),
		PopularityScore:    getFloat(f, "popularity_score"),
		OpenLibraryKey:     getString(f, "openlibrary_key"),
	}

	if urls, ok := f["cover_urls"].(map[string]any); ok {
		item.CoverURLs = &models.CoverURLs{
			Small:  getString(urls, "small"),
			Medium: getString(urls, "medium"),
			Large:  getString(urls, "large"),
		}
	}

	// Synthesize covers from the OpenLibrary cover id when the document
	// carries no prebuilt URL set.
	if item.CoverURLs == nil {
		if coverID := getInt64(f, "cover_i"); coverID > 0 {
			base := "https://covers.openlibrary.org/b/id/" + strconv.FormatInt(coverID, 10)
			item.CoverURLs = &models.CoverURLs{
				Small:  base + "-S.jpg",
				Medium: base + "-M.jpg",
				Large:  base + "-L.jpg",
			}
		}
	}
	if item.OpenLibraryURL == "" && item.OpenLibraryKey != "" {
		key := item.OpenLibraryKey
		if !strings.HasPrefix(key, "/") {
			key = "/works/" + key
		}
		item.OpenLibraryURL = "https://openlibrary.org" + key
	}

	// Book documents rank on the composite popularity_score; it doubles as
	// the raw popularity when no dedicated field is stored.
	if item.Popularity == 0 {
		item.Popularity = item.PopularityScore
	}

	return item
}

func normalizeAuthor(doc Doc, base models.Item) *models.AuthorItem {
	f := doc.Fields
	item := &models.AuthorItem{
		Item:           base,
		Bio:            getString(f, "bio"),
		BirthDate:      getString(f, "birth_date"),
		DeathDate:      getString(f, "death_date"),
		WorkCount:      getInt(f, "work_count"),
		WikidataID:     getString(f, "wikidata_id"),
		OpenLibraryKey: getString(f, "openlibrary_key"),
		QualityScore:   getFloat(f, "quality_score"),
	}

	// Author documents store the display name under "name".
	if item.SearchTitle == "" {
		if name := getString(f, "name"); name != "" {
			item.SearchTitle = name
			item.Title = name
			item.SetCanonicalName(stringutils.Canonicalize(name))
		}
	}

	if item.Popularity == 0 {
		item.Popularity = item.QualityScore
	}

	return item
}

func getString(f map[string]any, key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func getFloat(f map[string]any, key string) float64 {
	switch v := f[key].(type) {
	case float64:
		return v
	case string:
		parsed, _ := strconv.ParseFloat(v, 64)
		return parsed
	case int64:
		return float64(v)
	}
	return 0
}

// getInt converts JSON numbers and numeric strings, truncating unix-second
// timestamps stored as floats to integers.
func getInt(f map[string]any, key string) int {
	return int(getFloat(f, key))
}

func getInt64(f map[string]any, key string) int64 {
	return int64(getFloat(f, key))
}

func getBool(f map[string]any, key string) bool {
	switch v := f[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	case float64:
		return v != 0
	}
	return false
}

// getStrings accepts both JSON arrays and the pipe-joined strings used by
// hash-backed legacy documents. Values are interned: genre, category, and
// subject names repeat across most documents.
func getStrings(f map[string]any, key string) []string {
	switch v := f[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return stringutils.InternAll(out)
	case []string:
		return stringutils.InternAll(v)
	case string:
		if v == "" {
			return nil
		}
		parts := strings.Split(v, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return stringutils.InternAll(parts)
	}
	return nil
}
