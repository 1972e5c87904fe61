// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package brokered

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mediacircle/searchd/internal/models"
)

const defaultMusicBaseURL = "https://ws.audioscrobbler.com/2.0"

// MusicClient searches the Last.fm API for artists and albums. One client
// serves both the artist and album sources; they differ only in the API
// method and result mapping.
type MusicClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewMusicClient builds the music provider client.
func NewMusicClient(apiKey, baseURL string, timeout time.Duration) *MusicClient {
	if baseURL == "" {
		baseURL = defaultMusicBaseURL
	}
	return &MusicClient{baseURL: baseURL, apiKey: apiKey, http: newHTTPClient(timeout)}
}

type lastfmImage struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

type artistSearchResponse struct {
	Results struct {
		ArtistMatches struct {
			Artist []struct {
				Name      string        `json:"name"`
				MBID      string        `json:"mbid"`
				URL       string        `json:"url"`
				Listeners string        `json:"listeners"`
				Image     []lastfmImage `json:"image"`
			} `json:"artist"`
		} `json:"artistmatches"`
	} `json:"results"`
}

type albumSearchResponse struct {
	Results struct {
		AlbumMatches struct {
			Album []struct {
				Name   string        `json:"name"`
				Artist string        `json:"artist"`
				MBID   string        `json:"mbid"`
				URL    string        `json:"url"`
				Image  []lastfmImage `json:"image"`
			} `json:"album"`
		} `json:"albummatches"`
	} `json:"results"`
}

func (c *MusicClient) params(method, field, text string, limit int) url.Values {
	params := url.Values{}
	params.Set("method", method)
	params.Set(field, text)
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	return params
}

// SearchArtists returns music artists matching the query text.
func (c *MusicClient) SearchArtists(ctx context.Context, text string, limit int) ([]models.ResultItem, error) {
	var resp artistSearchResponse
	if err := getJSON(ctx, c.http, c.baseURL+"/", c.params("artist.search", "artist", text, limit), &resp); err != nil {
		return nil, err
	}

	artists := resp.Results.ArtistMatches.Artist
	items := make([]models.ResultItem, 0, len(artists))
	for i, artist := range artists {
		listeners, _ := strconv.ParseInt(artist.Listeners, 10, 64)
		item := &models.BrokeredItem{
			Item: models.Item{
				MCID:        mcID("lastfm", "artist", artist.MBID, artist.Name),
				MCType:      models.MCTypePerson,
				MCSubtype:   models.MCSubTypeMusicArtist,
				Source:      "lastfm",
				SourceID:    artist.MBID,
				SearchTitle: artist.Name,
				Title:       artist.Name,
				Image:       largestImage(artist.Image),
				// Raw listener count; the popularity normalizer rescales it.
				Popularity: float64(listeners),
			},
			SortOrder: float64(i),
			Metrics:   map[string]any{"listeners": listeners},
			Links:     []models.Link{{Key: "lastfm", URL: artist.URL}},
		}
		if artist.MBID != "" {
			item.ExternalIDs = map[string]any{"mbid": artist.MBID}
		}
		items = append(items, item)
	}
	return items, nil
}

// SearchAlbums returns music albums matching the query text.
func (c *MusicClient) SearchAlbums(ctx context.Context, text string, limit int) ([]models.ResultItem, error) {
	var resp albumSearchResponse
	if err := getJSON(ctx, c.http, c.baseURL+"/", c.params("album.search", "album", text, limit), &resp); err != nil {
		return nil, err
	}

	albums := resp.Results.AlbumMatches.Album
	items := make([]models.ResultItem, 0, len(albums))
	for i, album := range albums {
		item := &models.BrokeredItem{
			Item: models.Item{
				MCID:        mcID("album", "", album.MBID, album.Artist+"_"+album.Name),
				MCType:      models.MCTypeMusicAlbum,
				Source:      "lastfm",
				SourceID:    album.MBID,
				SearchTitle: album.Name,
				Title:       album.Name,
				Image:       largestImage(album.Image),
			},
			SortOrder: float64(i),
			Links:     []models.Link{{Key: "lastfm", URL: album.URL}},
			Payload:   map[string]any{"artist": album.Artist},
		}
		if album.MBID != "" {
			item.ExternalIDs = map[string]any{"mbid": album.MBID}
		}
		items = append(items, item)
	}
	return items, nil
}

// largestImage picks the biggest rendition Last.fm offers.
func largestImage(images []lastfmImage) string {
	order := map[string]int{"small": 0, "medium": 1, "large": 2, "extralarge": 3, "mega": 4}
	best, bestRank := "", -1
	for _, img := range images {
		if img.URL == "" {
			continue
		}
		if rank := order[img.Size]; rank > bestRank {
			best, bestRank = img.URL, rank
		}
	}
	return best
}
