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

const defaultRatingsBaseURL = "https://api.watchmode.com/v1"

// RatingsClient searches the Watchmode title API for cross-provider
// ratings lookups.
type RatingsClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewRatingsClient builds the ratings provider client.
func NewRatingsClient(apiKey, baseURL string, timeout time.Duration) *RatingsClient {
	if baseURL == "" {
		baseURL = defaultRatingsBaseURL
	}
	return &RatingsClient{baseURL: baseURL, apiKey: apiKey, http: newHTTPClient(timeout)}
}

type ratingsSearchResponse struct {
	TitleResults []struct {
		ID           int64   `json:"id"`
		Name         string  `json:"name"`
		Type         string  `json:"type"`
		Year         int     `json:"year"`
		IMDBID       string  `json:"imdb_id"`
		TMDBID       int64   `json:"tmdb_id"`
		UserRating   float64 `json:"user_rating"`
		CriticsScore float64 `json:"critic_score"`
	} `json:"title_results"`
}

// Search returns rated titles matching the query text.
func (c *RatingsClient) Search(ctx context.Context, text string, limit int) ([]models.ResultItem, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("search_field", "name")
	params.Set("search_value", text)

	var resp ratingsSearchResponse
	if err := getJSON(ctx, c.http, c.baseURL+"/search/", params, &resp); err != nil {
		return nil, err
	}

	results := resp.TitleResults
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	items := make([]models.ResultItem, 0, len(results))
	for i, title := range results {
		mcType := models.MCTypeMovie
		if title.Type == "tv_series" || title.Type == "tv_miniseries" {
			mcType = models.MCTypeTV
		}

		sourceID := strconv.FormatInt(title.ID, 10)
		item := &models.BrokeredItem{
			Item: models.Item{
				MCID:        mcID("watchmode", string(mcType), sourceID, title.Name),
				MCType:      mcType,
				Source:      "watchmode",
				SourceID:    sourceID,
				SearchTitle: title.Name,
				Title:       title.Name,
				Rating:      title.UserRating,
				// Raw 0-10 user rating; the popularity normalizer rescales it.
				Popularity: title.UserRating,
			},
			SortOrder: float64(i),
			Metrics: map[string]any{
				"user_rating":  title.UserRating,
				"critic_score": title.CriticsScore,
			},
			ExternalIDs: map[string]any{},
			Payload:     map[string]any{"year": title.Year},
		}
		if title.IMDBID != "" {
			item.ExternalIDs["imdb_id"] = title.IMDBID
		}
		if title.TMDBID != 0 {
			item.ExternalIDs["tmdb_id"] = title.TMDBID
		}
		items = append(items, item)
	}
	return items, nil
}
