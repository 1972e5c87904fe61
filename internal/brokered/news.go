// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package brokered

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/mediacircle/searchd/internal/models"
)

const defaultNewsBaseURL = "https://eventregistry.org"

// NewsClient searches the Event Registry article API.
type NewsClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewNewsClient builds the news provider client. baseURL is overridable
// for tests; empty selects the production endpoint.
func NewNewsClient(apiKey, baseURL string, timeout time.Duration) *NewsClient {
	if baseURL == "" {
		baseURL = defaultNewsBaseURL
	}
	return &NewsClient{baseURL: baseURL, apiKey: apiKey, http: newHTTPClient(timeout)}
}

type newsSearchResponse struct {
	Articles struct {
		Results []struct {
			URI       string  `json:"uri"`
			Title     string  `json:"title"`
			Body      string  `json:"body"`
			URL       string  `json:"url"`
			Image     string  `json:"image"`
			Date      string  `json:"date"`
			Sentiment float64 `json:"sentiment"`
			Source    struct {
				Title string `json:"title"`
			} `json:"source"`
		} `json:"results"`
	} `json:"articles"`
}

// Search returns news articles matching the query text.
func (c *NewsClient) Search(ctx context.Context, text string, limit int) ([]models.ResultItem, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("resultType", "articles")
	params.Set("keyword", text)
	params.Set("articlesCount", strconv.Itoa(limit))
	params.Set("lang", "eng")

	var resp newsSearchResponse
	if err := getJSON(ctx, c.http, c.baseURL+"/api/v1/article/getArticles", params, &resp); err != nil {
		return nil, err
	}

	items := make([]models.ResultItem, 0, len(resp.Articles.Results))
	for i, article := range resp.Articles.Results {
		item := &models.BrokeredItem{
			Item: models.Item{
				MCID:        mcID("news", "", article.URI, article.URL),
				MCType:      models.MCTypeNewsArticle,
				Source:      "newsai",
				SourceID:    article.URI,
				SearchTitle: article.Title,
				Title:       article.Title,
				Overview:    truncate(article.Body, 500),
				Image:       article.Image,
			},
			SortOrder: float64(i),
			Metrics:   map[string]any{"sentiment": article.Sentiment},
			Links:     []models.Link{{Key: "article", URL: article.URL}},
			Payload: map[string]any{
				"published_date": article.Date,
				"source_name":    article.Source.Title,
			},
		}
		if article.Image != "" {
			item.Images = []models.Image{{Key: "main", URL: article.Image}}
		}
		items = append(items, item)
	}
	return items, nil
}

// truncate caps s at max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
