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

const defaultVideoBaseURL = "https://www.googleapis.com/youtube/v3"

// VideoClient searches the YouTube Data API.
type VideoClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewVideoClient builds the video provider client.
func NewVideoClient(apiKey, baseURL string, timeout time.Duration) *VideoClient {
	if baseURL == "" {
		baseURL = defaultVideoBaseURL
	}
	return &VideoClient{baseURL: baseURL, apiKey: apiKey, http: newHTTPClient(timeout)}
}

type videoSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
			Thumbnails   struct {
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// Search returns videos matching the query text.
func (c *VideoClient) Search(ctx context.Context, text string, limit int) ([]models.ResultItem, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("q", text)
	params.Set("maxResults", strconv.Itoa(limit))

	var resp videoSearchResponse
	if err := getJSON(ctx, c.http, c.baseURL+"/search", params, &resp); err != nil {
		return nil, err
	}

	items := make([]models.ResultItem, 0, len(resp.Items))
	for i, video := range resp.Items {
		item := &models.BrokeredItem{
			Item: models.Item{
				MCID:        mcID("youtube", "", video.ID.VideoID, video.Snippet.Title),
				MCType:      models.MCTypeVideo,
				Source:      "youtube",
				SourceID:    video.ID.VideoID,
				SearchTitle: video.Snippet.Title,
				Title:       video.Snippet.Title,
				Overview:    truncate(video.Snippet.Description, 500),
				Image:       video.Snippet.Thumbnails.High.URL,
			},
			SortOrder: float64(i),
			Links:     []models.Link{{Key: "watch", URL: "https://www.youtube.com/watch?v=" + video.ID.VideoID}},
			Payload: map[string]any{
				"channel_title": video.Snippet.ChannelTitle,
				"published_at":  video.Snippet.PublishedAt,
			},
		}
		items = append(items, item)
	}
	return items, nil
}
