// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

// Link is a keyed external link attached to a brokered item.
type Link struct {
	Key         string `json:"key,omitempty"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Image is a keyed image attached to a brokered item.
type Image struct {
	Key         string `json:"key,omitempty"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// BrokeredItem is the common envelope for items served by external
// providers (news, video, ratings, artist, album). Provider-specific
// payload rides in Payload so adapters never have to invent new top-level
// fields.
type BrokeredItem struct {
	Item

	Links       []Link         `json:"links,omitempty"`
	Images      []Image        `json:"images,omitempty"`
	Metrics     map[string]any `json:"metrics,omitempty"`
	ExternalIDs map[string]any `json:"external_ids,omitempty"`
	Error       string         `json:"error,omitempty"`
	StatusCode  int            `json:"status_code,omitempty"`
	SortOrder   float64        `json:"sort_order,omitempty"`

	Payload map[string]any `json:"payload,omitempty"`
}

func (b *BrokeredItem) Base() *Item { return &b.Item }
