// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/mediacircle/searchd/internal/index"
	"github.com/mediacircle/searchd/internal/models"
)

// DetailsRequest is the POST /api/details body.
type DetailsRequest struct {
	MCID       string `json:"mc_id"`
	RSSDetails bool   `json:"rss_details,omitempty"`
}

// podcastDetailsResponse echoes the indexed RSS payload alongside the
// podcast item when rss_details is requested.
type podcastDetailsResponse struct {
	*models.PodcastItem
	RSS any `json:"rss,omitempty"`
}

// DetailsHandler serves single-item detail lookups from the index.
type DetailsHandler struct {
	client *index.Client
}

// NewDetailsHandler creates the details handler.
func NewDetailsHandler(client *index.Client) *DetailsHandler {
	return &DetailsHandler{client: client}
}

// Details handles POST /api/details
func (h *DetailsHandler) Details(w http.ResponseWriter, r *http.Request) {
	var req DetailsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	mcID := strings.TrimSpace(req.MCID)
	if mcID == "" {
		RespondError(w, http.StatusBadRequest, "mc_id is required")
		return
	}

	item, fields, err := index.Lookup(r.Context(), h.client, mcID)
	if err != nil {
		switch {
		case errors.Is(err, index.ErrNotFound):
			RespondError(w, http.StatusNotFound, "Unknown mc_id: "+mcID)
		case errors.Is(err, index.ErrUnavailable):
			log.Error().Err(err).Str("mcID", mcID).Msg("Index unavailable for details lookup")
			RespondError(w, http.StatusServiceUnavailable, "Search index unavailable")
		default:
			log.Error().Err(err).Str("mcID", mcID).Msg("Details lookup failed")
			RespondError(w, http.StatusInternalServerError, "Details lookup failed")
		}
		return
	}

	if podcast, ok := item.(*models.PodcastItem); ok && req.RSSDetails {
		RespondJSON(w, http.StatusOK, podcastDetailsResponse{
			PodcastItem: podcast,
			RSS:         fields["rss"],
		})
		return
	}

	RespondJSON(w, http.StatusOK, item)
}
