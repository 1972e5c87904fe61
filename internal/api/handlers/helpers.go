// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mediacircle/searchd/internal/models"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("Failed to encode JSON response")
		}
	}
}

// RespondError sends an error response
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{
		Error: message,
	})
}

// DecodeJSON decodes the request body into the provided struct.
// Returns false if decoding fails (error already sent to client).
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, dest *T) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// ParseSearchRequest extracts the shared query parameters of the search and
// autocomplete endpoints. Returns false when a parameter is malformed
// (error already sent).
func ParseSearchRequest(w http.ResponseWriter, r *http.Request, mode models.Mode, defaultLimit, maxLimit int) (models.Request, bool) {
	q := r.URL.Query()

	req := models.Request{
		Query: q.Get("q"),
		Mode:  mode,
		Limit: defaultLimit,
	}

	if v := q.Get("raw"); v != "" {
		raw, err := strconv.ParseBool(v)
		if err != nil {
			RespondError(w, http.StatusBadRequest, "Invalid raw parameter")
			return models.Request{}, false
		}
		req.Raw = raw
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			RespondError(w, http.StatusBadRequest, "Invalid limit parameter")
			return models.Request{}, false
		}
		if limit > maxLimit {
			limit = maxLimit
		}
		req.Limit = limit
	}

	if v := q.Get("sources"); v != "" {
		for _, token := range strings.Split(v, ",") {
			tag := strings.ToLower(strings.TrimSpace(token))
			if tag == "" {
				continue
			}
			if !models.IsKnownSource(tag) {
				RespondError(w, http.StatusBadRequest, "Unknown source: "+tag)
				return models.Request{}, false
			}
			req.Sources = append(req.Sources, tag)
		}
	}

	req.Filters = q.Get("filters")
	return req, true
}
