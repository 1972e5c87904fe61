// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package index

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/mediacircle/searchd/internal/models"
)

// ErrNotFound marks an mc_id with no backing document in any collection.
var ErrNotFound = errors.New("document not found")

// GetDocument fetches one JSON document by key. redis.Nil and an empty
// JSON path both map to ErrNotFound; connection failures to ErrUnavailable.
func (c *Client) GetDocument(ctx context.Context, key string) (map[string]any, error) {
	raw, err := c.rdb.Do(ctx, "JSON.GET", key, "$").Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}

	// JSON.GET with a root path returns an array of matches.
	var docs []map[string]any
	if err := json.Unmarshal([]byte(raw), &docs); err != nil || len(docs) == 0 {
		var doc map[string]any
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, errors.Wrap(err, "decode document")
		}
		return doc, nil
	}
	return docs[0], nil
}

// Lookup resolves an mc_id to its normalized item, trying candidate
// collections inferred from the id shape. The raw document fields are
// returned alongside for detail-only payloads.
func Lookup(ctx context.Context, client *Client, mcID string) (models.ResultItem, map[string]any, error) {
	seen := make(map[string]struct{}, 4)
	for _, source := range candidateSources(mcID) {
		key := DocumentKey(source, mcID)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		fields, err := client.GetDocument(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		doc := Doc{ID: key, Fields: fields}
		return Normalize(documentSource(source, fields), doc), fields, nil
	}
	return nil, nil, ErrNotFound
}

// candidateSources orders the collections to probe for an mc_id. The id
// shape usually pins the collection; ambiguous ids fall back to the full
// indexed set.
func candidateSources(mcID string) []string {
	id := strings.ToLower(mcID)
	switch {
	case strings.Contains(id, "person"):
		return []string{models.SourcePerson, models.SourceAuthor}
	case strings.Contains(id, "podcast"):
		return []string{models.SourcePodcast}
	case strings.Contains(id, "author"):
		return []string{models.SourceAuthor, models.SourceBook}
	case strings.Contains(id, "book") || strings.Contains(id, "openlibrary"):
		return []string{models.SourceBook, models.SourceAuthor}
	case strings.Contains(id, "tv"):
		return []string{models.SourceTV}
	case strings.Contains(id, "movie"):
		return []string{models.SourceMovie}
	}
	return models.IndexedSources
}

// documentSource refines the probed collection with the document's own
// mc_type, which disambiguates tv vs movie within the shared media keyspace.
func documentSource(probed string, fields map[string]any) string {
	if probed != models.SourceTV && probed != models.SourceMovie {
		return probed
	}
	if mcType, _ := fields["mc_type"].(string); mcType == string(models.MCTypeTV) {
		return models.SourceTV
	}
	if mcType, _ := fields["mc_type"].(string); mcType == string(models.MCTypeMovie) {
		return models.SourceMovie
	}
	return probed
}
