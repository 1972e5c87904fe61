// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package index

import (
	"strings"

	"github.com/mediacircle/searchd/internal/models"
)

// Document key prefixes per collection. Key layout is a contract with the
// ingestion pipelines: "<prefix><mc_id>".
const (
	keyPrefixMedia   = "media:"
	keyPrefixPerson  = "person:"
	keyPrefixPodcast = "podcast:"
	keyPrefixBook    = "book:"
	keyPrefixAuthor  = "author:"
)

// keyPrefixes maps source tags to their document key prefix.
var keyPrefixes = map[string]string{
	models.SourceTV:      keyPrefixMedia,
	models.SourceMovie:   keyPrefixMedia,
	models.SourcePerson:  keyPrefixPerson,
	models.SourcePodcast: keyPrefixPodcast,
	models.SourceBook:    keyPrefixBook,
	models.SourceAuthor:  keyPrefixAuthor,
}

// DocumentKey returns the index key for an mc_id in the given collection.
func DocumentKey(source, mcID string) string {
	return keyPrefixes[source] + mcID
}

// stripKeyPrefix recovers the mc_id from a document key.
func stripKeyPrefix(key string) string {
	for _, prefix := range []string{keyPrefixMedia, keyPrefixPerson, keyPrefixPodcast, keyPrefixBook, keyPrefixAuthor} {
		if strings.HasPrefix(key, prefix) {
			return key[len(prefix):]
		}
	}
	return key
}
