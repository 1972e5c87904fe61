// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package brokered

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// mcID builds the stable identifier for a brokered item:
// "<source>_<sourceID>" or "<source>_<type>_<sourceID>" when a sub-type
// disambiguates. Empty source ids fall back to a content hash so mc_id is
// never empty.
func mcID(source, subtype, sourceID, fallbackSeed string) string {
	if sourceID == "" {
		return hashID(source, fallbackSeed)
	}
	if subtype != "" {
		return fmt.Sprintf("%s_%s_%s", source, subtype, sourceID)
	}
	return fmt.Sprintf("%s_%s", source, sourceID)
}

// hashID derives a deterministic id from arbitrary seed content.
func hashID(source, seed string) string {
	sum := md5.Sum([]byte(strings.ToLower(seed)))
	return fmt.Sprintf("%s_hash_%s", source, hex.EncodeToString(sum[:]))
}
