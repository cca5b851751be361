// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package ids

import "strings"

// ProviderIDTarget carries the external ids a remote item must match.
// Empty fields are not compared.
type ProviderIDTarget struct {
	Imdb  string
	Tmdb  string
	Tvdb  string
	Anidb string
}

// TargetFor builds a ProviderIDTarget from a parsed ExternalID.
func TargetFor(id ExternalID) ProviderIDTarget {
	return ProviderIDTarget{
		Imdb:  id.Imdb(),
		Tmdb:  id.Tmdb(),
		Tvdb:  id.Tvdb(),
		Anidb: id.Anidb(),
	}
}

// IsZero reports whether no target id is set.
func (t ProviderIDTarget) IsZero() bool {
	return t.Imdb == "" && t.Tmdb == "" && t.Tvdb == "" && t.Anidb == ""
}

// MatchesProviderIDs decides whether an Emby provider-id map references any
// of the target ids. Emby is inconsistent about key casing (Imdb/imdb/IMDB)
// and about storing IMDb ids with or without the tt prefix, so every
// comparison is tried across key-casing variants, and IMDb additionally in
// its bare numeric form. A nil or empty map never matches and never panics.
func MatchesProviderIDs(providerIDs map[string]string, target ProviderIDTarget) bool {
	if len(providerIDs) == 0 {
		return false
	}

	if target.Imdb != "" {
		if providerValueEquals(providerIDs, "Imdb", target.Imdb) {
			return true
		}
		if numeric := NumericImdb(target.Imdb); numeric != target.Imdb &&
			providerValueEquals(providerIDs, "Imdb", numeric) {
			return true
		}
	}
	if target.Tmdb != "" && providerValueEquals(providerIDs, "Tmdb", target.Tmdb) {
		return true
	}
	if target.Tvdb != "" && providerValueEquals(providerIDs, "Tvdb", target.Tvdb) {
		return true
	}
	if target.Anidb != "" && providerValueEquals(providerIDs, "AniDb", target.Anidb) {
		return true
	}
	return false
}

// providerValueEquals compares want against the map entry for key under any
// casing of the key, case-insensitively on the value.
func providerValueEquals(providerIDs map[string]string, key, want string) bool {
	for k, v := range providerIDs {
		if strings.EqualFold(k, key) && strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
