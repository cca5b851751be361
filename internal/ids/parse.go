// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

// Package ids parses Stremio content identifiers and matches them against
// Emby provider-id maps. Everything in this package is pure: no I/O, no
// shared state.
package ids

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the content kind a parsed identifier refers to.
type Kind string

const (
	KindMovie   Kind = "movie"
	KindSeries  Kind = "series"
	KindEpisode Kind = "episode"
	KindChannel Kind = "channel"
)

// Family is an external provider-id family.
type Family string

const (
	FamilyImdb  Family = "imdb"
	FamilyTmdb  Family = "tmdb"
	FamilyTvdb  Family = "tvdb"
	FamilyAnidb Family = "anidb"
)

// Parse errors. Callers treat all of them as "no result"; they never
// propagate past the resolution boundary.
var (
	ErrInvalidFormat     = errors.New("invalid id format")
	ErrUnsupportedPrefix = errors.New("unsupported id prefix")
	ErrMissingIDValue    = errors.New("missing id value")
	ErrUnsupportedBaseID = errors.New("unsupported base id")
	ErrIncompleteID      = errors.New("incomplete id")
)

// ExternalID is the parsed representation of an inbound identifier.
// Exactly one provider family is populated. Values are normalized: IMDb
// ids always carry the tt prefix.
type ExternalID struct {
	Kind    Kind
	Family  Family
	Value   string
	Season  int
	Episode int
}

// Imdb returns the tt-prefixed IMDb id, or "" for non-IMDb identifiers.
func (e ExternalID) Imdb() string {
	if e.Family == FamilyImdb {
		return e.Value
	}
	return ""
}

// Tmdb returns the TMDB id, or "" for non-TMDB identifiers.
func (e ExternalID) Tmdb() string {
	if e.Family == FamilyTmdb {
		return e.Value
	}
	return ""
}

// Tvdb returns the TVDB id, or "" for non-TVDB identifiers.
func (e ExternalID) Tvdb() string {
	if e.Family == FamilyTvdb {
		return e.Value
	}
	return ""
}

// Anidb returns the AniDB id, or "" for non-AniDB identifiers.
func (e ExternalID) Anidb() string {
	if e.Family == FamilyAnidb {
		return e.Value
	}
	return ""
}

// String renders the id back in its canonical inbound form.
func (e ExternalID) String() string {
	base := e.Value
	if e.Family != FamilyImdb {
		base = string(e.Family) + ":" + e.Value
	}
	if e.Kind == KindEpisode {
		return fmt.Sprintf("%s:%d:%d", base, e.Season, e.Episode)
	}
	return base
}

// Parse parses a raw Stremio content id into an ExternalID.
//
// Accepted shapes:
//   - tt<digits>                      bare IMDb movie/series id
//   - <family>:<value>                imdb/tmdb/tvdb/anidb prefixed
//   - <base>:<season>:<episode>       episode form, base is either of the above
//
// Fallback ids (emby~...) are not handled here; see DecodeFallbackID.
func Parse(raw string) (ExternalID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ExternalID{}, ErrIncompleteID
	}

	parts := strings.Split(raw, ":")
	var id ExternalID
	var err error

	switch len(parts) {
	case 1:
		id, err = parseBase(parts[0])
		if err != nil {
			return ExternalID{}, err
		}
		id.Kind = KindMovie
	case 2:
		id, err = parsePrefixed(parts[0], parts[1])
		if err != nil {
			return ExternalID{}, err
		}
		id.Kind = KindMovie
	case 3:
		// Single-token base: tt123:2:5.
		id, err = parseBase(parts[0])
		if err != nil {
			return ExternalID{}, err
		}
		if err = fillEpisode(&id, parts[1], parts[2]); err != nil {
			return ExternalID{}, err
		}
	case 4:
		// Prefixed base: tmdb:603:2:5.
		id, err = parsePrefixed(parts[0], parts[1])
		if err != nil {
			return ExternalID{}, err
		}
		if err = fillEpisode(&id, parts[2], parts[3]); err != nil {
			return ExternalID{}, err
		}
	default:
		return ExternalID{}, fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
	}

	return id, nil
}

// fillEpisode marks the id as an episode reference and parses the
// season/episode ordinals.
func fillEpisode(id *ExternalID, season, episode string) error {
	id.Kind = KindEpisode
	s, err := strconv.Atoi(season)
	if err != nil {
		return fmt.Errorf("%w: season %q", ErrInvalidFormat, season)
	}
	e, err := strconv.Atoi(episode)
	if err != nil {
		return fmt.Errorf("%w: episode %q", ErrInvalidFormat, episode)
	}
	id.Season, id.Episode = s, e
	return nil
}

// parsePrefixed handles the explicit <family>:<value> form.
func parsePrefixed(prefix, value string) (ExternalID, error) {
	if value == "" {
		return ExternalID{}, fmt.Errorf("%w: %q", ErrMissingIDValue, prefix+":")
	}
	switch Family(strings.ToLower(prefix)) {
	case FamilyImdb:
		return ExternalID{Family: FamilyImdb, Value: normalizeImdb(value)}, nil
	case FamilyTmdb:
		return ExternalID{Family: FamilyTmdb, Value: value}, nil
	case FamilyTvdb:
		return ExternalID{Family: FamilyTvdb, Value: value}, nil
	case FamilyAnidb:
		return ExternalID{Family: FamilyAnidb, Value: value}, nil
	default:
		return ExternalID{}, fmt.Errorf("%w: %q", ErrUnsupportedPrefix, prefix)
	}
}

// parseBase handles a single-token base id, deriving the family from a
// recognized prefix (tt, imdb, tmdb, tvdb, anidb).
func parseBase(base string) (ExternalID, error) {
	lower := strings.ToLower(base)
	switch {
	case strings.HasPrefix(base, "tt"):
		return ExternalID{Family: FamilyImdb, Value: base}, nil
	case strings.HasPrefix(lower, "imdb"):
		return ExternalID{Family: FamilyImdb, Value: normalizeImdb(base[4:])}, nil
	case strings.HasPrefix(lower, "tmdb"):
		return externalFromBare(FamilyTmdb, base[4:])
	case strings.HasPrefix(lower, "tvdb"):
		return externalFromBare(FamilyTvdb, base[4:])
	case strings.HasPrefix(lower, "anidb"):
		return externalFromBare(FamilyAnidb, base[5:])
	default:
		return ExternalID{}, fmt.Errorf("%w: %q", ErrUnsupportedBaseID, base)
	}
}

func externalFromBare(family Family, value string) (ExternalID, error) {
	// Tolerate an optional separator left over from sloppy callers
	// ("tmdb-603"), but reject an empty remainder.
	value = strings.TrimLeft(value, ":-")
	if value == "" {
		return ExternalID{}, fmt.Errorf("%w: %s", ErrMissingIDValue, family)
	}
	return ExternalID{Family: family, Value: value}, nil
}

// normalizeImdb ensures the internal IMDb representation carries the tt
// prefix. Comparisons elsewhere accept both prefixed and bare forms.
func normalizeImdb(v string) string {
	if v == "" || strings.HasPrefix(v, "tt") {
		return v
	}
	return "tt" + v
}

// NumericImdb strips the tt prefix from an IMDb id. Returns the input
// unchanged when there is no prefix.
func NumericImdb(v string) string {
	return strings.TrimPrefix(v, "tt")
}
