// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

/*
search.go - ordered-fallback catalog search

Locates movie and series items for an external id. Emby's id-field filters
are advisory: the server may over- or under-match, and provider-id key
casing varies between library scans, so every strategy re-verifies its
results through the provider-id matcher before accepting them.

Strategies run in order; each later one only fires when the previous
produced zero verified matches. Remote failures are logged and treated as
"strategy produced nothing" so later strategies still get a chance.
*/

package emby

import (
	"context"
	"net/url"
	"strconv"

	"github.com/streambridge/streambridge/internal/ids"
	"github.com/streambridge/streambridge/internal/logging"
	"github.com/streambridge/streambridge/internal/metrics"
	"github.com/streambridge/streambridge/internal/models"
)

const (
	movieSearchFields  = "ProviderIds,Name,OriginalTitle,MediaSources,Path"
	seriesSearchFields = "ProviderIds,Name,Id"
)

// searchStrategy is one lookup attempt. It returns the verified matches it
// found; an error means the attempt failed and the next strategy should run.
type searchStrategy struct {
	name string
	run  func(ctx context.Context) ([]models.EmbyItem, error)
}

// runStrategies executes strategies in order until one yields a verified
// match. Failures degrade to "nothing found"; the combinator never errors.
func runStrategies(ctx context.Context, strategies []searchStrategy) []models.EmbyItem {
	for _, s := range strategies {
		items, err := s.run(ctx)
		if err != nil {
			logging.Warn().Str("strategy", s.name).Err(err).Msg("Search strategy failed, trying next")
			continue
		}
		if len(items) > 0 {
			metrics.RecordIDFallback(s.name)
			return items
		}
	}
	metrics.RecordIDFallback("none")
	return nil
}

// FindMovie locates movie items matching the external id. Returns an empty
// slice when nothing matches; never an error.
func (c *Client) FindMovie(ctx context.Context, uc models.UserConfig, extID ids.ExternalID) []models.EmbyItem {
	target := ids.TargetFor(extID)
	if target.IsZero() {
		return nil
	}

	strategies := []searchStrategy{
		{name: string(extID.Family), run: func(ctx context.Context) ([]models.EmbyItem, error) {
			return c.searchByIDField(ctx, uc, extID, target, models.ItemTypeMovie, true)
		}},
	}

	// IMDb ids are sometimes stored bare-numeric; retry the field query
	// with the stripped form when it differs.
	if numeric := ids.NumericImdb(extID.Imdb()); extID.Imdb() != "" && numeric != extID.Imdb() {
		strategies = append(strategies, searchStrategy{name: "imdb_numeric", run: func(ctx context.Context) ([]models.EmbyItem, error) {
			numericID := extID
			numericID.Value = numeric
			return c.searchByIDField(ctx, uc, numericID, target, models.ItemTypeMovie, true)
		}})
	}

	strategies = append(strategies, searchStrategy{name: "any_provider", run: func(ctx context.Context) ([]models.EmbyItem, error) {
		return c.searchAnyProvider(ctx, uc, extID, target, models.ItemTypeMovie, true)
	}})

	return runStrategies(ctx, strategies)
}

// FindSeries locates series items matching the external id, using the
// narrow field set (no media fields needed at series level).
func (c *Client) FindSeries(ctx context.Context, uc models.UserConfig, extID ids.ExternalID) []models.EmbyItem {
	target := ids.TargetFor(extID)
	if target.IsZero() {
		return nil
	}

	strategies := []searchStrategy{
		{name: string(extID.Family), run: func(ctx context.Context) ([]models.EmbyItem, error) {
			return c.searchByIDField(ctx, uc, extID, target, models.ItemTypeSeries, false)
		}},
	}

	if numeric := ids.NumericImdb(extID.Imdb()); extID.Imdb() != "" && numeric != extID.Imdb() {
		strategies = append(strategies, searchStrategy{name: "imdb_numeric", run: func(ctx context.Context) ([]models.EmbyItem, error) {
			numericID := extID
			numericID.Value = numeric
			return c.searchByIDField(ctx, uc, numericID, target, models.ItemTypeSeries, false)
		}})
	}

	strategies = append(strategies, searchStrategy{name: "any_provider", run: func(ctx context.Context) ([]models.EmbyItem, error) {
		return c.searchAnyProvider(ctx, uc, extID, target, models.ItemTypeSeries, false)
	}})

	return runStrategies(ctx, strategies)
}

// searchByIDField issues a catalog search filtered by the single most
// specific id field (ImdbId/TmdbId/TvdbId/AniDbId), then re-verifies every
// hit through the matcher.
func (c *Client) searchByIDField(ctx context.Context, uc models.UserConfig, extID ids.ExternalID, target ids.ProviderIDTarget, itemType string, notFolder bool) ([]models.EmbyItem, error) {
	params := c.baseSearchParams(uc, itemType, notFolder)

	switch extID.Family {
	case ids.FamilyImdb:
		params.Set("ImdbId", extID.Value)
	case ids.FamilyTmdb:
		params.Set("TmdbId", extID.Value)
	case ids.FamilyTvdb:
		params.Set("TvdbId", extID.Value)
	case ids.FamilyAnidb:
		params.Set("AniDbId", extID.Value)
	default:
		return nil, nil
	}

	var resp models.EmbyItemsResponse
	if err := c.get(ctx, uc, "/Items", "/Items", params, &resp); err != nil {
		return nil, err
	}
	return filterMatches(resp.Items, target), nil
}

// searchAnyProvider issues one AnyProviderIdEquals request per candidate
// token formatting (lower-case and capitalized family, IMDb additionally in
// numeric form), stopping at the first verified match.
func (c *Client) searchAnyProvider(ctx context.Context, uc models.UserConfig, extID ids.ExternalID, target ids.ProviderIDTarget, itemType string, notFolder bool) ([]models.EmbyItem, error) {
	var lastErr error
	for _, attempt := range anyProviderAttempts(extID) {
		params := c.baseSearchParams(uc, itemType, notFolder)
		params.Set("AnyProviderIdEquals", attempt)

		var resp models.EmbyItemsResponse
		err := c.get(ctx, uc, "/Users/"+uc.UserID+"/Items", "/Users/{id}/Items", params, &resp)
		if err != nil {
			lastErr = err
			continue
		}
		if matched := filterMatches(resp.Items, target); len(matched) > 0 {
			return matched, nil
		}
	}
	return nil, lastErr
}

// anyProviderAttempts builds the ordered `<family>.<value>` attempt list.
func anyProviderAttempts(extID ids.ExternalID) []string {
	family := string(extID.Family)
	capitalized := capitalizeFamily(extID.Family)

	attempts := []string{
		family + "." + extID.Value,
		capitalized + "." + extID.Value,
	}
	if numeric := ids.NumericImdb(extID.Imdb()); extID.Imdb() != "" && numeric != extID.Imdb() {
		attempts = append(attempts,
			family+"."+numeric,
			capitalized+"."+numeric,
		)
	}
	return attempts
}

// capitalizeFamily renders the family token the way Emby capitalizes it in
// provider-id keys (Imdb, Tmdb, Tvdb, AniDb).
func capitalizeFamily(f ids.Family) string {
	switch f {
	case ids.FamilyImdb:
		return "Imdb"
	case ids.FamilyTmdb:
		return "Tmdb"
	case ids.FamilyTvdb:
		return "Tvdb"
	case ids.FamilyAnidb:
		return "AniDb"
	default:
		return string(f)
	}
}

// baseSearchParams assembles the shared id-lookup query parameters.
func (c *Client) baseSearchParams(uc models.UserConfig, itemType string, notFolder bool) url.Values {
	params := url.Values{}
	params.Set("IncludeItemTypes", itemType)
	params.Set("Recursive", "true")
	params.Set("Limit", strconv.Itoa(c.cfg.Emby.SearchLimit))
	params.Set("UserId", uc.UserID)
	if itemType == models.ItemTypeSeries {
		params.Set("Fields", seriesSearchFields)
	} else {
		params.Set("Fields", movieSearchFields)
	}
	if notFolder {
		params.Set("Filters", "IsNotFolder")
	}
	return params
}

// filterMatches re-verifies a result set through the provider-id matcher.
func filterMatches(items []models.EmbyItem, target ids.ProviderIDTarget) []models.EmbyItem {
	var matched []models.EmbyItem
	for i := range items {
		if ids.MatchesProviderIDs(items[i].ProviderIDs, target) {
			matched = append(matched, items[i])
		}
	}
	return matched
}
