// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package emby

import (
	"context"
	"net/url"

	"github.com/streambridge/streambridge/internal/logging"
	"github.com/streambridge/streambridge/internal/models"
)

// FindEpisode locates a specific episode of a resolved series via the
// season/episode hierarchy. Returns nil on any miss or remote failure:
// "not found" is an expected outcome at every step, never an error.
func (c *Client) FindEpisode(ctx context.Context, uc models.UserConfig, series models.EmbyItem, season, episode int) *models.EmbyItem {
	seasonItem := c.findSeason(ctx, uc, series, season)
	if seasonItem == nil {
		return nil
	}

	params := url.Values{}
	params.Set("SeasonId", seasonItem.ID)
	params.Set("UserId", uc.UserID)
	params.Set("Fields", "Id,IndexNumber,ParentIndexNumber,Name,ProviderIds,MediaSources,Path")

	var resp models.EmbyItemsResponse
	if err := c.get(ctx, uc, "/Shows/"+series.ID+"/Episodes", "/Shows/{id}/Episodes", params, &resp); err != nil {
		logging.Warn().Str("series", series.ID).Int("season", season).Err(err).Msg("Episode list fetch failed")
		return nil
	}

	for i := range resp.Items {
		ep := &resp.Items[i]
		// The parent-index double check guards against episodes the
		// server misfiles under the wrong season id.
		if intValue(ep.IndexNumber) == episode && intValue(ep.ParentIndexNumber) == season {
			return ep
		}
	}

	logging.Debug().Str("series", series.Name).Int("season", season).Int("episode", episode).Msg("Episode not found in season")
	return nil
}

// findSeason fetches the series' season list and picks the season with the
// requested index.
func (c *Client) findSeason(ctx context.Context, uc models.UserConfig, series models.EmbyItem, season int) *models.EmbyItem {
	params := url.Values{}
	params.Set("UserId", uc.UserID)
	params.Set("Fields", "Id,IndexNumber,Name")

	var resp models.EmbyItemsResponse
	if err := c.get(ctx, uc, "/Shows/"+series.ID+"/Seasons", "/Shows/{id}/Seasons", params, &resp); err != nil {
		logging.Warn().Str("series", series.ID).Err(err).Msg("Season list fetch failed")
		return nil
	}

	for i := range resp.Items {
		if intValue(resp.Items[i].IndexNumber) == season {
			return &resp.Items[i]
		}
	}

	logging.Debug().Str("series", series.Name).Int("season", season).Msg("Season not found")
	return nil
}

// intValue dereferences an optional wire integer; absent means -1 so it
// never equals a requested ordinal.
func intValue(p *int) int {
	if p == nil {
		return -1
	}
	return *p
}
