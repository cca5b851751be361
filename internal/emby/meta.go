// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

/*
meta.go - addon meta objects

Resolves meta requests to Stremio meta objects: provider-id derivation
for catalog entry ids, display-name cleanup, image URLs and full episode
lists for series. Series without usable external ids carry synthesized
fallback video ids so episode playback still routes through the bridge.
*/

package emby

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/streambridge/streambridge/internal/ids"
	"github.com/streambridge/streambridge/internal/logging"
	"github.com/streambridge/streambridge/internal/models"
)

// fallbackEpisodeLimit bounds the single episode query used to build a
// series video list.
const fallbackEpisodeLimit = 3000

// GetMeta resolves a meta request to a full meta object, or nil when the
// item cannot be located. Series metas carry their episode list.
func (c *Client) GetMeta(ctx context.Context, uc models.UserConfig, rawID, stremioType string) *models.Meta {
	if err := ValidateUserConfig(uc); err != nil {
		return nil
	}

	item := c.locateMetaItem(ctx, uc, rawID, stremioType)
	if item == nil {
		return nil
	}

	meta := c.mapItemToMeta(*item, stremioType, uc)
	meta.ID = rawID
	if stremioType == "series" {
		meta.Videos = c.seriesVideos(ctx, uc, *item, rawID)
	}
	return &meta
}

func (c *Client) locateMetaItem(ctx context.Context, uc models.UserConfig, rawID, stremioType string) *models.EmbyItem {
	if ids.IsFallbackID(rawID) {
		kind, embyID, err := ids.DecodeFallbackID(rawID)
		if err != nil {
			logging.Debug().Str("id", rawID).Err(err).Msg("Fallback id decode failed")
			return nil
		}
		if kind == ids.KindChannel {
			return nil
		}
		return c.FetchItem(ctx, uc, embyID)
	}

	extID, err := ids.Parse(rawID)
	if err != nil {
		logging.Debug().Str("id", rawID).Err(err).Msg("Meta id parse failed")
		return nil
	}

	var matches []models.EmbyItem
	if stremioType == "series" {
		matches = c.FindSeries(ctx, uc, extID)
	} else {
		matches = c.FindMovie(ctx, uc, extID)
	}
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}

// seriesVideos builds the episode list for a series meta. For external-id
// metas the video ids are `<base>:<season>:<episode>` so stream requests
// parse back to the same series; fallback-id metas instead mint one
// fallback id per episode, since the suffix form only exists for external
// ids.
func (c *Client) seriesVideos(ctx context.Context, uc models.UserConfig, series models.EmbyItem, baseID string) []models.MetaVideo {
	fallbackBase := ids.IsFallbackID(baseID)
	params := url.Values{}
	params.Set("UserId", uc.UserID)
	params.Set("Fields", "Id,Name,Overview,IndexNumber,ParentIndexNumber,PremiereDate,ImageTags")
	params.Set("SortBy", "ParentIndexNumber,IndexNumber,SortName")
	params.Set("SortOrder", "Ascending")
	params.Set("ImageTypeLimit", "1")
	params.Set("EnableImageTypes", "Primary")
	params.Set("Limit", strconv.Itoa(fallbackEpisodeLimit))

	var resp models.EmbyItemsResponse
	if err := c.get(ctx, uc, "/Shows/"+series.ID+"/Episodes", "/Shows/{id}/Episodes", params, &resp); err != nil {
		logging.Warn().Str("series_id", series.ID).Err(err).Msg("Series episode listing failed")
		return nil
	}

	// Episodes missing index numbers still get stable, ordered positions:
	// season defaults to 1 and episode to a running counter.
	counter := 0
	videos := make([]models.MetaVideo, 0, len(resp.Items))
	for i := range resp.Items {
		ep := resp.Items[i]
		counter++
		season, episode := 1, counter
		if ep.ParentIndexNumber != nil {
			season = *ep.ParentIndexNumber
		}
		if ep.IndexNumber != nil {
			episode = *ep.IndexNumber
		}

		title := ep.Name
		if title == "" {
			title = fmt.Sprintf("Episode %d", episode)
		}

		videoID := fmt.Sprintf("%s:%d:%d", baseID, season, episode)
		if fallbackBase {
			videoID = ids.EncodeFallbackID(ids.KindEpisode, ep.ID)
		}

		videos = append(videos, models.MetaVideo{
			ID:        videoID,
			Title:     title,
			Season:    season,
			Episode:   episode,
			Overview:  ep.Overview,
			Released:  ep.PremiereDate,
			Thumbnail: c.primaryImageURL(ep, uc),
		})
	}

	sort.SliceStable(videos, func(i, j int) bool {
		if videos[i].Season != videos[j].Season {
			return videos[i].Season < videos[j].Season
		}
		return videos[i].Episode < videos[j].Episode
	})
	return videos
}

// mapItemToMeta converts an Emby item to an addon meta entry.
func (c *Client) mapItemToMeta(item models.EmbyItem, stremioType string, uc models.UserConfig) models.Meta {
	meta := models.Meta{
		ID:          stremioIDFor(item),
		Type:        stremioType,
		Name:        DeriveDisplayName(item),
		Poster:      c.primaryImageURL(item, uc),
		PosterShape: "poster",
		Background:  c.backdropImageURL(item, uc),
		Description: item.Overview,
		Released:    item.PremiereDate,
	}
	if item.ProductionYear > 0 {
		meta.ReleaseInfo = strconv.Itoa(item.ProductionYear)
	}
	return meta
}

// stremioIDFor derives the addon id for an item from its provider ids,
// preferring IMDb so Stremio can enrich the entry from Cinemeta. Items
// with no usable external id get a synthesized fallback id.
func stremioIDFor(item models.EmbyItem) string {
	if v := providerValue(item.ProviderIDs, "imdb"); v != "" {
		if !strings.HasPrefix(v, "tt") {
			v = "tt" + v
		}
		return v
	}
	if v := providerValue(item.ProviderIDs, "tmdb"); v != "" {
		return "tmdb:" + v
	}
	if v := providerValue(item.ProviderIDs, "tvdb"); v != "" {
		return "tvdb:" + v
	}
	if v := providerValue(item.ProviderIDs, "anidb"); v != "" {
		return "anidb:" + v
	}

	kind := ids.KindMovie
	if item.Type == models.ItemTypeSeries || item.Type == models.ItemTypeFolder {
		kind = ids.KindSeries
	}
	return ids.EncodeFallbackID(kind, item.ID)
}

// providerValue looks up a provider id by family with case-insensitive
// key matching, since servers disagree on casing (Imdb vs IMDB vs imdb).
func providerValue(providerIDs map[string]string, family string) string {
	for key, value := range providerIDs {
		if strings.EqualFold(key, family) && value != "" {
			return value
		}
	}
	return ""
}

func (c *Client) primaryImageURL(item models.EmbyItem, uc models.UserConfig) string {
	tag, ok := item.ImageTags["Primary"]
	if !ok {
		return ""
	}
	return c.imageURL(uc, item.ID, "Primary", "0", tag, 600)
}

func (c *Client) backdropImageURL(item models.EmbyItem, uc models.UserConfig) string {
	if len(item.BackdropImageTags) == 0 {
		return ""
	}
	return c.imageURL(uc, item.ID, "Backdrop", "0", item.BackdropImageTags[0], 1280)
}

func (c *Client) imageURL(uc models.UserConfig, itemID, imageType, index, tag string, maxWidth int) string {
	raw := fmt.Sprintf("%s/Items/%s/Images/%s/%s", serverBase(uc), itemID, imageType, index)
	extra := url.Values{}
	extra.Set("tag", tag)
	extra.Set("maxWidth", strconv.Itoa(maxWidth))
	extra.Set("quality", "90")
	return c.appendAuthParams(raw, uc, extra)
}
