// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

/*
livetv.go - live TV channel catalogs

Channels have no external provider ids, so every channel id is a
synthesized fallback id wrapping the Emby channel id.
*/

package emby

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/streambridge/streambridge/internal/cache"
	"github.com/streambridge/streambridge/internal/ids"
	"github.com/streambridge/streambridge/internal/logging"
	"github.com/streambridge/streambridge/internal/metrics"
	"github.com/streambridge/streambridge/internal/models"
)

// LiveTVCatalogID and LiveTVCatalogName identify the live TV catalog in
// the personalised manifest.
const (
	LiveTVCatalogID   = "emby-live-tv"
	LiveTVCatalogName = "Emby Live TV"
)

const channelFields = "Name,Overview,ImageTags,ChannelNumber,CurrentProgram"

// HasLiveTVChannels probes whether the server exposes any live TV
// channels to this user. Used to decide whether the personalised
// manifest advertises the live TV catalog.
func (c *Client) HasLiveTVChannels(ctx context.Context, uc models.UserConfig) bool {
	var cacheKey string
	if c.views != nil {
		cacheKey = cache.Key("livetv", uc.ServerURL, uc.UserID)
		if cached, ok := c.views.Get(cacheKey); ok {
			return cached.(bool)
		}
	}

	params := url.Values{}
	params.Set("UserId", uc.UserID)
	params.Set("Limit", "1")

	var resp models.EmbyItemsResponse
	if err := c.get(ctx, uc, "/LiveTv/Channels", "/LiveTv/Channels", params, &resp); err != nil {
		logging.Debug().Err(err).Msg("Live TV probe failed")
		return false
	}
	has := resp.TotalRecordCount > 0 || len(resp.Items) > 0
	if c.views != nil {
		c.views.Set(cacheKey, has)
	}
	return has
}

// GetLiveTVChannelMetas lists live TV channels as catalog metas. The
// channel endpoint has no server-side search, so search filtering is
// applied client-side over the fetched page.
func (c *Client) GetLiveTVChannelMetas(ctx context.Context, uc models.UserConfig, opts CatalogOptions) []models.Meta {
	limit := opts.Limit
	if limit <= 0 {
		limit = c.cfg.Emby.CatalogPageSize
	}

	params := url.Values{}
	params.Set("UserId", uc.UserID)
	params.Set("Fields", channelFields)
	params.Set("ImageTypeLimit", "1")
	params.Set("EnableImageTypes", "Primary")
	params.Set("Limit", strconv.Itoa(limit))
	if opts.Skip > 0 {
		params.Set("StartIndex", strconv.Itoa(opts.Skip))
	}

	var resp models.EmbyItemsResponse
	if err := c.get(ctx, uc, "/LiveTv/Channels", "/LiveTv/Channels", params, &resp); err != nil {
		logging.Warn().Err(err).Msg("Live TV channel listing failed")
		return nil
	}

	search := strings.ToLower(strings.TrimSpace(opts.Search))
	metas := make([]models.Meta, 0, len(resp.Items))
	for i := range resp.Items {
		ch := resp.Items[i]
		if search != "" && !strings.Contains(strings.ToLower(ch.Name), search) {
			continue
		}
		metas = append(metas, c.mapChannelToMeta(ch, uc))
	}
	metrics.RecordCatalogResponse("tv", len(metas))
	return metas
}

// GetLiveTVChannelMeta resolves a channel fallback id to its meta, or nil
// when the id is not a channel id or the channel is gone.
func (c *Client) GetLiveTVChannelMeta(ctx context.Context, uc models.UserConfig, rawID string) *models.Meta {
	if err := ValidateUserConfig(uc); err != nil {
		return nil
	}

	kind, embyID, err := ids.DecodeFallbackID(rawID)
	if err != nil || kind != ids.KindChannel {
		return nil
	}

	item := c.FetchItem(ctx, uc, embyID)
	if item == nil {
		return nil
	}

	meta := c.mapChannelToMeta(*item, uc)
	meta.ID = rawID
	return &meta
}

func (c *Client) mapChannelToMeta(ch models.EmbyItem, uc models.UserConfig) models.Meta {
	name := ch.Name
	if ch.ChannelNumber != "" {
		name = ch.ChannelNumber + " " + ch.Name
	}

	description := ch.Overview
	if ch.CurrentProgram != nil && ch.CurrentProgram.Name != "" {
		description = "Now: " + ch.CurrentProgram.Name
		if ch.CurrentProgram.Overview != "" {
			description += "\n\n" + ch.CurrentProgram.Overview
		}
	}

	return models.Meta{
		ID:          ids.EncodeFallbackID(ids.KindChannel, ch.ID),
		Type:        "tv",
		Name:        name,
		Poster:      c.primaryImageURL(ch, uc),
		PosterShape: "square",
		Description: description,
	}
}
