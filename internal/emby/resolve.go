// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package emby

import (
	"context"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/streambridge/streambridge/internal/ids"
	"github.com/streambridge/streambridge/internal/logging"
	"github.com/streambridge/streambridge/internal/metrics"
	"github.com/streambridge/streambridge/internal/models"
)

// GetStream resolves a raw Stremio content id into stream descriptors:
// parse, ordered-fallback search, episode location, playback resolution.
// Returns nil when nothing playable was found; the HTTP surface renders
// that as an empty stream list. Parse failures and remote errors never
// propagate past this boundary.
func (c *Client) GetStream(ctx context.Context, uc models.UserConfig, rawID string) []models.StreamDescriptor {
	if err := ValidateUserConfig(uc); err != nil {
		return nil
	}

	start := time.Now()

	if ids.IsFallbackID(rawID) {
		kind, embyID, err := ids.DecodeFallbackID(rawID)
		if err != nil {
			logging.Debug().Str("id", rawID).Err(err).Msg("Unparseable fallback id")
			metrics.RecordResolve("fallback", "error", time.Since(start))
			return nil
		}
		descs := c.resolveFallbackStream(ctx, uc, kind, embyID)
		metrics.RecordResolve(string(kind), outcomeOf(descs), time.Since(start))
		return descs
	}

	extID, err := ids.Parse(rawID)
	if err != nil {
		logging.Debug().Str("id", rawID).Err(err).Msg("Unparseable content id")
		metrics.RecordResolve("unknown", "error", time.Since(start))
		return nil
	}

	var descs []models.StreamDescriptor
	switch extID.Kind {
	case ids.KindEpisode:
		descs = c.resolveEpisodeStream(ctx, uc, extID)
	default:
		descs = c.resolveMovieStream(ctx, uc, extID)
	}

	metrics.RecordResolve(string(extID.Kind), outcomeOf(descs), time.Since(start))
	return descs
}

func outcomeOf(descs []models.StreamDescriptor) string {
	if len(descs) == 0 {
		return "not_found"
	}
	return "resolved"
}

// resolveMovieStream searches for the movie and resolves its sources.
func (c *Client) resolveMovieStream(ctx context.Context, uc models.UserConfig, extID ids.ExternalID) []models.StreamDescriptor {
	matches := c.FindMovie(ctx, uc, extID)
	if len(matches) == 0 {
		logging.Debug().Str("id", extID.String()).Msg("No movie match")
		return nil
	}
	return c.ResolvePlayback(ctx, uc, matches[0], "")
}

// resolveEpisodeStream searches for the parent series, locates the episode
// and resolves its sources. The series lookup must complete before the
// episode lookup; when several series match the same id (split libraries,
// duplicate entries), the episode lookups run concurrently and the first
// series in match order that carries the episode wins.
func (c *Client) resolveEpisodeStream(ctx context.Context, uc models.UserConfig, extID ids.ExternalID) []models.StreamDescriptor {
	seriesMatches := c.FindSeries(ctx, uc, extID)
	if len(seriesMatches) == 0 {
		logging.Debug().Str("id", extID.String()).Msg("No parent series match")
		return nil
	}

	episodes := make([]*models.EmbyItem, len(seriesMatches))
	g, gctx := errgroup.WithContext(ctx)
	for i := range seriesMatches {
		g.Go(func() error {
			episodes[i] = c.FindEpisode(gctx, uc, seriesMatches[i], extID.Season, extID.Episode)
			return nil
		})
	}
	_ = g.Wait()

	for i, episode := range episodes {
		if episode == nil {
			continue
		}
		return c.ResolvePlayback(ctx, uc, *episode, seriesMatches[i].Name)
	}
	return nil
}

// resolveFallbackStream resolves an addon-minted fallback id by fetching
// the item directly.
func (c *Client) resolveFallbackStream(ctx context.Context, uc models.UserConfig, kind ids.Kind, embyID string) []models.StreamDescriptor {
	item := c.FetchItem(ctx, uc, embyID)
	if item == nil {
		return nil
	}

	seriesName := ""
	if kind == ids.KindEpisode {
		seriesName = item.SeriesName
	}
	return c.ResolvePlayback(ctx, uc, *item, seriesName)
}

// FetchItem fetches a single item by its Emby id. Returns nil when the
// item is absent or the request fails.
func (c *Client) FetchItem(ctx context.Context, uc models.UserConfig, embyID string) *models.EmbyItem {
	params := url.Values{}
	params.Set("Fields", "ProviderIds,Name,OriginalTitle,Overview,ProductionYear,PremiereDate,ImageTags,BackdropImageTags,Path,MediaSources")

	var item models.EmbyItem
	if err := c.get(ctx, uc, "/Users/"+uc.UserID+"/Items/"+embyID, "/Users/{id}/Items/{itemId}", params, &item); err != nil {
		logging.Warn().Str("item", embyID).Err(err).Msg("Item fetch failed")
		return nil
	}
	if item.ID == "" {
		return nil
	}
	return &item
}
