// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

/*
playback.go - playback-source negotiation

Turns a resolved item's media sources into direct-playable stream
descriptors: URL selection and auth composition, quality-label synthesis
and subtitle extraction.
*/

package emby

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/streambridge/streambridge/internal/logging"
	"github.com/streambridge/streambridge/internal/models"
)

// playbackInfoRequest is the POST body for /Items/{id}/PlaybackInfo.
// Transcoding stays enabled so the server still answers for sources it
// refuses to direct-play; transcode URLs are only used as a last resort.
type playbackInfoRequest struct {
	UserID             string `json:"UserId"`
	EnableDirectPlay   bool   `json:"EnableDirectPlay"`
	EnableDirectStream bool   `json:"EnableDirectStream"`
	EnableTranscoding  bool   `json:"EnableTranscoding"`
	AutoOpenLiveStream bool   `json:"AutoOpenLiveStream"`
}

// ResolvePlayback requests the item's media sources and converts each
// usable one into a stream descriptor. Returns nil (not an empty slice)
// when nothing is playable, so callers can tell "nothing playable" from
// "not attempted". Remote failures degrade to nil; they are not retried.
func (c *Client) ResolvePlayback(ctx context.Context, uc models.UserConfig, item models.EmbyItem, seriesName string) []models.StreamDescriptor {
	params := url.Values{}
	params.Set("UserId", uc.UserID)

	body := playbackInfoRequest{
		UserID:             uc.UserID,
		EnableDirectPlay:   true,
		EnableDirectStream: true,
		EnableTranscoding:  true,
		AutoOpenLiveStream: item.Type == models.ItemTypeTvChannel,
	}

	var info models.EmbyPlaybackInfo
	if err := c.post(ctx, uc, "/Items/"+item.ID+"/PlaybackInfo", "/Items/{id}/PlaybackInfo", params, body, &info); err != nil {
		logging.Warn().Str("item", item.ID).Err(err).Msg("PlaybackInfo request failed")
		return nil
	}
	if len(info.MediaSources) == 0 {
		logging.Debug().Str("item", item.ID).Msg("No media sources for item")
		return nil
	}

	descriptors := make([]models.StreamDescriptor, 0, len(info.MediaSources))
	for i := range info.MediaSources {
		source := &info.MediaSources[i]

		streamURL := c.selectStreamURL(item, source, uc)
		if streamURL == "" {
			continue
		}

		desc := models.StreamDescriptor{
			DirectPlayURL: streamURL,
			ItemName:      item.Name,
			SeriesName:    seriesName,
			ItemID:        item.ID,
			MediaSourceID: source.ID,
			Container:     source.Container,
			QualityTitle:  qualityLabel(source),
			Subtitles:     c.ExtractSubtitles(*source, item, uc),
			EmbyURLBase:   serverBase(uc),
			APIKey:        uc.AccessToken,
		}

		if video := findStream(source, "Video"); video != nil {
			desc.VideoCodec = video.Codec
		}
		if audio := findStream(source, "Audio"); audio != nil {
			desc.AudioCodec = audio.Codec
		}
		if item.Type == models.ItemTypeEpisode {
			desc.Season = item.ParentIndexNumber
			desc.Episode = item.IndexNumber
		}
		if item.Type == models.ItemTypeTvChannel || source.IsInfiniteStream {
			desc.IsLive = true
			if item.CurrentProgram != nil {
				desc.ProgramName = item.CurrentProgram.Name
				desc.ProgramDesc = item.CurrentProgram.Overview
			}
		}

		descriptors = append(descriptors, desc)
	}

	if len(descriptors) == 0 {
		logging.Debug().Str("item", item.ID).Msg("No playable sources for item")
		return nil
	}
	return descriptors
}

// selectStreamURL picks the best available URL for a media source, in
// priority order: server-provided direct-stream URL, a remote-accessible
// absolute path, a transcode URL as last-resort passthrough, else a
// synthesized direct stream URL. Authentication and device id are appended
// without duplicating parameters already present.
func (c *Client) selectStreamURL(item models.EmbyItem, source *models.EmbyMediaSource, uc models.UserConfig) string {
	switch {
	case source.DirectStreamURL != "":
		return c.appendAuthParams(absoluteURL(source.DirectStreamURL, uc), uc, nil)
	case strings.HasPrefix(source.Path, "http://") || strings.HasPrefix(source.Path, "https://"):
		return c.appendAuthParams(source.Path, uc, nil)
	case source.TranscodingURL != "":
		return c.appendAuthParams(absoluteURL(source.TranscodingURL, uc), uc, nil)
	case source.Container != "":
		synthesized := fmt.Sprintf("%s/Videos/%s/stream.%s", serverBase(uc), item.ID, strings.ToLower(source.Container))
		extra := url.Values{}
		extra.Set("MediaSourceId", source.ID)
		extra.Set("Static", "true")
		return c.appendAuthParams(synthesized, uc, extra)
	default:
		return ""
	}
}

// absoluteURL prefixes server-relative URLs with the user's server base.
func absoluteURL(raw string, uc models.UserConfig) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return serverBase(uc) + raw
}

// qualityLabel synthesizes a human-readable quality label for a source:
// the video stream's display title, extended with height/codec tokens it
// does not already mention; else the container, the source name, and
// finally the literal "Direct Play".
func qualityLabel(source *models.EmbyMediaSource) string {
	video := findStream(source, "Video")

	var label string
	if video != nil {
		label = video.DisplayTitle

		if video.Height > 0 {
			heightToken := fmt.Sprintf("%dp", video.Height)
			dimensionToken := fmt.Sprintf("%dx%d", video.Width, video.Height)
			lower := strings.ToLower(label)
			if !strings.Contains(lower, heightToken) && !strings.Contains(lower, dimensionToken) {
				label = joinLabel(label, heightToken)
			}
		}
		if video.Codec != "" && !strings.Contains(strings.ToLower(label), strings.ToLower(video.Codec)) {
			label = joinLabel(label, strings.ToUpper(video.Codec))
		}
	} else if source.Container != "" {
		label = strings.ToUpper(source.Container)
	}

	if label == "" && source.Name != "" {
		label = source.Name
	}
	if label == "" {
		label = "Direct Play"
	}
	return label
}

func joinLabel(label, token string) string {
	if label == "" {
		return token
	}
	return label + " " + token
}

// findStream returns the first media stream of the given type, or nil.
func findStream(source *models.EmbyMediaSource, streamType string) *models.EmbyMediaStream {
	for i := range source.MediaStreams {
		if source.MediaStreams[i].Type == streamType {
			return &source.MediaStreams[i]
		}
	}
	return nil
}
