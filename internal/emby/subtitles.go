// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package emby

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/streambridge/streambridge/internal/models"
)

// textSubtitleFormats lists the formats the addon can charset-transcode
// and serve as text.
var textSubtitleFormats = map[string]bool{
	"srt": true, "subrip": true, "ssa": true, "ass": true, "smi": true,
	"sami": true, "sub": true, "vtt": true, "dfxp": true, "ttml": true,
	"txt": true,
}

// imageSubtitleCodecs are bitmap subtitle formats that cannot be served as
// external text tracks.
var imageSubtitleCodecs = map[string]bool{
	"pgs": true, "pgssub": true, "dvdsub": true, "dvbsub": true, "vobsub": true,
}

// IsTextSubtitleFormat reports whether a subtitle format is text-based.
func IsTextSubtitleFormat(format string) bool {
	return textSubtitleFormats[strings.ToLower(format)]
}

const defaultSubtitleFormat = "srt"

// ExtractSubtitles derives subtitle descriptors from a media source's
// streams. Text tracks are routed through the addon's subtitle proxy when
// the per-request config token and addon base URL are available, so the
// proxy can transcode character encodings; otherwise a direct authenticated
// Emby URL is built.
func (c *Client) ExtractSubtitles(source models.EmbyMediaSource, item models.EmbyItem, uc models.UserConfig) []models.SubtitleDescriptor {
	var subs []models.SubtitleDescriptor

	for i := range source.MediaStreams {
		stream := &source.MediaStreams[i]
		if stream.Type != "Subtitle" {
			continue
		}
		codec := strings.ToLower(stream.Codec)
		if imageSubtitleCodecs[codec] {
			continue
		}
		if !stream.IsTextSubtitleStream && !stream.SupportsExternalStream {
			continue
		}

		format := subtitleFormat(codec, source.Container)
		subs = append(subs, models.SubtitleDescriptor{
			ID:     strconv.Itoa(stream.Index),
			URL:    c.subtitleURL(item.ID, source.ID, stream.Index, codec, format, uc),
			Lang:   subtitleLabel(stream, format),
			Forced: stream.IsForced,
		})
	}

	return subs
}

// subtitleFormat maps a codec to the served file extension, falling back to
// the container and then a fixed default.
func subtitleFormat(codec, container string) string {
	switch codec {
	case "subrip":
		return "srt"
	case "ass", "ssa":
		return "ass"
	case "":
		if container != "" {
			return strings.ToLower(container)
		}
		return defaultSubtitleFormat
	default:
		return codec
	}
}

// subtitleLabel picks the presented track label: display title, else
// language, else the format uppercased.
func subtitleLabel(stream *models.EmbyMediaStream, format string) string {
	if stream.DisplayTitle != "" {
		return stream.DisplayTitle
	}
	if stream.Language != "" {
		return stream.Language
	}
	return strings.ToUpper(format)
}

// subtitleURL builds either the addon-proxied URL (text tracks, when the
// inbound request context is known) or a direct authenticated Emby URL.
func (c *Client) subtitleURL(itemID, sourceID string, index int, codec, format string, uc models.UserConfig) string {
	if IsTextSubtitleFormat(format) && uc.CfgToken != "" && uc.AddonBaseURL != "" {
		proxied := fmt.Sprintf("%s/%s/subtitle/%s/%s/%d.%s",
			strings.TrimSuffix(uc.AddonBaseURL, "/"), uc.CfgToken, itemID, sourceID, index, format)
		if codec != "" && codec != format {
			proxied += "?codec=" + url.QueryEscape(codec)
		}
		return proxied
	}

	return c.directSubtitleURL(itemID, sourceID, index, codec, format, uc)
}

func (c *Client) directSubtitleURL(itemID, sourceID string, index int, codec, format string, uc models.UserConfig) string {
	direct := fmt.Sprintf("%s/Videos/%s/%s/Subtitles/%d/Stream.%s", serverBase(uc), itemID, sourceID, index, format)
	extra := url.Values{}
	extra.Set("Static", "true")
	if IsTextSubtitleFormat(format) {
		extra.Set("encoding", "utf-8")
	}
	if codec != "" && codec != format {
		extra.Set("SubtitleCodec", codec)
	}
	return c.appendAuthParams(direct, uc, extra)
}

// FetchSubtitle streams a subtitle track from the user's server. The caller
// closes the response body.
func (c *Client) FetchSubtitle(ctx context.Context, uc models.UserConfig, itemID, sourceID string, index int, codec, format string) (*http.Response, error) {
	fullURL := c.directSubtitleURL(itemID, sourceID, index, codec, format, uc)
	return c.fetchRaw(ctx, uc, fullURL, "/Videos/{id}/Subtitles")
}
