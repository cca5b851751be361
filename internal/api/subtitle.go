// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/streambridge/streambridge/internal/emby"
	"github.com/streambridge/streambridge/internal/logging"
	"github.com/streambridge/streambridge/internal/metrics"
	"github.com/streambridge/streambridge/internal/subtitle"
)

// maxSubtitleBytes bounds a proxied subtitle payload. Text subtitles are
// rarely above a few hundred kilobytes; anything larger is not a subtitle.
const maxSubtitleBytes = 10 << 20

// Subtitle proxies a text subtitle track from the user's Emby server,
// normalized to UTF-8 with player-friendly line endings. The file path
// parameter carries "<streamIndex>.<format>".
func (h *Handler) Subtitle(w http.ResponseWriter, r *http.Request) {
	uc, err := h.userConfigFromRequest(r)
	if err != nil {
		rejectConfig(w)
		return
	}

	itemID := chi.URLParam(r, "itemID")
	sourceID := chi.URLParam(r, "sourceID")

	index, format, ok := parseSubtitleFile(chi.URLParam(r, "file"))
	if !ok || !emby.IsTextSubtitleFormat(format) {
		http.NotFound(w, r)
		return
	}
	codec := r.URL.Query().Get("codec")

	resp, err := h.emby.FetchSubtitle(r.Context(), uc, itemID, sourceID, index, codec, format)
	if err != nil {
		logging.Warn().Str("item", itemID).Err(err).Msg("Subtitle fetch failed")
		metrics.RecordSubtitleProxy(format, http.StatusBadGateway)
		http.Error(w, "subtitle unavailable", http.StatusBadGateway)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordSubtitleProxy(format, http.StatusNotFound)
		http.NotFound(w, r)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxSubtitleBytes))
	if err != nil {
		metrics.RecordSubtitleProxy(format, http.StatusBadGateway)
		http.Error(w, "subtitle unavailable", http.StatusBadGateway)
		return
	}

	normalized, err := subtitle.Normalize(raw, format)
	if err != nil {
		logging.Warn().Str("item", itemID).Err(err).Msg("Subtitle transcode failed")
		// Serve the raw bytes rather than nothing.
		normalized = raw
	}

	metrics.RecordSubtitleProxy(format, http.StatusOK)
	w.Header().Set("Content-Type", subtitleContentType(format))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(normalized)
}

// parseSubtitleFile splits "<index>.<format>".
func parseSubtitleFile(file string) (int, string, bool) {
	stem, format, found := strings.Cut(file, ".")
	if !found || format == "" {
		return 0, "", false
	}
	index, err := strconv.Atoi(stem)
	if err != nil || index < 0 {
		return 0, "", false
	}
	return index, strings.ToLower(format), true
}

func subtitleContentType(format string) string {
	if format == "vtt" {
		return "text/vtt; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}
