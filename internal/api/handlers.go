// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package api

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/streambridge/streambridge/internal/config"
	"github.com/streambridge/streambridge/internal/emby"
	"github.com/streambridge/streambridge/internal/logging"
	"github.com/streambridge/streambridge/internal/metrics"
	"github.com/streambridge/streambridge/internal/models"
)

// Manifest identity constants.
const (
	addonID          = "org.streambridge.emby"
	addonName        = "StreamBridge"
	addonDescription = "Stream movies, series and live TV from your own Emby server"
)

// idPrefixes enumerates the content-id families this addon answers for.
var idPrefixes = []string{"tt", "imdb:", "tmdb:", "tvdb:", "anidb:", "emby~"}

// Handler serves the addon protocol endpoints.
type Handler struct {
	cfg  *config.Config
	emby *emby.Client
}

// NewHandler creates the addon protocol handler.
func NewHandler(cfg *config.Config, client *emby.Client) *Handler {
	return &Handler{cfg: cfg, emby: client}
}

func respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// userConfigFromRequest decodes the config token path segment and attaches
// the request-derived addon base URL.
func (h *Handler) userConfigFromRequest(r *http.Request) (models.UserConfig, error) {
	uc, err := DecodeUserConfig(chi.URLParam(r, "cfgToken"))
	if err != nil {
		return models.UserConfig{}, err
	}
	uc.AddonBaseURL = addonBaseURL(h.cfg, r)
	return uc, nil
}

// Health reports liveness. The addon holds no state worth probing; a
// response at all means healthy.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"status":  "healthy",
		"version": config.Version,
	})
}

// BaseManifest serves the unconfigured manifest: no catalogs, installation
// gated on configuration.
func (h *Handler) BaseManifest(w http.ResponseWriter, r *http.Request) {
	m := h.baseManifest()
	m.BehaviorHints.ConfigurationRequired = true
	respondJSON(w, m)
}

// Manifest serves the personalised manifest for a config token: library
// catalogs and, when available, the live TV catalog.
func (h *Handler) Manifest(w http.ResponseWriter, r *http.Request) {
	uc, err := h.userConfigFromRequest(r)
	if err != nil {
		rejectConfig(w)
		return
	}

	m := h.baseManifest()
	// Distinct id and name per configuration, so Stremio treats addons
	// for different Emby servers as separate installs.
	m.ID = addonID + "." + configFingerprint(uc.CfgToken)
	if host := serverHost(uc.ServerURL); host != "" {
		m.Name = addonName + " (" + host + ")"
	}
	m.Catalogs = h.buildCatalogs(r, uc)
	respondJSON(w, m)
}

// configFingerprint derives a short stable suffix from the config token
// without exposing any of its contents.
func configFingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:4])
}

func serverHost(serverURL string) string {
	u, err := url.Parse(serverURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func (h *Handler) baseManifest() models.Manifest {
	return models.Manifest{
		ID:          addonID,
		Version:     config.Version,
		Name:        addonName,
		Description: addonDescription,
		Types:       []string{"movie", "series", "tv"},
		Catalogs:    []models.ManifestCatalog{},
		Resources: []models.ManifestResource{
			{Name: "catalog"},
			{Name: "meta", Types: []string{"movie", "series", "tv"}, IDPrefixes: idPrefixes},
			{Name: "stream", Types: []string{"movie", "series", "tv"}, IDPrefixes: idPrefixes},
		},
		BehaviorHints: models.ManifestBehavior{Configurable: true},
		Config: []models.ManifestConfig{
			{Key: "serverUrl", Type: "text", Title: "Emby server URL", Required: true},
			{Key: "userId", Type: "text", Title: "Emby user id", Required: true},
			{Key: "accessToken", Type: "password", Title: "Emby access token", Required: true},
		},
	}
}

func (h *Handler) buildCatalogs(r *http.Request, uc models.UserConfig) []models.ManifestCatalog {
	browseExtras := []models.CatalogExtra{
		{Name: "search", IsRequired: false},
		{Name: "skip", IsRequired: false},
	}
	libraryExtras := append([]models.CatalogExtra{}, browseExtras...)
	libraryExtras = append(libraryExtras, models.CatalogExtra{
		Name:    "sort",
		Options: []string{"name", "lastAdded"},
	})

	catalogs := []models.ManifestCatalog{}
	for _, def := range h.emby.GetLibraryDefinitions(r.Context(), uc) {
		catalogs = append(catalogs,
			models.ManifestCatalog{
				Type:           def.Type,
				ID:             def.LibraryID,
				Name:           def.Name,
				Extra:          libraryExtras,
				ExtraSupported: []string{"search", "skip", "sort"},
			},
			models.ManifestCatalog{
				Type:           def.Type,
				ID:             def.LibraryID + "::lastAdded",
				Name:           def.Name + " - Last Added",
				Extra:          []models.CatalogExtra{{Name: "skip", IsRequired: false}},
				ExtraSupported: []string{"skip"},
			},
		)
	}

	if h.cfg.Emby.LiveTV && h.emby.HasLiveTVChannels(r.Context(), uc) {
		catalogs = append(catalogs, models.ManifestCatalog{
			Type:           "tv",
			ID:             emby.LiveTVCatalogID,
			Name:           emby.LiveTVCatalogName,
			Extra:          browseExtras,
			ExtraSupported: []string{"search", "skip"},
		})
	}
	return catalogs
}

// Catalog serves one page of a catalog. Failures and unknown catalogs
// degrade to an empty meta list.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	uc, err := h.userConfigFromRequest(r)
	if err != nil {
		rejectConfig(w)
		return
	}

	contentType := chi.URLParam(r, "contentType")
	catalogID := chi.URLParam(r, "catalogID")
	opts := parseCatalogExtra(chi.URLParam(r, "extra"))

	var metas []models.Meta
	if contentType == "tv" || catalogID == emby.LiveTVCatalogID {
		metas = h.emby.GetLiveTVChannelMetas(r.Context(), uc, opts)
	} else {
		metas = h.emby.GetLibraryMetas(r.Context(), uc, catalogID, contentType, opts)
	}
	if metas == nil {
		metas = []models.Meta{}
	}
	respondJSON(w, models.CatalogResponse{Metas: metas})
}

// parseCatalogExtra parses the optional extra path segment
// ("search=dune&skip=100") into catalog options.
func parseCatalogExtra(extra string) emby.CatalogOptions {
	var opts emby.CatalogOptions
	if extra == "" {
		return opts
	}

	values, err := url.ParseQuery(extra)
	if err != nil {
		logging.Debug().Str("extra", extra).Err(err).Msg("Unparseable catalog extra")
		return opts
	}

	opts.Search = values.Get("search")
	if skip, err := strconv.Atoi(values.Get("skip")); err == nil && skip > 0 {
		opts.Skip = skip
	}
	if limit, err := strconv.Atoi(values.Get("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}
	switch sort := values.Get("sort"); sort {
	case "name", "lastAdded":
		opts.Sort = sort
	}
	return opts
}

// Meta serves a full meta object, or a null meta when the item cannot be
// located.
func (h *Handler) Meta(w http.ResponseWriter, r *http.Request) {
	uc, err := h.userConfigFromRequest(r)
	if err != nil {
		rejectConfig(w)
		return
	}

	contentType := chi.URLParam(r, "contentType")
	contentID := trimJSONSuffix(chi.URLParam(r, "contentID"))

	var meta *models.Meta
	if contentType == "tv" {
		meta = h.emby.GetLiveTVChannelMeta(r.Context(), uc, contentID)
	} else {
		meta = h.emby.GetMeta(r.Context(), uc, contentID, contentType)
	}
	respondJSON(w, models.MetaResponse{Meta: meta})
}

// Stream resolves a content id to playable streams. Failures degrade to an
// empty stream list.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	uc, err := h.userConfigFromRequest(r)
	if err != nil {
		rejectConfig(w)
		return
	}

	contentID := trimJSONSuffix(chi.URLParam(r, "contentID"))
	descs := h.emby.GetStream(r.Context(), uc, contentID)

	streams := make([]models.Stream, 0, len(descs))
	for i := range descs {
		streams = append(streams, renderStream(descs[i]))
	}
	respondJSON(w, models.StreamsResponse{Streams: streams})
}

// rejectConfig answers a request whose config token failed to decode or
// validate. The one non-degrading failure mode the addon has.
func rejectConfig(w http.ResponseWriter) {
	metrics.HTTPUnauthorizedRequests.Inc()
	http.Error(w, "invalid configuration", http.StatusBadRequest)
}

// renderStream converts a playback descriptor into an addon stream object.
func renderStream(d models.StreamDescriptor) models.Stream {
	name := addonName
	if d.QualityTitle != "" {
		name = addonName + "\n" + d.QualityTitle
	}

	var titleParts []string
	switch {
	case d.IsLive:
		titleParts = append(titleParts, d.ItemName)
		if d.ProgramName != "" {
			titleParts = append(titleParts, "Now: "+d.ProgramName)
		}
	case d.SeriesName != "" && d.Season != nil && d.Episode != nil:
		titleParts = append(titleParts,
			fmt.Sprintf("%s S%02dE%02d", d.SeriesName, *d.Season, *d.Episode),
			d.ItemName,
		)
	default:
		titleParts = append(titleParts, d.ItemName)
	}

	stream := models.Stream{
		Name:          name,
		Title:         strings.Join(titleParts, "\n"),
		URL:           d.DirectPlayURL,
		BehaviorHints: &models.StreamBehavior{},
	}
	if d.IsLive {
		stream.IsLive = true
		stream.BehaviorHints.Live = true
	} else {
		// Emby containers are rarely browser-playable as-is; let the
		// player route them through its own streaming server.
		stream.BehaviorHints.NotWebReady = true
	}

	// Grouping by quality keeps the player on the same variant when it
	// advances to the next episode.
	switch {
	case d.QualityTitle != "":
		stream.BehaviorHints.BingeGroup = "streambridge-" + d.QualityTitle
	case d.MediaSourceID != "":
		stream.BehaviorHints.BingeGroup = "streambridge-" + d.MediaSourceID
	}

	for _, sub := range d.Subtitles {
		stream.Subtitles = append(stream.Subtitles, models.StreamSubtitle{
			ID:     sub.ID,
			URL:    sub.URL,
			Lang:   sub.Lang,
			Forced: sub.Forced,
		})
	}
	return stream
}

// trimJSONSuffix drops a trailing ".json" from a path parameter. Routes
// normally strip it, but ids containing dots can confuse the matcher.
func trimJSONSuffix(s string) string {
	return strings.TrimSuffix(s, ".json")
}
