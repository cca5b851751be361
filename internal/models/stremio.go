// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

/*
stremio.go - Stremio addon protocol wire types

Shapes follow the Stremio addon SDK protocol: manifest, catalog metas,
meta objects with optional video lists, stream objects and subtitles.

Protocol reference: https://github.com/Stremio/stremio-addon-sdk/tree/master/docs/api
*/

package models

// Manifest describes the addon to Stremio.
type Manifest struct {
	ID            string             `json:"id"`
	Version       string             `json:"version"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Types         []string           `json:"types"`
	Catalogs      []ManifestCatalog  `json:"catalogs"`
	Resources     []ManifestResource `json:"resources"`
	BehaviorHints ManifestBehavior   `json:"behaviorHints"`
	Config        []ManifestConfig   `json:"config,omitempty"`
}

// ManifestResource declares one addon capability (stream/meta/catalog).
type ManifestResource struct {
	Name       string   `json:"name"`
	Types      []string `json:"types,omitempty"`
	IDPrefixes []string `json:"idPrefixes,omitempty"`
}

// ManifestCatalog declares one browsable catalog.
type ManifestCatalog struct {
	Type           string         `json:"type"`
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Extra          []CatalogExtra `json:"extra,omitempty"`
	ExtraSupported []string       `json:"extraSupported,omitempty"`
}

// CatalogExtra declares one supported catalog query parameter.
type CatalogExtra struct {
	Name       string   `json:"name"`
	IsRequired bool     `json:"isRequired"`
	Options    []string `json:"options,omitempty"`
}

// ManifestBehavior carries addon-level behavior hints.
type ManifestBehavior struct {
	Configurable          bool `json:"configurable"`
	ConfigurationRequired bool `json:"configurationRequired"`
}

// ManifestConfig describes one field of the addon configuration form.
type ManifestConfig struct {
	Key      string `json:"key"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Required bool   `json:"required"`
}

// Meta is a Stremio metadata object for catalog entries and meta responses.
type Meta struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Name        string      `json:"name"`
	Poster      string      `json:"poster,omitempty"`
	PosterShape string      `json:"posterShape,omitempty"`
	Background  string      `json:"background,omitempty"`
	Description string      `json:"description,omitempty"`
	ReleaseInfo string      `json:"releaseInfo,omitempty"`
	Released    string      `json:"released,omitempty"`
	Videos      []MetaVideo `json:"videos,omitempty"`
}

// MetaVideo is one episode entry inside a series meta.
type MetaVideo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Season    int    `json:"season"`
	Episode   int    `json:"episode"`
	Overview  string `json:"overview,omitempty"`
	Released  string `json:"released,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Stream is a Stremio stream object rendered from a StreamDescriptor.
type Stream struct {
	Name          string           `json:"name,omitempty"`
	Title         string           `json:"title,omitempty"`
	Description   string           `json:"description,omitempty"`
	URL           string           `json:"url"`
	IsLive        bool             `json:"isLive,omitempty"`
	Subtitles     []StreamSubtitle `json:"subtitles,omitempty"`
	BehaviorHints *StreamBehavior  `json:"behaviorHints,omitempty"`
}

// StreamBehavior carries per-stream behavior hints.
type StreamBehavior struct {
	BingeGroup  string `json:"bingeGroup,omitempty"`
	NotWebReady bool   `json:"notWebReady,omitempty"`
	Live        bool   `json:"live,omitempty"`
}

// StreamSubtitle is one subtitle track attached to a stream.
type StreamSubtitle struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Lang   string `json:"lang"`
	Forced bool   `json:"forced,omitempty"`
}

// ManifestResponse, CatalogResponse, MetaResponse and StreamsResponse are
// the protocol envelopes. The protocol has no error channel: failures are
// rendered as empty collections or a null meta.
type (
	CatalogResponse struct {
		Metas []Meta `json:"metas"`
	}
	MetaResponse struct {
		Meta *Meta `json:"meta"`
	}
	StreamsResponse struct {
		Streams []Stream `json:"streams"`
	}
)
