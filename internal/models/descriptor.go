// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package models

// UserConfig is the per-request Emby connection configuration decoded from
// the addon URL path. It is an immutable value threaded through every call;
// per-request secrets are never stored in shared state.
type UserConfig struct {
	ServerURL   string `json:"serverUrl" validate:"required,url"`
	UserID      string `json:"userId" validate:"required"`
	AccessToken string `json:"accessToken" validate:"required"`

	// CfgToken is the raw base64url token the config was decoded from,
	// used to build addon-relative proxy URLs back to the same config.
	CfgToken string `json:"-"`
	// AddonBaseURL is the externally visible base URL of this addon
	// instance, derived from the inbound request.
	AddonBaseURL string `json:"-"`
}

// StreamDescriptor is the playback-resolution output unit. It is produced
// fresh per request and has no identity beyond the request that created it.
type StreamDescriptor struct {
	DirectPlayURL string
	ItemName      string
	SeriesName    string
	Season        *int
	Episode       *int
	ItemID        string
	MediaSourceID string
	Container     string
	VideoCodec    string
	AudioCodec    string
	QualityTitle  string
	IsLive        bool
	ProgramName   string
	ProgramDesc   string
	Subtitles     []SubtitleDescriptor

	// Credentials needed by the HTTP surface to replay the URL.
	EmbyURLBase string
	APIKey      string
}

// SubtitleDescriptor is one subtitle track derived from a media source.
// URL points either to the addon-proxied text-subtitle endpoint or to a
// direct authenticated Emby URL.
type SubtitleDescriptor struct {
	ID     string
	URL    string
	Lang   string
	Forced bool
}
