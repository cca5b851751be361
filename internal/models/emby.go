// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

/*
emby.go - Emby REST API wire types

These structs mirror the subset of the Emby item/playback schema the bridge
consumes. All fields are optional on the wire; zero values mean "absent".

API Reference: https://dev.emby.media/doc/restapi/index.html
*/

package models

// Emby item type tags as reported in BaseItemDto.Type.
const (
	ItemTypeMovie     = "Movie"
	ItemTypeSeries    = "Series"
	ItemTypeSeason    = "Season"
	ItemTypeEpisode   = "Episode"
	ItemTypeFolder    = "Folder"
	ItemTypeBoxSet    = "BoxSet"
	ItemTypeVideo     = "Video"
	ItemTypeTvChannel = "TvChannel"
)

// EmbyItem is a remote movie/series/season/episode/folder entity.
// The bridge holds transient read-only copies per request; items are
// never mutated or persisted.
type EmbyItem struct {
	ID                string            `json:"Id"`
	Name              string            `json:"Name"`
	OriginalTitle     string            `json:"OriginalTitle,omitempty"`
	SortName          string            `json:"SortName,omitempty"`
	Type              string            `json:"Type"`
	MediaType         string            `json:"MediaType,omitempty"`
	Overview          string            `json:"Overview,omitempty"`
	Path              string            `json:"Path,omitempty"`
	ProductionYear    int               `json:"ProductionYear,omitempty"`
	PremiereDate      string            `json:"PremiereDate,omitempty"`
	IndexNumber       *int              `json:"IndexNumber,omitempty"`
	ParentIndexNumber *int              `json:"ParentIndexNumber,omitempty"`
	SeriesName        string            `json:"SeriesName,omitempty"`
	SeriesID          string            `json:"SeriesId,omitempty"`
	SeasonID          string            `json:"SeasonId,omitempty"`
	CollectionType    string            `json:"CollectionType,omitempty"`
	ProviderIDs       map[string]string `json:"ProviderIds,omitempty"`
	ImageTags         map[string]string `json:"ImageTags,omitempty"`
	BackdropImageTags []string          `json:"BackdropImageTags,omitempty"`
	RunTimeTicks      int64             `json:"RunTimeTicks,omitempty"`
	IsFolder          bool              `json:"IsFolder,omitempty"`
	ChannelNumber     string            `json:"ChannelNumber,omitempty"`
	CurrentProgram    *EmbyProgram      `json:"CurrentProgram,omitempty"`
	MediaSources      []EmbyMediaSource `json:"MediaSources,omitempty"`
}

// EmbyProgram is the now-airing program attached to a live TV channel.
type EmbyProgram struct {
	ID       string `json:"Id"`
	Name     string `json:"Name"`
	Overview string `json:"Overview,omitempty"`
}

// EmbyItemsResponse is the envelope returned by /Items style endpoints.
type EmbyItemsResponse struct {
	Items            []EmbyItem `json:"Items"`
	TotalRecordCount int        `json:"TotalRecordCount"`
}

// EmbyMediaSource is one playable representation of an item, fetched
// per playback request and discarded afterwards.
type EmbyMediaSource struct {
	ID                    string            `json:"Id"`
	Name                  string            `json:"Name,omitempty"`
	Path                  string            `json:"Path,omitempty"`
	Protocol              string            `json:"Protocol,omitempty"`
	Container             string            `json:"Container,omitempty"`
	SupportsDirectPlay    bool              `json:"SupportsDirectPlay,omitempty"`
	SupportsDirectStream  bool              `json:"SupportsDirectStream,omitempty"`
	SupportsTranscoding   bool              `json:"SupportsTranscoding,omitempty"`
	DirectStreamURL       string            `json:"DirectStreamUrl,omitempty"`
	TranscodingURL        string            `json:"TranscodingUrl,omitempty"`
	TranscodingContainer  string            `json:"TranscodingContainer,omitempty"`
	RequiredHTTPHeaders   map[string]string `json:"RequiredHttpHeaders,omitempty"`
	MediaStreams          []EmbyMediaStream `json:"MediaStreams,omitempty"`
	Bitrate               int64             `json:"Bitrate,omitempty"`
	IsInfiniteStream      bool              `json:"IsInfiniteStream,omitempty"`
	ReadAtNativeFramerate bool              `json:"ReadAtNativeFramerate,omitempty"`
}

// EmbyMediaStream is a single audio/video/subtitle track of a media source.
type EmbyMediaStream struct {
	Index                  int    `json:"Index"`
	Type                   string `json:"Type"`
	Codec                  string `json:"Codec,omitempty"`
	Language               string `json:"Language,omitempty"`
	DisplayTitle           string `json:"DisplayTitle,omitempty"`
	DisplayLanguage        string `json:"DisplayLanguage,omitempty"`
	Title                  string `json:"Title,omitempty"`
	Width                  int    `json:"Width,omitempty"`
	Height                 int    `json:"Height,omitempty"`
	IsForced               bool   `json:"IsForced,omitempty"`
	IsDefault              bool   `json:"IsDefault,omitempty"`
	IsExternal             bool   `json:"IsExternal,omitempty"`
	IsTextSubtitleStream   bool   `json:"IsTextSubtitleStream,omitempty"`
	SupportsExternalStream bool   `json:"SupportsExternalStream,omitempty"`
	DeliveryMethod         string `json:"DeliveryMethod,omitempty"`
	DeliveryURL            string `json:"DeliveryUrl,omitempty"`
}

// EmbyPlaybackInfo is the response of POST /Items/{id}/PlaybackInfo.
type EmbyPlaybackInfo struct {
	MediaSources  []EmbyMediaSource `json:"MediaSources"`
	PlaySessionID string            `json:"PlaySessionId,omitempty"`
	ErrorCode     string            `json:"ErrorCode,omitempty"`
}

// EmbyView is one library ("view") as returned by /Users/{id}/Views.
type EmbyView struct {
	ID             string `json:"Id"`
	Name           string `json:"Name"`
	Type           string `json:"Type,omitempty"`
	CollectionType string `json:"CollectionType,omitempty"`
}

// EmbyViewsResponse is the envelope returned by /Users/{id}/Views.
type EmbyViewsResponse struct {
	Items []EmbyView `json:"Items"`
}
