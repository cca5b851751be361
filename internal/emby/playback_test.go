// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package emby

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/streambridge/streambridge/internal/models"
)

func TestSelectStreamURL(t *testing.T) {
	c := NewClient(testConfig())
	uc := testUserConfig("http://emby:8096")
	item := models.EmbyItem{ID: "42"}

	tests := []struct {
		name   string
		source models.EmbyMediaSource
		want   string // prefix match; auth params vary in encoding order
	}{
		{
			name: "direct stream url wins",
			source: models.EmbyMediaSource{
				ID:              "src1",
				DirectStreamURL: "/Videos/42/stream.mkv?static=true",
				Path:            "http://elsewhere/movie.mkv",
				TranscodingURL:  "/transcode",
			},
			want: "http://emby:8096/Videos/42/stream.mkv",
		},
		{
			name: "absolute path second",
			source: models.EmbyMediaSource{
				ID:             "src1",
				Path:           "http://nas.local/movie.mkv",
				TranscodingURL: "/transcode",
			},
			want: "http://nas.local/movie.mkv",
		},
		{
			name: "local path is skipped in favor of transcode url",
			source: models.EmbyMediaSource{
				ID:             "src1",
				Path:           "/mnt/media/movie.mkv",
				TranscodingURL: "/Videos/42/master.m3u8",
			},
			want: "http://emby:8096/Videos/42/master.m3u8",
		},
		{
			name: "synthesized from container as last resort",
			source: models.EmbyMediaSource{
				ID:        "src1",
				Path:      "/mnt/media/movie.mkv",
				Container: "MKV",
			},
			want: "http://emby:8096/Videos/42/stream.mkv",
		},
		{
			name:   "nothing usable",
			source: models.EmbyMediaSource{ID: "src1", Path: "/mnt/media/movie.mkv"},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.selectStreamURL(item, &tt.source, uc)
			if tt.want == "" {
				if got != "" {
					t.Errorf("Expected empty URL, got %q", got)
				}
				return
			}
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("URL = %q, want prefix %q", got, tt.want)
			}
			u, err := url.Parse(got)
			if err != nil {
				t.Fatalf("Result is not a valid URL: %v", err)
			}
			if u.Query().Get("api_key") != "tok123" {
				t.Errorf("URL must carry api_key, got %q", got)
			}
		})
	}
}

func TestSelectStreamURLSynthesizedParams(t *testing.T) {
	c := NewClient(testConfig())
	uc := testUserConfig("http://emby:8096")

	source := models.EmbyMediaSource{ID: "src1", Container: "mkv"}
	got := c.selectStreamURL(models.EmbyItem{ID: "42"}, &source, uc)

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("Result is not a valid URL: %v", err)
	}
	if u.Path != "/Videos/42/stream.mkv" {
		t.Errorf("Path = %q, want /Videos/42/stream.mkv", u.Path)
	}
	if u.Query().Get("MediaSourceId") != "src1" {
		t.Errorf("MediaSourceId missing from %q", got)
	}
	if u.Query().Get("Static") != "true" {
		t.Errorf("Static missing from %q", got)
	}
}

func TestQualityLabel(t *testing.T) {
	tests := []struct {
		name   string
		source models.EmbyMediaSource
		want   string
	}{
		{
			name: "display title extended with height and codec",
			source: models.EmbyMediaSource{MediaStreams: []models.EmbyMediaStream{
				{Type: "Video", DisplayTitle: "Blu-ray", Codec: "hevc", Width: 3840, Height: 2160},
			}},
			want: "Blu-ray 2160p HEVC",
		},
		{
			name: "no duplicate tokens",
			source: models.EmbyMediaSource{MediaStreams: []models.EmbyMediaStream{
				{Type: "Video", DisplayTitle: "1080p HEVC", Codec: "hevc", Width: 1920, Height: 1080},
			}},
			want: "1080p HEVC",
		},
		{
			name:   "container fallback",
			source: models.EmbyMediaSource{Container: "mkv"},
			want:   "MKV",
		},
		{
			name:   "source name fallback",
			source: models.EmbyMediaSource{Name: "Remux copy"},
			want:   "Remux copy",
		},
		{
			name:   "literal fallback",
			source: models.EmbyMediaSource{},
			want:   "Direct Play",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := qualityLabel(&tt.source); got != tt.want {
				t.Errorf("qualityLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolvePlayback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Items/42/PlaybackInfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		writeJSON(t, w, models.EmbyPlaybackInfo{MediaSources: []models.EmbyMediaSource{
			{
				ID:        "src1",
				Container: "mkv",
				MediaStreams: []models.EmbyMediaStream{
					{Type: "Video", Codec: "h264", Height: 1080, Width: 1920},
					{Type: "Audio", Codec: "aac"},
				},
			},
		}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(testConfig())
	uc := testUserConfig(srv.URL)
	episode := models.EmbyItem{
		ID:                "42",
		Name:              "Ozymandias",
		Type:              models.ItemTypeEpisode,
		IndexNumber:       intPtr(14),
		ParentIndexNumber: intPtr(5),
	}

	descs := c.ResolvePlayback(context.Background(), uc, episode, "Breaking Bad")
	if len(descs) != 1 {
		t.Fatalf("Expected one descriptor, got %d", len(descs))
	}

	d := descs[0]
	if d.SeriesName != "Breaking Bad" || d.ItemName != "Ozymandias" {
		t.Errorf("Names not carried: %+v", d)
	}
	if d.Season == nil || *d.Season != 5 || d.Episode == nil || *d.Episode != 14 {
		t.Errorf("Episode ordinals not carried: %+v", d)
	}
	if d.VideoCodec != "h264" || d.AudioCodec != "aac" {
		t.Errorf("Codecs not carried: %+v", d)
	}
	if !strings.Contains(d.DirectPlayURL, "/Videos/42/stream.mkv") {
		t.Errorf("DirectPlayURL = %q", d.DirectPlayURL)
	}
}

func TestResolvePlaybackNoSources(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Items/42/PlaybackInfo", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, models.EmbyPlaybackInfo{})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(testConfig())
	item := models.EmbyItem{ID: "42", Type: models.ItemTypeMovie}

	if descs := c.ResolvePlayback(context.Background(), testUserConfig(srv.URL), item, ""); descs != nil {
		t.Errorf("Expected nil for empty source list, got %+v", descs)
	}
}

func TestResolvePlaybackLiveChannel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Items/ch1/PlaybackInfo", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, models.EmbyPlaybackInfo{MediaSources: []models.EmbyMediaSource{
			{ID: "src1", Container: "ts", IsInfiniteStream: true},
		}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(testConfig())
	channel := models.EmbyItem{
		ID:             "ch1",
		Name:           "News 24",
		Type:           models.ItemTypeTvChannel,
		CurrentProgram: &models.EmbyProgram{Name: "Evening News"},
	}

	descs := c.ResolvePlayback(context.Background(), testUserConfig(srv.URL), channel, "")
	if len(descs) != 1 {
		t.Fatalf("Expected one descriptor, got %d", len(descs))
	}
	if !descs[0].IsLive || descs[0].ProgramName != "Evening News" {
		t.Errorf("Live flags not carried: %+v", descs[0])
	}
}
