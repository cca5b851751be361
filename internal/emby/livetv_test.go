// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package emby

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/streambridge/streambridge/internal/ids"
	"github.com/streambridge/streambridge/internal/models"
)

func TestHasLiveTVChannels(t *testing.T) {
	tests := []struct {
		name string
		resp models.EmbyItemsResponse
		want bool
	}{
		{name: "channels present", resp: models.EmbyItemsResponse{TotalRecordCount: 12}, want: true},
		{name: "no channels", resp: models.EmbyItemsResponse{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/LiveTv/Channels", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tt.resp)
			})
			srv := httptest.NewServer(mux)
			defer srv.Close()

			c := NewClient(testConfig())
			if got := c.HasLiveTVChannels(context.Background(), testUserConfig(srv.URL)); got != tt.want {
				t.Errorf("HasLiveTVChannels = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetLiveTVChannelMetas(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/LiveTv/Channels", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, models.EmbyItemsResponse{Items: []models.EmbyItem{
			{ID: "ch1", Name: "News 24", Type: "TvChannel", ChannelNumber: "1"},
			{ID: "ch2", Name: "Sports One", Type: "TvChannel"},
		}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(testConfig())

	t.Run("all channels", func(t *testing.T) {
		metas := c.GetLiveTVChannelMetas(context.Background(), testUserConfig(srv.URL), CatalogOptions{})
		if len(metas) != 2 {
			t.Fatalf("Expected 2 metas, got %d", len(metas))
		}
		if metas[0].Name != "1 News 24" || metas[0].Type != "tv" {
			t.Errorf("First meta = %+v", metas[0])
		}
		kind, embyID, err := ids.DecodeFallbackID(metas[0].ID)
		if err != nil || kind != ids.KindChannel || embyID != "ch1" {
			t.Errorf("Channel id round-trip = (%v, %q, %v)", kind, embyID, err)
		}
	})

	t.Run("search filters client-side", func(t *testing.T) {
		metas := c.GetLiveTVChannelMetas(context.Background(), testUserConfig(srv.URL), CatalogOptions{Search: "sports"})
		if len(metas) != 1 || metas[0].Name != "Sports One" {
			t.Fatalf("Expected Sports One only, got %+v", metas)
		}
	})
}

func TestGetLiveTVChannelMeta(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Users/u1/Items/ch1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, models.EmbyItem{
			ID:   "ch1",
			Name: "News 24",
			Type: "TvChannel",
			CurrentProgram: &models.EmbyProgram{
				Name:     "Evening News",
				Overview: "Headlines and weather.",
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(testConfig())
	rawID := ids.EncodeFallbackID(ids.KindChannel, "ch1")

	meta := c.GetLiveTVChannelMeta(context.Background(), testUserConfig(srv.URL), rawID)
	if meta == nil {
		t.Fatal("Expected meta, got nil")
	}
	if meta.ID != rawID {
		t.Errorf("ID = %q, requested id must be echoed", meta.ID)
	}
	if meta.Description != "Now: Evening News\n\nHeadlines and weather." {
		t.Errorf("Description = %q", meta.Description)
	}
}

func TestGetLiveTVChannelMetaRejectsOtherKinds(t *testing.T) {
	c := NewClient(testConfig())
	rawID := ids.EncodeFallbackID(ids.KindMovie, "42")

	if meta := c.GetLiveTVChannelMeta(context.Background(), testUserConfig("http://emby:8096"), rawID); meta != nil {
		t.Errorf("Expected nil for non-channel id, got %+v", meta)
	}
}
