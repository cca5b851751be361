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

	"github.com/streambridge/streambridge/internal/models"
)

func TestFindEpisode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Shows/7/Seasons", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, models.EmbyItemsResponse{Items: []models.EmbyItem{
			{ID: "s1", Name: "Season 1", IndexNumber: intPtr(1)},
			{ID: "s2", Name: "Season 2", IndexNumber: intPtr(2)},
		}})
	})
	mux.HandleFunc("/Shows/7/Episodes", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("SeasonId"); got != "s2" {
			t.Errorf("SeasonId = %q, want s2", got)
		}
		writeJSON(t, w, models.EmbyItemsResponse{Items: []models.EmbyItem{
			// Misfiled episode: right index, wrong season. Must be skipped.
			{ID: "e-wrong", IndexNumber: intPtr(5), ParentIndexNumber: intPtr(1)},
			{ID: "e-right", IndexNumber: intPtr(5), ParentIndexNumber: intPtr(2)},
		}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(testConfig())
	series := models.EmbyItem{ID: "7", Name: "Breaking Bad", Type: "Series"}

	ep := c.FindEpisode(context.Background(), testUserConfig(srv.URL), series, 2, 5)
	if ep == nil || ep.ID != "e-right" {
		t.Fatalf("Expected episode e-right, got %+v", ep)
	}
}

func TestFindEpisodeSeasonMissing(t *testing.T) {
	episodesCalled := false
	mux := http.NewServeMux()
	mux.HandleFunc("/Shows/7/Seasons", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, models.EmbyItemsResponse{Items: []models.EmbyItem{
			{ID: "s1", IndexNumber: intPtr(1)},
		}})
	})
	mux.HandleFunc("/Shows/7/Episodes", func(w http.ResponseWriter, r *http.Request) {
		episodesCalled = true
		writeJSON(t, w, models.EmbyItemsResponse{})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(testConfig())
	series := models.EmbyItem{ID: "7", Name: "Breaking Bad", Type: "Series"}

	if ep := c.FindEpisode(context.Background(), testUserConfig(srv.URL), series, 3, 1); ep != nil {
		t.Errorf("Expected nil for missing season, got %+v", ep)
	}
	if episodesCalled {
		t.Error("Episode listing must not run when the season is absent")
	}
}

func TestFindEpisodeMissingIndexNumbers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Shows/7/Seasons", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, models.EmbyItemsResponse{Items: []models.EmbyItem{
			{ID: "s1", IndexNumber: intPtr(1)},
		}})
	})
	mux.HandleFunc("/Shows/7/Episodes", func(w http.ResponseWriter, r *http.Request) {
		// Episodes without index numbers never match a requested ordinal.
		writeJSON(t, w, models.EmbyItemsResponse{Items: []models.EmbyItem{
			{ID: "e1", Name: "Special"},
		}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(testConfig())
	series := models.EmbyItem{ID: "7", Type: "Series"}

	if ep := c.FindEpisode(context.Background(), testUserConfig(srv.URL), series, 1, 1); ep != nil {
		t.Errorf("Expected nil for index-less episodes, got %+v", ep)
	}
}
