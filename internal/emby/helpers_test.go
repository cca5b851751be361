// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package emby

import (
	"net/http"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/streambridge/streambridge/internal/config"
	"github.com/streambridge/streambridge/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Client: config.ClientConfig{
			Name:       "StreamBridge",
			DeviceID:   "test-device",
			DeviceName: "StreamBridge Test",
			Version:    config.Version,
		},
		Emby: config.EmbyConfig{
			RequestTimeout:  5 * time.Second,
			CatalogPageSize: 50,
			SearchLimit:     10,
		},
	}
}

func testUserConfig(serverURL string) models.UserConfig {
	return models.UserConfig{
		ServerURL:   serverURL,
		UserID:      "u1",
		AccessToken: "tok123",
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("Failed to encode response: %v", err)
	}
}

func intPtr(i int) *int { return &i }
