// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package api

import (
	_ "embed"
	"net/http"
)

//go:embed configure.html
var configurePage []byte

// ConfigurePage serves the static configuration form. The form builds the
// config token client-side; credentials never transit this endpoint.
func (h *Handler) ConfigurePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(configurePage)
}
