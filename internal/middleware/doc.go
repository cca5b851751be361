// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

// Package middleware provides HTTP middleware shared by the addon routes:
// request-id propagation and Prometheus request instrumentation. CORS and
// rate limiting come from go-chi/cors and go-chi/httprate and are wired
// directly in the router.
package middleware
