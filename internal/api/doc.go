// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

// Package api provides the Stremio addon HTTP surface using the Chi
// router: manifest, catalog, meta, stream and subtitle endpoints, plus the
// configuration page and operational routes.
//
// Every content route is nested under a config token path segment; the
// token is a base64url-encoded JSON document carrying the user's Emby
// server URL, user id and access token. It is decoded per request into an
// immutable models.UserConfig and never stored.
//
// The addon protocol has no error channel. Handlers degrade every failure
// to an empty collection or a null meta with HTTP 200; only a malformed
// config token produces a client error.
package api
