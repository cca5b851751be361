// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package ids

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// FallbackPrefix marks opaque ids minted for Emby items that carry no
// recognized external provider id.
const FallbackPrefix = "emby"

const fallbackSeparator = "~"

// EncodeFallbackID mints an opaque reversible id for a raw Emby item id:
// emby~<kind>~<base64url>. The payload uses standard base64 with +/ mapped
// to -_ and padding stripped, so the id is safe inside a URL path segment.
func EncodeFallbackID(kind Kind, embyID string) string {
	if embyID == "" {
		return ""
	}
	payload := base64.StdEncoding.EncodeToString([]byte(embyID))
	payload = strings.ReplaceAll(payload, "+", "-")
	payload = strings.ReplaceAll(payload, "/", "_")
	payload = strings.TrimRight(payload, "=")
	return FallbackPrefix + fallbackSeparator + string(kind) + fallbackSeparator + payload
}

// IsFallbackID reports whether raw is a fallback id minted by this addon.
func IsFallbackID(raw string) bool {
	return strings.HasPrefix(raw, FallbackPrefix+fallbackSeparator)
}

// DecodeFallbackID reverses EncodeFallbackID. decode(encode(x)) == x for
// every valid Emby id.
func DecodeFallbackID(raw string) (Kind, string, error) {
	parts := strings.Split(raw, fallbackSeparator)
	if len(parts) != 3 || parts[0] != FallbackPrefix {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
	}

	var kind Kind
	switch Kind(parts[1]) {
	case KindMovie, KindSeries, KindEpisode, KindChannel:
		kind = Kind(parts[1])
	default:
		return "", "", fmt.Errorf("%w: kind %q", ErrInvalidFormat, parts[1])
	}

	payload := strings.ReplaceAll(parts[2], "-", "+")
	payload = strings.ReplaceAll(payload, "_", "/")
	if pad := len(payload) % 4; pad != 0 {
		payload += strings.Repeat("=", 4-pad)
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if len(decoded) == 0 {
		return "", "", fmt.Errorf("%w: empty payload", ErrInvalidFormat)
	}
	return kind, string(decoded), nil
}
