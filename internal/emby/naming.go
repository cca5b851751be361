// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

/*
naming.go - display-name derivation

Emby libraries scraped from loosely organized folders often report raw
filenames as item names ("The.Matrix.1999.1080p.BluRay.x264"). The
derivation below walks a precedence chain from the cleanest available
field down to the literal raw name.
*/

package emby

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/streambridge/streambridge/internal/models"
)

// releaseTokenPattern matches the quality/source/codec vocabulary found in
// release-style filenames. Year tokens are deliberately not matched.
var releaseTokenPattern = regexp.MustCompile(`(?i)\b(480p|576p|720p|1080p|2160p|4k|uhd|hdr|hdr10|dovi|bluray|blu-ray|bdrip|brrip|webrip|web-dl|webdl|hdtv|dvdrip|dvdscr|remux|x264|x265|h264|h265|h\.264|h\.265|hevc|avc|av1|xvid|divx|aac|ac3|eac3|dts|truehd|atmos|flac|10bit|8bit|hdcam|proper|repack|extended|unrated|remastered|limited|internal)\b`)

// separatorPattern collapses filename separator punctuation to spaces.
var separatorPattern = regexp.MustCompile(`[._]+`)

var spacePattern = regexp.MustCompile(`\s{2,}`)

// DeriveDisplayName returns a human-presentable title for an item.
//
// Precedence: sanitized original title when longer than one character; the
// raw name when it does not look like a filename; the release-token-stripped
// raw name; the release-token-stripped path stem; the loosely sanitized raw
// name; the literal raw name; "Unknown".
func DeriveDisplayName(item models.EmbyItem) string {
	if original := sanitizeName(item.OriginalTitle); len(original) > 1 {
		return original
	}

	name := strings.TrimSpace(item.Name)
	if name != "" && !looksLikeFilename(name, item.Path) {
		return name
	}

	for _, candidate := range []string{
		stripReleaseTokens(name),
		stripReleaseTokens(pathStem(item.Path)),
		sanitizeName(name),
		name,
	} {
		if len(candidate) > 1 {
			return candidate
		}
	}
	return "Unknown"
}

// looksLikeFilename reports whether a raw item name is likely a filename
// rather than a title: it matches its own path's file stem, uses filename
// separators, or carries release-quality tokens.
func looksLikeFilename(name, path string) bool {
	if stem := pathStem(path); stem != "" && strings.EqualFold(name, stem) {
		return true
	}
	if strings.ContainsAny(name, "._") {
		return true
	}
	return releaseTokenPattern.MatchString(name)
}

// stripReleaseTokens sanitizes separators and removes the release-token
// vocabulary.
func stripReleaseTokens(name string) string {
	if name == "" {
		return ""
	}
	cleaned := separatorPattern.ReplaceAllString(name, " ")
	cleaned = releaseTokenPattern.ReplaceAllString(cleaned, " ")
	cleaned = spacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// sanitizeName collapses separator punctuation to spaces and trims.
func sanitizeName(name string) string {
	if name == "" {
		return ""
	}
	cleaned := separatorPattern.ReplaceAllString(name, " ")
	cleaned = spacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// pathStem returns the file name of a path without its extension.
func pathStem(path string) string {
	if path == "" {
		return ""
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
