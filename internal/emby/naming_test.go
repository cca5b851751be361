// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package emby

import (
	"testing"

	"github.com/streambridge/streambridge/internal/models"
)

func TestDeriveDisplayName(t *testing.T) {
	tests := []struct {
		name string
		item models.EmbyItem
		want string
	}{
		{
			name: "clean name passes through",
			item: models.EmbyItem{Name: "The Matrix"},
			want: "The Matrix",
		},
		{
			name: "release filename is stripped",
			item: models.EmbyItem{Name: "The.Matrix.1999.1080p.BluRay.x264"},
			want: "The Matrix 1999",
		},
		{
			name: "original title wins over filename name",
			item: models.EmbyItem{Name: "Le.Fabuleux.Destin.720p.WEBRip", OriginalTitle: "Amélie"},
			want: "Amélie",
		},
		{
			name: "original title with separators is sanitized",
			item: models.EmbyItem{Name: "whatever", OriginalTitle: "Spirited_Away"},
			want: "Spirited Away",
		},
		{
			name: "name matching path stem is treated as filename",
			item: models.EmbyItem{
				Name: "Inception 2010 2160p REMUX",
				Path: "/media/movies/Inception 2010 2160p REMUX.mkv",
			},
			want: "Inception 2010",
		},
		{
			name: "path stem rescues an empty name",
			item: models.EmbyItem{Path: "/media/movies/Blade.Runner.1982.Final.Cut.mkv"},
			want: "Blade Runner 1982 Final Cut",
		},
		{
			name: "year tokens survive stripping",
			item: models.EmbyItem{Name: "Heat.1995.REMASTERED.1080p"},
			want: "Heat 1995",
		},
		{
			name: "nothing usable",
			item: models.EmbyItem{},
			want: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveDisplayName(tt.item); got != tt.want {
				t.Errorf("DeriveDisplayName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLooksLikeFilename(t *testing.T) {
	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "The Matrix", want: false},
		{name: "The.Matrix.1999", want: true},
		{name: "Dune 2160p HDR", want: true},
		{name: "Movie", path: "/media/movie.mkv", want: true},
		{name: "Mr. Robot", want: true}, // dotted abbreviations are accepted losses
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := looksLikeFilename(tt.name, tt.path); got != tt.want {
				t.Errorf("looksLikeFilename(%q, %q) = %v, want %v", tt.name, tt.path, got, tt.want)
			}
		})
	}
}

func TestStripReleaseTokens(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The.Matrix.1999.1080p.BluRay.x264", "The Matrix 1999"},
		{"Show.S01.1080p.WEB-DL.x265", "Show S01"},
		{"Plain Title", "Plain Title"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := stripReleaseTokens(tt.in); got != tt.want {
			t.Errorf("stripReleaseTokens(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
