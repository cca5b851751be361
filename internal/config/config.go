// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

// Package config loads and validates the addon configuration.
//
// Configuration is layered via Koanf v2 (highest priority wins):
//  1. Environment variables
//  2. Optional YAML config file
//  3. Built-in defaults
//
// Emby credentials are NOT part of this configuration: each inbound
// request carries its own server URL, user id and access token inside the
// addon URL path, decoded per request into a models.UserConfig.
package config

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Config is the process-wide addon configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Client   ClientConfig   `koanf:"client"`
	Emby     EmbyConfig     `koanf:"emby"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// ReadTimeout/WriteTimeout bound inbound request handling.
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// BaseURL overrides the externally visible addon base URL used in
	// proxied subtitle links. When empty it is derived per request from
	// the Host header.
	BaseURL string `koanf:"base_url"`
}

// ClientConfig is the client identity sent to Emby with every request
// (X-Emby-Client / device header tuple).
type ClientConfig struct {
	Name       string `koanf:"name"`
	DeviceID   string `koanf:"device_id"`
	DeviceName string `koanf:"device_name"`
	Version    string `koanf:"version"`
}

// EmbyConfig tunes outbound Emby API behavior.
type EmbyConfig struct {
	// RequestTimeout is the fixed per-request network timeout after
	// which a remote call is treated as failed. No automatic retries.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// CatalogPageSize is the default /Items page size for catalog listings.
	CatalogPageSize int `koanf:"catalog_page_size"`

	// SearchLimit bounds id-lookup searches.
	SearchLimit int `koanf:"search_limit"`

	// ExpandRequestsPerSecond throttles the folder-expansion traversal so
	// deep library trees cannot hammer the server. 0 disables throttling.
	ExpandRequestsPerSecond float64 `koanf:"expand_requests_per_second"`

	// LiveTV toggles Live TV channel catalogs in the manifest.
	LiveTV bool `koanf:"live_tv"`

	// ViewCacheTTL bounds how long library views and Live TV presence are
	// cached per user. 0 disables the cache.
	ViewCacheTTL time.Duration `koanf:"view_cache_ttl"`
}

// SecurityConfig controls CORS and inbound rate limiting.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all defaults applied. Defaults are
// loaded first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         7000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			BaseURL:      "",
		},
		Client: ClientConfig{
			Name:       "StreamBridge",
			DeviceID:   "", // Generated at load time when empty
			DeviceName: "StreamBridge",
			Version:    Version,
		},
		Emby: EmbyConfig{
			RequestTimeout:          15 * time.Second,
			CatalogPageSize:         100,
			SearchLimit:             10,
			ExpandRequestsPerSecond: 8,
			LiveTV:                  true,
			ViewCacheTTL:            5 * time.Minute,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     300,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Version is the addon version advertised in the manifest and the
// X-Emby-Client-Version header.
const Version = "1.1.0"

// applyDerived fills values that cannot be expressed as static defaults.
func (c *Config) applyDerived() {
	if c.Client.DeviceID == "" {
		c.Client.DeviceID = "streambridge-" + uuid.NewString()
	}
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
