// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/streambridge/config.yaml",
	"/etc/streambridge/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the effective configuration.
//
// Precedence: ENV > config file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// SB_SERVER_PORT -> server.port, SB_EMBY_LIVE_TV -> emby.live_tv
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.applyDerived()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as
// comma-separated slices when supplied via environment variables.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars arrive as strings but the config expects
// slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		str, ok := val.(string)
		if !ok {
			return fmt.Errorf("unexpected type %T for slice field %s", val, path)
		}

		parts := strings.Split(str, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set slice field %s: %w", path, err)
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped variables are skipped so random environment variables do not
// pollute the configuration.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// HTTP listener
		"sb_server_host":          "server.host",
		"sb_server_port":          "server.port",
		"sb_server_read_timeout":  "server.read_timeout",
		"sb_server_write_timeout": "server.write_timeout",
		"sb_server_base_url":      "server.base_url",

		// Client identity sent to Emby
		"sb_client_name":        "client.name",
		"sb_client_device_id":   "client.device_id",
		"sb_client_device_name": "client.device_name",
		"sb_client_version":     "client.version",

		// Emby API tuning
		"sb_emby_request_timeout":            "emby.request_timeout",
		"sb_emby_catalog_page_size":          "emby.catalog_page_size",
		"sb_emby_search_limit":               "emby.search_limit",
		"sb_emby_expand_requests_per_second": "emby.expand_requests_per_second",
		"sb_emby_live_tv":                    "emby.live_tv",
		"sb_emby_view_cache_ttl":             "emby.view_cache_ttl",

		// Inbound security
		"sb_cors_origins":        "security.cors_origins",
		"sb_rate_limit_reqs":     "security.rate_limit_reqs",
		"sb_rate_limit_window":   "security.rate_limit_window",
		"sb_rate_limit_disabled": "security.rate_limit_disabled",

		// Logging
		"sb_log_level":  "logging.level",
		"sb_log_format": "logging.format",
		"sb_log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	return ""
}
