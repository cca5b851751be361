// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateClient(); err != nil {
		return err
	}

	if err := c.validateEmby(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates the HTTP listener configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SB_SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("SB_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("SB_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.BaseURL != "" {
		if err := validateHTTPURL(c.Server.BaseURL, "SB_SERVER_BASE_URL"); err != nil {
			return fmt.Errorf("SB_SERVER_BASE_URL is invalid: %w", err)
		}
	}
	return nil
}

// validateClient validates the client identity sent to Emby
func (c *Config) validateClient() error {
	if c.Client.Name == "" {
		return fmt.Errorf("SB_CLIENT_NAME must not be empty")
	}
	if c.Client.DeviceID == "" {
		return fmt.Errorf("SB_CLIENT_DEVICE_ID must not be empty")
	}
	if c.Client.DeviceName == "" {
		return fmt.Errorf("SB_CLIENT_DEVICE_NAME must not be empty")
	}
	if c.Client.Version == "" {
		return fmt.Errorf("SB_CLIENT_VERSION must not be empty")
	}
	return nil
}

// validateEmby validates outbound Emby API tuning
func (c *Config) validateEmby() error {
	if c.Emby.RequestTimeout < time.Second {
		return fmt.Errorf("SB_EMBY_REQUEST_TIMEOUT must be at least 1s, got %s", c.Emby.RequestTimeout)
	}
	if c.Emby.CatalogPageSize < 1 || c.Emby.CatalogPageSize > 500 {
		return fmt.Errorf("SB_EMBY_CATALOG_PAGE_SIZE must be between 1 and 500, got %d", c.Emby.CatalogPageSize)
	}
	if c.Emby.SearchLimit < 1 || c.Emby.SearchLimit > 100 {
		return fmt.Errorf("SB_EMBY_SEARCH_LIMIT must be between 1 and 100, got %d", c.Emby.SearchLimit)
	}
	if c.Emby.ExpandRequestsPerSecond < 0 {
		return fmt.Errorf("SB_EMBY_EXPAND_REQUESTS_PER_SECOND must not be negative, got %g", c.Emby.ExpandRequestsPerSecond)
	}
	return nil
}

// validateSecurity validates CORS and rate limiting configuration
func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("SB_RATE_LIMIT_REQS must be at least 1, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow < time.Second {
		return fmt.Errorf("SB_RATE_LIMIT_WINDOW must be at least 1s, got %s", c.Security.RateLimitWindow)
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "disabled":
	default:
		return fmt.Errorf("SB_LOG_LEVEL must be one of trace, debug, info, warn, error, disabled, got %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("SB_LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateHTTPURL checks that the value parses as an absolute http(s) URL.
func validateHTTPURL(raw, name string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s cannot be parsed: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https scheme, got %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host", name)
	}
	return nil
}
