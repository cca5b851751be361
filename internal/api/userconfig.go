// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/streambridge/streambridge/internal/config"
	"github.com/streambridge/streambridge/internal/models"
)

// ErrInvalidConfigToken is returned for tokens that do not decode to a
// complete user configuration.
var ErrInvalidConfigToken = errors.New("invalid config token")

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeUserConfig decodes a base64url config token into a validated
// UserConfig. Both padded and unpadded encodings are accepted; the
// configure page emits unpadded tokens but users paste all sorts.
func DecodeUserConfig(token string) (models.UserConfig, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return models.UserConfig{}, fmt.Errorf("%w: %s", ErrInvalidConfigToken, err)
	}

	var uc models.UserConfig
	if err := json.Unmarshal(raw, &uc); err != nil {
		return models.UserConfig{}, fmt.Errorf("%w: %s", ErrInvalidConfigToken, err)
	}

	uc.ServerURL = strings.TrimRight(strings.TrimSpace(uc.ServerURL), "/")
	uc.UserID = strings.TrimSpace(uc.UserID)
	uc.AccessToken = strings.TrimSpace(uc.AccessToken)

	if err := validate.Struct(uc); err != nil {
		return models.UserConfig{}, fmt.Errorf("%w: %s", ErrInvalidConfigToken, err)
	}

	uc.CfgToken = token
	return uc, nil
}

// EncodeUserConfig renders a UserConfig as a config token. Used by tests
// and by the configure page's install URL preview.
func EncodeUserConfig(uc models.UserConfig) (string, error) {
	raw, err := json.Marshal(uc)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// addonBaseURL derives the externally visible base URL for this addon
// instance: the configured override when set, else the inbound request's
// host and forwarded scheme.
func addonBaseURL(cfg *config.Config, r *http.Request) string {
	if cfg.Server.BaseURL != "" {
		return strings.TrimRight(cfg.Server.BaseURL, "/")
	}

	scheme := "http"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
