// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

/*
client.go - Emby REST API client

Low-level request plumbing for the Emby endpoints the bridge consumes.
Credentials are never stored on the client: every call takes an immutable
models.UserConfig decoded from the inbound request.

API Reference: https://dev.emby.media/doc/restapi/index.html
*/

package emby

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/streambridge/streambridge/internal/cache"
	"github.com/streambridge/streambridge/internal/config"
	"github.com/streambridge/streambridge/internal/logging"
	"github.com/streambridge/streambridge/internal/metrics"
	"github.com/streambridge/streambridge/internal/models"
)

// Sentinel errors for the remote-call layer. Resolution code treats all of
// them as "this step produced nothing"; only ErrConfigurationInvalid is
// surfaced to handlers as a distinct top-level failure.
var (
	ErrConfigurationInvalid = errors.New("emby configuration invalid")
	ErrUnauthorized         = errors.New("emby credentials rejected")
)

// Client provides access to the Emby REST API. Safe for concurrent use;
// holds no per-user state.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	breakers   *breakerPool

	// expandLimiter throttles folder-expansion traversals so deep library
	// trees cannot hammer the server. Nil when throttling is disabled.
	expandLimiter *rate.Limiter

	// views caches library definitions and Live TV presence per user,
	// since every manifest build needs both. Nil when disabled.
	views *cache.Cache
}

// NewClient creates an Emby API client with the fixed per-request network
// timeout from the configuration. Failed calls are not retried.
func NewClient(cfg *config.Config) *Client {
	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Emby.RequestTimeout,
		},
		breakers: newBreakerPool(),
	}
	if rps := cfg.Emby.ExpandRequestsPerSecond; rps > 0 {
		c.expandLimiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	if ttl := cfg.Emby.ViewCacheTTL; ttl > 0 {
		c.views = cache.New(ttl)
	}
	return c
}

// ValidateUserConfig short-circuits before any remote call when the
// per-request configuration is incomplete.
func ValidateUserConfig(uc models.UserConfig) error {
	if uc.ServerURL == "" || uc.UserID == "" || uc.AccessToken == "" {
		return ErrConfigurationInvalid
	}
	return nil
}

// serverBase returns the user's server URL without a trailing slash.
func serverBase(uc models.UserConfig) string {
	return strings.TrimSuffix(uc.ServerURL, "/")
}

// get performs a GET against the user's Emby server and decodes the JSON
// response into v. label is the metric endpoint label (route pattern, never
// a raw path with ids).
func (c *Client) get(ctx context.Context, uc models.UserConfig, path, label string, params url.Values, v interface{}) error {
	return c.do(ctx, uc, http.MethodGet, path, label, params, nil, v)
}

// post performs a POST with a JSON body.
func (c *Client) post(ctx context.Context, uc models.UserConfig, path, label string, params url.Values, body, v interface{}) error {
	return c.do(ctx, uc, http.MethodPost, path, label, params, body, v)
}

func (c *Client) do(ctx context.Context, uc models.UserConfig, method, path, label string, params url.Values, body, v interface{}) error {
	if err := ValidateUserConfig(uc); err != nil {
		return err
	}

	fullURL := serverBase(uc) + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var reqBody io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, uc)

	start := time.Now()
	resp, err := c.execute(uc, req)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordEmbyError(label, classifyRequestError(err))
		return fmt.Errorf("emby request %s failed: %w", label, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.RecordEmbyRequest(label, resp.StatusCode, duration)

	if resp.StatusCode == http.StatusUnauthorized {
		metrics.RecordEmbyError(label, "unauthorized")
		logging.Warn().Str("endpoint", label).Str("server", serverBase(uc)).Msg("Emby rejected credentials")
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordEmbyError(label, "status")
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 512))
		if readErr != nil {
			return fmt.Errorf("emby %s returned status %d (failed to read body)", label, resp.StatusCode)
		}
		return fmt.Errorf("emby %s returned status %d: %s", label, resp.StatusCode, string(raw))
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		metrics.RecordEmbyError(label, "decode")
		return fmt.Errorf("failed to decode emby %s response: %w", label, err)
	}
	return nil
}

// fetchRaw performs a GET against an already fully composed Emby URL and
// returns the raw response. Used by the subtitle proxy, which forwards
// bytes instead of decoding JSON. The caller closes the body.
func (c *Client) fetchRaw(ctx context.Context, uc models.UserConfig, fullURL, label string) (*http.Response, error) {
	if err := ValidateUserConfig(uc); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Emby-Token", uc.AccessToken)

	start := time.Now()
	resp, err := c.execute(uc, req)
	if err != nil {
		metrics.RecordEmbyError(label, classifyRequestError(err))
		return nil, fmt.Errorf("emby request %s failed: %w", label, err)
	}
	metrics.RecordEmbyRequest(label, resp.StatusCode, time.Since(start))
	return resp, nil
}

// execute routes the request through the per-host circuit breaker.
func (c *Client) execute(uc models.UserConfig, req *http.Request) (*http.Response, error) {
	return c.breakers.forHost(req.URL.Host).execute(func() (*http.Response, error) {
		return c.httpClient.Do(req)
	})
}

// setHeaders applies authentication and the fixed client-identification
// header tuple Emby expects.
func (c *Client) setHeaders(req *http.Request, uc models.UserConfig) {
	req.Header.Set("X-Emby-Token", uc.AccessToken)
	req.Header.Set("X-Emby-Client", c.cfg.Client.Name)
	req.Header.Set("X-Emby-Device-Name", c.cfg.Client.DeviceName)
	req.Header.Set("X-Emby-Device-Id", c.cfg.Client.DeviceID)
	req.Header.Set("X-Emby-Client-Version", c.cfg.Client.Version)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
}

// classifyRequestError buckets transport failures for metrics.
func classifyRequestError(err error) string {
	switch {
	case isBreakerOpen(err):
		return "breaker_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		var ne interface{ Timeout() bool }
		if errors.As(err, &ne) && ne.Timeout() {
			return "timeout"
		}
		return "network"
	}
}

// appendAuthParams appends authentication (api_key), the addon device id and
// any extra source-specific parameters to rawURL without duplicating
// parameters already present.
func (c *Client) appendAuthParams(rawURL string, uc models.UserConfig, extra url.Values) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		// Malformed remote-supplied URL; hand it back untouched.
		return rawURL
	}

	q := u.Query()
	if q.Get("api_key") == "" {
		q.Set("api_key", uc.AccessToken)
	}
	if q.Get("DeviceId") == "" {
		q.Set("DeviceId", c.cfg.Client.DeviceID)
	}
	for key, vals := range extra {
		if q.Get(key) == "" && len(vals) > 0 {
			q.Set(key, vals[0])
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
