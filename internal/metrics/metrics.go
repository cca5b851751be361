// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the addon:
// - Inbound HTTP endpoint latency and throughput
// - Outbound Emby API calls
// - Stream resolution outcomes
// - Circuit breaker state per Emby host

var (
	// Inbound HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of addon HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Addon HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Current number of active addon HTTP requests",
		},
	)

	HTTPRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	HTTPUnauthorizedRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_unauthorized_requests_total",
			Help: "Total number of requests rejected for bad or missing config tokens",
		},
	)

	// Outbound Emby API Metrics
	EmbyRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emby_requests_total",
			Help: "Total number of outbound Emby API requests",
		},
		[]string{"endpoint", "status_code"},
	)

	EmbyRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "emby_request_duration_seconds",
			Help:    "Outbound Emby API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	EmbyRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emby_request_errors_total",
			Help: "Total number of failed Emby API requests",
		},
		[]string{"endpoint", "error_type"}, // "network", "timeout", "status", "decode", "breaker_open"
	)

	// Stream Resolution Metrics
	ResolveOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_resolve_outcomes_total",
			Help: "Total number of stream resolution attempts by outcome",
		},
		[]string{"kind", "outcome"}, // outcome: "resolved", "not_found", "error"
	)

	ResolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stream_resolve_duration_seconds",
			Help:    "End-to-end stream resolution duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
	)

	IDFallbackSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "id_fallback_searches_total",
			Help: "Total number of id lookups by the search field that matched",
		},
		[]string{"field"}, // "imdb", "tmdb", "tvdb", "anidb", "any_provider", "none"
	)

	// Catalog Metrics
	CatalogItemsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_items_returned",
			Help:    "Number of items returned per catalog response",
			Buckets: []float64{0, 10, 25, 50, 100, 250, 500},
		},
		[]string{"catalog_type"},
	)

	FolderExpansions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_folder_expansions_total",
			Help: "Total number of folder traversals performed during catalog listing",
		},
	)

	SubtitleProxyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_proxy_requests_total",
			Help: "Total number of proxied subtitle fetches",
		},
		[]string{"format", "status_code"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordHTTPRequest records an inbound addon request.
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordEmbyRequest records an outbound Emby API call.
func RecordEmbyRequest(endpoint string, statusCode int, duration time.Duration) {
	EmbyRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	EmbyRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordEmbyError records a failed Emby API call by error class.
func RecordEmbyError(endpoint, errorType string) {
	EmbyRequestErrors.WithLabelValues(endpoint, errorType).Inc()
}

// RecordResolve records a stream resolution attempt.
func RecordResolve(kind, outcome string, duration time.Duration) {
	ResolveOutcomes.WithLabelValues(kind, outcome).Inc()
	ResolveDuration.Observe(duration.Seconds())
}

// RecordIDFallback records which search field located an item, or "none".
func RecordIDFallback(field string) {
	IDFallbackSearches.WithLabelValues(field).Inc()
}

// RecordCatalogResponse records the item count of a catalog response.
func RecordCatalogResponse(catalogType string, items int) {
	CatalogItemsReturned.WithLabelValues(catalogType).Observe(float64(items))
}

// RecordSubtitleProxy records a proxied subtitle fetch.
func RecordSubtitleProxy(format string, statusCode int) {
	SubtitleProxyRequests.WithLabelValues(format, strconv.Itoa(statusCode)).Inc()
}

// RecordCircuitBreakerStateChange records a breaker transition and updates
// the state gauge.
func RecordCircuitBreakerStateChange(name, fromState, toState string) {
	CircuitBreakerTransitions.WithLabelValues(name, fromState, toState).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(stateValue(toState))
}

// RecordCircuitBreakerRequest records a request outcome through a breaker.
func RecordCircuitBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

func stateValue(state string) float64 {
	switch state {
	case "closed":
		return 0
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return -1
	}
}
