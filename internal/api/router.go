// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/streambridge/streambridge/internal/config"
	"github.com/streambridge/streambridge/internal/emby"
	"github.com/streambridge/streambridge/internal/metrics"
	"github.com/streambridge/streambridge/internal/middleware"
)

// NewRouter assembles the addon's HTTP routes and middleware stack.
func NewRouter(cfg *config.Config, client *emby.Client) http.Handler {
	h := NewHandler(cfg, client)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Security.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         3600,
	}))
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Compress(5, "application/json", "text/plain", "text/vtt", "text/html"))

	// Operational routes stay outside the rate limiter so probes and
	// scrapers are never shed under load.
	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if !cfg.Security.RateLimitDisabled {
			r.Use(httprate.Limit(
				cfg.Security.RateLimitReqs,
				cfg.Security.RateLimitWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					// Raw paths embed config tokens; keep the label fixed.
					metrics.HTTPRateLimitHits.WithLabelValues("global").Inc()
					http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				}),
			))
		}

		// Unconfigured surface.
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/configure", http.StatusFound)
		})
		r.Get("/configure", h.ConfigurePage)
		r.Get("/manifest.json", h.BaseManifest)

		// Configured addon surface; every route carries the config token.
		r.Route("/{cfgToken}", func(r chi.Router) {
			r.Get("/manifest.json", h.Manifest)
			r.Get("/configure", h.ConfigurePage)
			r.Get("/catalog/{contentType}/{catalogID}.json", h.Catalog)
			r.Get("/catalog/{contentType}/{catalogID}/{extra}.json", h.Catalog)
			r.Get("/meta/{contentType}/{contentID}.json", h.Meta)
			r.Get("/stream/{contentType}/{contentID}.json", h.Stream)
			r.Get("/subtitle/{itemID}/{sourceID}/{file}", h.Subtitle)
		})
	})

	return r
}
