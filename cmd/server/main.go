// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

// Package main is the entry point for the StreamBridge server.
//
// StreamBridge is a Stremio addon that bridges an Emby media server:
// it exposes library catalogs, metadata, playable streams, and proxied
// subtitles over the Stremio addon protocol. Every request carries the
// user's Emby credentials in a base64url config token on the URL path,
// so the server itself holds no per-user state.
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables over optional YAML file (Koanf v2)
//  2. Logging: zerolog, configured from the loaded settings
//  3. Emby client: shared HTTP transport with a per-host circuit breaker
//  4. HTTP server: Chi router with the addon routes and Prometheus metrics
//
// Shutdown is graceful: SIGINT/SIGTERM drains in-flight requests for up
// to 10 seconds before the process exits.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/streambridge/streambridge/internal/api"
	"github.com/streambridge/streambridge/internal/config"
	"github.com/streambridge/streambridge/internal/emby"
	"github.com/streambridge/streambridge/internal/logging"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", config.Version).
		Str("addr", cfg.Addr()).
		Msg("Starting StreamBridge")

	client := emby.NewClient(cfg)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(cfg, client),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		logging.Fatal().Err(err).Msg("HTTP server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
		_ = server.Close()
	}

	logging.Info().Msg("StreamBridge stopped gracefully")
}
