// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

/*
Package metrics provides Prometheus metrics collection and export.

# Overview

The package instruments:
  - Inbound HTTP request latency and throughput
  - Outbound Emby API call latency, throughput and error classes
  - Stream resolution outcomes and which id-search field matched
  - Catalog response sizes and folder traversal counts
  - Per-host circuit breaker state

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:7000/metrics

# Cardinality Management

To keep cardinality bounded:
  - Endpoint labels use route patterns, never raw paths (config tokens and
    item ids would otherwise explode the label space)
  - Circuit breaker names are the Emby host only, not the full URL
  - Error types are limited to a small fixed set

# Thread Safety

All recording functions are safe for concurrent use; the Prometheus client
library handles synchronization internally.
*/
package metrics
