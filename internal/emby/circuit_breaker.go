// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

package emby

import (
	"errors"
	"net/http"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/streambridge/streambridge/internal/logging"
	"github.com/streambridge/streambridge/internal/metrics"
)

// breakerPool keeps one circuit breaker per Emby host. Users bring their
// own servers, so breaker state must never bleed between hosts: one
// unreachable server must not reject requests for every other user.
//
// DETERMINISM NOTE: the breaker uses real time (via sony/gobreaker) for its
// interval and timeout calculations. Tests should exercise the wrapped
// client directly rather than waiting out breaker windows.
type breakerPool struct {
	mu       sync.Mutex
	breakers map[string]*hostBreaker
}

type hostBreaker struct {
	cb   *gobreaker.CircuitBreaker[*http.Response]
	name string
}

func newBreakerPool() *breakerPool {
	return &breakerPool{breakers: make(map[string]*hostBreaker)}
}

// forHost returns the breaker for an Emby host, creating it on first use.
func (p *breakerPool) forHost(host string) *hostBreaker {
	p.mu.Lock()
	defer p.mu.Unlock()

	if hb, ok := p.breakers[host]; ok {
		return hb
	}
	hb := newHostBreaker(host)
	p.breakers[host] = hb
	return hb
}

// newHostBreaker creates a breaker for one Emby host.
// Configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func newHostBreaker(host string) *hostBreaker {
	metrics.CircuitBreakerState.WithLabelValues(host).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        host,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Str("host", host).Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("host", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.RecordCircuitBreakerStateChange(name, fromStr, toStr)
		},
	})

	return &hostBreaker{cb: cb, name: host}
}

// execute wraps one HTTP round trip with circuit breaker protection.
// Transport errors count as failures; any HTTP response, including 4xx,
// counts as success so that missing items never open the circuit.
func (hb *hostBreaker) execute(fn func() (*http.Response, error)) (*http.Response, error) {
	resp, err := hb.cb.Execute(fn)
	if err != nil {
		if isBreakerOpen(err) {
			metrics.RecordCircuitBreakerRequest(hb.name, "rejected")
			logging.Warn().Str("host", hb.name).Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.RecordCircuitBreakerRequest(hb.name, "failure")
		}
		return nil, err
	}

	metrics.RecordCircuitBreakerRequest(hb.name, "success")
	return resp, nil
}

// isBreakerOpen reports whether err is a breaker rejection rather than a
// transport failure.
func isBreakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
