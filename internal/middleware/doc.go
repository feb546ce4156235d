// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

/*
Package middleware provides HTTP middleware components wired into
internal/httpapi's router stack (§9 ambient stack).

Key Components:

  - Compression: gzip-encodes responses when the client advertises support
  - Performance Monitor: per-endpoint request latency tracking with
    percentile calculations, exposed at GET /api/v1/debug/performance

Request ID tracking and Prometheus request instrumentation live directly
in internal/httpapi (RequestLogging), since that is where the request's
correlation ID is already minted for structured logging; this package
does not duplicate that concern.

Usage Example - Compression:

	import "github.com/tomtom215/boardcrawl/internal/middleware"

	r.Use(middleware.Compression)

	// Responses are gzip-encoded when the client sends
	// Accept-Encoding: gzip. WebSocket upgrades are never compressed.

Usage Example - Performance Monitoring:

	perfMon := middleware.NewPerformanceMonitor(1000)
	r.Use(perfMon.Middleware)

	stats := perfMon.GetStats()
	for _, s := range stats {
	    fmt.Printf("%s: p50=%dms p95=%dms p99=%dms\n",
	        s.Path, s.P50Duration, s.P95Duration, s.P99Duration)
	}

Thread Safety:

Both components are safe for concurrent use: Compression allocates a
fresh gzip.Writer per request (pooled via sync.Pool), and
PerformanceMonitor guards its sliding window with sync.RWMutex.

See Also:

  - internal/httpapi: router wiring, request ID, and CORS/rate-limit middleware
  - internal/metrics: Prometheus metrics definitions
*/
package middleware
