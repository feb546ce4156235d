// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

/*
Package metrics provides Prometheus metrics collection and export for the
crawl pipeline, site adapters, media packager, and session controller.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:3857/metrics

# Available Metrics

Adapter Metrics (§4.3, §5):
  - adapter_fetch_duration_seconds: Per-site fetch latency (histogram)
    Labels: site, operation (resolve_board, fetch_page, fetch_media)
  - adapter_fetch_errors_total: Fetch errors (counter)
    Labels: site, operation, error_type
  - adapter_posts_yielded_total: Post records yielded before filtering (counter)
    Labels: site

Site Detection Metrics (§4.5):
  - detection_requests_total: Detection attempts (counter)
    Labels: detected_site
  - detection_duration_seconds: Detection latency, including Lemmy probes (histogram)
  - lemmy_probe_total: Lemmy instance API probes (counter)
    Labels: result (confirmed, rejected, error)

Board Resolution Metrics (§4.4):
  - board_lookup_total: Board/gallery/topic lookups (counter)
    Labels: site, result (hit, miss, ambiguous)
  - board_autocomplete_duration_seconds: Autocomplete query latency (histogram)
  - board_lookup_table_entries: Entries loaded per lookup table (gauge)
    Labels: site

Crawl Pipeline Metrics (§4.7):
  - crawl_duration_seconds: Full session duration (histogram)
  - crawl_pages_fetched_total: Listing pages fetched (counter)
    Labels: site
  - crawl_posts_filtered_total: Posts dropped by the filter predicate (counter)
    Labels: site, reason
  - crawl_overfetch_rounds: Additional rounds issued to satisfy a target count (histogram)
  - crawl_active_sessions: In-flight crawl sessions (gauge)

Media Packager Metrics (§4.8):
  - media_download_duration_seconds: Per-item download latency (histogram)
    Labels: site
  - media_download_errors_total: Download errors (counter)
    Labels: site, error_type
  - media_bytes_downloaded_total: Bytes downloaded (counter)
  - media_archives_built_total: Zip archives built (counter)
  - media_archive_bytes: Archive size distribution (histogram)
  - media_archives_swept_total: Expired archives removed (counter)
  - media_deduplicated_total: Downloads skipped by content fingerprint (counter)

Session Controller Metrics (§4.9):
  - sessions_opened_total: Websocket sessions opened (counter)
  - sessions_completed_total: Sessions completed (counter)
    Labels: outcome (done, canceled, error)
  - session_active_count: Open sessions (gauge)
  - session_handshake_rejections_total: Rejected handshakes (counter)

Translation Metrics (§4.10):
  - translate_request_duration_seconds: Outbound translation call latency (histogram)
  - translate_errors_total: Translation errors (counter)
    Labels: error_type
  - translate_characters_total: Characters submitted for translation (counter)

API, cache, WebSocket transport, circuit breaker, and rate limiter metrics
follow the same label conventions and are registered alongside the
domain-specific metrics above.

# Usage Example

	import (
	    "github.com/tomtom215/boardcrawl/internal/metrics"
	    "github.com/prometheus/client_golang/prometheus/promhttp"
	)

	func main() {
	    http.Handle("/metrics", promhttp.Handler())

	    start := time.Now()
	    posts, err := adapter.FetchPage(ctx, board, page)
	    metrics.RecordAdapterFetch(site, "fetch_page", time.Since(start), err)
	}

# Prometheus Configuration

	scrape_configs:
	  - job_name: 'boardcrawl'
	    static_configs:
	      - targets: ['localhost:3857']
	    metrics_path: '/metrics'
	    scrape_interval: 15s

# Cardinality Management

Site labels are drawn from the fixed adapter registry (§4.3); error_type
labels are bucketed by classifyError into a small fixed set (timeout,
connection, http_status, parse, other) rather than raw error strings, to
keep series counts bounded regardless of upstream error message variety.

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent
use from multiple goroutines; the Prometheus client library handles
synchronization internally.
*/
package metrics
