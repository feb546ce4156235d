// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for production observability of the crawl pipeline,
// site adapters, media packager, and session controller.

var (
	// Adapter Metrics (§4.3, §5)
	AdapterFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adapter_fetch_duration_seconds",
			Help:    "Duration of a single adapter page fetch in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"site", "operation"}, // operation: "resolve_board", "fetch_page", "fetch_media"
	)

	AdapterFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adapter_fetch_errors_total",
			Help: "Total number of adapter fetch errors",
		},
		[]string{"site", "operation", "error_type"},
	)

	AdapterPostsYielded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adapter_posts_yielded_total",
			Help: "Total number of post records yielded by an adapter, before filtering",
		},
		[]string{"site"},
	)

	// Site Detection Metrics (§4.5)
	DetectionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "detection_requests_total",
			Help: "Total number of site detection attempts",
		},
		[]string{"detected_site"},
	)

	DetectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "detection_duration_seconds",
			Help:    "Duration of site detection (pattern match plus optional Lemmy probe) in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	LemmyProbeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lemmy_probe_total",
			Help: "Total number of Lemmy instance API probes issued to disambiguate an unrecognized host",
		},
		[]string{"result"}, // "confirmed", "rejected", "error"
	)

	// Board Resolution Metrics (§4.4)
	BoardLookupTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_lookup_total",
			Help: "Total number of board/gallery/topic lookups",
		},
		[]string{"site", "result"}, // result: "hit", "miss", "ambiguous"
	)

	BoardAutocompleteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "board_autocomplete_duration_seconds",
			Help:    "Duration of a board-name autocomplete query in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)

	BoardLookupTableSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "board_lookup_table_entries",
			Help: "Current number of entries loaded in a board lookup table",
		},
		[]string{"site"},
	)

	// Crawl Pipeline Metrics (§4.7)
	CrawlDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crawl_duration_seconds",
			Help:    "Duration of a full crawl session from dispatch to completion in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	CrawlPagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawl_pages_fetched_total",
			Help: "Total number of listing/board pages fetched during crawl sessions",
		},
		[]string{"site"},
	)

	CrawlPostsFiltered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawl_posts_filtered_total",
			Help: "Total number of post records dropped by the filter predicate",
		},
		[]string{"site", "reason"}, // reason: "views", "likes", "comments", "date_parse", "date_range"
	)

	CrawlOverfetchRounds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crawl_overfetch_rounds",
			Help:    "Number of additional overfetch rounds issued to satisfy a post-filter target count",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 10},
		},
	)

	CrawlActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crawl_active_sessions",
			Help: "Current number of in-flight crawl sessions",
		},
	)

	// Media Packager Metrics (§4.8)
	MediaDownloadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_download_duration_seconds",
			Help:    "Duration of a single media item download in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"site"},
	)

	MediaDownloadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_download_errors_total",
			Help: "Total number of media download errors",
		},
		[]string{"site", "error_type"},
	)

	MediaBytesDownloaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_bytes_downloaded_total",
			Help: "Total number of media bytes downloaded",
		},
	)

	MediaArchivesBuilt = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_archives_built_total",
			Help: "Total number of zip archives built by the media packager",
		},
	)

	MediaArchiveSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_archive_bytes",
			Help:    "Size of built media archives in bytes",
			Buckets: []float64{1 << 20, 10 << 20, 50 << 20, 100 << 20, 250 << 20, 500 << 20},
		},
	)

	MediaArchivesSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_archives_swept_total",
			Help: "Total number of expired media archives removed by the sweep timer",
		},
	)

	MediaDeduplicatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_deduplicated_total",
			Help: "Total number of media downloads skipped due to a duplicate content fingerprint",
		},
	)

	// Session Controller Metrics (§4.9)
	SessionsOpenedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_opened_total",
			Help: "Total number of websocket crawl sessions opened",
		},
	)

	SessionsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessions_completed_total",
			Help: "Total number of websocket crawl sessions completed",
		},
		[]string{"outcome"}, // "done", "canceled", "error"
	)

	SessionActiveCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "session_active_count",
			Help: "Current number of open websocket sessions",
		},
	)

	SessionHandshakeRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_handshake_rejections_total",
			Help: "Total number of websocket handshakes rejected by origin checking or rate limiting",
		},
	)

	// Translation Collaborator Metrics (§4.10)
	TranslateRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "translate_request_duration_seconds",
			Help:    "Duration of outbound translation API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	TranslateErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translate_errors_total",
			Help: "Total number of translation API errors",
		},
		[]string{"error_type"},
	)

	TranslateCharactersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "translate_characters_total",
			Help: "Total number of characters submitted for translation",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Cache Metrics (General; backs the boards/detect lookup caches)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "board_lookup", "site_detect", "media_fingerprint"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (LRU or TTL expiry)",
		},
		[]string{"cache_type"},
	)

	// WebSocket Transport Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket frames sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket frames received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics (per-site adapter HTTP wrapping, §5)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"site"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through a per-site circuit breaker",
		},
		[]string{"site", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"site", "from_state", "to_state"},
	)

	// Rate Limiter Metrics (x/time/rate governed crawl concurrency, §4.7)
	RateLimiterWaitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rate_limiter_wait_duration_seconds",
			Help:    "Time spent waiting on a per-site rate limiter before a fetch proceeds",
			Buckets: []float64{0, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"site"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAdapterFetch records a single adapter fetch operation.
func RecordAdapterFetch(site, operation string, duration time.Duration, err error) {
	AdapterFetchDuration.WithLabelValues(site, operation).Observe(duration.Seconds())
	if err != nil {
		AdapterFetchErrors.WithLabelValues(site, operation, classifyError(err.Error())).Inc()
	}
}

// RecordDetection records the outcome of a site detection attempt.
func RecordDetection(detectedSite string, duration time.Duration) {
	DetectionRequestsTotal.WithLabelValues(detectedSite).Inc()
	DetectionDuration.Observe(duration.Seconds())
}

// RecordBoardLookup records a board/gallery/topic resolution attempt.
func RecordBoardLookup(site, result string) {
	BoardLookupTotal.WithLabelValues(site, result).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordMediaDownload records a single media download attempt.
func RecordMediaDownload(site string, size int64, duration time.Duration, err error) {
	MediaDownloadDuration.WithLabelValues(site).Observe(duration.Seconds())
	if err != nil {
		MediaDownloadErrors.WithLabelValues(site, classifyError(err.Error())).Inc()
		return
	}
	MediaBytesDownloaded.Add(float64(size))
}

// RecordSessionOutcome records the terminal outcome of a crawl session.
func RecordSessionOutcome(outcome string) {
	SessionsCompletedTotal.WithLabelValues(outcome).Inc()
}

// classifyError buckets an error string into a small, bounded set of
// cardinality-safe labels for Prometheus.
func classifyError(msg string) string {
	switch {
	case containsFold(msg, "timeout"), containsFold(msg, "deadline"):
		return "timeout"
	case containsFold(msg, "refused"), containsFold(msg, "reset"):
		return "connection"
	case containsFold(msg, "status"), containsFold(msg, "429"), containsFold(msg, "403"):
		return "http_status"
	case containsFold(msg, "parse"), containsFold(msg, "decode"), containsFold(msg, "unmarshal"):
		return "parse"
	default:
		return "other"
	}
}

func containsFold(s, substr string) bool {
	return len(s) >= len(substr) && indexFold(s, substr) >= 0
}

func indexFold(s, substr string) int {
	ls, lsub := len(s), len(substr)
	if lsub == 0 {
		return 0
	}
	for i := 0; i+lsub <= ls; i++ {
		if equalFold(s[i:i+lsub], substr) {
			return i
		}
	}
	return -1
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
