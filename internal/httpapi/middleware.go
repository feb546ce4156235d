// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package httpapi

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/boardcrawl/internal/logging"
	boardmw "github.com/tomtom215/boardcrawl/internal/middleware"
	"github.com/tomtom215/boardcrawl/internal/metrics"
)

// RateLimitConfig names one endpoint's request budget. Separate
// endpoints get separate budgets rather than one global limiter: a
// burst of autocomplete keystrokes should not starve the websocket
// handshake, and vice versa.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Middleware builds the Chi-compatible middleware this package's router
// wires onto each route group, parameterized by the security section of
// the running config (§9 deployment policy).
type Middleware struct {
	allowedOrigins []string
	cors           func(http.Handler) http.Handler
	perf           *boardmw.PerformanceMonitor

	handshake    RateLimitConfig
	autocomplete RateLimitConfig
	cancel       RateLimitConfig
}

// performanceWindow bounds how many recent requests the debug stats
// endpoint aggregates over.
const performanceWindow = 1000

// NewMiddleware builds a Middleware from the allowed CORS origins and
// the three named rate-limit tiers the router applies. An empty
// allowedOrigins leaves go-chi/cors on its default, which accepts every
// origin; config validation requires a non-empty list in production.
func NewMiddleware(allowedOrigins []string, handshake, autocomplete, cancel RateLimitConfig) *Middleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           86400,
	})

	return &Middleware{
		allowedOrigins: allowedOrigins,
		cors:           corsHandler,
		perf:           boardmw.NewPerformanceMonitor(performanceWindow),
		handshake:      handshake,
		autocomplete:   autocomplete,
		cancel:         cancel,
	}
}

// CORS returns the shared cross-origin middleware.
func (m *Middleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// Performance records latency and status for every request so the
// debug stats endpoint can report per-endpoint percentiles.
func (m *Middleware) Performance() func(http.Handler) http.Handler {
	return m.perf.Middleware
}

// PerformanceStats serves the aggregated per-endpoint latency
// statistics recorded by Performance (§9 ambient observability).
func (m *Middleware) PerformanceStats(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, m.perf.GetStats())
}

// RateLimitHandshake bounds how often one IP may open a new crawl
// session (§9): the handshake fans out into a full crawl, so it is the
// most expensive request this service serves.
func (m *Middleware) RateLimitHandshake() func(http.Handler) http.Handler {
	return m.rateLimitCustom("crawl_ws", m.handshake)
}

// RateLimitAutocomplete bounds board-name keystroke lookups.
func (m *Middleware) RateLimitAutocomplete() func(http.Handler) http.Handler {
	return m.rateLimitCustom("boards_autocomplete", m.autocomplete)
}

// RateLimitCancel bounds cancellation requests.
func (m *Middleware) RateLimitCancel() func(http.Handler) http.Handler {
	return m.rateLimitCustom("crawl_cancel", m.cancel)
}

// RateLimitHealth is permissive: monitoring probes should never be
// throttled in practice.
var RateLimitHealth = RateLimitConfig{Requests: 1000, Window: time.Minute}

func (m *Middleware) RateLimitHealth() func(http.Handler) http.Handler {
	return m.rateLimitCustom("health", RateLimitHealth)
}

func (m *Middleware) rateLimitCustom(endpoint string, cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := httprate.Limit(cfg.Requests, cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.APIRateLimitHits.WithLabelValues(endpoint).Inc()
			respondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
		}),
	)
	return limiter
}

// SecurityHeaders adds the baseline response headers every API
// endpoint should carry (§9): no caching of session data, no framing,
// no MIME sniffing.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// RequestLogging wraps chi's RequestID middleware, attaches a
// correlation id to the request context, and records the
// api_requests_total/api_request_duration_seconds/api_active_requests
// metrics around every request (§9 observability).
func RequestLogging(next http.Handler) http.Handler {
	withRequestID := chimiddleware.RequestID(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = logging.GenerateRequestID()
			r.Header.Set("X-Request-ID", requestID)
		}
		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		ctx = logging.ContextWithNewCorrelationID(ctx)

		start := time.Now()
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		withRequestID.ServeHTTP(rec, r.WithContext(ctx))

		metrics.RecordAPIRequest(r.Method, r.URL.Path, http.StatusText(rec.status), time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
