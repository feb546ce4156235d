// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	boardmw "github.com/tomtom215/boardcrawl/internal/middleware"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wires the full HTTP surface (§6): the websocket crawl
// endpoint, cancellation, board autocomplete, media archive downloads,
// health checks, metrics, and Swagger docs, each behind the middleware
// chain appropriate to its cost.
func Router(h *Handler, mw *Middleware) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogging)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	r.Use(SecurityHeaders)
	r.Use(mw.Performance())
	r.Use(boardmw.Compression)

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(mw.RateLimitHealth())
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1/crawl", func(r chi.Router) {
		r.With(mw.RateLimitHandshake()).Get("/ws", h.WebSocket)
		r.With(mw.RateLimitCancel()).Post("/cancel", h.Cancel)
	})

	r.Route("/api/v1/boards", func(r chi.Router) {
		r.Use(mw.RateLimitAutocomplete())
		r.Get("/autocomplete", h.Autocomplete)
	})

	r.Get("/api/download-file/{zipName}", h.DownloadFile)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/api/v1/debug/performance", mw.PerformanceStats)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
