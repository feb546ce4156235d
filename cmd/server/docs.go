// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

// Package main provides the boardcrawl HTTP server.
//
// boardcrawl aggregates community posts from Reddit, DCInside, Blind,
// BBC, 4chan, X, Lemmy, and arbitrary news-style sites behind one
// websocket-driven crawl session protocol.
//
// @title boardcrawl API
// @version 1.0
// @description Multi-source community post aggregation over a websocket crawl session, plus a small request/response surface for cancellation, board autocomplete, and completed media archive downloads.
// @description
// @description ## Features
// @description
// @description - **Streaming crawl sessions**: connect, configure, and receive post batches and progress over one websocket
// @description - **Eight site adapters**: Reddit, DCInside, Blind, BBC, 4chan, X, Lemmy, and a generic HTML adapter
// @description - **Filter predicates**: view/like/comment thresholds and date ranges, applied uniformly across sites
// @description - **Media packaging**: post-crawl media download and ZIP archival, served back over HTTP
// @description - **Board autocomplete**: prefix search over the DCInside gallery and Blind topic lookup tables
// @description
// @description ## Rate Limiting
// @description
// @description The websocket handshake, cancellation, and autocomplete endpoints are each rate-limited per client IP; limits are configurable and reported via `X-RateLimit-*` response headers on the 429 path.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "ERROR_CODE",
// @description     "message": "Human-readable error message"
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-07-30T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/boardcrawl/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:3857
// @BasePath /api/v1
// @schemes http https
//
// @tag.name Crawl
// @tag.description Websocket crawl session handshake and out-of-band cancellation
//
// @tag.name Boards
// @tag.description Board/gallery/topic name autocomplete for sites with opaque identifiers
//
// @tag.name Media
// @tag.description Completed media archive downloads
//
// @tag.name Core
// @tag.description Health checks and metrics
package main
