// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

/*
Package main is the entry point for the boardcrawl server application.

boardcrawl aggregates community posts from Reddit, DCInside, Blind,
BBC News, 4chan, X, Lemmy, and a generic HTML adapter behind a
single websocket-driven crawl session (§4.9). A small HTTP surface
rounds out the service: out-of-band crawl cancellation, board
autocomplete, completed media archive downloads, health checks, and
metrics.

# Application Architecture

The server runs under Suture v4 process supervision, in the same
three-layer shape as the supervisor package itself:

	RootSupervisor ("boardcrawl")
	├── DataSupervisor ("data-layer")
	│   └── (no services; the Lemmy-probe BadgerDB is opened and closed directly in main)
	├── MessagingSupervisor ("messaging-layer")
	│   └── Media archive sweeper (§4.8)
	└── APISupervisor ("api-layer")
	    └── HTTP server (websocket crawl endpoint plus the REST surface)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and an optional config file
 2. Logging: zerolog with JSON/console output modes
 3. Lemmy-probe cache: BadgerDB-backed verdict cache for the dynamic Lemmy discovery probe (§4.5)
 4. Board resolver: DCInside gallery and Blind topic lookup tables (§4.4), missing files tolerated
 5. Site detector and dispatch registry: all eight site adapters (§4.3, §4.6)
 6. Translation client and media packager (both optional collaborators; nil disables the feature)
 7. Session controller: the websocket crawl session state machine (§4.9)
 8. Supervisor tree: Suture v4 process supervision
 9. HTTP server: Chi router with the websocket, cancellation, autocomplete, download, health, and metrics routes

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	PORT=3857
	APP_ENV=development                 # development or production
	LOG_LEVEL=info                      # trace, debug, info, warn, error

	# Security
	ALLOWED_ORIGINS=https://example.com # comma-separated

	# Reddit OAuth2 client-credentials (optional; Reddit listings fail without it)
	REDDIT_CLIENT_ID=<id>
	REDDIT_CLIENT_SECRET=<secret>

	# Board lookup tables (optional; resolution disabled without them)
	DCINSIDE_LOOKUP_PATH=/data/lookup/dcinside_galleries.json
	BLIND_LOOKUP_PATH=/data/lookup/blind_topics.json

	# Translation (optional; skipped when unset)
	TRANSLATE_BASE_URL=https://translate.example.com
	TRANSLATE_API_KEY=<key>

Log format and the per-endpoint rate limits have no environment
variable; they are set in the config file. The internal/config package
documentation lists every recognized variable and the key it maps to.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP and websocket connections
 2. Waits for in-flight requests and active crawl sessions (shutdown_timeout)
 3. Stops the media archive sweeper and closes the Lemmy-probe cache
 4. Reports any services that failed to stop within the timeout

# Usage Examples

Development (no origin restriction, no Reddit credentials):

	export APP_ENV=development
	go run ./cmd/server

Production:

	export APP_ENV=production
	export ALLOWED_ORIGINS=https://app.example.com
	export REDDIT_CLIENT_ID=xxx REDDIT_CLIENT_SECRET=xxx
	./boardcrawl

# API Documentation

Swagger documentation is available at /swagger/index.html when the
server is running.

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/httpapi: HTTP handlers and routing
  - internal/session: Websocket crawl session controller
  - internal/dispatch: Site registry and parameter preparation
  - DESIGN.md: Grounding ledger and open-question decisions
*/
package main
