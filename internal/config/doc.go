// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

/*
Package config provides centralized configuration management for boardcrawl.

Configuration is layered with Koanf: built-in defaults, an optional YAML
file, then environment variables, in that order of precedence.

# Configuration Structure

  - ServerConfig: HTTP listener (host, port, environment, shutdown timeout)
  - LoggingConfig: zerolog level/format/caller settings
  - SecurityConfig: CORS origin allow-list and per-route rate limits
  - TranslateConfig: external translation collaborator (§4.10)
  - RedditConfig: Reddit OAuth2 client-credentials settings (§4.11)
  - BoardsConfig: on-disk board lookup table paths (§4.4)
  - CrawlConfig: per-site page concurrency and timeouts (§4.7, §5)
  - MediaConfig: media packager size caps and sweep interval (§4.8)

# Environment Variables

	APP_ENV                 server.environment (development|production)
	PORT                    server.port
	HOST                    server.host
	LOG_LEVEL               logging.level
	ALLOWED_ORIGINS         security.allowed_origins (comma-separated)
	TRANSLATE_API_KEY       translate.api_key
	TRANSLATE_BASE_URL      translate.base_url
	REDDIT_CLIENT_ID        reddit.client_id
	REDDIT_CLIENT_SECRET    reddit.client_secret
	REDDIT_USER_AGENT       reddit.user_agent
	DCINSIDE_LOOKUP_PATH    boards.dcinside_lookup_path
	BLIND_LOOKUP_PATH       boards.blind_lookup_path
	CONFIG_PATH             overrides the config file search entirely

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatalf("failed to load config: %v", err)
	}

# Thread Safety

The Config struct is immutable after LoadWithKoanf returns, safe for
concurrent access from multiple goroutines without synchronization.
*/
package config
