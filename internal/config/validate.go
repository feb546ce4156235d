// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package config

import "fmt"

// Validate checks the loaded configuration for values that would make the
// service unable to start or behave unpredictably. It does not require the
// optional external collaborators (translation, Reddit) to be configured,
// since those features are opt-in per session (§4.9 step 5).
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("server.environment must be \"development\" or \"production\", got %q", c.Server.Environment)
	}

	if c.Server.Environment == "production" && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("security.allowed_origins is required when server.environment is \"production\"")
	}

	if c.Crawl.PageConcurrencyPerSite < 1 {
		return fmt.Errorf("crawl.page_concurrency_per_site must be >= 1, got %d", c.Crawl.PageConcurrencyPerSite)
	}

	if c.Crawl.OverfetchMultiplier < 1 {
		return fmt.Errorf("crawl.overfetch_multiplier must be >= 1, got %d", c.Crawl.OverfetchMultiplier)
	}

	if c.Media.DownloadConcurrency < 1 {
		return fmt.Errorf("media.download_concurrency must be >= 1, got %d", c.Media.DownloadConcurrency)
	}

	if c.Media.MaxFileBytes > c.Media.MaxArchiveBytes {
		return fmt.Errorf("media.max_file_bytes (%d) cannot exceed media.max_archive_bytes (%d)", c.Media.MaxFileBytes, c.Media.MaxArchiveBytes)
	}

	if c.Boards.AutocompleteMaxHits < 1 {
		return fmt.Errorf("boards.autocomplete_max_hits must be >= 1, got %d", c.Boards.AutocompleteMaxHits)
	}

	return nil
}
