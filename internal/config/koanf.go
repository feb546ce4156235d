// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched, in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/boardcrawl/config.yaml",
	"/etc/boardcrawl/config.yml",
}

// ConfigPathEnvVar overrides the config file path search entirely.
const ConfigPathEnvVar = "CONFIG_PATH"

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Environment     string        `koanf:"environment"` // development | production
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig controls the zerolog-backed logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SecurityConfig controls origin allow-listing and per-route rate limits.
// Recovered from original_source: the websocket handshake is long-lived and
// rate-limited separately from the request/response autocomplete and
// cancellation endpoints.
type SecurityConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`

	AutocompleteRateLimit       int           `koanf:"autocomplete_rate_limit"`
	AutocompleteRateLimitWindow time.Duration `koanf:"autocomplete_rate_limit_window"`
	CancelRateLimit             int           `koanf:"cancel_rate_limit"`
	CancelRateLimitWindow       time.Duration `koanf:"cancel_rate_limit_window"`
	HandshakeRateLimit          int           `koanf:"handshake_rate_limit"`
	HandshakeRateLimitWindow    time.Duration `koanf:"handshake_rate_limit_window"`
}

// TranslateConfig configures the external translation collaborator (§4.10).
type TranslateConfig struct {
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// RedditConfig configures the Reddit OAuth2 client-credentials flow (§4.11).
type RedditConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	UserAgent    string `koanf:"user_agent"`
}

// BoardsConfig locates the on-disk board lookup tables (§4.4). A missing
// path is tolerated; the affected adapter simply fails resolution.
type BoardsConfig struct {
	DCInsideLookupPath  string `koanf:"dcinside_lookup_path"`
	BlindLookupPath     string `koanf:"blind_lookup_path"`
	AutocompleteMaxHits int    `koanf:"autocomplete_max_hits"`
}

// CrawlConfig tunes the shared pipeline engine (§4.7) and per-site adapter
// timeouts (§5).
type CrawlConfig struct {
	PageConcurrencyPerSite int           `koanf:"page_concurrency_per_site"`
	PageFetchTimeout       time.Duration `koanf:"page_fetch_timeout"`
	MediaFetchTimeout      time.Duration `koanf:"media_fetch_timeout"`
	LemmyProbeTimeout      time.Duration `koanf:"lemmy_probe_timeout"`
	LemmyProbeCacheTTL     time.Duration `koanf:"lemmy_probe_cache_ttl"`
	LemmyProbeCachePath    string        `koanf:"lemmy_probe_cache_path"`
	OverfetchMultiplier    int           `koanf:"overfetch_multiplier"`
	OverfetchCap           int           `koanf:"overfetch_cap"`
	CircuitBreakerTimeout  time.Duration `koanf:"circuit_breaker_timeout"`
}

// MediaConfig tunes the media packager (§4.8).
type MediaConfig struct {
	DownloadConcurrency int           `koanf:"download_concurrency"`
	MaxFileBytes        int64         `koanf:"max_file_bytes"`
	MaxArchiveBytes     int64         `koanf:"max_archive_bytes"`
	TempDir             string        `koanf:"temp_dir"`
	ArchiveTTL          time.Duration `koanf:"archive_ttl"`
	SweepInterval       time.Duration `koanf:"sweep_interval"`
}

// Config is the root configuration object, assembled by LoadWithKoanf from
// defaults, an optional YAML file, and environment variables.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Security  SecurityConfig  `koanf:"security"`
	Translate TranslateConfig `koanf:"translate"`
	Reddit    RedditConfig    `koanf:"reddit"`
	Boards    BoardsConfig    `koanf:"boards"`
	Crawl     CrawlConfig     `koanf:"crawl"`
	Media     MediaConfig     `koanf:"media"`
}

// defaultConfig returns a Config with sensible defaults, applied before the
// config file and environment variable layers.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3857,
			Host:            "0.0.0.0",
			Environment:     "development",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Security: SecurityConfig{
			AllowedOrigins:              []string{},
			AutocompleteRateLimit:       30,
			AutocompleteRateLimitWindow: time.Minute,
			CancelRateLimit:             10,
			CancelRateLimitWindow:       time.Minute,
			HandshakeRateLimit:          5,
			HandshakeRateLimitWindow:    time.Minute,
		},
		Translate: TranslateConfig{
			BaseURL: "",
			Timeout: 10 * time.Second,
		},
		Reddit: RedditConfig{
			UserAgent: "boardcrawl/1.0",
		},
		Boards: BoardsConfig{
			DCInsideLookupPath:  "/data/lookup/dcinside_galleries.json",
			BlindLookupPath:     "/data/lookup/blind_topics.json",
			AutocompleteMaxHits: 15,
		},
		Crawl: CrawlConfig{
			PageConcurrencyPerSite: 4,
			PageFetchTimeout:       15 * time.Second,
			MediaFetchTimeout:      30 * time.Second,
			LemmyProbeTimeout:      5 * time.Second,
			LemmyProbeCacheTTL:     24 * time.Hour,
			LemmyProbeCachePath:    "/data/cache/lemmy-probe",
			OverfetchMultiplier:    3,
			OverfetchCap:           2000,
			CircuitBreakerTimeout:  30 * time.Second,
		},
		Media: MediaConfig{
			DownloadConcurrency: 6,
			MaxFileBytes:        50 << 20,  // 50MB
			MaxArchiveBytes:     500 << 20, // 500MB
			TempDir:             "/data/media",
			ArchiveTTL:          30 * time.Minute,
			SweepInterval:       5 * time.Minute,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file, if present
//  3. Environment variables: override any setting
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths lists config paths that arrive from the environment as
// comma-separated strings but must be stored as slices.
var sliceConfigPaths = []string{
	"security.allowed_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps the environment variables named in spec §6 (plus
// ambient tuning knobs) onto koanf config paths. Unmapped variables are
// skipped so unrelated process environment does not pollute configuration.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"app_env":   "server.environment",
		"port":      "server.port",
		"host":      "server.host",
		"log_level": "logging.level",

		"allowed_origins": "security.allowed_origins",

		"translate_api_key":  "translate.api_key",
		"translate_base_url": "translate.base_url",
		"translate_timeout":  "translate.timeout",

		"reddit_client_id":     "reddit.client_id",
		"reddit_client_secret": "reddit.client_secret",
		"reddit_user_agent":    "reddit.user_agent",

		"dcinside_lookup_path": "boards.dcinside_lookup_path",
		"blind_lookup_path":    "boards.blind_lookup_path",

		"crawl_page_concurrency_per_site": "crawl.page_concurrency_per_site",
		"crawl_page_fetch_timeout":        "crawl.page_fetch_timeout",
		"crawl_media_fetch_timeout":       "crawl.media_fetch_timeout",

		"media_download_concurrency": "media.download_concurrency",
		"media_max_file_bytes":       "media.max_file_bytes",
		"media_max_archive_bytes":    "media.max_archive_bytes",
		"media_temp_dir":             "media.temp_dir",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}

// GetKoanfInstance returns a fresh Koanf instance for advanced usage, such
// as tests that need a custom source layering.
func GetKoanfInstance() *koanf.Koanf {
	return koanf.New(".")
}
