// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/boardcrawl/internal/boards"
	"github.com/tomtom215/boardcrawl/internal/config"
	"github.com/tomtom215/boardcrawl/internal/detect"
	"github.com/tomtom215/boardcrawl/internal/httpapi"
	"github.com/tomtom215/boardcrawl/internal/logging"
	"github.com/tomtom215/boardcrawl/internal/media"
	"github.com/tomtom215/boardcrawl/internal/session"
	"github.com/tomtom215/boardcrawl/internal/supervisor"
	"github.com/tomtom215/boardcrawl/internal/supervisor/services"
	"github.com/tomtom215/boardcrawl/internal/translate"
	wsocket "github.com/tomtom215/boardcrawl/internal/websocket"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("environment", cfg.Server.Environment).Msg("starting boardcrawl")

	lemmyDB, err := openLemmyCache(cfg.Crawl.LemmyProbeCachePath)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open lemmy-probe cache")
	}
	defer func() {
		if err := lemmyDB.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing lemmy-probe cache")
		}
	}()

	resolver := boards.NewResolver()
	if err := resolver.LoadDCInside(cfg.Boards.DCInsideLookupPath); err != nil {
		logging.Fatal().Err(err).Msg("failed to load dcinside lookup table")
	}
	if err := resolver.LoadBlind(cfg.Boards.BlindLookupPath); err != nil {
		logging.Fatal().Err(err).Msg("failed to load blind lookup table")
	}
	logging.Info().
		Bool("dcinside_loaded", resolver.DCInsideLoaded()).
		Bool("blind_loaded", resolver.BlindLoaded()).
		Msg("board lookup tables loaded")

	lemmyProber := detect.NewCachedLemmyProber(lemmyDB, cfg.Crawl.LemmyProbeCacheTTL)
	detector := detect.New(lemmyProber)
	registry := registerAdapters(cfg, resolver)

	var translator *translate.Client
	if cfg.Translate.BaseURL != "" {
		translator = translate.New(cfg.Translate.BaseURL, cfg.Translate.APIKey)
		logging.Info().Str("base_url", cfg.Translate.BaseURL).Msg("translation client configured")
	} else {
		logging.Info().Msg("translation disabled (translate.base_url not set)")
	}

	packager := media.NewPackager(
		float64(cfg.Media.DownloadConcurrency),
		cfg.Media.DownloadConcurrency*4,
		cfg.Media.ArchiveTTL,
	)
	packager.SetLimits(cfg.Media.MaxFileBytes, cfg.Media.MaxArchiveBytes)

	sessions := wsocket.NewRegistry()
	handshakeCfg := session.HandshakeConfig{
		Production:     cfg.Server.Environment == "production",
		AllowedOrigins: cfg.Security.AllowedOrigins,
	}
	controller := session.NewController(registry, detector, translator, packager, sessions, handshakeCfg)

	handler := httpapi.NewHandler(controller, resolver, session.ArchiveDir, "1.0")
	middleware := httpapi.NewMiddleware(cfg.Security.AllowedOrigins,
		httpapi.RateLimitConfig{Requests: cfg.Security.HandshakeRateLimit, Window: cfg.Security.HandshakeRateLimitWindow},
		httpapi.RateLimitConfig{Requests: cfg.Security.AutocompleteRateLimit, Window: cfg.Security.AutocompleteRateLimitWindow},
		httpapi.RateLimitConfig{Requests: cfg.Security.CancelRateLimit, Window: cfg.Security.CancelRateLimitWindow},
	)
	router := httpapi.Router(handler, middleware)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slogLogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create supervisor tree")
	}

	tree.AddMessagingService(media.NewArchiveSweeperService(session.ArchiveDir, cfg.Media.SweepInterval))
	logging.Info().Str("dir", session.ArchiveDir).Msg("media archive sweeper added to supervisor tree")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Crawl.PageFetchTimeout,
		WriteTimeout: cfg.Crawl.PageFetchTimeout,
		IdleTimeout:  60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("http server added to supervisor tree")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service failed to stop")
		}
	}

	logging.Info().Msg("boardcrawl stopped gracefully")
}

// openLemmyCache opens the BadgerDB instance backing the dynamic Lemmy
// discovery probe's verdict cache (§4.5 step 2).
func openLemmyCache(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.ValueLogFileSize = 16 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for lemmy-probe cache: %w", err)
	}
	return db, nil
}
