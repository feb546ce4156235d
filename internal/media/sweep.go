// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package media

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/tomtom215/boardcrawl/internal/logging"
	"github.com/tomtom215/boardcrawl/internal/metrics"
)

// ArchiveMaxAge is how long a built ZIP archive is kept before the
// sweep removes it (§4.8).
const ArchiveMaxAge = 4 * time.Hour

// SweepArchives removes every *.zip file under dir whose modification
// time is older than ArchiveMaxAge, returning the count removed.
func SweepArchives(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-ArchiveMaxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".zip" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				logging.Warn().Str("path", path).Err(err).Msg("failed to sweep expired media archive")
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		metrics.MediaArchivesSwept.Add(float64(removed))
	}
	return removed, nil
}

// StartSweeper runs SweepArchives every interval until stop is closed.
func StartSweeper(dir string, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := SweepArchives(dir); err != nil {
				logging.Warn().Err(err).Msg("media archive sweep failed")
			}
		}
	}
}

// ArchiveSweeperService adapts StartSweeper to suture.Service so the
// supervisor tree can own its lifecycle alongside the rest of the
// messaging layer.
type ArchiveSweeperService struct {
	dir      string
	interval time.Duration
}

// NewArchiveSweeperService returns a sweeper service for dir. A
// non-positive interval falls back to 5 minutes.
func NewArchiveSweeperService(dir string, interval time.Duration) *ArchiveSweeperService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ArchiveSweeperService{dir: dir, interval: interval}
}

// Serve implements suture.Service.
func (s *ArchiveSweeperService) Serve(ctx context.Context) error {
	stop := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(stop)
	}()
	StartSweeper(s.dir, s.interval, stop)
	return ctx.Err()
}

// String implements fmt.Stringer; suture uses it to name the service.
func (s *ArchiveSweeperService) String() string {
	return "media-archive-sweeper"
}
