// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

// Package media implements the post-crawl media packager (§4.8):
// scanning Post Records for downloadable media URLs, downloading and
// deduplicating them, and assembling the result into a ZIP archive.
package media

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/time/rate"

	"github.com/tomtom215/boardcrawl/internal/cache"
	"github.com/tomtom215/boardcrawl/internal/logging"
	"github.com/tomtom215/boardcrawl/internal/metrics"
	"github.com/tomtom215/boardcrawl/internal/postrecord"
)

const (
	maxFileSize      = 100 * 1024 * 1024 // ~100 MB
	maxAggregateSize = 900 * 1024 * 1024 // ~900 MB
	perHostConcurrency = 5
	fetchTimeout     = 30 * time.Second
	maxAttempts      = 3
)

var knownMediaExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".bmp": true, ".avif": true, ".mp4": true, ".webm": true, ".mov": true,
	".gifv": true,
}

// whitelistedHosts validates media URLs whose extension is ambiguous
// or absent (e.g. a redirect-style CDN path), per the hosting domains
// named in §4.8.
var whitelistedHosts = []string{
	"imgur.com", "i.redd.it", "v.redd.it", "pinimg.com", "youtube.com",
	"youtu.be", "streamable.com", "giphy.com", "gfycat.com",
	"cdn.discordapp.com", "media.discordapp.net",
}

var sanitizeRE = regexp.MustCompile(`[<>:"/\\|?*]`)
var collapseUnderscoreRE = regexp.MustCompile(`_+`)

// Packager downloads and archives the media referenced by a crawl's
// Post Records.
type Packager struct {
	client    *http.Client
	limiter   *rate.Limiter
	dedup     *cache.ExactLRU
	hostSem   map[string]chan struct{}
	hostSemMu sync.Mutex

	maxFileBytes    int64
	maxArchiveBytes int64
}

// NewPackager returns a Packager whose download throughput is capped
// at requestsPerSecond and whose URL-level deduplication window holds
// up to dedupCapacity entries for dedupTTL. Per-file and aggregate
// size caps default to maxFileSize/maxAggregateSize; call SetLimits to
// override them from configuration.
func NewPackager(requestsPerSecond float64, dedupCapacity int, dedupTTL time.Duration) *Packager {
	return &Packager{
		client:          &http.Client{Timeout: fetchTimeout},
		limiter:         rate.NewLimiter(rate.Limit(requestsPerSecond), int(requestsPerSecond)+1),
		dedup:           cache.NewExactLRU(dedupCapacity, dedupTTL),
		hostSem:         map[string]chan struct{}{},
		maxFileBytes:    maxFileSize,
		maxArchiveBytes: maxAggregateSize,
	}
}

// SetLimits overrides the per-file and aggregate-archive byte caps
// (§4.8). Non-positive values are ignored, leaving the prior limit in
// place.
func (p *Packager) SetLimits(maxFileBytes, maxArchiveBytes int64) {
	if maxFileBytes > 0 {
		p.maxFileBytes = maxFileBytes
	}
	if maxArchiveBytes > 0 {
		p.maxArchiveBytes = maxArchiveBytes
	}
}

// CandidateURLs scans r for downloadable media URLs, drawing from the
// fixed field set plus any extras entries whose key suggests an
// attachment.
func CandidateURLs(r postrecord.Record) []string {
	var urls []string
	if r.ThumbnailURL != "" {
		urls = append(urls, r.ThumbnailURL)
	}
	if r.MediaURL != "" && r.MediaURL != r.ThumbnailURL {
		urls = append(urls, r.MediaURL)
	}
	for k, v := range r.Extras {
		if !strings.Contains(strings.ToLower(k), "image") && !strings.Contains(strings.ToLower(k), "attachment") {
			continue
		}
		if s, ok := v.(string); ok && s != "" {
			urls = append(urls, s)
		}
	}
	return urls
}

// IsValidMediaURL reports whether candidate is a known media extension
// or belongs to a whitelisted hosting domain.
func IsValidMediaURL(candidate string) bool {
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if knownMediaExtensions[ext] {
		return true
	}
	host := strings.ToLower(u.Hostname())
	for _, allowed := range whitelistedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

// downloadedFile is one successfully fetched and named media item.
type downloadedFile struct {
	name string
	data []byte
}

// semFor returns (creating if necessary) the per-host concurrency
// semaphore for host.
func (p *Packager) semFor(host string) chan struct{} {
	p.hostSemMu.Lock()
	defer p.hostSemMu.Unlock()
	sem, ok := p.hostSem[host]
	if !ok {
		sem = make(chan struct{}, perHostConcurrency)
		p.hostSem[host] = sem
	}
	return sem
}

// Package downloads the deduplicated, whitelisted media referenced by
// records and assembles them into a ZIP archive at outPath. It returns
// the number of files written and the aggregate byte size.
func (p *Packager) Package(ctx context.Context, records []postrecord.Record, outPath string) (int, int64, error) {
	var candidates []string
	seen := map[string]bool{}
	for _, r := range records {
		for _, u := range CandidateURLs(r) {
			if !IsValidMediaURL(u) || seen[u] || p.dedup.IsDuplicate(u) {
				continue
			}
			seen[u] = true
			candidates = append(candidates, u)
		}
	}

	var mu sync.Mutex
	var aggregate int64
	var files []downloadedFile
	var wg sync.WaitGroup

	for i, u := range candidates {
		if err := p.limiter.Wait(ctx); err != nil {
			break
		}

		mu.Lock()
		over := aggregate >= p.maxArchiveBytes
		mu.Unlock()
		if over {
			logging.Warn().Int64("aggregate_bytes", aggregate).Msg("media package aggregate size cap reached, skipping remaining items")
			break
		}

		wg.Add(1)
		go func(idx int, mediaURL string) {
			defer wg.Done()
			host := hostOf(mediaURL)
			sem := p.semFor(host)
			sem <- struct{}{}
			defer func() { <-sem }()

			data, err := p.fetchWithRetry(ctx, mediaURL)
			if err != nil {
				logging.Warn().Str("url", mediaURL).Err(err).Msg("media download failed after retries")
				return
			}
			if int64(len(data)) > p.maxFileBytes {
				logging.Warn().Str("url", mediaURL).Int("size", len(data)).Msg("media file exceeds per-file size cap, skipping")
				return
			}

			name := filenameFor(mediaURL, idx, data)

			mu.Lock()
			defer mu.Unlock()
			if aggregate+int64(len(data)) > p.maxArchiveBytes {
				return
			}
			aggregate += int64(len(data))
			files = append(files, downloadedFile{name: name, data: data})
		}(i, u)
	}
	wg.Wait()

	for _, u := range candidates {
		p.dedup.Record(u)
	}

	if len(files) == 0 {
		return 0, 0, nil
	}

	if err := writeZip(outPath, deduplicateNames(files)); err != nil {
		return 0, 0, fmt.Errorf("media: writing archive: %w", err)
	}

	metrics.MediaArchivesBuilt.Inc()
	metrics.MediaArchiveSize.Observe(float64(aggregate))
	return len(files), aggregate, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	return u.Hostname()
}

func (p *Packager) fetchWithRetry(ctx context.Context, mediaURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		start := time.Now()
		data, err := p.fetchOnce(ctx, mediaURL)
		metrics.RecordMediaDownload(hostOf(mediaURL), int64(len(data)), time.Since(start), err)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if attempt < maxAttempts {
			backoff := time.Duration(attempt) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return nil, fmt.Errorf("media: %d attempts failed, last error: %w", maxAttempts, lastErr)
}

func (p *Packager) fetchOnce(ctx context.Context, mediaURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media: unexpected status %d fetching %s", resp.StatusCode, mediaURL)
	}
	return io.ReadAll(io.LimitReader(resp.Body, p.maxFileBytes+1))
}

// filenameFor derives a sanitized filename from the URL path, falling
// back to a hash-derived name when the path yields nothing usable.
func filenameFor(mediaURL string, index int, data []byte) string {
	u, err := url.Parse(mediaURL)
	base := ""
	ext := ""
	if err == nil {
		base = path.Base(u.Path)
		ext = strings.ToLower(path.Ext(base))
	}

	sanitized := sanitizeFilename(base)
	if sanitized == "" || sanitized == "." {
		sum := blake2b.Sum256(data)
		if ext == "" {
			ext = ".bin"
		}
		return fmt.Sprintf("media_%d_%x%s", index, sum[:8], ext)
	}
	return sanitized
}

func sanitizeFilename(name string) string {
	name = sanitizeRE.ReplaceAllString(name, "_")
	name = collapseUnderscoreRE.ReplaceAllString(name, "_")
	return strings.Trim(name, "_")
}

// deduplicateNames appends _1, _2, ... to colliding filenames in the
// order files were downloaded.
func deduplicateNames(files []downloadedFile) []downloadedFile {
	seen := map[string]int{}
	out := make([]downloadedFile, len(files))
	for i, f := range files {
		name := f.name
		count := seen[name]
		seen[name] = count + 1
		if count > 0 {
			ext := filepath.Ext(name)
			base := strings.TrimSuffix(name, ext)
			name = fmt.Sprintf("%s_%d%s", base, count, ext)
		}
		out[i] = downloadedFile{name: name, data: f.data}
	}
	return out
}

func writeZip(outPath string, files []downloadedFile) error {
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return err
		}
		if _, err := w.Write(f.data); err != nil {
			return err
		}
	}
	return nil
}
