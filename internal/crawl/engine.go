// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

// Package crawl implements the shared paginated fetch/filter/stop loop
// used by every site adapter (§4.7), factored out of the per-site
// duplication the aggregator otherwise tends toward.
package crawl

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/boardcrawl/internal/metrics"
	"github.com/tomtom215/boardcrawl/internal/postrecord"
)

// FetchPageFunc fetches one page of results. An empty, nil-error
// result means the source had nothing more to offer on that page.
type FetchPageFunc func(ctx context.Context, page int) ([]postrecord.Record, error)

// Frame is one progress update emitted during a crawl.
type Frame struct {
	Progress     float64
	Step         string
	Site         string
	Board        string
	MatchedPosts int
	CurrentPage  int
	MaxPages     int
}

// OnProgress receives Frame updates; nil is a valid no-op sink.
type OnProgress func(Frame)

// RunConfig parameterizes a single crawl invocation.
type RunConfig struct {
	Site  string
	Board string

	FetchPage FetchPageFunc
	Predicate postrecord.Predicate

	StartIndex int
	EndIndex   int
	PageSize   int

	// Concurrency is the max number of in-flight page fetches (1-4,
	// §4.7). Values < 1 are treated as 1.
	Concurrency int

	// LowerBound is this site's lower progress bound for the
	// collecting phase, in [25, 40] (§4.7).
	LowerBound float64

	OnProgress OnProgress
}

const collectingUpperBound = 75.0

// maxConsecutiveEmptyPages stops the crawl after this many pages in a
// row returned zero records (§4.7).
const maxConsecutiveEmptyPages = 3

// Run drives the shared pipeline loop against cfg.FetchPage, returning
// the final, ranked slice of Post Records.
func Run(ctx context.Context, cfg RunConfig) ([]postrecord.Record, error) {
	start := time.Now()
	hasFilters := cfg.Predicate.HasFilters()
	hasDateFilter := cfg.Predicate.HasDateRange

	maxPages := computeMaxPages(hasFilters, cfg.EndIndex, cfg.PageSize)
	target := cfg.EndIndex

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var allSeen []postrecord.Record
	var matched []postrecord.Record
	consecutiveFails := 0
	pagesFetched := 0

	pending := map[int]chan pageResult{}
	launchUpTo := func(page int) {
		for p := page; p < page+concurrency && p <= maxPages; p++ {
			if _, ok := pending[p]; ok {
				continue
			}
			pending[p] = launchFetch(ctx, cfg.FetchPage, p)
		}
	}

	page := 1
	launchUpTo(page)

outer:
	for page <= maxPages {
		select {
		case <-ctx.Done():
			break outer
		default:
		}

		res := <-pending[page]
		delete(pending, page)
		pagesFetched++

		if res.err != nil {
			metrics.RecordAdapterFetch(cfg.Site, "fetch_page", 0, res.err)
			consecutiveFails++
			if consecutiveFails >= maxConsecutiveEmptyPages {
				break
			}
			page++
			launchUpTo(page)
			continue
		}

		if len(res.posts) == 0 {
			consecutiveFails++
			if consecutiveFails >= maxConsecutiveEmptyPages {
				break
			}
			page++
			launchUpTo(page)
			continue
		}
		consecutiveFails = 0

		for _, p := range res.posts {
			allSeen = append(allSeen, p)
			ok, reason := cfg.Predicate.Check(p)
			if ok {
				matched = append(matched, p)
				consecutiveFails = 0
			} else {
				consecutiveFails++
				metrics.CrawlPostsFiltered.WithLabelValues(cfg.Site, reason).Inc()
			}
			if len(matched) >= target {
				break outer
			}
		}

		if postrecord.ShouldStop(consecutiveFails, hasDateFilter) {
			break
		}

		emitProgress(cfg, page, maxPages, len(matched))
		page++
		launchUpTo(page)
	}

	metrics.CrawlDuration.Observe(time.Since(start).Seconds())
	metrics.CrawlPagesFetched.WithLabelValues(cfg.Site).Add(float64(pagesFetched))

	return sliceAndRank(matched, cfg.StartIndex, cfg.EndIndex), nil
}

type pageResult struct {
	posts []postrecord.Record
	err   error
}

func launchFetch(ctx context.Context, fetch FetchPageFunc, page int) chan pageResult {
	ch := make(chan pageResult, 1)
	go func() {
		posts, err := fetch(ctx, page)
		ch <- pageResult{posts: posts, err: err}
	}()
	return ch
}

// computeMaxPages implements the §4.7 formula: has_filters ? 200 :
// min(20, ceil(end_index/page_size)+3).
func computeMaxPages(hasFilters bool, endIndex, pageSize int) int {
	if hasFilters {
		return 200
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	byTarget := int(math.Ceil(float64(endIndex)/float64(pageSize))) + 3
	if byTarget > 20 {
		return 20
	}
	return byTarget
}

func emitProgress(cfg RunConfig, page, maxPages, matchedCount int) {
	if cfg.OnProgress == nil {
		return
	}
	fraction := 1.0
	if maxPages > 0 {
		fraction = float64(page) / float64(maxPages)
	}
	if fraction > 1 {
		fraction = 1
	}
	progress := cfg.LowerBound + fraction*(collectingUpperBound-cfg.LowerBound)
	cfg.OnProgress(Frame{
		Progress:     clampProgress(progress),
		Step:         "collecting",
		Site:         cfg.Site,
		Board:        cfg.Board,
		MatchedPosts: matchedCount,
		CurrentPage:  page,
		MaxPages:     maxPages,
	})
}

func clampProgress(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// sliceAndRank implements "result := matched[start_index-1:end_index];
// assign ranks starting at start_index", clamped to the actual number
// of matches collected.
func sliceAndRank(matched []postrecord.Record, startIndex, endIndex int) []postrecord.Record {
	lo := startIndex - 1
	if lo < 0 {
		lo = 0
	}
	if lo > len(matched) {
		lo = len(matched)
	}
	hi := endIndex
	if hi > len(matched) {
		hi = len(matched)
	}
	if hi < lo {
		hi = lo
	}

	out := make([]postrecord.Record, hi-lo)
	for i, p := range matched[lo:hi] {
		p.Rank = startIndex + i
		out[i] = p
	}
	return out
}

// ValidationError wraps a configuration problem detected before a
// crawl starts (e.g. a nil FetchPage), distinct from an adapter-level
// fetch failure.
type ValidationError struct{ Msg string }

func (e ValidationError) Error() string { return fmt.Sprintf("crawl: %s", e.Msg) }
