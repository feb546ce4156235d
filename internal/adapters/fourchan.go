// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/tomtom215/boardcrawl/internal/crawl"
	"github.com/tomtom215/boardcrawl/internal/dispatch"
	"github.com/tomtom215/boardcrawl/internal/postrecord"
)

const fourChanSite = "4chan"
const fourChanPageSize = 15

var fourChanTagRE = regexp.MustCompile(`<[^>]+>`)

// NewFourChanAdapter builds the 4chan dispatch.AdapterFunc against the
// public read-only JSON API (a.4cdn.org), paging through catalog pages
// rather than individual threads (§4.3).
func NewFourChanAdapter() dispatch.AdapterFunc {
	client := &http.Client{Timeout: pageFetchTimeout}

	return func(ctx context.Context, boardIdentifier string, opts map[string]string, progress dispatch.ProgressSink) ([]postrecord.Record, error) {
		board := strings.Trim(strings.ToLower(boardIdentifier), "/")
		if board == "" {
			return nil, fmt.Errorf("4chan: empty board code")
		}

		predicate := predicateFromOpts(opts)
		startIndex, endIndex := indexRange(opts)

		catalog, err := fetchFourChanCatalog(ctx, client, board)
		if err != nil {
			return nil, err
		}

		fetchPage := func(ctx context.Context, page int) ([]postrecord.Record, error) {
			return catalogPage(catalog, board, page), nil
		}

		return crawl.Run(ctx, crawl.RunConfig{
			Site:        fourChanSite,
			Board:       board,
			FetchPage:   fetchPage,
			Predicate:   predicate,
			StartIndex:  startIndex,
			EndIndex:    endIndex,
			PageSize:    fourChanPageSize,
			Concurrency: 1,
			LowerBound:  30,
			OnProgress:  wrapProgress(progress, fourChanSite, board),
		})
	}
}

type fourChanCatalogPage struct {
	Threads []fourChanThread `json:"threads"`
}

type fourChanThread struct {
	No       int    `json:"no"`
	Sub      string `json:"sub"`
	Com      string `json:"com"`
	Name     string `json:"name"`
	Now      string `json:"now"`
	Time     int64  `json:"time"`
	Replies  int    `json:"replies"`
	Images   int    `json:"images"`
	Tim      int64  `json:"tim"`
	Ext      string `json:"ext"`
	Filename string `json:"filename"`
}

func fetchFourChanCatalog(ctx context.Context, client *http.Client, board string) ([]fourChanThread, error) {
	catalogURL := fmt.Sprintf("https://a.4cdn.org/%s/catalog.json", board)
	req, err := newGetRequest(ctx, catalogURL, defaultScrapeHeaders)
	if err != nil {
		return nil, err
	}

	resp, err := doRequest(client, fourChanSite, "fetch_catalog", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var pages []fourChanCatalogPage
	if err := json.NewDecoder(resp.Body).Decode(&pages); err != nil {
		return nil, fmt.Errorf("4chan: decoding catalog: %w", err)
	}

	var threads []fourChanThread
	for _, p := range pages {
		threads = append(threads, p.Threads...)
	}
	return threads, nil
}

// catalogPage slices the flattened catalog into fourChanPageSize chunks,
// matching the generic engine's page-number contract even though the
// upstream API returns the full catalog in one call.
func catalogPage(catalog []fourChanThread, board string, page int) []postrecord.Record {
	start := (page - 1) * fourChanPageSize
	if start >= len(catalog) {
		return nil
	}
	end := start + fourChanPageSize
	if end > len(catalog) {
		end = len(catalog)
	}

	records := make([]postrecord.Record, 0, end-start)
	for _, t := range catalog[start:end] {
		title := firstNonEmpty(stripFourChanHTML(t.Sub), stripFourChanHTML(t.Com))
		if title == "" {
			title = fmt.Sprintf("Thread #%d", t.No)
		}

		r := postrecord.Record{
			TitleOriginal: title,
			Link:          fmt.Sprintf("https://boards.4chan.org/%s/thread/%d", board, t.No),
			Body:          stripFourChanHTML(t.Com),
			Author:        firstNonEmpty(t.Name, "Anonymous"),
			Board:         board,
			Site:          fourChanSite,
			Comments:      t.Replies,
			Views:         t.Images,
			CreatedAt:     datetimeFormatUTC(time.Unix(t.Time, 0).UTC()),
		}
		if t.Tim != 0 && t.Ext != "" {
			r.MediaURL = fmt.Sprintf("https://i.4cdn.org/%s/%d%s", board, t.Tim, t.Ext)
		}
		r.ApplyThumbnailFallback()
		records = append(records, r)
	}
	return records
}

func stripFourChanHTML(raw string) string {
	if raw == "" {
		return ""
	}
	withBreaks := strings.ReplaceAll(raw, "<br>", "\n")
	stripped := fourChanTagRE.ReplaceAllString(withBreaks, "")
	return strings.TrimSpace(html.UnescapeString(stripped))
}
