// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tomtom215/boardcrawl/internal/crawl"
	"github.com/tomtom215/boardcrawl/internal/dispatch"
	"github.com/tomtom215/boardcrawl/internal/postrecord"
)

const universalSite = "universal"

// anchorSelectors is tried in order; the first selector yielding any
// anchors wins (§4.3 Universal adapter).
var anchorSelectors = []string{
	"h1 a, h2 a, h3 a, h4 a",
	".title a, .headline a",
	"[class*=title] a",
}

// boilerplateLinkText filters out generic "read more"-style anchors
// that aren't real post titles, in English and Korean.
var boilerplateLinkText = map[string]bool{
	"more": true, "read more": true, "click here": true, "continue reading": true,
	"더보기": true, "자세히 보기": true,
}

// NewUniversalAdapter builds the generic best-effort adapter: fetch
// the given URL, enumerate anchors, dedupe by href, emit bare Post
// Records with empty body/metrics.
func NewUniversalAdapter() dispatch.AdapterFunc {
	client := &http.Client{Timeout: pageFetchTimeout}

	return func(ctx context.Context, boardIdentifier string, opts map[string]string, progress dispatch.ProgressSink) ([]postrecord.Record, error) {
		predicate := predicateFromOpts(opts)
		startIndex, endIndex := indexRange(opts)

		fetchPage := func(ctx context.Context, page int) ([]postrecord.Record, error) {
			if page > 1 {
				return nil, nil
			}
			return fetchUniversalPage(ctx, client, boardIdentifier)
		}

		return crawl.Run(ctx, crawl.RunConfig{
			Site:        universalSite,
			Board:       boardIdentifier,
			FetchPage:   fetchPage,
			Predicate:   predicate,
			StartIndex:  startIndex,
			EndIndex:    endIndex,
			PageSize:    50,
			Concurrency: 1,
			LowerBound:  30,
			OnProgress:  wrapProgress(progress, universalSite, boardIdentifier),
		})
	}
}

func fetchUniversalPage(ctx context.Context, client *http.Client, targetURL string) ([]postrecord.Record, error) {
	if targetURL == "" {
		return nil, fmt.Errorf("universal: no target URL supplied")
	}
	req, err := newGetRequest(ctx, targetURL, defaultScrapeHeaders)
	if err != nil {
		return nil, err
	}
	resp, err := doRequest(client, universalSite, "fetch_page", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("universal: parsing page: %w", err)
	}

	return extractUniversalAnchors(doc, targetURL, universalSite), nil
}

// extractUniversalAnchors implements the shared anchor-enumeration
// logic used by both the Universal and BBC HTML-fallback paths.
// baseURLStr resolves relative hrefs and must be the URL the page was
// actually fetched from.
func extractUniversalAnchors(doc *goquery.Document, baseURLStr, site string) []postrecord.Record {
	baseURL, _ := url.Parse(baseURLStr)

	var sel *goquery.Selection
	for _, selector := range anchorSelectors {
		candidate := doc.Find(selector)
		if candidate.Length() > 0 {
			sel = candidate
			break
		}
	}
	if sel == nil {
		return nil
	}

	seen := map[string]bool{}
	var records []postrecord.Record
	sel.Each(func(_ int, a *goquery.Selection) {
		text := strings.TrimSpace(a.Text())
		href, _ := a.Attr("href")
		if text == "" || href == "" {
			return
		}
		if len(text) < 4 || boilerplateLinkText[strings.ToLower(text)] {
			return
		}

		resolved := resolveHref(baseURL, href)
		if seen[resolved] {
			return
		}
		seen[resolved] = true

		records = append(records, postrecord.Record{
			TitleOriginal: text,
			Link:          resolved,
			Site:          site,
		})
	})
	return records
}

func resolveHref(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
