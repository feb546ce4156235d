// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package adapters

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/tomtom215/boardcrawl/internal/crawl"
	"github.com/tomtom215/boardcrawl/internal/dispatch"
	"github.com/tomtom215/boardcrawl/internal/postrecord"
)

const bbcSite = "bbc"
const bbcPageSize = 20

// bbcSections maps a short board name to its RSS feed; any other
// identifier is fetched as a page URL and scraped as HTML, and the
// empty string (§4.6) scrapes the front page.
var bbcSections = map[string]string{
	"world":     "https://feeds.bbci.co.uk/news/world/rss.xml",
	"business":  "https://feeds.bbci.co.uk/news/business/rss.xml",
	"technology": "https://feeds.bbci.co.uk/news/technology/rss.xml",
	"science":   "https://feeds.bbci.co.uk/news/science_and_environment/rss.xml",
}

// DetectBBCSection is the URL-detection helper exposed at the dispatch
// boundary (§4.3): it reports whether input names a known section and,
// if so, returns a display name.
func DetectBBCSection(input string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(input))
	if _, ok := bbcSections[key]; ok {
		return strings.ToUpper(key[:1]) + key[1:], true
	}
	return "", false
}

// NewBBCAdapter builds the BBC dispatch.AdapterFunc: RSS for known
// sections, best-effort HTML scraping otherwise.
func NewBBCAdapter() dispatch.AdapterFunc {
	client := &http.Client{Timeout: pageFetchTimeout}
	parser := gofeed.NewParser()

	return func(ctx context.Context, boardIdentifier string, opts map[string]string, progress dispatch.ProgressSink) ([]postrecord.Record, error) {
		predicate := predicateFromOpts(opts)
		startIndex, endIndex := indexRange(opts)

		fetchPage := func(ctx context.Context, page int) ([]postrecord.Record, error) {
			if page > 1 {
				return nil, nil // RSS/front-page scraping is single-page
			}
			if feedURL, ok := bbcSections[strings.ToLower(boardIdentifier)]; ok {
				return fetchBBCFeed(ctx, parser, feedURL)
			}
			return fetchBBCHTML(ctx, client, boardIdentifier)
		}

		return crawl.Run(ctx, crawl.RunConfig{
			Site:        bbcSite,
			Board:       boardIdentifier,
			FetchPage:   fetchPage,
			Predicate:   predicate,
			StartIndex:  startIndex,
			EndIndex:    endIndex,
			PageSize:    bbcPageSize,
			Concurrency: 1,
			LowerBound:  30,
			OnProgress:  wrapProgress(progress, bbcSite, boardIdentifier),
		})
	}
}

func fetchBBCFeed(ctx context.Context, parser *gofeed.Parser, feedURL string) ([]postrecord.Record, error) {
	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("bbc: parsing feed: %w", err)
	}

	records := make([]postrecord.Record, 0, len(feed.Items))
	for _, item := range feed.Items {
		r := postrecord.Record{
			TitleOriginal: item.Title,
			Link:          item.Link,
			Body:          item.Description,
			Site:          bbcSite,
		}
		if item.PublishedParsed != nil {
			r.CreatedAt = datetimeFormatUTC(*item.PublishedParsed)
		}
		records = append(records, r)
	}
	return records, nil
}

func fetchBBCHTML(ctx context.Context, client *http.Client, sectionURL string) ([]postrecord.Record, error) {
	if sectionURL == "" {
		sectionURL = "https://www.bbc.com/news"
	}
	req, err := newGetRequest(ctx, sectionURL, defaultScrapeHeaders)
	if err != nil {
		return nil, err
	}
	resp, err := doRequest(client, bbcSite, "fetch_page", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("bbc: parsing section page: %w", err)
	}

	return extractUniversalAnchors(doc, sectionURL, bbcSite), nil
}
