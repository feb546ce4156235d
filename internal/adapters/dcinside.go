// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package adapters

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tomtom215/boardcrawl/internal/boards"
	"github.com/tomtom215/boardcrawl/internal/crawl"
	"github.com/tomtom215/boardcrawl/internal/dispatch"
	"github.com/tomtom215/boardcrawl/internal/postrecord"
)

const dcinsideSite = "dcinside"
const dcinsidePageSize = 20

// viewSelectors, recommendSelectors, and replySelectors are ranked
// fallback lists: the first selector producing a numeric run wins
// (§4.3 DCInside adapter).
var (
	viewSelectors      = []string{".gall_count", "td.gall_count", ".list_count"}
	recommendSelectors = []string{".gall_recommend", "td.gall_recommend"}
	replySelectors     = []string{".reply_num", "span.reply_num"}
)

// NewDCInsideAdapter builds the DCInside dispatch.AdapterFunc. The
// gallery kind (regular vs. minor) picks one of two URL schemes.
func NewDCInsideAdapter(resolver *boards.Resolver) dispatch.AdapterFunc {
	client := &http.Client{Timeout: pageFetchTimeout}

	return func(ctx context.Context, boardIdentifier string, opts map[string]string, progress dispatch.ProgressSink) ([]postrecord.Record, error) {
		entry, err := resolver.ResolveDCInside(boardIdentifier)
		if err != nil {
			return nil, fmt.Errorf("dcinside: resolving gallery %q: %w", boardIdentifier, err)
		}

		predicate := predicateFromOpts(opts)
		startIndex, endIndex := indexRange(opts)

		fetchPage := func(ctx context.Context, page int) ([]postrecord.Record, error) {
			return fetchDCInsidePage(ctx, client, entry, page)
		}

		return crawl.Run(ctx, crawl.RunConfig{
			Site:        dcinsideSite,
			Board:       boardIdentifier,
			FetchPage:   fetchPage,
			Predicate:   predicate,
			StartIndex:  startIndex,
			EndIndex:    endIndex,
			PageSize:    dcinsidePageSize,
			Concurrency: 3,
			LowerBound:  30,
			OnProgress:  wrapProgress(progress, dcinsideSite, boardIdentifier),
		})
	}
}

func dcinsideListingURL(entry boards.DCInsideEntry, page int) string {
	base := "https://gall.dcinside.com/board/lists/"
	if entry.Kind == boards.KindMinor {
		base = "https://gall.dcinside.com/mgallery/board/lists/"
	}
	return fmt.Sprintf("%s?id=%s&page=%d", base, entry.ID, page)
}

func fetchDCInsidePage(ctx context.Context, client *http.Client, entry boards.DCInsideEntry, page int) ([]postrecord.Record, error) {
	req, err := newGetRequest(ctx, dcinsideListingURL(entry, page), defaultScrapeHeaders)
	if err != nil {
		return nil, err
	}

	resp, err := doRequest(client, dcinsideSite, "fetch_page", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dcinside: parsing listing page: %w", err)
	}

	var records []postrecord.Record
	doc.Find("tr.ub-content").Each(func(_ int, row *goquery.Selection) {
		titleAnchor := row.Find("td.gall_tit a").First()
		title := strings.TrimSpace(titleAnchor.Text())
		if title == "" {
			return
		}
		href, _ := titleAnchor.Attr("href")

		records = append(records, postrecord.Record{
			TitleOriginal: title,
			Link:          resolveDCInsideLink(href),
			Author:        strings.TrimSpace(row.Find("td.gall_writer").Text()),
			CreatedAt:     strings.TrimSpace(row.Find("td.gall_date").AttrOr("title", row.Find("td.gall_date").Text())),
			Views:         firstNumericMatch(row, viewSelectors),
			Score:         firstNumericMatch(row, recommendSelectors),
			Comments:      firstNumericMatch(row, replySelectors),
			Board:         entry.ID,
			Site:          dcinsideSite,
		})
	})
	return records, nil
}

func resolveDCInsideLink(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return "https://gall.dcinside.com" + href
}

func firstNumericMatch(row *goquery.Selection, selectors []string) int {
	for _, sel := range selectors {
		text := strings.TrimSpace(row.Find(sel).Text())
		if text == "" {
			continue
		}
		if n, err := strconv.Atoi(strings.ReplaceAll(text, ",", "")); err == nil {
			return n
		}
	}
	return 0
}
