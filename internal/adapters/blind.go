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

	"github.com/tomtom215/boardcrawl/internal/boards"
	"github.com/tomtom215/boardcrawl/internal/crawl"
	"github.com/tomtom215/boardcrawl/internal/dispatch"
	"github.com/tomtom215/boardcrawl/internal/postrecord"
)

const blindSite = "blind"
const blindPageSize = 20

// NewBlindAdapter builds the Blind dispatch.AdapterFunc, scraping
// /kr/topics/{topic_id} with the shared selector-fallback metrics
// extraction used by DCInside.
func NewBlindAdapter(resolver *boards.Resolver) dispatch.AdapterFunc {
	client := &http.Client{Timeout: pageFetchTimeout}

	return func(ctx context.Context, boardIdentifier string, opts map[string]string, progress dispatch.ProgressSink) ([]postrecord.Record, error) {
		topicID, err := resolver.ResolveBlind(boardIdentifier)
		if err != nil {
			return nil, fmt.Errorf("blind: resolving topic %q: %w", boardIdentifier, err)
		}

		predicate := predicateFromOpts(opts)
		startIndex, endIndex := indexRange(opts)
		sort := firstNonEmpty(opts["sort"], "recent")

		fetchPage := func(ctx context.Context, page int) ([]postrecord.Record, error) {
			return fetchBlindPage(ctx, client, topicID, sort, page)
		}

		return crawl.Run(ctx, crawl.RunConfig{
			Site:        blindSite,
			Board:       boardIdentifier,
			FetchPage:   fetchPage,
			Predicate:   predicate,
			StartIndex:  startIndex,
			EndIndex:    endIndex,
			PageSize:    blindPageSize,
			Concurrency: 2,
			LowerBound:  30,
			OnProgress:  wrapProgress(progress, blindSite, boardIdentifier),
		})
	}
}

func fetchBlindPage(ctx context.Context, client *http.Client, topicID, sort string, page int) ([]postrecord.Record, error) {
	listingURL := fmt.Sprintf("https://www.teamblind.com/kr/topics/%s?sort=%s&page=%d", topicID, sort, page)
	req, err := newGetRequest(ctx, listingURL, defaultScrapeHeaders)
	if err != nil {
		return nil, err
	}

	resp, err := doRequest(client, blindSite, "fetch_page", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("blind: parsing listing page: %w", err)
	}

	var records []postrecord.Record
	doc.Find("article.article-list-item, li.article-item").Each(func(_ int, item *goquery.Selection) {
		titleEl := item.Find(".article-title, h3 a").First()
		title := strings.TrimSpace(titleEl.Text())
		if title == "" {
			return
		}
		href, _ := titleEl.Attr("href")

		createdRaw := strings.TrimSpace(item.Find(".date, time").First().Text())
		createdAt, ok := fallbackDateParse(createdRaw)
		record := postrecord.Record{
			TitleOriginal: title,
			Link:          resolveBlindLink(href),
			Board:         topicID,
			Site:          blindSite,
			Views:         firstNumericMatch(item, []string{".view-count", ".views"}),
			Score:         firstNumericMatch(item, []string{".like-count", ".likes"}),
			Comments:      firstNumericMatch(item, []string{".comment-count", ".comments"}),
		}
		if ok {
			record.CreatedAt = datetimeFormatUTC(createdAt)
		} else {
			record.CreatedAt = createdRaw
		}
		records = append(records, record)
	})
	return records, nil
}

func resolveBlindLink(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return "https://www.teamblind.com" + href
}
