// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/boardcrawl/internal/crawl"
	"github.com/tomtom215/boardcrawl/internal/dispatch"
	"github.com/tomtom215/boardcrawl/internal/postrecord"
)

const xSite = "x"
const xPageSize = 20

// NewXAdapter builds the X (Twitter) dispatch.AdapterFunc. Board
// identifiers starting with "@" are treated as a user timeline,
// identifiers starting with "#" as a hashtag search; anything else is
// passed through as a raw search query (§4.3).
func NewXAdapter() dispatch.AdapterFunc {
	client := &http.Client{Timeout: pageFetchTimeout}

	return func(ctx context.Context, boardIdentifier string, opts map[string]string, progress dispatch.ProgressSink) ([]postrecord.Record, error) {
		query := strings.TrimSpace(boardIdentifier)
		if query == "" {
			return nil, fmt.Errorf("x: empty query")
		}

		predicate := predicateFromOpts(opts)
		startIndex, endIndex := indexRange(opts)

		fetchPage := func(ctx context.Context, page int) ([]postrecord.Record, error) {
			if strings.HasPrefix(query, "@") {
				return fetchXTimeline(ctx, client, strings.TrimPrefix(query, "@"), page)
			}
			return fetchXSearch(ctx, client, query, page)
		}

		return crawl.Run(ctx, crawl.RunConfig{
			Site:        xSite,
			Board:       query,
			FetchPage:   fetchPage,
			Predicate:   predicate,
			StartIndex:  startIndex,
			EndIndex:    endIndex,
			PageSize:    xPageSize,
			Concurrency: 1,
			LowerBound:  30,
			OnProgress:  wrapProgress(progress, xSite, query),
		})
	}
}

// xSyndicationTimeline mirrors the subset of the public, unauthenticated
// syndication widget response this adapter consumes.
type xSyndicationTimeline struct {
	Timeline struct {
		Entries []struct {
			Content struct {
				Tweet struct {
					IDStr     string `json:"id_str"`
					FullText  string `json:"full_text"`
					CreatedAt string `json:"created_at"`
					User      struct {
						ScreenName string `json:"screen_name"`
					} `json:"user"`
					FavoriteCount int `json:"favorite_count"`
					RetweetCount  int `json:"retweet_count"`
					ReplyCount    int `json:"reply_count"`
					Entities      struct {
						Media []struct {
							MediaURLHTTPS string `json:"media_url_https"`
						} `json:"media"`
					} `json:"entities"`
				} `json:"tweet"`
			} `json:"content"`
		} `json:"entries"`
	} `json:"timeline"`
}

func fetchXTimeline(ctx context.Context, client *http.Client, handle string, page int) ([]postrecord.Record, error) {
	timelineURL := fmt.Sprintf("https://syndication.twitter.com/srv/timeline-profile/screen-name/%s?showReplies=false&page=%d", handle, page)
	return fetchXSyndication(ctx, client, timelineURL, handle)
}

func fetchXSearch(ctx context.Context, client *http.Client, query string, page int) ([]postrecord.Record, error) {
	term := strings.TrimPrefix(query, "#")
	searchURL := fmt.Sprintf("https://syndication.twitter.com/srv/timeline-search/term/%s?page=%d", term, page)
	return fetchXSyndication(ctx, client, searchURL, term)
}

func fetchXSyndication(ctx context.Context, client *http.Client, reqURL, board string) ([]postrecord.Record, error) {
	req, err := newGetRequest(ctx, reqURL, defaultScrapeHeaders)
	if err != nil {
		return nil, err
	}

	resp, err := doRequest(client, xSite, "fetch_page", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var timeline xSyndicationTimeline
	if err := json.NewDecoder(resp.Body).Decode(&timeline); err != nil {
		return nil, fmt.Errorf("x: decoding timeline: %w", err)
	}

	records := make([]postrecord.Record, 0, len(timeline.Timeline.Entries))
	for _, entry := range timeline.Timeline.Entries {
		tweet := entry.Content.Tweet
		if tweet.IDStr == "" {
			continue
		}
		r := postrecord.Record{
			TitleOriginal: tweet.FullText,
			Link:          "https://x.com/" + firstNonEmpty(tweet.User.ScreenName, board) + "/status/" + tweet.IDStr,
			Author:        tweet.User.ScreenName,
			Board:         board,
			Site:          xSite,
			Score:         tweet.FavoriteCount,
			Comments:      tweet.ReplyCount + tweet.RetweetCount,
			CreatedAt:     tweet.CreatedAt,
		}
		if len(tweet.Entities.Media) > 0 {
			r.MediaURL = tweet.Entities.Media[0].MediaURLHTTPS
		}
		if createdAt, ok := fallbackDateParse(tweet.CreatedAt); ok {
			r.CreatedAt = datetimeFormatUTC(createdAt)
		}
		r.ApplyThumbnailFallback()
		records = append(records, r)
	}
	return records, nil
}
