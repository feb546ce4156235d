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

const lemmySite = "lemmy"
const lemmyPageSize = 20

// NewLemmyAdapter builds the Lemmy dispatch.AdapterFunc against a
// per-instance REST API. Community input is community@instance; the
// dispatcher (§4.6) already appends @lemmy.world to bare names.
func NewLemmyAdapter() dispatch.AdapterFunc {
	client := &http.Client{Timeout: pageFetchTimeout}

	return func(ctx context.Context, boardIdentifier string, opts map[string]string, progress dispatch.ProgressSink) ([]postrecord.Record, error) {
		community, instance, err := splitCommunity(boardIdentifier)
		if err != nil {
			return nil, err
		}

		predicate := predicateFromOpts(opts)
		startIndex, endIndex := indexRange(opts)
		sort := firstNonEmpty(opts["sort"], "New")

		fetchPage := func(ctx context.Context, page int) ([]postrecord.Record, error) {
			return fetchLemmyPage(ctx, client, instance, community, sort, page)
		}

		return crawl.Run(ctx, crawl.RunConfig{
			Site:        lemmySite,
			Board:       boardIdentifier,
			FetchPage:   fetchPage,
			Predicate:   predicate,
			StartIndex:  startIndex,
			EndIndex:    endIndex,
			PageSize:    lemmyPageSize,
			Concurrency: 2,
			LowerBound:  30,
			OnProgress:  wrapProgress(progress, lemmySite, boardIdentifier),
		})
	}
}

func splitCommunity(boardIdentifier string) (community, instance string, err error) {
	parts := strings.SplitN(boardIdentifier, "@", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("lemmy: expected community@instance, got %q", boardIdentifier)
	}
	return parts[0], parts[1], nil
}

type lemmyPostListing struct {
	Posts []struct {
		Post struct {
			Name        string `json:"name"`
			URL         string `json:"url"`
			Body        string `json:"body"`
			Published   string `json:"published"`
			ThumbnailURL string `json:"thumbnail_url"`
			ApID        string `json:"ap_id"`
		} `json:"post"`
		Creator struct {
			Name string `json:"name"`
		} `json:"creator"`
		Counts struct {
			Score    int `json:"score"`
			Comments int `json:"comments"`
		} `json:"counts"`
	} `json:"posts"`
}

func fetchLemmyPage(ctx context.Context, client *http.Client, instance, community, sort string, page int) ([]postrecord.Record, error) {
	listingURL := fmt.Sprintf("https://%s/api/v3/post/list?community_name=%s&sort=%s&page=%d", instance, community, sort, page)
	req, err := newGetRequest(ctx, listingURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := doRequest(client, lemmySite, "fetch_page", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var listing lemmyPostListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("lemmy: decoding listing: %w", err)
	}

	records := make([]postrecord.Record, 0, len(listing.Posts))
	for _, item := range listing.Posts {
		r := postrecord.Record{
			TitleOriginal: item.Post.Name,
			Link:          firstNonEmpty(item.Post.ApID, item.Post.URL),
			ExternalURL:   item.Post.URL,
			ThumbnailURL:  item.Post.ThumbnailURL,
			Body:          item.Post.Body,
			Author:        item.Creator.Name,
			Board:         community + "@" + instance,
			Site:          lemmySite,
			Score:         item.Counts.Score,
			Comments:      item.Counts.Comments,
			CreatedAt:     item.Post.Published,
		}
		r.ApplyThumbnailFallback()
		records = append(records, r)
	}
	return records, nil
}
