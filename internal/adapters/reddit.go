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
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/tomtom215/boardcrawl/internal/crawl"
	"github.com/tomtom215/boardcrawl/internal/dispatch"
	"github.com/tomtom215/boardcrawl/internal/postrecord"
)

const redditSite = "reddit"
const redditPageSize = 25
const redditOverfetchCap = 2000

// RedditConfig carries the client-credentials needed to mint a bearer
// token against Reddit's OAuth2 endpoint (SPEC_FULL §4.11).
type RedditConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
}

// NewRedditAdapter builds the Reddit dispatch.AdapterFunc. Listing
// pages are fetched directly against Reddit's public JSON endpoints
// using the bearer token minted by the client-credentials flow, rather
// than through a generated SDK.
func NewRedditAdapter(cfg RedditConfig) dispatch.AdapterFunc {
	oauthCfg := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     "https://www.reddit.com/api/v1/access_token",
	}

	return func(ctx context.Context, boardIdentifier string, opts map[string]string, progress dispatch.ProgressSink) ([]postrecord.Record, error) {
		client := oauthCfg.Client(ctx)

		sort := firstNonEmpty(opts["sort"], "hot")
		predicate := predicateFromOpts(opts)
		startIndex, endIndex := indexRange(opts)

		target := endIndex
		if predicate.HasFilters() {
			target = min(startIndex-1+(endIndex-startIndex+1)*3, redditOverfetchCap)
		}

		fetchPage := func(ctx context.Context, page int) ([]postrecord.Record, error) {
			return fetchRedditPage(ctx, client, cfg.UserAgent, boardIdentifier, sort, opts["time_filter"], page)
		}

		runCfg := crawl.RunConfig{
			Site:       redditSite,
			Board:      boardIdentifier,
			FetchPage:  fetchPage,
			Predicate:  predicate,
			StartIndex: startIndex,
			EndIndex:   min(endIndex, target),
			PageSize:   redditPageSize,
			Concurrency: 2,
			LowerBound: 25,
			OnProgress: wrapProgress(progress, redditSite, boardIdentifier),
		}

		return crawl.Run(ctx, runCfg)
	}
}

type redditListing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title       string `json:"title"`
	Permalink   string `json:"permalink"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	Ups         int    `json:"ups"`
	NumComments int    `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Selftext    string `json:"selftext"`
	Over18      bool   `json:"over18"`
	LinkFlairText string `json:"link_flair_text"`
	Thumbnail   string `json:"thumbnail"`
	Preview     struct {
		Images []struct {
			Source struct {
				URL string `json:"url"`
			} `json:"source"`
		} `json:"images"`
	} `json:"preview"`
	MediaMetadata map[string]struct {
		S struct {
			U string `json:"u"`
		} `json:"s"`
	} `json:"media_metadata"`
}

func fetchRedditPage(ctx context.Context, client *http.Client, userAgent, subreddit, sort, timeFilter string, page int) ([]postrecord.Record, error) {
	listingURL := fmt.Sprintf("https://oauth.reddit.com/r/%s/%s.json?limit=%d&count=%d", subreddit, sort, redditPageSize, (page-1)*redditPageSize)
	if sort == "top" && timeFilter != "" {
		listingURL += "&t=" + url.QueryEscape(timeFilter)
	}

	req, err := newGetRequest(ctx, listingURL, map[string]string{"User-Agent": userAgent})
	if err != nil {
		return nil, err
	}

	resp, err := doRequest(client, redditSite, "fetch_page", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("reddit: decoding listing: %w", err)
	}

	records := make([]postrecord.Record, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		records = append(records, redditPostToRecord(child.Data, subreddit))
	}
	return records, nil
}

func redditPostToRecord(p redditPost, subreddit string) postrecord.Record {
	r := postrecord.Record{
		TitleOriginal: p.Title,
		Link:          "https://www.reddit.com" + p.Permalink,
		Author:        p.Author,
		Board:         subreddit,
		Site:          redditSite,
		Views:         0,
		Score:         p.Ups,
		Comments:      p.NumComments,
		Body:          p.Selftext,
		CreatedAt:     strconv.FormatFloat(p.CreatedUTC, 'f', 0, 64),
		Extras: map[string]any{
			"nsfw":  p.Over18,
			"flair": p.LinkFlairText,
		},
	}

	if isKnownImageHost(p.URL) {
		r.MediaURL = p.URL
		r.ExternalURL = ""
	} else if !strings.Contains(p.URL, "reddit.com"+p.Permalink) {
		r.ExternalURL = p.URL
	}

	if r.MediaURL == "" && len(p.Preview.Images) > 0 {
		r.MediaURL = strings.ReplaceAll(p.Preview.Images[0].Source.URL, "&amp;", "&")
	}
	if r.MediaURL == "" {
		for _, m := range p.MediaMetadata {
			if m.S.U != "" {
				r.MediaURL = strings.ReplaceAll(m.S.U, "&amp;", "&")
				break
			}
		}
	}
	if p.Thumbnail != "" && strings.HasPrefix(p.Thumbnail, "http") {
		r.ThumbnailURL = p.Thumbnail
	}
	r.ApplyThumbnailFallback()
	return r
}

func isKnownImageHost(rawURL string) bool {
	for _, host := range []string{"i.redd.it", "v.redd.it", "i.imgur.com"} {
		if strings.Contains(rawURL, host) {
			return true
		}
	}
	ext := strings.ToLower(path.Ext(rawURL))
	return ext == ".jpg" || ext == ".jpeg" || ext == ".png" || ext == ".gif" || ext == ".gifv"
}

func predicateFromOpts(opts map[string]string) postrecord.Predicate {
	p := postrecord.Predicate{
		MinViews:    atoiOr(opts["min_views"], 0),
		MinLikes:    atoiOr(opts["min_likes"], 0),
		MinComments: atoiOr(opts["min_comments"], 0),
	}
	if start, ok := opts["start_date"]; ok && start != "" {
		if startT, okP := parseOptDate(start); okP {
			endT, okE := parseOptDate(opts["end_date"])
			if okE {
				p.HasDateRange = true
				p.StartDate = startT
				p.EndDate = endT
				p.ParseDate = optDateParser
			}
		}
	}
	return p
}

func parseOptDate(raw string) (time.Time, bool) {
	return optDateParser(raw)
}

// optDateParser parses Unix-epoch-seconds strings (Reddit's
// created_utc representation) as well as the shared datetime grammar.
func optDateParser(raw string) (time.Time, bool) {
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Unix(int64(secs), 0).UTC(), true
	}
	return fallbackDateParse(raw)
}

func indexRange(opts map[string]string) (int, int) {
	start := atoiOr(opts["start_index"], 1)
	end := atoiOr(opts["end_index"], 10)
	return start, end
}

func atoiOr(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func wrapProgress(sink dispatch.ProgressSink, site, board string) crawl.OnProgress {
	if sink == nil {
		return nil
	}
	return func(f crawl.Frame) {
		sink(dispatch.ProgressUpdate{Progress: f.Progress, Page: f.CurrentPage, MaxPages: f.MaxPages, Matched: f.MatchedPosts})
	}
}
