// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package adapters

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedditPostToRecord_PrefersDirectImageOverPermalink(t *testing.T) {
	p := redditPost{
		Title:     "cool cat",
		Permalink: "/r/cats/comments/abc/cool_cat/",
		URL:       "https://i.redd.it/abc123.jpg",
		Author:    "someone",
		Ups:       42,
	}
	r := redditPostToRecord(p, "cats")
	require.Equal(t, "https://i.redd.it/abc123.jpg", r.MediaURL)
	require.Empty(t, r.ExternalURL)
	require.Equal(t, "https://i.redd.it/abc123.jpg", r.ThumbnailURL)
}

func TestRedditPostToRecord_ExternalLinkKeptSeparate(t *testing.T) {
	p := redditPost{
		Title:     "an article",
		Permalink: "/r/news/comments/def/an_article/",
		URL:       "https://example.com/article",
	}
	r := redditPostToRecord(p, "news")
	require.Equal(t, "https://example.com/article", r.ExternalURL)
	require.Equal(t, "https://www.reddit.com/r/news/comments/def/an_article/", r.Link)
}

func TestRedditPostToRecord_GalleryFallsBackToMediaMetadata(t *testing.T) {
	p := redditPost{
		Title:     "gallery post",
		Permalink: "/r/pics/comments/ghi/gallery_post/",
		URL:       "https://www.reddit.com/gallery/ghi",
		MediaMetadata: map[string]struct {
			S struct {
				U string `json:"u"`
			} `json:"s"`
		}{
			"img1": {S: struct {
				U string `json:"u"`
			}{U: "https://preview.redd.it/img1.jpg&amp;width=640"}},
		},
	}
	r := redditPostToRecord(p, "pics")
	require.Equal(t, "https://preview.redd.it/img1.jpg&width=640", r.MediaURL)
}

func TestIsKnownImageHost(t *testing.T) {
	require.True(t, isKnownImageHost("https://i.redd.it/foo.jpg"))
	require.True(t, isKnownImageHost("https://i.imgur.com/foo.png"))
	require.True(t, isKnownImageHost("https://example.com/foo.gifv"))
	require.False(t, isKnownImageHost("https://example.com/article"))
}

func TestPredicateFromOpts_MinFieldsAndDateRange(t *testing.T) {
	p := predicateFromOpts(map[string]string{
		"min_views":    "100",
		"min_likes":    "5",
		"min_comments": "2",
		"start_date":   "1700000000",
		"end_date":     "1800000000",
	})
	require.Equal(t, 100, p.MinViews)
	require.Equal(t, 5, p.MinLikes)
	require.Equal(t, 2, p.MinComments)
	require.True(t, p.HasDateRange)
}

func TestIndexRange_Defaults(t *testing.T) {
	start, end := indexRange(map[string]string{})
	require.Equal(t, 1, start)
	require.Equal(t, 10, end)
}
