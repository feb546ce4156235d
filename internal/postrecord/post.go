// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

// Package postrecord defines the canonical Post Record shape emitted by
// every site adapter, and the filter predicate applied to it by the
// crawl-pipeline engine.
package postrecord

import "strings"

// knownImageExtensions back the thumbnail fallback rule: when MediaURL is
// set and its extension is one of these, ThumbnailURL defaults to it.
var knownImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".bmp": true, ".avif": true,
}

// Record is the canonical output of every site adapter. Every adapter
// produces this shape regardless of source.
type Record struct {
	Rank int `json:"rank"`

	TitleOriginal   string `json:"title_original"`
	TitleTranslated string `json:"title_translated,omitempty"`

	Link        string `json:"link"`
	ExternalURL string `json:"external_url,omitempty"`

	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	MediaURL     string `json:"media_url,omitempty"`

	Body string `json:"body,omitempty"`

	Views    int `json:"views"`
	Score    int `json:"score"`
	Comments int `json:"comments"`

	CreatedAt string `json:"created_at,omitempty"`

	Author string `json:"author,omitempty"`
	Board  string `json:"board"`
	Site   string `json:"site"`

	Extras map[string]any `json:"extras,omitempty"`
}

// ApplyThumbnailFallback sets ThumbnailURL from MediaURL when no thumbnail
// was supplied and MediaURL's extension is a known image type.
func (r *Record) ApplyThumbnailFallback() {
	if r.ThumbnailURL != "" || r.MediaURL == "" {
		return
	}
	if knownImageExtensions[extOf(r.MediaURL)] {
		r.ThumbnailURL = r.MediaURL
	}
}

func extOf(url string) string {
	path := url
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(path[idx:])
}
