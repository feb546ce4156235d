// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const xTimelineJSON = `{
  "timeline": {
    "entries": [
      {"content": {"tweet": {
        "id_str": "12345",
        "full_text": "hello world",
        "created_at": "Thu Jan 01 12:00:00 +0000 2026",
        "user": {"screen_name": "gopher"},
        "favorite_count": 10,
        "retweet_count": 2,
        "reply_count": 1,
        "entities": {"media": [{"media_url_https": "https://pbs.twimg.com/media/abc.jpg"}]}
      }}}
    ]
  }
}`

func TestFetchXSyndication_ParsesTweets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(xTimelineJSON))
	}))
	defer srv.Close()

	client := redirectingClient(srv)
	records, err := fetchXSyndication(context.Background(), client, srv.URL, "gopher")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "hello world", records[0].TitleOriginal)
	require.Equal(t, "https://x.com/gopher/status/12345", records[0].Link)
	require.Equal(t, 10, records[0].Score)
	require.Equal(t, 3, records[0].Comments)
	require.Equal(t, "https://pbs.twimg.com/media/abc.jpg", records[0].MediaURL)
}

func TestFetchXSyndication_SkipsEmptyEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"timeline":{"entries":[{"content":{"tweet":{}}}]}}`))
	}))
	defer srv.Close()

	client := redirectingClient(srv)
	records, err := fetchXSyndication(context.Background(), client, srv.URL, "nobody")
	require.NoError(t, err)
	require.Empty(t, records)
}
