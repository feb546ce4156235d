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

const blindListingHTML = `
<html><body>
<article class="article-list-item">
  <h3><a class="article-title" href="/kr/topics/123/articleid">Layoffs incoming</a></h3>
  <span class="date">2026.01.05</span>
  <span class="view-count">500</span>
  <span class="like-count">12</span>
  <span class="comment-count">34</span>
</article>
</body></html>`

func TestFetchBlindPage_ParsesArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(blindListingHTML))
	}))
	defer srv.Close()

	client := redirectingClient(srv)
	records, err := fetchBlindPage(context.Background(), client, "123", "recent", 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Layoffs incoming", records[0].TitleOriginal)
	require.Equal(t, 500, records[0].Views)
	require.Equal(t, 12, records[0].Score)
	require.Equal(t, 34, records[0].Comments)
}

func TestResolveBlindLink(t *testing.T) {
	require.Equal(t, "https://www.teamblind.com/kr/topics/1/a", resolveBlindLink("/kr/topics/1/a"))
	require.Equal(t, "https://other.example/x", resolveBlindLink("https://other.example/x"))
}
