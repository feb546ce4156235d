// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/boardcrawl/internal/boards"
)

const dcinsideListingHTML = `
<html><body><table><tbody>
<tr class="ub-content">
  <td class="gall_tit"><a href="/board/view/?id=programming&no=1">First post</a></td>
  <td class="gall_writer">author1</td>
  <td class="gall_count">1,234</td>
  <td class="gall_recommend">56</td>
  <td class="gall_date">2026.01.02</td>
</tr>
</tbody></table></body></html>`

func TestFetchDCInsidePage_ParsesRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(dcinsideListingHTML))
	}))
	defer srv.Close()

	client := redirectingClient(srv)
	records, err := fetchDCInsidePage(context.Background(), client, boards.DCInsideEntry{ID: "programming", Kind: boards.KindRegular}, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "First post", records[0].TitleOriginal)
	require.Equal(t, "author1", records[0].Author)
	require.Equal(t, 1234, records[0].Views)
	require.Equal(t, 56, records[0].Score)
}

func TestFirstNumericMatch_StripsCommasAndFallsThrough(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div><span class="a">n/a</span><span class="b">2,500</span></div>`))
	require.NoError(t, err)
	sel := doc.Find("div")
	require.Equal(t, 2500, firstNumericMatch(sel, []string{".a", ".b"}))
}

func TestDCInsideAdapter_UnresolvedGalleryErrors(t *testing.T) {
	resolver := boards.NewResolver()
	adapter := NewDCInsideAdapter(resolver)
	_, err := adapter(context.Background(), "nonexistent_gallery_xyz", map[string]string{}, nil)
	require.Error(t, err)
}
