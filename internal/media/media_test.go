// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package media

import (
	"archive/zip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tomtom215/boardcrawl/internal/postrecord"
)

func TestCandidateURLs(t *testing.T) {
	r := postrecord.Record{
		ThumbnailURL: "https://i.redd.it/thumb.jpg",
		MediaURL:     "https://i.redd.it/full.jpg",
		Extras:       map[string]any{"attachment_url": "https://cdn.discordapp.com/a.png", "unrelated": "x"},
	}
	urls := CandidateURLs(r)
	require.Contains(t, urls, "https://i.redd.it/thumb.jpg")
	require.Contains(t, urls, "https://i.redd.it/full.jpg")
	require.Contains(t, urls, "https://cdn.discordapp.com/a.png")
	require.NotContains(t, urls, "x")
}

func TestIsValidMediaURL(t *testing.T) {
	require.True(t, IsValidMediaURL("https://example.com/photo.jpg"))
	require.True(t, IsValidMediaURL("https://i.imgur.com/abc123"))
	require.True(t, IsValidMediaURL("https://cdn.discordapp.com/attachments/1/2/file"))
	require.False(t, IsValidMediaURL("https://random-untrusted-host.example/file"))
	require.False(t, IsValidMediaURL("://not a url"))
}

func TestSanitizeFilename(t *testing.T) {
	require.Equal(t, "my_file_.jpg", sanitizeFilename(`my<file>.jpg`))
	require.Equal(t, "a_b_c", sanitizeFilename("a___b___c"))
}

func TestDeduplicateNames(t *testing.T) {
	files := []downloadedFile{
		{name: "a.jpg", data: []byte("1")},
		{name: "a.jpg", data: []byte("2")},
		{name: "a.jpg", data: []byte("3")},
		{name: "b.jpg", data: []byte("4")},
	}
	out := deduplicateNames(files)
	require.Equal(t, "a.jpg", out[0].name)
	require.Equal(t, "a_1.jpg", out[1].name)
	require.Equal(t, "a_2.jpg", out[2].name)
	require.Equal(t, "b.jpg", out[3].name)
}

func TestPackage_DownloadsAndZips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fake-image-bytes"))
	}))
	defer srv.Close()

	records := []postrecord.Record{
		{Link: "https://example.com/1", MediaURL: srv.URL + "/photo1.jpg"},
		{Link: "https://example.com/2", MediaURL: srv.URL + "/photo2.jpg"},
	}

	p := NewPackager(1000, 100, time.Hour)
	outPath := filepath.Join(t.TempDir(), "out.zip")

	count, size, err := p.Package(context.Background(), records, outPath)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Greater(t, size, int64(0))

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)
	zr, err := zip.NewReader(f, info.Size())
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
}

func TestPackage_NoMediaYieldsNoArchive(t *testing.T) {
	p := NewPackager(1000, 100, time.Hour)
	outPath := filepath.Join(t.TempDir(), "out.zip")

	count, size, err := p.Package(context.Background(), []postrecord.Record{{Link: "https://example.com/1"}}, outPath)
	require.NoError(t, err)
	require.Equal(t, 0, count)
	require.Equal(t, int64(0), size)
	_, statErr := os.Stat(outPath)
	require.True(t, os.IsNotExist(statErr))
}
