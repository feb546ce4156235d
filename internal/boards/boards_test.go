// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package boards

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const dcinsideFixture = `{
  "baseball_gallery": {"id": "baseball", "type": "regular"},
  "baseball_minor_talk": {"id": "baseballtalk", "type": "minor"},
  "programming": {"id": "programming", "type": "regular"}
}`

const blindFixture = `{
  "Tech": "tech_topic",
  "Finance": "finance_topic"
}`

func TestResolver_DCInside_ExactID(t *testing.T) {
	r := NewResolver()
	require.NoError(t, r.LoadDCInside(writeTempFile(t, "dc.json", dcinsideFixture)))

	e, err := r.ResolveDCInside("baseball")
	require.NoError(t, err)
	require.Equal(t, "baseball", e.ID)
	require.Equal(t, KindRegular, e.Kind)
}

func TestResolver_DCInside_ExactName(t *testing.T) {
	r := NewResolver()
	require.NoError(t, r.LoadDCInside(writeTempFile(t, "dc.json", dcinsideFixture)))

	e, err := r.ResolveDCInside("Programming")
	require.NoError(t, err)
	require.Equal(t, "programming", e.ID)
}

func TestResolver_DCInside_MinorPreferredOverRegular(t *testing.T) {
	r := NewResolver()
	require.NoError(t, r.LoadDCInside(writeTempFile(t, "dc.json", dcinsideFixture)))

	e, err := r.ResolveDCInside("baseball_")
	require.NoError(t, err)
	require.Equal(t, KindMinor, e.Kind)
}

func TestResolver_DCInside_Miss(t *testing.T) {
	r := NewResolver()
	require.NoError(t, r.LoadDCInside(writeTempFile(t, "dc.json", dcinsideFixture)))

	_, err := r.ResolveDCInside("nonexistent_gallery_xyz")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolver_DCInside_NotLoaded(t *testing.T) {
	r := NewResolver()
	_, err := r.ResolveDCInside("anything")
	require.ErrorIs(t, err, ErrTableNotLoaded)
}

func TestResolver_DCInside_MissingFileTolerated(t *testing.T) {
	r := NewResolver()
	err := r.LoadDCInside(filepath.Join(t.TempDir(), "does_not_exist.json"))
	require.NoError(t, err)
	require.False(t, r.DCInsideLoaded())
}

func TestResolver_Blind_ExactAndSubstring(t *testing.T) {
	r := NewResolver()
	require.NoError(t, r.LoadBlind(writeTempFile(t, "blind.json", blindFixture)))

	id, err := r.ResolveBlind("tech")
	require.NoError(t, err)
	require.Equal(t, "tech_topic", id)

	id, err = r.ResolveBlind("tech_topic")
	require.NoError(t, err)
	require.Equal(t, "tech_topic", id)

	_, err = r.ResolveBlind("nonexistent")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolver_Autocomplete(t *testing.T) {
	r := NewResolver()
	require.NoError(t, r.LoadDCInside(writeTempFile(t, "dc.json", dcinsideFixture)))

	names := r.Autocomplete("dcinside", "baseball", 10)
	require.Len(t, names, 2)

	require.Empty(t, r.Autocomplete("unknown_site", "x", 10))
}
