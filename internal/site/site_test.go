// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package site

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubsite/internal/render"
	"github.com/pdiddy/pubsite/internal/source"
	"github.com/pdiddy/pubsite/pkg/types"
)

var refNow = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

func TestPassEmbedded(t *testing.T) {
	res, err := Pass(context.Background(), Options{Location: time.UTC}, refNow)
	require.NoError(t, err)

	assert.Equal(t, source.EmbeddedOrigin, res.Dataset.CitationOrigin)
	assert.NotEmpty(t, res.Citations)
	assert.Empty(t, res.Page.PublicationsError)
	assert.Len(t, res.Conferences, 3)
	// Every embedded conference ends before the reference instant.
	assert.Empty(t, res.Page.Upcoming)
	assert.Len(t, res.Page.Past, 3)
	assert.Equal(t, refNow, res.Page.GeneratedAt)
}

func TestPassCitationFailureStillRendersConferences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	opts := Options{
		Sources:  types.SourceConfig{BibliographyURL: srv.URL},
		Client:   srv.Client(),
		Location: time.UTC,
	}
	res, err := Pass(context.Background(), opts, refNow)
	require.NoError(t, err)

	var loadErr *source.LoadError
	assert.True(t, errors.As(res.Dataset.CitationErr, &loadErr))
	assert.Equal(t, render.MsgPublicationsError, res.Page.PublicationsError)
	assert.Len(t, res.Page.Past, 3)
	assert.Empty(t, res.Citations)
}

func TestPassConferenceFailure(t *testing.T) {
	opts := Options{Sources: types.SourceConfig{ConferencesPath: filepath.Join(t.TempDir(), "missing.yaml")}}
	_, err := Pass(context.Background(), opts, refNow)
	assert.Error(t, err)
}

func TestFromDataset(t *testing.T) {
	ds := source.Dataset{
		Conferences: []types.ConferenceRecord{
			{Title: "Old", Date: "19-20 January 2026"},
			{Title: "New", Date: "15-16 March 2099"},
			{Title: "TBA", Date: "sometime"},
		},
		CitationText: `@article{a, year={2020}, title={A}}
@article{b, year={2024}, title={B}}
@bogus no brace here
`,
		CitationOrigin: "test.bib",
	}
	res := FromDataset(ds, Options{Location: time.UTC, RecentLimit: 1}, refNow)

	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Citations, 2)
	assert.Equal(t, "b", res.Citations[0].Key)

	require.Len(t, res.Page.Recent, 1)
	assert.Equal(t, "B", res.Page.Recent[0].Title)
	require.Len(t, res.Page.Older, 1)

	require.Len(t, res.Page.Upcoming, 2)
	assert.Equal(t, "New", res.Page.Upcoming[0].Title)
	assert.Equal(t, "TBA", res.Page.Upcoming[1].Title)
	require.Len(t, res.Page.Past, 1)
}

func TestPassLocalFiles(t *testing.T) {
	dir := t.TempDir()
	confs := filepath.Join(dir, "conferences.json")
	bib := filepath.Join(dir, "biblio.bib")
	require.NoError(t, os.WriteFile(confs, []byte(`[{"title":"X","date":"1 March 2026"}]`), 0o644))
	require.NoError(t, os.WriteFile(bib, []byte("@misc{k, title={T}}"), 0o644))

	opts := Options{Sources: types.SourceConfig{ConferencesPath: confs, BibliographyPath: bib}, Location: time.UTC}
	res, err := Pass(context.Background(), opts, refNow)
	require.NoError(t, err)
	require.Len(t, res.Page.Upcoming, 1)
	require.Len(t, res.Page.Recent, 1)
	assert.Equal(t, "Misc", res.Page.Recent[0].Label)
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = LoadLocation("UTC")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = LoadLocation("Nowhere/Special")
	assert.Error(t, err)
}
