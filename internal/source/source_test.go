// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubsite/internal/httputil"
	"github.com/pdiddy/pubsite/internal/secrets"
	"github.com/pdiddy/pubsite/pkg/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConferencesEmbedded(t *testing.T) {
	confs, err := LoadConferences("")
	require.NoError(t, err)
	require.Len(t, confs, 3)

	assert.Equal(t, "19-20 January 2026", confs[0].Date)
	assert.NotEmpty(t, confs[0].URL)
	assert.Equal(t, "20 September 2025", confs[2].Date)
	assert.Empty(t, confs[2].URL, "third conference has no link")
	assert.Contains(t, confs[0].Location, `"G. Castelnuovo"`)
}

func TestDecodeConferencesFormats(t *testing.T) {
	tests := []struct {
		name   string
		format string
		data   string
	}{
		{"yaml mapping", "yaml", "conferences:\n  - title: T\n    date: 1 May 2026\n"},
		{"yaml list", "yml", "- title: T\n  date: 1 May 2026\n"},
		{"json list", "json", `[{"title": "T", "date": "1 May 2026"}]`},
		{"json object", "json", `{"conferences": [{"title": "T", "date": "1 May 2026"}]}`},
		{"toml", "toml", "[[conferences]]\ntitle = \"T\"\ndate = \"1 May 2026\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confs, err := DecodeConferences([]byte(tt.data), tt.format)
			require.NoError(t, err)
			require.Len(t, confs, 1)
			assert.Equal(t, types.ConferenceRecord{Title: "T", Date: "1 May 2026"}, confs[0])
		})
	}
}

func TestDecodeConferencesDropsUntitled(t *testing.T) {
	confs, err := DecodeConferences([]byte(`[{"title": ""}, {"title": "Kept"}]`), "json")
	require.NoError(t, err)
	require.Len(t, confs, 1)
	assert.Equal(t, "Kept", confs[0].Title)
}

func TestDecodeConferencesErrors(t *testing.T) {
	_, err := DecodeConferences([]byte("x"), "csv")
	assert.ErrorContains(t, err, "unsupported")

	_, err = DecodeConferences([]byte("{"), "json")
	assert.Error(t, err)
}

func TestLoadConferencesFromFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "talks.toml", "[[conferences]]\ntitle = \"Talk\"\nurl = \"https://x.test\"\n")
	confs, err := LoadConferences(path)
	require.NoError(t, err)
	require.Len(t, confs, 1)
	assert.Equal(t, "https://x.test", confs[0].URL)

	_, err = LoadConferences(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadCitationTextEmbedded(t *testing.T) {
	text, origin, err := LoadCitationText(context.Background(), nil, types.SourceConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, EmbeddedOrigin, origin)
	assert.True(t, strings.HasPrefix(text, "@inproceedings{alessandrellibeyond"))
	assert.Equal(t, EmbeddedBibliography(), text)
}

func TestLoadCitationTextFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "biblio.bib", "@misc{k, title={T}}")
	text, origin, err := LoadCitationText(context.Background(), nil, types.SourceConfig{BibliographyPath: path}, nil)
	require.NoError(t, err)
	assert.Equal(t, path, origin)
	assert.Equal(t, "@misc{k, title={T}}", text)

	_, _, err = LoadCitationText(context.Background(), nil, types.SourceConfig{BibliographyPath: path + ".missing"}, nil)
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadCitationTextURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("@article{remote, year={2024}}"))
	}))
	defer ts.Close()

	cfg := types.SourceConfig{BibliographyURL: ts.URL + "/biblio.bib", BibliographyPath: "ignored.bib"}

	text, origin, err := LoadCitationText(context.Background(), ts.Client(), cfg, secrets.Secrets{secrets.BibToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, cfg.BibliographyURL, origin)
	assert.Equal(t, "@article{remote, year={2024}}", text)

	_, _, err = LoadCitationText(context.Background(), ts.Client(), cfg, nil)
	var se *httputil.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
}

func TestLoadCitationTextOversizedURL(t *testing.T) {
	entry := "@misc{k, title={T}, year={2020}}\n"
	body := strings.Repeat(entry, maxBibliographyBytes/len(entry)+1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(body))
	}))
	defer ts.Close()

	cfg := types.SourceConfig{BibliographyURL: ts.URL}
	text, _, err := LoadCitationText(context.Background(), ts.Client(), cfg, nil)
	assert.Empty(t, text)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.ErrorIs(t, err, httputil.ErrTooLarge)

	ds, err := Load(context.Background(), ts.Client(), cfg, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, ds.CitationErr, httputil.ErrTooLarge)
}

func TestLoadRecordsCitationFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := types.SourceConfig{BibliographyPath: filepath.Join(dir, "missing.bib")}

	ds, err := Load(context.Background(), nil, cfg, nil)
	require.NoError(t, err, "citation failures do not fail the load")
	assert.Len(t, ds.Conferences, 3)
	assert.Empty(t, ds.CitationText)

	var le *LoadError
	require.True(t, errors.As(ds.CitationErr, &le))
	assert.Equal(t, cfg.BibliographyPath, le.Origin)
}

func TestLoadConferenceFailure(t *testing.T) {
	cfg := types.SourceConfig{ConferencesPath: filepath.Join(t.TempDir(), "nope.yaml")}
	_, err := Load(context.Background(), nil, cfg, nil)
	assert.Error(t, err)
}
