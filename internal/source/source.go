// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source acquires the two input datasets: the conference list and
// the citation text. Each comes from an embedded default, a local file, or
// (for citations) a URL. Input is read-only.
package source

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubsite/internal/httputil"
	"github.com/pdiddy/pubsite/internal/logger"
	"github.com/pdiddy/pubsite/internal/secrets"
	"github.com/pdiddy/pubsite/pkg/types"
)

//go:embed data/conferences.yaml
var embeddedConferences []byte

//go:embed data/biblio.bib
var embeddedBibliography string

// EmbeddedOrigin names the built-in datasets in diagnostics.
const EmbeddedOrigin = "embedded"

// maxBibliographyBytes bounds a remote bibliography download.
const maxBibliographyBytes = 8 << 20

// LoadError reports that the citation text could not be acquired. The
// renderer shows it as a single user-visible message; conferences still
// render.
type LoadError struct {
	Origin string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading citations from %s: %v", e.Origin, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Dataset is the raw input of one render pass.
type Dataset struct {
	Conferences []types.ConferenceRecord

	// CitationText is the citation markup. Empty when CitationErr is set.
	CitationText string

	// CitationOrigin is the path, URL, or EmbeddedOrigin the text came from.
	CitationOrigin string

	// CitationErr is a *LoadError when acquisition failed.
	CitationErr error
}

// Load reads both datasets. A conference load failure is returned as an
// error; a citation load failure is recorded in Dataset.CitationErr.
func Load(ctx context.Context, client *http.Client, cfg types.SourceConfig, sec secrets.Secrets) (Dataset, error) {
	confs, err := LoadConferences(cfg.ConferencesPath)
	if err != nil {
		return Dataset{}, err
	}

	ds := Dataset{Conferences: confs}
	ds.CitationText, ds.CitationOrigin, ds.CitationErr = LoadCitationText(ctx, client, cfg, sec)
	if ds.CitationErr != nil {
		logger.Warn("%v", ds.CitationErr)
	}
	return ds, nil
}

// LoadCitationText returns the citation markup and where it came from.
// BibliographyURL wins over BibliographyPath; with neither the embedded
// bibliography is used. Failures are returned as *LoadError.
func LoadCitationText(ctx context.Context, client *http.Client, cfg types.SourceConfig, sec secrets.Secrets) (text, origin string, err error) {
	switch {
	case cfg.BibliographyURL != "":
		origin = cfg.BibliographyURL
		if client == nil {
			client = &http.Client{Timeout: cfg.Timeout}
		}
		logger.Debug("fetching citations from %s", origin)
		data, err := httputil.Fetch(ctx, client, origin, httputil.FetchOptions{
			UserAgent:  cfg.UserAgent,
			Token:      sec.Get(secrets.BibToken),
			MaxRetries: cfg.MaxRetries,
			MaxBytes:   maxBibliographyBytes,
		})
		if err != nil {
			return "", origin, &LoadError{Origin: origin, Err: err}
		}
		return string(data), origin, nil

	case cfg.BibliographyPath != "":
		origin = cfg.BibliographyPath
		data, err := os.ReadFile(origin)
		if err != nil {
			return "", origin, &LoadError{Origin: origin, Err: err}
		}
		return string(data), origin, nil
	}
	return embeddedBibliography, EmbeddedOrigin, nil
}

// EmbeddedBibliography returns the built-in citation text.
func EmbeddedBibliography() string {
	return embeddedBibliography
}

// LoadConferences reads conference records from path, decoding by file
// extension (.yaml, .yml, .json, .toml). An empty path selects the embedded
// list.
func LoadConferences(path string) ([]types.ConferenceRecord, error) {
	if path == "" {
		return DecodeConferences(embeddedConferences, "yaml")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading conferences: %w", err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	confs, err := DecodeConferences(data, format)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return confs, nil
}

// DecodeConferences decodes a conference dataset. YAML and JSON accept
// either a bare list or a document with a "conferences" key; TOML requires
// [[conferences]] tables. Records without a title are dropped with a
// warning.
func DecodeConferences(data []byte, format string) ([]types.ConferenceRecord, error) {
	var (
		list types.ConferenceList
		err  error
	)
	switch format {
	case "yaml", "yml":
		err = decodeYAML(data, &list)
	case "json":
		if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
			err = json.Unmarshal(data, &list.Conferences)
		} else {
			err = json.Unmarshal(data, &list)
		}
	case "toml":
		err = toml.Unmarshal(data, &list)
	default:
		return nil, fmt.Errorf("unsupported conference format %q: use yaml, json, or toml", format)
	}
	if err != nil {
		return nil, err
	}

	confs := make([]types.ConferenceRecord, 0, len(list.Conferences))
	for i, c := range list.Conferences {
		if strings.TrimSpace(c.Title) == "" {
			logger.Warn("conference %d has no title, skipping", i+1)
			continue
		}
		confs = append(confs, c)
	}
	return confs, nil
}

func decodeYAML(data []byte, list *types.ConferenceList) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return err
	}
	if len(root.Content) == 0 {
		return nil
	}
	if root.Content[0].Kind == yaml.SequenceNode {
		return root.Content[0].Decode(&list.Conferences)
	}
	return root.Content[0].Decode(list)
}
