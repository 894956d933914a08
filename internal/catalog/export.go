// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is one publication in an export file.
type ExportEntry struct {
	Key     string            `json:"key" yaml:"key"`
	Type    string            `json:"type" yaml:"type"`
	Title   string            `json:"title" yaml:"title"`
	Authors []string          `json:"authors,omitempty" yaml:"authors,omitempty"`
	Year    int               `json:"year,omitempty" yaml:"year,omitempty"`
	Venue   string            `json:"venue" yaml:"venue"`
	Fields  map[string]string `json:"fields" yaml:"fields"`
}

const exportLimit = 100000

// ExportYAML writes matching publications to dir/export.yaml and returns
// the path.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) (string, error) {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.dir, exportYAMLFile)
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes matching publications to dir/export.json and returns
// the path.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) (string, error) {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	path := filepath.Join(s.dir, exportJSONFile)
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	opts.MaxResults = exportLimit
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			Key:     r.Key,
			Type:    r.EntryType,
			Title:   r.DisplayTitle(),
			Authors: r.AuthorList(),
			Year:    r.Year(),
			Venue:   r.Venue(),
			Fields:  r.Fields,
		}
	}
	return entries, nil
}
