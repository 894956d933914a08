// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package site runs one render pass: load the datasets, parse citations,
// classify conferences against a single reference instant, and build the
// page.
package site

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/pubsite/internal/bibtex"
	"github.com/pdiddy/pubsite/internal/logger"
	"github.com/pdiddy/pubsite/internal/render"
	"github.com/pdiddy/pubsite/internal/schedule"
	"github.com/pdiddy/pubsite/internal/secrets"
	"github.com/pdiddy/pubsite/internal/source"
	"github.com/pdiddy/pubsite/pkg/types"
)

// Options configures a render pass.
type Options struct {
	Sources     types.SourceConfig
	Secrets     secrets.Secrets
	Client      *http.Client
	Location    *time.Location
	RecentLimit int
}

// Result is the outcome of one pass.
type Result struct {
	Page        render.Page
	Dataset     source.Dataset
	Citations   []types.CitationRecord
	Conferences []schedule.ClassifiedConference

	// Skipped counts malformed citation entries.
	Skipped int
}

// Pass performs one render pass at now. Only a conference load failure is
// an error; a citation load failure becomes the page's publication message.
func Pass(ctx context.Context, opts Options, now time.Time) (Result, error) {
	ds, err := source.Load(ctx, opts.Client, opts.Sources, opts.Secrets)
	if err != nil {
		return Result{}, err
	}
	return FromDataset(ds, opts, now), nil
}

// FromDataset runs the pure part of a pass over already-loaded data.
func FromDataset(ds source.Dataset, opts Options, now time.Time) Result {
	res := Result{Dataset: ds}

	if ds.CitationErr == nil {
		parsed := bibtex.ParseWithStats(ds.CitationText)
		res.Citations = parsed.Records
		res.Skipped = parsed.Skipped
		if parsed.Skipped > 0 {
			logger.Warn("%s: skipped %d malformed entries", ds.CitationOrigin, parsed.Skipped)
		}
		logger.Debug("parsed %d citations from %s", len(parsed.Records), ds.CitationOrigin)
	}

	res.Conferences = schedule.Classifier{Location: opts.Location}.Classify(ds.Conferences, now)
	res.Page = render.Build(render.Input{
		Conferences: res.Conferences,
		Citations:   res.Citations,
		CitationErr: ds.CitationErr,
		RecentLimit: opts.RecentLimit,
		Now:         now,
	})
	return res
}

// LoadLocation resolves a timezone name. Empty selects the local zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", name, err)
	}
	return loc, nil
}
