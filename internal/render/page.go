// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns parsed citations and classified conferences into a
// Page and writes it as HTML or as a terminal listing. Build is pure; the
// writers only format what Build produced.
package render

import (
	"time"

	"github.com/pdiddy/pubsite/internal/schedule"
	"github.com/pdiddy/pubsite/pkg/types"
)

// DefaultRecentLimit is how many publications the main list shows.
const DefaultRecentLimit = 10

// Messages shown in place of the publication list.
const (
	MsgPublicationsError = "Error loading publications."
	MsgNoPublications    = "No publications found."
)

// Input is everything one render pass consumes.
type Input struct {
	Conferences []schedule.ClassifiedConference
	Citations   []types.CitationRecord

	// CitationErr is set when the citation text could not be loaded.
	CitationErr error

	// RecentLimit caps the main publication list. Zero uses DefaultRecentLimit.
	RecentLimit int

	// Now is the reference instant the conferences were classified against.
	Now time.Time
}

// ConferenceView is one conference as displayed.
type ConferenceView struct {
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// PublicationView is one citation as displayed.
type PublicationView struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Link    string `json:"link"` // "#" when the entry has no url or doi
	Authors string `json:"authors"`
	Venue   string `json:"venue"`
	Year    string `json:"year,omitempty"`
	Label   string `json:"label,omitempty"`
	Note    string `json:"note,omitempty"`

	// At most one of URL and DOI is set; URL wins.
	URL string `json:"url,omitempty"`
	DOI string `json:"doi,omitempty"`
}

// VenueLine is the venue followed by the year when there is one.
func (p PublicationView) VenueLine() string {
	if p.Year == "" {
		return p.Venue
	}
	return p.Venue + ", " + p.Year
}

// Page is the rendered UI tree.
type Page struct {
	GeneratedAt time.Time `json:"generated_at"`

	Upcoming []ConferenceView `json:"upcoming"`
	Past     []ConferenceView `json:"past"`

	Recent []PublicationView `json:"recent"`
	Older  []PublicationView `json:"older"`

	// PublicationsError replaces the publication lists when loading failed.
	PublicationsError string `json:"publications_error,omitempty"`

	// NoPublications is set when loading succeeded but nothing parsed.
	NoPublications bool `json:"no_publications,omitempty"`
}

// Build assembles a Page. Conferences keep their input order within the
// upcoming and past groups; citations keep the order they were given in.
func Build(in Input) Page {
	page := Page{GeneratedAt: in.Now}

	for _, c := range in.Conferences {
		v := ConferenceView{
			Title:       c.Title,
			URL:         c.URL,
			Date:        c.Date,
			Location:    c.Location,
			Description: c.Description,
		}
		if c.Past {
			page.Past = append(page.Past, v)
		} else {
			page.Upcoming = append(page.Upcoming, v)
		}
	}

	switch {
	case in.CitationErr != nil:
		page.PublicationsError = MsgPublicationsError
		return page
	case len(in.Citations) == 0:
		page.NoPublications = true
		return page
	}

	limit := in.RecentLimit
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	for i, rec := range in.Citations {
		v := publicationView(rec)
		if i < limit {
			page.Recent = append(page.Recent, v)
		} else {
			page.Older = append(page.Older, v)
		}
	}
	return page
}

func publicationView(rec types.CitationRecord) PublicationView {
	v := PublicationView{
		Key:     rec.Key,
		Title:   rec.DisplayTitle(),
		Link:    "#",
		Authors: rec.Authors(),
		Venue:   rec.Venue(),
		Year:    rec.Field("year"),
		Label:   rec.Label(),
		Note:    rec.Note(),
	}
	if target, ok := rec.LinkTarget(); ok {
		v.Link = target
	}
	if u := rec.Field("url"); u != "" {
		v.URL = u
	} else {
		v.DOI = rec.Field("doi")
	}
	return v
}
