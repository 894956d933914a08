// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for pubsite.
// CitationRecord is produced by the bibtex parser, ConferenceRecord is read
// from the conference dataset. Both are consumed by the renderer, the
// catalog, and the exporters.
package types

import (
	"strconv"
	"strings"
)

// CitationRecord is one entry parsed from citation markup such as
// "@article{Key, title={...}}".
type CitationRecord struct {
	// EntryType is the citation kind as written (e.g. "article", "inproceedings").
	EntryType string `json:"entry_type" yaml:"entry_type"`

	// Key is the citation identifier, the first comma-delimited token after
	// the opening brace. Never empty for a parsed record.
	Key string `json:"key" yaml:"key"`

	// Fields maps lower-cased field names to trimmed values. Values are stored
	// verbatim: no escape processing or LaTeX unescaping.
	Fields map[string]string `json:"fields" yaml:"fields"`
}

// Field returns the value stored under name, matched case-insensitively.
func (c CitationRecord) Field(name string) string {
	return c.Fields[strings.ToLower(name)]
}

// Year returns the numeric year field, or 0 when it is missing or not an
// integer.
func (c CitationRecord) Year() int {
	y, err := strconv.Atoi(strings.TrimSpace(c.Field("year")))
	if err != nil {
		return 0
	}
	return y
}

// Label returns the human-readable badge for the entry type.
func (c CitationRecord) Label() string {
	switch c.EntryType {
	case "":
		return ""
	case "article":
		return "Journal"
	case "inproceedings":
		return "Conference"
	}
	return strings.ToUpper(c.EntryType[:1]) + c.EntryType[1:]
}

// LinkTarget returns the preferred link for the entry: the url field, then
// the doi field. ok is false when neither is set.
func (c CitationRecord) LinkTarget() (target string, ok bool) {
	if u := c.Field("url"); u != "" {
		return u, true
	}
	if d := c.Field("doi"); d != "" {
		return d, true
	}
	return "", false
}

// AuthorList splits the author field on the BibTeX " and " separator.
func (c CitationRecord) AuthorList() []string {
	raw := c.Field("author")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, " and ")
	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			authors = append(authors, p)
		}
	}
	return authors
}

// Authors returns the author field joined with commas for display.
func (c CitationRecord) Authors() string {
	raw := c.Field("author")
	if raw == "" {
		return "Unknown Author"
	}
	return strings.ReplaceAll(raw, " and ", ", ")
}

// Venue returns the journal, else the booktitle, else a placeholder.
func (c CitationRecord) Venue() string {
	if j := c.Field("journal"); j != "" {
		return j
	}
	if b := c.Field("booktitle"); b != "" {
		return b
	}
	return "Unknown Venue"
}

// DisplayTitle returns the title or "Untitled".
func (c CitationRecord) DisplayTitle() string {
	if t := c.Field("title"); t != "" {
		return t
	}
	return "Untitled"
}

// Note returns the note field, falling back to comment.
func (c CitationRecord) Note() string {
	if n := c.Field("note"); n != "" {
		return n
	}
	return c.Field("comment")
}
