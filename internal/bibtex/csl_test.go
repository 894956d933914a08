// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pdiddy/pubsite/pkg/types"
)

func TestToCSLItemArticle(t *testing.T) {
	r := types.CitationRecord{
		EntryType: "article",
		Key:       "ALESSANDRELLI2025130871",
		Fields: map[string]string{
			"title":   "Supervised and unsupervised protocols",
			"journal": "Physica A",
			"year":    "2025",
			"doi":     "https://doi.org/10.1016/j.physa.2025.130871",
			"author":  "Andrea Alessandrelli and Adriano Barra",
			"pages":   "130871",
		},
	}

	item := ToCSLItem(r)

	if item.Type != "article-journal" {
		t.Errorf("Type = %q, want %q", item.Type, "article-journal")
	}
	if item.ID != r.Key {
		t.Errorf("ID = %q, want %q", item.ID, r.Key)
	}
	if item.DOI != "10.1016/j.physa.2025.130871" {
		t.Errorf("DOI = %q, want bare identifier", item.DOI)
	}
	if item.ContainerTitle != "Physica A" {
		t.Errorf("ContainerTitle = %q, want %q", item.ContainerTitle, "Physica A")
	}
	if len(item.Author) != 2 {
		t.Fatalf("len(Author) = %d, want 2", len(item.Author))
	}
	if item.Author[1].Family != "Barra" || item.Author[1].Given != "Adriano" {
		t.Errorf("Author[1] = %+v", item.Author[1])
	}
	if item.Issued == nil || item.Issued.DateParts[0][0] != 2025 {
		t.Errorf("Issued year should be 2025")
	}
}

func TestToCSLItemProceedingsWithoutYear(t *testing.T) {
	r := types.CitationRecord{
		EntryType: "inproceedings",
		Key:       "beyond",
		Fields: map[string]string{
			"booktitle": "New Frontiers in Associative Memories",
		},
	}

	item := ToCSLItem(r)

	if item.Type != "paper-conference" {
		t.Errorf("Type = %q, want %q", item.Type, "paper-conference")
	}
	if item.ContainerTitle != "New Frontiers in Associative Memories" {
		t.Errorf("ContainerTitle = %q", item.ContainerTitle)
	}
	if item.Issued != nil {
		t.Errorf("Issued should be nil without a year")
	}
}

func TestToCSLItemUnknownType(t *testing.T) {
	item := ToCSLItem(types.CitationRecord{EntryType: "software", Key: "k"})
	if item.Type != "document" {
		t.Errorf("Type = %q, want %q", item.Type, "document")
	}
}

func TestParseAuthorName(t *testing.T) {
	tests := []struct {
		in   string
		want CSLName
	}{
		{"Giorgio Parisi", CSLName{Given: "Giorgio", Family: "Parisi"}},
		{"Parisi, Giorgio", CSLName{Given: "Giorgio", Family: "Parisi"}},
		{"Plato", CSLName{Literal: "Plato"}},
		{"  ", CSLName{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseAuthorName(tt.in); got != tt.want {
				t.Errorf("parseAuthorName(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatCSL(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatCSL(Parse(sampleBib), &buf); err != nil {
		t.Fatalf("FormatCSL: %v", err)
	}
	s := buf.String()

	if !strings.Contains(s, "type: article-journal") {
		t.Error("CSL output should contain the journal article")
	}
	if !strings.Contains(s, "type: paper-conference") {
		t.Error("CSL output should contain the conference paper")
	}
	if strings.Count(s, "DOI:") != 1 {
		t.Errorf("expected exactly 1 DOI field, got %d", strings.Count(s, "DOI:"))
	}
	if strings.Index(s, "ALESSANDRELLI2025130871") > strings.Index(s, "alessandrellibeyond") {
		t.Error("dated entry should be written first")
	}
}
