package bibtex

import (
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubsite/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id" json:"id"`
	Type           string    `yaml:"type" json:"type"`
	Title          string    `yaml:"title,omitempty" json:"title,omitempty"`
	Author         []CSLName `yaml:"author,omitempty" json:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty" json:"container-title,omitempty"`
	Volume         string    `yaml:"volume,omitempty" json:"volume,omitempty"`
	Page           string    `yaml:"page,omitempty" json:"page,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty" json:"abstract,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty" json:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty" json:"DOI,omitempty"`
	URL            string    `yaml:"URL,omitempty" json:"URL,omitempty"`
	ISSN           string    `yaml:"ISSN,omitempty" json:"ISSN,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty" json:"family,omitempty"`
	Given   string `yaml:"given,omitempty" json:"given,omitempty"`
	Literal string `yaml:"literal,omitempty" json:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts" json:"date-parts"`
}

// cslTypes maps BibTeX entry types to CSL item types. Unlisted types fall
// back to "document".
var cslTypes = map[string]string{
	"article":       "article-journal",
	"inproceedings": "paper-conference",
	"conference":    "paper-conference",
	"proceedings":   "book",
	"book":          "book",
	"incollection":  "chapter",
	"inbook":        "chapter",
	"phdthesis":     "thesis",
	"mastersthesis": "thesis",
	"techreport":    "report",
	"misc":          "document",
	"unpublished":   "manuscript",
}

// FormatCSL writes citation records as a CSL-YAML list to w.
func FormatCSL(records []types.CitationRecord, w io.Writer) error {
	items := make([]CSLItem, len(records))
	for i, r := range records {
		items[i] = ToCSLItem(r)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// ToCSLItem converts a CitationRecord to a CSLItem.
func ToCSLItem(r types.CitationRecord) CSLItem {
	typ, ok := cslTypes[strings.ToLower(r.EntryType)]
	if !ok {
		typ = "document"
	}

	item := CSLItem{
		ID:       r.Key,
		Type:     typ,
		Title:    r.Field("title"),
		Volume:   r.Field("volume"),
		Page:     r.Field("pages"),
		Abstract: r.Field("abstract"),
		URL:      r.Field("url"),
		ISSN:     r.Field("issn"),
		DOI:      normalizeDOI(r.Field("doi")),
	}

	if j := r.Field("journal"); j != "" {
		item.ContainerTitle = j
	} else {
		item.ContainerTitle = r.Field("booktitle")
	}

	for _, a := range r.AuthorList() {
		item.Author = append(item.Author, parseAuthorName(a))
	}

	if y := r.Year(); y > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{y}}}
	}

	return item
}

// normalizeDOI strips resolver prefixes so that only the bare "10.x/y"
// identifier remains, as CSL expects.
func normalizeDOI(doi string) string {
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		if strings.HasPrefix(strings.ToLower(doi), prefix) {
			return doi[len(prefix):]
		}
	}
	return doi
}

// parseAuthorName splits a name into CSL family/given parts. BibTeX
// "Family, Given" form is honored; otherwise the last space-separated token
// is the family name. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	if family, given, ok := strings.Cut(name, ","); ok {
		return CSLName{
			Family: strings.TrimSpace(family),
			Given:  strings.TrimSpace(given),
		}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
