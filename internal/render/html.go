// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

//go:embed page.html
var pageSkeleton []byte

// Container ids the HTML writer fills. The skeleton must carry all of them.
const (
	idUpcoming      = "#conferences-list"
	idPastSection   = "#past-conferences"
	idPast          = "#past-conferences-list"
	idPublications  = "#bibtex-container"
	idOlderSection  = "#older-publications"
	idOlder         = "#older-publications-list"
	idGeneratedAt   = "#generated-at"
	displayVisible  = "display: block"
	generatedLayout = "2 January 2006 15:04 MST"
)

// WriteHTML renders page into the embedded skeleton and writes the document.
func WriteHTML(w io.Writer, page Page) error {
	return WriteHTMLTemplate(w, pageSkeleton, page)
}

// WriteHTMLTemplate renders page into the given skeleton. The skeleton must
// contain the conference and publication containers; sections for past
// conferences and older publications are made visible only when they have
// content.
func WriteHTMLTemplate(w io.Writer, skeleton []byte, page Page) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(skeleton))
	if err != nil {
		return fmt.Errorf("parsing page skeleton: %w", err)
	}
	for _, id := range []string{idUpcoming, idPast, idPublications, idOlder} {
		if doc.Find(id).Length() == 0 {
			return fmt.Errorf("page skeleton has no %s element", id)
		}
	}

	for _, c := range page.Upcoming {
		doc.Find(idUpcoming).AppendHtml(conferenceHTML(c))
	}
	if len(page.Past) > 0 {
		for _, c := range page.Past {
			doc.Find(idPast).AppendHtml(conferenceHTML(c))
		}
		doc.Find(idPastSection).SetAttr("style", displayVisible)
	}

	container := doc.Find(idPublications)
	switch {
	case page.PublicationsError != "":
		container.AppendHtml(messageHTML("error", page.PublicationsError))
	case page.NoPublications:
		container.AppendHtml(messageHTML("pub-message", MsgNoPublications))
	default:
		for _, p := range page.Recent {
			container.AppendHtml(publicationHTML(p))
		}
		if len(page.Older) > 0 {
			for _, p := range page.Older {
				doc.Find(idOlder).AppendHtml(publicationHTML(p))
			}
			doc.Find(idOlderSection).SetAttr("style", displayVisible)
		}
	}

	if !page.GeneratedAt.IsZero() {
		doc.Find(idGeneratedAt).
			SetAttr("datetime", page.GeneratedAt.Format(time.RFC3339)).
			SetText(page.GeneratedAt.Format(generatedLayout))
	}

	out, err := doc.Html()
	if err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func conferenceHTML(c ConferenceView) string {
	var b strings.Builder
	b.WriteString(`<div class="conference-item"><h3>`)
	if c.URL != "" {
		fmt.Fprintf(&b, `<a href="%s" target="_blank" rel="noopener">%s</a>`, esc(c.URL), esc(c.Title))
	} else {
		b.WriteString(esc(c.Title))
	}
	b.WriteString(`</h3>`)
	fmt.Fprintf(&b, `<p class="conf-meta"><i class="far fa-calendar-alt"></i> %s`, esc(c.Date))
	if c.Location != "" {
		fmt.Fprintf(&b, `<br><i class="fas fa-map-marker-alt"></i> %s`, esc(c.Location))
	}
	b.WriteString(`</p>`)
	if c.Description != "" {
		fmt.Fprintf(&b, `<p class="conf-desc">%s</p>`, esc(c.Description))
	}
	b.WriteString(`</div>`)
	return b.String()
}

func publicationHTML(p PublicationView) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="publication-item" data-key="%s">`, esc(p.Key))
	fmt.Fprintf(&b, `<a href="%s" target="_blank" rel="noopener" class="pub-title">%s</a>`, esc(p.Link), esc(p.Title))
	fmt.Fprintf(&b, `<p class="pub-authors">%s</p>`, esc(p.Authors))
	fmt.Fprintf(&b, `<p class="pub-journal">%s</p>`, esc(p.VenueLine()))

	if p.Label != "" || p.Year != "" {
		b.WriteString(`<div class="pub-meta-badges">`)
		if p.Label != "" {
			fmt.Fprintf(&b, `<span class="pub-badge">%s</span>`, esc(p.Label))
		}
		if p.Year != "" {
			fmt.Fprintf(&b, `<span class="pub-badge">%s</span>`, esc(p.Year))
		}
		b.WriteString(`</div>`)
	}
	if p.Note != "" {
		fmt.Fprintf(&b, `<p class="pub-desc">%s</p>`, esc(p.Note))
	}

	switch {
	case p.URL != "":
		fmt.Fprintf(&b, `<div class="pub-links"><a href="%s" target="_blank" rel="noopener">[URL]</a></div>`, esc(p.URL))
	case p.DOI != "":
		fmt.Fprintf(&b, `<div class="pub-links"><a href="%s" target="_blank" rel="noopener">[DOI]</a></div>`, esc(p.DOI))
	}
	b.WriteString(`</div>`)
	return b.String()
}

// messageHTML renders a single-paragraph state. A failed load uses class
// "error" so it is styled apart from an empty list.
func messageHTML(class, msg string) string {
	return `<p class="` + class + `">` + esc(msg) + `</p>`
}

func esc(s string) string { return html.EscapeString(s) }
