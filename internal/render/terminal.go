package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// WriteTerminal prints page as a styled listing. Styling degrades to plain
// text when w is not a terminal.
func WriteTerminal(w io.Writer, page Page) error {
	r := lipgloss.NewRenderer(w)
	st := terminalStyles{
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		title:   r.NewStyle().Bold(true),
		meta:    r.NewStyle().Foreground(lipgloss.Color("8")),
		badge:   r.NewStyle().Foreground(lipgloss.Color("10")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("9")),
	}

	var b strings.Builder
	st.conferences(&b, "Upcoming Conferences", page.Upcoming)
	if len(page.Past) > 0 {
		st.conferences(&b, "Past Conferences", page.Past)
	}

	b.WriteString(st.heading.Render("Publications") + "\n")
	switch {
	case page.PublicationsError != "":
		b.WriteString("  " + st.warn.Render(page.PublicationsError) + "\n")
	case page.NoPublications:
		b.WriteString("  " + st.meta.Render(MsgNoPublications) + "\n")
	default:
		st.publications(&b, page.Recent)
		if len(page.Older) > 0 {
			b.WriteString("\n" + st.heading.Render("Older Publications") + "\n")
			st.publications(&b, page.Older)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

type terminalStyles struct {
	heading, title, meta, badge, warn lipgloss.Style
}

func (st terminalStyles) conferences(b *strings.Builder, heading string, confs []ConferenceView) {
	b.WriteString(st.heading.Render(heading) + "\n")
	if len(confs) == 0 {
		b.WriteString("  " + st.meta.Render("none") + "\n\n")
		return
	}
	for _, c := range confs {
		b.WriteString("  " + st.title.Render(c.Title) + "\n")
		meta := c.Date
		if c.Location != "" {
			meta += " | " + c.Location
		}
		b.WriteString("    " + st.meta.Render(meta) + "\n")
		if c.URL != "" {
			b.WriteString("    " + c.URL + "\n")
		}
	}
	b.WriteString("\n")
}

func (st terminalStyles) publications(b *strings.Builder, pubs []PublicationView) {
	for _, p := range pubs {
		line := "  " + st.title.Render(p.Title)
		if p.Label != "" {
			line += " " + st.badge.Render(fmt.Sprintf("[%s]", p.Label))
		}
		b.WriteString(line + "\n")
		b.WriteString("    " + p.Authors + "\n")
		b.WriteString("    " + st.meta.Render(p.VenueLine()) + "\n")
		if p.Link != "#" {
			b.WriteString("    " + p.Link + "\n")
		}
	}
}
