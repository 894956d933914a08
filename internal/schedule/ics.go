package schedule

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pdiddy/pubsite/pkg/types"
)

// WriteICS writes conferences as one iCalendar feed of all-day events.
// Conferences whose date cannot be resolved are left out; the count of
// written events is returned.
func WriteICS(w io.Writer, conferences []types.ConferenceRecord, now time.Time) (int, error) {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//pubsite//conferences//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	written := 0
	for _, conf := range conferences {
		d, ok := ParseDescriptor(conf.Date)
		if !ok {
			continue
		}
		start, ok1 := d.Start(time.UTC)
		end, ok2 := d.End(time.UTC)
		if !ok1 || !ok2 {
			continue
		}
		writeEvent(&ics, conf, start, end, now)
		written++
	}

	ics.WriteString("END:VCALENDAR\r\n")

	_, err := io.WriteString(w, ics.String())
	return written, err
}

func writeEvent(ics *strings.Builder, conf types.ConferenceRecord, start, end, now time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")
	writeLine(ics, fmt.Sprintf("UID:%s@pubsite", EventUID(conf)))
	writeLine(ics, "DTSTAMP:"+now.UTC().Format("20060102T150405Z"))

	// All-day events: DTEND is exclusive, so it is the day after the last day.
	writeLine(ics, "DTSTART;VALUE=DATE:"+start.Format("20060102"))
	writeLine(ics, "DTEND;VALUE=DATE:"+end.AddDate(0, 0, 1).Format("20060102"))

	writeLine(ics, "SUMMARY:"+escapeICS(conf.Title))
	if conf.Description != "" {
		writeLine(ics, "DESCRIPTION:"+escapeICS(conf.Description))
	}
	if conf.Location != "" {
		writeLine(ics, "LOCATION:"+escapeICS(conf.Location))
	}
	if conf.URL != "" {
		writeLine(ics, "URL:"+conf.URL)
	}
	ics.WriteString("END:VEVENT\r\n")
}

// maxLineOctets is the content line limit of RFC 5545 section 3.1,
// excluding the CRLF.
const maxLineOctets = 75

// writeLine writes one content line, folding it into CRLF-space
// continuations so no physical line exceeds maxLineOctets. Folds never
// split a UTF-8 sequence.
func writeLine(ics *strings.Builder, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		ics.WriteString(line[:cut])
		ics.WriteString("\r\n ")
		line = line[cut:]
		// Continuation lines spend one octet on the leading space.
		limit = maxLineOctets - 1
	}
	ics.WriteString(line)
	ics.WriteString("\r\n")
}

// EventUID derives a stable identifier from the conference title and date,
// so re-exports update calendar entries instead of duplicating them.
func EventUID(conf types.ConferenceRecord) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(conf.Title+"\x00"+conf.Date)).String()
}

// escapeICS escapes text values per RFC 5545 section 3.3.11.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
