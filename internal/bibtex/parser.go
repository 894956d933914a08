// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibtex extracts citation records from BibTeX-style markup and
// converts them to CSL for downstream tools.
//
// The parser is best-effort: malformed entries are skipped rather than
// reported, and parsing never fails. Two constraints of the format accepted
// here are deliberate:
//
//   - An entry body ends at the last "}" before the next "@" marker, so a
//     field value that contains a literal "@" truncates its entry.
//   - A field value is a single brace pair with no nested "}".
//
// When a field appears more than once in an entry the last occurrence wins.
package bibtex

import (
	"sort"
	"strings"

	"github.com/pdiddy/pubsite/pkg/types"
)

// Result holds the outcome of one parse pass.
type Result struct {
	// Records are the parsed entries sorted by descending year.
	Records []types.CitationRecord

	// Skipped counts "@" markers that did not start a well-formed entry.
	Skipped int
}

// Parse returns the citation records found in text, sorted by descending
// year. Records without a year sort last. An empty result is not an error.
func Parse(text string) []types.CitationRecord {
	return ParseWithStats(text).Records
}

// ParseWithStats is Parse plus the number of skipped entry markers.
func ParseWithStats(text string) Result {
	s := &scanner{src: text}
	for state := seekEntry; state != nil; {
		state = state(s)
	}
	SortByYear(s.res.Records)
	return s.res
}

// SortByYear orders records by descending numeric year. The sort is stable:
// records with equal or missing years keep their input order.
func SortByYear(records []types.CitationRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Year() > records[j].Year()
	})
}

// scanner walks the source once. Each stateFn consumes input from pos and
// returns the next state; nil ends the scan.
type scanner struct {
	src   string
	pos   int
	start int // offset of the "@" that opened the current entry
	cur   types.CitationRecord
	res   Result
}

type stateFn func(*scanner) stateFn

// reject abandons the current entry and resumes the search just past its
// marker.
func (s *scanner) reject() stateFn {
	s.res.Skipped++
	s.pos = s.start + 1
	return seekEntry
}

func seekEntry(s *scanner) stateFn {
	n := strings.IndexByte(s.src[s.pos:], '@')
	if n < 0 {
		s.pos = len(s.src)
		return nil
	}
	s.start = s.pos + n
	s.pos = s.start + 1
	return readType
}

func readType(s *scanner) stateFn {
	end := s.pos
	for end < len(s.src) && isWordByte(s.src[end]) {
		end++
	}
	if end == s.pos {
		return s.reject()
	}
	entryType := s.src[s.pos:end]

	s.pos = skipSpace(s.src, end)
	if s.pos >= len(s.src) || s.src[s.pos] != '{' {
		return s.reject()
	}
	s.pos = skipSpace(s.src, s.pos+1)
	s.cur = types.CitationRecord{EntryType: entryType}
	return readKey
}

// readKey takes everything up to the first comma. Reaching another entry
// marker first means the key comma is missing.
func readKey(s *scanner) stateFn {
	n := strings.IndexAny(s.src[s.pos:], ",@")
	if n < 0 || s.src[s.pos+n] == '@' {
		return s.reject()
	}
	key := strings.TrimSpace(s.src[s.pos : s.pos+n])
	if key == "" {
		return s.reject()
	}
	s.cur.Key = key
	s.pos += n + 1
	return readBody
}

func readBody(s *scanner) stateFn {
	limit := len(s.src)
	if n := strings.IndexByte(s.src[s.pos:], '@'); n >= 0 {
		limit = s.pos + n
	}
	closing := strings.LastIndexByte(s.src[s.pos:limit], '}')
	if closing < 1 {
		return s.reject()
	}
	s.cur.Fields = parseFields(s.src[s.pos : s.pos+closing])
	s.res.Records = append(s.res.Records, s.cur)
	s.pos += closing + 1
	return seekEntry
}

// parseFields scans an entry body for name = {value} assignments. Text that
// does not form an assignment is ignored.
func parseFields(body string) map[string]string {
	fields := make(map[string]string)
	i := 0
	for i < len(body) {
		if !isWordByte(body[i]) {
			i++
			continue
		}

		// Field name.
		start := i
		for i < len(body) && isWordByte(body[i]) {
			i++
		}
		name := body[start:i]

		j := skipSpace(body, i)
		if j >= len(body) || body[j] != '=' {
			continue
		}
		j = skipSpace(body, j+1)
		if j >= len(body) || body[j] != '{' {
			continue
		}

		// Field value: up to the first closing brace, never empty.
		n := strings.IndexByte(body[j+1:], '}')
		if n < 1 {
			continue
		}
		fields[strings.ToLower(name)] = strings.TrimSpace(body[j+1 : j+1+n])
		i = j + n + 2
	}
	return fields
}

func isWordByte(b byte) bool {
	return b == '_' ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z') ||
		('0' <= b && b <= '9')
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			i++
		default:
			return i
		}
	}
	return i
}
