// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schedule classifies conferences as upcoming or past from their
// textual date descriptors and exports them as iCalendar events.
//
// Two descriptor forms are recognized, tried in order:
//
//	"19-20 January 2026"  day range within one month (unanchored)
//	"20 September 2025"   single date (must match the whole string)
//
// An event is past when the last moment of its final day is strictly before
// the reference instant. Descriptors that do not parse are never past.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/pdiddy/pubsite/pkg/types"
)

var (
	rangeRe  = regexp.MustCompile(`(\d+)-(\d+)\s+([A-Za-z]+)\s+(\d{4})`)
	singleRe = regexp.MustCompile(`^(\d+)\s+([A-Za-z]+)\s+(\d{4})$`)
)

// Descriptor is a parsed conference date.
type Descriptor struct {
	// StartDay equals EndDay for single dates. Zero when the first day of a
	// range is not a usable number; classification only needs EndDay.
	StartDay int
	EndDay   int
	Month    string
	Year     int
	Range    bool
}

// ParseDescriptor matches s against the range form, then the single-date
// form. ok is false when neither matches.
func ParseDescriptor(s string) (d Descriptor, ok bool) {
	if m := rangeRe.FindStringSubmatch(s); m != nil {
		end, err1 := strconv.Atoi(m[2])
		year, err2 := strconv.Atoi(m[4])
		if err1 != nil || err2 != nil {
			return Descriptor{}, false
		}
		start, err := strconv.Atoi(m[1])
		if err != nil {
			start = 0
		}
		return Descriptor{StartDay: start, EndDay: end, Month: m[3], Year: year, Range: true}, true
	}
	if m := singleRe.FindStringSubmatch(s); m != nil {
		day, err1 := strconv.Atoi(m[1])
		year, err2 := strconv.Atoi(m[3])
		if err1 != nil || err2 != nil {
			return Descriptor{}, false
		}
		return Descriptor{StartDay: day, EndDay: day, Month: m[2], Year: year}, true
	}
	return Descriptor{}, false
}

// dateLayout mirrors the "Month Day, Year" text handed to the calendar
// parser.
const dateLayout = "January 2, 2006"

func (d Descriptor) resolve(day int, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateLayout, fmt.Sprintf("%s %d, %d", d.Month, day, d.Year), loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Start returns midnight of the first day in loc. When the first day does
// not resolve, the last day is used.
func (d Descriptor) Start(loc *time.Location) (time.Time, bool) {
	if t, ok := d.resolve(d.StartDay, loc); ok && d.StartDay > 0 {
		return t, true
	}
	return d.resolve(d.EndDay, loc)
}

// End returns 23:59:59.999 of the last day in loc. ok is false when the
// month name is not a full English month or the day does not exist.
func (d Descriptor) End(loc *time.Location) (time.Time, bool) {
	t, ok := d.resolve(d.EndDay, loc)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location()), true
}

// IsPast reports whether the event described by date ended strictly before
// now. Unparsable descriptors are not past.
func IsPast(date string, now time.Time, loc *time.Location) bool {
	d, ok := ParseDescriptor(date)
	if !ok {
		return false
	}
	end, ok := d.End(loc)
	if !ok {
		return false
	}
	return end.Before(now)
}

// ClassifiedConference pairs a conference with its derived past flag.
type ClassifiedConference struct {
	types.ConferenceRecord
	Past bool `json:"past" yaml:"past"`
}

// Classifier resolves descriptors in a fixed location.
type Classifier struct {
	// Location is used for end-of-day. Nil means time.Local.
	Location *time.Location
}

// Classify flags every conference against the same reference instant and
// returns them in input order. Records are copied, not modified.
func (c Classifier) Classify(conferences []types.ConferenceRecord, now time.Time) []ClassifiedConference {
	out := make([]ClassifiedConference, len(conferences))
	for i, conf := range conferences {
		out[i] = ClassifiedConference{
			ConferenceRecord: conf,
			Past:             IsPast(conf.Date, now, c.Location),
		}
	}
	return out
}

// Partition splits conferences into upcoming and past, preserving order.
func (c Classifier) Partition(conferences []types.ConferenceRecord, now time.Time) (upcoming, past []types.ConferenceRecord) {
	for _, cc := range c.Classify(conferences, now) {
		if cc.Past {
			past = append(past, cc.ConferenceRecord)
		} else {
			upcoming = append(upcoming, cc.ConferenceRecord)
		}
	}
	return upcoming, past
}
