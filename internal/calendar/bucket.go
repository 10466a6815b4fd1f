// Package calendar derives per-day views of an event collection: day buckets
// for the month grid, the month grid itself, and the selected-date list.
//
// Everything here is pure. Buckets are rebuilt from the event slice whenever
// it changes and never mutated on their own.
package calendar

import (
	"sort"
	"time"

	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/model"
)

// Entry is one event placed on one date.
type Entry struct {
	Event model.Event
	Start time.Time
	// SegmentStart is true on the first date the event covers.
	SegmentStart bool
	// SegmentEnd is true on the last date the event covers.
	SegmentEnd bool
}

// Buckets maps a date key to the entries covering that date, ordered by
// start time ascending.
type Buckets map[string][]Entry

// Span returns the first and last date keys an event covers. ok is false when
// the start is missing or unreadable. A missing or unreadable end collapses
// the span to the start date, and so does an end earlier than the start.
func Span(ev model.Event, zone datekey.Zone) (startKey, endKey string, ok bool) {
	startKey, ok = zone.KeyOf(ev.StartTime)
	if !ok {
		return "", "", false
	}
	endKey = startKey
	if k, ok := zone.KeyOf(ev.End()); ok && k > startKey {
		endKey = k
	}
	return startKey, endKey, true
}

// Bucket places every event on each date it covers.
func Bucket(events []model.Event, zone datekey.Zone) Buckets {
	return bucket(events, zone, "", "")
}

// BucketMonth is Bucket restricted to the dates of m. Events reaching in from
// neighbouring months still fill the dates they cover inside m.
func BucketMonth(events []model.Event, zone datekey.Zone, m Month) Buckets {
	return bucket(events, zone, m.FirstKey(), m.LastKey())
}

func bucket(events []model.Event, zone datekey.Zone, from, to string) Buckets {
	out := make(Buckets)
	for _, ev := range events {
		startKey, endKey, ok := Span(ev, zone)
		if !ok {
			continue
		}
		start, _ := zone.Parse(ev.StartTime)

		first := startKey
		if from != "" && first < from {
			first = from
		}
		last := endKey
		if to != "" && last > to {
			last = to
		}
		for k := first; k <= last; k = datekey.AddDays(k, 1) {
			out[k] = append(out[k], Entry{
				Event:        ev,
				Start:        start,
				SegmentStart: k == startKey,
				SegmentEnd:   k == endKey,
			})
		}
	}
	for k := range out {
		entries := out[k]
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Start.Before(entries[j].Start)
		})
	}
	return out
}

// Day returns every entry on key, past ones included.
func (b Buckets) Day(key string) []Entry {
	return b[key]
}

// Visible returns the entries on key that are not past at now. The month grid
// shows these; the day-detail view uses Day.
func (b Buckets) Visible(key string, zone datekey.Zone, now time.Time) []Entry {
	var out []Entry
	for _, e := range b[key] {
		if !IsPast(e.Event, zone, now) {
			out = append(out, e)
		}
	}
	return out
}

// Events strips the placement flags from entries.
func Events(entries []Entry) []model.Event {
	if entries == nil {
		return nil
	}
	out := make([]model.Event, len(entries))
	for i, e := range entries {
		out[i] = e.Event
	}
	return out
}

// IsPast reports whether the event's end, or its start when it has no end,
// is strictly before now. Events without a readable start are never past.
func IsPast(ev model.Event, zone datekey.Zone, now time.Time) bool {
	if end, err := zone.Parse(ev.End()); err == nil {
		return end.Before(now)
	}
	start, err := zone.Parse(ev.StartTime)
	if err != nil {
		return false
	}
	return start.Before(now)
}
