// Package search implements search-as-you-type over the user's events.
package search

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/model"
)

const (
	DefaultDelay      = 220 * time.Millisecond
	DefaultMaxResults = 5
)

func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// Filter returns the events whose name or location contains query,
// ignoring case, newest start first, at most max. A blank query matches
// nothing. Events with an unreadable start sort last.
func Filter(events []model.Event, zone datekey.Zone, query string, max int) []model.Event {
	q := fold(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if max <= 0 {
		max = DefaultMaxResults
	}

	type hit struct {
		ev    model.Event
		start time.Time
	}
	var hits []hit
	for _, ev := range events {
		if !strings.Contains(fold(ev.Name), q) && !strings.Contains(fold(ev.Place()), q) {
			continue
		}
		start, _ := zone.Parse(ev.StartTime)
		hits = append(hits, hit{ev: ev, start: start})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].start.After(hits[j].start)
	})
	if len(hits) > max {
		hits = hits[:max]
	}

	out := make([]model.Event, len(hits))
	for i, h := range hits {
		out[i] = h.ev
	}
	return out
}

// Sequencer tags each keystroke so late debounce ticks and late results can
// be recognised and dropped. The zero value is ready to use.
type Sequencer struct {
	current uint64
}

// Next starts a new query generation and returns its number.
func (s *Sequencer) Next() uint64 {
	s.current++
	return s.current
}

// Current reports whether n is still the latest generation.
func (s *Sequencer) Current(n uint64) bool {
	return n == s.current
}

// Cancel invalidates every outstanding generation, for example when the
// search view is closed.
func (s *Sequencer) Cancel() {
	s.current++
}
