package calendar

import (
	"sort"
	"time"

	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/model"
)

// FilterByDate returns the events whose covered date range contains key,
// ordered by start time ascending with ties kept in input order. The result
// always matches Bucket(events, zone).Day(key).
func FilterByDate(events []model.Event, zone datekey.Zone, key string) []model.Event {
	type hit struct {
		ev    model.Event
		start time.Time
	}
	var hits []hit
	for _, ev := range events {
		startKey, endKey, ok := Span(ev, zone)
		if !ok || key < startKey || key > endKey {
			continue
		}
		start, _ := zone.Parse(ev.StartTime)
		hits = append(hits, hit{ev: ev, start: start})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].start.Before(hits[j].start)
	})

	if hits == nil {
		return nil
	}
	out := make([]model.Event, len(hits))
	for i, h := range hits {
		out[i] = h.ev
	}
	return out
}

// FilterBySelection is FilterByDate for an optional selection. No selection
// yields nil so the caller shows its placeholder.
func FilterBySelection(events []model.Event, zone datekey.Zone, sel *string) []model.Event {
	if sel == nil || *sel == "" {
		return nil
	}
	return FilterByDate(events, zone, *sel)
}
