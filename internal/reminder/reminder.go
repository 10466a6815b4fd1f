// Package reminder finds events whose reminder lead time has been reached.
package reminder

import (
	"fmt"
	"sort"
	"time"

	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/model"
)

// Key identifies one reminder occurrence. Moving an event to a new start
// time produces a new key.
type Key struct {
	EventID   int64
	StartTime string
}

// Set holds the occurrences already shown.
type Set map[Key]bool

func KeyOf(ev model.Event) Key {
	return Key{EventID: ev.ID, StartTime: ev.StartTime}
}

// Reminder is a due notification.
type Reminder struct {
	Event model.Event
	Start time.Time
	Lead  time.Duration
}

// Text renders the notification body.
func (r Reminder) Text(zone datekey.Zone, now time.Time) string {
	left := r.Start.Sub(now).Round(time.Minute)
	if left < time.Minute {
		return fmt.Sprintf("%s starts now (%s)", r.Event.Name, zone.DisplayTime(r.Start))
	}
	return fmt.Sprintf("%s starts in %d min at %s", r.Event.Name, int(left.Minutes()), zone.DisplayTime(r.Start))
}

// Due returns the events with a reminder lead time for which
// start - lead <= now < start and whose occurrence is not in fired.
// Results are ordered by start time.
func Due(events []model.Event, zone datekey.Zone, now time.Time, fired Set) []Reminder {
	var out []Reminder
	for _, ev := range events {
		mins, ok := ev.ReminderMinutes()
		if !ok || mins < 0 {
			continue
		}
		if fired[KeyOf(ev)] {
			continue
		}
		start, err := zone.Parse(ev.StartTime)
		if err != nil {
			continue
		}
		lead := time.Duration(mins) * time.Minute
		if now.Before(start.Add(-lead)) || !now.Before(start) {
			continue
		}
		out = append(out, Reminder{Event: ev, Start: start, Lead: lead})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
