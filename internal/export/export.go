// Package export writes a user's events to files in CSV, JSON, iCalendar
// and PDF form.
package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/model"
)

type Format int

const (
	CSV Format = iota
	JSON
	ICS
	PDF
)

// Formats lists every format in picker order.
var Formats = []Format{CSV, JSON, ICS, PDF}

func (f Format) String() string {
	switch f {
	case CSV:
		return "CSV"
	case JSON:
		return "JSON"
	case ICS:
		return "iCalendar (.ics)"
	case PDF:
		return "PDF"
	}
	return "unknown"
}

func (f Format) Ext() string {
	switch f {
	case CSV:
		return "csv"
	case JSON:
		return "json"
	case ICS:
		return "ics"
	case PDF:
		return "pdf"
	}
	return "txt"
}

// Filename returns dir/agenda-export-<date>.<ext>.
func Filename(dir string, f Format, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("agenda-export-%s.%s", now.Format("2006-01-02"), f.Ext()))
}

// Write dispatches to the writer for f.
func Write(f Format, events []model.Event, zone datekey.Zone, path string) error {
	switch f {
	case CSV:
		return ToCSV(events, zone, path)
	case JSON:
		return ToJSON(events, zone, path)
	case ICS:
		return ToICS(events, zone, path)
	case PDF:
		return ToPDF(events, zone, path)
	}
	return fmt.Errorf("unknown export format %d", int(f))
}

// row is an event with its timestamps resolved in the zone.
type row struct {
	event    model.Event
	start    time.Time
	end      time.Time
	hasStart bool
	hasEnd   bool
}

func (r row) duration() int64 {
	if !r.hasStart || !r.hasEnd || r.end.Before(r.start) {
		return 0
	}
	return int64(r.end.Sub(r.start).Seconds())
}

// rows resolves events and orders them by start. Events without a readable
// start go last in their original order.
func rows(events []model.Event, zone datekey.Zone) []row {
	out := make([]row, 0, len(events))
	for _, ev := range events {
		r := row{event: ev}
		if t, err := zone.Parse(ev.StartTime); err == nil {
			r.start, r.hasStart = t, true
		}
		if t, err := zone.Parse(ev.End()); err == nil {
			r.end, r.hasEnd = t, true
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].hasStart != out[j].hasStart {
			return out[i].hasStart
		}
		return out[i].start.Before(out[j].start)
	})
	return out
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func reminderText(ev model.Event) string {
	if mins, ok := ev.ReminderMinutes(); ok {
		return fmt.Sprintf("%d", mins)
	}
	return ""
}
