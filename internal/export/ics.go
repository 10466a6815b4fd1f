package export

import (
	"fmt"
	"os"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/model"
)

const productID = "-//agenda//agenda export//EN"

// ToICS writes a VCALENDAR with one VEVENT per event that has a start time.
// A reminder lead time becomes a display VALARM.
func ToICS(events []model.Event, zone datekey.Zone, path string) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRTimezone(zone.Name())

	stamp := time.Now().UTC()
	for _, r := range rows(events, zone) {
		if !r.hasStart {
			continue
		}
		ve := cal.AddEvent(fmt.Sprintf("event-%d@agenda", r.event.ID))
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(r.start)
		if r.hasEnd && !r.end.Before(r.start) {
			ve.SetEndAt(r.end)
		}
		ve.SetSummary(r.event.Name)
		if loc := r.event.Place(); loc != "" {
			ve.SetLocation(loc)
		}
		if mins, ok := r.event.ReminderMinutes(); ok && mins >= 0 {
			alarm := ve.AddAlarm()
			alarm.SetAction(ical.ActionDisplay)
			alarm.SetTrigger(fmt.Sprintf("-PT%dM", mins))
			alarm.SetProperty(ical.ComponentPropertyDescription, r.event.Name)
		}
	}

	if err := os.WriteFile(path, []byte(cal.Serialize()), 0o644); err != nil {
		return fmt.Errorf("write ics file: %w", err)
	}
	return nil
}
