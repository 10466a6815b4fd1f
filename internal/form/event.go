package form

import (
	"strconv"
	"strings"

	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/model"
)

// DefaultStartClock is the time prefilled when creating an event for a date.
const DefaultStartClock = "09:00"

// EventFields is the state of the create/edit event form.
type EventFields struct {
	Name     string `validate:"required" label:"name"`
	Start    string `validate:"required" label:"start time"`
	End      string `label:"end time"`
	Location string `label:"location"`
	Reminder string `validate:"omitempty,number" label:"reminder"`
}

// ForDate returns empty fields with the start set to 09:00 on key.
func ForDate(key string) EventFields {
	var f EventFields
	if key != "" {
		f.Start = key + "T" + DefaultStartClock
	}
	return f
}

// FromEvent loads an existing event into form representation.
func FromEvent(ev model.Event, zone datekey.Zone) EventFields {
	f := EventFields{
		Name:     ev.Name,
		Start:    zone.FormInput(ev.StartTime),
		End:      zone.FormInput(ev.End()),
		Location: ev.Place(),
	}
	if n, ok := ev.ReminderMinutes(); ok {
		f.Reminder = strconv.Itoa(n)
	}
	return f
}

// SetStart updates the start time. Clearing it clears the end time and the
// reminder in the same step.
func (f *EventFields) SetStart(v string) {
	f.Start = v
	f.ClearDependents()
}

// ClearDependents empties End and Reminder when there is no start time.
func (f *EventFields) ClearDependents() {
	if strings.TrimSpace(f.Start) == "" {
		f.End = ""
		f.Reminder = ""
	}
}

// DependentsEnabled reports whether End and Reminder may be edited.
func (f EventFields) DependentsEnabled() bool {
	return strings.TrimSpace(f.Start) != ""
}

// Payload validates the fields and converts them to a create/update body
// owned by userID.
func (f EventFields) Payload(zone datekey.Zone, userID int64) (model.EventPayload, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Start = strings.TrimSpace(f.Start)
	f.End = strings.TrimSpace(f.End)
	f.Location = strings.TrimSpace(f.Location)
	f.Reminder = strings.TrimSpace(f.Reminder)
	f.ClearDependents()

	if err := check(f); err != nil {
		return model.EventPayload{}, err
	}

	start, err := zone.FromFormInput(f.Start)
	if err != nil {
		return model.EventPayload{}, &FieldError{Field: "start time", Rule: "datetime"}
	}
	p := model.EventPayload{
		UserID:    userID,
		Name:      f.Name,
		StartTime: start,
		Location:  model.StringPtr(f.Location),
	}

	if f.End != "" {
		end, err := zone.FromFormInput(f.End)
		if err != nil {
			return model.EventPayload{}, &FieldError{Field: "end time", Rule: "datetime"}
		}
		// Both are fixed-width wire stamps in the same zone.
		if end < start {
			return model.EventPayload{}, ErrEndBeforeStart
		}
		p.EndTime = &end
	}

	if f.Reminder != "" {
		n, err := strconv.Atoi(f.Reminder)
		if err != nil || n < 0 {
			return model.EventPayload{}, &FieldError{Field: "reminder", Rule: "number"}
		}
		p.TimeReminder = &n
	}
	return p, nil
}
