package nlp

import (
	"strconv"
	"strings"

	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/form"
	"github.com/sadopc/agenda/internal/model"
)

// Preview turns a parse result into editable event fields. A result without a
// readable start time is a failed parse: no fields are produced.
func Preview(res model.ParseResult, zone datekey.Zone) (form.EventFields, error) {
	if res.StartTime == nil {
		return form.EventFields{}, ErrNoStartTime
	}
	start := zone.FormInput(*res.StartTime)
	if start == "" {
		return form.EventFields{}, ErrNoStartTime
	}

	f := form.EventFields{
		Name:  strings.TrimSpace(res.EventName),
		Start: start,
	}
	if res.EndTime != nil {
		f.End = zone.FormInput(*res.EndTime)
	}
	if res.Location != nil {
		f.Location = strings.TrimSpace(*res.Location)
	}
	if res.TimeReminder != nil && *res.TimeReminder >= 0 {
		f.Reminder = strconv.Itoa(*res.TimeReminder)
	}
	return f, nil
}
