package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/model"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Timezone   string      `json:"timezone"`
	Count      int         `json:"count"`
	Events     []jsonEvent `json:"events"`
}

type jsonEvent struct {
	ID           int64  `json:"id"`
	Name         string `json:"event_name"`
	StartTime    string `json:"start_time,omitempty"`
	EndTime      string `json:"end_time,omitempty"`
	DurationSec  int64  `json:"duration_seconds"`
	Location     string `json:"location,omitempty"`
	TimeReminder *int   `json:"time_reminder,omitempty"`
}

func ToJSON(events []model.Event, zone datekey.Zone, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Timezone:   zone.Name(),
		Count:      len(events),
	}

	for _, r := range rows(events, zone) {
		e := jsonEvent{
			ID:           r.event.ID,
			Name:         r.event.Name,
			DurationSec:  r.duration(),
			Location:     r.event.Place(),
			TimeReminder: r.event.TimeReminder,
		}
		if r.hasStart {
			e.StartTime = r.start.Format(time.RFC3339)
		}
		if r.hasEnd {
			e.EndTime = r.end.Format(time.RFC3339)
		}
		export.Events = append(export.Events, e)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
