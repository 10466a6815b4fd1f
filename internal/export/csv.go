package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/model"
)

func ToCSV(events []model.Event, zone datekey.Zone, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Name", "Start", "End", "Duration", "Location", "Reminder (min)"}); err != nil {
		return err
	}

	for _, r := range rows(events, zone) {
		startStr, endStr := "", ""
		if r.hasStart {
			startStr = zone.Wire(r.start)
		}
		if r.hasEnd {
			endStr = zone.Wire(r.end)
		}
		rec := []string{
			fmt.Sprintf("%d", r.event.ID),
			r.event.Name,
			startStr,
			endStr,
			formatDuration(r.duration()),
			r.event.Place(),
			reminderText(r.event),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
