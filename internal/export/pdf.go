package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/model"
)

var pdfColumns = []struct {
	title string
	width float64
}{
	{"Name", 60},
	{"Start", 35},
	{"End", 35},
	{"Location", 45},
	{"Reminder", 15},
}

// ToPDF renders the events as a single table, one row per event.
func ToPDF(events []model.Event, zone datekey.Zone, path string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	// Core fonts are cp1252; the translator keeps Latin-1 accents readable.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper("Agenda"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%d events, exported %s (%s)", len(events), zone.DisplayDateTime(time.Now()), zone.Name())), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	for _, c := range pdfColumns {
		pdf.CellFormat(c.width, 8, c.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, r := range rows(events, zone) {
		startStr, endStr := "", ""
		if r.hasStart {
			startStr = zone.DisplayDateTime(r.start)
		}
		if r.hasEnd {
			endStr = zone.DisplayDateTime(r.end)
		}
		values := []string{r.event.Name, startStr, endStr, r.event.Place(), reminderText(r.event)}
		for i, c := range pdfColumns {
			pdf.CellFormat(c.width, 7, tr(values[i]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf file: %w", err)
	}
	return nil
}
