package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/model"
)

func testZone(t *testing.T) datekey.Zone {
	t.Helper()
	z, err := datekey.NewZone("Asia/Ho_Chi_Minh")
	if err != nil {
		t.Fatal(err)
	}
	return z
}

func sampleData() []model.Event {
	end := "2024-06-10 10:30:00"
	return []model.Event{
		{
			ID:           2,
			UserID:       1,
			Name:         "Standup",
			StartTime:    "2024-06-11 09:00:00",
			TimeReminder: model.IntPtr(15),
		},
		{
			ID:        1,
			UserID:    1,
			Name:      "Planning",
			StartTime: "2024-06-10 09:00:00",
			EndTime:   &end,
			Location:  model.StringPtr("Room 301"),
		},
		{
			ID:     3,
			UserID: 1,
			Name:   "Someday",
		},
	}
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.csv")

	err := ToCSV(sampleData(), testZone(t), path)
	if err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header + 3 data rows
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	expectedHeader := []string{"ID", "Name", "Start", "End", "Duration", "Location", "Reminder (min)"}
	for i, h := range expectedHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	// Ordered by start
	row := records[1]
	if row[0] != "1" || row[1] != "Planning" {
		t.Fatalf("first row = %v, want Planning", row)
	}
	if row[2] != "2024-06-10 09:00:00" || row[3] != "2024-06-10 10:30:00" {
		t.Fatalf("times = %q %q", row[2], row[3])
	}
	if row[4] != "01:30:00" {
		t.Fatalf("Duration = %q, want 01:30:00", row[4])
	}
	if row[5] != "Room 301" {
		t.Fatalf("Location = %q", row[5])
	}
	if records[2][6] != "15" {
		t.Fatalf("Reminder = %q, want 15", records[2][6])
	}

	// No start sorts last with empty times
	last := records[3]
	if last[1] != "Someday" || last[2] != "" || last[3] != "" {
		t.Fatalf("last row = %v", last)
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := ToCSV(nil, testZone(t), path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	records, _ := csv.NewReader(f).ReadAll()
	if len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(nil, testZone(t), "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	events := []model.Event{{
		ID:        1,
		Name:      `Họp "nhóm", tuần`,
		StartTime: "2024-06-10 09:00:00",
	}}
	path := filepath.Join(t.TempDir(), "special.csv")

	if err := ToCSV(events, testZone(t), path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("CSV should be valid even with special chars: %v", err)
	}
	if records[1][1] != `Họp "nhóm", tuần` {
		t.Fatalf("name mangled: %q", records[1][1])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(sampleData(), testZone(t), path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 3 || len(result.Events) != 3 {
		t.Fatalf("count = %d, events = %d, want 3", result.Count, len(result.Events))
	}
	if result.Timezone != "Asia/Ho_Chi_Minh" {
		t.Fatalf("timezone = %q", result.Timezone)
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}

	e := result.Events[0]
	if e.Name != "Planning" {
		t.Fatalf("Name = %q, want Planning", e.Name)
	}
	if e.StartTime != "2024-06-10T09:00:00+07:00" {
		t.Fatalf("StartTime = %q", e.StartTime)
	}
	if e.DurationSec != 5400 {
		t.Fatalf("DurationSec = %d, want 5400", e.DurationSec)
	}
	if result.Events[1].TimeReminder == nil || *result.Events[1].TimeReminder != 15 {
		t.Fatal("reminder lost")
	}
	if result.Events[2].StartTime != "" {
		t.Fatalf("event without start should omit start_time, got %q", result.Events[2].StartTime)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	if err := ToJSON(nil, testZone(t), path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if result.Count != 0 {
		t.Fatalf("count = %d, want 0", result.Count)
	}
	if result.Events != nil {
		t.Fatal("events should be nil/null for empty export")
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("JSON should be pretty-printed")
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(nil, testZone(t), "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// ICS
// ============================================================

func TestToICS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.ics")

	if err := ToICS(sampleData(), testZone(t), path); err != nil {
		t.Fatalf("ToICS: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("invalid calendar: %v", err)
	}

	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events (no-start skipped), got %d", len(events))
	}
	if got := events[0].GetProperty(ical.ComponentPropertySummary).Value; got != "Planning" {
		t.Fatalf("summary = %q", got)
	}
	start, err := events[0].GetStartAt()
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(time.Date(2024, 6, 10, 2, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", start)
	}
	if loc := events[0].GetProperty(ical.ComponentPropertyLocation); loc == nil || loc.Value != "Room 301" {
		t.Fatal("location missing")
	}

	if !strings.Contains(string(data), "TRIGGER:-PT15M") {
		t.Fatalf("expected a 15 minute alarm:\n%s", data)
	}
	if strings.Count(string(data), "BEGIN:VALARM") != 1 {
		t.Fatal("only the event with a reminder gets an alarm")
	}
}

// ============================================================
// PDF
// ============================================================

func TestToPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.pdf")

	if err := ToPDF(sampleData(), testZone(t), path); err != nil {
		t.Fatalf("ToPDF: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("not a PDF: %q", data[:8])
	}
}

func TestToPDFBadPath(t *testing.T) {
	if err := ToPDF(nil, testZone(t), "/nonexistent/dir/file.pdf"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// Dispatch and helpers
// ============================================================

func TestWriteEveryFormat(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	for _, f := range Formats {
		path := Filename(dir, f, now)
		if err := Write(f, sampleData(), testZone(t), path); err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("%s: %v", f, err)
		}
	}
	if got := filepath.Base(Filename(dir, ICS, now)); got != "agenda-export-2024-06-10.ics" {
		t.Fatalf("filename = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{60, "00:01:00"},
		{3661, "01:01:01"},
		{90061, "25:01:01"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.secs); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
