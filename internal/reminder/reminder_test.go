package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/model"
)

func TestDue(t *testing.T) {
	z, err := datekey.NewZone("Asia/Ho_Chi_Minh")
	require.NoError(t, err)
	now := time.Date(2024, 6, 10, 8, 50, 0, 0, z.Location())

	events := []model.Event{
		{ID: 1, Name: "in window", StartTime: "2024-06-10 09:00:00", TimeReminder: model.IntPtr(15)},
		{ID: 2, Name: "too early", StartTime: "2024-06-10 10:00:00", TimeReminder: model.IntPtr(15)},
		{ID: 3, Name: "started", StartTime: "2024-06-10 08:50:00", TimeReminder: model.IntPtr(15)},
		{ID: 4, Name: "no reminder", StartTime: "2024-06-10 09:00:00"},
		{ID: 5, Name: "boundary", StartTime: "2024-06-10 09:00:00", TimeReminder: model.IntPtr(10)},
		{ID: 6, Name: "zero lead", StartTime: "2024-06-10 08:50:00", TimeReminder: model.IntPtr(0)},
		{ID: 7, Name: "earlier", StartTime: "2024-06-10 08:55:00", TimeReminder: model.IntPtr(30)},
		{ID: 8, Name: "no start", TimeReminder: model.IntPtr(30)},
	}

	due := Due(events, z, now, nil)
	var ids []int64
	for _, r := range due {
		ids = append(ids, r.Event.ID)
	}
	assert.Equal(t, []int64{7, 1, 5}, ids)
	assert.Equal(t, 15*time.Minute, due[1].Lead)
}

func TestDueSkipsFired(t *testing.T) {
	z, _ := datekey.NewZone("")
	now := time.Date(2024, 6, 10, 8, 50, 0, 0, z.Location())
	ev := model.Event{ID: 1, Name: "x", StartTime: "2024-06-10 09:00:00", TimeReminder: model.IntPtr(15)}

	fired := Set{KeyOf(ev): true}
	assert.Empty(t, Due([]model.Event{ev}, z, now, fired))

	// Rescheduled to a new start re-arms the reminder.
	ev.StartTime = "2024-06-10 09:05:00"
	assert.Len(t, Due([]model.Event{ev}, z, now, fired), 1)
}

func TestReminderText(t *testing.T) {
	z, _ := datekey.NewZone("")
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, z.Location())
	r := Reminder{Event: model.Event{Name: "Standup"}, Start: start}
	assert.Equal(t, "Standup starts in 10 min at 09:00", r.Text(z, start.Add(-10*time.Minute)))
	assert.Equal(t, "Standup starts now (09:00)", r.Text(z, start.Add(-20*time.Second)))
}
