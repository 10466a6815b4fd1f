package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventListDecodesBothShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"array", `[{"id":1,"event_name":"a","start_time":"2024-06-10 09:00:00"}]`, 1},
		{"envelope", `{"events":[{"id":1},{"id":2}],"count":2}`, 2},
		{"empty envelope", `{"count":0}`, 0},
		{"null", `null`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l EventList
			require.NoError(t, json.Unmarshal([]byte(tt.body), &l))
			assert.Len(t, l, tt.want)
		})
	}
}

func TestEventListRejectsGarbage(t *testing.T) {
	var l EventList
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &l))
}

func TestEventAccessors(t *testing.T) {
	ev := Event{Name: "Standup", StartTime: "2024-06-10 09:00:00"}
	assert.Equal(t, "", ev.End())
	assert.Equal(t, "", ev.Place())
	_, ok := ev.ReminderMinutes()
	assert.False(t, ok)

	ev.EndTime = StringPtr("2024-06-10 09:30:00")
	ev.Location = StringPtr("Room 301")
	ev.TimeReminder = IntPtr(15)
	assert.Equal(t, "2024-06-10 09:30:00", ev.End())
	assert.Equal(t, "Room 301", ev.Place())
	n, ok := ev.ReminderMinutes()
	assert.True(t, ok)
	assert.Equal(t, 15, n)
}

func TestPayloadSendsExplicitNulls(t *testing.T) {
	data, err := json.Marshal(EventPayload{UserID: 7, Name: "x", StartTime: "2024-06-10 09:00:00"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":7,"event_name":"x","start_time":"2024-06-10 09:00:00","end_time":null,"location":null,"time_reminder":null}`, string(data))
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	assert.Equal(t, "a", *StringPtr("a"))
}
