// Package model defines the JSON types exchanged with the schedule backend.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// User is the account returned by login and /users/me.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Event is a single calendar event. Timestamps stay in their wire form;
// datekey.Zone interprets them.
type Event struct {
	ID           int64   `json:"id"`
	UserID       int64   `json:"user_id"`
	Name         string  `json:"event_name"`
	StartTime    string  `json:"start_time"`
	EndTime      *string `json:"end_time,omitempty"`
	Location     *string `json:"location,omitempty"`
	TimeReminder *int    `json:"time_reminder,omitempty"`
}

// End returns the end timestamp or "" when the event has none.
func (e Event) End() string {
	if e.EndTime == nil {
		return ""
	}
	return *e.EndTime
}

// Place returns the location or "" when unset.
func (e Event) Place() string {
	if e.Location == nil {
		return ""
	}
	return *e.Location
}

// ReminderMinutes returns the reminder lead time and whether one is set.
func (e Event) ReminderMinutes() (int, bool) {
	if e.TimeReminder == nil {
		return 0, false
	}
	return *e.TimeReminder, true
}

// EventPayload is the body of create and update requests.
type EventPayload struct {
	UserID       int64   `json:"user_id"`
	Name         string  `json:"event_name"`
	StartTime    string  `json:"start_time"`
	EndTime      *string `json:"end_time"`
	Location     *string `json:"location"`
	TimeReminder *int    `json:"time_reminder"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ParseRequest struct {
	Text string `json:"text"`
}

// ParseResult is what the NLP endpoint extracts from free text. Every field
// may be missing.
type ParseResult struct {
	EventName    string  `json:"event_name"`
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
	Location     *string `json:"location"`
	TimeReminder *int    `json:"time_reminder"`
}

// EventList decodes either a bare JSON array of events or an object of the
// form {"events": [...]}.
type EventList []Event

func (l *EventList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}
	if trimmed[0] == '[' {
		var events []Event
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return fmt.Errorf("decode event array: %w", err)
		}
		*l = events
		return nil
	}
	var wrapped struct {
		Events []Event `json:"events"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return fmt.Errorf("decode event envelope: %w", err)
	}
	*l = wrapped.Events
	return nil
}

// StringPtr returns nil for empty strings.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func IntPtr(n int) *int {
	return &n
}
