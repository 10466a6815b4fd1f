package store

import "time"

type Value struct {
	Key   string
	Value string
}

// FiredReminder identifies one reminder occurrence already shown. The start
// time is part of the key so rescheduling an event re-arms its reminder.
type FiredReminder struct {
	EventID   int64
	StartTime string
	FiredAt   time.Time
}
