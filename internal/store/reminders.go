package store

import (
	"fmt"
	"time"
)

// MarkReminderFired records that the reminder for an event occurrence was
// shown. Marking twice keeps the first timestamp.
func (s *Store) MarkReminderFired(eventID int64, startTime string, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO fired_reminders (event_id, start_time, fired_at) VALUES (?, ?, ?)`,
		eventID, startTime, at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("mark reminder %d: %w", eventID, err)
	}
	return nil
}

func (s *Store) ReminderFired(eventID int64, startTime string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM fired_reminders WHERE event_id = ? AND start_time = ?`,
		eventID, startTime,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check reminder %d: %w", eventID, err)
	}
	return n > 0, nil
}

// FiredReminders lists every recorded reminder, oldest first.
func (s *Store) FiredReminders() ([]FiredReminder, error) {
	rows, err := s.db.Query(`SELECT event_id, start_time, fired_at FROM fired_reminders ORDER BY fired_at, event_id`)
	if err != nil {
		return nil, fmt.Errorf("list fired reminders: %w", err)
	}
	defer rows.Close()

	var out []FiredReminder
	for rows.Next() {
		var (
			r       FiredReminder
			firedAt string
		)
		if err := rows.Scan(&r.EventID, &r.StartTime, &firedAt); err != nil {
			return nil, err
		}
		r.FiredAt, _ = time.Parse(time.RFC3339, firedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// PruneReminders drops records fired before the cutoff and reports how many
// were removed.
func (s *Store) PruneReminders(before time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM fired_reminders WHERE fired_at < ?`, before.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("prune reminders: %w", err)
	}
	return res.RowsAffected()
}
