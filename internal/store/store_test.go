package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != len(migrations) {
		t.Fatalf("expected user_version %d, got %d", len(migrations), version)
	}
}

func TestNewWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "agenda.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetValue("token", "abc"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: data survives and migration is not re-run.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	v, err := s2.GetValue("token")
	if err != nil {
		t.Fatal(err)
	}
	if v != "abc" {
		t.Fatalf("expected abc after reopen, got %q", v)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "agenda.db" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	for i, ddl := range migrations {
		if _, err := s.db.Exec(ddl); err != nil {
			t.Fatalf("re-running migration %d: %v", i+1, err)
		}
	}
}

// ============================================================
// Key/value
// ============================================================

func TestGetValueNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetValue("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetValueOverwrite(t *testing.T) {
	s := newTestStore(t)

	s.SetValue("key", "v1")
	s.SetValue("key", "v2")
	val, _ := s.GetValue("key")
	if val != "v2" {
		t.Fatalf("expected v2, got %s", val)
	}
}

func TestSetValues(t *testing.T) {
	s := newTestStore(t)
	err := s.SetValues(map[string]string{"user": `{"id":1}`, "token": "t"})
	if err != nil {
		t.Fatal(err)
	}
	all, err := s.AllValues()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 values, got %d", len(all))
	}
	// Ordered by key.
	if all[0].Key != "token" || all[1].Key != "user" {
		t.Fatalf("unexpected order: %+v", all)
	}
}

func TestDeleteValues(t *testing.T) {
	s := newTestStore(t)
	s.SetValue("user", "u")
	s.SetValue("token", "t")
	s.SetValue("other", "o")

	if err := s.DeleteValues("user", "token", "absent"); err != nil {
		t.Fatal(err)
	}

	for _, k := range []string{"user", "token"} {
		if _, err := s.GetValue(k); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s should be gone, got %v", k, err)
		}
	}
	if v, _ := s.GetValue("other"); v != "o" {
		t.Fatal("unrelated key removed")
	}
}

func TestDeleteValuesNoKeys(t *testing.T) {
	s := newTestStore(t)
	if err := s.DeleteValues(); err != nil {
		t.Fatal(err)
	}
}

func TestAllValuesEmpty(t *testing.T) {
	s := newTestStore(t)
	all, err := s.AllValues()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no values, got %d", len(all))
	}
}

// ============================================================
// Fired reminders
// ============================================================

func TestMarkReminderFired(t *testing.T) {
	s := newTestStore(t)
	start := "2024-06-10 09:00:00"

	fired, err := s.ReminderFired(1, start)
	if err != nil {
		t.Fatal(err)
	}
	if fired {
		t.Fatal("should not be fired yet")
	}

	now := time.Date(2024, 6, 10, 1, 45, 0, 0, time.UTC)
	if err := s.MarkReminderFired(1, start, now); err != nil {
		t.Fatal(err)
	}
	// Second mark is ignored.
	if err := s.MarkReminderFired(1, start, now.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	fired, _ = s.ReminderFired(1, start)
	if !fired {
		t.Fatal("should be fired")
	}

	// A rescheduled occurrence is a different reminder.
	fired, _ = s.ReminderFired(1, "2024-06-11 09:00:00")
	if fired {
		t.Fatal("different start time should not be fired")
	}

	list, err := s.FiredReminders()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 record, got %d", len(list))
	}
	if !list[0].FiredAt.Equal(now) {
		t.Fatalf("fired_at = %v, want %v", list[0].FiredAt, now)
	}
}

func TestPruneReminders(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s.MarkReminderFired(1, "a", base)
	s.MarkReminderFired(2, "b", base.AddDate(0, 0, 10))

	n, err := s.PruneReminders(base.AddDate(0, 0, 5))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 pruned, got %d", n)
	}
	list, _ := s.FiredReminders()
	if len(list) != 1 || list[0].EventID != 2 {
		t.Fatalf("unexpected remaining: %+v", list)
	}
}

// ============================================================
// Close
// ============================================================

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.SetValue("k", "v"); err == nil {
		t.Fatal("expected error after close")
	}
}
