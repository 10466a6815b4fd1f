// Package datekey converts timestamps to calendar date keys and display
// strings in one fixed time zone. Every place that buckets, filters or
// renders a date goes through a Zone so the results always agree.
package datekey

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// KeyLayout is the fixed-width, zero-padded date key format. Keys compare
	// correctly as plain strings.
	KeyLayout = "2006-01-02"

	// WireLayout is the backend timestamp representation.
	WireLayout = "2006-01-02 15:04:05"

	// FormLayout is the combined date-time input representation used by forms.
	FormLayout = "2006-01-02T15:04"

	DefaultZone = "Asia/Ho_Chi_Minh"
)

var ErrEmpty = errors.New("empty timestamp")

// Layouts accepted by Parse for values that carry no offset. Fractional
// seconds are accepted after the seconds field without being spelled out.
var naiveLayouts = []string{
	WireLayout,
	"2006-01-02T15:04:05",
	FormLayout,
	"2006-01-02 15:04",
	KeyLayout,
}

// Zone binds the helpers to a single location.
type Zone struct {
	loc *time.Location
}

// NewZone loads the named IANA zone. An empty name selects DefaultZone.
func NewZone(name string) (Zone, error) {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Zone{}, fmt.Errorf("load zone %q: %w", name, err)
	}
	return Zone{loc: loc}, nil
}

// FixedZone builds a Zone from an existing location.
func FixedZone(loc *time.Location) Zone {
	return Zone{loc: loc}
}

func (z Zone) Location() *time.Location {
	if z.loc == nil {
		return time.UTC
	}
	return z.loc
}

func (z Zone) Name() string {
	return z.Location().String()
}

// Parse reads a timestamp in any of the representations the backend or the
// forms produce. Values without an offset are read in the zone.
func (z Zone) Parse(ts string) (time.Time, error) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, ErrEmpty
	}
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t.In(z.Location()), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, ts, z.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: unrecognised format", ts)
}

// Key returns the YYYY-MM-DD date of t in the zone.
func (z Zone) Key(t time.Time) string {
	return t.In(z.Location()).Format(KeyLayout)
}

// KeyOf parses ts and returns its date key. ok is false for empty or
// unparseable input.
func (z Zone) KeyOf(ts string) (key string, ok bool) {
	t, err := z.Parse(ts)
	if err != nil {
		return "", false
	}
	return z.Key(t), true
}

// Today returns the zone-local date key of now.
func (z Zone) Today(now time.Time) string {
	return z.Key(now)
}

// Wire formats t in the backend representation, in the zone.
func (z Zone) Wire(t time.Time) string {
	return t.In(z.Location()).Format(WireLayout)
}

// FormInput converts a stored timestamp to the form representation. It
// returns "" when ts is empty or unreadable.
func (z Zone) FormInput(ts string) string {
	t, err := z.Parse(ts)
	if err != nil {
		return ""
	}
	return t.In(z.Location()).Format(FormLayout)
}

// FromFormInput converts a form value to the wire representation.
func (z Zone) FromFormInput(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmpty
	}
	t, err := time.ParseInLocation(FormLayout, s, z.Location())
	if err != nil {
		// Accept the space separated variant users tend to type.
		t, err = time.ParseInLocation("2006-01-02 15:04", s, z.Location())
		if err != nil {
			return "", fmt.Errorf("expected YYYY-MM-DDTHH:MM, got %q", s)
		}
	}
	return z.Wire(t), nil
}

// DisplayDate renders a key as DD-MM-YYYY.
func DisplayDate(key string) string {
	t, err := ParseKey(key)
	if err != nil {
		return key
	}
	return t.Format("02-01-2006")
}

// DisplayDateTime renders t as DD-MM-YYYY HH:MM in the zone.
func (z Zone) DisplayDateTime(t time.Time) string {
	return t.In(z.Location()).Format("02-01-2006 15:04")
}

// DisplayTime renders t as HH:MM in the zone.
func (z Zone) DisplayTime(t time.Time) string {
	return t.In(z.Location()).Format("15:04")
}

// DisplayRange renders an event's time span. A same-day span shows the date
// once; a multi-day span shows both full stamps.
func (z Zone) DisplayRange(start string, end *string) string {
	s, err := z.Parse(start)
	if err != nil {
		return ""
	}
	if end == nil || *end == "" {
		return z.DisplayDateTime(s)
	}
	e, err := z.Parse(*end)
	if err != nil {
		return z.DisplayDateTime(s)
	}
	if z.Key(s) == z.Key(e) {
		return fmt.Sprintf("%s — %s", z.DisplayDateTime(s), z.DisplayTime(e))
	}
	return fmt.Sprintf("%s — %s", z.DisplayDateTime(s), z.DisplayDateTime(e))
}

// ParseKey reads a date key as noon UTC, which is safe for day arithmetic.
func ParseKey(key string) (time.Time, error) {
	t, err := time.Parse(KeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date key %q: %w", key, err)
	}
	return t.Add(12 * time.Hour), nil
}

// AddDays shifts a key by n calendar days. Invalid keys are returned as is.
func AddDays(key string, n int) string {
	t, err := ParseKey(key)
	if err != nil {
		return key
	}
	return t.AddDate(0, 0, n).Format(KeyLayout)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b string) (int, error) {
	ta, err := ParseKey(a)
	if err != nil {
		return 0, err
	}
	tb, err := ParseKey(b)
	if err != nil {
		return 0, err
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}
