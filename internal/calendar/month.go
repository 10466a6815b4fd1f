package calendar

import (
	"fmt"
	"time"

	"github.com/sadopc/agenda/internal/datekey"
)

// Month is a displayed calendar month. Navigation is unbounded.
type Month struct {
	Year  int
	Month time.Month
}

// Cell is one grid position. Padding cells have an empty Key and Day 0.
type Cell struct {
	Key string
	Day int
}

func (c Cell) Empty() bool { return c.Key == "" }

// Current returns the month containing the zone-local today.
func Current(zone datekey.Zone, now time.Time) Month {
	t := now.In(zone.Location())
	return Month{Year: t.Year(), Month: t.Month()}
}

// MonthOfKey returns the month a date key belongs to.
func MonthOfKey(key string) (Month, error) {
	t, err := datekey.ParseKey(key)
	if err != nil {
		return Month{}, err
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) first() time.Time {
	return time.Date(m.Year, m.Month, 1, 12, 0, 0, 0, time.UTC)
}

func (m Month) Next() Month {
	t := m.first().AddDate(0, 1, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) Prev() Month {
	t := m.first().AddDate(0, -1, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return m.first().AddDate(0, 1, -1).Day()
}

func (m Month) FirstKey() string {
	return m.first().Format(datekey.KeyLayout)
}

func (m Month) LastKey() string {
	return m.first().AddDate(0, 0, m.Days()-1).Format(datekey.KeyLayout)
}

// Contains reports whether key falls inside the month.
func (m Month) Contains(key string) bool {
	return key >= m.FirstKey() && key <= m.LastKey()
}

// Keys lists every date key of the month in order.
func (m Month) Keys() []string {
	n := m.Days()
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = fmt.Sprintf("%04d-%02d-%02d", m.Year, int(m.Month), i+1)
	}
	return keys
}

// Weeks lays the month out in full Sunday-first weeks. Cells before the 1st
// and after the last day are empty.
func (m Month) Weeks() [][]Cell {
	lead := int(m.first().Weekday())
	keys := m.Keys()

	cells := make([]Cell, 0, lead+len(keys)+6)
	for i := 0; i < lead; i++ {
		cells = append(cells, Cell{})
	}
	for i, k := range keys {
		cells = append(cells, Cell{Key: k, Day: i + 1})
	}
	for len(cells)%7 != 0 {
		cells = append(cells, Cell{})
	}

	weeks := make([][]Cell, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

// Title renders e.g. "June 2024".
func (m Month) Title() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}
