package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/agenda/internal/calendar"
	"github.com/sadopc/agenda/internal/datekey"
)

const (
	barsPerCell = 3
	cellLines   = barsPerCell + 2
)

var weekdayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// gridModel is the month grid. It owns the displayed month and the keyboard
// cursor; the selected date belongs to the page and is only read here.
type gridModel struct {
	zone   datekey.Zone
	month  calendar.Month
	cursor string
	narrow bool
}

func newGridModel(zone datekey.Zone, now time.Time) gridModel {
	return gridModel{
		zone:   zone,
		month:  calendar.Current(zone, now),
		cursor: zone.Today(now),
	}
}

// moveTo puts the cursor on key, following it into another month.
func (g gridModel) moveTo(key string) gridModel {
	if _, err := datekey.ParseKey(key); err != nil {
		return g
	}
	g.cursor = key
	if !g.month.Contains(key) {
		if m, err := calendar.MonthOfKey(key); err == nil {
			g.month = m
		}
	}
	return g
}

// showMonth switches months and keeps the cursor on the same day number,
// clamped to the month length.
func (g gridModel) showMonth(m calendar.Month) gridModel {
	day := 1
	if t, err := datekey.ParseKey(g.cursor); err == nil {
		day = t.Day()
	}
	if day > m.Days() {
		day = m.Days()
	}
	g.month = m
	g.cursor = datekey.AddDays(m.FirstKey(), day-1)
	return g
}

func (g gridModel) update(msg tea.KeyMsg, now time.Time) (gridModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Left):
		return g.moveTo(datekey.AddDays(g.cursor, -1)), nil
	case key.Matches(msg, keys.Right):
		return g.moveTo(datekey.AddDays(g.cursor, 1)), nil
	case key.Matches(msg, keys.Up):
		return g.moveTo(datekey.AddDays(g.cursor, -7)), nil
	case key.Matches(msg, keys.Down):
		return g.moveTo(datekey.AddDays(g.cursor, 7)), nil
	case key.Matches(msg, keys.PrevMonth):
		return g.showMonth(g.month.Prev()), nil
	case key.Matches(msg, keys.NextMonth):
		return g.showMonth(g.month.Next()), nil
	case key.Matches(msg, keys.Today):
		return g.moveTo(g.zone.Today(now)), nil
	case key.Matches(msg, keys.Enter):
		if g.narrow {
			return g, msgCmd(openDayMsg{key: g.cursor})
		}
		return g, msgCmd(selectDateMsg{key: g.cursor})
	}
	return g, nil
}

// view renders full Sunday-first weeks. Past events are hidden from the
// cells; the day detail still lists them.
func (g gridModel) view(width int, b calendar.Buckets, selected *string, now time.Time) string {
	cw := width / 7
	if cw < 6 {
		cw = 6
	}
	today := g.zone.Today(now)

	var header []string
	for _, name := range weekdayNames {
		header = append(header, weekdayStyle.Width(cw).Render(truncate(name, cw-1)))
	}

	rows := []string{
		titleStyle.Render(g.month.Title()),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, header...),
	}
	for _, week := range g.month.Weeks() {
		var cells []string
		for _, c := range week {
			cells = append(cells, g.renderCell(c, cw, b, selected, today, now))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (g gridModel) renderCell(c calendar.Cell, cw int, b calendar.Buckets, selected *string, today string, now time.Time) string {
	style := cellStyle.Width(cw).Height(cellLines)
	if c.Empty() {
		return style.Render("")
	}
	if c.Key == g.cursor {
		style = cursorCellStyle.Width(cw).Height(cellLines)
	}

	visible := b.Visible(c.Key, g.zone, now)

	num := fmt.Sprintf("%2d", c.Day)
	switch {
	case selected != nil && *selected == c.Key:
		num = selectedDayStyle.Render(num + "*")
	case c.Key == today:
		num = todayStyle.Render(num + "•")
	default:
		num = dayNumberStyle.Render(num)
	}
	if n := len(visible); n > 0 {
		num += mutedStyle.Render(fmt.Sprintf(" (%d)", n))
	}

	lines := []string{num}
	for i, e := range visible {
		if i == barsPerCell {
			break
		}
		lines = append(lines, barStyle.Render(truncate(g.barText(e), cw-1)))
	}
	if extra := len(visible) - barsPerCell; extra > 0 {
		lines = append(lines, mutedStyle.Render(truncate(fmt.Sprintf("+%d more", extra), cw-1)))
	}
	return style.Render(strings.Join(lines, "\n"))
}

// barText shows the clock time on the first covered day and marks
// continuations of multi-day events.
func (g gridModel) barText(e calendar.Entry) string {
	text := e.Event.Name
	if e.SegmentStart {
		text = g.zone.DisplayTime(e.Start) + " " + text
	} else {
		text = "↳ " + text
	}
	if !e.SegmentEnd {
		text += " →"
	}
	return text
}
