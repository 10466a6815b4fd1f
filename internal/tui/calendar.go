package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/agenda/internal/api"
	"github.com/sadopc/agenda/internal/calendar"
	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/form"
	"github.com/sadopc/agenda/internal/model"
	"github.com/sadopc/agenda/internal/toast"
)

// calendarModel is the calendar page: month grid, selected-date list, the
// day-detail overlay used on narrow terminals, and the event form.
type calendarModel struct {
	backend Backend
	zone    datekey.Zone
	now     func() time.Time
	userID  func() int64

	width       int
	height      int
	narrowWidth int

	events   []model.Event
	grid     gridModel
	selected *string

	listCursor int

	overlay       bool
	overlayKey    string
	overlayCursor int

	form    eventFormModel
	confirm confirmModel
}

func newCalendarModel(b Backend, zone datekey.Zone, now func() time.Time, userID func() int64, narrowWidth int) calendarModel {
	return calendarModel{
		backend:     b,
		zone:        zone,
		now:         now,
		userID:      userID,
		narrowWidth: narrowWidth,
		grid:        newGridModel(zone, now()),
		form:        newEventFormModel(b, zone, originCalendar),
	}
}

func (c *calendarModel) setSize(w, h int) {
	c.width = w
	c.height = h
	c.grid.narrow = c.isNarrow()
	// The overlay is only drawn on narrow terminals.
	if !c.grid.narrow {
		c.overlay = false
	}
}

func (c calendarModel) isNarrow() bool {
	return c.width > 0 && c.width < c.narrowWidth
}

func (c *calendarModel) setEvents(events []model.Event) {
	c.events = events
	if n := len(c.listed()); c.listCursor >= n {
		c.listCursor = max(0, n-1)
	}
	if n := len(c.dayEvents()); c.overlayCursor >= n {
		c.overlayCursor = max(0, n-1)
	}
}

// reset drops everything tied to the signed-in user.
func (c *calendarModel) reset() {
	c.events = nil
	c.selected = nil
	c.overlay = false
	c.listCursor = 0
	c.overlayCursor = 0
	c.form.close()
	c.confirm = confirmModel{}
}

func (c calendarModel) formActive() bool {
	return c.form.active || c.confirm.active
}

// listed is the selected-date list.
func (c calendarModel) listed() []model.Event {
	return calendar.FilterBySelection(c.events, c.zone, c.selected)
}

// dayEvents is the overlay content, past events included.
func (c calendarModel) dayEvents() []model.Event {
	if !c.overlay {
		return nil
	}
	return calendar.FilterByDate(c.events, c.zone, c.overlayKey)
}

func (c calendarModel) selectDate(key string) calendarModel {
	c.selected = &key
	c.listCursor = 0
	return c
}

// jumpTo selects key, moves the grid to it and highlights eventID in the list.
func (c calendarModel) jumpTo(key string, eventID int64) calendarModel {
	c.grid = c.grid.moveTo(key)
	c.overlay = false
	c = c.selectDate(key)
	for i, ev := range c.listed() {
		if ev.ID == eventID {
			c.listCursor = i
		}
	}
	return c
}

func (c calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case selectDateMsg:
		return c.selectDate(msg.key), nil

	case openDayMsg:
		c.overlay = true
		c.overlayKey = msg.key
		c.overlayCursor = 0
		return c, nil

	case eventSavedMsg:
		var cmd tea.Cmd
		c.form, cmd = c.form.saved(msg)
		return c, cmd

	case eventDeletedMsg:
		if msg.err != nil {
			return c, toastCmd(toast.Error, api.UserMessage(msg.err, "Could not delete the event. Please try again."))
		}
		return c, toastCmd(toast.Success, "Event deleted")
	}

	if c.confirm.active {
		var cmd tea.Cmd
		c.confirm, cmd = c.confirm.update(msg)
		return c, cmd
	}
	if c.form.active {
		var cmd tea.Cmd
		c.form, cmd = c.form.update(msg)
		return c, cmd
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}
	if c.overlay {
		return c.updateOverlay(km)
	}

	switch {
	case key.Matches(km, keys.New):
		date := c.grid.cursor
		if c.selected != nil {
			date = *c.selected
		}
		return c.openCreate(date)
	case key.Matches(km, keys.Edit):
		if ev, ok := c.current(); ok {
			return c.openEdit(ev)
		}
		return c, nil
	case key.Matches(km, keys.Delete):
		if ev, ok := c.current(); ok {
			return c.askDelete(ev)
		}
		return c, nil
	case key.Matches(km, keys.Clear):
		c.selected = nil
		c.listCursor = 0
		return c, nil
	case key.Matches(km, keys.ListUp):
		if c.listCursor > 0 {
			c.listCursor--
		}
		return c, nil
	case key.Matches(km, keys.ListDown):
		if c.listCursor < len(c.listed())-1 {
			c.listCursor++
		}
		return c, nil
	}

	var cmd tea.Cmd
	c.grid, cmd = c.grid.update(km, c.now())
	return c, cmd
}

func (c calendarModel) updateOverlay(msg tea.KeyMsg) (calendarModel, tea.Cmd) {
	events := c.dayEvents()
	switch {
	case key.Matches(msg, keys.Back):
		c.overlay = false
	case key.Matches(msg, keys.Up), key.Matches(msg, keys.ListUp):
		if c.overlayCursor > 0 {
			c.overlayCursor--
		}
	case key.Matches(msg, keys.Down), key.Matches(msg, keys.ListDown):
		if c.overlayCursor < len(events)-1 {
			c.overlayCursor++
		}
	case key.Matches(msg, keys.New):
		return c.openCreate(c.overlayKey)
	case key.Matches(msg, keys.Edit):
		if c.overlayCursor < len(events) {
			return c.openEdit(events[c.overlayCursor])
		}
	case key.Matches(msg, keys.Delete):
		if c.overlayCursor < len(events) {
			return c.askDelete(events[c.overlayCursor])
		}
	}
	return c, nil
}

// current is the event under the list cursor.
func (c calendarModel) current() (model.Event, bool) {
	listed := c.listed()
	if c.listCursor < 0 || c.listCursor >= len(listed) {
		return model.Event{}, false
	}
	return listed[c.listCursor], true
}

func (c calendarModel) openCreate(date string) (calendarModel, tea.Cmd) {
	var cmd tea.Cmd
	c.form, cmd = c.form.open("New event", form.ForDate(date), nil, c.userID())
	return c, cmd
}

func (c calendarModel) openEdit(ev model.Event) (calendarModel, tea.Cmd) {
	var cmd tea.Cmd
	orig := ev
	c.form, cmd = c.form.open("Edit event", form.FromEvent(ev, c.zone), &orig, c.userID())
	return c, cmd
}

func (c calendarModel) askDelete(ev model.Event) (calendarModel, tea.Cmd) {
	backend, id := c.backend, ev.ID
	del := func() tea.Msg {
		return eventDeletedMsg{id: id, err: backend.DeleteEvent(context.Background(), id)}
	}
	var cmd tea.Cmd
	c.confirm, cmd = newConfirm(fmt.Sprintf("Delete %q?", ev.Name), "Delete", del)
	return c, cmd
}

func (c calendarModel) view(spin string) string {
	w := c.width - 4

	if c.confirm.active {
		return c.confirm.view(w)
	}
	if c.form.active {
		return c.form.view(w, spin)
	}

	now := c.now()
	buckets := calendar.BucketMonth(c.events, c.zone, c.grid.month)

	if c.isNarrow() {
		if c.overlay {
			return c.renderOverlay(w, now)
		}
		grid := c.grid.view(w-4, buckets, c.selected, now)
		hint := mutedStyle.Render("enter: day details  [/]: month  t: today  n: new")
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, grid, "", hint))
	}

	gridWidth := w * 2 / 3
	listWidth := w - gridWidth
	grid := c.grid.view(gridWidth-6, buckets, c.selected, now)
	hint := mutedStyle.Render("enter: select  c: clear  [/]: month  t: today")
	left := panelStyle.Width(gridWidth).Render(lipgloss.JoinVertical(lipgloss.Left, grid, "", hint))
	right := panelStyle.Width(listWidth).Render(c.renderList(listWidth-6, now))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (c calendarModel) renderList(width int, now time.Time) string {
	if c.selected == nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Events"),
			"",
			mutedStyle.Render("Select a date to see its events."),
		)
	}

	title := titleStyle.Render("Events on " + datekey.DisplayDate(*c.selected))
	listed := c.listed()
	if len(listed) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("Nothing scheduled. Press n to add an event."),
		)
	}

	rows := []string{title, ""}
	for i, ev := range listed {
		rows = append(rows, c.renderEventRow(ev, i == c.listCursor, width, now)...)
	}
	rows = append(rows, "", mutedStyle.Render("J/K: move  e: edit  d: delete  n: new"))
	return strings.Join(rows, "\n")
}

func (c calendarModel) renderOverlay(w int, now time.Time) string {
	title := titleStyle.Render(datekey.DisplayDate(c.overlayKey))
	events := c.dayEvents()

	rows := []string{title, ""}
	if len(events) == 0 {
		rows = append(rows, mutedStyle.Render("Nothing scheduled."))
	}
	for i, ev := range events {
		rows = append(rows, c.renderEventRow(ev, i == c.overlayCursor, w-6, now)...)
	}
	rows = append(rows, "", mutedStyle.Render("↑/↓: move  e: edit  d: delete  n: new  esc: close"))
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (c calendarModel) renderEventRow(ev model.Event, selected bool, width int, now time.Time) []string {
	cursor := "  "
	style := normalItemStyle
	if calendar.IsPast(ev, c.zone, now) {
		style = pastItemStyle
	}
	if selected {
		cursor = "> "
		style = selectedItemStyle
	}
	rows := []string{style.Render(cursor + truncate(ev.Name, width-2))}

	detail := c.zone.DisplayRange(ev.StartTime, ev.EndTime)
	if loc := ev.Place(); loc != "" {
		detail += " @ " + loc
	}
	if mins, ok := ev.ReminderMinutes(); ok {
		detail += fmt.Sprintf(" ⏰%dm", mins)
	}
	rows = append(rows, mutedStyle.Render("    "+truncate(detail, width-4)))
	return rows
}
