package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/agenda/internal/api"
	"github.com/sadopc/agenda/internal/calendar"
	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/model"
	"github.com/sadopc/agenda/internal/search"
)

type searchDebounceMsg struct {
	seq uint64
}

type searchResultMsg struct {
	seq    uint64
	events []model.Event
	err    error
}

func (m searchResultMsg) apiErr() error { return m.err }

// searchModel is search-as-you-type. Every keystroke starts a new
// generation; only the latest generation's debounce tick fetches, and only
// its result is shown.
type searchModel struct {
	backend    Backend
	zone       datekey.Zone
	now        func() time.Time
	userID     func() int64
	debounce   time.Duration
	maxResults int
	width      int
	height     int

	input   textinput.Model
	seq     search.Sequencer
	loading bool
	query   string
	results []model.Event
	cursor  int
	inline  string
}

func newSearchModel(b Backend, zone datekey.Zone, now func() time.Time, userID func() int64, debounce time.Duration, maxResults int) searchModel {
	ti := textinput.New()
	ti.Placeholder = "Search by name or location"
	ti.CharLimit = 100
	ti.Prompt = "/ "
	if debounce <= 0 {
		debounce = search.DefaultDelay
	}
	return searchModel{
		backend:    b,
		zone:       zone,
		now:        now,
		userID:     userID,
		debounce:   debounce,
		maxResults: maxResults,
		input:      ti,
	}
}

func (s *searchModel) setSize(w, h int) {
	s.width = w
	s.height = h
	s.input.Width = max(10, w-14)
}

func (s searchModel) capturing() bool {
	return s.input.Focused()
}

func (s searchModel) focus() (searchModel, tea.Cmd) {
	return s, s.input.Focus()
}

// leave drops any outstanding query when the view is hidden.
func (s searchModel) leave() searchModel {
	s.seq.Cancel()
	s.loading = false
	s.input.Blur()
	return s
}

func (s searchModel) reset() searchModel {
	s = s.leave()
	s.input.Reset()
	s.query = ""
	s.results = nil
	s.cursor = 0
	s.inline = ""
	return s
}

func (s searchModel) update(msg tea.Msg) (searchModel, tea.Cmd) {
	switch msg := msg.(type) {
	case searchDebounceMsg:
		if !s.seq.Current(msg.seq) {
			return s, nil
		}
		return s, s.fetch(msg.seq)

	case searchResultMsg:
		if !s.seq.Current(msg.seq) {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			s.inline = api.UserMessage(msg.err, "Search failed. Please try again.")
			return s, nil
		}
		s.inline = ""
		s.results = search.Filter(msg.events, s.zone, s.query, s.maxResults)
		s.cursor = 0
		return s, nil

	case tea.KeyMsg:
		return s.updateKeys(msg)
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s searchModel) updateKeys(msg tea.KeyMsg) (searchModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if s.cursor > 0 {
			s.cursor--
		}
		return s, nil
	case tea.KeyDown:
		if s.cursor < len(s.results)-1 {
			s.cursor++
		}
		return s, nil
	}

	switch {
	case key.Matches(msg, keys.Enter):
		if s.cursor < len(s.results) {
			ev := s.results[s.cursor]
			if k, ok := s.zone.KeyOf(ev.StartTime); ok {
				return s.leave(), msgCmd(jumpToDateMsg{key: k, eventID: ev.ID})
			}
		}
		return s, nil
	case !s.input.Focused():
		if key.Matches(msg, keys.Focus) {
			return s.focus()
		}
		return s, nil
	case key.Matches(msg, keys.Back):
		s.input.Blur()
		return s, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if q := s.input.Value(); q != s.query {
		return s.changed(q, cmd)
	}
	return s, cmd
}

// changed schedules a debounced fetch for the new query.
func (s searchModel) changed(q string, cmd tea.Cmd) (searchModel, tea.Cmd) {
	s.query = q
	seq := s.seq.Next()
	if strings.TrimSpace(q) == "" {
		s.loading = false
		s.results = nil
		s.inline = ""
		return s, cmd
	}
	s.loading = true
	tick := tea.Tick(s.debounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{seq: seq}
	})
	return s, tea.Batch(cmd, tick)
}

func (s searchModel) fetch(seq uint64) tea.Cmd {
	backend, id := s.backend, s.userID()
	return func() tea.Msg {
		events, err := backend.ListEventsByUser(context.Background(), id)
		return searchResultMsg{seq: seq, events: events, err: err}
	}
}

func (s searchModel) view(spin string) string {
	w := s.width - 4

	rows := []string{titleStyle.Render("Search"), "", s.input.View(), ""}

	switch {
	case s.loading:
		rows = append(rows, spin+" Searching…")
	case s.inline != "":
		rows = append(rows, errorStyle.Render(s.inline))
	case strings.TrimSpace(s.query) == "":
		rows = append(rows, mutedStyle.Render("Start typing to search your events."))
	case len(s.results) == 0:
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("No events match %q.", strings.TrimSpace(s.query))))
	default:
		now := s.now()
		for i, ev := range s.results {
			rows = append(rows, s.renderResult(ev, i == s.cursor, w-6, now)...)
		}
	}

	hint := "↑/↓: choose  enter: show on calendar  esc: stop typing"
	if !s.input.Focused() {
		hint = "/: start typing  enter: show on calendar"
	}
	rows = append(rows, "", mutedStyle.Render(hint))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (s searchModel) renderResult(ev model.Event, selected bool, width int, now time.Time) []string {
	cursor := "  "
	style := normalItemStyle
	if calendar.IsPast(ev, s.zone, now) {
		style = pastItemStyle
	}
	if selected {
		cursor = "> "
		style = selectedItemStyle
	}
	detail := s.zone.DisplayRange(ev.StartTime, ev.EndTime)
	if loc := ev.Place(); loc != "" {
		detail += " @ " + loc
	}
	return []string{
		style.Render(cursor + truncate(ev.Name, width-2)),
		mutedStyle.Render("    " + truncate(detail, width-4)),
	}
}
