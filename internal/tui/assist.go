package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/agenda/internal/api"
	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/nlp"
	"github.com/sadopc/agenda/internal/toast"
)

// assistModel turns a free-text sentence into an event. The text is checked
// locally, parsed by the backend, then shown as an editable form. Parsing
// and saving fail independently: a failed parse keeps the text, a failed
// save keeps the form.
type assistModel struct {
	backend Backend
	zone    datekey.Zone
	userID  func() int64
	width   int
	height  int

	input   textinput.Model
	cues    nlp.Cues
	parsing bool
	seq     uint64
	inline  string

	form eventFormModel
}

func newAssistModel(b Backend, zone datekey.Zone, userID func() int64) assistModel {
	ti := textinput.New()
	ti.Placeholder = "e.g. họp nhóm 14:30 ngày mai ở phòng 3"
	ti.CharLimit = 500
	ti.Prompt = "› "
	return assistModel{
		backend: b,
		zone:    zone,
		userID:  userID,
		input:   ti,
		form:    newEventFormModel(b, zone, originAssist),
	}
}

func (a *assistModel) setSize(w, h int) {
	a.width = w
	a.height = h
	a.input.Width = max(10, w-14)
}

// capturing reports whether keystrokes belong to the view rather than the
// shell.
func (a assistModel) capturing() bool {
	return a.input.Focused() || a.form.active
}

func (a assistModel) focus() (assistModel, tea.Cmd) {
	if a.form.active {
		return a, nil
	}
	return a, a.input.Focus()
}

func (a assistModel) reset() assistModel {
	a.input.Reset()
	a.input.Blur()
	a.cues = nlp.Cues{}
	a.parsing = false
	a.seq++
	a.inline = ""
	a.form.close()
	return a
}

func (a assistModel) update(msg tea.Msg) (assistModel, tea.Cmd) {
	switch msg := msg.(type) {
	case parsedMsg:
		return a.parsed(msg)

	case eventSavedMsg:
		var cmd tea.Cmd
		wasActive := a.form.active
		a.form, cmd = a.form.saved(msg)
		if wasActive && !a.form.active {
			a.input.Reset()
			a.cues = nlp.Cues{}
		}
		return a, cmd
	}

	if a.form.active {
		var cmd tea.Cmd
		a.form, cmd = a.form.update(msg)
		return a, cmd
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}

	if !a.input.Focused() {
		if key.Matches(km, keys.Focus) || key.Matches(km, keys.Enter) {
			return a.focus()
		}
		return a, nil
	}

	switch {
	case key.Matches(km, keys.Back):
		a.input.Blur()
		return a, nil
	case key.Matches(km, keys.Enter):
		return a.submit()
	}

	if a.parsing {
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(km)
	a.cues = nlp.Scan(a.input.Value())
	return a, cmd
}

func (a assistModel) submit() (assistModel, tea.Cmd) {
	if a.parsing {
		return a, nil
	}
	text := strings.TrimSpace(a.input.Value())
	cues, err := nlp.Check(text)
	a.cues = cues
	switch {
	case errors.Is(err, nlp.ErrEmptyText):
		a.inline = "Type a sentence describing the event."
		return a, nil
	case errors.Is(err, nlp.ErrNoCues):
		a.inline = "No date or time found. Mention when the event happens, e.g. \"14:30\" or \"ngày mai\"."
		return a, toastCmd(toast.Error, a.inline)
	}

	a.parsing = true
	a.inline = ""
	a.seq++
	backend, seq := a.backend, a.seq
	return a, func() tea.Msg {
		res, err := backend.ParseText(context.Background(), text)
		return parsedMsg{seq: seq, res: res, err: err}
	}
}

func (a assistModel) parsed(msg parsedMsg) (assistModel, tea.Cmd) {
	if msg.seq != a.seq {
		return a, nil
	}
	a.parsing = false
	if msg.err != nil {
		a.inline = api.UserMessage(msg.err, "Could not understand the text. Please try again.")
		return a, toastCmd(toast.Error, a.inline)
	}

	fields, err := nlp.Preview(msg.res, a.zone)
	if err != nil {
		a.inline = "Could not find a start time. Add one, e.g. \"lúc 9h\" or \"14:30\"."
		return a, toastCmd(toast.Error, a.inline)
	}

	a.input.Blur()
	var cmd tea.Cmd
	a.form, cmd = a.form.open("Check the event before saving", fields, nil, a.userID())
	return a, cmd
}

func (a assistModel) view(spin string) string {
	w := a.width - 4

	if a.form.active {
		return a.form.view(w, spin)
	}

	rows := []string{
		titleStyle.Render("Assist"),
		subtitleStyle.Render("Describe an event in a sentence. Dates and times are read from the text."),
		"",
		a.input.View(),
		"",
	}
	if a.parsing {
		rows = append(rows, spin+" Reading…", "")
	}
	if a.inline != "" {
		rows = append(rows, errorStyle.Render(a.inline), "")
	}
	if cues := renderCues(a.cues); cues != "" {
		rows = append(rows, cues, "")
	}

	hint := "enter: read text  esc: stop typing"
	if !a.input.Focused() {
		hint = "/ or enter: start typing"
	}
	rows = append(rows, mutedStyle.Render(hint))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderCues(c nlp.Cues) string {
	groups := []struct {
		label string
		found []string
	}{
		{"time", c.ClockTime},
		{"day", c.RelativeDay},
		{"weekday", c.Weekday},
		{"part of day", c.PartOfDay},
		{"duration", c.TimeUnit},
		{"date", c.Date},
	}
	var parts []string
	for _, g := range groups {
		if len(g.found) == 0 {
			continue
		}
		parts = append(parts, mutedStyle.Render(g.label+": ")+highlightStyle.Render(strings.Join(g.found, ", ")))
	}
	if len(parts) == 0 {
		return ""
	}
	return "Found  " + strings.Join(parts, "   ")
}
