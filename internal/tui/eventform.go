package tui

import (
	"context"
	"errors"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/agenda/internal/api"
	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/form"
	"github.com/sadopc/agenda/internal/model"
	"github.com/sadopc/agenda/internal/toast"
)

// eventFormModel is the create/edit form shared by the calendar and the
// assist preview. Submission is disabled while a save is outstanding, and a
// result whose formID no longer matches is dropped.
type eventFormModel struct {
	backend Backend
	zone    datekey.Zone
	origin  formOrigin

	active     bool
	submitting bool
	form       *huh.Form
	title      string
	inline     string
	id         uint64

	// Form values as pointers (survive value copies)
	fields  *form.EventFields
	editing *model.Event
	userID  int64
}

func newEventFormModel(b Backend, zone datekey.Zone, origin formOrigin) eventFormModel {
	return eventFormModel{backend: b, zone: zone, origin: origin, fields: &form.EventFields{}}
}

// open shows the form. editing is nil for a new event; userID is the
// session user and is ignored when editing, which keeps the original owner.
func (f eventFormModel) open(title string, fields form.EventFields, editing *model.Event, userID int64) (eventFormModel, tea.Cmd) {
	f.fields = &fields
	f.editing = editing
	f.userID = userID
	if editing != nil {
		f.userID = editing.UserID
	}
	f.title = title
	f.inline = ""
	f.submitting = false
	f.active = true
	f.id++
	f.build()
	return f, f.form.Init()
}

func (f *eventFormModel) close() {
	f.active = false
	f.submitting = false
	f.form = nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

func (f *eventFormModel) build() {
	fields := f.fields
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&fields.Name).
				Validate(required("name")),
			huh.NewInput().
				Title("Start").
				Description("YYYY-MM-DDTHH:MM").
				Placeholder(datekey.FormLayout).
				Value(&fields.Start).
				Validate(required("start time")),
			huh.NewInput().
				Title("Location").
				Value(&fields.Location),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("End").
				Description("optional, YYYY-MM-DDTHH:MM").
				Value(&fields.End),
			huh.NewInput().
				Title("Reminder").
				Description("minutes before the start, optional").
				Value(&fields.Reminder),
		).WithHideFunc(func() bool { return !fields.DependentsEnabled() }),
	).WithShowHelp(true).WithShowErrors(true)
}

func (f eventFormModel) update(msg tea.Msg) (eventFormModel, tea.Cmd) {
	if !f.active {
		return f, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		f.close()
		return f, nil
	}
	if f.submitting {
		return f, nil
	}

	hadDependents := f.fields.End != "" || f.fields.Reminder != ""
	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if strings.TrimSpace(f.fields.Start) == "" && hadDependents {
		// The dependent inputs hold their own copy of the text, so the form
		// is rebuilt to show them empty.
		f.fields.ClearDependents()
		f.build()
		return f, tea.Batch(f.form.Init(), f.form.NextField())
	}

	switch f.form.State {
	case huh.StateCompleted:
		return f.submit()
	case huh.StateAborted:
		f.close()
		return f, nil
	}
	return f, cmd
}

func (f eventFormModel) submit() (eventFormModel, tea.Cmd) {
	payload, err := f.fields.Payload(f.zone, f.userID)
	if err != nil {
		f.inline = validationText(err)
		f.build()
		return f, tea.Batch(f.form.Init(), toastCmd(toast.Error, f.inline))
	}

	f.submitting = true
	f.inline = ""
	return f, f.save(payload)
}

func (f eventFormModel) save(p model.EventPayload) tea.Cmd {
	backend, origin, id := f.backend, f.origin, f.id
	editing := f.editing
	return func() tea.Msg {
		ctx := context.Background()
		if editing != nil {
			ev, err := backend.UpdateEvent(ctx, editing.ID, p)
			return eventSavedMsg{origin: origin, formID: id, event: ev, err: err}
		}
		ev, err := backend.CreateEvent(ctx, p)
		return eventSavedMsg{origin: origin, formID: id, event: ev, created: true, err: err}
	}
}

// saved applies a save result. Results for a closed or reopened form are
// ignored.
func (f eventFormModel) saved(msg eventSavedMsg) (eventFormModel, tea.Cmd) {
	if !f.active || msg.formID != f.id {
		return f, nil
	}
	if msg.err != nil {
		f.submitting = false
		f.inline = api.UserMessage(msg.err, "Could not save the event. Please try again.")
		f.build()
		return f, tea.Batch(f.form.Init(), toastCmd(toast.Error, f.inline))
	}
	f.close()
	text := "Event updated"
	if msg.created {
		text = "Event created"
	}
	return f, toastCmd(toast.Success, text+": "+msg.event.Name)
}

func validationText(err error) string {
	if errors.Is(err, form.ErrEndBeforeStart) {
		return "End time must not be before the start time."
	}
	return sentence(err.Error())
}

// sentence upper-cases the first letter of s and ends it with a period.
func sentence(s string) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) == 0 {
		return ""
	}
	r[0] = unicode.ToUpper(r[0])
	out := string(r)
	if !strings.HasSuffix(out, ".") {
		out += "."
	}
	return out
}

func (f eventFormModel) view(width int, spin string) string {
	if !f.active {
		return ""
	}
	var body string
	if f.submitting {
		body = spin + " Saving…"
	} else if f.form != nil {
		body = f.form.View()
	}
	rows := []string{titleStyle.Render(f.title), ""}
	if f.inline != "" {
		rows = append(rows, errorStyle.Render(f.inline), "")
	}
	rows = append(rows, body, "", mutedStyle.Render("esc: cancel"))
	return activePanelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
