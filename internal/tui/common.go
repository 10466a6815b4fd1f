package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/agenda/internal/model"
	"github.com/sadopc/agenda/internal/toast"
)

// viewState represents the currently active view.
type viewState int

const (
	viewCalendar viewState = iota
	viewAssist
	viewSearch
	viewOverview
	viewSettings
)

var viewNames = []string{"Calendar", "Assist", "Search", "Overview", "Settings"}

// Backend is the subset of the API client the views call.
type Backend interface {
	Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) error
	VerifyEmail(ctx context.Context, req model.VerifyEmailRequest) error
	ListEventsByUser(ctx context.Context, userID int64) ([]model.Event, error)
	CreateEvent(ctx context.Context, p model.EventPayload) (model.Event, error)
	UpdateEvent(ctx context.Context, id int64, p model.EventPayload) (model.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	ParseText(ctx context.Context, text string) (model.ParseResult, error)
}

// --- Messages ---

// apiResult is implemented by every message that carries the outcome of a
// backend call, so the shell can catch an expired session in one place.
type apiResult interface {
	apiErr() error
}

type toastMsg struct {
	kind    toast.Kind
	text    string
	persist bool
}

type toastExpireMsg struct {
	id string
}

type eventsLoadedMsg struct {
	gen    uint64
	events []model.Event
	err    error
}

func (m eventsLoadedMsg) apiErr() error { return m.err }

type formOrigin int

const (
	originCalendar formOrigin = iota
	originAssist
)

type eventSavedMsg struct {
	origin  formOrigin
	formID  uint64
	event   model.Event
	created bool
	err     error
}

func (m eventSavedMsg) apiErr() error { return m.err }

type eventDeletedMsg struct {
	id  int64
	err error
}

func (m eventDeletedMsg) apiErr() error { return m.err }

type loginDoneMsg struct {
	resp model.LoginResponse
	err  error
}

func (m loginDoneMsg) apiErr() error { return m.err }

type registerDoneMsg struct {
	email string
	err   error
}

func (m registerDoneMsg) apiErr() error { return m.err }

type verifyDoneMsg struct {
	err error
}

func (m verifyDoneMsg) apiErr() error { return m.err }

type parsedMsg struct {
	seq uint64
	res model.ParseResult
	err error
}

func (m parsedMsg) apiErr() error { return m.err }

// selectDateMsg and openDayMsg are raised by the month grid; the calendar
// page owns the selection and the overlay.
type selectDateMsg struct {
	key string
}

type openDayMsg struct {
	key string
}

type jumpToDateMsg struct {
	key     string
	eventID int64
}

// Tick messages carry the sign-in epoch that scheduled them; ticks from an
// earlier session are dropped so chains never double up.
type refreshTickMsg struct {
	epoch uint64
}

type reminderTickMsg struct {
	epoch uint64
}

type logoutMsg struct{}

type exportDoneMsg struct {
	path string
	err  error
}

// --- Helpers ---

func toastCmd(kind toast.Kind, text string) tea.Cmd {
	return func() tea.Msg {
		return toastMsg{kind: kind, text: text}
	}
}

func msgCmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
