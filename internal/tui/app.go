package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sadopc/agenda/internal/api"
	"github.com/sadopc/agenda/internal/config"
	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/export"
	"github.com/sadopc/agenda/internal/model"
	"github.com/sadopc/agenda/internal/reminder"
	"github.com/sadopc/agenda/internal/session"
	"github.com/sadopc/agenda/internal/store"
	"github.com/sadopc/agenda/internal/toast"
)

const (
	reminderInterval = 30 * time.Second
	reminderKeep     = 30 * 24 * time.Hour
	maxToasts        = 3
)

// Deps is everything the shell needs from main.
type Deps struct {
	Config     *config.Config
	ConfigPath string
	Store      *store.Store
	Session    *session.Session
	Backend    Backend
	Zone       datekey.Zone
	Log        *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// ExportDir defaults to the home directory.
	ExportDir string
}

// App is the root Bubble Tea model. While the session is anonymous it shows
// the sign-in screen; otherwise the tabbed views.
type App struct {
	cfg       *config.Config
	store     *store.Store
	session   *session.Session
	backend   Backend
	zone      datekey.Zone
	log       *zap.Logger
	now       func() time.Time
	exportDir string

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	logout        confirmModel

	auth     authModel
	calendar calendarModel
	assist   assistModel
	search   searchModel
	overview overviewModel
	settings settingsModel

	toasts  *toast.Queue
	spinner spinner.Model
	help    help.Model

	signedIn bool
	events   []model.Event
	loading  bool
	fetchSeq uint64
	epoch    uint64
	synced   time.Time
	fired    reminder.Set
}

func NewApp(d Deps) App {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Config == nil {
		d.Config = config.DefaultConfig()
	}
	if d.ExportDir == "" {
		d.ExportDir, _ = os.UserHomeDir()
	}

	h := help.New()
	h.ShowAll = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	userID := d.Session.UserID
	cfg := d.Config
	return App{
		cfg:        cfg,
		store:      d.Store,
		session:    d.Session,
		backend:    d.Backend,
		zone:       d.Zone,
		log:        d.Log,
		now:        d.Now,
		exportDir:  d.ExportDir,
		activeView: viewCalendar,
		auth:       newAuthModel(d.Backend),
		calendar:   newCalendarModel(d.Backend, d.Zone, d.Now, userID, cfg.NarrowWidth),
		assist:     newAssistModel(d.Backend, d.Zone, userID),
		search:     newSearchModel(d.Backend, d.Zone, d.Now, userID, cfg.SearchDebounce, cfg.SearchMaxResults),
		overview:   newOverviewModel(d.Zone, d.Now),
		settings:   newSettingsModel(cfg, d.ConfigPath),
		toasts:     toast.NewQueue(cfg.ToastDuration),
		spinner:    sp,
		help:       h,
		fired:      reminder.Set{},
	}
}

// resumeMsg starts the shell for a session restored from the store.
type resumeMsg struct{}

func (a App) Init() tea.Cmd {
	if !a.session.Authenticated() {
		return tea.Batch(a.spinner.Tick, a.auth.init())
	}
	return tea.Batch(a.spinner.Tick, msgCmd(resumeMsg{}))
}

// --- Session lifecycle ---

// begin starts the shell for the session user: loads events and arms the
// refresh and reminder ticks.
func (a *App) begin() tea.Cmd {
	a.signedIn = true
	a.epoch++
	a.loadFired()
	u, _ := a.session.User()
	a.log.Info("signed in", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	return tea.Batch(a.fetchEvents(), a.nextRefresh(), a.nextReminderCheck())
}

// end drops everything tied to the user and shows the sign-in screen. The
// session itself has already been ended by the caller.
func (a *App) end(reason string, kind toast.Kind, persist bool) tea.Cmd {
	a.signedIn = false
	a.epoch++
	a.fetchSeq++
	a.loading = false
	a.events = nil
	a.fired = reminder.Set{}
	a.activeView = viewCalendar
	a.exportPicking = false
	a.logout = confirmModel{}
	a.calendar.reset()
	a.assist = a.assist.reset()
	a.search = a.search.reset()
	a.overview.reset()
	a.auth = a.auth.reset()
	a.log.Info("signed out", zap.String("reason", reason))
	return tea.Batch(a.auth.init(), func() tea.Msg {
		return toastMsg{kind: kind, text: reason, persist: persist}
	})
}

func (a *App) expire() tea.Cmd {
	return a.end("Your session has expired. Please log in again.", toast.Error, true)
}

func (a App) loggedOut() (App, tea.Cmd) {
	if err := a.session.End(); err != nil {
		a.log.Error("end session", zap.Error(err))
	}
	cmd := a.end("Logged out", toast.Info, false)
	return a, cmd
}

// --- Data ---

func (a *App) fetchEvents() tea.Cmd {
	a.fetchSeq++
	a.loading = true
	seq, backend, id := a.fetchSeq, a.backend, a.session.UserID()
	return func() tea.Msg {
		events, err := backend.ListEventsByUser(context.Background(), id)
		return eventsLoadedMsg{gen: seq, events: events, err: err}
	}
}

func (a *App) setEvents(events []model.Event) {
	a.events = events
	a.calendar.setEvents(events)
	a.overview.setEvents(events)
}

// nextRefresh schedules the next periodic refetch from the configured cron
// expression. A schedule edited in settings applies from the following tick.
func (a App) nextRefresh() tea.Cmd {
	sched, err := cron.ParseStandard(a.cfg.Refresh)
	if err != nil {
		a.log.Warn("invalid refresh schedule", zap.String("refresh", a.cfg.Refresh), zap.Error(err))
		return nil
	}
	now := a.now()
	epoch := a.epoch
	return tea.Tick(sched.Next(now).Sub(now), func(time.Time) tea.Msg {
		return refreshTickMsg{epoch: epoch}
	})
}

func (a App) nextReminderCheck() tea.Cmd {
	epoch := a.epoch
	return tea.Tick(reminderInterval, func(time.Time) tea.Msg {
		return reminderTickMsg{epoch: epoch}
	})
}

func (a *App) loadFired() {
	a.fired = reminder.Set{}
	if a.store == nil {
		return
	}
	if n, err := a.store.PruneReminders(a.now().Add(-reminderKeep)); err != nil {
		a.log.Warn("prune reminders", zap.Error(err))
	} else if n > 0 {
		a.log.Debug("pruned reminders", zap.Int64("count", n))
	}
	list, err := a.store.FiredReminders()
	if err != nil {
		a.log.Warn("load fired reminders", zap.Error(err))
		return
	}
	for _, r := range list {
		a.fired[reminder.Key{EventID: r.EventID, StartTime: r.StartTime}] = true
	}
}

// checkReminders raises a toast for every reminder that has come due and
// records it so it is not shown again.
func (a *App) checkReminders() tea.Cmd {
	if !a.cfg.Reminders || len(a.events) == 0 {
		return nil
	}
	now := a.now()
	var cmds []tea.Cmd
	for _, r := range reminder.Due(a.events, a.zone, now, a.fired) {
		k := reminder.KeyOf(r.Event)
		a.fired[k] = true
		if a.store != nil {
			if err := a.store.MarkReminderFired(k.EventID, k.StartTime, now); err != nil {
				a.log.Warn("mark reminder", zap.Int64("event_id", k.EventID), zap.Error(err))
			}
		}
		cmds = append(cmds, toastCmd(toast.Info, "⏰ "+r.Text(a.zone, now)))
	}
	return tea.Batch(cmds...)
}

func (a *App) applyConfig(c *config.Config) {
	a.cfg = c
	a.calendar.narrowWidth = c.NarrowWidth
	a.calendar.setSize(a.calendar.width, a.calendar.height)
	a.search.debounce = c.SearchDebounce
	a.search.maxResults = c.SearchMaxResults
}

// --- Update ---

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The client has already ended the session when it reports expiry.
	if r, ok := msg.(apiResult); ok && a.signedIn && errors.Is(r.apiErr(), api.ErrSessionExpired) {
		a.log.Warn("session expired")
		return a, a.expire()
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.auth.setSize(a.width, contentHeight)
		a.calendar.setSize(a.width, contentHeight)
		a.assist.setSize(a.width, contentHeight)
		a.search.setSize(a.width, contentHeight)
		a.overview.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case toastMsg:
		t := a.toasts.Push(msg.kind, msg.text, toast.Options{Duration: a.cfg.ToastDuration, Persist: msg.persist})
		if t.Persist {
			return a, nil
		}
		return a, tea.Tick(t.Duration, func(time.Time) tea.Msg {
			return toastExpireMsg{id: t.ID}
		})

	case toastExpireMsg:
		a.toasts.Dismiss(msg.id)
		return a, nil

	case loginDoneMsg:
		if msg.err == nil {
			if err := a.session.Begin(msg.resp.User, msg.resp.Token); err != nil {
				a.log.Error("begin session", zap.Error(err))
				msg.err = err
			}
		}
		var cmd tea.Cmd
		a.auth, cmd = a.auth.update(msg)
		if msg.err != nil {
			return a, cmd
		}
		return a, tea.Batch(cmd, a.begin(), toastCmd(toast.Success, "Welcome, "+msg.resp.User.Username))

	case resumeMsg:
		if a.signedIn || !a.session.Authenticated() {
			return a, nil
		}
		return a, a.begin()

	case registerDoneMsg, verifyDoneMsg:
		var cmd tea.Cmd
		a.auth, cmd = a.auth.update(msg)
		return a, cmd

	case eventsLoadedMsg:
		if msg.gen != a.fetchSeq {
			return a, nil
		}
		a.loading = false
		if msg.err != nil {
			return a, toastCmd(toast.Error, api.UserMessage(msg.err, "Could not load events. Press r to retry."))
		}
		a.synced = a.now()
		a.setEvents(msg.events)
		return a, a.checkReminders()

	case eventSavedMsg:
		var cmd tea.Cmd
		if msg.origin == originAssist {
			a.assist, cmd = a.assist.update(msg)
		} else {
			a.calendar, cmd = a.calendar.update(msg)
		}
		// A save that lands after sign-out must not refetch without a token.
		if msg.err == nil && a.authed() {
			return a, tea.Batch(cmd, a.fetchEvents())
		}
		return a, cmd

	case eventDeletedMsg:
		var cmd tea.Cmd
		a.calendar, cmd = a.calendar.update(msg)
		if msg.err == nil && a.authed() {
			return a, tea.Batch(cmd, a.fetchEvents())
		}
		return a, cmd

	case parsedMsg:
		var cmd tea.Cmd
		a.assist, cmd = a.assist.update(msg)
		return a, cmd

	case searchDebounceMsg, searchResultMsg:
		var cmd tea.Cmd
		a.search, cmd = a.search.update(msg)
		return a, cmd

	case jumpToDateMsg:
		a.activeView = viewCalendar
		a.calendar = a.calendar.jumpTo(msg.key, msg.eventID)
		return a, nil

	case refreshTickMsg:
		if msg.epoch != a.epoch || !a.authed() {
			return a, nil
		}
		return a, tea.Batch(a.fetchEvents(), a.nextRefresh())

	case reminderTickMsg:
		if msg.epoch != a.epoch || !a.authed() {
			return a, nil
		}
		return a, tea.Batch(a.checkReminders(), a.nextReminderCheck())

	case logoutMsg:
		return a.loggedOut()

	case exportDoneMsg:
		if msg.err != nil {
			return a, toastCmd(toast.Error, fmt.Sprintf("Export failed: %v", msg.err))
		}
		return a, toastCmd(toast.Success, "Exported to "+msg.path)

	case settingsSavedMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		if msg.err == nil && msg.cfg != nil {
			a.applyConfig(msg.cfg)
		}
		return a, cmd

	case tea.KeyMsg:
		return a.updateKeys(msg)
	}

	if !a.authed() {
		var cmd tea.Cmd
		a.auth, cmd = a.auth.update(msg)
		return a, cmd
	}
	if a.logout.active {
		var cmd tea.Cmd
		a.logout, cmd = a.logout.update(msg)
		return a, cmd
	}
	return a.updateActiveView(msg)
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return a, tea.Quit
	case key.Matches(msg, keys.Dismiss):
		a.toasts.DismissAll()
		return a, nil
	}

	if !a.authed() {
		var cmd tea.Cmd
		a.auth, cmd = a.auth.update(msg)
		return a, cmd
	}

	if a.logout.active {
		var cmd tea.Cmd
		a.logout, cmd = a.logout.update(msg)
		return a, cmd
	}

	// Export picker
	if a.exportPicking {
		return a.updateExportPicker(msg)
	}

	// If a child view is capturing input (e.g. form), delegate first.
	if a.isCapturing() {
		return a.updateActiveView(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Help):
		a.showHelp = !a.showHelp
		a.help.ShowAll = a.showHelp
		return a, nil
	case key.Matches(msg, keys.Export):
		a.exportPicking = true
		a.exportCursor = 0
		return a, nil
	case key.Matches(msg, keys.Refresh):
		return a, a.fetchEvents()
	case key.Matches(msg, keys.Logout):
		var cmd tea.Cmd
		a.logout, cmd = newConfirm("Log out?", "Log out", msgCmd(logoutMsg{}))
		return a, cmd
	case key.Matches(msg, keys.Tab1):
		return a.switchView(viewCalendar)
	case key.Matches(msg, keys.Tab2):
		return a.switchView(viewAssist)
	case key.Matches(msg, keys.Tab3):
		return a.switchView(viewSearch)
	case key.Matches(msg, keys.Tab4):
		return a.switchView(viewOverview)
	case key.Matches(msg, keys.Tab5):
		return a.switchView(viewSettings)
	case key.Matches(msg, keys.Tab):
		return a.switchView((a.activeView + 1) % viewState(len(viewNames)))
	case key.Matches(msg, keys.ShiftTab):
		return a.switchView((a.activeView + viewState(len(viewNames)) - 1) % viewState(len(viewNames)))
	}

	return a.updateActiveView(msg)
}

func (a App) switchView(v viewState) (App, tea.Cmd) {
	if a.activeView == viewSearch && v != viewSearch {
		a.search = a.search.leave()
	}
	a.activeView = v
	var cmd tea.Cmd
	switch v {
	case viewAssist:
		a.assist, cmd = a.assist.focus()
	case viewSearch:
		a.search, cmd = a.search.focus()
	}
	return a, cmd
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewCalendar:
		a.calendar, cmd = a.calendar.update(msg)
	case viewAssist:
		a.assist, cmd = a.assist.update(msg)
	case viewSearch:
		a.search, cmd = a.search.update(msg)
	case viewOverview:
		a.overview, cmd = a.overview.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) authed() bool {
	return a.signedIn
}

func (a App) isCapturing() bool {
	switch a.activeView {
	case viewCalendar:
		return a.calendar.formActive()
	case viewAssist:
		return a.assist.capturing()
	case viewSearch:
		return a.search.capturing()
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

// --- View ---

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	if !a.authed() {
		footer := a.renderFooter()
		toasts := a.renderToasts()
		contentHeight := max(1, a.height-lipgloss.Height(footer)-lipgloss.Height(toasts))
		a.auth.setSize(a.width, contentHeight)
		return lipgloss.JoinVertical(lipgloss.Left, a.auth.view(a.spinner.View()), toasts, footer)
	}

	header := a.renderHeader()
	footer := a.renderFooter()
	toasts := a.renderToasts()

	spin := a.spinner.View()
	var content string
	switch a.activeView {
	case viewCalendar:
		content = a.calendar.view(spin)
	case viewAssist:
		content = a.assist.view(spin)
	case viewSearch:
		content = a.search.view(spin)
	case viewOverview:
		content = a.overview.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer) + lipgloss.Height(toasts)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.logout.active {
		content = a.logout.view(a.width - 4)
	}
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, toasts, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("agenda")
	user := ""
	if u, ok := a.session.User(); ok {
		user = mutedStyle.Render(u.Username)
	}
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - lipgloss.Width(user) - 6
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow, "  ", user),
	)
}

func (a App) renderFooter() string {
	var helpView string
	if a.authed() {
		helpView = a.help.View(keys)
	} else {
		helpView = a.help.View(authKeyMap{})
	}

	status := ""
	switch {
	case a.loading:
		status = a.spinner.View() + mutedStyle.Render(" Syncing…")
	case !a.synced.IsZero() && a.authed():
		status = successStyle.Render(" ● ") + mutedStyle.Render("Synced "+a.zone.DisplayTime(a.synced))
	}

	left := footerStyle.Render(helpView)
	right := status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

// renderToasts stacks the newest toasts, right-aligned.
func (a App) renderToasts() string {
	items := a.toasts.Items()
	if len(items) == 0 {
		return ""
	}
	if len(items) > maxToasts {
		items = items[:maxToasts]
	}
	width := min(60, max(20, a.width-4))
	var rows []string
	for _, t := range items {
		rows = append(rows, toastStyle(t.Kind).Width(width).Render(t.Text))
	}
	if n := a.toasts.Len() - len(items); n > 0 {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("+%d more  ctrl+d: dismiss all", n)))
	}
	return lipgloss.PlaceHorizontal(a.width, lipgloss.Right, lipgloss.JoinVertical(lipgloss.Right, rows...))
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("%s to %s", plural(len(a.events), "event"), a.exportDir)))
	rows = append(rows, "")
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f.String()))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(f export.Format) tea.Cmd {
	if len(a.events) == 0 {
		return toastCmd(toast.Info, "Nothing to export yet")
	}
	events := append([]model.Event(nil), a.events...)
	zone, dir, now, log := a.zone, a.exportDir, a.now(), a.log
	return func() tea.Msg {
		path := export.Filename(dir, f, now)
		if err := export.Write(f, events, zone, path); err != nil {
			log.Error("export", zap.String("format", f.String()), zap.Error(err))
			return exportDoneMsg{err: err}
		}
		log.Info("export", zap.String("format", f.String()), zap.String("path", path), zap.Int("events", len(events)))
		return exportDoneMsg{path: path}
	}
}
