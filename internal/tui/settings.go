package tui

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/robfig/cron/v3"

	"github.com/sadopc/agenda/internal/config"
	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/toast"
)

type settingsSavedMsg struct {
	cfg *config.Config
	err error
}

// settingValues holds the form inputs as text.
type settingValues struct {
	apiURL         string
	timezone       string
	narrowWidth    string
	toastDuration  string
	searchDebounce string
	searchMax      string
	refresh        string
	reminders      bool
	logLevel       string
}

type settingsModel struct {
	cfg    *config.Config
	path   string
	width  int
	height int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	values *settingValues
}

func newSettingsModel(cfg *config.Config, path string) settingsModel {
	return settingsModel{cfg: cfg, path: path, values: &settingValues{}}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsSavedMsg:
		if msg.err != nil {
			return s, toastCmd(toast.Error, fmt.Sprintf("Could not save settings: %v", msg.err))
		}
		s.cfg = msg.cfg
		return s, toastCmd(toast.Success, "Settings saved to "+s.path)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	c := s.cfg
	*s.values = settingValues{
		apiURL:         c.APIURL,
		timezone:       c.Timezone,
		narrowWidth:    strconv.Itoa(c.NarrowWidth),
		toastDuration:  c.ToastDuration.String(),
		searchDebounce: c.SearchDebounce.String(),
		searchMax:      strconv.Itoa(c.SearchMaxResults),
		refresh:        c.Refresh,
		reminders:      c.Reminders,
		logLevel:       c.Log.Level,
	}
	v := s.values

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("API URL").Description("restart to apply").Value(&v.apiURL).Validate(validateURL),
			huh.NewInput().Title("Time zone").Description("IANA name, restart to apply").Value(&v.timezone).Validate(validateZone),
			huh.NewInput().Title("Refresh schedule").Description("cron, e.g. */5 * * * *").Value(&v.refresh).Validate(validateCron),
		).Title("Connection"),
		huh.NewGroup(
			huh.NewInput().Title("Narrow layout below (columns)").Value(&v.narrowWidth).Validate(positiveInt),
			huh.NewInput().Title("Toast duration").Description("e.g. 4s").Value(&v.toastDuration).Validate(positiveDuration),
			huh.NewInput().Title("Search delay").Description("e.g. 220ms").Value(&v.searchDebounce).Validate(positiveDuration),
			huh.NewInput().Title("Search results").Value(&v.searchMax).Validate(positiveInt),
			huh.NewConfirm().Title("Reminder notifications").Value(&v.reminders),
			huh.NewSelect[string]().Title("Log level").
				Options(
					huh.NewOption("Debug", "debug"),
					huh.NewOption("Info", "info"),
					huh.NewOption("Warn", "warn"),
					huh.NewOption("Error", "error"),
				).Value(&v.logLevel),
		).Title("Interface"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	switch s.form.State {
	case huh.StateCompleted:
		s.formActive = false
		return s, s.save()
	case huh.StateAborted:
		s.formActive = false
		s.form = nil
		return s, nil
	}
	return s, cmd
}

// save writes a copy of the configuration so the running one only changes
// once the file is on disk.
func (s settingsModel) save() tea.Cmd {
	next, err := s.values.apply(*s.cfg)
	path := s.path
	return func() tea.Msg {
		if err != nil {
			return settingsSavedMsg{err: err}
		}
		if err := next.Save(path); err != nil {
			return settingsSavedMsg{err: err}
		}
		return settingsSavedMsg{cfg: next}
	}
}

func (v settingValues) apply(c config.Config) (*config.Config, error) {
	var err error
	c.APIURL = strings.TrimSpace(v.apiURL)
	c.Timezone = strings.TrimSpace(v.timezone)
	c.Refresh = strings.TrimSpace(v.refresh)
	c.Reminders = v.reminders
	c.Log.Level = v.logLevel
	if c.NarrowWidth, err = strconv.Atoi(strings.TrimSpace(v.narrowWidth)); err != nil {
		return nil, fmt.Errorf("narrow width: %w", err)
	}
	if c.SearchMaxResults, err = strconv.Atoi(strings.TrimSpace(v.searchMax)); err != nil {
		return nil, fmt.Errorf("search results: %w", err)
	}
	if c.ToastDuration, err = time.ParseDuration(strings.TrimSpace(v.toastDuration)); err != nil {
		return nil, fmt.Errorf("toast duration: %w", err)
	}
	if c.SearchDebounce, err = time.ParseDuration(strings.TrimSpace(v.searchDebounce)); err != nil {
		return nil, fmt.Errorf("search delay: %w", err)
	}
	c.Normalize()
	return &c, nil
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("enter an http or https URL")
	}
	return nil
}

func validateZone(s string) error {
	if _, err := datekey.NewZone(strings.TrimSpace(s)); err != nil {
		return errors.New("unknown time zone")
	}
	return nil
}

func validateCron(s string) error {
	if _, err := cron.ParseStandard(strings.TrimSpace(s)); err != nil {
		return errors.New("not a valid cron expression")
	}
	return nil
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a positive whole number")
	}
	return nil
}

func positiveDuration(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return errors.New("enter a duration such as 4s or 250ms")
	}
	return nil
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView, "", mutedStyle.Render("esc: cancel")),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	c := s.cfg
	reminders := "off"
	if c.Reminders {
		reminders = "on"
	}
	settings := [][2]string{
		{"api_url", c.APIURL},
		{"timezone", c.Timezone},
		{"refresh", c.Refresh},
		{"narrow_width", strconv.Itoa(c.NarrowWidth)},
		{"toast_duration", c.ToastDuration.String()},
		{"search_debounce", c.SearchDebounce.String()},
		{"search_max_results", strconv.Itoa(c.SearchMaxResults)},
		{"reminders", reminders},
		{"log.level", c.Log.Level},
		{"log.file", c.Log.File},
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, mutedStyle.Render(s.path))
	rows = append(rows, "")

	for _, setting := range settings {
		label := lipgloss.NewStyle().Width(24).Render(setting[0])
		value := highlightStyle.Render(setting[1])
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
