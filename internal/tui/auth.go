package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/agenda/internal/api"
	"github.com/sadopc/agenda/internal/form"
	"github.com/sadopc/agenda/internal/toast"
)

type authMode int

const (
	authLogin authMode = iota
	authRegister
	authVerify
)

var authModeNames = []string{"Log in", "Register", "Verify e-mail"}

// authModel is the sign-in screen shown while the session is anonymous.
type authModel struct {
	backend Backend
	width   int
	height  int

	mode       authMode
	form       *huh.Form
	submitting bool
	inline     string

	// Form values as pointers (survive value copies)
	login    *form.LoginFields
	register *form.RegisterFields
	verify   *form.VerifyFields
}

func newAuthModel(b Backend) authModel {
	a := authModel{
		backend:  b,
		login:    &form.LoginFields{},
		register: &form.RegisterFields{},
		verify:   &form.VerifyFields{},
	}
	a.build()
	return a
}

func (a *authModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

func (a authModel) init() tea.Cmd {
	if a.form == nil {
		return nil
	}
	return a.form.Init()
}

// reset clears every credential and returns to the login form.
func (a authModel) reset() authModel {
	*a.login = form.LoginFields{}
	*a.register = form.RegisterFields{}
	*a.verify = form.VerifyFields{}
	a.mode = authLogin
	a.submitting = false
	a.inline = ""
	a.build()
	return a
}

func (a authModel) switchTo(m authMode) (authModel, tea.Cmd) {
	a.mode = m
	a.submitting = false
	a.inline = ""
	a.build()
	return a, a.form.Init()
}

func (a *authModel) build() {
	var group *huh.Group
	switch a.mode {
	case authRegister:
		f := a.register
		group = huh.NewGroup(
			huh.NewInput().Title("Username").Value(&f.Username).Validate(required("username")),
			huh.NewInput().Title("E-mail").Value(&f.Email).Validate(required("e-mail")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&f.Password).Validate(required("password")),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&f.Confirm),
		)
	case authVerify:
		f := a.verify
		group = huh.NewGroup(
			huh.NewInput().Title("E-mail").Value(&f.Email).Validate(required("e-mail")),
			huh.NewInput().Title("Verification code").Value(&f.Code).Validate(required("code")),
		)
	default:
		f := a.login
		group = huh.NewGroup(
			huh.NewInput().Title("Username").Value(&f.Username).Validate(required("username")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&f.Password).Validate(required("password")),
		)
	}
	a.form = huh.NewForm(group.Title(authModeNames[a.mode])).WithShowHelp(true).WithShowErrors(true)
}

func (a authModel) update(msg tea.Msg) (authModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		if msg.err == nil {
			return a.reset(), nil
		}
		return a.failed(msg.err, "Could not log in. Please try again.")

	case registerDoneMsg:
		if msg.err != nil {
			return a.failed(msg.err, "Could not create the account. Please try again.")
		}
		a.verify.Email = msg.email
		a.verify.Code = ""
		a.login.Username = a.register.Username
		*a.register = form.RegisterFields{}
		var cmd tea.Cmd
		a, cmd = a.switchTo(authVerify)
		return a, tea.Batch(cmd, toastCmd(toast.Success, "Account created. Enter the code sent to "+msg.email+"."))

	case verifyDoneMsg:
		if msg.err != nil {
			return a.failed(msg.err, "Could not verify the e-mail. Please try again.")
		}
		*a.verify = form.VerifyFields{}
		a.login.Password = ""
		var cmd tea.Cmd
		a, cmd = a.switchTo(authLogin)
		return a, tea.Batch(cmd, toastCmd(toast.Success, "E-mail verified. You can log in now."))

	case tea.KeyMsg:
		if a.submitting {
			return a, nil
		}
		switch {
		case key.Matches(msg, keys.Login):
			return a.switchTo(authLogin)
		case key.Matches(msg, keys.Register):
			return a.switchTo(authRegister)
		case key.Matches(msg, keys.Verify):
			return a.switchTo(authVerify)
		case key.Matches(msg, keys.Back) && a.mode != authLogin:
			return a.switchTo(authLogin)
		}
	}

	if a.submitting || a.form == nil {
		return a, nil
	}

	f, cmd := a.form.Update(msg)
	if hf, ok := f.(*huh.Form); ok {
		a.form = hf
	}
	switch a.form.State {
	case huh.StateCompleted:
		return a.submit()
	case huh.StateAborted:
		a.build()
		return a, a.form.Init()
	}
	return a, cmd
}

func (a authModel) submit() (authModel, tea.Cmd) {
	backend := a.backend
	var (
		cmd tea.Cmd
		err error
	)
	switch a.mode {
	case authRegister:
		req, verr := a.register.Request()
		err = verr
		cmd = func() tea.Msg {
			return registerDoneMsg{email: req.Email, err: backend.Register(context.Background(), req)}
		}
	case authVerify:
		req, verr := a.verify.Request()
		err = verr
		cmd = func() tea.Msg {
			return verifyDoneMsg{err: backend.VerifyEmail(context.Background(), req)}
		}
	default:
		req, verr := a.login.Request()
		err = verr
		cmd = func() tea.Msg {
			resp, err := backend.Login(context.Background(), req)
			return loginDoneMsg{resp: resp, err: err}
		}
	}

	if err != nil {
		a.inline = authValidationText(err)
		a.build()
		return a, tea.Batch(a.form.Init(), toastCmd(toast.Error, a.inline))
	}
	a.submitting = true
	a.inline = ""
	return a, cmd
}

// failed keeps the entered values and reopens the form with the error.
func (a authModel) failed(err error, fallback string) (authModel, tea.Cmd) {
	a.submitting = false
	a.inline = api.UserMessage(err, fallback)
	a.build()
	return a, tea.Batch(a.form.Init(), toastCmd(toast.Error, a.inline))
}

func authValidationText(err error) string {
	if errors.Is(err, form.ErrPasswordMismatch) {
		return "Passwords do not match."
	}
	return validationText(err)
}

func (a authModel) view(spin string) string {
	w := min(a.width-4, 72)

	var tabs []string
	for i, name := range authModeNames {
		if authMode(i) == a.mode {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	rows := []string{
		lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("agenda"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...),
		"",
	}
	if a.inline != "" {
		rows = append(rows, errorStyle.Render(a.inline), "")
	}
	if a.submitting {
		rows = append(rows, spin+" "+[]string{"Logging in…", "Creating account…", "Verifying…"}[a.mode])
	} else if a.form != nil {
		rows = append(rows, a.form.View())
	}
	rows = append(rows, "", mutedStyle.Render("ctrl+l: log in  ctrl+r: register  ctrl+e: verify e-mail"))

	panel := activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, panel)
}
