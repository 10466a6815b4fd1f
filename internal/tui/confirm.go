package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// confirmModel gates a destructive action behind a yes/no prompt. onYes is
// dispatched only when the user affirms.
type confirmModel struct {
	active bool
	form   *huh.Form
	value  *bool
	onYes  tea.Cmd
}

func newConfirm(title, affirmative string, onYes tea.Cmd) (confirmModel, tea.Cmd) {
	v := false
	c := confirmModel{active: true, value: &v, onYes: onYes}
	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative(affirmative).
				Negative("Cancel").
				Value(c.value),
		),
	).WithShowHelp(false)
	return c, c.form.Init()
}

func (c confirmModel) update(msg tea.Msg) (confirmModel, tea.Cmd) {
	if !c.active || c.form == nil {
		return c, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		c.active = false
		c.form = nil
		return c, nil
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	switch c.form.State {
	case huh.StateCompleted:
		c.active = false
		if *c.value {
			return c, c.onYes
		}
		return c, nil
	case huh.StateAborted:
		c.active = false
		return c, nil
	}
	return c, cmd
}

func (c confirmModel) view(width int) string {
	if !c.active || c.form == nil {
		return ""
	}
	return activePanelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, c.form.View(), "", mutedStyle.Render("esc: cancel")),
	)
}
