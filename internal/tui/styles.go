package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/agenda/internal/toast"
)

var (
	colorPrimary   = lipgloss.Color("#7DCFFF")
	colorSecondary = lipgloss.Color("#9ECE6A")
	colorMuted     = lipgloss.Color("#737AA2")
	colorSuccess   = lipgloss.Color("#73DACA")
	colorError     = lipgloss.Color("#F7768E")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorSubtle    = lipgloss.Color("#3B4261")
	colorHighlight = lipgloss.Color("#BB9AF7")
)

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

func boxed(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(c)
}

// Shell
var (
	activeTabStyle = fg(colorPrimary).Bold(true).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)
	inactiveTabStyle = fg(colorMuted).Padding(0, 2)

	panelStyle       = boxed(colorSubtle).Padding(1, 2)
	activePanelStyle = boxed(colorPrimary).Padding(1, 2)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = fg(colorMuted).Padding(0, 1)

	titleStyle     = fg(colorFg).Bold(true)
	subtitleStyle  = fg(colorMuted)
	mutedStyle     = fg(colorMuted)
	highlightStyle = fg(colorHighlight)
	successStyle   = fg(colorSuccess)
	errorStyle     = fg(colorError)
)

// Month grid. The cursor cell is shaded; the selected date is underlined.
var (
	weekdayStyle     = fg(colorMuted).Bold(true)
	cellStyle        = fg(colorFg)
	cursorCellStyle  = fg(colorFg).Background(colorSubtle)
	dayNumberStyle   = fg(colorFg).Bold(true)
	todayStyle       = fg(colorSecondary).Bold(true)
	selectedDayStyle = fg(colorPrimary).Bold(true).Underline(true)
	barStyle         = fg(colorHighlight)
)

// Event rows. Past events stay listed but struck through.
var (
	normalItemStyle   = fg(colorFg)
	selectedItemStyle = fg(colorPrimary).Bold(true)
	pastItemStyle     = fg(colorMuted).Strikethrough(true)
)

var toastStyles = map[toast.Kind]lipgloss.Style{
	toast.Success: boxed(colorSuccess).Foreground(colorSuccess).Padding(0, 1),
	toast.Error:   boxed(colorError).Foreground(colorError).Padding(0, 1),
	toast.Info:    boxed(colorHighlight).Foreground(colorHighlight).Padding(0, 1),
}

func toastStyle(k toast.Kind) lipgloss.Style {
	if s, ok := toastStyles[k]; ok {
		return s
	}
	return toastStyles[toast.Info]
}
