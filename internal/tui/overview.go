package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/agenda/internal/calendar"
	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/model"
)

type overviewMode int

const (
	overviewRolling overviewMode = iota
	overviewWeek
)

const overviewDays = 7

// overviewModel charts how many events fall on each day of a 7-day window.
type overviewModel struct {
	zone   datekey.Zone
	now    func() time.Time
	width  int
	height int

	mode   overviewMode
	offset int // windows away from the current one

	events  []model.Event
	buckets calendar.Buckets
	chart   barchart.Model
}

func newOverviewModel(zone datekey.Zone, now func() time.Time) overviewModel {
	return overviewModel{
		zone:  zone,
		now:   now,
		chart: barchart.New(60, 12),
	}
}

func (o *overviewModel) setSize(w, h int) {
	o.width = w
	o.height = h
	o.buildChart()
}

func (o *overviewModel) setEvents(events []model.Event) {
	o.events = events
	o.buckets = calendar.Bucket(events, o.zone)
	o.buildChart()
}

func (o *overviewModel) reset() {
	o.offset = 0
	o.setEvents(nil)
}

// days returns the date keys of the displayed window.
func (o overviewModel) days() []string {
	today := o.zone.Today(o.now())
	first := datekey.AddDays(today, overviewDays*o.offset)
	if o.mode == overviewWeek {
		if t, err := datekey.ParseKey(first); err == nil {
			first = datekey.AddDays(first, -int(t.Weekday()))
		}
	}
	keys := make([]string, overviewDays)
	for i := range keys {
		keys[i] = datekey.AddDays(first, i)
	}
	return keys
}

func (o overviewModel) update(msg tea.Msg) (overviewModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return o, nil
	}
	switch {
	case key.Matches(km, keys.Left):
		o.offset--
	case key.Matches(km, keys.Right):
		o.offset++
	case key.Matches(km, keys.Today):
		o.offset = 0
	case key.Matches(km, keys.Mode):
		if o.mode == overviewRolling {
			o.mode = overviewWeek
		} else {
			o.mode = overviewRolling
		}
		o.offset = 0
	default:
		return o, nil
	}
	o.buildChart()
	return o, nil
}

func (o *overviewModel) buildChart() {
	chartWidth := o.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if o.height > 30 {
		chartHeight = 16
	}

	o.chart = barchart.New(chartWidth, chartHeight)

	now := o.now()
	upcoming := lipgloss.NewStyle().Foreground(colorPrimary)
	past := lipgloss.NewStyle().Foreground(colorSubtle)

	var bars []barchart.BarData
	for _, k := range o.days() {
		var done, ahead float64
		for _, e := range o.buckets.Day(k) {
			if calendar.IsPast(e.Event, o.zone, now) {
				done++
			} else {
				ahead++
			}
		}
		label := k
		if t, err := datekey.ParseKey(k); err == nil {
			label = t.Format("Mon 02")
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{
				{Name: "Past", Value: done, Style: past},
				{Name: "Upcoming", Value: ahead, Style: upcoming},
			},
		})
	}

	o.chart.PushAll(bars)
	o.chart.Draw()
}

func (o overviewModel) view() string {
	w := o.width - 4

	rollingTab := inactiveTabStyle.Render("7 days")
	weekTab := inactiveTabStyle.Render("Week")
	if o.mode == overviewRolling {
		rollingTab = activeTabStyle.Render("7 days")
	} else {
		weekTab = activeTabStyle.Render("Week")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, rollingTab, weekTab)

	days := o.days()
	dateLabel := mutedStyle.Render(datekey.DisplayDate(days[0]) + " to " + datekey.DisplayDate(days[len(days)-1]))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Overview"), "  ", modeTabs, "  ", dateLabel,
	)

	legend := "  " + lipgloss.NewStyle().Foreground(colorPrimary).Render("●") + " upcoming  " +
		lipgloss.NewStyle().Foreground(colorSubtle).Render("●") + " past"

	nav := mutedStyle.Render("  ←/→: move window  t: back to today  m: switch mode")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", o.chart.View(), "", legend, "", o.renderSummaryTable(w), "", nav,
		),
	)
}

func (o overviewModel) renderSummaryTable(w int) string {
	days := o.days()
	total := 0
	for _, k := range days {
		total += len(o.buckets.Day(k))
	}
	if total == 0 {
		return mutedStyle.Render("  Nothing scheduled in this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-16s %7s %10s  %s", "Date", "Events", "Scheduled", "First")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 60))))

	for _, k := range days {
		entries := o.buckets.Day(k)
		if len(entries) == 0 {
			continue
		}
		first := entries[0]
		firstText := o.zone.DisplayTime(first.Start) + " " + first.Event.Name
		if !first.SegmentStart {
			firstText = "↳ " + first.Event.Name
		}
		rows = append(rows, fmt.Sprintf("  %-16s %7d %10s  %s",
			datekey.DisplayDate(k), len(entries), formatMinutes(scheduled(entries, k, o.zone)), truncate(firstText, max(10, w-44)),
		))
	}
	rows = append(rows, "", fmt.Sprintf("  %s in this period", plural(total, "event")))
	return strings.Join(rows, "\n")
}

// scheduled sums the time events occupy on day k, clipped to that day.
// Events without an end contribute nothing.
func scheduled(entries []calendar.Entry, k string, zone datekey.Zone) time.Duration {
	dayStart, err := time.ParseInLocation(datekey.KeyLayout, k, zone.Location())
	if err != nil {
		return 0
	}
	dayEnd := dayStart.AddDate(0, 0, 1)

	var total time.Duration
	for _, e := range entries {
		end, err := zone.Parse(e.Event.End())
		if err != nil || !end.After(e.Start) {
			continue
		}
		from, to := e.Start, end
		if from.Before(dayStart) {
			from = dayStart
		}
		if to.After(dayEnd) {
			to = dayEnd
		}
		if to.After(from) {
			total += to.Sub(from)
		}
	}
	return total
}

func formatMinutes(d time.Duration) string {
	m := int(d.Minutes())
	if m == 0 {
		return "-"
	}
	return fmt.Sprintf("%dh %02dm", m/60, m%60)
}
