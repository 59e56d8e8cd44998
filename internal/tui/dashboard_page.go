package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/brizzai/fitdash/internal/dashboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DashboardKeyMap holds key bindings for the dashboard page
type DashboardKeyMap struct {
	refresh key.Binding
	logout  key.Binding
	export  key.Binding
	quit    key.Binding
}

func newDashboardKeyMap() *DashboardKeyMap {
	return &DashboardKeyMap{
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),
		logout: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Logout"),
		),
		export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Export"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("ctrl+c/q", "Quit"),
		),
	}
}

// SnapshotMsg carries a rendered poll result
type SnapshotMsg struct {
	Snapshot dashboard.Snapshot
}

// RefreshMsg asks for an immediate poll
type RefreshMsg struct{}

// LogoutMsg asks to clear the session
type LogoutMsg struct{}

// OpenExportMsg opens the export view for the current dashboard
type OpenExportMsg struct {
	Snapshot dashboard.Snapshot
}

// DashboardPageModel renders the latest snapshot
type DashboardPageModel struct {
	keys     *DashboardKeyMap
	snapshot *dashboard.Snapshot
	fetching bool
	spinner  spinner.Model
	progress progress.Model
	interval time.Duration
	width    int
	height   int
}

// NewDashboardPageModel creates a dashboard page waiting for its first snapshot
func NewDashboardPageModel(interval time.Duration) DashboardPageModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return DashboardPageModel{
		keys:     newDashboardKeyMap(),
		fetching: true,
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(20)),
		interval: interval,
	}
}

// Init starts the spinner
func (m DashboardPageModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages for the dashboard page
func (m DashboardPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.refresh):
			m.fetching = true
			return m, tea.Batch(m.spinner.Tick, func() tea.Msg { return RefreshMsg{} })
		case key.Matches(msg, m.keys.logout):
			return m, func() tea.Msg { return LogoutMsg{} }
		case key.Matches(msg, m.keys.export):
			if m.snapshot == nil || m.snapshot.Dashboard == nil {
				return m, nil
			}
			snap := *m.snapshot
			return m, func() tea.Msg { return OpenExportMsg{Snapshot: snap} }
		}

	case SnapshotMsg:
		m.snapshot = &msg.Snapshot
		m.fetching = false
		return m, nil

	case spinner.TickMsg:
		if !m.fetching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View renders the dashboard page
func (m DashboardPageModel) View() string {
	title := titleStyle.Render("Fitbit Dashboard")
	help := helpStyle.Render("r refresh • l logout • e export • q quit")

	if m.snapshot == nil {
		return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", m.spinner.View()+" Fetching data...", "", help,
		))
	}

	parts := []string{title, ""}
	if m.snapshot.Error != "" {
		parts = append(parts, statusMessageStyle(m.snapshot.Error), "")
	}
	if d := m.snapshot.Dashboard; d != nil {
		parts = append(parts, m.renderDashboard(d)...)
	}

	status := fmt.Sprintf("Last updated %s. Refreshing every %s.", m.snapshot.FetchedAt.Format("15:04:05"), m.interval)
	if m.fetching {
		status = m.spinner.View() + " Fetching data..."
	}
	parts = append(parts, helpStyle.Render(status), help)

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m DashboardPageModel) renderDashboard(d *dashboard.Dashboard) []string {
	header := "Today's Activity Summary"
	if d.Date != "" {
		header += " (" + d.Date + ")"
	}

	steps := widget(d.Steps)
	if d.Steps.Progress != nil {
		steps = widgetStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			labelStyle.Render(d.Steps.Label),
			valueStyle.Render(d.Steps.Value),
			m.progress.ViewAs(*d.Steps.Progress),
		))
	}

	out := []string{
		sectionHeaderStyle.Render(header),
		m.row(steps, widget(d.CaloriesOut), widget(d.ActivityCalories), widget(d.CaloriesBMR), widget(d.Distance)),
		sectionHeaderStyle.Render("Active Minutes Breakdown"),
		m.row(widgets(d.ActiveMinutes)...),
		"",
		sectionHeaderStyle.Render("Heart Rate & Active Zones"),
		m.row(widget(d.RestingHeartRate), widget(d.CurrentHeartRate)),
		sectionHeaderStyle.Render("Active Zone Minutes"),
	}

	if d.ActiveZoneNote != "" {
		out = append(out, noteStyle.Render(d.ActiveZoneNote))
	} else {
		out = append(out, m.row(widgets(d.ActiveZoneMinutes)...))
	}

	out = append(out, sectionHeaderStyle.Render("Heart Rate Zones"))
	if d.HeartRateZonesNote != "" {
		out = append(out, noteStyle.Render(d.HeartRateZonesNote))
	} else {
		zones := make([]string, 0, len(d.HeartRateZones))
		for _, z := range d.HeartRateZones {
			zones = append(zones, widget(dashboard.Metric{Label: z.Name, Value: z.Minutes}))
		}
		out = append(out, m.row(zones...))
	}

	out = append(out, sectionHeaderStyle.Render("Heart Rate Trend"))
	if d.TrendNote != "" {
		out = append(out, noteStyle.Render(d.TrendNote))
	} else {
		out = append(out, sparkStyle.Render(sparkline(d.TrendValues(), max(m.width-8, 20))))
	}

	out = append(out, "", sectionHeaderStyle.Render("Activities Log"))
	if d.ActivitiesNote != "" {
		out = append(out, noteStyle.Render(d.ActivitiesNote))
	} else {
		for _, a := range d.Activities {
			out = append(out, fmt.Sprintf("%s  %s  %s",
				valueStyle.Render(a.Name),
				labelStyle.Render("Duration: "+a.Duration),
				labelStyle.Render("Calories: "+a.Calories),
			))
		}
	}
	return append(out, "")
}

// row lays widgets out horizontally, wrapping to the terminal width
func (m DashboardPageModel) row(items ...string) string {
	if len(items) == 0 {
		return ""
	}
	perRow := len(items)
	if m.width > 0 {
		perRow = max(1, (m.width-4)/(lipgloss.Width(items[0])+1))
	}

	var rows []string
	for start := 0; start < len(items); start += perRow {
		end := min(start+perRow, len(items))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, items[start:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func widget(metric dashboard.Metric) string {
	return widgetStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render(metric.Label),
		valueStyle.Render(metric.Value),
	))
}

func widgets(metrics []dashboard.Metric) []string {
	out := make([]string, 0, len(metrics))
	for _, metric := range metrics {
		out = append(out, widget(metric))
	}
	return out
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// sparkline draws the last width values with block characters
func sparkline(values []int, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	var sb strings.Builder
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = (v - lo) * (len(sparkBlocks) - 1) / (hi - lo)
		}
		sb.WriteRune(sparkBlocks[idx])
	}
	return sb.String()
}
