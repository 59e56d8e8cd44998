package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brizzai/fitdash/internal/dashboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"gopkg.in/yaml.v3"
)

// ExportView handles prompting for a filename and exporting the dashboard
type ExportView struct {
	snapshot     dashboard.Snapshot
	textInput    textinput.Model
	err          error
	width        int
	height       int
	exportStatus string
	Success      bool
}

// NewExportView creates a new export view
func NewExportView(snapshot dashboard.Snapshot) ExportView {
	ti := textinput.New()
	ti.Placeholder = "fitbit-" + snapshot.FetchedAt.Format("2006-01-02") + ".yaml"
	ti.Focus()
	ti.Width = 40

	return ExportView{
		snapshot:  snapshot,
		textInput: ti,
	}
}

// Init initializes the export view
func (m ExportView) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the export view
func (m ExportView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			return m, func() tea.Msg { return BackToDashboardMsg{} }
		case "enter":
			filename := strings.TrimSpace(m.textInput.Value())
			if filename == "" {
				m.exportStatus = "Please enter a filename"
				return m, nil
			}
			if !strings.HasSuffix(filename, ".yaml") && !strings.HasSuffix(filename, ".yml") {
				filename += ".yaml"
			}

			if err := ExportDashboardToYamlFile(m.snapshot, filename); err != nil {
				m.err = err
				m.exportStatus = fmt.Sprintf("Error exporting: %v", err)
				return m, nil
			}

			m.Success = true
			m.exportStatus = completeMessageStyle(fmt.Sprintf("Successfully exported to %s", filename))
			// Back to the dashboard after a second
			return m, tea.Tick(time.Second, func(time.Time) tea.Msg {
				return BackToDashboardMsg{}
			})
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// View renders the export view
func (m ExportView) View() string {
	var sb strings.Builder

	verticalPadding := (m.height - 6) / 2
	for i := 0; i < verticalPadding; i++ {
		sb.WriteString("\n")
	}

	title := titleStyle.Render("Export Dashboard")
	sb.WriteString(centerText(title, m.width))
	sb.WriteString("\n\n")

	prompt := "Enter filename to export today's metrics:"
	sb.WriteString(centerText(prompt, m.width))
	sb.WriteString("\n")

	input := m.textInput.View()
	sb.WriteString(centerText(input, m.width))
	sb.WriteString("\n\n")

	if m.exportStatus != "" {
		sb.WriteString(centerText(m.exportStatus, m.width))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(centerText("(esc) Back to dashboard | (enter) Export", m.width))

	return sb.String()
}

// BackToDashboardMsg signals to go back to the dashboard page
type BackToDashboardMsg struct{}

// dashboardExport is the YAML document written by the export view. It holds
// display values only, never credentials.
type dashboardExport struct {
	FetchedAt string               `yaml:"fetched_at"`
	Dashboard *dashboard.Dashboard `yaml:"dashboard"`
}

// ExportDashboardToYamlFile writes the metrics of a snapshot to filename
func ExportDashboardToYamlFile(snapshot dashboard.Snapshot, filename string) error {
	if snapshot.Dashboard == nil {
		return fmt.Errorf("no dashboard data to export")
	}

	yamlData, err := yaml.Marshal(dashboardExport{
		FetchedAt: snapshot.FetchedAt.Format(time.RFC3339),
		Dashboard: snapshot.Dashboard,
	})
	if err != nil {
		return err
	}

	return os.WriteFile(filename, yamlData, 0o644)
}

// Helper function to center text horizontally
func centerText(text string, width int) string {
	if width <= len(text) {
		return text
	}

	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}
