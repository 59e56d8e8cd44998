package tui

import (
	"context"
	"strings"
	"time"

	"github.com/brizzai/fitdash/internal/auth/session"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// exchangeTimeout bounds the token request started from the login page
const exchangeTimeout = 30 * time.Second

// LoginPageKeyMap holds key bindings for the login page actions
type LoginPageKeyMap struct {
	submit key.Binding
	quit   key.Binding
}

func newLoginPageKeyMap() *LoginPageKeyMap {
	return &LoginPageKeyMap{
		submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Submit URL"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("ctrl+c/esc", "Quit"),
		),
	}
}

// AuthenticatedMsg is sent once the session holds credentials
type AuthenticatedMsg struct{}

type authFailedMsg struct {
	err error
}

// LoginPageModel shows the authorize URL and reads the redirected URL
type LoginPageModel struct {
	keys       *LoginPageKeyMap
	session    *session.Session
	authURL    string
	textInput  textinput.Model
	spinner    spinner.Model
	submitting bool
	status     string
	width      int
	height     int
}

// NewLoginPageModel creates a login page and starts the authorization of sess
func NewLoginPageModel(sess *session.Session) LoginPageModel {
	ti := textinput.New()
	ti.Placeholder = "http://localhost:8501/callback?code=..."
	ti.CharLimit = 2048
	ti.Width = 60
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return LoginPageModel{
		keys:      newLoginPageKeyMap(),
		session:   sess,
		authURL:   sess.BeginAuthorization(),
		textInput: ti,
		spinner:   sp,
	}
}

// Init initializes the model
func (m LoginPageModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the login page
func (m LoginPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.submit):
			if m.submitting {
				return m, nil
			}
			redirectURL := strings.TrimSpace(m.textInput.Value())
			if redirectURL == "" {
				m.status = session.EmptyURLMessage
				return m, nil
			}
			m.submitting = true
			m.status = ""
			return m, tea.Batch(m.spinner.Tick, submitRedirect(m.session, redirectURL))
		}

	case authFailedMsg:
		m.submitting = false
		m.status = session.ErrorMessage(msg.err)
		return m, nil

	case AuthenticatedMsg:
		m.submitting = false
		m.status = ""
		m.textInput.Reset()
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = max(20, min(80, msg.Width-10))
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// View renders the login page
func (m LoginPageModel) View() string {
	width := max(m.width-4, 40)

	title := titleStyle.Render("Fitbit Dashboard")

	urlStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00b0b9")).
		Padding(0, 1).
		Width(width - 6)

	steps := lipgloss.JoinVertical(lipgloss.Left,
		sectionHeaderStyle.Render("1. Authorize Fitbit by opening this URL in a browser:"),
		urlStyle.Render(m.authURL),
		"",
		sectionHeaderStyle.Render("2. Paste redirected URL here:"),
		m.textInput.View(),
	)

	var status string
	switch {
	case m.submitting:
		status = m.spinner.View() + " Exchanging code..."
	case m.status != "":
		status = statusMessageStyle(m.status)
	}

	help := helpStyle.Render("enter submit • ctrl+c/esc quit")

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		steps,
		"",
		status,
		"",
		help,
	))
}

// submitRedirect exchanges the code of the pasted URL in the background
func submitRedirect(sess *session.Session, redirectURL string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exchangeTimeout)
		defer cancel()
		if err := sess.SubmitRedirect(ctx, redirectURL); err != nil {
			return authFailedMsg{err: err}
		}
		return AuthenticatedMsg{}
	}
}
