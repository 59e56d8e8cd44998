package tui

import (
	"context"

	"github.com/brizzai/fitdash/internal/auth/session"
	"github.com/brizzai/fitdash/internal/config"
	"github.com/brizzai/fitdash/internal/dashboard"
	"github.com/brizzai/fitdash/internal/fitbit"
	"github.com/brizzai/fitdash/internal/poller"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	pageLogin     = "login"
	pageDashboard = "dashboard"
	pageExport    = "export"
)

// resultMsg carries a poll result of the login identified by ctx
type resultMsg struct {
	result  poller.Result
	ctx     context.Context
	results <-chan poller.Result
}

// AppModel is the main application model that manages page switching
type AppModel struct {
	session *session.Session
	fetcher fitbit.Fetcher
	config  *config.DashboardConfig

	loginPage     LoginPageModel
	dashboardPage DashboardPageModel
	exportView    ExportView
	page          string

	poller *poller.Poller
	size   *tea.WindowSizeMsg
}

// NewAppModel creates the terminal dashboard for sess
func NewAppModel(sess *session.Session, fetcher fitbit.Fetcher, cfg *config.DashboardConfig) AppModel {
	m := AppModel{
		session:       sess,
		fetcher:       fetcher,
		config:        cfg,
		dashboardPage: NewDashboardPageModel(cfg.RefreshInterval),
		page:          pageLogin,
	}
	if sess.State() != session.Authenticated {
		m.loginPage = NewLoginPageModel(sess)
	}
	return m
}

// Init initializes the AppModel
func (m AppModel) Init() tea.Cmd {
	if m.session.State() == session.Authenticated {
		return func() tea.Msg { return AuthenticatedMsg{} }
	}
	return m.loginPage.Init()
}

// Update handles app-level messages and delegates to the appropriate page model
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case AuthenticatedMsg:
		m.page = pageDashboard
		m.dashboardPage = m.sized(NewDashboardPageModel(m.config.RefreshInterval))
		return m, tea.Batch(m.startPolling(), m.dashboardPage.Init())

	case resultMsg:
		// Results of a previous login are dropped
		if msg.ctx.Err() != nil {
			return m, nil
		}
		snap := dashboard.NewSnapshot(msg.result, dashboard.Options{StepGoal: m.config.StepGoal})
		tempModel, cmd := m.dashboardPage.Update(SnapshotMsg{Snapshot: snap})
		m.dashboardPage = tempModel.(DashboardPageModel)
		return m, tea.Batch(cmd, waitForResult(msg.ctx, msg.results))

	case RefreshMsg:
		if m.poller != nil {
			m.poller.Refresh()
		}
		return m, nil

	case LogoutMsg:
		m.session.Logout()
		m.poller = nil
		m.page = pageLogin
		m.loginPage = m.sizedLogin(NewLoginPageModel(m.session))
		return m, m.loginPage.Init()

	case OpenExportMsg:
		m.page = pageExport
		m.exportView = NewExportView(msg.Snapshot)
		if m.size != nil {
			tempModel, _ := m.exportView.Update(*m.size)
			m.exportView = tempModel.(ExportView)
		}
		return m, m.exportView.Init()

	case BackToDashboardMsg:
		m.page = pageDashboard
		return m, nil

	case tea.WindowSizeMsg:
		var cmd tea.Cmd
		var tempModel tea.Model
		m.size = &msg

		tempModel, cmd = m.loginPage.Update(msg)
		m.loginPage = tempModel.(LoginPageModel)
		cmds = append(cmds, cmd)

		tempModel, cmd = m.dashboardPage.Update(msg)
		m.dashboardPage = tempModel.(DashboardPageModel)
		cmds = append(cmds, cmd)

		tempModel, cmd = m.exportView.Update(msg)
		m.exportView = tempModel.(ExportView)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	// Delegate message to the active page
	var cmd tea.Cmd
	var tempModel tea.Model
	switch m.page {
	case pageLogin:
		tempModel, cmd = m.loginPage.Update(msg)
		m.loginPage = tempModel.(LoginPageModel)
	case pageDashboard:
		tempModel, cmd = m.dashboardPage.Update(msg)
		m.dashboardPage = tempModel.(DashboardPageModel)
	case pageExport:
		tempModel, cmd = m.exportView.Update(msg)
		m.exportView = tempModel.(ExportView)
	}
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the active page
func (m AppModel) View() string {
	switch m.page {
	case pageDashboard:
		return m.dashboardPage.View()
	case pageExport:
		return m.exportView.View()
	default:
		return m.loginPage.View()
	}
}

// startPolling runs a poller bound to the session context and returns the
// command delivering its first result
func (m *AppModel) startPolling() tea.Cmd {
	ctx := m.session.Context()
	results := make(chan poller.Result, 1)

	token := func() (string, bool) {
		creds := m.session.Credentials()
		if creds == nil {
			return "", false
		}
		return creds.AccessToken, true
	}
	m.poller = poller.New(m.fetcher, token, m.config.RefreshInterval)

	p := m.poller
	go p.Run(ctx, func(r poller.Result) {
		select {
		case results <- r:
		case <-ctx.Done():
		}
	})
	return waitForResult(ctx, results)
}

func waitForResult(ctx context.Context, results <-chan poller.Result) tea.Cmd {
	return func() tea.Msg {
		select {
		case r := <-results:
			return resultMsg{result: r, ctx: ctx, results: results}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m AppModel) sized(page DashboardPageModel) DashboardPageModel {
	if m.size == nil {
		return page
	}
	tempModel, _ := page.Update(*m.size)
	return tempModel.(DashboardPageModel)
}

func (m AppModel) sizedLogin(page LoginPageModel) LoginPageModel {
	if m.size == nil {
		return page
	}
	tempModel, _ := page.Update(*m.size)
	return tempModel.(LoginPageModel)
}

// Page returns the name of the active page
func (m AppModel) Page() string {
	return m.page
}

// Run starts the terminal dashboard and blocks until the user quits
func Run(ctx context.Context, sess *session.Session, fetcher fitbit.Fetcher, cfg *config.DashboardConfig) error {
	p := tea.NewProgram(NewAppModel(sess, fetcher, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
