package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brizzai/fitdash/internal/auth/session"
	"github.com/brizzai/fitdash/internal/config"
	"github.com/brizzai/fitdash/internal/fitbit"
	"github.com/brizzai/fitdash/internal/poller"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type mockProvider struct{}

func (mockProvider) AuthCodeURL() string {
	return "https://www.fitbit.com/oauth2/authorize?client_id=CID"
}

func (mockProvider) ExchangeCode(_ context.Context, code string) (*oauth2.Token, error) {
	if code == "bad" {
		return nil, errors.New("exchange failed")
	}
	return &oauth2.Token{AccessToken: "T1", RefreshToken: "R1"}, nil
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeFetcher) FetchAll(_ context.Context, _ string, date time.Time) (*fitbit.Bundle, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	steps := 5000
	return &fitbit.Bundle{
		Date:         date,
		DailySummary: &fitbit.DailySummaryResponse{Summary: &fitbit.Summary{Steps: &steps}},
	}, nil
}

func newTestApp() (AppModel, *session.Session) {
	sess := session.New("tui", mockProvider{})
	cfg := &config.DashboardConfig{RefreshInterval: time.Hour, StepGoal: config.DefaultStepGoal}
	return NewAppModel(sess, &fakeFetcher{}, cfg), sess
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	model, cmd := m.Update(msg)
	return model.(AppModel), cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSubmitRedirect(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
		wantOK  bool
	}{
		{name: "success", input: "http://localhost:8501/?code=abc", wantOK: true},
		{name: "no code", input: "http://localhost:8501/?x=1", wantMsg: "No code found in URL."},
		{name: "invalid", input: "::bad", wantMsg: "Invalid URL format. Error: "},
		{name: "exchange failure", input: "http://localhost:8501/?code=bad", wantMsg: "Authentication failed: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := session.New("tui", mockProvider{})
			msg := submitRedirect(sess, tt.input)()
			if tt.wantOK {
				assert.Equal(t, AuthenticatedMsg{}, msg)
				assert.Equal(t, session.Authenticated, sess.State())
				return
			}
			failed, ok := msg.(authFailedMsg)
			require.True(t, ok, "unexpected message %T", msg)
			assert.True(t, strings.HasPrefix(session.ErrorMessage(failed.err), tt.wantMsg), session.ErrorMessage(failed.err))
		})
	}
}

func TestLoginPage_EmptySubmit(t *testing.T) {
	m, sess := newTestApp()
	assert.Equal(t, session.AwaitingCode, sess.State())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 200, Height: 50})
	assert.Contains(t, m.View(), "https://www.fitbit.com/oauth2/authorize")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Please paste the URL.")
}

func TestLoginPage_FailureMessage(t *testing.T) {
	m, _ := newTestApp()
	m, _ = update(t, m, authFailedMsg{err: session.ErrNoCodeFound})
	assert.Contains(t, m.View(), "No code found in URL.")
	assert.Equal(t, pageLogin, m.Page())
}

func TestApp_DashboardFlow(t *testing.T) {
	m, sess := newTestApp()
	require.NoError(t, sess.Exchange(context.Background(), "abc"))

	m, cmd := update(t, m, AuthenticatedMsg{})
	assert.Equal(t, pageDashboard, m.Page())
	require.NotNil(t, m.poller)
	assert.Contains(t, m.View(), "Fetching data...")
	require.NotNil(t, cmd)

	// Wait for the first poll the way the runtime would
	results := make(chan poller.Result, 1)
	ctx := sess.Context()
	res := poller.Result{Bundle: &fitbit.Bundle{}, FetchedAt: time.Now()}
	steps := 12000
	res.Bundle.DailySummary = &fitbit.DailySummaryResponse{Summary: &fitbit.Summary{Steps: &steps}}
	m, cmd = update(t, m, resultMsg{result: res, ctx: ctx, results: results})
	require.NotNil(t, cmd)
	view := m.View()
	assert.Contains(t, view, "12000")
	assert.Contains(t, view, "No activities logged for today.")

	// Export opens for a dashboard
	m, cmd = update(t, m, keyRunes("e"))
	require.NotNil(t, cmd)
	exportMsg, ok := cmd().(OpenExportMsg)
	require.True(t, ok)
	m, _ = update(t, m, exportMsg)
	assert.Equal(t, pageExport, m.Page())
	m, _ = update(t, m, BackToDashboardMsg{})
	assert.Equal(t, pageDashboard, m.Page())

	// Logout cancels the session context and returns to the login page
	m, cmd = update(t, m, keyRunes("l"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, pageLogin, m.Page())
	assert.Nil(t, m.poller)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Equal(t, session.AwaitingCode, sess.State())

	// A late result of the previous login is dropped
	m, cmd = update(t, m, resultMsg{result: res, ctx: ctx, results: results})
	assert.Nil(t, cmd)
	assert.Equal(t, pageLogin, m.Page())
}

func TestApp_ErrorSnapshot(t *testing.T) {
	m, sess := newTestApp()
	require.NoError(t, sess.Exchange(context.Background(), "abc"))
	m, _ = update(t, m, AuthenticatedMsg{})

	res := poller.Result{Err: errors.New("boom"), FetchedAt: time.Now()}
	m, _ = update(t, m, resultMsg{result: res, ctx: sess.Context(), results: make(chan poller.Result)})
	assert.Contains(t, m.View(), "An unexpected error occurred: boom")

	// Nothing to export without a dashboard
	_, cmd := update(t, m, keyRunes("e"))
	assert.Nil(t, cmd)
}

func TestApp_StartsPollingWhenAlreadyAuthenticated(t *testing.T) {
	sess := session.New("tui", mockProvider{})
	require.NoError(t, sess.Exchange(context.Background(), "abc"))
	fetcher := &fakeFetcher{}
	m := NewAppModel(sess, fetcher, &config.DashboardConfig{RefreshInterval: time.Hour})

	cmd := m.Init()
	require.NotNil(t, cmd)
	assert.Equal(t, AuthenticatedMsg{}, cmd())
	sess.Logout()
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", sparkline(nil, 10))
	assert.Equal(t, "▁▁", sparkline([]int{60, 60}, 10))
	assert.Equal(t, "▁█", sparkline([]int{60, 100}, 10))
	assert.Equal(t, "▁▄█", sparkline([]int{1, 2, 3, 4}, 3))
}
