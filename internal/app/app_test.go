package app

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamboard/internal/board"
	"github.com/nhle/teamboard/internal/client"
	"github.com/nhle/teamboard/internal/identity"
	"github.com/nhle/teamboard/internal/ui/command"
	"github.com/nhle/teamboard/internal/ui/projectdetail"
	"github.com/nhle/teamboard/internal/ui/projectlist"
	"github.com/nhle/teamboard/tests/testutil"
)

var now = time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newModel(t *testing.T, cfg Config) (Model, *board.Board) {
	t.Helper()
	b, _ := testutil.NewTestBoard(t, now)
	cfg.Board = b
	cfg.Now = func() time.Time { return now }
	m := New(cfg)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model), b
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestApp_OpenProjectAndToggleTask(t *testing.T) {
	m, b := newModel(t, Config{})

	m, _ = update(t, m, projectlist.SelectedProjectMsg{ProjectID: 1})
	require.Equal(t, ViewDetail, m.CurrentView())

	// The cursor starts on the first task, which the seed marks done.
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.NotNil(t, cmd)
	msg := cmd()
	changed, ok := msg.(projectdetail.ChangedMsg)
	require.True(t, ok)
	require.NoError(t, changed.Err)

	m, _ = update(t, m, msg)
	p, err := b.Project(1)
	require.NoError(t, err)
	assert.False(t, p.Tasks[0].Completed)
	assert.Equal(t, 0, p.Progress)
	assert.Equal(t, ViewDetail, m.CurrentView())
}

func TestApp_UnknownProjectStaysOnList(t *testing.T) {
	m, _ := newModel(t, Config{})
	m, _ = update(t, m, projectlist.SelectedProjectMsg{ProjectID: 999})
	assert.Equal(t, ViewList, m.CurrentView())
}

func TestApp_NewTaskFlow(t *testing.T) {
	m, _ := newModel(t, Config{})
	m, _ = update(t, m, projectlist.SelectedProjectMsg{ProjectID: 2})

	_, cmd := update(t, m, runes("t"))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, projectdetail.NewTaskMsg{ProjectID: 2}, msg)

	m, _ = update(t, m, msg)
	assert.Equal(t, ViewTaskForm, m.CurrentView())
}

func TestApp_GlobalKeysOnList(t *testing.T) {
	m, _ := newModel(t, Config{})

	m, _ = update(t, m, runes("?"))
	assert.Equal(t, ViewHelp, m.CurrentView())
	m, _ = update(t, m, runes("?"))
	assert.Equal(t, ViewList, m.CurrentView())

	m, _ = update(t, m, runes("m"))
	assert.Equal(t, ViewTeam, m.CurrentView())
	assert.Len(t, m.teamView.Rows(), 5)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, ViewList, m.CurrentView())

	m, _ = update(t, m, runes("n"))
	assert.Equal(t, ViewProjectForm, m.CurrentView())
}

func TestApp_Commands(t *testing.T) {
	m, _ := newModel(t, Config{})

	m, _ = update(t, m, command.CommandMsg("completed"))
	assert.True(t, m.projectList.ShowingCompleted())

	m, _ = update(t, m, command.CommandMsg("bogus"))
	assert.Contains(t, m.statusLine().Notice, `unknown command "bogus"`)
	assert.True(t, m.statusLine().Failed)

	_, cmd := update(t, m, command.CommandMsg("quit"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

type recordingGateway struct{ calls int }

func (g *recordingGateway) SyncUser(context.Context, client.SyncRequest) (client.SyncResponse, error) {
	g.calls++
	return client.SyncResponse{}, nil
}

func TestApp_SessionSyncOnStart(t *testing.T) {
	token, err := identity.Mint([]byte("k"), "user_1", identity.Profile{FullName: "Ann Lee"}, "", now, time.Hour)
	require.NoError(t, err)

	gw := &recordingGateway{}
	m, _ := newModel(t, Config{Token: token, Syncer: client.NewSessionSyncer(gw, nil)})

	m, _ = update(t, m, m.syncSession()())
	assert.Equal(t, 1, gw.calls)
	assert.Equal(t, "Ann Lee · synced", m.sessionStatus())

	// A second sync for the same credential does not call the gateway.
	m, _ = update(t, m, m.syncSession()())
	assert.Equal(t, 1, gw.calls)
	assert.Equal(t, "Ann Lee · signed in", m.sessionStatus())
}

func TestApp_GuestWithoutToken(t *testing.T) {
	m, _ := newModel(t, Config{})
	assert.Nil(t, m.syncSession())
	assert.Equal(t, "guest", m.sessionStatus())
	assert.True(t, strings.Contains(m.View(), "Teamboard"))
}

func TestApp_InvalidStoredCredential(t *testing.T) {
	m, _ := newModel(t, Config{Token: "garbage"})
	m, _ = update(t, m, m.syncSession()())
	assert.Equal(t, "invalid credential", m.sessionStatus())
}

func TestApp_HeaderSummarizesBoard(t *testing.T) {
	m, b := newModel(t, Config{})

	h := m.header()
	assert.Equal(t, "Projects", h.Section)
	assert.Equal(t, 2, h.Active)
	assert.Equal(t, 0, h.Completed)
	assert.Equal(t, "guest", h.Session)

	require.NoError(t, b.CompleteProject(context.Background(), 2))
	cmd := m.projectList.SetShowCompleted(true)
	m, _ = update(t, m, cmd())

	h = m.header()
	assert.Equal(t, "Completed", h.Section)
	assert.Equal(t, 1, h.Active)
	assert.Equal(t, 1, h.Completed)
	assert.Contains(t, m.View(), "1 active · 1 done")
}

func TestApp_StatusNoticeAfterDelete(t *testing.T) {
	m, _ := newModel(t, Config{})

	m, _ = update(t, m, projectdetail.ProjectDeletedMsg{ProjectID: 1})
	assert.Equal(t, "Project deleted", m.statusLine().Notice)
	assert.False(t, m.statusLine().Failed)
	assert.Contains(t, m.statusLine().Hints, "q quit")
}
