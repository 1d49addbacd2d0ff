package chat_test

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamboard/internal/ui/chat"
	"github.com/nhle/teamboard/tests/testutil"
)

var now = time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)

func TestChat_SendAppendsMessage(t *testing.T) {
	b, _ := testutil.NewTestBoard(t, now)
	m := chat.New(b, 100, 30)
	m.SetSender(chat.Sender{ID: "user_1", Name: "Ann Lee"})
	m.Open(2)
	require.Equal(t, int64(2), m.SelectedProjectID())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Ship it")})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	sent := cmd().(chat.SentMsg)
	require.NoError(t, sent.Err)
	m, _ = m.Update(sent)

	p, err := b.Project(2)
	require.NoError(t, err)
	require.Len(t, p.Chat, 3)
	last := p.Chat[2]
	assert.Equal(t, "user_1", last.SenderID)
	assert.Equal(t, "Ann Lee", last.SenderName)
	assert.Equal(t, "Ship it", last.Text)
	assert.Contains(t, m.View(), "Ship it")
}

func TestChat_BlankMessageIsIgnored(t *testing.T) {
	b, _ := testutil.NewTestBoard(t, now)
	m := chat.New(b, 100, 30)
	m.Open(2)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("   ")})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestChat_SearchFiltersSidebar(t *testing.T) {
	b, _ := testutil.NewTestBoard(t, now)
	m := chat.New(b, 100, 30)
	m.Open(1)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("mobile")})
	assert.Equal(t, int64(2), m.SelectedProjectID())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("zzz")})
	assert.Zero(t, m.SelectedProjectID())
	assert.Contains(t, m.View(), "No projects found")
}
