package projectdetail

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamboard/internal/board"
	"github.com/nhle/teamboard/internal/keys"
	"github.com/nhle/teamboard/internal/model"
	"github.com/nhle/teamboard/tests/testutil"
)

var now = time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

// openProject returns a detail view showing seed project 1, whose rows are
// task 1, subtasks 101 and 102, task 2, task 3.
func openProject(t *testing.T) (Model, *board.Board) {
	t.Helper()
	b, _ := testutil.NewTestBoard(t, now)
	m := New(b, keys.DefaultKeyMap(), 100, 40)
	require.True(t, m.Open(1))
	return m, b
}

// apply runs cmd and feeds a ChangedMsg result back into m.
func apply(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(ChangedMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	m, _ = m.Update(msg)
	return m
}

func project(t *testing.T, b *board.Board, id int64) model.Project {
	t.Helper()
	p, err := b.Project(id)
	require.NoError(t, err)
	return p
}

func subtask(t *testing.T, p model.Project, taskID, subtaskID int64) model.Subtask {
	t.Helper()
	for _, task := range p.Tasks {
		if task.ID != taskID {
			continue
		}
		for _, s := range task.Subtasks {
			if s.ID == subtaskID {
				return s
			}
		}
	}
	t.Fatalf("subtask %d/%d not found", taskID, subtaskID)
	return model.Subtask{}
}

func TestOpen_UnknownProject(t *testing.T) {
	b, _ := testutil.NewTestBoard(t, now)
	m := New(b, keys.DefaultKeyMap(), 100, 40)

	assert.False(t, m.Open(999))
	assert.Equal(t, int64(0), m.ProjectID())
	assert.Contains(t, m.View(), "No project selected")
}

func TestToggleSubtask_LeavesProgressAlone(t *testing.T) {
	m, b := openProject(t)
	before := project(t, b, 1).Progress

	m, _ = m.Update(runes("j"))
	_, cmd := m.Update(space)
	m = apply(t, m, cmd)

	p := project(t, b, 1)
	assert.False(t, subtask(t, p, 1, 101).Completed)
	assert.True(t, subtask(t, p, 1, 102).Completed)
	assert.Equal(t, before, p.Progress)
	assert.Contains(t, m.View(), "(1/2)")
}

func TestToggleTask_RecomputesProgress(t *testing.T) {
	m, b := openProject(t)

	for range 3 {
		m, _ = m.Update(runes("j"))
	}
	_, cmd := m.Update(space)
	m = apply(t, m, cmd)

	assert.Equal(t, 67, project(t, b, 1).Progress)
	assert.Contains(t, m.View(), "67%")
}

func TestAddSubtask_UnderSelectedTask(t *testing.T) {
	m, b := openProject(t)
	for range 3 {
		m, _ = m.Update(runes("j"))
	}

	m, _ = m.Update(runes("s"))
	require.True(t, m.Editing())
	m, _ = m.Update(runes("Hero banner"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Editing())
	m = apply(t, m, cmd)

	p := project(t, b, 1)
	require.Len(t, p.Tasks[1].Subtasks, 1)
	assert.Equal(t, "Hero banner", p.Tasks[1].Subtasks[0].Text)
	assert.Contains(t, m.View(), "Hero banner")
}

func TestAddSubtask_EscCancels(t *testing.T) {
	m, b := openProject(t)

	m, _ = m.Update(runes("s"))
	m, _ = m.Update(runes("ignored"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, cmd)
	assert.False(t, m.Editing())
	assert.Len(t, project(t, b, 1).Tasks[0].Subtasks, 2)
}

// finishConfirm answers the open confirmation and forwards one message so
// the view reacts to the finished form.
func finishConfirm(t *testing.T, m Model, answer bool) (Model, tea.Cmd) {
	t.Helper()
	require.NotNil(t, m.confirmForm)
	m.fb.confirm = answer
	m.confirmForm.State = huh.StateCompleted
	return m.Update(runes("y"))
}

func TestComplete_Confirmed(t *testing.T) {
	m, b := openProject(t)

	m, _ = m.Update(runes("x"))
	require.Equal(t, modeConfirmComplete, m.mode)
	assert.True(t, m.Editing())

	m, cmd := finishConfirm(t, m, true)
	assert.False(t, m.Editing())
	m = apply(t, m, cmd)

	p := project(t, b, 1)
	assert.Equal(t, 100, p.Progress)
	assert.Equal(t, model.ProjectStatusCompleted, p.Status)
	assert.Contains(t, m.View(), "Completed")
}

func TestComplete_Declined(t *testing.T) {
	m, b := openProject(t)

	m, _ = m.Update(runes("x"))
	m, cmd := finishConfirm(t, m, false)

	assert.Nil(t, cmd)
	assert.False(t, m.Editing())
	assert.Equal(t, 33, project(t, b, 1).Progress)
}

func TestDelete_Confirmed(t *testing.T) {
	m, b := openProject(t)

	m, _ = m.Update(runes("d"))
	require.Equal(t, modeConfirmDelete, m.mode)

	_, cmd := finishConfirm(t, m, true)
	require.NotNil(t, cmd)
	msg, ok := cmd().(ProjectDeletedMsg)
	require.True(t, ok)
	assert.Equal(t, int64(1), msg.ProjectID)
	assert.NoError(t, msg.Err)

	_, err := b.Project(1)
	assert.ErrorIs(t, err, board.ErrNotFound)
}

func TestDelete_Aborted(t *testing.T) {
	m, b := openProject(t)

	m, _ = m.Update(runes("d"))
	m.confirmForm.State = huh.StateAborted
	m, cmd := m.Update(runes("n"))

	assert.Nil(t, cmd)
	assert.False(t, m.Editing())
	project(t, b, 1)
}

func TestNavigationMessages(t *testing.T) {
	m, _ := openProject(t)

	_, cmd := m.Update(runes("t"))
	assert.Equal(t, NewTaskMsg{ProjectID: 1}, cmd())

	_, cmd = m.Update(runes("c"))
	assert.Equal(t, OpenChatMsg{ProjectID: 1}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, BackMsg{}, cmd())
}
