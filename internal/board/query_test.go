package board_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamboard/internal/board"
	"github.com/nhle/teamboard/internal/model"
	"github.com/nhle/teamboard/internal/store"
	"github.com/nhle/teamboard/tests/testutil"
)

func TestProgress(t *testing.T) {
	tests := []struct {
		done, total, want int
	}{
		{0, 0, 0},
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 4, 25},
		{1, 8, 13},
		{1, 200, 1},
		{3, 3, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, board.Progress(tt.done, tt.total), "%d/%d", tt.done, tt.total)
	}
}

func TestIDSource_Monotonic(t *testing.T) {
	clock := testutil.NewFixedClock(epoch)
	ids := board.NewIDSource(clock.Now)

	a := ids.Next()
	b := ids.Next()
	assert.Equal(t, epoch.UnixMilli(), a)
	assert.Equal(t, a+1, b)

	clock.Set(epoch.Add(-time.Hour))
	assert.Equal(t, b+1, ids.Next())

	ids.Observe(epoch.UnixMilli() + 500)
	assert.Equal(t, epoch.UnixMilli()+501, ids.Next())

	clock.Advance(2 * time.Hour)
	assert.Equal(t, epoch.Add(time.Hour).UnixMilli(), ids.Next())
}

func queryBoard(t *testing.T) *board.Board {
	t.Helper()
	slot := store.NewMemoryStore()
	blob := `[
		{"id":1,"name":"Alpha","description":"internal tooling","priority":"Low","deadline":"2026-02-22","progress":50,"tasks":[
			{"id":1,"text":"a","completed":true,"priority":"Low","subtasks":[]},
			{"id":2,"text":"b","completed":false,"priority":"Low","subtasks":[]}
		],"assignedTo":[{"id":1,"name":"Alice Johnson","role":"UX Designer","avatar":""}]},
		{"id":2,"name":"Beta","description":"Customer PORTAL","priority":"High","deadline":"2026-03-30","progress":0,"tasks":[
			{"id":1,"text":"c","completed":false,"priority":"High","subtasks":[]}
		]},
		{"id":3,"name":"Gamma","description":"","priority":"Medium","deadline":"2026-01-10","progress":100,"tasks":[
			{"id":1,"text":"d","completed":true,"priority":"High","subtasks":[]}
		],"assignedTo":[{"id":1,"name":"Alice Johnson","role":"UX Designer","avatar":""}]},
		{"id":4,"name":"Delta","description":"","priority":"Medium","deadline":"2026-02-01","progress":100,"tasks":[],
		 "assignedTo":[{"id":2,"name":"Bob Smith","role":"Frontend Dev","avatar":""}]},
		{"id":5,"name":"Epsilon","description":"portal redesign","priority":"Medium","deadline":"2026-02-27","progress":0,"tasks":[]}
	]`
	require.NoError(t, slot.SaveSlot(context.Background(), store.ProjectsSlot, []byte(blob)))
	return openBoard(t, slot, nil)
}

func names(ps []model.Project) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestActiveProjects(t *testing.T) {
	b := queryBoard(t)

	assert.Equal(t, []string{"Beta", "Epsilon", "Alpha"}, names(b.ActiveProjects("")))
	assert.Equal(t, []string{"Beta", "Epsilon"}, names(b.ActiveProjects("portal")))
	assert.Empty(t, b.ActiveProjects("gamma"))
}

func TestCompletedProjects(t *testing.T) {
	b := queryBoard(t)

	assert.Equal(t, []string{"Delta", "Gamma"}, names(b.CompletedProjects("")))
	assert.Equal(t, []string{"Gamma"}, names(b.CompletedProjects("GAM")))
}

func TestActiveAndCompleted_PartitionBoard(t *testing.T) {
	b := queryBoard(t)

	total := len(b.ActiveProjects("")) + len(b.CompletedProjects(""))
	assert.Equal(t, len(b.Projects()), total)
}

func TestSearchChats(t *testing.T) {
	b := queryBoard(t)

	assert.Equal(t, []string{"Alpha", "Beta", "Gamma", "Delta"}, names(b.SearchChats("A")))
	assert.Equal(t, []string{"Beta"}, names(b.SearchChats(" bet ")))
	assert.Len(t, b.SearchChats(""), 5)
}

func TestStats(t *testing.T) {
	b := queryBoard(t)

	s := b.Stats(time.Date(2026, 2, 20, 18, 30, 0, 0, time.UTC))
	assert.Equal(t, board.Stats{
		Total:             5,
		Completed:         2,
		ActiveTasks:       2,
		UpcomingDeadlines: 2,
	}, s)
}

func TestEmployeeStats(t *testing.T) {
	b := queryBoard(t)

	assert.Equal(t, board.MemberStats{Active: 1, Completed: 1}, b.EmployeeStats(1))
	assert.Equal(t, board.MemberStats{Active: 0, Completed: 1}, b.EmployeeStats(2))
	assert.Equal(t, board.MemberStats{}, b.EmployeeStats(5))
}
