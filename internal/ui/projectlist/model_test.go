package projectlist_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamboard/internal/keys"
	"github.com/nhle/teamboard/internal/ui/projectlist"
	"github.com/nhle/teamboard/tests/testutil"
)

var now = time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)

func TestLoadProjects_ActiveAndCompleted(t *testing.T) {
	b, _ := testutil.NewTestBoard(t, now)
	m := projectlist.New(b, keys.DefaultKeyMap(), func() time.Time { return now }, 100, 30)

	msg, ok := m.LoadProjects()().(projectlist.ProjectsLoadedMsg)
	require.True(t, ok)
	assert.Len(t, msg.Projects, 2)
	assert.Equal(t, 2, msg.Stats.Total)

	m, _ = m.Update(msg)
	assert.Contains(t, m.View(), "Website Redesign")

	m.SetShowCompleted(true)
	msg = m.LoadProjects()().(projectlist.ProjectsLoadedMsg)
	assert.Empty(t, msg.Projects)
	m, _ = m.Update(msg)
	assert.Contains(t, m.View(), "No completed projects yet.")
}
