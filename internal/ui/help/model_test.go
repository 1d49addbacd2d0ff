package help_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/teamboard/internal/keys"
	"github.com/nhle/teamboard/internal/ui/help"
)

func TestView_ListsShortcutsCommandsAndSession(t *testing.T) {
	m := help.New(keys.DefaultKeyMap(), []string{"new", "team"}, 120, 40)

	out := m.View()
	assert.Contains(t, out, "Keyboard Shortcuts")
	assert.Contains(t, out, "complete project")
	assert.Contains(t, out, ":new  :team")
	assert.NotContains(t, out, "Signed in as")

	m.SetSession("Ann Lee")
	assert.Contains(t, m.View(), "Signed in as Ann Lee")
}
