package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamboard/internal/keys"
	"github.com/nhle/teamboard/internal/theme"
)

// Model is the help overlay view. Besides key bindings it lists the
// palette commands and who is signed in.
type Model struct {
	keys     *keys.KeyMap
	help     help.Model
	commands []string
	session  string
	width    int
	height   int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, commands []string, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:     keys,
		help:     h,
		commands: commands,
		width:    width,
		height:   height,
	}
}

// SetSession sets the signed-in label shown under the shortcuts.
func (m *Model) SetSession(label string) {
	m.session = label
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	m.help.Width = m.width - 4
	m.help.ShowAll = true

	sections := []string{
		titleStyle.Render("Keyboard Shortcuts"),
		m.help.View(m.keys),
	}
	if len(m.commands) > 0 {
		sections = append(sections, "",
			titleStyle.Render("Commands"),
			theme.HelpStyle.Render(":"+strings.Join(m.commands, "  :")),
		)
	}
	if m.session != "" {
		sections = append(sections, "", theme.HelpStyle.Render("Signed in as "+m.session))
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
