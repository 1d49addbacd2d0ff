package team

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamboard/internal/board"
	"github.com/nhle/teamboard/internal/keys"
	"github.com/nhle/teamboard/internal/theme"
)

// BackMsg signals the parent to leave the team view.
type BackMsg struct{}

// Model lists the roster with per-member project counts.
type Model struct {
	board  *board.Board
	keys   *keys.KeyMap
	table  table.Model
	width  int
	height int
}

// New creates a team view model.
func New(b *board.Board, k *keys.KeyMap, width, height int) Model {
	t := table.New(
		table.WithColumns(columns(width)),
		table.WithFocused(true),
		table.WithHeight(max(height-4, 3)),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorBorder).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(theme.ColorWhite).
		Background(theme.ColorBlue)
	t.SetStyles(styles)

	return Model{board: b, keys: k, table: t, width: width, height: height}
}

func columns(width int) []table.Column {
	name := max((width-36)/2, 16)
	return []table.Column{
		{Title: "Name", Width: name},
		{Title: "Role", Width: name},
		{Title: "Active", Width: 8},
		{Title: "Completed", Width: 10},
	}
}

// Refresh re-reads the roster and counts from the board.
func (m *Model) Refresh() {
	employees := m.board.Employees()
	rows := make([]table.Row, len(employees))
	for i, e := range employees {
		s := m.board.EmployeeStats(e.ID)
		rows[i] = table.Row{e.Name, e.Role, fmt.Sprint(s.Active), fmt.Sprint(s.Completed)}
	}
	m.table.SetRows(rows)
}

// Rows returns the rendered table rows.
func (m Model) Rows() []table.Row {
	return m.table.Rows()
}

// Update handles messages for the team view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Back) {
		return m, func() tea.Msg { return BackMsg{} }
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the roster table.
func (m Model) View() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1).Render("Team")
	return lipgloss.NewStyle().Padding(1, 2).Render(title + "\n" + m.table.View())
}

// SetSize updates the team view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
	m.table.SetHeight(max(height-4, 3))
}
