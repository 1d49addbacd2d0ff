package projectlist

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamboard/internal/board"
	"github.com/nhle/teamboard/internal/keys"
	"github.com/nhle/teamboard/internal/model"
	"github.com/nhle/teamboard/internal/theme"
)

// ProjectsLoadedMsg is sent when projects have been read from the board.
type ProjectsLoadedMsg struct {
	Projects []model.Project
	Stats    board.Stats
}

// SelectedProjectMsg is sent when the user opens a project.
type SelectedProjectMsg struct {
	ProjectID int64
}

// Model is the dashboard: stats header plus the active or completed
// project list.
type Model struct {
	list          list.Model
	board         *board.Board
	keys          *keys.KeyMap
	now           func() time.Time
	stats         board.Stats
	showCompleted bool
	query         string
	searchMode    bool
	searchInput   textinput.Model
	width         int
	height        int
}

// New creates a new project list model.
func New(b *board.Board, k *keys.KeyMap, now func() time.Time, width, height int) Model {
	if now == nil {
		now = time.Now
	}
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-3)
	l.Title = "Active Projects"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search projects..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		board:       b,
		keys:        k,
		now:         now,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the initial set of projects.
func (m Model) Init() tea.Cmd {
	return m.LoadProjects()
}

// Update handles messages for the project list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProjectsLoadedMsg:
		m.stats = msg.Stats
		items := make([]list.Item, len(msg.Projects))
		for i, p := range msg.Projects {
			items[i] = ProjectItem{Project: p}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query = m.searchInput.Value()
		return m, m.LoadProjects()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query = ""
		return m, m.LoadProjects()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(ProjectItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedProjectMsg{ProjectID: item.Project.ID}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.query)
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.ToggleCompleted):
		cmd := m.SetShowCompleted(!m.showCompleted)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// SetShowCompleted switches between the active and completed lists.
func (m *Model) SetShowCompleted(show bool) tea.Cmd {
	m.showCompleted = show
	m.list.ResetSelected()
	if show {
		m.list.Title = "Completed Projects"
	} else {
		m.list.Title = "Active Projects"
	}
	return m.LoadProjects()
}

// ShowingCompleted reports whether the completed list is shown.
func (m Model) ShowingCompleted() bool { return m.showCompleted }

// Searching reports whether the search input has focus.
func (m Model) Searching() bool { return m.searchMode }

// View renders the stats header and the list.
func (m Model) View() string {
	header := m.renderStats()

	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, header, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.renderEmptyState())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View())
}

func (m Model) renderStats() string {
	label := lipgloss.NewStyle().Foreground(theme.ColorGray)
	value := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	stat := func(name string, n int) string {
		return label.Render(name+" ") + value.Render(fmt.Sprint(n))
	}
	line := stat("Projects", m.stats.Total) + "   " +
		stat("Completed", m.stats.Completed) + "   " +
		stat("Open tasks", m.stats.ActiveTasks) + "   " +
		stat("Due this week", m.stats.UpcomingDeadlines)
	if m.query != "" && !m.searchMode {
		line += "   " + lipgloss.NewStyle().Foreground(theme.ColorYellow).Render(fmt.Sprintf("filter %q", m.query))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(line)
}

func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-1).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case m.query != "":
		return style.Render("No matching projects.\nPress / then esc to clear the search.")
	case m.showCompleted:
		return style.Render("No completed projects yet.")
	default:
		return style.Render("No active projects.\n\nPress n to create one.")
	}
}

// LoadProjects returns a tea.Cmd that reads the current list from the board.
func (m Model) LoadProjects() tea.Cmd {
	b := m.board
	query := m.query
	completed := m.showCompleted
	now := m.now
	return func() tea.Msg {
		var projects []model.Project
		if completed {
			projects = b.CompletedProjects(query)
		} else {
			projects = b.ActiveProjects(query)
		}
		return ProjectsLoadedMsg{Projects: projects, Stats: b.Stats(now())}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-3)
	m.searchInput.Width = width - 4
}
