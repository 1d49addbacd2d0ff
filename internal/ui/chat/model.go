// Package chat renders per-project chat threads with a project sidebar
// that can be searched by name.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamboard/internal/board"
	"github.com/nhle/teamboard/internal/model"
	"github.com/nhle/teamboard/internal/theme"
)

const sidebarWidth = 28

// BackMsg signals the parent to leave the chat view.
type BackMsg struct{}

// SentMsg is dispatched after a message was appended.
type SentMsg struct {
	ProjectID int64
	Err       error
}

// Sender identifies who is typing.
type Sender struct {
	ID     string
	Name   string
	Avatar string
}

type focus int

const (
	focusMessage focus = iota
	focusSearch
)

// Model is the chat view.
type Model struct {
	board     *board.Board
	sender    Sender
	projects  []model.Project
	selected  int
	focus     focus
	search    textinput.Model
	input     textinput.Model
	viewport  viewport.Model
	statusMsg string
	width     int
	height    int
}

// New creates a chat view model.
func New(b *board.Board, width, height int) Model {
	search := textinput.New()
	search.Placeholder = "search projects..."
	search.Prompt = "/ "
	search.Width = sidebarWidth - 4

	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.Prompt = "> "
	input.CharLimit = 1000

	m := Model{
		board:    b,
		sender:   Sender{ID: "guest", Name: "Guest"},
		search:   search,
		input:    input,
		viewport: viewport.New(0, 0),
	}
	m.SetSize(width, height)
	return m
}

// SetSender sets the identity used for outgoing messages.
func (m *Model) SetSender(s Sender) {
	m.sender = s
}

// Open shows the chat for projectID with the search cleared.
func (m *Model) Open(projectID int64) tea.Cmd {
	m.search.Reset()
	m.statusMsg = ""
	m.refresh(projectID)
	m.focus = focusMessage
	m.search.Blur()
	return m.input.Focus()
}

// SelectedProjectID returns the project whose thread is shown, or 0.
func (m Model) SelectedProjectID() int64 {
	if m.selected < 0 || m.selected >= len(m.projects) {
		return 0
	}
	return m.projects[m.selected].ID
}

// refresh re-reads matching projects and keeps projectID selected when
// it is still listed.
func (m *Model) refresh(projectID int64) {
	m.projects = m.board.SearchChats(m.search.Value())
	m.selected = 0
	for i, p := range m.projects {
		if p.ID == projectID {
			m.selected = i
			break
		}
	}
	m.viewport.SetContent(m.renderThread())
	m.viewport.GotoBottom()
}

// Update handles messages for the chat view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SentMsg:
		if msg.Err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.Err)
		} else {
			m.statusMsg = ""
		}
		m.refresh(msg.ProjectID)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return BackMsg{} }
		case "tab":
			if m.focus == focusMessage {
				m.focus = focusSearch
				m.input.Blur()
				cmd := m.search.Focus()
				return m, cmd
			}
			m.focus = focusMessage
			m.search.Blur()
			cmd := m.input.Focus()
			return m, cmd
		}
		if m.focus == focusSearch {
			return m.updateSearch(msg)
		}
		return m.updateMessage(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		if m.selected > 0 {
			m.selected--
			m.viewport.SetContent(m.renderThread())
			m.viewport.GotoBottom()
		}
		return m, nil
	case "down":
		if m.selected < len(m.projects)-1 {
			m.selected++
			m.viewport.SetContent(m.renderThread())
			m.viewport.GotoBottom()
		}
		return m, nil
	case "enter":
		m.focus = focusMessage
		m.search.Blur()
		cmd := m.input.Focus()
		return m, cmd
	}

	current := m.SelectedProjectID()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.refresh(current)
	return m, cmd
}

func (m Model) updateMessage(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		projectID := m.SelectedProjectID()
		if text == "" || projectID == 0 {
			return m, nil
		}
		m.input.Reset()
		return m, m.send(projectID, text)
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) send(projectID int64, text string) tea.Cmd {
	b := m.board
	draft := board.MessageDraft{
		SenderID:     m.sender.ID,
		SenderName:   m.sender.Name,
		SenderAvatar: m.sender.Avatar,
		Text:         text,
	}
	return func() tea.Msg {
		return SentMsg{ProjectID: projectID, Err: b.AddMessage(context.Background(), projectID, draft)}
	}
}

// View renders the sidebar and the selected thread.
func (m Model) View() string {
	sidebar := m.renderSidebar()

	title := "No project"
	if id := m.SelectedProjectID(); id != 0 {
		title = m.projects[m.selected].Name
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render(title)

	parts := []string{header, m.viewport.View(), m.input.View()}
	if m.statusMsg != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}
	pane := lipgloss.NewStyle().PaddingLeft(1).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, pane)
}

func (m Model) renderSidebar() string {
	lines := []string{m.search.View(), ""}
	if len(m.projects) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true).Render("No projects found"))
	}
	for i, p := range m.projects {
		name := p.Name
		if n := len(p.Chat); n > 0 {
			name += fmt.Sprintf(" (%d)", n)
		}
		if i == m.selected {
			lines = append(lines, theme.SelectedItemStyle.Render(name))
		} else {
			lines = append(lines, theme.ListItemStyle.Render(name))
		}
	}
	return theme.BorderStyle.
		Width(sidebarWidth).
		Height(max(m.height-2, 1)).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderThread() string {
	if m.selected < 0 || m.selected >= len(m.projects) {
		return ""
	}
	msgs := m.projects[m.selected].Chat
	if len(msgs) == 0 {
		return lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true).Render("No messages yet. Say hello!")
	}

	nameStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
	selfStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen)
	timeStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

	var b strings.Builder
	for i, c := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		name := c.SenderName
		if name == "" {
			name = "User " + c.SenderID
		}
		style := nameStyle
		if c.SenderID == m.sender.ID {
			style = selfStyle
		}
		b.WriteString(style.Render(name) + "  " + timeStyle.Render(formatTimestamp(c.Timestamp)) + "\n")
		b.WriteString(c.Text + "\n")
	}
	return b.String()
}

// formatTimestamp shortens an ISO timestamp for display, returning the
// input unchanged when it does not parse.
func formatTimestamp(ts string) string {
	for _, layout := range []string{model.TimestampLayout, time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("Jan 02 15:04")
		}
	}
	return ts
}

// SetSize updates the chat view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	paneWidth := max(width-sidebarWidth-4, 10)
	m.viewport.Width = paneWidth
	m.viewport.Height = max(height-4, 1)
	m.input.Width = paneWidth - 4
}
