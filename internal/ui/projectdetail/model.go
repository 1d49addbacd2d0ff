package projectdetail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamboard/internal/board"
	"github.com/nhle/teamboard/internal/keys"
	"github.com/nhle/teamboard/internal/model"
	"github.com/nhle/teamboard/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// NewTaskMsg asks the parent to open the task form for a project.
type NewTaskMsg struct {
	ProjectID int64
}

// OpenChatMsg asks the parent to open a project's chat.
type OpenChatMsg struct {
	ProjectID int64
}

// ProjectDeletedMsg is sent after the shown project was deleted.
type ProjectDeletedMsg struct {
	ProjectID int64
	Err       error
}

// ChangedMsg is sent after any mutation made from this view.
type ChangedMsg struct {
	Err error
}

type detailMode int

const (
	modeBrowse detailMode = iota
	modeSubtaskInput
	modeConfirmDelete
	modeConfirmComplete
)

// row is one selectable line: a task, or a subtask under it.
type row struct {
	taskID    int64
	subtaskID int64
	isSubtask bool
}

type confirmBindings struct {
	confirm bool
}

// Model is the project detail view: tasks with their subtasks, plus
// actions on the project.
type Model struct {
	board       *board.Board
	keys        *keys.KeyMap
	project     *model.Project
	rows        []row
	rowLines    []int
	cursor      int
	mode        detailMode
	viewport    viewport.Model
	input       textinput.Model
	confirmForm *huh.Form
	fb          *confirmBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a new detail view model.
func New(b *board.Board, k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	ti := textinput.New()
	ti.Placeholder = "subtask..."
	ti.Prompt = "+ "
	ti.CharLimit = 200
	ti.Width = width - 6

	return Model{
		board:    b,
		keys:     k,
		viewport: vp,
		input:    ti,
		fb:       &confirmBindings{},
		width:    width,
		height:   height,
	}
}

// Open shows the project with id. It returns false when the project no
// longer exists.
func (m *Model) Open(id int64) bool {
	m.cursor = 0
	m.mode = modeBrowse
	m.statusMsg = ""
	ok := m.reload(id)
	m.viewport.GotoTop()
	return ok
}

// ProjectID returns the id of the shown project, or 0.
func (m Model) ProjectID() int64 {
	if m.project == nil {
		return 0
	}
	return m.project.ID
}

// Editing reports whether a text input or confirmation has focus.
func (m Model) Editing() bool { return m.mode != modeBrowse }

func (m *Model) reload(id int64) bool {
	p, err := m.board.Project(id)
	if err != nil {
		m.project = nil
		m.rows = nil
		m.viewport.SetContent("")
		return false
	}
	m.project = &p
	m.rows = make([]row, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		m.rows = append(m.rows, row{taskID: t.ID})
		for _, s := range t.Subtasks {
			m.rows = append(m.rows, row{taskID: t.ID, subtaskID: s.ID, isSubtask: true})
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = max(0, len(m.rows)-1)
	}
	m.refreshContent()
	return true
}

func (m *Model) refreshContent() {
	content, lines := m.renderContent()
	m.rowLines = lines
	m.viewport.SetContent(content)
	if m.cursor < len(lines) {
		line := lines[m.cursor]
		if line < m.viewport.YOffset {
			m.viewport.SetYOffset(line)
		} else if line >= m.viewport.YOffset+m.viewport.Height {
			m.viewport.SetYOffset(line - m.viewport.Height + 1)
		}
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ChangedMsg:
		if msg.Err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.Err)
		} else {
			m.statusMsg = ""
		}
		if m.project != nil {
			m.reload(m.project.ID)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSubtaskInput:
			return m.updateSubtaskInput(msg)
		case modeConfirmDelete, modeConfirmComplete:
			return m.updateConfirm(msg)
		}
		return m.handleBrowseKey(msg)
	}

	if m.mode == modeConfirmDelete || m.mode == modeConfirmComplete {
		return m.updateConfirm(msg)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.project == nil {
		if key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg { return BackMsg{} }
		}
		return m, nil
	}
	projectID := m.project.ID

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return BackMsg{} }

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.refreshContent()
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.refreshContent()
		}
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		r, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		return m, m.mutate(func(ctx context.Context) error {
			if r.isSubtask {
				return m.board.ToggleSubtask(ctx, projectID, r.taskID, r.subtaskID)
			}
			return m.board.ToggleTask(ctx, projectID, r.taskID)
		})

	case key.Matches(msg, m.keys.NewSubtask):
		if _, ok := m.selectedRow(); !ok {
			m.statusMsg = "Add a task first"
			return m, nil
		}
		m.mode = modeSubtaskInput
		m.input.Reset()
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.NewTask):
		return m, func() tea.Msg { return NewTaskMsg{ProjectID: projectID} }

	case key.Matches(msg, m.keys.Chat):
		return m, func() tea.Msg { return OpenChatMsg{ProjectID: projectID} }

	case key.Matches(msg, m.keys.Complete):
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm(
			fmt.Sprintf("Mark %q as completed?", m.project.Name),
			"Every task is marked done and progress set to 100%.",
			"Yes, complete",
		)
		m.mode = modeConfirmComplete
		return m, m.confirmForm.Init()

	case key.Matches(msg, m.keys.Delete):
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm(
			fmt.Sprintf("Delete project %q?", m.project.Name),
			"Its tasks and chat are removed too.",
			"Yes, delete",
		)
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateSubtaskInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil

	case "enter":
		text := strings.TrimSpace(m.input.Value())
		m.mode = modeBrowse
		m.input.Blur()
		r, ok := m.selectedRow()
		if text == "" || !ok {
			return m, nil
		}
		projectID := m.project.ID
		return m, m.mutate(func(ctx context.Context) error {
			return m.board.AddSubtask(ctx, projectID, r.taskID, text)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) buildConfirmForm(title, desc, yes string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(desc).
				Affirmative(yes).
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		m.mode = modeBrowse
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}

	switch m.confirmForm.State {
	case huh.StateCompleted:
		mode := m.mode
		m.mode = modeBrowse
		if !m.fb.confirm || m.project == nil {
			return m, nil
		}
		id := m.project.ID
		b := m.board
		if mode == modeConfirmDelete {
			return m, func() tea.Msg {
				return ProjectDeletedMsg{ProjectID: id, Err: b.DeleteProject(context.Background(), id)}
			}
		}
		return m, m.mutate(func(ctx context.Context) error {
			return b.CompleteProject(ctx, id)
		})

	case huh.StateAborted:
		m.mode = modeBrowse
		return m, nil
	}
	return m, cmd
}

// mutate runs fn against the board and reports the outcome as ChangedMsg.
func (m Model) mutate(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		err := fn(context.Background())
		if errors.Is(err, board.ErrPersist) {
			err = fmt.Errorf("change kept in memory but not saved: %w", err)
		}
		return ChangedMsg{Err: err}
	}
}

func (m Model) selectedRow() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

// View renders the detail view.
func (m Model) View() string {
	if m.project == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No project selected")
	}

	switch m.mode {
	case modeConfirmDelete, modeConfirmComplete:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}

	parts := []string{m.viewport.View()}
	if m.mode == modeSubtaskInput {
		parts = append(parts, lipgloss.NewStyle().Padding(0, 1).Render(m.input.View()))
	}
	if m.statusMsg != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderContent builds the viewport content and the line index of each row.
func (m Model) renderContent() (string, []int) {
	p := m.project
	if p == nil {
		return "", nil
	}

	var lines []string
	add := func(s ...string) { lines = append(lines, s...) }

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	add(titleStyle.Render(p.Name))

	badges := theme.PriorityStyle(p.Priority).Render(string(p.Priority))
	if p.Deadline != "" {
		badges += "  " + metaStyle.Render("due "+p.Deadline)
	}
	if p.Status != "" {
		badges += "  " + lipgloss.NewStyle().Foreground(theme.ColorGreen).Bold(true).Render(p.Status)
	}
	add(badges)
	add(theme.ProgressBar(p.Progress, min(40, max(10, m.width-20))) + fmt.Sprintf(" %d%%", p.Progress))
	add("")

	if p.Description != "" {
		add(p.Description, "")
	}
	if len(p.AssignedTo) > 0 {
		names := make([]string, len(p.AssignedTo))
		for i, e := range p.AssignedTo {
			names[i] = e.Name
		}
		add(metaStyle.Render("Team: ")+strings.Join(names, ", "), "")
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorSubtle).Render(strings.Repeat("─", max(1, min(m.width-4, 80))))
	add(sep, titleStyle.Render(fmt.Sprintf("Tasks (%d)", len(p.Tasks))), "")

	rowLines := make([]int, 0, len(m.rows))
	if len(p.Tasks) == 0 {
		add(metaStyle.Italic(true).Render("No tasks yet. Press t to add one."))
	}
	i := 0
	for _, t := range p.Tasks {
		rowLines = append(rowLines, len(lines))
		add(m.renderTask(t, i == m.cursor))
		i++
		for _, s := range t.Subtasks {
			rowLines = append(rowLines, len(lines))
			add(m.renderSubtask(s, i == m.cursor))
			i++
		}
	}

	return strings.Join(lines, "\n"), rowLines
}

func (m Model) renderTask(t model.Task, selected bool) string {
	check := "[ ]"
	text := t.Text
	if t.Completed {
		check = "[x]"
		text = theme.DoneStyle.Render(text)
	}
	line := fmt.Sprintf("%s %s %s", check, theme.PriorityStyle(t.Priority).Render(string(t.Priority)), text)
	if t.Deadline != "" {
		line += lipgloss.NewStyle().Foreground(theme.ColorGray).Render("  " + t.Deadline)
	}
	if done, total := t.SubtaskProgress(); total > 0 {
		line += lipgloss.NewStyle().Foreground(theme.ColorGray).Render(fmt.Sprintf("  (%d/%d)", done, total))
	}
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

func (m Model) renderSubtask(s model.Subtask, selected bool) string {
	check := "[ ]"
	text := s.Text
	if s.Completed {
		check = "[x]"
		text = theme.DoneStyle.Render(text)
	}
	line := "    " + check + " " + text
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.input.Width = width - 6
	if m.project != nil {
		m.refreshContent()
	}
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}
