package taskform

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamboard/internal/board"
	"github.com/nhle/teamboard/internal/model"
	"github.com/nhle/teamboard/internal/theme"
)

// TaskAddedMsg is dispatched after the form's task was added.
type TaskAddedMsg struct {
	ProjectID int64
	Err       error
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

type formBindings struct {
	text     string
	priority string
	deadline string
}

// Model is the add-task form for one project.
type Model struct {
	form        *huh.Form
	fb          *formBindings
	board       *board.Board
	projectID   int64
	projectName string
	width       int
	height      int
}

// New creates a new task form model.
func New(b *board.Board, width, height int) Model {
	return Model{
		fb:     &formBindings{priority: string(model.PriorityMedium)},
		board:  b,
		width:  width,
		height: height,
	}
}

// Start builds a fresh form for adding a task to project.
func (m *Model) Start(project model.Project) tea.Cmd {
	m.projectID = project.ID
	m.projectName = project.Name
	*m.fb = formBindings{priority: string(model.PriorityMedium)}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.submit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("New Task · " + m.projectName)
	return lipgloss.NewStyle().Padding(1, 2).Render(title + "\n" + m.form.View())
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	opts := make([]huh.Option[string], len(model.Priorities))
	for i, p := range model.Priorities {
		opts[i] = huh.NewOption(string(p), string(p))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Task").
				Placeholder("What needs to be done?").
				Value(&m.fb.text).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("task is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Priority").
				Options(opts...).
				Value(&m.fb.priority),
			huh.NewInput().
				Title("Deadline").
				Placeholder("YYYY-MM-DD (optional)").
				Value(&m.fb.deadline).
				Validate(func(s string) error {
					if s = strings.TrimSpace(s); s == "" {
						return nil
					}
					if _, err := time.Parse(model.DateLayout, s); err != nil {
						return fmt.Errorf("invalid date format, use YYYY-MM-DD")
					}
					return nil
				}),
		),
	).WithWidth(min(max(m.width-4, 40), 100)).WithHeight(max(m.height-4, 10))
}

func (m Model) submit() tea.Cmd {
	b := m.board
	projectID := m.projectID
	draft := board.TaskDraft{
		Text:     m.fb.text,
		Priority: m.fb.priority,
		Deadline: strings.TrimSpace(m.fb.deadline),
	}
	return func() tea.Msg {
		return TaskAddedMsg{ProjectID: projectID, Err: b.AddTask(context.Background(), projectID, draft)}
	}
}
