package projectform

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

// ProjectCreatedMsg is dispatched after the form's project was added.
type ProjectCreatedMsg struct {
	Project model.Project
	Err     error
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name        string
	description string
	deadline    string
	priority    string
	memberIDs   []int64
}

// Model is the new-project form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	board  *board.Board
	width  int
	height int
}

// New creates a new project form model.
func New(b *board.Board, width, height int) Model {
	return Model{
		fb:     &formBindings{priority: string(model.PriorityMedium)},
		board:  b,
		width:  width,
		height: height,
	}
}

// Start resets the fields and builds a fresh form.
func (m *Model) Start() tea.Cmd {
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

	switch m.form.State {
	case huh.StateCompleted:
		return m, m.submit()
	case huh.StateAborted:
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
		Render("New Project")
	return lipgloss.NewStyle().Padding(1, 2).Render(title + "\n" + m.form.View())
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) buildForm() *huh.Form {
	priorities := make([]huh.Option[string], len(model.Priorities))
	for i, p := range model.Priorities {
		priorities[i] = huh.NewOption(string(p), string(p))
	}

	fields := []huh.Field{
		huh.NewInput().
			Title("Name").
			Placeholder("Project name").
			Value(&m.fb.name).
			Validate(validateRequired("name")),
		huh.NewText().
			Title("Description").
			Placeholder("What is this project about?").
			Value(&m.fb.description),
		huh.NewInput().
			Title("Deadline").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.deadline).
			Validate(validateOptionalDate),
		huh.NewSelect[string]().
			Title("Priority").
			Options(priorities...).
			Value(&m.fb.priority),
	}

	if roster := m.board.Employees(); len(roster) > 0 {
		opts := make([]huh.Option[int64], len(roster))
		for i, e := range roster {
			opts[i] = huh.NewOption(fmt.Sprintf("%s (%s)", e.Name, e.Role), e.ID)
		}
		fields = append(fields, huh.NewMultiSelect[int64]().
			Title("Team").
			Options(opts...).
			Value(&m.fb.memberIDs))
	}

	return huh.NewForm(huh.NewGroup(fields...)).
		WithWidth(m.formWidth()).
		WithHeight(m.formHeight())
}

func (m Model) submit() tea.Cmd {
	b := m.board
	draft := board.ProjectDraft{
		Name:        m.fb.name,
		Description: m.fb.description,
		Deadline:    strings.TrimSpace(m.fb.deadline),
		Priority:    m.fb.priority,
		MemberIDs:   append([]int64(nil), m.fb.memberIDs...),
	}
	return func() tea.Msg {
		p, err := b.AddProject(context.Background(), draft)
		return ProjectCreatedMsg{Project: p, Err: err}
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(model.DateLayout, s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
