package projectlist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamboard/internal/model"
	"github.com/nhle/teamboard/internal/theme"
)

// progressWidth is the cell width of the inline progress bar.
const progressWidth = 12

// ProjectItem wraps a model.Project so it can be used in a bubbles/list.
type ProjectItem struct {
	Project model.Project
}

// FilterValue returns the string used for fuzzy filtering.
func (i ProjectItem) FilterValue() string { return i.Project.Name }

// Title returns the project name for the list.
func (i ProjectItem) Title() string { return i.Project.Name }

// Description returns a short summary line for the list.
func (i ProjectItem) Description() string {
	parts := []string{string(i.Project.Priority), fmt.Sprintf("%d%%", i.Project.Progress)}
	if i.Project.Deadline != "" {
		parts = append(parts, "due "+i.Project.Deadline)
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering project rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render draws a single project line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	pi, ok := item.(ProjectItem)
	if !ok {
		return
	}
	fmt.Fprint(w, renderLine(pi.Project, index == m.Index()))
}

func renderLine(p model.Project, selected bool) string {
	prefix := "○"
	if p.Progress >= 100 {
		prefix = "✓"
	}

	priBadge := theme.PriorityStyle(p.Priority).Render(fmt.Sprintf("%-6s", p.Priority))
	bar := theme.ProgressBar(p.Progress, progressWidth)
	pct := lipgloss.NewStyle().Foreground(theme.ColorGray).Render(fmt.Sprintf("%3d%%", p.Progress))

	due := ""
	if p.Deadline != "" {
		due = lipgloss.NewStyle().Foreground(theme.ColorGray).Render("  due " + p.Deadline)
	}
	team := ""
	if n := len(p.AssignedTo); n > 0 {
		team = lipgloss.NewStyle().Foreground(theme.ColorMagenta).Render(fmt.Sprintf("  %d members", n))
	}

	line := fmt.Sprintf("%s %s %s %s %s%s%s", prefix, priBadge, bar, pct, p.Name, due, team)
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}
