package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamboard/internal/theme"
)

// Header is what the top bar shows: where the user is, how the board
// stands and who is signed in.
type Header struct {
	// Section names the active view, e.g. "Projects" or "Chat".
	Section   string
	Active    int
	Completed int
	Upcoming  int
	Session   string
}

// Status is the bottom bar: key hints on the left and the outcome of the
// last action on the right.
type Status struct {
	Hints  string
	Notice string
	Failed bool
}

// Frame sizes the board's chrome around the active view.
type Frame struct {
	Width  int
	Height int
}

// NewFrame returns a frame for a terminal of the given size.
func NewFrame(width, height int) Frame {
	return Frame{Width: width, Height: height}
}

// ContentHeight is the number of rows left for the view after the one-line
// header and status bar.
func (f Frame) ContentHeight() int {
	return max(f.Height-2, 0)
}

// counts formats the board summary, omitting zero upcoming deadlines.
func (h Header) counts() string {
	parts := []string{
		fmt.Sprintf("%d active", h.Active),
		fmt.Sprintf("%d done", h.Completed),
	}
	if h.Upcoming > 0 {
		parts = append(parts, fmt.Sprintf("%d due soon", h.Upcoming))
	}
	return strings.Join(parts, " · ")
}

// RenderHeader draws "Teamboard › Section", the board counts and the
// session label across the full width. The counts are dropped first when
// the terminal is too narrow.
func (f Frame) RenderHeader(h Header) string {
	title := "Teamboard"
	if h.Section != "" {
		title += " › " + h.Section
	}
	left := theme.HeaderStyle.Render(title)
	right := theme.HeaderStyle.Render(h.Session)
	middle := theme.HeaderStyle.Bold(false).Render(h.counts())

	if lipgloss.Width(left)+lipgloss.Width(middle)+lipgloss.Width(right) > f.Width {
		middle = ""
	}
	return f.spread(theme.HeaderStyle, left, middle, right)
}

// RenderStatus draws the hints and, right-aligned, the last notice. Failed
// notices are shown in red.
func (f Frame) RenderStatus(s Status) string {
	left := theme.StatusBarStyle.Render(s.Hints)
	right := ""
	if s.Notice != "" {
		style := theme.StatusBarStyle.Foreground(theme.ColorGreen)
		if s.Failed {
			style = theme.StatusBarStyle.Foreground(theme.ColorRed)
		}
		right = style.Render(s.Notice)
	}
	return f.spread(theme.StatusBarStyle, left, "", right)
}

// spread lays out left, middle and right segments on one line, filling
// the gaps with the bar's background.
func (f Frame) spread(bar lipgloss.Style, left, middle, right string) string {
	gap := max(f.Width-lipgloss.Width(left)-lipgloss.Width(middle)-lipgloss.Width(right), 0)
	fill := func(n int) string {
		return lipgloss.NewStyle().Width(n).Background(bar.GetBackground()).Render("")
	}

	if middle == "" {
		return lipgloss.JoinHorizontal(lipgloss.Top, left, fill(gap), right)
	}
	leftGap := gap / 2
	return lipgloss.JoinHorizontal(lipgloss.Top, left, fill(leftGap), middle, fill(gap-leftGap), right)
}

// Render stacks header, content and status, padding the content so the
// status bar stays on the last row.
func (f Frame) Render(header, content, status string) string {
	body := lipgloss.NewStyle().Height(f.ContentHeight()).MaxHeight(f.ContentHeight()).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}
