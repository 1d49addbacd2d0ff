package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestFrame_HeaderShowsSectionCountsAndSession(t *testing.T) {
	f := NewFrame(100, 30)

	out := f.RenderHeader(Header{Section: "Projects", Active: 3, Completed: 1, Upcoming: 2, Session: "Ann Lee · synced"})

	assert.Contains(t, out, "Teamboard › Projects")
	assert.Contains(t, out, "3 active · 1 done · 2 due soon")
	assert.Contains(t, out, "Ann Lee · synced")
	assert.Equal(t, 100, lipgloss.Width(out))
}

func TestFrame_HeaderOmitsZeroUpcoming(t *testing.T) {
	out := NewFrame(100, 30).RenderHeader(Header{Active: 2, Session: "guest"})
	assert.Contains(t, out, "2 active · 0 done")
	assert.NotContains(t, out, "due soon")
	assert.NotContains(t, out, "›")
}

func TestFrame_NarrowHeaderDropsCounts(t *testing.T) {
	out := NewFrame(30, 10).RenderHeader(Header{Section: "Projects", Active: 2, Session: "guest"})
	assert.NotContains(t, out, "active")
	assert.Contains(t, out, "guest")
}

func TestFrame_StatusShowsNotice(t *testing.T) {
	f := NewFrame(80, 20)

	out := f.RenderStatus(Status{Hints: "q quit", Notice: "Task added"})
	assert.Contains(t, out, "q quit")
	assert.Contains(t, out, "Task added")
	assert.Equal(t, 80, lipgloss.Width(out))

	assert.NotContains(t, f.RenderStatus(Status{Hints: "q quit"}), "Task added")
}

func TestFrame_RenderKeepsStatusOnLastRow(t *testing.T) {
	f := NewFrame(40, 10)

	out := f.Render("HEAD", "one\ntwo", "STATUS")
	lines := strings.Split(out, "\n")

	assert.Len(t, lines, 10)
	assert.True(t, strings.HasPrefix(lines[0], "HEAD"))
	assert.True(t, strings.HasPrefix(lines[9], "STATUS"))
	assert.Equal(t, 8, f.ContentHeight())
}
