package model

import (
	"fmt"
	"strings"
)

// Priority is the urgency label shared by projects and tasks.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists the valid priorities from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities for sorting: High sorts first, unknown values last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// ParsePriority accepts a priority label case-insensitively.
// An empty string yields PriorityMedium.
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PriorityMedium, nil
	}
	for _, p := range Priorities {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// Task is a unit of work inside a project. Its completion feeds the
// project's progress percentage.
type Task struct {
	// ID is unique within the owning project.
	ID int64 `json:"id" yaml:"id"`

	// Text is the task's label.
	Text string `json:"text" yaml:"text"`

	// Completed marks the task as done.
	Completed bool `json:"completed" yaml:"completed"`

	// Priority is the task's own urgency, independent of the project's.
	Priority Priority `json:"priority" yaml:"priority"`

	// Deadline is an optional calendar date (YYYY-MM-DD).
	Deadline string `json:"deadline,omitempty" yaml:"deadline,omitempty"`

	// Subtasks never influence Completed or the project's progress.
	Subtasks []Subtask `json:"subtasks" yaml:"subtasks"`
}

// Subtask is a checklist entry under a task.
type Subtask struct {
	ID        int64  `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	c.Subtasks = make([]Subtask, len(t.Subtasks))
	copy(c.Subtasks, t.Subtasks)
	return c
}

// SubtaskProgress returns completed and total subtask counts.
func (t Task) SubtaskProgress() (done, total int) {
	for _, s := range t.Subtasks {
		if s.Completed {
			done++
		}
	}
	return done, len(t.Subtasks)
}
