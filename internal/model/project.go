package model

import "encoding/json"

// ProjectStatusCompleted is set on a project by CompleteProject.
const ProjectStatusCompleted = "Completed"

// DateLayout is the calendar-date format used for deadlines.
const DateLayout = "2006-01-02"

// Project is the top-level unit of work on the board.
type Project struct {
	ID          int64    `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Deadline    string   `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	Priority    Priority `json:"priority" yaml:"priority"`

	// Progress is derived from Tasks; see board.Progress.
	Progress int    `json:"progress" yaml:"progress"`
	Status   string `json:"status,omitempty" yaml:"status,omitempty"`

	Tasks      []Task        `json:"tasks" yaml:"tasks"`
	Chat       []ChatMessage `json:"chat,omitempty" yaml:"chat,omitempty"`
	AssignedTo []Employee    `json:"assignedTo,omitempty" yaml:"assignedTo,omitempty"`
}

// MarshalJSON writes "chat" whenever the slice is non-nil, so a project
// created with an empty chat persists as "chat":[] while projects that never
// had one omit the key.
func (p Project) MarshalJSON() ([]byte, error) {
	type plain Project
	if p.Chat == nil {
		return json.Marshal(plain(p))
	}
	return json.Marshal(struct {
		plain
		Chat []ChatMessage `json:"chat"`
	}{plain: plain(p), Chat: p.Chat})
}

// Clone returns a deep copy of the project, safe to hand to callers
// outside the board's lock.
func (p Project) Clone() Project {
	c := p
	c.Tasks = make([]Task, len(p.Tasks))
	for i, t := range p.Tasks {
		c.Tasks[i] = t.Clone()
	}
	if p.Chat != nil {
		c.Chat = make([]ChatMessage, len(p.Chat))
		copy(c.Chat, p.Chat)
	}
	if p.AssignedTo != nil {
		c.AssignedTo = make([]Employee, len(p.AssignedTo))
		copy(c.AssignedTo, p.AssignedTo)
	}
	return c
}

// IsCompleted reports whether every task is done, as reflected by progress.
func (p Project) IsCompleted() bool {
	return p.Progress == 100
}

// IncompleteTasks counts tasks not yet completed.
func (p Project) IncompleteTasks() int {
	n := 0
	for _, t := range p.Tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}

// HasMember reports whether the employee is assigned to the project.
func (p Project) HasMember(employeeID int64) bool {
	for _, e := range p.AssignedTo {
		if e.ID == employeeID {
			return true
		}
	}
	return false
}
