// Package board holds the project/task/subtask/chat collection, keeps each
// project's progress in step with task completion, and mirrors the whole
// collection to a store slot after every mutation.
package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nhle/teamboard/internal/model"
	"github.com/nhle/teamboard/internal/store"
)

var (
	// ErrNotFound is returned by lookups. Mutations never return it:
	// unknown ids leave the collection unchanged.
	ErrNotFound = errors.New("not found")

	// ErrInvalidDraft wraps validation failures on new entities.
	ErrInvalidDraft = errors.New("invalid draft")

	// ErrPersist wraps slot write failures. The in-memory change has
	// already been applied when it is returned.
	ErrPersist = errors.New("persisting projects")
)

// Board is the project store. It is safe for concurrent use; mutations
// are applied in call order.
type Board struct {
	mu        sync.RWMutex
	projects  []model.Project
	employees []model.Employee

	slot   store.SlotStore
	key    string
	ids    *IDSource
	now    Clock
	logger *slog.Logger
}

// Option configures a Board.
type Option func(*Board)

// WithClock sets the clock used for ids and message timestamps.
func WithClock(c Clock) Option {
	return func(b *Board) { b.now = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Board) { b.logger = l }
}

// WithSlotKey overrides the slot key, store.ProjectsSlot by default.
func WithSlotKey(key string) Option {
	return func(b *Board) { b.key = key }
}

// Open loads the collection from slot. An empty slot, or one that does not
// decode to a project array, is replaced with the seed projects, which are
// written back immediately.
func Open(ctx context.Context, slot store.SlotStore, opts ...Option) (*Board, error) {
	b := &Board{
		slot:   slot,
		key:    store.ProjectsSlot,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.ids = NewIDSource(b.now)

	employees, err := Roster()
	if err != nil {
		return nil, err
	}
	b.employees = employees

	projects, seeded, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	b.projects = projects
	b.ids.Observe(maxID(projects))

	if seeded {
		if err := b.persist(ctx); err != nil {
			// The seed is still usable; the next mutation retries the write.
			b.logger.Warn("writing seed projects", "error", err)
		}
	}

	b.logger.Debug("board opened", "projects", len(projects), "seeded", seeded)
	return b, nil
}

// load returns the stored projects, or the seed and true when the slot is
// empty or malformed.
func (b *Board) load(ctx context.Context) ([]model.Project, bool, error) {
	raw, err := b.slot.LoadSlot(ctx, b.key)
	if errors.Is(err, store.ErrSlotEmpty) {
		seed, err := SeedProjects()
		return seed, true, err
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading projects: %w", err)
	}

	var projects []model.Project
	if err := json.Unmarshal(raw, &projects); err != nil || projects == nil {
		b.logger.Warn("saved projects unreadable, restoring seed", "error", err, "bytes", len(raw))
		seed, err := SeedProjects()
		return seed, true, err
	}
	normalize(projects)
	return projects, false, nil
}

// persist writes the whole collection. Callers hold b.mu.
func (b *Board) persist(ctx context.Context) error {
	data, err := json.Marshal(b.projects)
	if err != nil {
		return fmt.Errorf("%w: encoding: %v", ErrPersist, err)
	}
	if err := b.slot.SaveSlot(ctx, b.key, data); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// indexOf returns the position of project id, or -1. Callers hold b.mu.
func (b *Board) indexOf(id int64) int {
	for i := range b.projects {
		if b.projects[i].ID == id {
			return i
		}
	}
	return -1
}

// task returns a pointer to the task, or nil. Callers hold b.mu.
func (b *Board) task(projectID, taskID int64) *model.Task {
	i := b.indexOf(projectID)
	if i < 0 {
		return nil
	}
	for j := range b.projects[i].Tasks {
		if b.projects[i].Tasks[j].ID == taskID {
			return &b.projects[i].Tasks[j]
		}
	}
	return nil
}

// === Projects ===

// AddProject appends a project with a fresh id, zero progress and no tasks.
func (b *Board) AddProject(ctx context.Context, d ProjectDraft) (model.Project, error) {
	name, err := requireText("project name", d.Name)
	if err != nil {
		return model.Project{}, err
	}
	priority, err := parsePriority(d.Priority)
	if err != nil {
		return model.Project{}, err
	}
	deadline, err := parseDeadline(d.Deadline)
	if err != nil {
		return model.Project{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	team, err := b.members(d.MemberIDs)
	if err != nil {
		return model.Project{}, err
	}

	p := model.Project{
		ID:          b.ids.Next(),
		Name:        name,
		Description: d.Description,
		Deadline:    deadline,
		Priority:    priority,
		Progress:    0,
		Tasks:       []model.Task{},
		Chat:        []model.ChatMessage{},
		AssignedTo:  team,
	}
	b.projects = append(b.projects, p)
	b.logger.Info("project added", "project_id", p.ID, "name", p.Name)

	return p.Clone(), b.persist(ctx)
}

// members copies the roster entries for ids. Callers hold b.mu.
func (b *Board) members(ids []int64) ([]model.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	team := make([]model.Employee, 0, len(ids))
	for _, id := range ids {
		found := false
		for _, e := range b.employees {
			if e.ID == id {
				team = append(team, e)
				found = true
				break
			}
		}
		if !found {
			return nil, invalid("unknown employee %d", id)
		}
	}
	return team, nil
}

// DeleteProject removes the project with id, if present.
func (b *Board) DeleteProject(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i := b.indexOf(id); i >= 0 {
		b.projects = append(b.projects[:i], b.projects[i+1:]...)
		b.logger.Info("project deleted", "project_id", id)
	}
	return b.persist(ctx)
}

// CompleteProject sets progress to 100, marks every task completed and
// sets the Completed status. Subtasks are left as they are.
func (b *Board) CompleteProject(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i := b.indexOf(id); i >= 0 {
		p := &b.projects[i]
		for j := range p.Tasks {
			p.Tasks[j].Completed = true
		}
		p.Progress = 100
		p.Status = model.ProjectStatusCompleted
		b.logger.Info("project completed", "project_id", id)
	}
	return b.persist(ctx)
}

// === Tasks ===

// AddTask appends an incomplete task to the project, then recomputes
// progress for every project.
func (b *Board) AddTask(ctx context.Context, projectID int64, d TaskDraft) error {
	text, err := requireText("task text", d.Text)
	if err != nil {
		return err
	}
	priority, err := parsePriority(d.Priority)
	if err != nil {
		return err
	}
	deadline, err := parseDeadline(d.Deadline)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if i := b.indexOf(projectID); i >= 0 {
		b.projects[i].Tasks = append(b.projects[i].Tasks, model.Task{
			ID:       b.ids.Next(),
			Text:     text,
			Priority: priority,
			Deadline: deadline,
			Subtasks: []model.Subtask{},
		})
	}
	recomputeAll(b.projects)
	return b.persist(ctx)
}

// ToggleTask flips the task's completion, then recomputes progress for
// every project.
func (b *Board) ToggleTask(ctx context.Context, projectID, taskID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t := b.task(projectID, taskID); t != nil {
		t.Completed = !t.Completed
	}
	recomputeAll(b.projects)
	return b.persist(ctx)
}

// === Subtasks ===

// AddSubtask appends an incomplete subtask. Progress is not recomputed.
func (b *Board) AddSubtask(ctx context.Context, projectID, taskID int64, text string) error {
	text, err := requireText("subtask text", text)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if t := b.task(projectID, taskID); t != nil {
		t.Subtasks = append(t.Subtasks, model.Subtask{ID: b.ids.Next(), Text: text})
	}
	return b.persist(ctx)
}

// ToggleSubtask flips the subtask's completion. The parent task and the
// project's progress are unaffected.
func (b *Board) ToggleSubtask(ctx context.Context, projectID, taskID, subtaskID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t := b.task(projectID, taskID); t != nil {
		for k := range t.Subtasks {
			if t.Subtasks[k].ID == subtaskID {
				t.Subtasks[k].Completed = !t.Subtasks[k].Completed
				break
			}
		}
	}
	return b.persist(ctx)
}

// === Chat ===

// AddMessage appends a message with a fresh id to the project's chat.
func (b *Board) AddMessage(ctx context.Context, projectID int64, d MessageDraft) error {
	text, err := requireText("message text", d.Text)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if i := b.indexOf(projectID); i >= 0 {
		ts := d.Timestamp
		if ts == "" {
			ts = b.now().UTC().Format(model.TimestampLayout)
		}
		b.projects[i].Chat = append(b.projects[i].Chat, model.ChatMessage{
			ID:           b.ids.Next(),
			SenderID:     d.SenderID,
			SenderName:   d.SenderName,
			SenderAvatar: d.SenderAvatar,
			Text:         text,
			Timestamp:    ts,
		})
	}
	return b.persist(ctx)
}
