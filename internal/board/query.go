package board

import (
	"sort"
	"strings"
	"time"

	"github.com/nhle/teamboard/internal/model"
)

// Stats summarizes the board for the dashboard header.
type Stats struct {
	Total             int
	Completed         int
	ActiveTasks       int
	UpcomingDeadlines int
}

// MemberStats counts an employee's projects by state.
type MemberStats struct {
	Active    int
	Completed int
}

// upcomingWindow is how far ahead a deadline counts as upcoming.
const upcomingWindow = 7 * 24 * time.Hour

// Projects returns a deep copy of the collection in insertion order.
func (b *Board) Projects() []model.Project {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshot(nil)
}

// snapshot copies the projects accepted by keep (all when nil).
// Callers hold b.mu.
func (b *Board) snapshot(keep func(model.Project) bool) []model.Project {
	out := make([]model.Project, 0, len(b.projects))
	for _, p := range b.projects {
		if keep == nil || keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Project returns a copy of the project with id.
func (b *Board) Project(id int64) (model.Project, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if i := b.indexOf(id); i >= 0 {
		return b.projects[i].Clone(), nil
	}
	return model.Project{}, ErrNotFound
}

// Employees returns the team roster.
func (b *Board) Employees() []model.Employee {
	out := make([]model.Employee, len(b.employees))
	copy(out, b.employees)
	return out
}

func matches(p model.Project, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}

// ActiveProjects returns unfinished projects whose name or description
// contains query (case-insensitive), most urgent priority first.
func (b *Board) ActiveProjects(query string) []model.Project {
	b.mu.RLock()
	out := b.snapshot(func(p model.Project) bool {
		return p.Progress < 100 && matches(p, query)
	})
	b.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() < out[j].Priority.Rank()
	})
	return out
}

// CompletedProjects returns finished projects matching query, latest
// deadline first.
func (b *Board) CompletedProjects(query string) []model.Project {
	b.mu.RLock()
	out := b.snapshot(func(p model.Project) bool {
		return p.Progress == 100 && matches(p, query)
	})
	b.mu.RUnlock()

	// YYYY-MM-DD sorts lexically; projects without a deadline go last.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Deadline > out[j].Deadline
	})
	return out
}

// SearchChats returns projects whose name contains query, for picking a
// conversation.
func (b *Board) SearchChats(query string) []model.Project {
	q := strings.ToLower(strings.TrimSpace(query))

	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshot(func(p model.Project) bool {
		return q == "" || strings.Contains(strings.ToLower(p.Name), q)
	})
}

// Stats computes dashboard counters. A deadline is upcoming when it falls
// between today and seven days from today, inclusive, on an unfinished
// project.
func (b *Board) Stats(now time.Time) Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	today := truncateDay(now)
	var s Stats
	s.Total = len(b.projects)
	for _, p := range b.projects {
		if p.Progress == 100 {
			s.Completed++
		}
		s.ActiveTasks += p.IncompleteTasks()

		if p.Progress == 100 || p.Deadline == "" {
			continue
		}
		d, err := time.ParseInLocation(model.DateLayout, p.Deadline, now.Location())
		if err != nil {
			continue
		}
		diff := d.Sub(today)
		if diff >= 0 && diff <= upcomingWindow {
			s.UpcomingDeadlines++
		}
	}
	return s
}

// EmployeeStats counts the projects the employee is assigned to.
func (b *Board) EmployeeStats(employeeID int64) MemberStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var s MemberStats
	for _, p := range b.projects {
		if !p.HasMember(employeeID) {
			continue
		}
		if p.Progress == 100 {
			s.Completed++
		} else {
			s.Active++
		}
	}
	return s
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
