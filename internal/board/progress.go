package board

import "github.com/nhle/teamboard/internal/model"

// Progress returns round(100*completed/total), or 0 when total is 0.
// Halves round up, so 1/8 gives 13 and 1/200 gives 1.
func Progress(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*completed + total) / (2 * total)
}

// projectProgress applies Progress to a project's tasks.
func projectProgress(p model.Project) int {
	done := 0
	for _, t := range p.Tasks {
		if t.Completed {
			done++
		}
	}
	return Progress(done, len(p.Tasks))
}

// recomputeAll refreshes progress on every project.
func recomputeAll(projects []model.Project) {
	for i := range projects {
		projects[i].Progress = projectProgress(projects[i])
	}
}
