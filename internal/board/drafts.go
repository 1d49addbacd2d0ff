package board

import (
	"fmt"
	"strings"
	"time"

	"github.com/nhle/teamboard/internal/model"
)

// ProjectDraft carries the caller-supplied fields of a new project.
type ProjectDraft struct {
	Name        string
	Description string
	Deadline    string
	Priority    string

	// MemberIDs selects roster employees to assign. Their records are
	// copied into the project at creation time.
	MemberIDs []int64
}

// TaskDraft carries the caller-supplied fields of a new task.
type TaskDraft struct {
	Text     string
	Priority string
	Deadline string
}

// MessageDraft carries a chat message without its id. An empty Timestamp
// is filled from the board's clock.
type MessageDraft struct {
	SenderID     string
	SenderName   string
	SenderAvatar string
	Text         string
	Timestamp    string
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDraft, fmt.Sprintf(format, args...))
}

func requireText(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid("%s is required", field)
	}
	return s, nil
}

func parsePriority(s string) (model.Priority, error) {
	p, err := model.ParsePriority(s)
	if err != nil {
		return "", invalid("%v", err)
	}
	return p, nil
}

func parseDeadline(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if _, err := time.Parse(model.DateLayout, s); err != nil {
		return "", invalid("deadline %q is not a YYYY-MM-DD date", s)
	}
	return s, nil
}
