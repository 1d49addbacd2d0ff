package store

import (
	"context"
	"errors"

	"github.com/nhle/teamboard/internal/model"
)

// ProjectsSlot is the slot key holding the board's serialized project list.
const ProjectsSlot = "projects"

// ErrSlotEmpty is returned by LoadSlot when nothing has been saved under the key.
var ErrSlotEmpty = errors.New("slot empty")

// ErrUserNotFound is returned by GetUser when no record exists for the subject.
var ErrUserNotFound = errors.New("user not found")

// SlotStore persists opaque blobs under string keys. The board writes its
// whole project collection to a single slot after every mutation.
type SlotStore interface {
	LoadSlot(ctx context.Context, key string) ([]byte, error)
	SaveSlot(ctx context.Context, key string, value []byte) error
}

// UserStore persists verified users keyed by their identity-provider subject.
type UserStore interface {
	// UpsertUser replaces email, name and avatar for u.ClerkID, creating
	// the record when absent, and returns the stored record.
	UpsertUser(ctx context.Context, u model.VerifiedUser) (model.VerifiedUser, error)
	GetUser(ctx context.Context, clerkID string) (*model.VerifiedUser, error)
}

// Store defines the persistence interface for the board slot and
// verified users.
type Store interface {
	// === Slots ===

	SlotStore

	// === Users ===

	UserStore

	Close() error
}
