package store

import (
	"context"
	"sync"
	"time"

	"github.com/nhle/teamboard/internal/model"
)

// MemoryStore keeps slots and users in process memory. It backs tests and
// the --ephemeral mode of the CLI.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
	users map[string]model.VerifiedUser

	// FailWith, when non-nil, is returned by every write.
	FailWith error
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		slots: make(map[string][]byte),
		users: make(map[string]model.VerifiedUser),
	}
}

func (m *MemoryStore) LoadSlot(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.slots[key]
	if !ok {
		return nil, ErrSlotEmpty
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStore) SaveSlot(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return m.FailWith
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.slots[key] = v
	return nil
}

func (m *MemoryStore) UpsertUser(_ context.Context, u model.VerifiedUser) (model.VerifiedUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return model.VerifiedUser{}, m.FailWith
	}

	now := time.Now().UTC()
	if existing, ok := m.users[u.ClerkID]; ok {
		u.CreatedAt = existing.CreatedAt
	} else {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	m.users[u.ClerkID] = u
	return u, nil
}

func (m *MemoryStore) GetUser(_ context.Context, clerkID string) (*model.VerifiedUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[clerkID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// UserCount returns the number of stored users.
func (m *MemoryStore) UserCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

func (m *MemoryStore) Close() error { return nil }
