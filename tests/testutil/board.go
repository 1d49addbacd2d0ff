package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nhle/teamboard/internal/board"
	"github.com/nhle/teamboard/internal/store"
)

// NewTestBoard opens a seeded board over an in-memory store with a clock
// frozen at now.
func NewTestBoard(t *testing.T, now time.Time) (*board.Board, *store.MemoryStore) {
	t.Helper()

	slot := store.NewMemoryStore()
	b, err := board.Open(context.Background(), slot,
		board.WithClock(NewFixedClock(now).Now),
		board.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("opening test board: %v", err)
	}
	return b, slot
}
