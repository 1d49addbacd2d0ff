// Package gateway implements the identity sync gateway: an HTTP service
// that upserts a local profile record for each verified caller.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nhle/teamboard/internal/identity"
	"github.com/nhle/teamboard/internal/model"
	"github.com/nhle/teamboard/internal/store"
)

var (
	// ErrInvalidRequest marks a sync body that fails validation.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrStorage marks a failed upsert.
	ErrStorage = errors.New("storage error")
)

// SyncRequest is the body of POST /api/users/sync.
type SyncRequest struct {
	Email  *string `json:"email,omitempty"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar,omitempty"`
}

// Service upserts verified users.
type Service struct {
	users   store.UserStore
	metrics *Metrics
	logger  *slog.Logger
}

// NewService creates a Service. metrics may be nil.
func NewService(users store.UserStore, metrics *Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, metrics: metrics, logger: logger}
}

// Sync stores the profile for subject, replacing any previous record.
// The upsert is attempted once; callers decide whether to retry.
func (s *Service) Sync(ctx context.Context, subject string, req SyncRequest) (model.VerifiedUser, error) {
	if subject == "" {
		s.metrics.syncOutcome("unauthenticated")
		return model.VerifiedUser{}, fmt.Errorf("%w: missing subject", identity.ErrUnauthenticated)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		s.metrics.syncOutcome("invalid")
		return model.VerifiedUser{}, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}

	u := model.VerifiedUser{
		ClerkID: subject,
		Name:    name,
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Avatar != nil {
		u.Avatar = *req.Avatar
	}

	stored, err := s.users.UpsertUser(ctx, u)
	if err != nil {
		s.metrics.syncOutcome("error")
		s.logger.Error("user sync failed", "clerk_id", subject, "error", err)
		return model.VerifiedUser{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.metrics.syncOutcome("ok")
	s.logger.Info("user synced", "clerk_id", subject)
	return stored, nil
}
