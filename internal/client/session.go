package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/nhle/teamboard/internal/identity"
)

// Gateway is the subset of Client used by the syncer.
type Gateway interface {
	SyncUser(ctx context.Context, req SyncRequest) (SyncResponse, error)
}

// Session is the signed-in user as the terminal app sees it.
type Session struct {
	// ID identifies this app session in logs.
	ID      string
	Subject string
	Name    string
	Email   string
	Avatar  string
}

// NewSession derives the session user from a bearer credential's claims.
// The signature is not checked here; the gateway does that.
func NewSession(token string) (Session, error) {
	claims, err := identity.ParseUnverified(token)
	if err != nil {
		return Session{}, fmt.Errorf("reading credential: %w", err)
	}
	p := claims.Profile()
	return Session{
		ID:      uuid.NewString(),
		Subject: claims.Subject,
		Name:    p.DisplayName(),
		Email:   p.Email,
		Avatar:  p.Avatar,
	}, nil
}

// SyncRequest returns the profile body sent to the gateway.
func (s Session) SyncRequest() SyncRequest {
	return SyncRequest{Email: s.Email, Name: s.Name, Avatar: s.Avatar}
}

// SessionSyncer pushes the signed-in profile to the gateway at most once
// per credential. Failures are reported but not retried for the same
// credential.
type SessionSyncer struct {
	gateway Gateway
	logger  *slog.Logger

	mu       sync.Mutex
	attempts map[string]struct{}
}

// NewSessionSyncer creates a SessionSyncer.
func NewSessionSyncer(gw Gateway, logger *slog.Logger) *SessionSyncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionSyncer{gateway: gw, logger: logger, attempts: make(map[string]struct{})}
}

// Sync calls the gateway for token unless it has already been tried.
// The bool reports whether a call was made.
func (s *SessionSyncer) Sync(ctx context.Context, token string) (Session, bool, error) {
	sess, err := NewSession(token)
	if err != nil {
		return Session{}, false, err
	}

	s.mu.Lock()
	if _, done := s.attempts[token]; done {
		s.mu.Unlock()
		return sess, false, nil
	}
	s.attempts[token] = struct{}{}
	s.mu.Unlock()

	resp, err := s.gateway.SyncUser(ctx, sess.SyncRequest())
	if err != nil {
		s.logger.Warn("session sync failed", "session", sess.ID, "subject", sess.Subject, "error", err)
		return sess, true, fmt.Errorf("syncing user: %w", err)
	}
	s.logger.Info("session synced", "session", sess.ID, "subject", resp.User.ClerkID)
	return sess, true, nil
}
