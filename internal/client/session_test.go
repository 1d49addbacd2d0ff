package client_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamboard/internal/client"
	"github.com/nhle/teamboard/internal/identity"
)

type fakeGateway struct {
	calls []client.SyncRequest
	err   error
}

func (f *fakeGateway) SyncUser(_ context.Context, req client.SyncRequest) (client.SyncResponse, error) {
	f.calls = append(f.calls, req)
	return client.SyncResponse{}, f.err
}

func TestNewSession_DerivesProfile(t *testing.T) {
	tok := mint(t, "user_7", identity.Profile{Email: "ann.lee@example.com", Avatar: "https://img/a.png"})

	sess, err := client.NewSession(tok)
	require.NoError(t, err)
	assert.Equal(t, "user_7", sess.Subject)
	assert.Equal(t, "ann.lee", sess.Name)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, client.SyncRequest{
		Email: "ann.lee@example.com", Name: "ann.lee", Avatar: "https://img/a.png",
	}, sess.SyncRequest())
}

func TestSessionSyncer_OncePerCredential(t *testing.T) {
	gw := &fakeGateway{}
	s := client.NewSessionSyncer(gw, nil)
	tok := mint(t, "user_1", identity.Profile{FullName: "Ann Lee"})

	_, called, err := s.Sync(context.Background(), tok)
	require.NoError(t, err)
	assert.True(t, called)

	_, called, err = s.Sync(context.Background(), tok)
	require.NoError(t, err)
	assert.False(t, called)
	require.Len(t, gw.calls, 1)
	assert.Equal(t, "Ann Lee", gw.calls[0].Name)

	other := mint(t, "user_2", identity.Profile{FullName: "Bob"})
	_, called, err = s.Sync(context.Background(), other)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Len(t, gw.calls, 2)
}

func TestSessionSyncer_FailureIsNotRetried(t *testing.T) {
	gw := &fakeGateway{err: errors.New("connection refused")}
	s := client.NewSessionSyncer(gw, nil)
	tok := mint(t, "user_1", identity.Profile{})

	sess, called, err := s.Sync(context.Background(), tok)
	assert.True(t, called)
	assert.Error(t, err)
	assert.Equal(t, "User", sess.Name)

	_, called, err = s.Sync(context.Background(), tok)
	assert.False(t, called)
	assert.NoError(t, err)
	assert.Len(t, gw.calls, 1)
}

func TestSessionSyncer_MalformedToken(t *testing.T) {
	gw := &fakeGateway{}
	_, called, err := client.NewSessionSyncer(gw, nil).Sync(context.Background(), "junk")
	assert.Error(t, err)
	assert.False(t, called)
	assert.Empty(t, gw.calls)
}
