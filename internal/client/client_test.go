package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamboard/internal/client"
	"github.com/nhle/teamboard/internal/gateway"
	"github.com/nhle/teamboard/internal/identity"
	"github.com/nhle/teamboard/internal/store"
)

var secret = []byte("client-test-secret")

func startGateway(t *testing.T) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	verifier, err := identity.NewHMACVerifier(secret)
	require.NoError(t, err)
	users := store.NewMemoryStore()
	h := gateway.NewHandler(gateway.NewService(users, nil, nil), verifier, gateway.HandlerConfig{}, nil)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv, users
}

func mint(t *testing.T, subject string, p identity.Profile) string {
	t.Helper()
	tok, err := identity.Mint(secret, subject, p, "", time.Now(), time.Hour)
	require.NoError(t, err)
	return tok
}

func TestClient_SyncUser(t *testing.T) {
	srv, users := startGateway(t)
	c := client.NewClient(srv.URL+"/", mint(t, "user_1", identity.Profile{}), time.Second)

	resp, err := c.SyncUser(context.Background(), client.SyncRequest{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "User synced successfully", resp.Message)
	assert.Equal(t, "user_1", resp.User.ClerkID)
	assert.Equal(t, 1, users.UserCount())

	prot, err := c.Protected(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user_1", prot.UserID)
}

func TestClient_Unauthenticated(t *testing.T) {
	srv, _ := startGateway(t)
	c := client.NewClient(srv.URL, "not-a-token", time.Second)

	_, err := c.SyncUser(context.Background(), client.SyncRequest{Name: "Ann"})
	assert.ErrorIs(t, err, client.ErrUnauthenticated)
}

func TestClient_BadRequest(t *testing.T) {
	srv, _ := startGateway(t)
	c := client.NewClient(srv.URL, mint(t, "user_1", identity.Profile{}), time.Second)

	_, err := c.SyncUser(context.Background(), client.SyncRequest{Name: ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing required user name")
}

func TestClient_RetriesOn429(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok","userId":"u"}`))
	}))
	t.Cleanup(srv.Close)

	c := client.NewClient(srv.URL, "tok", time.Second)
	resp, err := c.Protected(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u", resp.UserID)
	assert.EqualValues(t, 2, calls.Load())
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	c := client.NewClient(srv.URL, "tok", time.Second, client.WithMaxRetries(1))
	_, err := c.Protected(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries")
}
