//go:build integration

package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamboard/internal/model"
	"github.com/nhle/teamboard/internal/store"
)

var testStore *UserStore

func TestMain(m *testing.M) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		fmt.Fprintln(os.Stderr, "MONGODB_TEST_URI is required")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	s, err := Connect(ctx, uri, "teamboard_test_"+uuid.NewString()[:8])
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "mongodb not ready:", err)
		os.Exit(1)
	}
	testStore = s

	code := m.Run()

	_ = testStore.coll.Database().Drop(context.Background())
	_ = testStore.Close()
	os.Exit(code)
}

func TestUserStore_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	u := model.VerifiedUser{ClerkID: "user_" + uuid.NewString(), Email: "a@x.io", Name: "Ann"}

	first, err := testStore.UpsertUser(ctx, u)
	require.NoError(t, err)
	second, err := testStore.UpsertUser(ctx, u)
	require.NoError(t, err)

	assert.Equal(t, first.Email, second.Email)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())

	n, err := testStore.coll.CountDocuments(ctx, map[string]string{"clerkId": u.ClerkID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestUserStore_UpsertReplacesFields(t *testing.T) {
	ctx := context.Background()
	id := "user_" + uuid.NewString()

	_, err := testStore.UpsertUser(ctx, model.VerifiedUser{ClerkID: id, Email: "a@x.io", Name: "Ann", Avatar: "a.png"})
	require.NoError(t, err)

	got, err := testStore.UpsertUser(ctx, model.VerifiedUser{ClerkID: id, Name: "Ann B"})
	require.NoError(t, err)
	assert.Equal(t, "", got.Email)
	assert.Equal(t, "Ann B", got.Name)
	assert.Equal(t, "", got.Avatar)
}

func TestUserStore_GetUserMissing(t *testing.T) {
	_, err := testStore.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}
