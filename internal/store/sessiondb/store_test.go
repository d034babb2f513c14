package sessiondb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionStore(t *testing.T) *SessionStore {
	t.Helper()
	store, err := NewSessionStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSessionRoundTrip(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	token, err := store.Create(ctx, "user-1", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, ok, err := store.ResolveUser(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "user-1", userID)
}

func TestResolveUnknownToken(t *testing.T) {
	store := newTestSessionStore(t)

	_, ok, err := store.ResolveUser(context.Background(), "not-a-token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveEmptyToken(t *testing.T) {
	store := newTestSessionStore(t)

	_, ok, err := store.ResolveUser(context.Background(), "  ")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpiredSessionNotResolved(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	token, err := store.Create(ctx, "user-1", -time.Minute)
	require.NoError(t, err)

	_, ok, err := store.ResolveUser(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteSession(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	token, err := store.Create(ctx, "user-1", time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, token))

	_, ok, err := store.ResolveUser(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPurgeExpired(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "user-1", -time.Minute)
	require.NoError(t, err)
	live, err := store.Create(ctx, "user-2", time.Hour)
	require.NoError(t, err)

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, ok, err := store.ResolveUser(ctx, live)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateRequiresUserID(t *testing.T) {
	store := newTestSessionStore(t)

	_, err := store.Create(context.Background(), "", time.Hour)
	assert.Error(t, err)
}
