package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore pointing at it
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client, time.Hour)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return store, mr, cleanup
}

func TestSaveAndLoadSession(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	session := &domain.PersistedSession{
		User:          &domain.User{ID: 7, Email: "a@b.c", Name: "Ann"},
		Authenticated: true,
	}

	require.NoError(t, store.SaveSession(ctx, "ws-1", session))

	loaded, err := store.LoadSession(ctx, "ws-1")
	require.NoError(t, err)
	assert.True(t, loaded.Authenticated)
	require.NotNil(t, loaded.User)
	assert.Equal(t, int64(7), loaded.User.ID)
	assert.Equal(t, "Ann", loaded.User.Name)
}

func TestLoadSession_NotFound(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()

	result, err := store.LoadSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, result)
}

func TestLoadSession_InvalidJSON(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, mr.Set(sessionKey("ws-1"), "{not json"))

	result, err := store.LoadSession(context.Background(), "ws-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Nil(t, result)
}

func TestSaveSession_SetsTTL(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, store.SaveSession(context.Background(), "ws-1", &domain.PersistedSession{}))

	assert.Equal(t, time.Hour, mr.TTL(sessionKey("ws-1")))

	mr.FastForward(2 * time.Hour)
	_, err := store.LoadSession(context.Background(), "ws-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearSession(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.SaveSession(ctx, "ws-1", &domain.PersistedSession{}))
	require.NoError(t, store.ClearSession(ctx, "ws-1"))

	assert.False(t, mr.Exists(sessionKey("ws-1")))
}

func TestTokenRoundTrip(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.SaveToken(ctx, "ws-1", "jwt-value"))

	token, err := store.LoadToken(ctx, "ws-1")
	require.NoError(t, err)
	assert.Equal(t, "jwt-value", token)

	require.NoError(t, store.ClearToken(ctx, "ws-1"))
	assert.False(t, mr.Exists(tokenKey("ws-1")))

	_, err = store.LoadToken(ctx, "ws-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionAndTokenKeysAreSeparate(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.SaveToken(ctx, "ws-1", "jwt-value"))
	require.NoError(t, store.ClearSession(ctx, "ws-1"))

	token, err := store.LoadToken(ctx, "ws-1")
	require.NoError(t, err)
	assert.Equal(t, "jwt-value", token)
}

func TestRedisUnavailable(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	mr.Close()

	_, err := store.LoadSession(context.Background(), "ws-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
