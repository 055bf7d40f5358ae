package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Inshorts/internal/auth"
	"Inshorts/internal/models"
	"Inshorts/internal/sessions"
)

// These tests need a scratch database: TEST_DATABASE_URL=postgres://...
func testStore(t *testing.T, ttl time.Duration) *SessionStore {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	conn, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, Migrate(ctx, conn))
	return NewSessionStore(conn, ttl)
}

func TestSessionStoreRoundTrip(t *testing.T) {
	s := testStore(t, time.Hour)
	ctx := context.Background()
	id := uuid.NewString()

	_, err := s.Load(ctx, id)
	assert.ErrorIs(t, err, sessions.ErrNotFound)

	st := &sessions.State{
		Session: auth.Snapshot{Principal: &models.User{Username: "ana", Roles: []string{models.RoleAdmin}}, Probed: true},
		Cookies: []sessions.Cookie{{Name: "JSESSIONID", Value: "abc"}},
	}
	require.NoError(t, s.Save(ctx, id, st))
	require.NoError(t, s.Save(ctx, id, st))

	got, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, st, got)
}

func TestSessionStoreExpiry(t *testing.T) {
	s := testStore(t, -time.Second)
	ctx := context.Background()
	id := uuid.NewString()

	require.NoError(t, s.Save(ctx, id, &sessions.State{}))
	_, err := s.Load(ctx, id)
	assert.ErrorIs(t, err, sessions.ErrNotFound)

	n, err := s.Prune(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))
}
