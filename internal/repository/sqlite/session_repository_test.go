package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dev-answer/internal/domain"
)

func TestSessionRepositoryRoundtrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	users := NewUserRepository(db)
	require.NoError(t, users.Init(ctx))
	repo := NewSessionRepository(db)
	require.NoError(t, repo.Init(ctx))

	user := newTestUser("a@x.com")
	_, err := users.Create(ctx, user)
	require.NoError(t, err)

	now := time.Now().UTC()
	session := &domain.Session{
		Token:     "tok-1",
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.Get(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.UserID)

	require.NoError(t, repo.Delete(ctx, "tok-1"))

	_, err = repo.Get(ctx, "tok-1")
	require.ErrorContains(t, err, "not found")

	// deleting twice is fine
	require.NoError(t, repo.Delete(ctx, "tok-1"))
}
