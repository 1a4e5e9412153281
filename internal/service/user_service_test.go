package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"dev-answer/internal/repository"
	"dev-answer/internal/repository/sqlite"
)

func newTestRepos(t *testing.T) (repository.UserRepository, repository.SessionRepository, *sql.DB) {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	users := sqlite.NewUserRepository(db)
	require.NoError(t, users.Init(ctx))
	sessions := sqlite.NewSessionRepository(db)
	require.NoError(t, sessions.Init(ctx))
	return users, sessions, db
}

func TestRegisterThenAuthenticate(t *testing.T) {
	users, _, _ := newTestRepos(t)
	svc := NewUserService(users)
	ctx := context.Background()

	user, err := svc.Register(ctx, "a@x.com", "Ada Lovelace", "password1")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Empty(t, user.PasswordHash, "returned user must not carry the hash")

	got, err := svc.Authenticate(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestAuthenticateFailureIsUniform(t *testing.T) {
	users, _, _ := newTestRepos(t)
	svc := NewUserService(users)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "Ada", "password1")
	require.NoError(t, err)

	_, wrongPass := svc.Authenticate(ctx, "a@x.com", "password2")
	require.ErrorIs(t, wrongPass, ErrInvalidCredentials)

	_, noUser := svc.Authenticate(ctx, "ghost@x.com", "password1")
	require.ErrorIs(t, noUser, ErrInvalidCredentials)

	// unknown email and wrong password are indistinguishable
	require.Equal(t, wrongPass.Error(), noUser.Error())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users, _, _ := newTestRepos(t)
	svc := NewUserService(users)
	ctx := context.Background()

	first, err := svc.Register(ctx, "a@x.com", "Ada", "password1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "a@x.com", "Eve", "password2")
	require.ErrorIs(t, err, ErrDuplicateEmail)

	// first user can still log in with the original password
	got, err := svc.Authenticate(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)
	require.Equal(t, "Ada", got.FullName)
}

func TestRegisterValidation(t *testing.T) {
	users, _, _ := newTestRepos(t)
	svc := NewUserService(users)
	ctx := context.Background()

	_, err := svc.Register(ctx, "not-an-email", "Ada", "password1")
	require.Error(t, err)

	_, err = svc.Register(ctx, "a@x.com", "", "password1")
	require.Error(t, err)

	_, err = svc.Register(ctx, "a@x.com", "Ada", "short")
	require.Error(t, err)
}

func TestUpdateProfile(t *testing.T) {
	users, _, _ := newTestRepos(t)
	svc := NewUserService(users)
	ctx := context.Background()

	user, err := svc.Register(ctx, "a@x.com", "Ada", "password1")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, "Ada L.", "ada@x.com", "")
	require.NoError(t, err)
	require.Equal(t, "Ada L.", updated.FullName)
	require.Equal(t, "ada@x.com", updated.Email)

	// password unchanged
	_, err = svc.Authenticate(ctx, "ada@x.com", "password1")
	require.NoError(t, err)
}

func TestUpdateProfileWithNewPassword(t *testing.T) {
	users, _, _ := newTestRepos(t)
	svc := NewUserService(users)
	ctx := context.Background()

	user, err := svc.Register(ctx, "a@x.com", "Ada", "password1")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, user.ID, "Ada", "a@x.com", "password2")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "a@x.com", "password1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "a@x.com", "password2")
	require.NoError(t, err)
}

func TestUpdateProfileCollisionAndNotFound(t *testing.T) {
	users, _, _ := newTestRepos(t)
	svc := NewUserService(users)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "Ada", "password1")
	require.NoError(t, err)
	second, err := svc.Register(ctx, "b@x.com", "Bob", "password1")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, second.ID, "Bob", "a@x.com", "")
	require.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = svc.UpdateProfile(ctx, 999, "Ghost", "ghost@x.com", "")
	require.ErrorIs(t, err, ErrUserNotFound)
}
