package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"dev-answer/internal/domain"
	"dev-answer/internal/repository"
)

type recordingMailer struct {
	sent chan string
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{sent: make(chan string, 1)}
}

func (m *recordingMailer) SendPasswordReset(to, link string) error {
	m.sent <- link
	return nil
}

func newResetFixture(t *testing.T, tokenTTL time.Duration) (ResetService, UserService, repository.UserRepository, *recordingMailer) {
	t.Helper()

	users, _, _ := newTestRepos(t)
	accounts := NewUserService(users)
	mailer := newRecordingMailer()
	resets := NewResetService(users, accounts, mailer, logrus.New(), "test-secret", tokenTTL, "http://localhost:8080")
	return resets, accounts, users, mailer
}

func registeredUser(t *testing.T, accounts UserService, users repository.UserRepository, email string) *domain.User {
	t.Helper()

	created, err := accounts.Register(context.Background(), email, "Ada", "password1")
	require.NoError(t, err)

	// reload with the hash, the way callers inside the module hold users
	user, err := users.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	return user
}

func TestIssueThenVerifyToken(t *testing.T) {
	resets, accounts, users, _ := newResetFixture(t, 30*time.Minute)
	ctx := context.Background()

	user := registeredUser(t, accounts, users, "a@x.com")

	token, err := resets.IssueToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := resets.VerifyToken(ctx, token, time.Minute)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestVerifyTokenExpired(t *testing.T) {
	resets, accounts, users, _ := newResetFixture(t, 30*time.Minute)
	ctx := context.Background()

	user := registeredUser(t, accounts, users, "a@x.com")

	token, err := resets.IssueToken(user)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = resets.VerifyToken(ctx, token, 10*time.Millisecond)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenTampered(t *testing.T) {
	resets, accounts, users, _ := newResetFixture(t, 30*time.Minute)
	ctx := context.Background()

	user := registeredUser(t, accounts, users, "a@x.com")

	token, err := resets.IssueToken(user)
	require.NoError(t, err)

	// Flip one bit at a time across the token. Positions at the tail of a
	// base64 segment are skipped: the trailing padding bits there do not
	// survive decoding, so a flip can be a no-op.
	segmentEnds := map[int]struct{}{len(token) - 1: {}}
	for i, r := range token {
		if r == '.' {
			segmentEnds[i-1] = struct{}{}
		}
	}

	for i := 0; i < len(token); i++ {
		if _, skip := segmentEnds[i]; skip {
			continue
		}
		mutated := []byte(token)
		mutated[i] ^= 0x01

		_, err := resets.VerifyToken(ctx, string(mutated), time.Minute)
		require.ErrorIsf(t, err, ErrInvalidToken, "bit flip at %d accepted", i)
	}
}

func TestVerifyTokenMalformed(t *testing.T) {
	resets, _, _, _ := newResetFixture(t, 30*time.Minute)
	ctx := context.Background()

	for _, token := range []string{"", "garbage", "a.b.c", strings.Repeat("x", 512)} {
		_, err := resets.VerifyToken(ctx, token, time.Minute)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	resets, accounts, users, _ := newResetFixture(t, 30*time.Minute)
	ctx := context.Background()

	user := registeredUser(t, accounts, users, "a@x.com")

	other := NewResetService(users, accounts, newRecordingMailer(), logrus.New(), "another-secret", 30*time.Minute, "http://localhost:8080")
	token, err := other.IssueToken(user)
	require.NoError(t, err)

	_, err = resets.VerifyToken(ctx, token, time.Minute)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequestResetMailsALink(t *testing.T) {
	resets, accounts, users, mailer := newResetFixture(t, 30*time.Minute)
	ctx := context.Background()

	user := registeredUser(t, accounts, users, "a@x.com")

	require.NoError(t, resets.RequestReset(ctx, "a@x.com"))

	select {
	case link := <-mailer.sent:
		require.True(t, strings.HasPrefix(link, "http://localhost:8080/reset_password/"))
		token := strings.TrimPrefix(link, "http://localhost:8080/reset_password/")

		got, err := resets.VerifyToken(ctx, token, time.Minute)
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("reset mail was never sent")
	}
}

func TestRequestResetUnknownEmailStaysQuiet(t *testing.T) {
	resets, _, _, mailer := newResetFixture(t, 30*time.Minute)

	require.NoError(t, resets.RequestReset(context.Background(), "ghost@x.com"))

	select {
	case <-mailer.sent:
		t.Fatal("mail sent for an unregistered address")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestConfirmResetChangesPassword(t *testing.T) {
	resets, accounts, users, _ := newResetFixture(t, 30*time.Minute)
	ctx := context.Background()

	user := registeredUser(t, accounts, users, "a@x.com")

	token, err := resets.IssueToken(user)
	require.NoError(t, err)

	require.NoError(t, resets.ConfirmReset(ctx, token, "password2"))

	_, err = accounts.Authenticate(ctx, "a@x.com", "password1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = accounts.Authenticate(ctx, "a@x.com", "password2")
	require.NoError(t, err)
}

func TestConfirmResetExpiredTokenLeavesPassword(t *testing.T) {
	resets, accounts, users, _ := newResetFixture(t, 10*time.Millisecond)
	ctx := context.Background()

	user := registeredUser(t, accounts, users, "a@x.com")

	token, err := resets.IssueToken(user)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	err = resets.ConfirmReset(ctx, token, "password2")
	require.ErrorIs(t, err, ErrInvalidToken)

	// old password still works
	_, err = accounts.Authenticate(ctx, "a@x.com", "password1")
	require.NoError(t, err)
}
