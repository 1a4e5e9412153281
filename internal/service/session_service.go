package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"dev-answer/internal/domain"
	"dev-answer/internal/repository"
)

// ErrNotLoggedIn indicates that a session token is missing, unknown or expired.
var ErrNotLoggedIn = errors.New("not logged in")

// SessionService issues and resolves login sessions. Sessions are stored
// server side so that logout takes effect immediately.
type SessionService interface {
	Start(ctx context.Context, userID int64) (string, error)
	Resolve(ctx context.Context, token string) (*domain.User, error)
	End(ctx context.Context, token string) error
}

type sessionService struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
	ttl      time.Duration
}

func NewSessionService(sessions repository.SessionRepository, users repository.UserRepository, ttl time.Duration) SessionService {
	return &sessionService{
		sessions: sessions,
		users:    users,
		ttl:      ttl,
	}
}

func (s *sessionService) Start(ctx context.Context, userID int64) (string, error) {
	now := time.Now().UTC()
	session := &domain.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", err
	}
	return session.Token, nil
}

func (s *sessionService) Resolve(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrNotLoggedIn
	}

	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrNotLoggedIn
		}
		return nil, err
	}

	if time.Now().UTC().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrNotLoggedIn
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrNotLoggedIn
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *sessionService) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}
