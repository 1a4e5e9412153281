package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"dev-answer/internal/domain"
	"dev-answer/internal/mail"
	"dev-answer/internal/repository"
)

// ErrInvalidToken is returned for any reset token that cannot be accepted:
// bad signature, malformed payload or past its expiry window.
var ErrInvalidToken = errors.New("invalid or expired token")

// ResetService issues and redeems password reset tokens. Tokens are
// stateless: a signed claim of the user id plus issuance time, verified
// entirely by recomputation. A token stays algorithmically valid for its
// whole window even after use; redemption only stops mattering because the
// password hash underneath it changed.
type ResetService interface {
	IssueToken(user *domain.User) (string, error)
	VerifyToken(ctx context.Context, token string, maxAge time.Duration) (*domain.User, error)
	RequestReset(ctx context.Context, email string) error
	ConfirmReset(ctx context.Context, token, newPassword string) error
}

type resetClaims struct {
	jwt.RegisteredClaims
}

type resetService struct {
	users    repository.UserRepository
	accounts UserService
	mailer   mail.Mailer
	logger   *logrus.Logger
	secret   []byte
	tokenTTL time.Duration
	baseURL  string
}

func NewResetService(
	users repository.UserRepository,
	accounts UserService,
	mailer mail.Mailer,
	logger *logrus.Logger,
	secret string,
	tokenTTL time.Duration,
	baseURL string,
) ResetService {
	return &resetService{
		users:    users,
		accounts: accounts,
		mailer:   mailer,
		logger:   logger,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (s *resetService) IssueToken(user *domain.User) (string, error) {
	if user == nil || user.ID == 0 {
		return "", errors.New("user is required")
	}
	if len(s.secret) == 0 {
		return "", errors.New("reset secret is not configured")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, resetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  strconv.FormatInt(user.ID, 10),
			IssuedAt: jwt.NewNumericDate(time.Now().UTC()),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return signed, nil
}

func (s *resetService) VerifyToken(ctx context.Context, token string, maxAge time.Duration) (*domain.User, error) {
	if token == "" || maxAge <= 0 {
		return nil, ErrInvalidToken
	}

	claims := &resetClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}
	if time.Since(claims.IssuedAt.Time) > maxAge {
		return nil, ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// RequestReset issues a token for the account behind email and mails the
// reset link. The response is identical whether or not the email is
// registered, and mail delivery runs in the background so a slow or broken
// SMTP server never blocks the request.
func (s *resetService) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			// Do not reveal whether the address is registered.
			return nil
		}
		return err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset_password/%s", s.baseURL, token)
	go func() {
		if err := s.mailer.SendPasswordReset(user.Email, link); err != nil {
			s.logger.Warnf("send reset mail to %s: %v", user.Email, err)
		}
	}()

	return nil
}

func (s *resetService) ConfirmReset(ctx context.Context, token, newPassword string) error {
	user, err := s.VerifyToken(ctx, token, s.tokenTTL)
	if err != nil {
		return err
	}
	return s.accounts.UpdatePassword(ctx, user.ID, newPassword)
}
