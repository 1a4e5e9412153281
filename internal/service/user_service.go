package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"dev-answer/internal/domain"
	"dev-answer/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	// Deliberately the same for an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateEmail is returned when attempting to use an already registered email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUserNotFound is returned when the referenced user no longer exists.
	ErrUserNotFound = errors.New("user not found")
)

// UserService describes account lifecycle operations.
type UserService interface {
	Register(ctx context.Context, email, fullName, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, fullName, email, newPassword string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id int64, newPassword string) error
	SetAvatar(ctx context.Context, id int64, avatarKey string) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Register(ctx context.Context, email, fullName, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)

	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if fullName == "" {
		return nil, errors.New("full name is required")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, id int64, fullName, email, newPassword string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)

	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if fullName == "" {
		return nil, errors.New("full name is required")
	}

	if err := s.users.UpdateProfile(ctx, id, fullName, email); err != nil {
		switch {
		case strings.Contains(strings.ToLower(err.Error()), "already exists"):
			return nil, ErrDuplicateEmail
		case strings.Contains(strings.ToLower(err.Error()), "not found"):
			return nil, ErrUserNotFound
		default:
			return nil, err
		}
	}

	if newPassword != "" {
		if err := s.UpdatePassword(ctx, id, newPassword); err != nil {
			return nil, err
		}
	}

	return s.GetByID(ctx, id)
}

func (s *userService) UpdatePassword(ctx context.Context, id int64, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, id, string(hash)); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *userService) SetAvatar(ctx context.Context, id int64, avatarKey string) (*domain.User, error) {
	if strings.TrimSpace(avatarKey) == "" {
		return nil, errors.New("avatar key is required")
	}
	if err := s.users.UpdateAvatar(ctx, id, avatarKey); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("invalid email address")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return errors.New("password is required")
	}
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if len(password) > 72 {
		return errors.New("password is too long")
	}
	return nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		AvatarKey: user.AvatarKey,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
