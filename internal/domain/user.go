package domain

import "time"

// User represents a registered account of the site.
type User struct {
	ID           int64
	Email        string
	FullName     string
	PasswordHash string
	AvatarKey    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is a server-side login session. Deleting the row logs the
// browser out immediately.
type Session struct {
	Token     string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}
