package domain

import (
	"strings"
	"time"
)

// User represents an account. Email is the login identifier and is unique
// case-insensitively.
type User struct {
	Entity
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Name         string `json:"name"`
	IsActive     bool   `json:"is_active"`
	IsStaff      bool   `json:"is_staff"`
	IsSuperuser  bool   `json:"is_superuser"`
}

// CanManageUsers reports whether this user has back-office privileges.
func (u *User) CanManageUsers() bool {
	return u.IsStaff || u.IsSuperuser
}

// NormalizeEmail trims whitespace and lowercases the domain part of an email
// address. The local part is preserved as entered; only the domain is
// case-insensitive per RFC.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

// Session represents an authenticated device session. The refresh token is
// stored only as a hash; presenting the matching token rotates the session.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"-"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
