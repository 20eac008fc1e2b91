package auth

import (
	"errors"
	"time"

	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/gofrs/uuid"
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrEmailExists        = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired session token")
	ErrSessionRevoked     = errors.New("session has been signed out")
)

type Account struct {
	UserID       uuid.UUID `db:"user_id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
}

type SessionRecord struct {
	ID        uuid.UUID  `db:"id"`
	UserID    uuid.UUID  `db:"user_id"`
	CreatedAt time.Time  `db:"created_at"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}

func (s *SessionRecord) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// Session is what the client holds after signing in.
type Session struct {
	AccessToken string    `json:"access_token,omitempty"`
	UserID      uuid.UUID `json:"user_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type SignUpInput struct {
	Email    string       `json:"email" validate:"required,email"`
	Password string       `json:"password" validate:"required,min=6,max=72"`
	Name     string       `json:"name" validate:"required,min=2,max=100"`
	Phone    string       `json:"phone" validate:"omitempty,max=32"`
	Role     profile.Role `json:"role" validate:"required,oneof=farmer buyer"`
}

type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
