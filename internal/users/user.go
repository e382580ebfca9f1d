package users

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username or email already taken")
	ErrMissingFields      = errors.New("username, email and password are required")
	ErrBootstrapAdmin     = errors.New("bootstrap admin cannot be removed")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
