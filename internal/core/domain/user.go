package domain

import (
	"errors"
	"time"
)

// Role is stored as plain data on the user record. Two variants only;
// extend by adding constants, never by subtyping.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserExists         = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("access forbidden")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// User models an account holder.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the record carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
