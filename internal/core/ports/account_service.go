package ports

import (
	"context"
	"time"

	"github.com/authcore/account-service/internal/core/domain"
)

// UpdateProfileInput carries the optional fields of a profile update.
// Nil means "leave unchanged".
type UpdateProfileInput struct {
	Username *string
	Password *string
}

// Profile is a user record enriched with activity data for display.
type Profile struct {
	User        *domain.User
	LastLoginAt time.Time // zero when never recorded
}

// AccountService is the application-facing contract for account operations.
// Admin-only operations (ListUsers, DeleteByID) are expected to be gated
// by the caller before invocation.
type AccountService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (string, *domain.User, error)
	Profile(ctx context.Context, username string) (*Profile, error)
	UpdateProfile(ctx context.Context, username string, in UpdateProfileInput) (*domain.User, error)
	DeleteSelf(ctx context.Context, username string) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
	DeleteByID(ctx context.Context, id string) error
}
