package ports

import (
	"context"

	"github.com/authcore/account-service/internal/core/domain"
)

// UserRepository defines the persistence contract for user records.
// Username uniqueness is the store's responsibility: Insert and Update
// must fail with domain.ErrUserExists on a duplicate username, even
// under concurrent writers.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.User, error)
}
