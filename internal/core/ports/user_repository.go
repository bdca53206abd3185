package ports

import (
	"context"

	"github.com/citylibrary/library-service/internal/core/domain"
)

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	// Create inserts a new user and returns it with the assigned id.
	// Returns domain.ErrUserExists when the username is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByID re-resolves a user referenced by a token. Returns
	// domain.ErrUserNotFound when the account no longer exists.
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}
