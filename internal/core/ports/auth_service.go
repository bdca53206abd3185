package ports

import (
	"context"

	"github.com/citylibrary/library-service/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password, role string) (*domain.User, error)
	// Login returns a signed token and the user. Failure is uniform
	// (domain.ErrInvalidCredentials) whether the username is unknown or the
	// password mismatches, so callers cannot enumerate usernames.
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
