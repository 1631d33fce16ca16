package repositories

import (
	"context"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a user by its identifier.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByUsername retrieves a user by the identity provider subject.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser inserts a user. A taken username yields apperrors.ErrDuplicate.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUserEmail refreshes the email copied from the identity provider.
	UpdateUserEmail(ctx context.Context, userID, email string) error

	// DeleteUser removes a user and its memberships. It fails with
	// apperrors.ErrProtectedReference while audit logs or reconciliations reference the user.
	DeleteUser(ctx context.Context, userID string) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
