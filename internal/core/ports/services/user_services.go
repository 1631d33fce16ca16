package services

import (
	"context"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// UserIdentitySvc binds identity provider subjects to local users.
type UserIdentitySvc interface {
	// FindOrCreateUserByExternalSubject returns the user whose username is subject,
	// creating it on first sight. The stored email follows the provider's.
	FindOrCreateUserByExternalSubject(ctx context.Context, subject, email string) (*domain.User, error)
}

// UserLifecycleSvc defines operations for managing user lifecycle
type UserLifecycleSvc interface {
	// DeleteUser deletes a user and, through the foreign keys, its memberships.
	// Users can only delete themselves.
	DeleteUser(ctx context.Context, userID string, requestingUserID string) error
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserIdentitySvc
	UserLifecycleSvc
}
