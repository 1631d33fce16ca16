package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/google/uuid"
)

type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
	roleRepo portsrepo.RoleReader
}

// NewUserService creates a new user service. New users get the default
// GERANT_PME role when the registry holds it.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, roleRepo portsrepo.RoleReader) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo, roleRepo: roleRepo}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("user " + userID)
		}
		s.LogError(ctx, err, "Failed to get user", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return user, nil
}

func (s *userService) FindOrCreateUserByExternalSubject(ctx context.Context, subject, email string) (*domain.User, error) {
	if subject == "" {
		return nil, fmt.Errorf("%w: subject is required", apperrors.ErrValidation)
	}

	user, err := s.userRepo.FindUserByUsername(ctx, subject)
	if err == nil {
		return s.refreshEmail(ctx, user, email)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up user by subject")
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	roleID, err := s.defaultRoleID(ctx)
	if err != nil {
		return nil, err
	}
	// EntrepriseID stays unset: the column cascades, so a tenant delete would take the user with it.
	newUser := domain.User{
		UserID:    uuid.NewString(),
		Username:  subject,
		Email:     email,
		RoleID:    roleID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.userRepo.SaveUser(ctx, newUser); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Another request created the user first.
			existing, findErr := s.userRepo.FindUserByUsername(ctx, subject)
			if findErr != nil {
				return nil, fmt.Errorf("failed to re-read user after concurrent creation: %w", findErr)
			}
			return s.refreshEmail(ctx, existing, email)
		}
		s.LogError(ctx, err, "Failed to create user for subject")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.LogInfo(ctx, "User created from identity provider subject", slog.String("user_id", newUser.UserID))
	return &newUser, nil
}

// defaultRoleID returns the GERANT_PME role id, or nil before the registry is seeded.
func (s *userService) defaultRoleID(ctx context.Context) (*string, error) {
	role, err := s.roleRepo.FindRoleByCode(ctx, domain.RoleGerantPME)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.GetLogger(ctx).Warn("Default role not seeded, creating user without one")
			return nil, nil
		}
		s.LogError(ctx, err, "Failed to look up default role")
		return nil, fmt.Errorf("failed to look up default role: %w", err)
	}
	return &role.RoleID, nil
}

func (s *userService) refreshEmail(ctx context.Context, user *domain.User, email string) (*domain.User, error) {
	if email == "" || email == user.Email {
		return user, nil
	}
	if err := s.userRepo.UpdateUserEmail(ctx, user.UserID, email); err != nil {
		s.LogError(ctx, err, "Failed to refresh user email", slog.String("user_id", user.UserID))
		return nil, fmt.Errorf("failed to update user email: %w", err)
	}
	user.Email = email
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	if userID != requestingUserID {
		return fmt.Errorf("%w: users can only delete themselves", apperrors.ErrForbidden)
	}
	if err := s.userRepo.DeleteUser(ctx, userID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrProtectedReference) {
			s.LogError(ctx, err, "Failed to delete user", slog.String("user_id", userID))
		}
		return err
	}
	s.LogInfo(ctx, "User deleted", slog.String("user_id", userID))
	return nil
}
