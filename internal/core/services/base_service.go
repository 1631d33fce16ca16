package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/SscSPs/compta_saas_backend/internal/middleware"
	"github.com/go-playground/validator/v10"
)

// Role sets used by the tenant-scoped services.
var (
	// writerRoles may change business data of a tenant.
	writerRoles = []domain.MembershipRole{domain.MembershipTenantOwner, domain.MembershipComptable, domain.MembershipAdminCabinet}
	// managerRoles may manage the tenant itself and its memberships.
	managerRoles = []domain.MembershipRole{domain.MembershipTenantOwner, domain.MembershipAdminCabinet}
)

var validate = validator.New()

// BaseService provides common functionality for all services
type BaseService struct {
	TenantAuthorizer portssvc.TenantAuthorizerSvc
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizeUser checks that userID holds an active membership in tenantID with one of
// the allowed roles. Without an authorizer every action is denied.
func (s *BaseService) AuthorizeUser(ctx context.Context, userID, tenantID string, allowed ...domain.MembershipRole) (*domain.Membership, error) {
	if s.TenantAuthorizer == nil {
		s.LogError(ctx, apperrors.ErrForbidden, "No tenant authorizer configured, denying access",
			slog.String("user_id", userID),
			slog.String("tenant_id", tenantID))
		return nil, apperrors.ErrForbidden
	}
	return s.TenantAuthorizer.AuthorizeTenantAction(ctx, userID, tenantID, allowed...)
}

// validateStruct runs the validate tags of req and wraps failures in ErrValidation.
func validateStruct(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return nil
}
