package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// TenantHeader lets a client pin the tenant of a single request.
const TenantHeader = "X-Tenant-ID"

// TenantResolver is the part of the membership service the tenant middleware needs.
type TenantResolver interface {
	AuthorizeTenantAction(ctx context.Context, userID, tenantID string, allowed ...domain.MembershipRole) (*domain.Membership, error)
	CurrentTenant(ctx context.Context, userID string) (*domain.TenantAccess, error)
}

// TenantContextMiddleware resolves the tenant of the request: the X-Tenant-ID header when
// present, else the user's current tenant. Either way an active membership is required.
// It must run after AuthMiddleware.
func TenantContextMiddleware(tenants TenantResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var (
			tenantID string
			role     domain.MembershipRole
		)
		if header := c.GetHeader(TenantHeader); header != "" {
			m, err := tenants.AuthorizeTenantAction(c.Request.Context(), userID, header)
			if err != nil {
				abortTenant(c, logger, err)
				return
			}
			tenantID, role = m.EntrepriseID, m.Role
		} else {
			current, err := tenants.CurrentTenant(c.Request.Context(), userID)
			if err != nil {
				abortTenant(c, logger, err)
				return
			}
			tenantID, role = current.EntrepriseID, current.Role
		}

		ctx := WithTenant(c.Request.Context(), tenantID, role)
		ctx = WithLogger(ctx, logger.With(slog.String("tenant_id", tenantID)))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortTenant(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotAMember):
		logger.Warn("No active membership for requested tenant")
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not an active member of this tenant"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	default:
		logger.Error("Failed to resolve tenant", slog.String("error", err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve tenant"})
	}
}
