package middleware

import (
	"context"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// Keys stored in the request context by the auth and tenant middlewares.
const (
	userIDKey      = contextKey("userID")
	tenantIDKey    = contextKey("tenantID")
	tenantRoleKey  = contextKey("tenantRole")
	authSubjectKey = contextKey("authSubject")
)

// WithUserID returns a copy of ctx carrying the internal user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// WithTenant returns a copy of ctx carrying the resolved tenant and the caller's role in it.
func WithTenant(ctx context.Context, tenantID string, role domain.MembershipRole) context.Context {
	ctx = context.WithValue(ctx, tenantIDKey, tenantID)
	return context.WithValue(ctx, tenantRoleKey, role)
}

// GetTenantIDFromContext retrieves the tenant resolved by TenantContextMiddleware.
func GetTenantIDFromContext(c *gin.Context) (string, bool) {
	tenantID, ok := c.Request.Context().Value(tenantIDKey).(string)
	return tenantID, ok && tenantID != ""
}

// GetTenantRoleFromContext retrieves the caller's membership role in the resolved tenant.
func GetTenantRoleFromContext(c *gin.Context) (domain.MembershipRole, bool) {
	role, ok := c.Request.Context().Value(tenantRoleKey).(domain.MembershipRole)
	return role, ok
}
