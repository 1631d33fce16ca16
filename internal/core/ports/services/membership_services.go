package services

import (
	"context"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
)

// TenantAuthorizerSvc checks a user's standing in a tenant.
type TenantAuthorizerSvc interface {
	// AuthorizeTenantAction returns the user's active membership in tenantID when its role
	// is one of allowed (any role when allowed is empty). It fails with
	// apperrors.ErrNotAMember without an active membership and apperrors.ErrForbidden
	// when the role does not fit.
	AuthorizeTenantAction(ctx context.Context, userID, tenantID string, allowed ...domain.MembershipRole) (*domain.Membership, error)
}

// TenantContextSvc resolves and changes the tenant a user works in.
type TenantContextSvc interface {
	// ListTenantsFor lists tenants with an active membership, oldest membership first.
	ListTenantsFor(ctx context.Context, userID string) ([]domain.TenantAccess, error)

	// SwitchCurrentTenant records tenantID as the user's current tenant. Only an active
	// membership allows it.
	SwitchCurrentTenant(ctx context.Context, userID, tenantID string) (*domain.TenantAccess, error)

	// CurrentTenant resolves the user's tenant: the stored selection, then the legacy
	// User.EntrepriseID, then the first active tenant. Each candidate needs an active
	// membership to count.
	CurrentTenant(ctx context.Context, userID string) (*domain.TenantAccess, error)
}

// MembershipManagementSvc is the tenant owner's surface over memberships.
type MembershipManagementSvc interface {
	AddMembership(ctx context.Context, tenantID, userID string, role domain.MembershipRole, active bool, requestingUserID string) (*domain.Membership, error)

	// UpdateMembershipRole is the only way a member's role changes.
	UpdateMembershipRole(ctx context.Context, tenantID, membershipID string, role domain.MembershipRole, requestingUserID string) (*domain.Membership, error)

	// SetMembershipActive suspends or reactivates a membership; memberships are never deleted here.
	SetMembershipActive(ctx context.Context, tenantID, membershipID string, active bool, requestingUserID string) (*domain.Membership, error)

	ListMembers(ctx context.Context, tenantID, requestingUserID string) ([]domain.Membership, error)
}

type MembershipSvcFacade interface {
	TenantAuthorizerSvc
	TenantContextSvc
	MembershipManagementSvc
}
