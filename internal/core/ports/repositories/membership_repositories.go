package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
)

// MembershipReader defines read operations for memberships
type MembershipReader interface {
	FindMembershipByID(ctx context.Context, membershipID string) (*domain.Membership, error)

	// FindMembership retrieves the membership of a user in a tenant, active or not.
	FindMembership(ctx context.Context, userID, entrepriseID string) (*domain.Membership, error)

	// ListActiveTenantsByUser lists tenants the user has an active membership in,
	// oldest membership first.
	ListActiveTenantsByUser(ctx context.Context, userID string) ([]domain.TenantAccess, error)

	// ListMembershipsByEntreprise lists all memberships of a tenant.
	ListMembershipsByEntreprise(ctx context.Context, entrepriseID string) ([]domain.Membership, error)
}

// MembershipWriter defines write operations for memberships. Memberships are never
// deleted directly; they are deactivated or cascade with their user or tenant.
type MembershipWriter interface {
	// SaveMembership inserts a membership. An existing (user, tenant) pair yields
	// apperrors.ErrDuplicateMembership whatever its activation state.
	SaveMembership(ctx context.Context, membership domain.Membership) error

	UpdateMembershipRole(ctx context.Context, membershipID string, role domain.MembershipRole, now time.Time) error

	SetMembershipActive(ctx context.Context, membershipID string, active bool, now time.Time) error
}

// MembershipRepositoryFacade combines all membership repository interfaces
type MembershipRepositoryFacade interface {
	MembershipReader
	MembershipWriter
}
