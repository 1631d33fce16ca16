package dto

import (
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
)

// --- Membership DTOs ---

// AddMembershipRequest defines data for adding a user to the current tenant.
// IsActive defaults to true when omitted.
type AddMembershipRequest struct {
	UserID   string                `json:"userID" binding:"required,uuid"`
	Role     domain.MembershipRole `json:"role" binding:"required,oneof=TENANT_OWNER COMPTABLE COLLABORATEUR ADMIN_CABINET"`
	IsActive *bool                 `json:"isActive"`
}

type UpdateMembershipRoleRequest struct {
	Role domain.MembershipRole `json:"role" binding:"required,oneof=TENANT_OWNER COMPTABLE COLLABORATEUR ADMIN_CABINET"`
}

type SwitchTenantRequest struct {
	EntrepriseID string `json:"entrepriseID" binding:"required,uuid"`
}

type MembershipResponse struct {
	MembershipID string                `json:"membershipID"`
	UserID       string                `json:"userID"`
	EntrepriseID string                `json:"entrepriseID"`
	Role         domain.MembershipRole `json:"role"`
	IsActive     bool                  `json:"isActive"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

type ListMembershipsResponse struct {
	Memberships []MembershipResponse `json:"memberships"`
}

func ToMembershipResponse(m *domain.Membership) MembershipResponse {
	return MembershipResponse{
		MembershipID: m.MembershipID,
		UserID:       m.UserID,
		EntrepriseID: m.EntrepriseID,
		Role:         m.Role,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func ToListMembershipsResponse(ms []domain.Membership) ListMembershipsResponse {
	list := make([]MembershipResponse, len(ms))
	for i := range ms {
		list[i] = ToMembershipResponse(&ms[i])
	}
	return ListMembershipsResponse{Memberships: list}
}

// TenantResponse is a tenant seen through the caller's membership.
type TenantResponse struct {
	EntrepriseID string                `json:"entrepriseID"`
	Name         string                `json:"name"`
	Siret        string                `json:"siret"`
	IsActive     bool                  `json:"isActive"`
	MembershipID string                `json:"membershipID"`
	Role         domain.MembershipRole `json:"role"`
	JoinedAt     time.Time             `json:"joinedAt"`
}

type ListTenantsResponse struct {
	Tenants []TenantResponse `json:"tenants"`
}

func ToTenantResponse(t *domain.TenantAccess) TenantResponse {
	return TenantResponse{
		EntrepriseID: t.EntrepriseID,
		Name:         t.Name,
		Siret:        t.Siret,
		IsActive:     t.IsActive,
		MembershipID: t.MembershipID,
		Role:         t.Role,
		JoinedAt:     t.JoinedAt,
	}
}

func ToListTenantsResponse(ts []domain.TenantAccess) ListTenantsResponse {
	list := make([]TenantResponse, len(ts))
	for i := range ts {
		list[i] = ToTenantResponse(&ts[i])
	}
	return ListTenantsResponse{Tenants: list}
}
