package mapping

import (
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	"github.com/SscSPs/compta_saas_backend/internal/models"
)

// ToModelMembership converts a domain Membership to a model Membership
func ToModelMembership(d domain.Membership) models.Membership {
	return models.Membership{
		MembershipID: d.MembershipID,
		UserID:       d.UserID,
		EntrepriseID: d.EntrepriseID,
		Role:         string(d.Role),
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// ToDomainMembership converts a model Membership to a domain Membership
func ToDomainMembership(m models.Membership) domain.Membership {
	return domain.Membership{
		MembershipID: m.MembershipID,
		UserID:       m.UserID,
		EntrepriseID: m.EntrepriseID,
		Role:         domain.MembershipRole(m.Role),
		IsActive:     m.IsActive,
		Timestamps: domain.Timestamps{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

// ToDomainTenantAccess converts a joined tenant/membership row.
func ToDomainTenantAccess(m models.TenantAccess) domain.TenantAccess {
	return domain.TenantAccess{
		Entreprise: domain.Entreprise{
			EntrepriseID: m.EntrepriseID,
			Name:         m.Name,
			Siret:        m.Siret,
			IsActive:     m.IsActive,
			CreatedAt:    m.CreatedAt,
		},
		MembershipID: m.MembershipID,
		Role:         domain.MembershipRole(m.Role),
		JoinedAt:     m.JoinedAt,
	}
}
