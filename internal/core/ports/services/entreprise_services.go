package services

import (
	"context"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	"github.com/SscSPs/compta_saas_backend/internal/dto"
)

type EntrepriseSvcFacade interface {
	// CreateEntreprise creates a tenant with creatorUserID as its TENANT_OWNER, atomically.
	CreateEntreprise(ctx context.Context, req dto.CreateEntrepriseRequest, creatorUserID string) (*domain.Entreprise, error)

	// GetEntreprise requires an active membership in the tenant.
	GetEntreprise(ctx context.Context, entrepriseID, requestingUserID string) (*domain.Entreprise, error)

	SetEntrepriseActive(ctx context.Context, entrepriseID string, active bool, requestingUserID string) (*domain.Entreprise, error)

	// DeleteEntreprise removes the tenant and everything scoped to it.
	DeleteEntreprise(ctx context.Context, entrepriseID, requestingUserID string) error
}
