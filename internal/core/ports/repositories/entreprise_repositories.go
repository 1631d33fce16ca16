package repositories

import (
	"context"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
)

// EntrepriseReader defines read operations for tenants
type EntrepriseReader interface {
	// FindEntrepriseByID retrieves a tenant by its identifier.
	FindEntrepriseByID(ctx context.Context, entrepriseID string) (*domain.Entreprise, error)
}

// EntrepriseWriter defines write operations for tenants
type EntrepriseWriter interface {
	// SaveEntrepriseWithOwner inserts the tenant and the owner membership atomically.
	// A duplicate SIRET yields apperrors.ErrDuplicate.
	SaveEntrepriseWithOwner(ctx context.Context, entreprise domain.Entreprise, owner domain.Membership) error

	// SetEntrepriseActive toggles the tenant activation flag.
	SetEntrepriseActive(ctx context.Context, entrepriseID string, active bool) error

	// DeleteEntreprise removes the tenant and everything cascading from it.
	DeleteEntreprise(ctx context.Context, entrepriseID string) error
}

// EntrepriseRepositoryFacade combines all tenant repository interfaces
type EntrepriseRepositoryFacade interface {
	EntrepriseReader
	EntrepriseWriter
}
