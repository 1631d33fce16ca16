package dto

import (
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
)

// --- Entreprise DTOs ---

// CreateEntrepriseRequest defines data for creating a tenant. The creator becomes its owner.
type CreateEntrepriseRequest struct {
	Name  string `json:"name" binding:"required,max=255" validate:"required,max=255"`
	Siret string `json:"siret" binding:"required,len=14,numeric" validate:"required,len=14,numeric"`
}

// SetActiveRequest toggles the activation flag of a tenant or a membership.
type SetActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

type EntrepriseResponse struct {
	EntrepriseID string    `json:"entrepriseID"`
	Name         string    `json:"name"`
	Siret        string    `json:"siret"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

func ToEntrepriseResponse(e *domain.Entreprise) EntrepriseResponse {
	return EntrepriseResponse{
		EntrepriseID: e.EntrepriseID,
		Name:         e.Name,
		Siret:        e.Siret,
		IsActive:     e.IsActive,
		CreatedAt:    e.CreatedAt,
	}
}
