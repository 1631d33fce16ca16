package domain

import "time"

// Entreprise is a tenant: the unit of data isolation. Every business entity is
// foreign-keyed to one.
type Entreprise struct {
	EntrepriseID string    `json:"entrepriseID" db:"entreprise_id"`
	Name         string    `json:"name" db:"name"`
	Siret        string    `json:"siret" db:"siret"`
	IsActive     bool      `json:"isActive" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
