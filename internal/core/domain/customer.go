package domain

import "time"

// Customer is an invoiced party of a tenant.
type Customer struct {
	CustomerID   string    `json:"customerID" db:"customer_id"`
	EntrepriseID string    `json:"entrepriseID" db:"entreprise_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	Address      string    `json:"address" db:"address"`
	VATNumber    string    `json:"vatNumber" db:"vat_number"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
