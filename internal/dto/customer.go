package dto

import (
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
)

// CreateCustomerRequest defines data for creating a customer in the current tenant.
type CreateCustomerRequest struct {
	Name      string `json:"name" binding:"required,max=255" validate:"required,max=255"`
	Email     string `json:"email" binding:"omitempty,email" validate:"omitempty,email"`
	Phone     string `json:"phone" binding:"max=50" validate:"max=50"`
	Address   string `json:"address"`
	VATNumber string `json:"vatNumber" binding:"max=50" validate:"max=50"`
}

// ListCustomersParams defines query parameters for listing customers.
type ListCustomersParams struct {
	Limit  int `form:"limit,default=50"`
	Offset int `form:"offset,default=0"`
}

type CustomerResponse struct {
	CustomerID   string    `json:"customerID"`
	EntrepriseID string    `json:"entrepriseID"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	VATNumber    string    `json:"vatNumber"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ListCustomersResponse struct {
	Customers []CustomerResponse `json:"customers"`
}

func ToCustomerResponse(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		CustomerID:   c.CustomerID,
		EntrepriseID: c.EntrepriseID,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		Address:      c.Address,
		VATNumber:    c.VATNumber,
		CreatedAt:    c.CreatedAt,
	}
}

func ToListCustomersResponse(cs []domain.Customer) ListCustomersResponse {
	list := make([]CustomerResponse, len(cs))
	for i := range cs {
		list[i] = ToCustomerResponse(&cs[i])
	}
	return ListCustomersResponse{Customers: list}
}
