package repositories

import (
	"context"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
)

// CustomerReader defines read operations for customers
type CustomerReader interface {
	FindCustomerByID(ctx context.Context, entrepriseID, customerID string) (*domain.Customer, error)
	ListCustomers(ctx context.Context, entrepriseID string, limit, offset int) ([]domain.Customer, error)
}

// CustomerWriter defines write operations for customers
type CustomerWriter interface {
	SaveCustomer(ctx context.Context, customer domain.Customer) error

	// DeleteCustomer fails with apperrors.ErrProtectedReference while invoices reference the customer.
	DeleteCustomer(ctx context.Context, entrepriseID, customerID string) error
}

// CustomerRepositoryFacade combines all customer repository interfaces
type CustomerRepositoryFacade interface {
	CustomerReader
	CustomerWriter
}
