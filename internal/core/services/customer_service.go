package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/SscSPs/compta_saas_backend/internal/dto"
	"github.com/SscSPs/compta_saas_backend/internal/utils/pagination"
	"github.com/google/uuid"
)

type customerService struct {
	BaseService
	customerRepo portsrepo.CustomerRepositoryFacade
}

// NewCustomerService creates the customer service.
func NewCustomerService(repo portsrepo.CustomerRepositoryFacade, authorizer portssvc.TenantAuthorizerSvc) portssvc.CustomerSvcFacade {
	return &customerService{
		BaseService:  BaseService{TenantAuthorizer: authorizer},
		customerRepo: repo,
	}
}

var _ portssvc.CustomerSvcFacade = (*customerService)(nil)

func (s *customerService) CreateCustomer(ctx context.Context, tenantID string, req dto.CreateCustomerRequest, requestingUserID string) (*domain.Customer, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID, writerRoles...); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	customer := domain.Customer{
		CustomerID:   uuid.NewString(),
		EntrepriseID: tenantID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		VATNumber:    req.VATNumber,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.customerRepo.SaveCustomer(ctx, customer); err != nil {
		s.LogError(ctx, err, "Failed to save customer", slog.String("tenant_id", tenantID))
		return nil, err
	}
	return &customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, tenantID, customerID, requestingUserID string) (*domain.Customer, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID); err != nil {
		return nil, err
	}
	return s.customerRepo.FindCustomerByID(ctx, tenantID, customerID)
}

func (s *customerService) ListCustomers(ctx context.Context, tenantID string, limit, offset int, requestingUserID string) ([]domain.Customer, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	customers, err := s.customerRepo.ListCustomers(ctx, tenantID, pagination.NormalizeLimit(limit), offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list customers", slog.String("tenant_id", tenantID))
		return nil, err
	}
	if customers == nil {
		return []domain.Customer{}, nil
	}
	return customers, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, tenantID, customerID, requestingUserID string) error {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID, writerRoles...); err != nil {
		return err
	}
	if err := s.customerRepo.DeleteCustomer(ctx, tenantID, customerID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrProtectedReference) {
			s.LogError(ctx, err, "Failed to delete customer", slog.String("customer_id", customerID))
		}
		return err
	}
	return nil
}
