package handlers_test

import (
	"context"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	"github.com/SscSPs/compta_saas_backend/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock InvoiceService ---
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) invoice(args mock.Arguments) (*domain.Invoice, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) CreateInvoice(ctx context.Context, tenantID string, req dto.CreateInvoiceRequest, requestingUserID string) (*domain.Invoice, error) {
	return m.invoice(m.Called(ctx, tenantID, req, requestingUserID))
}
func (m *MockInvoiceService) UpdateDraft(ctx context.Context, tenantID, invoiceID string, req dto.UpdateInvoiceRequest, requestingUserID string) (*domain.Invoice, error) {
	return m.invoice(m.Called(ctx, tenantID, invoiceID, req, requestingUserID))
}
func (m *MockInvoiceService) GetInvoice(ctx context.Context, tenantID, invoiceID, requestingUserID string) (*domain.Invoice, error) {
	return m.invoice(m.Called(ctx, tenantID, invoiceID, requestingUserID))
}
func (m *MockInvoiceService) ListInvoices(ctx context.Context, tenantID string, filter portsrepo.InvoiceFilter, requestingUserID string) ([]domain.Invoice, string, error) {
	args := m.Called(ctx, tenantID, filter, requestingUserID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]domain.Invoice), args.String(1), args.Error(2)
}
func (m *MockInvoiceService) IssueInvoice(ctx context.Context, tenantID, invoiceID, requestingUserID string) (*domain.Invoice, error) {
	return m.invoice(m.Called(ctx, tenantID, invoiceID, requestingUserID))
}
func (m *MockInvoiceService) MarkPaid(ctx context.Context, tenantID, invoiceID, requestingUserID string) (*domain.Invoice, error) {
	return m.invoice(m.Called(ctx, tenantID, invoiceID, requestingUserID))
}
func (m *MockInvoiceService) CancelInvoice(ctx context.Context, tenantID, invoiceID, requestingUserID string) (*domain.Invoice, error) {
	return m.invoice(m.Called(ctx, tenantID, invoiceID, requestingUserID))
}
func (m *MockInvoiceService) GetLockedInvoice(ctx context.Context, tenantID, invoiceID string) (*domain.Invoice, error) {
	return m.invoice(m.Called(ctx, tenantID, invoiceID))
}
func (m *MockInvoiceService) AttachDocument(ctx context.Context, tenantID, invoiceID, pdfPath, requestingUserID string) (*domain.InvoiceDocument, error) {
	args := m.Called(ctx, tenantID, invoiceID, pdfPath, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvoiceDocument), args.Error(1)
}
func (m *MockInvoiceService) ListDocuments(ctx context.Context, tenantID, invoiceID, requestingUserID string) ([]domain.InvoiceDocument, error) {
	args := m.Called(ctx, tenantID, invoiceID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvoiceDocument), args.Error(1)
}
func (m *MockInvoiceService) VerifyChain(ctx context.Context, tenantID string) (*domain.ChainReport, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChainReport), args.Error(1)
}
func (m *MockInvoiceService) VerifyChainAs(ctx context.Context, tenantID, requestingUserID string) (*domain.ChainReport, error) {
	args := m.Called(ctx, tenantID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChainReport), args.Error(1)
}
