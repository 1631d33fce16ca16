package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/SscSPs/compta_saas_backend/internal/core/services"
	"github.com/SscSPs/compta_saas_backend/internal/dto"
	"github.com/SscSPs/compta_saas_backend/internal/repositories/cache"
	"github.com/SscSPs/compta_saas_backend/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// fixture wires the real services on the in-memory repositories.
type fixture struct {
	t        *testing.T
	ctx      context.Context
	store    *memory.Store
	repos    portsrepo.RepositoryProvider
	svc      *portssvc.ServiceContainer
	invoices *editedInvoices
}

func newFixture(t *testing.T) *fixture {
	store := memory.NewStore()
	repos := memory.NewRepositoryProvider(store, cache.NewMemoryTenantStore(0))
	edited := &editedInvoices{InvoiceRepositoryFacade: store, edits: map[string]func(*domain.Invoice){}}
	repos.InvoiceRepo = edited
	return &fixture{
		t:        t,
		ctx:      context.Background(),
		store:    store,
		repos:    repos,
		svc:      services.NewServiceContainer(repos),
		invoices: edited,
	}
}

// editedInvoices serves stored invoices as if their rows had been changed behind the
// application's back.
type editedInvoices struct {
	portsrepo.InvoiceRepositoryFacade
	edits map[string]func(*domain.Invoice)
}

func (r *editedInvoices) FindInvoicesByIDs(ctx context.Context, entrepriseID string, invoiceIDs []string) (map[string]domain.Invoice, error) {
	found, err := r.InvoiceRepositoryFacade.FindInvoicesByIDs(ctx, entrepriseID, invoiceIDs)
	if err != nil {
		return nil, err
	}
	for id, inv := range found {
		if edit, ok := r.edits[id]; ok {
			edit(&inv)
			found[id] = inv
		}
	}
	return found, nil
}

// editInvoice makes every later chain read see invoiceID changed by mutate.
func (f *fixture) editInvoice(invoiceID string, mutate func(*domain.Invoice)) {
	f.invoices.edits[invoiceID] = mutate
}

func (f *fixture) user(subject string) *domain.User {
	u, err := f.svc.User.FindOrCreateUserByExternalSubject(f.ctx, subject, subject+"@example.fr")
	require.NoError(f.t, err)
	return u
}

func (f *fixture) tenant(owner *domain.User, siret string) *domain.Entreprise {
	e, err := f.svc.Entreprise.CreateEntreprise(f.ctx, dto.CreateEntrepriseRequest{Name: "SARL " + siret, Siret: siret}, owner.UserID)
	require.NoError(f.t, err)
	return e
}

func (f *fixture) member(tenantID, ownerID string, user *domain.User, role domain.MembershipRole) *domain.Membership {
	m, err := f.svc.Membership.AddMembership(f.ctx, tenantID, user.UserID, role, true, ownerID)
	require.NoError(f.t, err)
	return m
}

func (f *fixture) customer(tenantID, userID string) *domain.Customer {
	c, err := f.svc.Customer.CreateCustomer(f.ctx, tenantID, dto.CreateCustomerRequest{Name: "Client SA", Email: "compta@client.fr"}, userID)
	require.NoError(f.t, err)
	return c
}

func (f *fixture) draft(tenantID, customerID, number, userID string) *domain.Invoice {
	inv, err := f.svc.Invoice.CreateInvoice(f.ctx, tenantID, invoiceRequest(customerID, number), userID)
	require.NoError(f.t, err)
	return inv
}

func invoiceRequest(customerID, number string) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		CustomerID: customerID,
		Number:     number,
		IssueDate:  mustDate("2024-03-15"),
		Lines: []dto.InvoiceLineRequest{
			{Label: "Conseil", Qty: decimal.NewFromInt(3), UnitPrice: decimal.RequireFromString("19.99"), VATRate: decimal.NewFromInt(20)},
			{Label: "Livres", Qty: decimal.RequireFromString("1.5"), UnitPrice: decimal.RequireFromString("10.00"), VATRate: decimal.RequireFromString("5.5")},
		},
	}
}

func mustDate(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}
