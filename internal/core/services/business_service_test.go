package services_test

import (
	"testing"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	"github.com/SscSPs/compta_saas_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BusinessServicesTestSuite struct {
	suite.Suite
	f        *fixture
	owner    *domain.User
	tenant   *domain.Entreprise
	customer *domain.Customer
}

func (suite *BusinessServicesTestSuite) SetupTest() {
	suite.f = newFixture(suite.T())
	suite.owner = suite.f.user("owner")
	suite.tenant = suite.f.tenant(suite.owner, "73282932000074")
	suite.customer = suite.f.customer(suite.tenant.EntrepriseID, suite.owner.UserID)
}

func TestBusinessServicesTestSuite(t *testing.T) {
	suite.Run(t, new(BusinessServicesTestSuite))
}

func (suite *BusinessServicesTestSuite) bankTxn(tenantID, userID, amount string) *domain.BankTransaction {
	txn, err := suite.f.svc.BankTransaction.CreateBankTransaction(suite.f.ctx, tenantID, dto.CreateBankTransactionRequest{
		Date:   mustDate("2024-03-20"),
		Label:  "VIR CLIENT SA",
		Amount: decimal.RequireFromString(amount),
	}, userID)
	suite.Require().NoError(err)
	return txn
}

func (suite *BusinessServicesTestSuite) issuedInvoice(number string) *domain.Invoice {
	inv := suite.f.draft(suite.tenant.EntrepriseID, suite.customer.CustomerID, number, suite.owner.UserID)
	issued, err := suite.f.svc.Invoice.IssueInvoice(suite.f.ctx, suite.tenant.EntrepriseID, inv.InvoiceID, suite.owner.UserID)
	suite.Require().NoError(err)
	return issued
}

func (suite *BusinessServicesTestSuite) reconcile(invoiceID, txnID, amount string) (*domain.Reconciliation, error) {
	return suite.f.svc.Reconciliation.Reconcile(suite.f.ctx, suite.tenant.EntrepriseID, dto.ReconcileRequest{
		InvoiceID:         invoiceID,
		BankTransactionID: txnID,
		MatchedAmount:     decimal.RequireFromString(amount),
	}, suite.owner.UserID)
}

func (suite *BusinessServicesTestSuite) TestReconcile_TripleIsUnique() {
	inv := suite.issuedInvoice("F-1")
	first := suite.bankTxn(suite.tenant.EntrepriseID, suite.owner.UserID, "50.00")
	second := suite.bankTxn(suite.tenant.EntrepriseID, suite.owner.UserID, "37.79")

	rec, err := suite.reconcile(inv.InvoiceID, first.BankTransactionID, "50.00")
	suite.Require().NoError(err)
	suite.Equal(suite.owner.UserID, rec.MatchedBy)

	_, err = suite.reconcile(inv.InvoiceID, first.BankTransactionID, "50.00")
	suite.ErrorIs(err, apperrors.ErrDuplicate)

	// Partial payments: the same invoice against another transaction.
	_, err = suite.reconcile(inv.InvoiceID, second.BankTransactionID, "37.79")
	suite.Require().NoError(err)

	recs, err := suite.f.svc.Reconciliation.ListReconciliations(suite.f.ctx, suite.tenant.EntrepriseID, inv.InvoiceID, suite.owner.UserID)
	suite.Require().NoError(err)
	suite.Len(recs, 2)
}

func (suite *BusinessServicesTestSuite) TestReconcile_Rules() {
	draft := suite.f.draft(suite.tenant.EntrepriseID, suite.customer.CustomerID, "F-draft", suite.owner.UserID)
	txn := suite.bankTxn(suite.tenant.EntrepriseID, suite.owner.UserID, "10.00")

	_, err := suite.reconcile(draft.InvoiceID, txn.BankTransactionID, "10.00")
	suite.ErrorIs(err, apperrors.ErrValidation)

	inv := suite.issuedInvoice("F-1")
	_, err = suite.reconcile(inv.InvoiceID, txn.BankTransactionID, "0")
	suite.ErrorIs(err, apperrors.ErrValidation)

	other := suite.f.user("other")
	otherTenant := suite.f.tenant(other, "55210055400013")
	foreignTxn := suite.bankTxn(otherTenant.EntrepriseID, other.UserID, "10.00")
	_, err = suite.reconcile(inv.InvoiceID, foreignTxn.BankTransactionID, "10.00")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *BusinessServicesTestSuite) TestProtectedReferences() {
	inv := suite.issuedInvoice("F-1")
	txn := suite.bankTxn(suite.tenant.EntrepriseID, suite.owner.UserID, "87.79")
	_, err := suite.reconcile(inv.InvoiceID, txn.BankTransactionID, "87.79")
	suite.Require().NoError(err)

	err = suite.f.svc.BankTransaction.DeleteBankTransaction(suite.f.ctx, suite.tenant.EntrepriseID, txn.BankTransactionID, suite.owner.UserID)
	suite.ErrorIs(err, apperrors.ErrProtectedReference)

	err = suite.f.svc.Customer.DeleteCustomer(suite.f.ctx, suite.tenant.EntrepriseID, suite.customer.CustomerID, suite.owner.UserID)
	suite.ErrorIs(err, apperrors.ErrProtectedReference)

	unused := suite.f.customer(suite.tenant.EntrepriseID, suite.owner.UserID)
	suite.NoError(suite.f.svc.Customer.DeleteCustomer(suite.f.ctx, suite.tenant.EntrepriseID, unused.CustomerID, suite.owner.UserID))
}

func (suite *BusinessServicesTestSuite) TestBankTransactions() {
	_, err := suite.f.svc.BankTransaction.CreateBankTransaction(suite.f.ctx, suite.tenant.EntrepriseID, dto.CreateBankTransactionRequest{
		Date: mustDate("2024-03-20"), Label: "Zero", Amount: decimal.Zero,
	}, suite.owner.UserID)
	suite.ErrorIs(err, apperrors.ErrValidation)

	suite.bankTxn(suite.tenant.EntrepriseID, suite.owner.UserID, "-12.50")
	from, to := mustDate("2024-03-01"), mustDate("2024-03-31")
	txns, err := suite.f.svc.BankTransaction.ListBankTransactions(suite.f.ctx, suite.tenant.EntrepriseID, &from, &to, suite.owner.UserID)
	suite.Require().NoError(err)
	suite.Len(txns, 1)

	_, err = suite.f.svc.BankTransaction.ListBankTransactions(suite.f.ctx, suite.tenant.EntrepriseID, &to, &from, suite.owner.UserID)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *BusinessServicesTestSuite) TestCustomersAreTenantScoped() {
	other := suite.f.user("other")
	otherTenant := suite.f.tenant(other, "55210055400013")

	_, err := suite.f.svc.Customer.GetCustomer(suite.f.ctx, otherTenant.EntrepriseID, suite.customer.CustomerID, other.UserID)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.f.svc.Customer.GetCustomer(suite.f.ctx, suite.tenant.EntrepriseID, suite.customer.CustomerID, other.UserID)
	suite.ErrorIs(err, apperrors.ErrNotAMember)

	list, err := suite.f.svc.Customer.ListCustomers(suite.f.ctx, suite.tenant.EntrepriseID, 0, -3, suite.owner.UserID)
	suite.Require().NoError(err)
	suite.Len(list, 1)
}

func (suite *BusinessServicesTestSuite) TestEntrepriseLifecycle() {
	_, err := suite.f.svc.Entreprise.CreateEntreprise(suite.f.ctx, dto.CreateEntrepriseRequest{Name: "Bad", Siret: "1234"}, suite.owner.UserID)
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.f.svc.Entreprise.CreateEntreprise(suite.f.ctx, dto.CreateEntrepriseRequest{Name: "Copy", Siret: suite.tenant.Siret}, suite.owner.UserID)
	suite.ErrorIs(err, apperrors.ErrDuplicate)

	accountant := suite.f.user("accountant")
	suite.f.member(suite.tenant.EntrepriseID, suite.owner.UserID, accountant, domain.MembershipComptable)

	got, err := suite.f.svc.Entreprise.GetEntreprise(suite.f.ctx, suite.tenant.EntrepriseID, accountant.UserID)
	suite.Require().NoError(err)
	suite.True(got.IsActive)

	_, err = suite.f.svc.Entreprise.SetEntrepriseActive(suite.f.ctx, suite.tenant.EntrepriseID, false, accountant.UserID)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	updated, err := suite.f.svc.Entreprise.SetEntrepriseActive(suite.f.ctx, suite.tenant.EntrepriseID, false, suite.owner.UserID)
	suite.Require().NoError(err)
	suite.False(updated.IsActive)

	suite.ErrorIs(suite.f.svc.Entreprise.DeleteEntreprise(suite.f.ctx, suite.tenant.EntrepriseID, accountant.UserID), apperrors.ErrForbidden)
}

func (suite *BusinessServicesTestSuite) TestDeleteEntrepriseCascadesMemberships() {
	other := suite.f.user("other")
	scratch := suite.f.tenant(other, "55210055400013")
	bob := suite.f.user("bob")
	suite.f.member(scratch.EntrepriseID, other.UserID, bob, domain.MembershipCollaborateur)

	suite.Require().NoError(suite.f.svc.Entreprise.DeleteEntreprise(suite.f.ctx, scratch.EntrepriseID, other.UserID))

	tenants, err := suite.f.svc.Membership.ListTenantsFor(suite.f.ctx, bob.UserID)
	suite.Require().NoError(err)
	suite.Empty(tenants)
	_, err = suite.f.store.FindEntrepriseByID(suite.f.ctx, scratch.EntrepriseID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}
