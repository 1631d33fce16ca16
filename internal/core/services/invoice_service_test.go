package services_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	"github.com/SscSPs/compta_saas_backend/internal/core/services"
	"github.com/SscSPs/compta_saas_backend/internal/dto"
	"github.com/SscSPs/compta_saas_backend/internal/utils/integrity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceTestSuite struct {
	suite.Suite
	f        *fixture
	owner    *domain.User
	tenant   *domain.Entreprise
	customer *domain.Customer
}

func (suite *InvoiceServiceTestSuite) SetupTest() {
	suite.f = newFixture(suite.T())
	suite.owner = suite.f.user("owner")
	suite.tenant = suite.f.tenant(suite.owner, "73282932000074")
	suite.customer = suite.f.customer(suite.tenant.EntrepriseID, suite.owner.UserID)
}

func TestInvoiceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}

func (suite *InvoiceServiceTestSuite) draft(number string) *domain.Invoice {
	return suite.f.draft(suite.tenant.EntrepriseID, suite.customer.CustomerID, number, suite.owner.UserID)
}

func (suite *InvoiceServiceTestSuite) issue(invoiceID string) *domain.Invoice {
	inv, err := suite.f.svc.Invoice.IssueInvoice(suite.f.ctx, suite.tenant.EntrepriseID, invoiceID, suite.owner.UserID)
	suite.Require().NoError(err)
	return inv
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_ComputesTotals() {
	inv := suite.draft("F-2024-001")

	suite.Equal(domain.InvoiceDraft, inv.Status)
	suite.Equal(mustDate("2024-03-15"), inv.IssueDate)
	suite.Require().Len(inv.Lines, 2)
	suite.Equal(1, inv.Lines[0].Position)
	suite.Equal("59.97", inv.Lines[0].TotalHT.StringFixed(2))
	suite.Equal("11.99", inv.Lines[0].TotalTVA.StringFixed(2))
	suite.Equal("0.83", inv.Lines[1].TotalTVA.StringFixed(2))
	suite.Equal("74.97", inv.TotalHT.StringFixed(2))
	suite.Equal("12.82", inv.TotalTVA.StringFixed(2))
	suite.Equal("87.79", inv.TotalTTC.StringFixed(2))
	suite.Nil(inv.LockedAt)
	suite.Nil(inv.HashCurr)
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_Validation() {
	req := invoiceRequest(suite.customer.CustomerID, "F-1")
	req.Lines[0].VATRate = decimal.NewFromInt(120)
	_, err := suite.f.svc.Invoice.CreateInvoice(suite.f.ctx, suite.tenant.EntrepriseID, req, suite.owner.UserID)
	suite.ErrorIs(err, apperrors.ErrValidation)

	req = invoiceRequest(suite.customer.CustomerID, "F-1")
	req.Lines[0].Position, req.Lines[1].Position = 2, 2
	_, err = suite.f.svc.Invoice.CreateInvoice(suite.f.ctx, suite.tenant.EntrepriseID, req, suite.owner.UserID)
	suite.ErrorIs(err, apperrors.ErrValidation)

	req = invoiceRequest(suite.customer.CustomerID, "F-1")
	due := mustDate("2024-03-01")
	req.DueDate = &due
	_, err = suite.f.svc.Invoice.CreateInvoice(suite.f.ctx, suite.tenant.EntrepriseID, req, suite.owner.UserID)
	suite.ErrorIs(err, apperrors.ErrValidation)

	req = invoiceRequest(suite.customer.CustomerID, "F-1")
	req.Lines = nil
	_, err = suite.f.svc.Invoice.CreateInvoice(suite.f.ctx, suite.tenant.EntrepriseID, req, suite.owner.UserID)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_CustomerOfAnotherTenant() {
	other := suite.f.user("other")
	otherTenant := suite.f.tenant(other, "55210055400013")
	foreign := suite.f.customer(otherTenant.EntrepriseID, other.UserID)

	_, err := suite.f.svc.Invoice.CreateInvoice(suite.f.ctx, suite.tenant.EntrepriseID, invoiceRequest(foreign.CustomerID, "F-1"), suite.owner.UserID)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *InvoiceServiceTestSuite) TestInvoiceNumbersArePerTenant() {
	suite.draft("F-2024-001")
	_, err := suite.f.svc.Invoice.CreateInvoice(suite.f.ctx, suite.tenant.EntrepriseID, invoiceRequest(suite.customer.CustomerID, "F-2024-001"), suite.owner.UserID)
	suite.ErrorIs(err, apperrors.ErrDuplicate)

	other := suite.f.user("other")
	otherTenant := suite.f.tenant(other, "55210055400013")
	otherCustomer := suite.f.customer(otherTenant.EntrepriseID, other.UserID)
	_, err = suite.f.svc.Invoice.CreateInvoice(suite.f.ctx, otherTenant.EntrepriseID, invoiceRequest(otherCustomer.CustomerID, "F-2024-001"), other.UserID)
	suite.NoError(err)
}

func (suite *InvoiceServiceTestSuite) TestIssueInvoice_SealsAndChains() {
	first := suite.issue(suite.draft("F-1").InvoiceID)
	second := suite.issue(suite.draft("F-2").InvoiceID)

	suite.Equal(domain.InvoiceIssued, first.Status)
	suite.NotNil(first.LockedAt)
	suite.Equal(integrity.Seed, *first.HashPrev)
	suite.Equal(integrity.SealInvoice(suite.tenant.EntrepriseID, *first, integrity.Seed), *first.HashCurr)
	suite.Equal(*first.HashCurr, *second.HashPrev)

	entries, err := suite.f.store.ListChainEntries(suite.f.ctx, suite.tenant.EntrepriseID)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 2)
	suite.Equal(int64(2), entries[1].Seq)

	report, err := suite.f.svc.Invoice.VerifyChain(suite.f.ctx, suite.tenant.EntrepriseID)
	suite.Require().NoError(err)
	suite.True(report.OK())
	suite.Equal(2, report.EntriesChecked)
	suite.Equal(*second.HashCurr, report.TailHash)
}

func (suite *InvoiceServiceTestSuite) TestIssueInvoice_UsesServiceClock() {
	at := time.Date(2024, 4, 2, 8, 0, 0, 123456789, time.UTC)
	svc := services.NewInvoiceService(suite.f.store, suite.f.store,
		services.WithInvoiceAuthorizer(suite.f.svc.Membership),
		services.WithInvoiceClock(func() time.Time { return at }))
	inv := suite.draft("F-1")

	issued, err := svc.IssueInvoice(suite.f.ctx, suite.tenant.EntrepriseID, inv.InvoiceID, suite.owner.UserID)

	suite.Require().NoError(err)
	suite.Equal(integrity.Timestamp(at), *issued.LockedAt)
}

func (suite *InvoiceServiceTestSuite) TestLockedInvoiceRejectsEdits() {
	inv := suite.draft("F-1")
	suite.issue(inv.InvoiceID)

	req := dto.UpdateInvoiceRequest(invoiceRequest(suite.customer.CustomerID, "F-1-bis"))
	_, err := suite.f.svc.Invoice.UpdateDraft(suite.f.ctx, suite.tenant.EntrepriseID, inv.InvoiceID, req, suite.owner.UserID)
	suite.ErrorIs(err, apperrors.ErrLockedInvoice)

	_, err = suite.f.svc.Invoice.IssueInvoice(suite.f.ctx, suite.tenant.EntrepriseID, inv.InvoiceID, suite.owner.UserID)
	suite.ErrorIs(err, apperrors.ErrLockedInvoice)

	stored, err := suite.f.svc.Invoice.GetInvoice(suite.f.ctx, suite.tenant.EntrepriseID, inv.InvoiceID, suite.owner.UserID)
	suite.Require().NoError(err)
	suite.Equal("F-1", stored.Number)
}

func (suite *InvoiceServiceTestSuite) TestUpdateDraft_RecomputesTotals() {
	inv := suite.draft("F-1")
	req := dto.UpdateInvoiceRequest(invoiceRequest(suite.customer.CustomerID, "F-1"))
	req.Lines = req.Lines[:1]

	updated, err := suite.f.svc.Invoice.UpdateDraft(suite.f.ctx, suite.tenant.EntrepriseID, inv.InvoiceID, req, suite.owner.UserID)

	suite.Require().NoError(err)
	suite.Equal("71.96", updated.TotalTTC.StringFixed(2))
	suite.Equal(inv.CreatedAt, updated.CreatedAt)
	stored, err := suite.f.store.FindInvoiceByID(suite.f.ctx, suite.tenant.EntrepriseID, inv.InvoiceID)
	suite.Require().NoError(err)
	suite.Len(stored.Lines, 1)
}

func (suite *InvoiceServiceTestSuite) TestStatusMachine() {
	draft := suite.draft("F-1")
	_, err := suite.f.svc.Invoice.MarkPaid(suite.f.ctx, suite.tenant.EntrepriseID, draft.InvoiceID, suite.owner.UserID)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)

	suite.issue(draft.InvoiceID)
	paid, err := suite.f.svc.Invoice.MarkPaid(suite.f.ctx, suite.tenant.EntrepriseID, draft.InvoiceID, suite.owner.UserID)
	suite.Require().NoError(err)
	suite.Equal(domain.InvoicePaid, paid.Status)

	_, err = suite.f.svc.Invoice.CancelInvoice(suite.f.ctx, suite.tenant.EntrepriseID, draft.InvoiceID, suite.owner.UserID)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)

	other := suite.draft("F-2")
	canceled, err := suite.f.svc.Invoice.CancelInvoice(suite.f.ctx, suite.tenant.EntrepriseID, other.InvoiceID, suite.owner.UserID)
	suite.Require().NoError(err)
	suite.Equal(domain.InvoiceCanceled, canceled.Status)
	_, err = suite.f.svc.Invoice.IssueInvoice(suite.f.ctx, suite.tenant.EntrepriseID, other.InvoiceID, suite.owner.UserID)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
}

func (suite *InvoiceServiceTestSuite) TestCancelIssuedInvoiceAppendsCancelEntry() {
	inv := suite.issue(suite.draft("F-1").InvoiceID)

	canceled, err := suite.f.svc.Invoice.CancelInvoice(suite.f.ctx, suite.tenant.EntrepriseID, inv.InvoiceID, suite.owner.UserID)
	suite.Require().NoError(err)
	suite.Equal(*inv.HashCurr, *canceled.HashCurr, "cancel never rewrites the seal")

	entries, err := suite.f.store.ListChainEntries(suite.f.ctx, suite.tenant.EntrepriseID)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 2)
	suite.Equal(domain.ChainEntryCancel, entries[1].Kind)
	suite.Equal(*inv.HashCurr, entries[1].HashPrev)

	report, err := suite.f.svc.Invoice.VerifyChain(suite.f.ctx, suite.tenant.EntrepriseID)
	suite.Require().NoError(err)
	suite.Equal(2, report.EntriesChecked)
}

func (suite *InvoiceServiceTestSuite) TestVerifyChain_ReportsFirstMismatch() {
	var ids []string
	for i := 1; i <= 4; i++ {
		ids = append(ids, suite.issue(suite.draft(fmt.Sprintf("F-%d", i)).InvoiceID).InvoiceID)
	}

	suite.f.editInvoice(ids[2], func(inv *domain.Invoice) {
		inv.TotalTTC = inv.TotalTTC.Add(decimal.NewFromInt(1))
	})

	report, err := suite.f.svc.Invoice.VerifyChain(suite.f.ctx, suite.tenant.EntrepriseID)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrChainMismatch))
	var mismatch *apperrors.ChainMismatchError
	suite.Require().True(errors.As(err, &mismatch))
	suite.Equal(ids[2], mismatch.InvoiceID)
	suite.Equal(int64(3), mismatch.Seq)
	suite.Require().NotNil(report)
	suite.Len(report.Mismatches, 1)
	suite.Equal(4, report.EntriesChecked)

	// Verification never repairs.
	_, err = suite.f.svc.Invoice.VerifyChain(suite.f.ctx, suite.tenant.EntrepriseID)
	suite.ErrorIs(err, apperrors.ErrChainMismatch)
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_RejectsUnstorableLines() {
	req := invoiceRequest(suite.customer.CustomerID, "F-1")
	req.Lines[0].Qty = decimal.RequireFromString("1.333")
	req.Lines[0].UnitPrice = decimal.RequireFromString("10.005")
	req.Lines[0].VATRate = decimal.RequireFromString("5.555")
	_, err := suite.f.svc.Invoice.CreateInvoice(suite.f.ctx, suite.tenant.EntrepriseID, req, suite.owner.UserID)
	suite.ErrorIs(err, apperrors.ErrValidation)

	req = invoiceRequest(suite.customer.CustomerID, "F-1")
	req.Lines[0].UnitPrice = decimal.RequireFromString("99999999999")
	_, err = suite.f.svc.Invoice.CreateInvoice(suite.f.ctx, suite.tenant.EntrepriseID, req, suite.owner.UserID)
	suite.ErrorIs(err, apperrors.ErrValidation)

	page, _, err := suite.f.svc.Invoice.ListInvoices(suite.f.ctx, suite.tenant.EntrepriseID, portsrepo.InvoiceFilter{}, suite.owner.UserID)
	suite.Require().NoError(err)
	suite.Empty(page)
}

func (suite *InvoiceServiceTestSuite) TestVerifyChain_EmptyChain() {
	report, err := suite.f.svc.Invoice.VerifyChain(suite.f.ctx, suite.tenant.EntrepriseID)

	suite.Require().NoError(err)
	suite.Equal(0, report.EntriesChecked)
	suite.Equal(integrity.Seed, report.TailHash)
}

func (suite *InvoiceServiceTestSuite) TestVerifyChainAs_RecordsAudit() {
	suite.issue(suite.draft("F-1").InvoiceID)

	report, err := suite.f.svc.Invoice.VerifyChainAs(suite.f.ctx, suite.tenant.EntrepriseID, suite.owner.UserID)
	suite.Require().NoError(err)
	suite.True(report.OK())

	logs, _, err := suite.f.svc.Audit.ListAuditLogs(suite.f.ctx, suite.tenant.EntrepriseID, 10, "", suite.owner.UserID)
	suite.Require().NoError(err)
	suite.Equal(domain.AuditChainVerified, logs[0].Action)
	suite.Equal(domain.AuditInvoiceIssued, logs[1].Action)

	stranger := suite.f.user("stranger")
	_, err = suite.f.svc.Invoice.VerifyChainAs(suite.f.ctx, suite.tenant.EntrepriseID, stranger.UserID)
	suite.ErrorIs(err, apperrors.ErrNotAMember)
}

func (suite *InvoiceServiceTestSuite) TestCollaboratorIsReadOnly() {
	inv := suite.draft("F-1")
	bob := suite.f.user("bob")
	suite.f.member(suite.tenant.EntrepriseID, suite.owner.UserID, bob, domain.MembershipCollaborateur)

	_, err := suite.f.svc.Invoice.IssueInvoice(suite.f.ctx, suite.tenant.EntrepriseID, inv.InvoiceID, bob.UserID)
	suite.ErrorIs(err, apperrors.ErrForbidden)

	got, err := suite.f.svc.Invoice.GetInvoice(suite.f.ctx, suite.tenant.EntrepriseID, inv.InvoiceID, bob.UserID)
	suite.Require().NoError(err)
	suite.Equal(domain.InvoiceDraft, got.Status)

	list, _, err := suite.f.svc.Invoice.ListInvoices(suite.f.ctx, suite.tenant.EntrepriseID, portsrepo.InvoiceFilter{Status: domain.InvoiceDraft}, bob.UserID)
	suite.Require().NoError(err)
	suite.Len(list, 1)
}

func (suite *InvoiceServiceTestSuite) TestListInvoices_UnknownStatus() {
	_, _, err := suite.f.svc.Invoice.ListInvoices(suite.f.ctx, suite.tenant.EntrepriseID, portsrepo.InvoiceFilter{Status: "LOST"}, suite.owner.UserID)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *InvoiceServiceTestSuite) TestDocumentsOnlyForLockedInvoices() {
	inv := suite.draft("F-1")

	_, err := suite.f.svc.Invoice.GetLockedInvoice(suite.f.ctx, suite.tenant.EntrepriseID, inv.InvoiceID)
	suite.ErrorIs(err, apperrors.ErrValidation)
	_, err = suite.f.svc.Invoice.AttachDocument(suite.f.ctx, suite.tenant.EntrepriseID, inv.InvoiceID, "s3://factures/F-1.pdf", suite.owner.UserID)
	suite.Error(err)

	suite.issue(inv.InvoiceID)
	locked, err := suite.f.svc.Invoice.GetLockedInvoice(suite.f.ctx, suite.tenant.EntrepriseID, inv.InvoiceID)
	suite.Require().NoError(err)
	suite.True(locked.IsLocked())

	doc, err := suite.f.svc.Invoice.AttachDocument(suite.f.ctx, suite.tenant.EntrepriseID, inv.InvoiceID, "s3://factures/F-1.pdf", suite.owner.UserID)
	suite.Require().NoError(err)
	docs, err := suite.f.svc.Invoice.ListDocuments(suite.f.ctx, suite.tenant.EntrepriseID, inv.InvoiceID, suite.owner.UserID)
	suite.Require().NoError(err)
	suite.Require().Len(docs, 1)
	suite.Equal(doc.InvoiceDocumentID, docs[0].InvoiceDocumentID)
}
