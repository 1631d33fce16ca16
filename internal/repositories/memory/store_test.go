package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	"github.com/SscSPs/compta_saas_backend/internal/utils/integrity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *Store
	now      time.Time
	owner    domain.User
	tenant   domain.Entreprise
	customer domain.Customer
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewStore()
	s.now = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	s.owner = s.newUser("owner")
	s.tenant = s.newTenant(s.owner, "12345678901234")
	s.customer = s.newCustomer(s.tenant.EntrepriseID)
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) newUser(subject string) domain.User {
	u := domain.User{UserID: uuid.NewString(), Username: subject, Email: subject + "@example.fr", CreatedAt: s.now}
	s.Require().NoError(s.store.SaveUser(s.ctx, u))
	return u
}

func (s *StoreTestSuite) newTenant(owner domain.User, siret string) domain.Entreprise {
	e := domain.Entreprise{EntrepriseID: uuid.NewString(), Name: "Boulangerie " + siret, Siret: siret, IsActive: true, CreatedAt: s.now}
	m := domain.Membership{
		MembershipID: uuid.NewString(), UserID: owner.UserID, EntrepriseID: e.EntrepriseID,
		Role: domain.MembershipTenantOwner, IsActive: true,
		Timestamps: domain.Timestamps{CreatedAt: s.now, UpdatedAt: s.now},
	}
	s.Require().NoError(s.store.SaveEntrepriseWithOwner(s.ctx, e, m))
	return e
}

func (s *StoreTestSuite) newCustomer(tenantID string) domain.Customer {
	c := domain.Customer{CustomerID: uuid.NewString(), EntrepriseID: tenantID, Name: "Client", CreatedAt: s.now}
	s.Require().NoError(s.store.SaveCustomer(s.ctx, c))
	return c
}

func (s *StoreTestSuite) newDraft(tenantID, customerID, number string) domain.Invoice {
	id := uuid.NewString()
	inv := domain.Invoice{
		InvoiceID: id, EntrepriseID: tenantID, CustomerID: customerID, Number: number,
		Status: domain.InvoiceDraft, IssueDate: s.now.Truncate(24 * time.Hour),
		TotalHT: decimal.RequireFromString("100.00"), TotalTVA: decimal.RequireFromString("20.00"), TotalTTC: decimal.RequireFromString("120.00"),
		Lines: []domain.InvoiceLine{{
			InvoiceLineID: uuid.NewString(), EntrepriseID: tenantID, InvoiceID: id, Position: 1, Label: "Pain",
			Qty: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("100.00"), VATRate: decimal.NewFromInt(20),
			TotalHT: decimal.RequireFromString("100.00"), TotalTVA: decimal.RequireFromString("20.00"), TotalTTC: decimal.RequireFromString("120.00"),
		}},
		Timestamps: domain.Timestamps{CreatedAt: s.now, UpdatedAt: s.now},
	}
	s.Require().NoError(s.store.SaveDraftInvoice(s.ctx, inv))
	return inv
}

func (s *StoreTestSuite) TestSaveRole_DuplicateCode() {
	role := domain.Role{RoleID: uuid.NewString(), Code: domain.RoleGerantPME, Label: "Gérant PME", CreatedAt: s.now}
	s.Require().NoError(s.store.SaveRole(s.ctx, role))

	err := s.store.SaveRole(s.ctx, domain.Role{RoleID: uuid.NewString(), Code: domain.RoleGerantPME, CreatedAt: s.now})
	s.ErrorIs(err, apperrors.ErrDuplicate)

	roles, err := s.store.ListRoles(s.ctx)
	s.Require().NoError(err)
	s.Len(roles, 1)
}

func (s *StoreTestSuite) TestSaveMembership_DuplicatePairRejectedRegardlessOfActive() {
	member := s.newUser("member")
	m := domain.Membership{MembershipID: uuid.NewString(), UserID: member.UserID, EntrepriseID: s.tenant.EntrepriseID, Role: domain.MembershipComptable, IsActive: false}
	s.Require().NoError(s.store.SaveMembership(s.ctx, m))

	dup := m
	dup.MembershipID = uuid.NewString()
	dup.IsActive = true
	s.ErrorIs(s.store.SaveMembership(s.ctx, dup), apperrors.ErrDuplicateMembership)

	all, err := s.store.ListMembershipsByEntreprise(s.ctx, s.tenant.EntrepriseID)
	s.Require().NoError(err)
	s.Len(all, 2, "owner plus one member")
}

func (s *StoreTestSuite) TestListActiveTenantsByUser_SkipsInactive() {
	second := s.newTenant(s.newUser("other-owner"), "99999999999999")
	m := domain.Membership{
		MembershipID: uuid.NewString(), UserID: s.owner.UserID, EntrepriseID: second.EntrepriseID,
		Role: domain.MembershipCollaborateur, IsActive: true,
		Timestamps: domain.Timestamps{CreatedAt: s.now.Add(time.Hour)},
	}
	s.Require().NoError(s.store.SaveMembership(s.ctx, m))

	tenants, err := s.store.ListActiveTenantsByUser(s.ctx, s.owner.UserID)
	s.Require().NoError(err)
	s.Require().Len(tenants, 2)
	s.Equal(s.tenant.EntrepriseID, tenants[0].EntrepriseID)
	s.Equal(second.EntrepriseID, tenants[1].EntrepriseID)

	s.Require().NoError(s.store.SetMembershipActive(s.ctx, m.MembershipID, false, s.now))
	tenants, err = s.store.ListActiveTenantsByUser(s.ctx, s.owner.UserID)
	s.Require().NoError(err)
	s.Len(tenants, 1)
}

func (s *StoreTestSuite) TestSaveEntreprise_DuplicateSiret() {
	e := domain.Entreprise{EntrepriseID: uuid.NewString(), Name: "Copie", Siret: s.tenant.Siret, IsActive: true}
	m := domain.Membership{MembershipID: uuid.NewString(), UserID: s.owner.UserID, EntrepriseID: e.EntrepriseID, Role: domain.MembershipTenantOwner, IsActive: true}
	s.ErrorIs(s.store.SaveEntrepriseWithOwner(s.ctx, e, m), apperrors.ErrDuplicate)

	_, err := s.store.FindEntrepriseByID(s.ctx, e.EntrepriseID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreTestSuite) TestInvoiceNumbers_UniquePerTenant() {
	s.newDraft(s.tenant.EntrepriseID, s.customer.CustomerID, "F-2024-001")

	dup := domain.Invoice{InvoiceID: uuid.NewString(), EntrepriseID: s.tenant.EntrepriseID, CustomerID: s.customer.CustomerID, Number: "F-2024-001", Status: domain.InvoiceDraft}
	s.ErrorIs(s.store.SaveDraftInvoice(s.ctx, dup), apperrors.ErrDuplicate)

	other := s.newTenant(s.newUser("other"), "11111111111111")
	otherCustomer := s.newCustomer(other.EntrepriseID)
	s.newDraft(other.EntrepriseID, otherCustomer.CustomerID, "F-2024-001")
}

func (s *StoreTestSuite) TestIssueInvoice_LocksContent() {
	draft := s.newDraft(s.tenant.EntrepriseID, s.customer.CustomerID, "F-1")

	issued, err := s.store.IssueInvoice(s.ctx, s.tenant.EntrepriseID, draft.InvoiceID, s.now)
	s.Require().NoError(err)
	s.Equal(domain.InvoiceIssued, issued.Status)
	s.Require().NotNil(issued.HashCurr)
	s.Equal(integrity.Seed, *issued.HashPrev)
	s.Len(*issued.HashCurr, integrity.HashLength)
	s.NotNil(issued.LockedAt)

	edit := *issued
	edit.TotalTTC = decimal.NewFromInt(1)
	s.ErrorIs(s.store.UpdateDraftInvoice(s.ctx, edit), apperrors.ErrLockedInvoice)

	_, err = s.store.IssueInvoice(s.ctx, s.tenant.EntrepriseID, draft.InvoiceID, s.now)
	s.ErrorIs(err, apperrors.ErrLockedInvoice)

	stored, err := s.store.FindInvoiceByID(s.ctx, s.tenant.EntrepriseID, draft.InvoiceID)
	s.Require().NoError(err)
	s.True(stored.TotalTTC.Equal(decimal.RequireFromString("120.00")))
}

func (s *StoreTestSuite) TestStatusMachine() {
	draft := s.newDraft(s.tenant.EntrepriseID, s.customer.CustomerID, "F-1")

	_, err := s.store.MarkInvoicePaid(s.ctx, s.tenant.EntrepriseID, draft.InvoiceID, s.now)
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	_, err = s.store.IssueInvoice(s.ctx, s.tenant.EntrepriseID, draft.InvoiceID, s.now)
	s.Require().NoError(err)
	paid, err := s.store.MarkInvoicePaid(s.ctx, s.tenant.EntrepriseID, draft.InvoiceID, s.now)
	s.Require().NoError(err)
	s.Equal(domain.InvoicePaid, paid.Status)

	_, err = s.store.CancelInvoice(s.ctx, s.tenant.EntrepriseID, draft.InvoiceID, s.now)
	s.ErrorIs(err, apperrors.ErrInvalidTransition)
}

func (s *StoreTestSuite) TestCancelInvoice_AppendsChainEntryOnlyWhenLocked() {
	draftOnly := s.newDraft(s.tenant.EntrepriseID, s.customer.CustomerID, "F-1")
	_, err := s.store.CancelInvoice(s.ctx, s.tenant.EntrepriseID, draftOnly.InvoiceID, s.now)
	s.Require().NoError(err)

	entries, err := s.store.ListChainEntries(s.ctx, s.tenant.EntrepriseID)
	s.Require().NoError(err)
	s.Empty(entries)

	issued := s.newDraft(s.tenant.EntrepriseID, s.customer.CustomerID, "F-2")
	_, err = s.store.IssueInvoice(s.ctx, s.tenant.EntrepriseID, issued.InvoiceID, s.now)
	s.Require().NoError(err)
	canceled, err := s.store.CancelInvoice(s.ctx, s.tenant.EntrepriseID, issued.InvoiceID, s.now.Add(time.Minute))
	s.Require().NoError(err)
	s.Equal(domain.InvoiceCanceled, canceled.Status)

	entries, err = s.store.ListChainEntries(s.ctx, s.tenant.EntrepriseID)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(domain.ChainEntryCancel, entries[1].Kind)
	s.Equal(entries[0].HashCurr, entries[1].HashPrev)
}

func (s *StoreTestSuite) TestSaveInvoiceDocument_RequiresLockedInvoice() {
	draft := s.newDraft(s.tenant.EntrepriseID, s.customer.CustomerID, "F-1")
	doc := domain.InvoiceDocument{InvoiceDocumentID: uuid.NewString(), EntrepriseID: s.tenant.EntrepriseID, InvoiceID: draft.InvoiceID, PDFPath: "/pdf/F-1.pdf", GeneratedAt: s.now}
	s.ErrorIs(s.store.SaveInvoiceDocument(s.ctx, doc), apperrors.ErrValidation)

	_, err := s.store.IssueInvoice(s.ctx, s.tenant.EntrepriseID, draft.InvoiceID, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.SaveInvoiceDocument(s.ctx, doc))

	docs, err := s.store.ListInvoiceDocuments(s.ctx, s.tenant.EntrepriseID, draft.InvoiceID)
	s.Require().NoError(err)
	s.Len(docs, 1)
}

func (s *StoreTestSuite) TestReconciliation_TripleUnique() {
	inv := s.newDraft(s.tenant.EntrepriseID, s.customer.CustomerID, "F-1")
	tx1 := domain.BankTransaction{BankTransactionID: uuid.NewString(), EntrepriseID: s.tenant.EntrepriseID, Date: s.now, Label: "VIR", Amount: decimal.NewFromInt(60)}
	tx2 := domain.BankTransaction{BankTransactionID: uuid.NewString(), EntrepriseID: s.tenant.EntrepriseID, Date: s.now, Label: "VIR", Amount: decimal.NewFromInt(60)}
	s.Require().NoError(s.store.SaveBankTransaction(s.ctx, tx1))
	s.Require().NoError(s.store.SaveBankTransaction(s.ctx, tx2))

	rec := func(txID string) domain.Reconciliation {
		return domain.Reconciliation{ReconciliationID: uuid.NewString(), EntrepriseID: s.tenant.EntrepriseID, InvoiceID: inv.InvoiceID, BankTransactionID: txID, MatchedAmount: decimal.NewFromInt(60), MatchedAt: s.now, MatchedBy: s.owner.UserID}
	}
	s.Require().NoError(s.store.SaveReconciliation(s.ctx, rec(tx1.BankTransactionID)))
	s.Require().NoError(s.store.SaveReconciliation(s.ctx, rec(tx2.BankTransactionID)), "partial payment against another transaction")
	s.ErrorIs(s.store.SaveReconciliation(s.ctx, rec(tx1.BankTransactionID)), apperrors.ErrDuplicate)

	recs, err := s.store.ListReconciliationsByInvoice(s.ctx, s.tenant.EntrepriseID, inv.InvoiceID)
	s.Require().NoError(err)
	s.Len(recs, 2)

	s.ErrorIs(s.store.DeleteBankTransaction(s.ctx, s.tenant.EntrepriseID, tx1.BankTransactionID), apperrors.ErrProtectedReference)
}

func (s *StoreTestSuite) TestDeleteCustomer_ProtectedByInvoices() {
	s.newDraft(s.tenant.EntrepriseID, s.customer.CustomerID, "F-1")
	s.ErrorIs(s.store.DeleteCustomer(s.ctx, s.tenant.EntrepriseID, s.customer.CustomerID), apperrors.ErrProtectedReference)

	free := s.newCustomer(s.tenant.EntrepriseID)
	s.NoError(s.store.DeleteCustomer(s.ctx, s.tenant.EntrepriseID, free.CustomerID))
}

func (s *StoreTestSuite) TestTenantScoping() {
	other := s.newTenant(s.newUser("other"), "22222222222222")
	_, err := s.store.FindCustomerByID(s.ctx, other.EntrepriseID, s.customer.CustomerID)
	s.ErrorIs(err, apperrors.ErrNotFound)

	inv := s.newDraft(s.tenant.EntrepriseID, s.customer.CustomerID, "F-1")
	_, err = s.store.FindInvoiceByID(s.ctx, other.EntrepriseID, inv.InvoiceID)
	s.ErrorIs(err, apperrors.ErrNotFound)
	_, err = s.store.IssueInvoice(s.ctx, other.EntrepriseID, inv.InvoiceID, s.now)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreTestSuite) TestDeleteEntreprise_Cascades() {
	inv := s.newDraft(s.tenant.EntrepriseID, s.customer.CustomerID, "F-1")
	_, err := s.store.IssueInvoice(s.ctx, s.tenant.EntrepriseID, inv.InvoiceID, s.now)
	s.Require().NoError(err)
	tenantID := s.tenant.EntrepriseID
	s.Require().NoError(s.store.SaveAuditLog(s.ctx, domain.AuditLog{AuditLogID: uuid.NewString(), EntrepriseID: &tenantID, ActorID: s.owner.UserID, Action: domain.AuditInvoiceIssued, CreatedAt: s.now}))

	s.Require().NoError(s.store.DeleteEntreprise(s.ctx, tenantID))

	_, err = s.store.FindMembership(s.ctx, s.owner.UserID, tenantID)
	s.ErrorIs(err, apperrors.ErrNotFound)
	_, err = s.store.FindInvoiceByID(s.ctx, tenantID, inv.InvoiceID)
	s.ErrorIs(err, apperrors.ErrNotFound)
	_, err = s.store.FindChainTail(s.ctx, tenantID)
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.Require().Len(s.store.auditLogs, 1)
	s.Nil(s.store.auditLogs[0].EntrepriseID)

	_, err = s.store.FindUserByID(s.ctx, s.owner.UserID)
	s.NoError(err, "users without a legacy pointer survive")
}

func (s *StoreTestSuite) TestDeleteUser_ProtectedByAuditLog() {
	member := s.newUser("member")
	s.Require().NoError(s.store.SaveAuditLog(s.ctx, domain.AuditLog{AuditLogID: uuid.NewString(), ActorID: member.UserID, Action: domain.AuditTenantSwitched, CreatedAt: s.now}))
	s.ErrorIs(s.store.DeleteUser(s.ctx, member.UserID), apperrors.ErrProtectedReference)

	quiet := s.newUser("quiet")
	s.NoError(s.store.DeleteUser(s.ctx, quiet.UserID))
}

func (s *StoreTestSuite) TestListInvoices_KeysetPages() {
	for i := 0; i < 5; i++ {
		inv := s.newDraft(s.tenant.EntrepriseID, s.customer.CustomerID, fmt.Sprintf("F-%d", i))
		s.store.rewriteInvoice(inv.InvoiceID, func(in *domain.Invoice) { in.IssueDate = s.now.AddDate(0, 0, i) })
	}

	var seen []string
	token := ""
	for {
		page, next, err := s.store.ListInvoices(s.ctx, s.tenant.EntrepriseID, portsrepo.InvoiceFilter{Limit: 2, NextToken: token})
		s.Require().NoError(err)
		for _, inv := range page {
			seen = append(seen, inv.Number)
		}
		if next == "" {
			break
		}
		token = next
	}
	s.Equal([]string{"F-4", "F-3", "F-2", "F-1", "F-0"}, seen)

	_, _, err := s.store.ListInvoices(s.ctx, s.tenant.EntrepriseID, portsrepo.InvoiceFilter{NextToken: "%%%"})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *StoreTestSuite) TestListAuditLogs_NewestFirst() {
	tenantID := s.tenant.EntrepriseID
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.store.SaveAuditLog(s.ctx, domain.AuditLog{
			AuditLogID: uuid.NewString(), EntrepriseID: &tenantID, ActorID: s.owner.UserID,
			Action: fmt.Sprintf("action.%d", i), CreatedAt: s.now.Add(time.Duration(i) * time.Second),
		}))
	}
	first, token, err := s.store.ListAuditLogs(s.ctx, tenantID, 2, "")
	s.Require().NoError(err)
	s.Require().Len(first, 2)
	s.Equal("action.2", first[0].Action)
	s.NotEmpty(token)

	rest, token, err := s.store.ListAuditLogs(s.ctx, tenantID, 2, token)
	s.Require().NoError(err)
	s.Require().Len(rest, 1)
	s.Equal("action.0", rest[0].Action)
	s.Empty(token)
}

// Concurrent issuance in one tenant must produce a single linear chain.
func TestIssueInvoice_ConcurrentAppendsDoNotFork(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	owner := domain.User{UserID: uuid.NewString(), Username: "owner", CreatedAt: now}
	require.NoError(t, store.SaveUser(ctx, owner))
	tenant := domain.Entreprise{EntrepriseID: uuid.NewString(), Name: "SARL", Siret: "12345678901234", IsActive: true}
	require.NoError(t, store.SaveEntrepriseWithOwner(ctx, tenant, domain.Membership{
		MembershipID: uuid.NewString(), UserID: owner.UserID, EntrepriseID: tenant.EntrepriseID, Role: domain.MembershipTenantOwner, IsActive: true,
	}))
	customer := domain.Customer{CustomerID: uuid.NewString(), EntrepriseID: tenant.EntrepriseID, Name: "Client"}
	require.NoError(t, store.SaveCustomer(ctx, customer))

	const n = 25
	ids := make([]string, n)
	for i := range ids {
		ids[i] = uuid.NewString()
		require.NoError(t, store.SaveDraftInvoice(ctx, domain.Invoice{
			InvoiceID: ids[i], EntrepriseID: tenant.EntrepriseID, CustomerID: customer.CustomerID,
			Number: fmt.Sprintf("F-%03d", i), Status: domain.InvoiceDraft, IssueDate: now,
		}))
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := store.IssueInvoice(ctx, tenant.EntrepriseID, id, now)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	entries, err := store.ListChainEntries(ctx, tenant.EntrepriseID)
	require.NoError(t, err)
	require.Len(t, entries, n)

	prevs := make(map[string]bool, n)
	for i, e := range entries {
		assert.Equal(t, int64(i+1), e.Seq)
		assert.False(t, prevs[e.HashPrev], "two entries share hash_prev %s", e.HashPrev)
		prevs[e.HashPrev] = true
	}

	invoices, err := store.FindInvoicesByIDs(ctx, tenant.EntrepriseID, ids)
	require.NoError(t, err)
	tail, err := store.FindChainTail(ctx, tenant.EntrepriseID)
	require.NoError(t, err)
	report, err := integrity.Verify(integrity.ChainInput{TenantID: tenant.EntrepriseID, Entries: entries, Invoices: invoices, Tail: tail}, now)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, n, report.EntriesChecked)
}
