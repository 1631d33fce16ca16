package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/SscSPs/compta_saas_backend/internal/core/services"
	"github.com/SscSPs/compta_saas_backend/internal/handlers"
	"github.com/SscSPs/compta_saas_backend/internal/middleware"
	"github.com/SscSPs/compta_saas_backend/internal/platform/config"
	"github.com/SscSPs/compta_saas_backend/internal/repositories/cache"
	"github.com/SscSPs/compta_saas_backend/internal/repositories/memory"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const testSecret = "handler-test-secret"

type APITestSuite struct {
	suite.Suite
	cfg      *config.Config
	services *portssvc.ServiceContainer
	router   *gin.Engine
}

func (s *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	repos := memory.NewRepositoryProvider(memory.NewStore(), cache.NewMemoryTenantStore(0))
	s.services = services.NewServiceContainer(repos)
	_, err := s.services.Role.SeedRoles(context.Background())
	s.Require().NoError(err)
	s.cfg = &config.Config{JWTSecret: testSecret, IsProduction: true}
	s.router = s.newRouter()
}

func (s *APITestSuite) newRouter() *gin.Engine {
	r := gin.New()
	handlers.RegisterRoutes(r, s.cfg, s.services)
	return r
}

func signToken(secret, subject string) string {
	claims := middleware.IdentityClaims{
		Email: subject + "@example.fr",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		panic(fmt.Sprintf("failed to sign test token: %v", err))
	}
	return token
}

// call performs a request as subject. An empty subject sends no token; an empty
// tenant leaves tenant resolution to the caller's current selection.
func (s *APITestSuite) call(method, path, subject, tenant string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		req.Header.Set("Authorization", "Bearer "+signToken(testSecret, subject))
	}
	if tenant != "" {
		req.Header.Set(middleware.TenantHeader, tenant)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	}
	return w, decoded
}

func (s *APITestSuite) createEntreprise(subject, siret string) string {
	w, body := s.call(http.MethodPost, "/api/v1/entreprises", subject, "", gin.H{"name": "SARL " + siret, "siret": siret})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return body["entrepriseID"].(string)
}

func (s *APITestSuite) createCustomer(subject, tenant string) string {
	w, body := s.call(http.MethodPost, "/api/v1/customers", subject, tenant, gin.H{"name": "Client SA", "email": "compta@client.fr"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return body["customerID"].(string)
}

func invoiceBody(customerID, number string) gin.H {
	return gin.H{
		"customerID": customerID,
		"number":     number,
		"issueDate":  "2024-03-15T00:00:00Z",
		"lines": []gin.H{
			{"label": "Conseil", "qty": "3", "unitPrice": "19.99", "vatRate": "20"},
			{"label": "Livres", "qty": "1.5", "unitPrice": "10.00", "vatRate": "5.5"},
		},
	}
}

func (s *APITestSuite) userID(subject string) string {
	w, body := s.call(http.MethodGet, "/api/v1/me", subject, "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	return body["userID"].(string)
}

func (s *APITestSuite) TestMe_RequiresValidToken() {
	w, _ := s.call(http.MethodGet, "/api/v1/me", "", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken("another-secret", "mallory"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *APITestSuite) TestMe_BindsSubjectToLocalUser() {
	w, body := s.call(http.MethodGet, "/api/v1/me", "alice", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("alice", body["username"])
	s.Equal("alice@example.fr", body["email"])

	again := s.userID("alice")
	s.Equal(body["userID"], again)

	w, gerant := s.call(http.MethodGet, "/api/v1/roles/GERANT_PME", "alice", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(gerant["roleID"], body["roleID"], "new users get the default role")
	s.Nil(body["entrepriseID"])
}

func (s *APITestSuite) TestRoles_AreReadOnly() {
	w, body := s.call(http.MethodGet, "/api/v1/roles", "alice", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Len(body["roles"], 4)

	w, body = s.call(http.MethodGet, "/api/v1/roles/COMPTABLE_PME", "alice", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("COMPTABLE_PME", body["code"])

	w, _ = s.call(http.MethodPut, "/api/v1/roles/COMPTABLE_PME", "alice", "", gin.H{"label": "x"})
	s.Equal(http.StatusMethodNotAllowed, w.Code)
	w, _ = s.call(http.MethodDelete, "/api/v1/roles/COMPTABLE_PME", "alice", "", nil)
	s.Equal(http.StatusMethodNotAllowed, w.Code)
}

func (s *APITestSuite) TestInvoiceLifecycle() {
	tenant := s.createEntreprise("alice", "12345678901234")
	customer := s.createCustomer("alice", tenant)

	w, inv := s.call(http.MethodPost, "/api/v1/invoices", "alice", tenant, invoiceBody(customer, "F-2024-001"))
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("DRAFT", inv["status"])
	s.Equal("74.97", inv["totalHT"])
	s.Equal("12.82", inv["totalTVA"])
	s.Equal("87.79", inv["totalTTC"])
	invoiceID := inv["invoiceID"].(string)

	w, _ = s.call(http.MethodPost, "/api/v1/invoices", "alice", tenant, invoiceBody(customer, "F-2024-001"))
	s.Equal(http.StatusConflict, w.Code, "invoice numbers are unique per tenant")

	w, issued := s.call(http.MethodPost, "/api/v1/invoices/"+invoiceID+"/issue", "alice", tenant, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("ISSUED", issued["status"])
	s.NotEmpty(issued["hashCurr"])
	s.NotEmpty(issued["lockedAt"])

	w, _ = s.call(http.MethodPut, "/api/v1/invoices/"+invoiceID, "alice", tenant, invoiceBody(customer, "F-2024-001"))
	s.Equal(http.StatusConflict, w.Code)

	w, _ = s.call(http.MethodPost, "/api/v1/invoices/"+invoiceID+"/issue", "alice", tenant, nil)
	s.Equal(http.StatusConflict, w.Code)

	w, report := s.call(http.MethodPost, "/api/v1/invoices/chain/verify", "alice", tenant, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal(true, report["ok"])
	s.EqualValues(1, report["entriesChecked"])
	s.Equal(issued["hashCurr"], report["tailHash"])

	w, docs := s.call(http.MethodPost, "/api/v1/invoices/"+invoiceID+"/documents", "alice", tenant, gin.H{"pdfPath": "invoices/F-2024-001.pdf"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal(invoiceID, docs["invoiceID"])

	w, logs := s.call(http.MethodGet, "/api/v1/audit-logs", "alice", tenant, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.NotEmpty(logs["auditLogs"])
}

func (s *APITestSuite) TestCreateInvoice_RejectsMalformedBody() {
	tenant := s.createEntreprise("alice", "12345678901234")
	w, _ := s.call(http.MethodPost, "/api/v1/invoices", "alice", tenant, gin.H{"number": "F-1"})
	s.Equal(http.StatusBadRequest, w.Code)

	customer := s.createCustomer("alice", tenant)
	body := invoiceBody(customer, "F-1")
	body["lines"] = []gin.H{{"label": "Conseil", "qty": "1.333", "unitPrice": "10.005", "vatRate": "5.555"}}
	w, _ = s.call(http.MethodPost, "/api/v1/invoices", "alice", tenant, body)
	s.Equal(http.StatusBadRequest, w.Code)

	body["lines"] = []gin.H{{"label": "Conseil", "qty": "1", "unitPrice": "12345678901.00", "vatRate": "20"}}
	w, _ = s.call(http.MethodPost, "/api/v1/invoices", "alice", tenant, body)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APITestSuite) TestReconciliationOverHTTP() {
	tenant := s.createEntreprise("alice", "12345678901234")
	customer := s.createCustomer("alice", tenant)
	_, inv := s.call(http.MethodPost, "/api/v1/invoices", "alice", tenant, invoiceBody(customer, "F-1"))
	invoiceID := inv["invoiceID"].(string)
	w, _ := s.call(http.MethodPost, "/api/v1/invoices/"+invoiceID+"/issue", "alice", tenant, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w, txn := s.call(http.MethodPost, "/api/v1/bank-transactions", "alice", tenant, gin.H{"date": "2024-04-02T00:00:00Z", "label": "VIR CLIENT SA", "amount": "87.79"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	txnID := txn["bankTransactionID"].(string)

	match := gin.H{"invoiceID": invoiceID, "bankTransactionID": txnID, "matchedAmount": "87.79"}
	w, _ = s.call(http.MethodPost, "/api/v1/reconciliations", "alice", tenant, match)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	w, _ = s.call(http.MethodPost, "/api/v1/reconciliations", "alice", tenant, match)
	s.Equal(http.StatusConflict, w.Code)

	w, recs := s.call(http.MethodGet, "/api/v1/invoices/"+invoiceID+"/reconciliations", "alice", tenant, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Len(recs["reconciliations"], 1)

	w, _ = s.call(http.MethodDelete, "/api/v1/bank-transactions/"+txnID, "alice", tenant, nil)
	s.Equal(http.StatusConflict, w.Code, "reconciled transactions are protected")
}

func (s *APITestSuite) TestTenantRoutes_RequireMembership() {
	tenant := s.createEntreprise("alice", "12345678901234")

	w, _ := s.call(http.MethodGet, "/api/v1/customers", "bob", tenant, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w, _ = s.call(http.MethodGet, "/api/v1/customers", "bob", "", nil)
	s.Equal(http.StatusForbidden, w.Code, "no membership means no current tenant")
}

func (s *APITestSuite) TestSwitchTenant_DrivesDefaultScope() {
	first := s.createEntreprise("alice", "11111111111111")
	second := s.createEntreprise("alice", "22222222222222")

	w, body := s.call(http.MethodGet, "/api/v1/tenants", "alice", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Len(body["tenants"], 2)

	w, body = s.call(http.MethodGet, "/api/v1/tenants/current", "alice", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(first, body["entrepriseID"])

	w, _ = s.call(http.MethodPost, "/api/v1/tenants/switch", "alice", "", gin.H{"entrepriseID": second})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	s.createCustomer("alice", "")
	w, body = s.call(http.MethodGet, "/api/v1/customers", "alice", second, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Len(body["customers"], 1)
	w, body = s.call(http.MethodGet, "/api/v1/customers", "alice", first, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Len(body["customers"], 0)

	w, _ = s.call(http.MethodPost, "/api/v1/tenants/switch", "bob", "", gin.H{"entrepriseID": second})
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *APITestSuite) TestCollaborator_IsReadOnly() {
	tenant := s.createEntreprise("alice", "12345678901234")
	bobID := s.userID("bob")

	w, m := s.call(http.MethodPost, "/api/v1/memberships", "alice", tenant, gin.H{"userID": bobID, "role": "COLLABORATEUR"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal(true, m["isActive"])

	w, _ = s.call(http.MethodPost, "/api/v1/memberships", "alice", tenant, gin.H{"userID": bobID, "role": "COMPTABLE"})
	s.Equal(http.StatusConflict, w.Code)

	w, _ = s.call(http.MethodPost, "/api/v1/customers", "bob", tenant, gin.H{"name": "Nope"})
	s.Equal(http.StatusForbidden, w.Code)
	w, _ = s.call(http.MethodGet, "/api/v1/customers", "bob", tenant, nil)
	s.Equal(http.StatusOK, w.Code)
	w, _ = s.call(http.MethodGet, "/api/v1/memberships", "bob", tenant, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w, _ = s.call(http.MethodPatch, "/api/v1/memberships/"+m["membershipID"].(string)+"/active", "alice", tenant, gin.H{"isActive": false})
	s.Require().Equal(http.StatusOK, w.Code)
	w, _ = s.call(http.MethodGet, "/api/v1/customers", "bob", tenant, nil)
	s.Equal(http.StatusForbidden, w.Code, "inactive memberships grant nothing")
}

func (s *APITestSuite) TestVerifyChain_MismatchAnswersConflictWithReport() {
	aliceID := s.userID("alice")
	tenant := s.createEntreprise("alice", "12345678901234")

	mockInvoices := new(MockInvoiceService)
	s.services.Invoice = mockInvoices
	s.router = s.newRouter()

	report := &domain.ChainReport{
		EntrepriseID:   tenant,
		EntriesChecked: 3,
		Mismatches:     []domain.ChainMismatch{{InvoiceID: "inv-3", Seq: 3, Reason: "hash_curr does not match invoice content"}},
		VerifiedAt:     time.Now(),
	}
	mockInvoices.On("VerifyChainAs", mock.Anything, tenant, aliceID).
		Return(report, &apperrors.ChainMismatchError{TenantID: tenant, InvoiceID: "inv-3", Seq: 3, Reason: "hash_curr does not match invoice content"})

	w, body := s.call(http.MethodPost, "/api/v1/invoices/chain/verify", "alice", tenant, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal(false, body["ok"])
	s.Len(body["mismatches"], 1)
	mockInvoices.AssertExpectations(s.T())
}

func (s *APITestSuite) TestInvoiceErrors_MapToStatuses() {
	aliceID := s.userID("alice")
	tenant := s.createEntreprise("alice", "12345678901234")

	mockInvoices := new(MockInvoiceService)
	s.services.Invoice = mockInvoices
	s.router = s.newRouter()

	cases := []struct {
		err    error
		status int
	}{
		{apperrors.NewNotFoundError("invoice missing"), http.StatusNotFound},
		{apperrors.ErrInvalidTransition, http.StatusConflict},
		{apperrors.ErrLockedInvoice, http.StatusConflict},
		{fmt.Errorf("wrapped: %w", apperrors.ErrForbidden), http.StatusForbidden},
		{apperrors.NewAppError(http.StatusConflict, "invoice chain moved concurrently", fmt.Errorf("unique violation")), http.StatusConflict},
		{apperrors.NewAppError(http.StatusInternalServerError, "failed to lock invoice chain", fmt.Errorf("timeout")), http.StatusInternalServerError},
		{fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		mockInvoices.ExpectedCalls = nil
		mockInvoices.On("MarkPaid", mock.Anything, tenant, "inv-1", aliceID).Return(nil, tc.err).Once()

		w, body := s.call(http.MethodPost, "/api/v1/invoices/inv-1/pay", "alice", tenant, nil)
		s.Equal(tc.status, w.Code, tc.err.Error())
		if tc.status == http.StatusInternalServerError {
			s.Equal("Failed to mark invoice paid", body["error"])
		}
	}
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
