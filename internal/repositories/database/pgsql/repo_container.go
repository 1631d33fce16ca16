package pgsql

import (
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the PostgreSQL repositories. The current-tenant
// selection lives outside the database and is passed in.
func NewRepositoryProvider(dbPool *pgxpool.Pool, tenantStore portsrepo.CurrentTenantStore) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		RoleRepo:            newPgxRoleRepository(dbPool),
		EntrepriseRepo:      newPgxEntrepriseRepository(dbPool),
		UserRepo:            newPgxUserRepository(dbPool),
		MembershipRepo:      newPgxMembershipRepository(dbPool),
		CustomerRepo:        newPgxCustomerRepository(dbPool),
		InvoiceRepo:         newPgxInvoiceRepository(dbPool),
		BankTransactionRepo: newPgxBankTransactionRepository(dbPool),
		ReconciliationRepo:  newPgxReconciliationRepository(dbPool),
		AuditLogRepo:        newPgxAuditLogRepository(dbPool),
		CurrentTenantStore:  tenantStore,
	}
}
