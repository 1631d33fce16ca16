// Package memory provides in-process repositories that enforce the same keys,
// foreign keys and delete policies as the PostgreSQL schema. It backs tests and
// the database-less development mode.
package memory

import (
	"sync"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	"github.com/SscSPs/compta_saas_backend/internal/repositories/cache"
)

// Store holds every table. A single mutex serializes writers the way row locks
// would, which keeps chain appends fork-free.
type Store struct {
	mu sync.Mutex

	roles           map[string]domain.Role
	entreprises     map[string]domain.Entreprise
	users           map[string]domain.User
	memberships     map[string]domain.Membership
	customers       map[string]domain.Customer
	invoices        map[string]domain.Invoice
	documents       []domain.InvoiceDocument
	bankTxns        map[string]domain.BankTransaction
	reconciliations []domain.Reconciliation
	auditLogs       []domain.AuditLog
	chainEntries    map[string][]domain.InvoiceChainEntry
	chainTails      map[string]domain.ChainTail
}

var (
	_ portsrepo.RoleRepositoryFacade            = (*Store)(nil)
	_ portsrepo.EntrepriseRepositoryFacade      = (*Store)(nil)
	_ portsrepo.UserRepositoryFacade            = (*Store)(nil)
	_ portsrepo.MembershipRepositoryFacade      = (*Store)(nil)
	_ portsrepo.CustomerRepositoryFacade        = (*Store)(nil)
	_ portsrepo.InvoiceRepositoryFacade         = (*Store)(nil)
	_ portsrepo.BankTransactionRepositoryFacade = (*Store)(nil)
	_ portsrepo.ReconciliationRepositoryFacade  = (*Store)(nil)
	_ portsrepo.AuditLogRepositoryFacade        = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		roles:        make(map[string]domain.Role),
		entreprises:  make(map[string]domain.Entreprise),
		users:        make(map[string]domain.User),
		memberships:  make(map[string]domain.Membership),
		customers:    make(map[string]domain.Customer),
		invoices:     make(map[string]domain.Invoice),
		bankTxns:     make(map[string]domain.BankTransaction),
		chainEntries: make(map[string][]domain.InvoiceChainEntry),
		chainTails:   make(map[string]domain.ChainTail),
	}
}

// NewRepositoryProvider exposes one Store through every repository port.
// A nil tenantStore falls back to an in-process one.
func NewRepositoryProvider(store *Store, tenantStore portsrepo.CurrentTenantStore) portsrepo.RepositoryProvider {
	if tenantStore == nil {
		tenantStore = cache.NewMemoryTenantStore(0)
	}
	return portsrepo.RepositoryProvider{
		RoleRepo:            store,
		EntrepriseRepo:      store,
		UserRepo:            store,
		MembershipRepo:      store,
		CustomerRepo:        store,
		InvoiceRepo:         store,
		BankTransactionRepo: store,
		ReconciliationRepo:  store,
		AuditLogRepo:        store,
		CurrentTenantStore:  tenantStore,
	}
}
