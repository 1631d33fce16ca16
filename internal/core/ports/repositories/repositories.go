package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	RoleRepo            RoleRepositoryFacade
	EntrepriseRepo      EntrepriseRepositoryFacade
	UserRepo            UserRepositoryFacade
	MembershipRepo      MembershipRepositoryFacade
	CustomerRepo        CustomerRepositoryFacade
	InvoiceRepo         InvoiceRepositoryFacade
	BankTransactionRepo BankTransactionRepositoryFacade
	ReconciliationRepo  ReconciliationRepositoryFacade
	AuditLogRepo        AuditLogRepositoryFacade
	CurrentTenantStore  CurrentTenantStore
}
