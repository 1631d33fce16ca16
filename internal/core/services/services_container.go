package services

import (
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The membership service first: it is the tenant authorizer of every other service.
	// The audit service only needs it for listing, so it is wired in afterwards.
	auditSvc := &auditService{auditRepo: repos.AuditLogRepo}
	container.Audit = auditSvc

	container.Membership = NewMembershipService(
		repos.MembershipRepo,
		repos.UserRepo,
		repos.CurrentTenantStore,
		WithMembershipAuditRecorder(auditSvc),
	)
	authorizer := container.Membership.(portssvc.TenantAuthorizerSvc)
	auditSvc.TenantAuthorizer = authorizer

	container.Role = NewRoleService(repos.RoleRepo)
	container.User = NewUserService(repos.UserRepo, repos.RoleRepo)
	container.Entreprise = NewEntrepriseService(repos.EntrepriseRepo, authorizer, auditSvc)
	container.Customer = NewCustomerService(repos.CustomerRepo, authorizer)
	container.BankTransaction = NewBankTransactionService(repos.BankTransactionRepo, authorizer)
	container.Invoice = NewInvoiceService(
		repos.InvoiceRepo,
		repos.CustomerRepo,
		WithInvoiceAuthorizer(authorizer),
		WithInvoiceAuditRecorder(auditSvc),
	)
	container.Reconciliation = NewReconciliationService(
		repos.ReconciliationRepo,
		repos.InvoiceRepo,
		repos.BankTransactionRepo,
		authorizer,
		auditSvc,
	)

	return container
}
