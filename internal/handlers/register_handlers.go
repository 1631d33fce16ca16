package handlers

import (
	"github.com/SscSPs/compta_saas_backend/cmd/docs"
	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/SscSPs/compta_saas_backend/internal/middleware"
	"github.com/SscSPs/compta_saas_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupAPIV1Routes(r, cfg, services)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group. Routes that act on the caller or
// address a tenant by path sit directly under it; everything else runs inside the
// tenant resolved by TenantContextMiddleware.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
) {
	auth := middleware.AuthConfig{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(auth, service.User))

	registerUserRoutes(v1, service.User)
	registerRoleRoutes(v1, service.Role)
	registerEntrepriseRoutes(v1, service.Entreprise)
	registerTenantRoutes(v1, service.Membership)

	tenant := v1.Group("", middleware.TenantContextMiddleware(service.Membership))
	registerMembershipRoutes(tenant, service.Membership)
	registerCustomerRoutes(tenant, service.Customer)
	registerInvoiceRoutes(tenant, service.Invoice, service.Reconciliation)
	registerBankRoutes(tenant, service.BankTransaction, service.Reconciliation)
	registerAuditRoutes(tenant, service.Audit)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
