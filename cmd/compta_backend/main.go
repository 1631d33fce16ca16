package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	"github.com/SscSPs/compta_saas_backend/internal/core/services"
	"github.com/SscSPs/compta_saas_backend/internal/handlers"
	"github.com/SscSPs/compta_saas_backend/internal/middleware"
	"github.com/SscSPs/compta_saas_backend/internal/platform/config"
	"github.com/SscSPs/compta_saas_backend/internal/repositories/cache"
	"github.com/SscSPs/compta_saas_backend/internal/repositories/database/pgsql"
	"github.com/SscSPs/compta_saas_backend/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"
)

// @title Compta SaaS Backend API
// @version 1.0
// @description Multi-tenant invoicing and bank reconciliation backend.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if cfg.MigrationsEnabled {
		logger.Info("Running database migrations...")
		if err := database.RunMigrations(logger, cfg.DatabaseURL); err != nil {
			logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	tenantStore := newTenantStore(ctx, cfg, logger)
	if closer, ok := tenantStore.(io.Closer); ok {
		defer closer.Close()
	}
	repos := pgsql.NewRepositoryProvider(dbPool, tenantStore)
	serviceContainer := services.NewServiceContainer(repos)

	if _, err := serviceContainer.Role.SeedRoles(ctx); err != nil {
		logger.Error("Failed to seed roles", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid RATE_LIMIT", slog.String("rate_limit", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	ipLimiter := limiter.New(limitermemory.NewStore(), rate)

	r := gin.New()
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		middleware.MetricsMiddleware(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.TenantHeader, "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.RateLimit(ipLimiter, "/health", "/health/db", "/metrics"),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.EnableDBCheck {
		r.GET("/health/db", func(c *gin.Context) {
			pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := dbPool.Ping(pingCtx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unreachable"})
				return
			}
			c.String(http.StatusOK, "OK")
		})
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

// newTenantStore connects to Redis when configured. A Redis outage at startup degrades
// to a per-process store rather than refusing to serve.
func newTenantStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) repositories.CurrentTenantStore {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, keeping current tenant selections in memory")
		return cache.NewMemoryTenantStore(cfg.CurrentTenantTTL)
	}
	store, err := cache.NewRedisTenantStore(ctx, cfg.RedisURL, cfg.CurrentTenantTTL)
	if err != nil {
		logger.Warn("Redis unavailable, keeping current tenant selections in memory", slog.String("error", err.Error()))
		return cache.NewMemoryTenantStore(cfg.CurrentTenantTTL)
	}
	return store
}
