package main

import (
	"errors"
	"log/slog"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/SscSPs/compta_saas_backend/internal/core/services"
	"github.com/SscSPs/compta_saas_backend/internal/repositories/cache"
	"github.com/SscSPs/compta_saas_backend/internal/repositories/database/pgsql"
	"github.com/SscSPs/compta_saas_backend/pkg/database"
	"github.com/spf13/cobra"
)

var verifyTenantID string

var seedRolesCmd = &cobra.Command{
	Use:   "seed-roles",
	Short: "Insert the fixed system roles that are missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(svc *portssvc.ServiceContainer) error {
			roles, err := svc.Role.SeedRoles(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range roles {
				cmd.Printf("%s\t%s\n", r.Code, r.Label)
			}
			return nil
		})
	},
}

var verifyChainCmd = &cobra.Command{
	Use:   "verify-chain",
	Short: "Recompute the invoice integrity chain of a tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(svc *portssvc.ServiceContainer) error {
			report, err := svc.Invoice.VerifyChain(cmd.Context(), verifyTenantID)
			if report != nil {
				cmd.Printf("tenant %s: %d entries checked, tail %s\n", report.EntrepriseID, report.EntriesChecked, report.TailHash)
				for _, m := range report.Mismatches {
					cmd.Printf("  seq %d invoice %s: %s\n", m.Seq, m.InvoiceID, m.Reason)
				}
			}
			if errors.Is(err, apperrors.ErrChainMismatch) {
				slog.Error("Invoice chain is broken", slog.String("tenant_id", verifyTenantID))
			}
			return err
		})
	},
}

// withServices opens the pool, wires the services and runs fn.
func withServices(cmd *cobra.Command, fn func(*portssvc.ServiceContainer) error) error {
	pool, err := database.NewPgxPool(cmd.Context(), databaseURL)
	if err != nil {
		return err
	}
	defer database.ClosePgxPool(pool)

	repos := pgsql.NewRepositoryProvider(pool, cache.NewMemoryTenantStore(0))
	return fn(services.NewServiceContainer(repos))
}

func init() {
	verifyChainCmd.Flags().StringVar(&verifyTenantID, "tenant", "", "Entreprise ID whose chain is verified")
	_ = verifyChainCmd.MarkFlagRequired("tenant")

	rootCmd.AddCommand(seedRolesCmd, verifyChainCmd)
}
