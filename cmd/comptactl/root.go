package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/compta_saas_backend/internal/platform/config"
	"github.com/spf13/cobra"
)

var databaseURL string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "comptactl",
	Short: "Compta backend maintenance",
	Long:  `Maintenance CLI for the compta backend: schema migrations, role seeding and invoice chain audits.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil)))
		if databaseURL != "" {
			return nil
		}
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		databaseURL = cfg.DatabaseURL
		if databaseURL == "" {
			return fmt.Errorf("no database: pass --dsn or set PGSQL_URL")
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "dsn", "", "PostgreSQL connection URL (defaults to PGSQL_URL)")
}
