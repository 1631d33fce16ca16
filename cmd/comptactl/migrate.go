package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/SscSPs/compta_saas_backend/pkg/database"
)

// migrateCmd performs DB migrations
var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|version] [steps]",
	Short:     "Run database migrations",
	Args:      migrateArgs,
	ValidArgs: []string{"up", "down", "version"},
	RunE:      runMigrate,
}

func migrateArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.RangeArgs(0, 2)(cmd, args); err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case "up", "down", "version":
	default:
		return fmt.Errorf("invalid first argument: %q", args[0])
	}
	if len(args) == 2 {
		if args[0] == "version" {
			return fmt.Errorf("version takes no steps")
		}
		if n, err := strconv.Atoi(args[1]); err != nil || n <= 0 {
			return fmt.Errorf("invalid step count: %q", args[1])
		}
	}
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}
	steps := 0
	if len(args) > 1 {
		steps, _ = strconv.Atoi(args[1])
	}

	if command == "up" && steps == 0 {
		return database.RunMigrations(slog.Default(), databaseURL)
	}

	m, err := database.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			cmd.Println("no migration applied")
			return nil
		}
		if err != nil {
			return err
		}
		cmd.Printf("version %d (dirty: %t)\n", version, dirty)
		return nil
	case "up":
		err = m.Steps(steps)
	case "down":
		if steps == 0 {
			steps = 1
		}
		err = m.Steps(-steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s failed: %w", command, err)
	}
	slog.Info("Migration finished", slog.String("command", command), slog.Int("steps", steps))
	return nil
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
