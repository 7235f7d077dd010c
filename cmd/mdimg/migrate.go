package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mdimg/internal/config"
	"mdimg/internal/store"
)

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	var dryRun bool
	var inspect bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run or inspect history database migrations",
		Args:  requireExactlyArgs(0, "migrate takes no arguments"),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if inspect || dryRun {
				db, err := store.OpenRaw(cfg.DBPath)
				if err != nil {
					return err
				}
				defer db.Close()

				plan, err := store.MigrationPlan(db)
				if err != nil {
					return fmt.Errorf("inspect migrations: %w", err)
				}
				if structuredOutput() {
					return writeStructured(out, plan)
				}
				return writeMigrationPlan(out, plan)
			}

			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			defer st.Close()

			if structuredOutput() {
				plan, err := st.MigrationPlan()
				if err != nil {
					return err
				}
				return writeStructured(out, plan)
			}
			return writePlain(out, "Migrations applied successfully.\n")
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show pending migrations without applying")
	cmd.Flags().BoolVar(&inspect, "inspect", false, "show migration status")

	return cmd
}

func writeMigrationPlan(w io.Writer, plan *store.MigrationStatus) error {
	if err := writePlain(w, "Current version: %d\nAvailable version: %d\n", plan.CurrentVersion, plan.AvailableVersion); err != nil {
		return err
	}
	if len(plan.Pending) == 0 {
		return writePlain(w, "No pending migrations.\n")
	}
	if err := writePlain(w, "Pending migrations: %d\n", len(plan.Pending)); err != nil {
		return err
	}
	for _, m := range plan.Pending {
		if err := writePlain(w, "  %d: %s\n", m.Version, m.Description); err != nil {
			return err
		}
	}
	return nil
}
