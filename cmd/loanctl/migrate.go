package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/Heethjain14/loan-management-system/internal/pkg/cleanup"
	"github.com/Heethjain14/loan-management-system/internal/pkg/config"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/driver"
	"github.com/Heethjain14/loan-management-system/internal/service/loans"

	"github.com/spf13/cobra"
)

func migrateApplicationsCmd(configPath *string) *cobra.Command {
	var (
		dryRun bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "migrate-applications",
		Short: "Re-key applications to their numeric id",
		Long: `Move every application document that carries a numericId to the
document id equal to that number. An existing document at the target id is
kept and the old one is deleted as a duplicate.

Examples:
  loanctl migrate-applications --dry-run
  loanctl migrate-applications --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			report, err := runMigration(ctx, *configPath, dryRun)
			if report != nil {
				if printErr := printReport(cmd.OutOrStdout(), report, asJSON); printErr != nil && err == nil {
					err = printErr
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the moves without writing")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func runMigration(ctx context.Context, configPath string, dryRun bool) (*loans.MigrationReport, error) {
	cfg, err := config.LoadFromConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init("loanctl", cfg.Logging.LogLevel)
	defer logger.Sync()

	loanStore, storeResource, err := driver.OpenLoanStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer cleanup.CleanupResources(ctx, nil, cfg.Server.ShutdownTimeout, storeResource)

	report, err := loans.NewLoanService(loanStore, nil, nil).MigrateApplications(ctx, dryRun)
	if err != nil {
		return report, fmt.Errorf("migration stopped: %w", err)
	}
	return report, nil
}

func printReport(w io.Writer, report *loans.MigrationReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	for _, m := range report.Moves {
		if report.DryRun {
			fmt.Fprintf(w, "would move %s -> %s\n", m.From, m.To)
			continue
		}
		fmt.Fprintf(w, "%s -> %s (%s)\n", m.From, m.To, m.Outcome)
	}
	mode := ""
	if report.DryRun {
		mode = " (dry run)"
	}
	_, err := fmt.Fprintf(w, "scanned %d, moved %d, duplicates deleted %d, skipped %d%s\n",
		report.Scanned, report.Moved, report.DuplicatesDeleted, report.Skipped, mode)
	return err
}
