package main

import (
	"context"
	"fmt"
	"time"

	"bizsuite/internal/jobs/background"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// jobsCmd runs one daily job immediately, outside the scheduler
func jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Run a background job once",
	}

	var (
		month string
		force bool
	)
	rent := &cobra.Command{
		Use:   "rent-invoices",
		Short: "Generate monthly rent invoices and flag overdue ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month != "" {
				if _, err := time.Parse("2006-01", month); err != nil {
					return fmt.Errorf("--month must be YYYY-MM: %w", err)
				}
			}
			return runJob(cmd.Context(), func(ctx context.Context, r *background.Runner) (*background.RunReport, error) {
				return r.RunRentInvoices(ctx, month, force)
			})
		},
	}
	rent.Flags().StringVar(&month, "month", "", "billing month as YYYY-MM (default current month)")
	rent.Flags().BoolVar(&force, "force", false, "generate even when auto generation is off or today is not the generation day")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "followups",
			Short: "Process due quotation follow-ups",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runJob(cmd.Context(), (*background.Runner).RunFollowups)
			},
		},
		&cobra.Command{
			Use:   "expiry",
			Short: "Expire stale sent quotations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runJob(cmd.Context(), (*background.Runner).RunExpiry)
			},
		},
		rent,
	)
	return cmd
}

func runJob(ctx context.Context, run func(ctx context.Context, r *background.Runner) (*background.RunReport, error)) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := run(ctx, a.runner)
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%s failed for %d of %d tenants", report.Job, report.Failed, report.Tenants)
	}
	log.Info("job finished", zap.String("job", report.Job), zap.Int("processed", report.Processed))
	return nil
}
