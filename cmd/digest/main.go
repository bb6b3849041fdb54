// cmd/digest/main.go

// Package main is the tariff digest command line entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tariff_digest/internal/domain/report"
	"tariff_digest/internal/infra/config"
	"tariff_digest/internal/infra/scheduler"
)

var errReportFailed = errors.New("one or more reports failed")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "digest",
		Short: "Build the dated tariff news digest",
		Long: `digest builds one static page per report date.

Without a subcommand it behaves like "run": FORCE_REPORT_DATE=YYYY-MM-DD
rebuilds that single date, otherwise today's report is built and announced.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDefault,
	}
	root.AddCommand(
		&cobra.Command{Use: "run", Short: "Build today's report (or FORCE_REPORT_DATE) and announce it", RunE: runDefault},
		newRebuildCommand(),
		newBackfillCommand(),
		newServeCommand(),
		newStatusCommand(),
	)
	return root
}

func runDefault(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	outcome, err := a.dispatcher.Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), outcome)
	if outcome.Status == report.OutcomeFailed {
		return errReportFailed
	}
	return nil
}

func newRebuildCommand() *cobra.Command {
	var (
		date  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Regenerate the report for one date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := report.ParseDate(date)
			if err != nil {
				return err
			}
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			outcome, err := a.rebuild.Rebuild(cmd.Context(), d, force)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outcome)
			if outcome.Status == report.OutcomeFailed {
				return errReportFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "report date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&force, "force", false, "rebuild even if already built")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newBackfillCommand() *cobra.Command {
	var (
		from, to string
		force    bool
		onError  string
	)
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Build every missing report in an inclusive date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := parseBackfillRequest(from, to, force, onError)
			if err != nil {
				return err
			}
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.backfill.Backfill(cmd.Context(), req)
			printOutcomes(cmd.OutOrStdout(), result.Outcomes)
			if err != nil {
				return err
			}
			if failed := result.FailedDates(); len(failed) > 0 {
				return fmt.Errorf("%w: %d of %d date(s), first %s", errReportFailed, len(failed), len(result.Outcomes), failed[0])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first report date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last report date, inclusive (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&force, "force", false, "rebuild dates that are already built")
	cmd.Flags().StringVar(&onError, "on-error", string(report.ContinueAndCollect), "abort|continue")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// parseBackfillRequest validates flags before anything is wired.
func parseBackfillRequest(from, to string, force bool, onError string) (report.BackfillRequest, error) {
	f, err := report.ParseDate(from)
	if err != nil {
		return report.BackfillRequest{}, err
	}
	t, err := report.ParseDate(to)
	if err != nil {
		return report.BackfillRequest{}, err
	}
	policy, err := report.ParseErrorPolicy(onError)
	if err != nil {
		return report.BackfillRequest{}, err
	}
	req := report.BackfillRequest{From: f, To: t, Force: force, OnError: policy}
	return req, req.Validate()
}

func newServeCommand() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the daily report on CRON_SPEC_DAILY until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := checkServable(a.cfg); err != nil {
				return err
			}

			s := scheduler.NewReportScheduler(a.dispatcher, a.logger, a.cfg.Location, a.cfg.CronSpecDaily, timeout)
			if err := s.Start(); err != nil {
				return fmt.Errorf("could not schedule daily report: %w", err)
			}
			a.logger.Info("Scheduler running, waiting for signal")
			<-cmd.Context().Done()
			s.Stop()
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "job-timeout", 10*time.Minute, "maximum duration of one daily run")
	return cmd
}

// checkServable rejects a daemon started with a one-shot forced date.
func checkServable(cfg *config.AppConfig) error {
	if cfg.ForcedReportDate != nil {
		return fmt.Errorf("%w: FORCE_REPORT_DATE=%s is a single rebuild, use \"run\" or \"rebuild\" instead of \"serve\"",
			report.ErrConfiguration, cfg.ForcedReportDate)
	}
	return nil
}

func newStatusCommand() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show stored report records for a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := report.ParseDate(from)
			if err != nil {
				return err
			}
			t, err := report.ParseDate(to)
			if err != nil {
				return err
			}
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.repo.List(cmd.Context(), f, t)
			if err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first report date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last report date, inclusive (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func printOutcomes(w io.Writer, outcomes []report.Outcome) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Date", "Status", "Items", "Error"})
	for _, o := range outcomes {
		msg := ""
		if o.Err != nil {
			msg = o.Err.Error()
		}
		tbl.AppendRow(table.Row{o.Date.String(), string(o.Status), o.Fingerprint.ItemCount, msg})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d date(s)", len(outcomes))})
	tbl.Render()
}

func printRecords(w io.Writer, records []*report.Record) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Date", "Status", "Items", "Fingerprint", "Updated", "Last error"})
	for _, r := range records {
		tbl.AppendRow(table.Row{
			r.Date.String(), string(r.Status), r.ItemCount, r.Fingerprint,
			r.UpdatedAt.Format(time.RFC3339), r.LastError,
		})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d record(s)", len(records))})
	tbl.Render()
}
