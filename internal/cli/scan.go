package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/buemura/rock/internal/crawler"
	"github.com/buemura/rock/internal/output"
	"github.com/buemura/rock/internal/scan"
	"github.com/buemura/rock/pkg/types"
	"github.com/spf13/cobra"
)

func newScanCmd(a *app) *cobra.Command {
	var (
		category string
		failOn   string
	)

	cmd := &cobra.Command{
		Use:   "scan [target]",
		Short: "Scan a target with every module of a category",
		Long: `Probes the target once, expands it into URLs when crawling is enabled,
then runs every module of the category against every URL.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.cfg.Target = args[0]
			}
			return a.runScan(cmd, scan.Category(category), failOn)
		},
	}

	cmd.Flags().StringVar(&category, "category", string(scan.CategoryGeneral), "module category to run")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "exit non-zero when a finding has at least this severity")
	return cmd
}

func (a *app) runScan(cmd *cobra.Command, category scan.Category, failOn string) error {
	cfg := a.cfg
	if cfg.Target == "" {
		return fmt.Errorf("--target (-t) is required")
	}
	target, err := types.NormalizeTarget(cfg.Target)
	if err != nil {
		return fmt.Errorf("invalid target: %w", err)
	}
	cfg.Target = target
	if err := cfg.Validate(); err != nil {
		return err
	}

	var threshold types.Severity
	if failOn != "" {
		if threshold, err = types.ParseSeverity(failOn); err != nil {
			return err
		}
	}

	formatter, err := output.GetFormatter(cfg.OutputFormat)
	if err != nil {
		return err
	}

	reg, err := newRegistry()
	if err != nil {
		return err
	}

	exec, err := scan.NewExecutor(cfg, reg, category,
		scan.WithCrawler(crawler.New()),
		scan.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := exec.Start(ctx)
	if err != nil {
		return err
	}

	if err := formatter.Format(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if threshold != "" {
		n := 0
		for _, f := range report.Findings {
			if f.Severity.AtLeast(threshold) {
				n++
			}
		}
		if n > 0 {
			return fmt.Errorf("%d findings at or above %s", n, threshold)
		}
	}
	return nil
}
