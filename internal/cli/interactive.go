package cli

import (
	"github.com/buemura/rock/internal/crawler"
	"github.com/buemura/rock/internal/scan"
	"github.com/buemura/rock/internal/tui"
	"github.com/spf13/cobra"
)

func newInteractiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Launch the interactive terminal UI",
		Long:  "Pick a module category, enter a target and browse the report in a terminal UI. Flags and config apply to every scan started from it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := newRegistry()
			if err != nil {
				return err
			}
			// Log output would tear the alternate screen, so the executor
			// keeps its default discard logger.
			return tui.Run(reg, *a.cfg, scan.WithCrawler(crawler.New()))
		},
	}
}
