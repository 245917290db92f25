package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/buemura/rock/internal/crawler"
	"github.com/buemura/rock/internal/scan"
	"github.com/buemura/rock/internal/web"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the rock scan API server",
		Long:  "Serves a JSON API that runs scans as background jobs and renders their reports.",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := newRegistry()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := web.NewServer(addr, reg, *a.cfg, a.logger, scan.WithCrawler(crawler.New()))
			fmt.Fprintf(cmd.OutOrStdout(), "rock API listening on %s\n", addr)
			return s.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":3000", "listen address (host:port)")
	return cmd
}
