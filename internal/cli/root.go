package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/buemura/rock/internal/config"
	apimodules "github.com/buemura/rock/internal/modules/api"
	"github.com/buemura/rock/internal/modules/general"
	"github.com/buemura/rock/internal/scan"
	"github.com/spf13/cobra"
)

var version = "dev"

// app carries state shared by the commands of one invocation.
type app struct {
	configFile string
	// cfg is available after PersistentPreRunE.
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "rock",
		Short: "rock - web surface scan engine",
		Long: `rock runs pluggable scan modules against a web target. It checks the
target is reachable, optionally crawls it for more URLs, and runs every
module of a category against every URL on a bounded worker pool.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ~/.rock.yaml)")
	flags.StringP("target", "t", "", "target host or URL")
	flags.StringP("output", "o", "table", "output format: table, json, markdown, html")
	flags.BoolP("verbose", "v", false, "debug logging")
	flags.IntP("threads", "c", 10, "worker pool size")
	flags.Duration("timeout", 10*time.Second, "per-request timeout for modules")
	flags.Duration("probe-timeout", config.DefaultProbeTimeout, "reachability probe timeout")
	flags.StringArrayP("header", "H", nil, `extra request header "Name: value" (repeatable)`)
	flags.StringSliceP("exclude", "x", nil, "modules to skip (comma separated)")
	flags.StringArray("option", nil, "module option key=value (repeatable)")
	flags.Bool("crawl", false, "crawl the target for more URLs")
	flags.Int("crawl-depth", 2, "maximum crawl depth")
	flags.Int("max-urls", 100, "maximum number of crawled URLs")

	rootCmd.AddCommand(
		newScanCmd(a),
		newModulesCmd(a),
		newServeCmd(a),
		newInteractiveCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// load resolves the layered configuration and sets up logging.
func (a *app) load(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if a.configFile != "" {
		cfg, err = config.LoadFromFile(a.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := config.ApplyFlags(cfg, cmd); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newRegistry returns a registry holding every shipped module.
func newRegistry() (*scan.Registry, error) {
	reg := scan.NewRegistry()
	if err := general.Register(reg); err != nil {
		return nil, err
	}
	if err := apimodules.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
