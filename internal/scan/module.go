// Package scan is rock's execution engine: it discovers the modules of a
// category, expands the target into URLs, gates the run on a reachability
// probe and dispatches every (module, URL) pair onto a bounded worker pool.
package scan

import (
	"context"
	"time"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/pkg/types"
)

// Module is one configured scan check aimed at a single URL. Check decides
// whether the check applies and must not change the target beyond the probe
// request it may send. Run is only called after Check returned true; a nil
// finding means nothing was found.
type Module interface {
	Check(ctx context.Context) (bool, error)
	Run(ctx context.Context) (*types.Finding, error)
}

// Factory configures a fresh Module instance. The dispatcher calls it once
// per work item, so instances are never shared between goroutines.
type Factory func(cfg config.ModuleConfig) Module

// Descriptor describes a registered module.
type Descriptor struct {
	Name        string
	Description string
	New         Factory
}

// Config is the read-only view of the scan configuration the engine needs.
type Config interface {
	GetTarget() string
	GetHeaders() map[string]string
	GetThreads() int
	GetProbeTimeout() time.Duration
	GetExcludedModules() config.ExcludedModules
	GetModuleConfig() config.ModuleConfig
	GetCrawlerConfig() config.CrawlerConfig
}

// Crawler expands a crawl seed into candidate URLs.
type Crawler interface {
	Crawl(ctx context.Context, cfg config.CrawlerConfig) ([]string, error)
}

// Prober answers whether a target can be contacted at all.
type Prober interface {
	Probe(ctx context.Context, target string) bool
}
