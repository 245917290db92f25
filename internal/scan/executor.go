package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/buemura/rock/pkg/types"
	"github.com/google/uuid"
)

// ErrAlreadyStarted is returned by a second Start on the same Executor.
var ErrAlreadyStarted = errors.New("executor already started")

// Executor runs one scan: probe, expand, dispatch, drain.
type Executor struct {
	cfg      Config
	category Category
	modules  []Descriptor
	results  *ResultSet

	crawler     Crawler
	prober      Prober
	probeClient *http.Client
	logger      *slog.Logger

	started atomic.Bool
}

// Option customises an Executor.
type Option func(*Executor)

// WithCrawler sets the crawler used when crawling is enabled.
func WithCrawler(c Crawler) Option {
	return func(e *Executor) { e.crawler = c }
}

// WithProber replaces the default reachability gate.
func WithProber(p Prober) Option {
	return func(e *Executor) { e.prober = p }
}

// WithHTTPClient makes the default gate probe with client. The configured
// probe timeout still applies.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Executor) { e.probeClient = client }
}

// WithLogger sets the logger for run progress and task failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExecutor discovers the modules of category and prepares a run. A
// discovery error is fatal: no executor is returned.
func NewExecutor(cfg Config, reg *Registry, category Category, opts ...Option) (*Executor, error) {
	if cfg == nil {
		return nil, errors.New("scan: nil config")
	}
	if reg == nil {
		return nil, fmt.Errorf("%w: nil registry", ErrDiscovery)
	}

	excluded := cfg.GetExcludedModules()
	modules, err := reg.Discover(category, excluded)
	if err != nil {
		return nil, err
	}

	e := &Executor{
		cfg:      cfg,
		category: category,
		modules:  modules,
		results:  NewResultSet(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	switch {
	case e.prober != nil:
	case e.probeClient != nil:
		e.prober = NewGateWithClient(e.probeClient, cfg.GetProbeTimeout())
	default:
		e.prober = NewGate(cfg.GetProbeTimeout(), cfg.GetHeaders())
	}

	for _, name := range excluded.Names() {
		if _, err := reg.Get(category, name); err != nil {
			e.logger.Warn("excluded module is not registered", "category", category, "module", name)
		}
	}
	return e, nil
}

// Modules returns the descriptors this executor will dispatch.
func (e *Executor) Modules() []Descriptor {
	return append([]Descriptor(nil), e.modules...)
}

// Category returns the scanner category being run.
func (e *Executor) Category() Category { return e.category }

// Start runs the scan and returns the aggregated report. It fails with
// ErrUnreachable, before any work item is scheduled, when the target does
// not answer the probe. Per-task failures are part of the report, not errors.
func (e *Executor) Start(ctx context.Context) (*types.Report, error) {
	if !e.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyStarted
	}

	target := e.cfg.GetTarget()
	report := &types.Report{
		ID:        uuid.NewString(),
		Target:    target,
		Category:  string(e.category),
		Modules:   Names(e.modules),
		StartedAt: time.Now(),
	}
	log := e.logger.With("run", report.ID, "target", target, "category", e.category)

	log.Debug("probing target")
	if !e.prober.Probe(ctx, target) {
		return nil, fmt.Errorf("%w: %s did not answer", ErrUnreachable, target)
	}

	urls, err := Expand(ctx, e.cfg.GetCrawlerConfig(), e.crawler)
	if err != nil {
		return nil, err
	}
	report.URLs = urls
	log.Info("dispatching", "modules", len(e.modules), "urls", len(urls), "threads", e.cfg.GetThreads())

	stats, err := NewDispatcher(log).Dispatch(ctx, e.results, e.modules, urls, e.cfg.GetModuleConfig(), e.cfg.GetThreads())
	if err != nil {
		return nil, err
	}

	findings, err := e.results.Drain()
	if err != nil {
		return nil, err
	}
	report.Findings = findings
	report.Failures = e.results.Failures()
	report.Stats = stats
	report.CompletedAt = time.Now()

	log.Info("scan complete",
		"findings", stats.Findings,
		"failures", stats.Failures,
		"work_items", stats.WorkItems,
		"duration", report.Duration().Round(time.Millisecond),
	)
	return report, nil
}
