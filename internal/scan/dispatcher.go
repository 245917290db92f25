package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/pkg/types"
	"github.com/panjf2000/ants/v2"
)

// Dispatcher runs the module × URL cross-product on a bounded worker pool.
type Dispatcher struct {
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher. A nil logger discards output.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{logger: logger}
}

// Dispatch schedules one work item per (module, URL) pair on a pool of
// threads workers, writes findings and failures into rs, and returns once
// every work item has finished. Submission blocks while all workers are busy.
func (d *Dispatcher) Dispatch(ctx context.Context, rs *ResultSet, modules []Descriptor, urls []string, base config.ModuleConfig, threads int) (types.Stats, error) {
	if threads < 1 {
		threads = 1
	}

	stats := types.Stats{
		Modules:   len(modules),
		URLs:      len(urls),
		WorkItems: len(modules) * len(urls),
	}
	if stats.WorkItems == 0 {
		return stats, nil
	}

	pool, err := ants.NewPool(threads)
	if err != nil {
		return stats, fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg         sync.WaitGroup
		applicable atomic.Int64
		findings   atomic.Int64
		failures   atomic.Int64
	)

	for _, desc := range modules {
		for _, u := range urls {
			item := workItem{desc: desc, url: u}
			wg.Add(1)
			err := pool.Submit(func() {
				defer wg.Done()
				switch d.run(ctx, rs, item, base) {
				case outcomeFinding:
					applicable.Add(1)
					findings.Add(1)
				case outcomeApplicable:
					applicable.Add(1)
				case outcomeFailed:
					failures.Add(1)
				}
			})
			if err != nil {
				wg.Done()
				d.record(rs, item, types.StageConfigure, fmt.Errorf("submitting work item: %w", err))
				failures.Add(1)
			}
		}
	}

	wg.Wait()

	stats.Applicable = int(applicable.Load())
	stats.Findings = int(findings.Load())
	stats.Failures = int(failures.Load())
	return stats, nil
}

type workItem struct {
	desc Descriptor
	url  string
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeApplicable
	outcomeFinding
	outcomeFailed
)

// run executes one work item. Factory, Check and Run failures, panics
// included, are recorded against the item and never escape.
func (d *Dispatcher) run(ctx context.Context, rs *ResultSet, item workItem, base config.ModuleConfig) (res outcome) {
	stage := types.StageConfigure
	defer func() {
		if r := recover(); r != nil {
			d.record(rs, item, stage, fmt.Errorf("panic: %v", r))
			res = outcomeFailed
		}
	}()

	if err := ctx.Err(); err != nil {
		d.record(rs, item, stage, err)
		return outcomeFailed
	}

	mod := item.desc.New(base.WithTarget(item.url))
	if mod == nil {
		d.record(rs, item, stage, errors.New("factory returned no module"))
		return outcomeFailed
	}

	stage = types.StageCheck
	ok, err := mod.Check(ctx)
	if err != nil {
		d.record(rs, item, stage, err)
		return outcomeFailed
	}
	if !ok {
		return outcomeSkipped
	}

	stage = types.StageRun
	f, err := mod.Run(ctx)
	if err != nil {
		d.record(rs, item, stage, err)
		return outcomeFailed
	}
	if f == nil {
		return outcomeApplicable
	}

	finding := *f
	if finding.Module == "" {
		finding.Module = item.desc.Name
	}
	if finding.URL == "" {
		finding.URL = item.url
	}
	rs.Add(finding)
	d.logger.Debug("finding", "module", finding.Module, "url", finding.URL, "severity", finding.Severity, "title", finding.Title)
	return outcomeFinding
}

func (d *Dispatcher) record(rs *ResultSet, item workItem, stage types.Stage, cause error) {
	rs.fail(types.TaskFailure{
		Module: item.desc.Name,
		URL:    item.url,
		Stage:  stage,
		Cause:  cause.Error(),
	})
	d.logger.Warn("work item failed", "module", item.desc.Name, "url", item.url, "stage", stage, "error", cause)
}
