package scan

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/pkg/types"
)

// stubModule is a configurable Module used across the engine tests.
type stubModule struct {
	cfg        config.ModuleConfig
	applicable bool
	finding    string
	checkErr   error
	runErr     error
	panicIn    types.Stage
	delay      time.Duration
	probe      *probe
}

func (m *stubModule) Check(ctx context.Context) (bool, error) {
	if m.probe != nil {
		m.probe.enter(m)
		defer m.probe.leave(m)
	}
	if m.panicIn == types.StageCheck {
		panic("check exploded")
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.checkErr != nil {
		return false, m.checkErr
	}
	if m.applicable && m.probe != nil {
		m.probe.applicable(m.cfg.GetTarget())
	}
	return m.applicable, nil
}

func (m *stubModule) Run(ctx context.Context) (*types.Finding, error) {
	if m.probe != nil {
		m.probe.runs.Add(1)
	}
	if m.panicIn == types.StageRun {
		panic("run exploded")
	}
	if m.runErr != nil {
		return nil, m.runErr
	}
	if m.finding == "" {
		return nil, nil
	}
	return &types.Finding{Title: m.finding, Severity: types.SeverityInfo}, nil
}

// stubDescriptor builds a descriptor whose factory copies tmpl for every
// instance and records the configured target.
func stubDescriptor(name string, tmpl stubModule) Descriptor {
	return Descriptor{
		Name:        name,
		Description: "stub " + name,
		New: func(cfg config.ModuleConfig) Module {
			m := tmpl
			m.cfg = cfg
			if m.probe != nil {
				m.probe.configured(name, cfg.GetTarget())
			}
			if m.panicIn == types.StageConfigure {
				panic("configure exploded")
			}
			return &m
		},
	}
}

// probe observes module instances from the outside.
type probe struct {
	mu        sync.Mutex
	calls     map[string]int
	checkedOK map[string]bool
	inUse     map[*stubModule]bool

	active    atomic.Int64
	maxActive atomic.Int64
	runs      atomic.Int64
	reentered atomic.Int64
}

func newProbe() *probe {
	return &probe{
		calls:     make(map[string]int),
		checkedOK: make(map[string]bool),
		inUse:     make(map[*stubModule]bool),
	}
}

func (p *probe) configured(name, url string) {
	p.mu.Lock()
	p.calls[name+" "+url]++
	p.mu.Unlock()
}

func (p *probe) applicable(url string) {
	p.mu.Lock()
	p.checkedOK[url] = true
	p.mu.Unlock()
}

func (p *probe) enter(m *stubModule) {
	p.mu.Lock()
	if p.inUse[m] {
		p.reentered.Add(1)
	}
	p.inUse[m] = true
	p.mu.Unlock()

	n := p.active.Add(1)
	for {
		cur := p.maxActive.Load()
		if n <= cur || p.maxActive.CompareAndSwap(cur, n) {
			break
		}
	}
}

func (p *probe) leave(m *stubModule) {
	p.active.Add(-1)
	p.mu.Lock()
	delete(p.inUse, m)
	p.mu.Unlock()
}

func (p *probe) callCount(name, url string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[name+" "+url]
}

func (p *probe) totalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		n += c
	}
	return n
}

type stubProber struct {
	reachable bool
	calls     atomic.Int64
}

func (p *stubProber) Probe(_ context.Context, _ string) bool {
	p.calls.Add(1)
	return p.reachable
}

type stubCrawler struct {
	urls  []string
	err   error
	calls atomic.Int64
}

func (c *stubCrawler) Crawl(_ context.Context, _ config.CrawlerConfig) ([]string, error) {
	c.calls.Add(1)
	return c.urls, c.err
}

var errBoom = errors.New("boom")
