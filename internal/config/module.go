package config

import (
	"maps"
	"path"
	"sort"
	"strings"
	"time"
)

// ModuleConfig is handed to a module factory for one (module, URL) pair.
type ModuleConfig struct {
	Target  string
	Headers map[string]string
	Timeout time.Duration
	Verbose bool
	Options map[string]string
}

// WithTarget returns a deep copy of c aimed at target.
func (c ModuleConfig) WithTarget(target string) ModuleConfig {
	c.Target = target
	c.Headers = maps.Clone(c.Headers)
	c.Options = maps.Clone(c.Options)
	return c
}

// GetTarget returns the URL the module should scan.
func (c ModuleConfig) GetTarget() string { return c.Target }

// Option returns the named module option, or def when unset.
func (c ModuleConfig) Option(key, def string) string {
	if v, ok := c.Options[key]; ok && v != "" {
		return v
	}
	return def
}

// CrawlerConfig drives target expansion.
type CrawlerConfig struct {
	Enabled     bool
	Target      string
	Depth       int
	MaxURLs     int
	Concurrency int
	SameHost    bool
	Headers     map[string]string
	Timeout     time.Duration
}

// IsEnabled reports whether the target should be crawled.
func (c CrawlerConfig) IsEnabled() bool { return c.Enabled }

// GetTarget returns the crawl seed.
func (c CrawlerConfig) GetTarget() string { return c.Target }

// ExcludedModules is a set of module identifiers to skip during discovery.
type ExcludedModules map[string]struct{}

// NewExcludedModules builds an exclusion set from module identifiers.
func NewExcludedModules(names ...string) ExcludedModules {
	ex := make(ExcludedModules, len(names))
	for _, n := range names {
		if key := moduleKey(n); key != "" {
			ex[key] = struct{}{}
		}
	}
	return ex
}

// Included reports whether the named module survives the exclusion filter.
func (e ExcludedModules) Included(name string) bool {
	_, excluded := e[moduleKey(name)]
	return !excluded
}

// Names returns the excluded identifiers in sorted order.
func (e ExcludedModules) Names() []string {
	names := make([]string, 0, len(e))
	for n := range e {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// moduleKey folds case and drops a trailing source extension, so "SQLi.go"
// and "sqli.py" both name the sqli module.
func moduleKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch path.Ext(name) {
	case ".go", ".py":
		name = strings.TrimSuffix(name, path.Ext(name))
	}
	return name
}
