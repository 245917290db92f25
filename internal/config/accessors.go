package config

import (
	"maps"
	"time"
)

// GetTarget returns the configured target URL.
func (c *Config) GetTarget() string { return c.Target }

// GetHeaders returns a copy of the configured request headers.
func (c *Config) GetHeaders() map[string]string { return maps.Clone(c.Headers) }

// GetThreads returns the dispatcher pool size, never less than one.
func (c *Config) GetThreads() int {
	if c.Threads < 1 {
		return 1
	}
	return c.Threads
}

// GetProbeTimeout returns the reachability probe timeout.
func (c *Config) GetProbeTimeout() time.Duration {
	if c.ProbeTimeout <= 0 {
		return DefaultProbeTimeout
	}
	return c.ProbeTimeout
}

// GetExcludedModules returns the set of module names to skip.
func (c *Config) GetExcludedModules() ExcludedModules {
	return NewExcludedModules(c.ExcludedModules...)
}

// GetModuleConfig returns the per-module configuration template. The
// target is the scan target; the dispatcher replaces it per URL.
func (c *Config) GetModuleConfig() ModuleConfig {
	return ModuleConfig{
		Target:  c.Target,
		Headers: maps.Clone(c.Headers),
		Timeout: c.Timeout,
		Verbose: c.Verbose,
		Options: maps.Clone(c.ModuleOptions),
	}
}

// GetCrawlerConfig returns the crawler sub-configuration seeded with the
// scan target.
func (c *Config) GetCrawlerConfig() CrawlerConfig {
	return CrawlerConfig{
		Enabled:     c.Crawler.Enabled,
		Target:      c.Target,
		Depth:       c.Crawler.Depth,
		MaxURLs:     c.Crawler.MaxURLs,
		Concurrency: c.Crawler.Concurrency,
		SameHost:    !c.Crawler.AnyHost,
		Headers:     maps.Clone(c.Headers),
		Timeout:     c.Timeout,
	}
}
