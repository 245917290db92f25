package scan

import (
	"context"
	"errors"
	"fmt"

	"github.com/buemura/rock/internal/config"
)

// ErrExpand is returned when the target cannot be turned into a URL set.
var ErrExpand = errors.New("target expansion failed")

// Expand turns the crawl configuration into the URL set to scan. With
// crawling disabled the set is just the configured target.
func Expand(ctx context.Context, cfg config.CrawlerConfig, crawler Crawler) ([]string, error) {
	if !cfg.IsEnabled() {
		if cfg.GetTarget() == "" {
			return nil, fmt.Errorf("%w: no target configured", ErrExpand)
		}
		return []string{cfg.GetTarget()}, nil
	}

	if crawler == nil {
		return nil, fmt.Errorf("%w: crawling enabled but no crawler configured", ErrExpand)
	}

	urls, err := crawler.Crawl(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: crawling %s: %w", ErrExpand, cfg.GetTarget(), err)
	}
	urls = Dedupe(urls)
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: crawler returned no URLs for %s", ErrExpand, cfg.GetTarget())
	}
	return urls, nil
}

// Dedupe removes exact duplicates and empty strings, keeping first-seen order.
func Dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
