package scan

import (
	"context"
	"testing"

	"github.com/buemura/rock/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand_CrawlingDisabled(t *testing.T) {
	crawler := &stubCrawler{urls: []string{"http://x/other"}}
	cfg := config.CrawlerConfig{Target: "http://example.test"}

	urls, err := Expand(context.Background(), cfg, crawler)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://example.test"}, urls)
	assert.Zero(t, crawler.calls.Load())
}

func TestExpand_CrawlingDedupes(t *testing.T) {
	crawler := &stubCrawler{urls: []string{"http://x/1", "http://x/1", "http://x/2"}}
	cfg := config.CrawlerConfig{Enabled: true, Target: "http://x/"}

	urls, err := Expand(context.Background(), cfg, crawler)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"http://x/1", "http://x/2"}, urls)
}

func TestExpand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.CrawlerConfig
		crawler Crawler
	}{
		{name: "no target", cfg: config.CrawlerConfig{}},
		{name: "no crawler", cfg: config.CrawlerConfig{Enabled: true, Target: "http://x/"}},
		{name: "crawler error", cfg: config.CrawlerConfig{Enabled: true, Target: "http://x/"}, crawler: &stubCrawler{err: errBoom}},
		{name: "empty crawl", cfg: config.CrawlerConfig{Enabled: true, Target: "http://x/"}, crawler: &stubCrawler{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Expand(context.Background(), tt.cfg, tt.crawler)
			assert.ErrorIs(t, err, ErrExpand)
		})
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"a", "", "b", "a", "c", "b"})
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Empty(t, Dedupe(nil))
}
