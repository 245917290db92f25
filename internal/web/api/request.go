package api

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"time"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/pkg/types"
)

// CreateScanRequest is the JSON body for POST /api/v1/scans. Zero values
// keep the server's configured defaults.
type CreateScanRequest struct {
	Target   string            `json:"target"`
	Category string            `json:"category"`
	Exclude  []string          `json:"exclude"`
	Headers  map[string]string `json:"headers"`
	Options  map[string]string `json:"options"`
	Threads  int               `json:"threads"`
	Timeout  string            `json:"timeout"`
	Crawl    *bool             `json:"crawl"`
	Depth    int               `json:"crawl_depth"`
	MaxURLs  int               `json:"max_urls"`
}

// decodeCreateScanRequest reads and validates the request body.
func decodeCreateScanRequest(r *http.Request) (*CreateScanRequest, error) {
	var req CreateScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if req.Target == "" {
		return nil, fmt.Errorf("target is required")
	}
	if req.Threads < 0 {
		return nil, fmt.Errorf("threads must be non-negative")
	}
	if req.Depth < 0 || req.MaxURLs < 0 {
		return nil, fmt.Errorf("crawl_depth and max_urls must be non-negative")
	}
	if req.Timeout != "" {
		if _, err := time.ParseDuration(req.Timeout); err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", req.Timeout, err)
		}
	}

	return &req, nil
}

// apply layers the request over base and returns the job configuration.
func (req *CreateScanRequest) apply(base config.Config) (config.Config, error) {
	cfg := base

	target, err := types.NormalizeTarget(req.Target)
	if err != nil {
		return cfg, fmt.Errorf("invalid target: %w", err)
	}
	cfg.Target = target

	if len(req.Exclude) > 0 {
		cfg.ExcludedModules = append([]string(nil), req.Exclude...)
	}
	cfg.Headers = mergeMaps(base.Headers, req.Headers)
	cfg.ModuleOptions = mergeMaps(base.ModuleOptions, req.Options)
	if req.Threads > 0 {
		cfg.Threads = req.Threads
	}
	if req.Timeout != "" {
		cfg.Timeout, _ = time.ParseDuration(req.Timeout) // already validated
	}
	if req.Crawl != nil {
		cfg.Crawler.Enabled = *req.Crawl
	}
	if req.Depth > 0 {
		cfg.Crawler.Depth = req.Depth
	}
	if req.MaxURLs > 0 {
		cfg.Crawler.MaxURLs = req.MaxURLs
	}

	return cfg, cfg.Validate()
}

func mergeMaps(base, over map[string]string) map[string]string {
	if len(base) == 0 && len(over) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(over))
	maps.Copy(out, base)
	maps.Copy(out, over)
	return out
}
