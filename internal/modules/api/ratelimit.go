package api

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/internal/scan"
	"github.com/buemura/rock/pkg/types"
)

const defaultRequests = 20

var rateLimitHeaderNames = []string{
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	"X-RateLimit-Reset",
	"Retry-After",
	"RateLimit-Limit",
	"RateLimit-Remaining",
	"RateLimit-Reset",
}

type rateLimitModule struct {
	cfg      config.ModuleConfig
	requests int
}

func newRateLimit(cfg config.ModuleConfig) scan.Module {
	return &rateLimitModule{cfg: cfg}
}

// Check applies to http(s) URLs. The burst size comes from the
// ratelimit_requests option.
func (m *rateLimitModule) Check(ctx context.Context) (bool, error) {
	if !isHTTP(m.cfg.GetTarget()) {
		return false, nil
	}
	m.requests = defaultRequests
	if raw := m.cfg.Option("ratelimit_requests", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return false, fmt.Errorf("invalid ratelimit_requests %q", raw)
		}
		m.requests = n
	}
	return true, nil
}

func (m *rateLimitModule) Run(ctx context.Context) (*types.Finding, error) {
	client := newClient(m.cfg, false)
	target := m.cfg.GetTarget()

	var (
		headers   map[string]string
		responses int
	)
	for range m.requests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		status, h, err := get(ctx, client, target, nil)
		if err != nil {
			continue
		}
		responses++
		if status == http.StatusTooManyRequests {
			return nil, nil
		}
		if headers == nil {
			if found := rateLimitHeaders(h); len(found) > 0 {
				headers = found
			}
		}
	}
	if responses == 0 {
		return nil, fmt.Errorf("no responses from %s", target)
	}

	f := &types.Finding{
		Title:       "No rate limiting detected",
		Description: fmt.Sprintf("Sent %d rapid requests without receiving 429 Too Many Requests.", m.requests),
		Severity:    types.SeverityMedium,
		Remediation: "Rate limit the endpoint to slow down brute-force attempts and API abuse.",
		Metadata: map[string]string{
			"requests_sent": strconv.Itoa(m.requests),
		},
	}
	if headers != nil {
		// Advertised limits that are never enforced within the burst.
		f.Severity = types.SeverityLow
		f.Evidence = "rate limit headers present: " + formatHeaders(headers)
	}
	return f, nil
}

func rateLimitHeaders(h http.Header) map[string]string {
	headers := make(map[string]string)
	for _, name := range rateLimitHeaderNames {
		if val := h.Get(name); val != "" {
			headers[strings.ToLower(name)] = val
		}
	}
	return headers
}

func formatHeaders(headers map[string]string) string {
	parts := make([]string, 0, len(headers))
	for k, v := range headers {
		parts = append(parts, k+": "+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
