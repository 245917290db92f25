package general

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/internal/scan"
	"github.com/buemura/rock/pkg/types"
)

// redirectParams are parameter names commonly fed into redirects.
var redirectParams = []string{
	"url", "redirect", "next", "return", "goto",
	"dest", "redir", "redirect_uri", "return_to", "continue",
}

const defaultRedirectTarget = "https://evil.com"

type redirectModule struct {
	cfg config.ModuleConfig
}

func newRedirect(cfg config.ModuleConfig) scan.Module {
	return &redirectModule{cfg: cfg}
}

func (m *redirectModule) Check(ctx context.Context) (bool, error) {
	u, err := url.Parse(m.cfg.GetTarget())
	if err != nil {
		return false, err
	}
	return u.Scheme == "http" || u.Scheme == "https", nil
}

// candidates lists parameters already in the URL first, then the rest.
func candidates(rawURL string) []string {
	present := map[string]bool{}
	for _, p := range queryParams(rawURL) {
		present[strings.ToLower(p)] = true
	}
	var first, rest []string
	for _, p := range redirectParams {
		if present[p] {
			first = append(first, p)
		} else {
			rest = append(rest, p)
		}
	}
	return append(first, rest...)
}

// Run stops at the first parameter that redirects off-site.
func (m *redirectModule) Run(ctx context.Context) (*types.Finding, error) {
	evil := m.cfg.Option("redirect_target", defaultRedirectTarget)
	client := newClient(m.cfg, false)
	target := m.cfg.GetTarget()

	for _, param := range candidates(target) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		testURL := setQueryParam(target, param, evil)
		resp, err := fetch(ctx, client, http.MethodGet, testURL, nil)
		if err != nil {
			continue
		}
		if resp.status < 300 || resp.status >= 400 {
			continue
		}
		location := resp.header.Get("Location")
		if !strings.HasPrefix(location, evil) {
			continue
		}
		return &types.Finding{
			Title:       "Open redirect",
			Description: fmt.Sprintf("The %q parameter redirects visitors to an arbitrary external URL.", param),
			Severity:    types.SeverityMedium,
			Evidence:    fmt.Sprintf("GET %s -> %d Location: %s", testURL, resp.status, location),
			Remediation: "Validate redirect destinations against an allowlist or only accept relative paths.",
			Metadata: map[string]string{
				"param":    param,
				"location": location,
				"status":   fmt.Sprintf("%d", resp.status),
			},
		}, nil
	}

	return nil, nil
}
