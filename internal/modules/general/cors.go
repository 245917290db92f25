package general

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/internal/scan"
	"github.com/buemura/rock/pkg/types"
)

const probeOrigin = "https://evil.com"

type corsProbe struct {
	origin string
	method string
}

var corsProbes = []corsProbe{
	{origin: probeOrigin, method: http.MethodGet},
	{origin: probeOrigin, method: http.MethodOptions},
	{origin: "null", method: http.MethodGet},
	{origin: "null", method: http.MethodOptions},
}

type corsModule struct {
	cfg config.ModuleConfig
}

func newCORS(cfg config.ModuleConfig) scan.Module {
	return &corsModule{cfg: cfg}
}

// Check applies when the server emits Access-Control-Allow-Origin at all.
func (m *corsModule) Check(ctx context.Context) (bool, error) {
	target := m.cfg.GetTarget()
	resp, err := fetch(ctx, newClient(m.cfg, false), http.MethodGet, target, map[string]string{"Origin": probeOrigin})
	if err != nil {
		return false, fmt.Errorf("HTTP GET %s: %w", target, err)
	}
	return resp.header.Get("Access-Control-Allow-Origin") != "", nil
}

// Run sends every probe and reports the most severe misconfiguration.
func (m *corsModule) Run(ctx context.Context) (*types.Finding, error) {
	client := newClient(m.cfg, false)
	target := m.cfg.GetTarget()

	var worst *types.Finding
	for _, p := range corsProbes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		header := map[string]string{"Origin": p.origin}
		if p.method == http.MethodOptions {
			header["Access-Control-Request-Method"] = http.MethodGet
		}
		resp, err := fetch(ctx, client, p.method, target, header)
		if err != nil {
			continue
		}
		f := evaluateCORS(p, resp.header)
		if f == nil {
			continue
		}
		if worst == nil || types.SeverityRank(f.Severity) < types.SeverityRank(worst.Severity) {
			worst = f
		}
	}

	return worst, nil
}

func evaluateCORS(p corsProbe, h http.Header) *types.Finding {
	acao := h.Get("Access-Control-Allow-Origin")
	acac := h.Get("Access-Control-Allow-Credentials")
	if acao == "" {
		return nil
	}

	evidence := fmt.Sprintf("%s Origin: %s -> Access-Control-Allow-Origin: %s", p.method, p.origin, acao)
	if acac != "" {
		evidence += ", Access-Control-Allow-Credentials: " + acac
	}
	meta := map[string]string{"method": p.method, "origin": p.origin, "allow_origin": acao}

	switch {
	case strings.EqualFold(acac, "true") && (acao == "*" || acao == p.origin):
		return &types.Finding{
			Title:       "CORS allows credentialed requests from any origin",
			Description: "Credentials are allowed together with a wildcard or reflected origin, so any site can make authenticated requests and read the response.",
			Severity:    types.SeverityCritical,
			Evidence:    evidence,
			Remediation: "Allow credentials only for an explicit list of trusted origins.",
			Metadata:    meta,
		}
	case p.origin == probeOrigin && acao == p.origin:
		return &types.Finding{
			Title:       "CORS reflects arbitrary origins",
			Description: "The server copies the request Origin into Access-Control-Allow-Origin.",
			Severity:    types.SeverityHigh,
			Evidence:    evidence,
			Remediation: "Compare the Origin header against an allowlist instead of reflecting it.",
			Metadata:    meta,
		}
	case p.origin == "null" && acao == "null":
		return &types.Finding{
			Title:       "CORS allows the null origin",
			Description: "Sandboxed iframes and data: documents send Origin: null and are granted access.",
			Severity:    types.SeverityMedium,
			Evidence:    evidence,
			Remediation: "Never list null as an allowed origin.",
			Metadata:    meta,
		}
	case acao == "*":
		return &types.Finding{
			Title:       "CORS wildcard origin",
			Description: "Any origin may read unauthenticated responses.",
			Severity:    types.SeverityLow,
			Evidence:    evidence,
			Remediation: "Restrict Access-Control-Allow-Origin to the origins that need it.",
			Metadata:    meta,
		}
	}
	return nil
}
