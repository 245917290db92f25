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

var xssPayloads = []string{
	`<script>alert(1)</script>`,
	`"><img src=x onerror=alert(1)>`,
	`'"><svg/onload=alert(1)>`,
}

type xssModule struct {
	cfg    config.ModuleConfig
	params []string
}

func newXSS(cfg config.ModuleConfig) scan.Module {
	return &xssModule{cfg: cfg}
}

// Check applies to URLs carrying at least one query parameter.
func (m *xssModule) Check(ctx context.Context) (bool, error) {
	m.params = queryParams(m.cfg.GetTarget())
	return len(m.params) > 0, nil
}

func (m *xssModule) payloads() []string {
	if extra := m.cfg.Option("xss_payload", ""); extra != "" {
		return append([]string{extra}, xssPayloads...)
	}
	return xssPayloads
}

// Run injects each payload into each parameter and reports the parameters
// whose response echoes a payload verbatim.
func (m *xssModule) Run(ctx context.Context) (*types.Finding, error) {
	client := newClient(m.cfg, true)
	target := m.cfg.GetTarget()

	var hits []string
	var evidence []string
	for _, param := range m.params {
		for _, payload := range m.payloads() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			testURL := setQueryParam(target, param, payload)
			resp, err := fetch(ctx, client, http.MethodGet, testURL, nil)
			if err != nil {
				continue
			}
			if strings.Contains(resp.body, payload) {
				hits = append(hits, param)
				evidence = append(evidence, fmt.Sprintf("%s=%q reflected by %s", param, payload, testURL))
				break
			}
		}
	}

	if len(hits) == 0 {
		return nil, nil
	}

	return &types.Finding{
		Title:       "Reflected cross-site scripting",
		Description: fmt.Sprintf("The response reflects unencoded input from parameter(s) %s.", strings.Join(hits, ", ")),
		Severity:    types.SeverityHigh,
		Evidence:    strings.Join(evidence, "; "),
		Remediation: "Encode all user-supplied input for the HTML context it is written into and add a restrictive Content-Security-Policy.",
		Metadata: map[string]string{
			"params": strings.Join(hits, ","),
		},
	}, nil
}
