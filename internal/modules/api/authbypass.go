package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/internal/scan"
	"github.com/buemura/rock/pkg/types"
)

// bypassPayloads are Authorization values a broken token check may accept.
var bypassPayloads = []struct {
	name  string
	value string
}{
	{"empty header", ""},
	{"Bearer null", "Bearer null"},
	{"Bearer undefined", "Bearer undefined"},
	{"Bearer empty", "Bearer "},
	{"Basic empty", "Basic " + base64.StdEncoding.EncodeToString([]byte(":"))},
}

type authBypassModule struct {
	cfg    config.ModuleConfig
	client *http.Client
	denied int
}

func newAuthBypass(cfg config.ModuleConfig) scan.Module {
	return &authBypassModule{cfg: cfg}
}

// Check applies when an anonymous GET is refused with 401 or 403.
func (m *authBypassModule) Check(ctx context.Context) (bool, error) {
	target := m.cfg.GetTarget()
	if !isHTTP(target) {
		return false, nil
	}
	m.client = newClient(m.cfg, true)
	status, _, err := get(ctx, m.client, target, nil)
	if err != nil {
		return false, fmt.Errorf("HTTP GET %s: %w", target, err)
	}
	m.denied = status
	return status == http.StatusUnauthorized || status == http.StatusForbidden, nil
}

func (m *authBypassModule) Run(ctx context.Context) (*types.Finding, error) {
	target := m.cfg.GetTarget()
	for _, p := range bypassPayloads {
		status, _, err := get(ctx, m.client, target, map[string]string{"Authorization": p.value})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if status != http.StatusOK {
			continue
		}
		return &types.Finding{
			Title:       "Authentication bypass via " + p.name,
			Description: fmt.Sprintf("The endpoint refuses anonymous requests with %d but returns 200 for a malformed Authorization header.", m.denied),
			Severity:    types.SeverityHigh,
			Evidence:    fmt.Sprintf("GET %s with Authorization: %q -> %d", target, p.value, status),
			Remediation: "Validate tokens server-side and reject null, empty or malformed credentials.",
			Metadata: map[string]string{
				"bypass_method": p.name,
				"denied_status": strconv.Itoa(m.denied),
			},
		}, nil
	}
	return nil, nil
}
