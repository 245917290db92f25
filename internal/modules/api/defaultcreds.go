package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/internal/scan"
	"github.com/buemura/rock/pkg/types"
)

var defaultCredentials = []struct {
	username string
	password string
}{
	{"admin", "admin"},
	{"admin", "password"},
	{"root", "root"},
	{"test", "test"},
}

// loginNames are the final path segments treated as login endpoints.
var loginNames = map[string]bool{
	"login":  true,
	"signin": true,
	"auth":   true,
	"token":  true,
}

type defaultCredsModule struct {
	cfg config.ModuleConfig
}

func newDefaultCreds(cfg config.ModuleConfig) scan.Module {
	return &defaultCredsModule{cfg: cfg}
}

// Check applies to URLs whose last path segment names a login endpoint.
func (m *defaultCredsModule) Check(ctx context.Context) (bool, error) {
	target := m.cfg.GetTarget()
	if !isHTTP(target) {
		return false, nil
	}
	u, err := url.Parse(target)
	if err != nil {
		return false, err
	}
	return loginNames[strings.ToLower(path.Base(u.Path))], nil
}

func (m *defaultCredsModule) Run(ctx context.Context) (*types.Finding, error) {
	client := newClient(m.cfg, true)
	target := m.cfg.GetTarget()

	for _, cred := range defaultCredentials {
		body := fmt.Sprintf(`{"username":%q,"password":%q}`, cred.username, cred.password)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		status, _, respBody, err := do(client, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if status != http.StatusOK && status != http.StatusCreated {
			continue
		}
		return &types.Finding{
			Title:       fmt.Sprintf("Default credentials accepted (%s/%s)", cred.username, cred.password),
			Description: "The login endpoint accepts a well-known default username and password.",
			Severity:    types.SeverityCritical,
			Evidence:    fmt.Sprintf("POST %s -> %d; body: %s", target, status, truncate(respBody, 200)),
			Remediation: "Change default credentials and enforce a strong password policy with account lockout.",
			Metadata: map[string]string{
				"username": cred.username,
				"status":   strconv.Itoa(status),
			},
		}, nil
	}
	return nil, nil
}
