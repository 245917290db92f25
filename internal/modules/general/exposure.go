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
	"github.com/google/uuid"
)

// sensitivePath is a file that should never be served. marker, when set,
// must appear in the body for the hit to count.
type sensitivePath struct {
	path     string
	severity types.Severity
	marker   string
}

var sensitivePaths = []sensitivePath{
	{path: "/.git/HEAD", severity: types.SeverityHigh, marker: "ref:"},
	{path: "/.git/config", severity: types.SeverityHigh, marker: "[core]"},
	{path: "/.env", severity: types.SeverityCritical, marker: "="},
	{path: "/.svn/entries", severity: types.SeverityHigh},
	{path: "/.htpasswd", severity: types.SeverityHigh, marker: ":"},
	{path: "/.DS_Store", severity: types.SeverityLow},
	{path: "/wp-config.php.bak", severity: types.SeverityCritical},
	{path: "/config.php.bak", severity: types.SeverityCritical},
	{path: "/backup.zip", severity: types.SeverityHigh},
	{path: "/backup.sql", severity: types.SeverityHigh},
	{path: "/phpinfo.php", severity: types.SeverityMedium, marker: "phpinfo"},
	{path: "/server-status", severity: types.SeverityMedium, marker: "Apache"},
}

type exposureModule struct {
	cfg    config.ModuleConfig
	origin string
}

func newExposure(cfg config.ModuleConfig) scan.Module {
	return &exposureModule{cfg: cfg}
}

// Check applies to http(s) URLs. Probes go to the origin, not the page path.
func (m *exposureModule) Check(ctx context.Context) (bool, error) {
	u, err := url.Parse(m.cfg.GetTarget())
	if err != nil {
		return false, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false, nil
	}
	m.origin = u.Scheme + "://" + u.Host
	return true, nil
}

func (m *exposureModule) Run(ctx context.Context) (*types.Finding, error) {
	client := newClient(m.cfg, false)

	// Servers that answer 200 for everything are detected by a path that
	// cannot exist.
	baseline, err := fetch(ctx, client, http.MethodGet, m.origin+"/"+uuid.NewString(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", m.origin, err)
	}

	severity := types.SeverityInfo
	var found []string
	for _, sp := range sensitivePaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := fetch(ctx, client, http.MethodGet, m.origin+sp.path, nil)
		if err != nil {
			continue
		}
		if !exposed(sp, resp, baseline) {
			continue
		}
		severity = types.MaxSeverity(severity, sp.severity)
		found = append(found, sp.path)
	}
	if len(found) == 0 {
		return nil, nil
	}

	return &types.Finding{
		Title:       fmt.Sprintf("Sensitive files exposed (%d)", len(found)),
		Description: "The server returns files that leak source code, credentials or server internals.",
		Severity:    severity,
		Evidence:    "HTTP 200 for " + strings.Join(found, ", "),
		Remediation: "Remove the files from the web root or deny access to them in the server configuration.",
		Metadata: map[string]string{
			"origin": m.origin,
			"paths":  strings.Join(found, ","),
		},
	}, nil
}

func exposed(sp sensitivePath, resp, baseline *response) bool {
	if resp.status != http.StatusOK || resp.body == "" {
		return false
	}
	if baseline.status == http.StatusOK && resp.body == baseline.body {
		return false
	}
	return sp.marker == "" || strings.Contains(resp.body, sp.marker)
}
