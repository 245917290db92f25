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

// headerRule is one required response header.
type headerRule struct {
	header    string
	severity  types.Severity
	httpsOnly bool
	// want, when set, is the only acceptable value (case-insensitive).
	want        string
	remediation string
}

var headerRules = []headerRule{
	{header: "Strict-Transport-Security", severity: types.SeverityHigh, httpsOnly: true,
		remediation: "Strict-Transport-Security: max-age=31536000; includeSubDomains"},
	{header: "Content-Security-Policy", severity: types.SeverityMedium,
		remediation: "Content-Security-Policy: default-src 'self'"},
	{header: "X-Content-Type-Options", severity: types.SeverityLow, want: "nosniff",
		remediation: "X-Content-Type-Options: nosniff"},
	{header: "X-Frame-Options", severity: types.SeverityLow,
		remediation: "X-Frame-Options: DENY"},
	{header: "Referrer-Policy", severity: types.SeverityLow,
		remediation: "Referrer-Policy: strict-origin-when-cross-origin"},
	{header: "Permissions-Policy", severity: types.SeverityLow,
		remediation: "Permissions-Policy: camera=(), microphone=(), geolocation=()"},
}

type headerIssue struct {
	rule  headerRule
	value string
}

func (i headerIssue) String() string {
	if i.value == "" {
		return "missing " + i.rule.header
	}
	return fmt.Sprintf("%s is %q, want %q", i.rule.header, i.value, i.rule.want)
}

// headerIssues applies headerRules to a response.
func headerIssues(h http.Header, isHTTPS bool) []headerIssue {
	var issues []headerIssue
	for _, rule := range headerRules {
		if rule.httpsOnly && !isHTTPS {
			continue
		}
		val := strings.TrimSpace(h.Get(rule.header))
		switch {
		case val == "":
			issues = append(issues, headerIssue{rule: rule})
		case rule.want != "" && !strings.EqualFold(val, rule.want):
			issues = append(issues, headerIssue{rule: rule, value: val})
		}
	}
	return issues
}

type headersModule struct {
	cfg    config.ModuleConfig
	issues []headerIssue
}

func newHeaders(cfg config.ModuleConfig) scan.Module {
	return &headersModule{cfg: cfg}
}

// Check fetches the page once and applies when any rule fails.
func (m *headersModule) Check(ctx context.Context) (bool, error) {
	target := m.cfg.GetTarget()
	resp, err := fetch(ctx, newClient(m.cfg, false), http.MethodGet, target, nil)
	if err != nil {
		return false, fmt.Errorf("HTTP GET %s: %w", target, err)
	}
	m.issues = headerIssues(resp.header, strings.HasPrefix(strings.ToLower(target), "https://"))
	return len(m.issues) > 0, nil
}

func (m *headersModule) Run(ctx context.Context) (*types.Finding, error) {
	if len(m.issues) == 0 {
		return nil, nil
	}

	severity := types.SeverityInfo
	names := make([]string, len(m.issues))
	details := make([]string, len(m.issues))
	fixes := make([]string, len(m.issues))
	for i, issue := range m.issues {
		severity = types.MaxSeverity(severity, issue.rule.severity)
		names[i] = issue.rule.header
		details[i] = issue.String()
		fixes[i] = issue.rule.remediation
	}

	return &types.Finding{
		Title:       fmt.Sprintf("Missing or misconfigured security headers (%d)", len(m.issues)),
		Description: "The response lacks security headers that protect against downgrade, clickjacking, MIME sniffing and injection attacks.",
		Severity:    severity,
		Evidence:    strings.Join(details, "; "),
		Remediation: "Add: " + strings.Join(fixes, " | "),
		Metadata: map[string]string{
			"headers": strings.Join(names, ","),
		},
	}, nil
}
