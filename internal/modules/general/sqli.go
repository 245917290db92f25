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

var sqliPayloads = []string{
	`'`,
	`"`,
	`' OR '1'='1`,
	`' UNION SELECT NULL--`,
}

// sqlErrors are lower-case database error signatures.
var sqlErrors = []string{
	"you have an error in your sql syntax",
	"sql syntax",
	"mysql_fetch",
	"ora-0",
	"pg_query",
	"postgresql",
	"sqlite3::",
	"sqlite error",
	"odbc",
	"unclosed quotation mark",
	"quoted string not properly terminated",
}

type sqliModule struct {
	cfg    config.ModuleConfig
	params []string
}

func newSQLi(cfg config.ModuleConfig) scan.Module {
	return &sqliModule{cfg: cfg}
}

func (m *sqliModule) Check(ctx context.Context) (bool, error) {
	m.params = queryParams(m.cfg.GetTarget())
	return len(m.params) > 0, nil
}

// Run looks for database errors that appear only once a parameter is tampered with.
func (m *sqliModule) Run(ctx context.Context) (*types.Finding, error) {
	client := newClient(m.cfg, true)
	target := m.cfg.GetTarget()

	baseline := ""
	if resp, err := fetch(ctx, client, http.MethodGet, target, nil); err == nil {
		baseline = strings.ToLower(resp.body)
	}

	var hits []string
	var evidence []string
	for _, param := range m.params {
		for _, payload := range sqliPayloads {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			testURL := setQueryParam(target, param, payload)
			resp, err := fetch(ctx, client, http.MethodGet, testURL, nil)
			if err != nil {
				continue
			}
			if pattern := sqlError(strings.ToLower(resp.body), baseline); pattern != "" {
				hits = append(hits, param)
				evidence = append(evidence, fmt.Sprintf("%s=%q produced %q", param, payload, pattern))
				break
			}
		}
	}

	if len(hits) == 0 {
		return nil, nil
	}

	return &types.Finding{
		Title:       "Error-based SQL injection",
		Description: fmt.Sprintf("Tampering with parameter(s) %s makes the server leak database error messages.", strings.Join(hits, ", ")),
		Severity:    types.SeverityCritical,
		Evidence:    strings.Join(evidence, "; "),
		Remediation: "Use parameterized queries and never concatenate user input into SQL statements. Suppress database errors in responses.",
		Metadata: map[string]string{
			"params": strings.Join(hits, ","),
		},
	}, nil
}

// sqlError returns the first signature present in body but absent from baseline.
func sqlError(body, baseline string) string {
	for _, pattern := range sqlErrors {
		if strings.Contains(body, pattern) && !strings.Contains(baseline, pattern) {
			return pattern
		}
	}
	return ""
}
