package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/buemura/rock/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCmd runs a fresh command tree and returns stdout and stderr.
func executeCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func reflectingServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "<html>%s</html>", r.URL.Query().Get("q"))
	}))
}

func TestVersionCommand(t *testing.T) {
	out, _, err := executeCmd(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "rock version")
}

func TestRootHelpListsCommands(t *testing.T) {
	out, _, err := executeCmd(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"scan", "modules", "serve", "interactive", "version"} {
		assert.Contains(t, out, name)
	}
}

func TestScanMissingTarget(t *testing.T) {
	_, _, err := executeCmd(t, "scan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--target")
}

func TestScanInvalidTarget(t *testing.T) {
	_, _, err := executeCmd(t, "scan", "-t", "ftp://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid target")
}

func TestScanUnknownCategory(t *testing.T) {
	_, _, err := executeCmd(t, "scan", "-t", "http://127.0.0.1:1", "--category", "mobile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mobile")
}

func TestScanUnreachable(t *testing.T) {
	srv := reflectingServer()
	url := srv.URL
	srv.Close()

	_, _, err := executeCmd(t, "scan", url, "--probe-timeout", "2s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestScanTableOutput(t *testing.T) {
	srv := reflectingServer()
	defer srv.Close()

	out, logs, err := executeCmd(t, "scan", "-t", srv.URL+"/?q=test", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Reflected cross-site scripting")
	assert.Contains(t, out, "Missing or misconfigured security headers")
	assert.Contains(t, logs, "scan complete")
}

func TestScanJSONOutput(t *testing.T) {
	srv := reflectingServer()
	defer srv.Close()

	out, _, err := executeCmd(t, "scan", srv.URL+"/?q=test", "-o", "json", "-x", "headers,cors")
	require.NoError(t, err)

	var report types.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "general", report.Category)
	assert.Equal(t, []string{"exposure", "redirect", "sqli", "tls", "xss"}, report.Modules)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "xss", report.Findings[0].Module)
	assert.Equal(t, srv.URL+"/?q=test", report.Findings[0].URL)
}

func TestScanHeadersAreSent(t *testing.T) {
	seen := make(chan string, 32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case seen <- r.Header.Get("X-Api-Key"):
		default:
		}
	}))
	defer srv.Close()

	_, _, err := executeCmd(t, "scan", srv.URL, "-o", "json", "-H", "X-Api-Key: k1", "-x", "redirect,cors,xss,sqli")
	require.NoError(t, err)

	close(seen)
	require.NotEmpty(t, seen)
	for v := range seen {
		assert.Equal(t, "k1", v)
	}
}

func TestScanFailOn(t *testing.T) {
	srv := reflectingServer()
	defer srv.Close()

	_, _, err := executeCmd(t, "scan", srv.URL+"/?q=1", "-o", "json", "--fail-on", "high")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at or above HIGH")

	_, _, err = executeCmd(t, "scan", srv.URL+"/?q=1", "-o", "json", "--fail-on", "critical")
	assert.NoError(t, err)

	_, _, err = executeCmd(t, "scan", srv.URL, "--fail-on", "soon")
	assert.Error(t, err)
}

func TestScanCrawl(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<a href="/search?q=x">search</a>`)
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<p>%s</p>", r.URL.Query().Get("q"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	out, _, err := executeCmd(t, "scan", srv.URL+"/", "--crawl", "-o", "json", "-x", "headers")
	require.NoError(t, err)

	var report types.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.ElementsMatch(t, []string{srv.URL + "/", srv.URL + "/search?q=x"}, report.URLs)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, srv.URL+"/search?q=x", report.Findings[0].URL)
}

func TestScanConfigFile(t *testing.T) {
	srv := reflectingServer()
	defer srv.Close()

	cfgFile := filepath.Join(t.TempDir(), "rock.yaml")
	content := fmt.Sprintf("target: %q\noutput_format: json\nexcluded_modules: [headers, cors, redirect, sqli, tls, exposure]\n", srv.URL+"/?q=1")
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0644))

	out, _, err := executeCmd(t, "scan", "--config", cfgFile)
	require.NoError(t, err)

	var report types.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []string{"xss"}, report.Modules)
}

func TestScanAPICategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if r.Method == http.MethodPost && json.NewDecoder(r.Body).Decode(&body) == nil && body.Username == "admin" && body.Password == "admin" {
			fmt.Fprint(w, `{"token":"t"}`)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	out, _, err := executeCmd(t, "scan", srv.URL+"/login", "--category", "api", "-x", "ratelimit", "-o", "json")
	require.NoError(t, err)

	var report types.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "api", report.Category)
	assert.Equal(t, []string{"authbypass", "defaultcreds"}, report.Modules)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "defaultcreds", report.Findings[0].Module)
	assert.Equal(t, types.SeverityCritical, report.Findings[0].Severity)
}

func TestModulesCommand(t *testing.T) {
	out, _, err := executeCmd(t, "modules", "-x", "sqli")
	require.NoError(t, err)
	for _, name := range []string{"headers", "xss", "sqli", "redirect", "cors", "tls", "exposure", "ratelimit", "authbypass", "defaultcreds"} {
		assert.Contains(t, out, name)
	}

	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "sqli") {
			assert.Contains(t, line, "no")
		}
		if strings.Contains(line, "xss") {
			assert.Contains(t, line, "yes")
		}
	}
}
