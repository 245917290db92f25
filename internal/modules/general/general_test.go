package general

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/internal/scan"
	"github.com/buemura/rock/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moduleConfig(target string) config.ModuleConfig {
	return config.ModuleConfig{Target: target, Timeout: 5 * time.Second}
}

// checkAndRun drives a module through its full lifecycle.
func checkAndRun(t *testing.T, m scan.Module) (*types.Finding, bool) {
	t.Helper()
	ok, err := m.Check(context.Background())
	require.NoError(t, err)
	if !ok {
		return nil, false
	}
	f, err := m.Run(context.Background())
	require.NoError(t, err)
	return f, true
}

func TestRegister(t *testing.T) {
	reg := scan.NewRegistry()
	require.NoError(t, Register(reg))

	ds, err := reg.Discover(scan.CategoryGeneral, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"cors", "exposure", "headers", "redirect", "sqli", "tls", "xss"}, scan.Names(ds))

	for _, d := range ds {
		assert.NotEmpty(t, d.Description, d.Name)
		assert.NotNil(t, d.New(moduleConfig("http://example.com")), d.Name)
	}
}

func TestRegister_Twice(t *testing.T) {
	reg := scan.NewRegistry()
	require.NoError(t, Register(reg))
	assert.ErrorIs(t, Register(reg), scan.ErrDiscovery)
}

func TestRegister_Excluded(t *testing.T) {
	reg := scan.NewRegistry()
	require.NoError(t, Register(reg))

	ds, err := reg.Discover(scan.CategoryGeneral, config.NewExcludedModules("sqli.py", "XSS"))
	require.NoError(t, err)
	assert.Equal(t, []string{"cors", "exposure", "headers", "redirect", "tls"}, scan.Names(ds))
}

func TestQueryParams(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, queryParams("http://x.test/?b=2&a=1"))
	assert.Empty(t, queryParams("http://x.test/"))
	assert.Empty(t, queryParams("://bad"))
}

func TestSetQueryParam(t *testing.T) {
	assert.Equal(t, "http://x.test/?a=9&b=2", setQueryParam("http://x.test/?a=1&b=2", "a", "9"))
	assert.Equal(t, "http://x.test/p?next=https%3A%2F%2Fevil.com", setQueryParam("http://x.test/p", "next", "https://evil.com"))
}

func TestFetch_SendsConfiguredHeaders(t *testing.T) {
	got := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Clone()
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	cfg := moduleConfig(srv.URL)
	cfg.Headers = map[string]string{"Authorization": "Bearer t"}

	resp, err := fetch(context.Background(), newClient(cfg, true), http.MethodGet, srv.URL, map[string]string{"Origin": "https://a.test"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "ok", resp.body)
	h := <-got
	assert.Equal(t, "Bearer t", h.Get("Authorization"))
	assert.Equal(t, "https://a.test", h.Get("Origin"))
}
