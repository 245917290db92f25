package general

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/buemura/rock/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func secureHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	w.Header().Set("Content-Security-Policy", "default-src 'self'")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Permissions-Policy", "camera=()")
	w.WriteHeader(http.StatusOK)
}

func TestHeaders_AllPresent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(secureHandler))
	defer srv.Close()

	_, applicable := checkAndRun(t, newHeaders(moduleConfig(srv.URL)))
	assert.False(t, applicable)
}

func TestHeaders_AllMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f, applicable := checkAndRun(t, newHeaders(moduleConfig(srv.URL)))
	require.True(t, applicable)
	require.NotNil(t, f)

	// HSTS is skipped over plain HTTP.
	assert.Equal(t, "Content-Security-Policy,X-Content-Type-Options,X-Frame-Options,Referrer-Policy,Permissions-Policy", f.Metadata["headers"])
	assert.Equal(t, types.SeverityMedium, f.Severity)
	assert.Contains(t, f.Title, "(5)")
	assert.Contains(t, f.Remediation, "X-Content-Type-Options: nosniff")
}

func TestHeaders_WrongValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("X-Content-Type-Options", "sniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "camera=()")
	}))
	defer srv.Close()

	f, applicable := checkAndRun(t, newHeaders(moduleConfig(srv.URL)))
	require.True(t, applicable)
	assert.Equal(t, types.SeverityLow, f.Severity)
	assert.Equal(t, `X-Content-Type-Options is "sniff", want "nosniff"`, f.Evidence)
}

func TestHeaderIssues_HSTSOnlyOverHTTPS(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Security-Policy", "default-src 'self'")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Referrer-Policy", "no-referrer")
	h.Set("Permissions-Policy", "camera=()")

	assert.Empty(t, headerIssues(h, false))

	issues := headerIssues(h, true)
	require.Len(t, issues, 1)
	assert.Equal(t, "Strict-Transport-Security", issues[0].rule.header)
	assert.Equal(t, types.SeverityHigh, issues[0].rule.severity)
}

func TestHeaders_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(secureHandler))
	url := srv.URL
	srv.Close()

	ok, err := newHeaders(moduleConfig(url)).Check(t.Context())
	assert.False(t, ok)
	assert.Error(t, err)
}
