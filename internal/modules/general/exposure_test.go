package general

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/buemura/rock/internal/scan"
	"github.com/buemura/rock/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExposure_FindsFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/.git/HEAD":
			w.Write([]byte("ref: refs/heads/main\n"))
		case "/.env":
			w.Write([]byte("DB_PASSWORD=s3cret\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f, applicable := checkAndRun(t, newExposure(moduleConfig(srv.URL+"/some/page?q=1")))
	require.True(t, applicable)
	require.NotNil(t, f)
	assert.Equal(t, types.SeverityCritical, f.Severity)
	assert.Empty(t, f.URL)
	assert.Equal(t, srv.URL, f.Metadata["origin"])
	assert.Equal(t, "/.git/HEAD,/.env", f.Metadata["paths"])
}

func TestExposure_FindingCarriesPageURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/.git/HEAD" {
			w.Write([]byte("ref: refs/heads/main\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	page := srv.URL + "/app/page"
	desc := scan.Descriptor{Name: "exposure", Description: "exposure", New: newExposure}
	rs := scan.NewResultSet()
	_, err := scan.NewDispatcher(nil).Dispatch(context.Background(), rs, []scan.Descriptor{desc}, []string{page}, moduleConfig(""), 1)
	require.NoError(t, err)

	findings, err := rs.Drain()
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, page, findings[0].URL)
	assert.Equal(t, "exposure", findings[0].Module)
}

func TestExposure_SoftNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>ref: anything = welcome : Apache phpinfo [core]</html>"))
	}))
	defer srv.Close()

	f, applicable := checkAndRun(t, newExposure(moduleConfig(srv.URL)))
	assert.True(t, applicable)
	assert.Nil(t, f)
}

func TestExposure_MarkerRequired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/.git/HEAD" {
			w.Write([]byte("<html>login</html>"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f, _ := checkAndRun(t, newExposure(moduleConfig(srv.URL)))
	assert.Nil(t, f)
}

func TestExposure_CheckSchemes(t *testing.T) {
	ok, err := newExposure(moduleConfig("ftp://example.com")).Check(t.Context())
	require.NoError(t, err)
	assert.False(t, ok)
}
