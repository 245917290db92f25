// Package general holds the per-URL web checks of the "general" category.
package general

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sort"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/internal/httpclient"
	"github.com/buemura/rock/internal/scan"
)

// Descriptors returns every general module.
func Descriptors() []scan.Descriptor {
	return []scan.Descriptor{
		{Name: "headers", Description: "HTTP security header analysis", New: newHeaders},
		{Name: "xss", Description: "Reflected cross-site scripting in query parameters", New: newXSS},
		{Name: "sqli", Description: "Error-based SQL injection in query parameters", New: newSQLi},
		{Name: "redirect", Description: "Open redirect through common redirect parameters", New: newRedirect},
		{Name: "cors", Description: "CORS misconfiguration detection", New: newCORS},
		{Name: "tls", Description: "TLS protocol and certificate checks", New: newTLS},
		{Name: "exposure", Description: "Sensitive file exposure on the origin", New: newExposure},
	}
}

// Register adds every general module to reg.
func Register(reg *scan.Registry) error {
	for _, d := range Descriptors() {
		if err := reg.Register(scan.CategoryGeneral, d); err != nil {
			return err
		}
	}
	return nil
}

func newClient(cfg config.ModuleConfig, followRedirects bool) *http.Client {
	return httpclient.New(httpclient.Options{
		Timeout:          cfg.Timeout,
		Headers:          cfg.Headers,
		NoFollowRedirect: !followRedirects,
	})
}

type response struct {
	status int
	header http.Header
	body   string
}

// fetch sends one request and reads at most 1 MB of the body.
func fetch(ctx context.Context, client *http.Client, method, target string, header map[string]string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	return &response{status: resp.StatusCode, header: resp.Header, body: string(body)}, nil
}

// queryParams returns the sorted query parameter names of rawURL.
func queryParams(rawURL string) []string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	var names []string
	for name := range u.Query() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// setQueryParam returns a copy of rawURL with key set to value.
func setQueryParam(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
