// Package api holds the modules of the "api" category. Each one treats the
// URL it is given as a single API endpoint.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/internal/httpclient"
	"github.com/buemura/rock/internal/scan"
)

// Descriptors returns every api module.
func Descriptors() []scan.Descriptor {
	return []scan.Descriptor{
		{Name: "ratelimit", Description: "Rate limiting enforcement on the endpoint", New: newRateLimit},
		{Name: "authbypass", Description: "Authentication bypass with null and empty tokens", New: newAuthBypass},
		{Name: "defaultcreds", Description: "Default credentials accepted by login endpoints", New: newDefaultCreds},
	}
}

// Register adds every api module to reg.
func Register(reg *scan.Registry) error {
	for _, d := range Descriptors() {
		if err := reg.Register(scan.CategoryAPI, d); err != nil {
			return err
		}
	}
	return nil
}

// credentialHeaders are dropped from the configured headers by modules that
// probe unauthenticated access.
var credentialHeaders = []string{"authorization", "cookie", "x-api-key"}

func newClient(cfg config.ModuleConfig, anonymous bool) *http.Client {
	headers := cfg.Headers
	if anonymous {
		headers = make(map[string]string, len(cfg.Headers))
		for k, v := range cfg.Headers {
			if !isCredentialHeader(k) {
				headers[k] = v
			}
		}
	}
	return httpclient.New(httpclient.Options{
		Timeout:          cfg.Timeout,
		Headers:          headers,
		NoFollowRedirect: true,
	})
}

func isCredentialHeader(name string) bool {
	for _, h := range credentialHeaders {
		if strings.EqualFold(name, h) {
			return true
		}
	}
	return false
}

func isHTTP(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// do sends req and returns the status, headers and up to 4 KB of the body.
func do(client *http.Client, req *http.Request) (int, http.Header, string, error) {
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return 0, nil, "", fmt.Errorf("reading response body: %w", err)
	}
	return resp.StatusCode, resp.Header, string(body), nil
}

func get(ctx context.Context, client *http.Client, target string, header map[string]string) (int, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, err
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	status, h, _, err := do(client, req)
	return status, h, err
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
