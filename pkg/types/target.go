package types

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// NormalizeTarget accepts a host, host:port, or full URL and returns an
// absolute http(s) URL. Bare hosts default to https.
func NormalizeTarget(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("target cannot be empty")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q (want http or https)", u.Scheme)
	}

	if u.Hostname() == "" {
		return "", fmt.Errorf("URL %q has no hostname", raw)
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return "", fmt.Errorf("invalid port %q: %w", p, err)
		}
		if port < 1 || port > 65535 {
			return "", fmt.Errorf("port %d out of range (1-65535)", port)
		}
	}

	return u.String(), nil
}
