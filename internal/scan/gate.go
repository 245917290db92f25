package scan

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/internal/httpclient"
)

// ErrUnreachable aborts a run whose target did not answer the pre-flight probe.
var ErrUnreachable = errors.New("target unreachable")

// Gate is the default Prober: a single GET with a bounded timeout.
type Gate struct {
	client  *http.Client
	timeout time.Duration
}

// NewGate returns a gate whose probe gives up after timeout.
func NewGate(timeout time.Duration, headers map[string]string) *Gate {
	return NewGateWithClient(httpclient.New(httpclient.Options{
		Timeout: timeout,
		Headers: headers,
	}), timeout)
}

// NewGateWithClient returns a gate that probes with client. The probe is
// bounded by timeout whatever the client's own timeout is; zero means
// DefaultProbeTimeout.
func NewGateWithClient(client *http.Client, timeout time.Duration) *Gate {
	if timeout <= 0 {
		timeout = config.DefaultProbeTimeout
	}
	return &Gate{client: client, timeout: timeout}
}

// Probe reports whether target answered at all. Any HTTP response counts,
// whatever its status; every transport failure counts as unreachable.
func (g *Gate) Probe(ctx context.Context, target string) bool {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return true
}
