// Package httpclient builds the HTTP clients used by the reachability gate,
// the crawler and scan modules.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// DefaultTimeout applies when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// UserAgent is sent unless the configured headers override it.
const UserAgent = "rock-scanner/1.0"

// Options controls client construction.
type Options struct {
	Timeout          time.Duration
	Headers          map[string]string
	NoFollowRedirect bool
	// Transport defaults to a process-wide pooled transport.
	Transport http.RoundTripper
}

var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     30 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

// New returns a client that sends opts.Headers on every request. Clients
// are cheap; they share one connection pool unless opts.Transport is set.
func New(opts Options) *http.Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	var tr http.RoundTripper = sharedTransport
	if opts.Transport != nil {
		tr = opts.Transport
	}

	client := &http.Client{
		Timeout:   timeout,
		Transport: &headerTransport{base: tr, headers: opts.Headers},
	}
	if opts.NoFollowRedirect {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client
}

// headerTransport sets default headers without overriding ones the caller
// already put on the request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}
	return t.base.RoundTrip(req)
}
