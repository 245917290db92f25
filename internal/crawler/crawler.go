// Package crawler expands a seed URL into the same-site URLs reachable from
// it by following links, breadth first.
package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/internal/httpclient"
	"golang.org/x/net/html"
)

const (
	defaultMaxURLs     = 100
	defaultConcurrency = 5
	maxBodySize        = 2 << 20
)

// staticExts are linked resources no web check can do anything with.
var staticExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
	".ico": true, ".webp": true, ".css": true, ".woff": true, ".woff2": true,
	".ttf": true, ".eot": true, ".mp4": true, ".mp3": true, ".pdf": true,
	".zip": true,
}

// Crawler follows links from a seed page.
type Crawler struct {
	client *http.Client
}

// New returns a crawler that builds its HTTP client from each CrawlerConfig.
func New() *Crawler {
	return &Crawler{}
}

// NewWithClient returns a crawler that always fetches with client.
func NewWithClient(client *http.Client) *Crawler {
	return &Crawler{client: client}
}

// Crawl returns the seed followed by every distinct URL discovered within
// cfg.Depth link hops, capped at cfg.MaxURLs. Pages that fail to load are
// skipped.
func (c *Crawler) Crawl(ctx context.Context, cfg config.CrawlerConfig) ([]string, error) {
	seed, err := url.Parse(cfg.GetTarget())
	if err != nil {
		return nil, fmt.Errorf("invalid crawl seed %q: %w", cfg.GetTarget(), err)
	}
	if seed.Hostname() == "" {
		return nil, fmt.Errorf("crawl seed %q has no hostname", cfg.GetTarget())
	}
	seed.Fragment = ""

	maxURLs := cfg.MaxURLs
	if maxURLs <= 0 {
		maxURLs = defaultMaxURLs
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	client := c.client
	if client == nil {
		client = httpclient.New(httpclient.Options{Timeout: cfg.Timeout, Headers: cfg.Headers})
	}

	found := []string{seed.String()}
	visited := map[string]bool{seed.String(): true}
	frontier := []string{seed.String()}

	for depth := 0; depth < cfg.Depth && len(frontier) > 0 && len(found) < maxURLs; depth++ {
		if err := ctx.Err(); err != nil {
			return found, err
		}

		links := fetchAll(ctx, client, frontier, concurrency)

		var next []string
		for _, page := range frontier {
			for _, link := range links[page] {
				if len(found) >= maxURLs {
					break
				}
				if visited[link] {
					continue
				}
				if cfg.SameHost && !sameHost(seed, link) {
					continue
				}
				visited[link] = true
				found = append(found, link)
				next = append(next, link)
			}
		}
		frontier = next
	}

	return found, nil
}

// fetchAll loads pages concurrently and returns the links found on each.
func fetchAll(ctx context.Context, client *http.Client, pages []string, concurrency int) map[string][]string {
	sem := make(chan struct{}, concurrency)
	var mu sync.Mutex
	var wg sync.WaitGroup
	result := make(map[string][]string, len(pages))

	for _, page := range pages {
		wg.Add(1)
		go func(page string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			links, err := fetchLinks(ctx, client, page)
			if err != nil {
				return
			}
			mu.Lock()
			result[page] = links
			mu.Unlock()
		}(page)
	}

	wg.Wait()
	return result
}

func fetchLinks(ctx context.Context, client *http.Client, page string) ([]string, error) {
	base, err := url.Parse(page)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.Contains(ct, "html") {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, nil
	}

	// Redirects move the base for relative links.
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL
	}

	return ExtractLinks(io.LimitReader(resp.Body, maxBodySize), base), nil
}

// ExtractLinks returns the absolute http(s) URLs referenced by href, src
// and action attributes in an HTML document, in document order and without
// duplicates. Fragments are dropped and static assets skipped.
func ExtractLinks(r io.Reader, base *url.URL) []string {
	seen := make(map[string]struct{})
	var links []string

	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return links
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data == "base" {
				if href := attr(tok, "href"); href != "" {
					if b, err := base.Parse(href); err == nil {
						base = b
					}
				}
				continue
			}
			for _, a := range tok.Attr {
				if a.Key != "href" && a.Key != "src" && a.Key != "action" {
					continue
				}
				link, ok := resolve(base, a.Val)
				if !ok {
					continue
				}
				if _, dup := seen[link]; dup {
					continue
				}
				seen[link] = struct{}{}
				links = append(links, link)
			}
		}
	}
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func resolve(base *url.URL, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return "", false
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	u := base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if staticExts[strings.ToLower(path.Ext(u.Path))] {
		return "", false
	}
	u.Fragment = ""
	return u.String(), true
}

func sameHost(seed *url.URL, link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, seed.Host)
}
