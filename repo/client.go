// Package repo implements the HTTP client for a single package repository:
// directory listing, archive fetch, metadata lookup, and publish.
//
// Multi-repository behavior (fallback on read, replication on write) lives
// in the transport package; this client only ever talks to one base URL
// per call.
package repo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cenk/backoff"
	"github.com/rs/dnscache"

	vpm "github.com/vessel-lang/vpm"
)

// Client talks to package repositories over HTTP. The zero timeout means
// no per-call limit beyond the caller's context.
type Client struct {
	http       *http.Client
	userAgent  string
	timeout    time.Duration
	maxRetries uint64
	baseDelay  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) { cl.userAgent = ua }
}

// WithTimeout sets the per-call timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

// WithMaxRetries sets the retry budget for transient failures.
func WithMaxRetries(n uint64) Option {
	return func(cl *Client) { cl.maxRetries = n }
}

// WithBaseDelay sets the initial backoff interval between retries.
func WithBaseDelay(d time.Duration) Option {
	return func(cl *Client) { cl.baseDelay = d }
}

// New creates a Client with a DNS-cached transport.
func New(opts ...Option) *Client {
	resolver := &dnscache.Resolver{}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			resolver.Refresh(true)
		}
	}()

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	c := &Client{
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}
					ips, err := resolver.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}
					for _, ip := range ips {
						conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if err == nil {
							return conn, nil
						}
					}
					return nil, fmt.Errorf("failed to dial any resolved IP")
				},
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		userAgent:  "vpm/1.0",
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List enumerates the entries published under repoURL/suffix. A 404 maps
// to vpm.ErrNotFound; unreachable hosts and persistent server errors map
// to vpm.ErrConnectionFailed.
func (c *Client) List(ctx context.Context, repoURL, suffix string) ([]string, error) {
	var entries []string
	err := c.get(ctx, repoURL, suffix, func(resp *http.Response) error {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return fmt.Errorf("reading listing: %w", err)
		}
		entries = parseListing(string(body))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Fetch downloads repoURL/suffix into destDir and returns the local path.
func (c *Client) Fetch(ctx context.Context, repoURL, suffix, destDir string) (string, error) {
	local := filepath.Join(destDir, path.Base(suffix))
	err := c.get(ctx, repoURL, suffix, func(resp *http.Response) error {
		f, err := os.Create(local)
		if err != nil {
			return fmt.Errorf("creating %s: %w", local, err)
		}
		if _, err := io.Copy(f, resp.Body); err != nil {
			f.Close()
			os.Remove(local)
			return fmt.Errorf("writing %s: %w", local, err)
		}
		return f.Close()
	})
	if err != nil {
		return "", err
	}
	return local, nil
}

// Describe retrieves the metadata document at repoURL/suffix.
func (c *Client) Describe(ctx context.Context, repoURL, suffix string) (string, error) {
	var meta string
	err := c.get(ctx, repoURL, suffix, func(resp *http.Response) error {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return fmt.Errorf("reading metadata: %w", err)
		}
		meta = string(body)
		return nil
	})
	if err != nil {
		return "", err
	}
	return meta, nil
}

// Put uploads payload to repoURL/suffix and returns the resulting URL.
func (c *Client) Put(ctx context.Context, repoURL, suffix string, payload []byte) (string, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	target := joinURL(repoURL, suffix)
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Content-Type", "application/octet-stream")

		resp, err := c.http.Do(req)
		if err != nil {
			return connError(target, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case resp.StatusCode >= 500:
			return connError(target, fmt.Errorf("status %d", resp.StatusCode))
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return backoff.Permanent(fmt.Errorf("PUT %s: status %d: %s", target, resp.StatusCode, strings.TrimSpace(string(body))))
		}
	}
	if err := c.retry(ctx, op); err != nil {
		return "", err
	}
	return target, nil
}

// get runs a GET against repoURL/suffix with retry on transient failures
// and hands the successful response to handle.
func (c *Client) get(ctx context.Context, repoURL, suffix string, handle func(*http.Response) error) error {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	target := joinURL(repoURL, suffix)
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "*/*")

		resp, err := c.http.Do(req)
		if err != nil {
			return connError(target, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := handle(resp); err != nil {
				return backoff.Permanent(err)
			}
			return nil
		case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
			return backoff.Permanent(fmt.Errorf("%s: %w", target, vpm.ErrNotFound))
		case resp.StatusCode >= 500:
			return connError(target, fmt.Errorf("status %d", resp.StatusCode))
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return backoff.Permanent(fmt.Errorf("GET %s: status %d: %s", target, resp.StatusCode, strings.TrimSpace(string(body))))
		}
	}
	return c.retry(ctx, op)
}

// callCtx applies the per-call timeout when one is configured.
func (c *Client) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return ctx, func() {}
}

func (c *Client) retry(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.baseDelay
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)

	err := backoff.Retry(op, policy)
	if perm, ok := err.(*backoff.PermanentError); ok {
		return perm.Err
	}
	return err
}

func connError(target string, err error) error {
	return fmt.Errorf("%s: %v: %w", target, err, vpm.ErrConnectionFailed)
}

func joinURL(repoURL, suffix string) string {
	return strings.TrimSuffix(repoURL, "/") + "/" + strings.TrimPrefix(suffix, "/")
}

var hrefRe = regexp.MustCompile(`(?i)href="([^"]+)"`)

// parseListing extracts directory entries from a listing body. Both plain
// text listings (one entry per line or whitespace separated) and HTML
// index pages with anchors are accepted.
func parseListing(body string) []string {
	var raw []string
	if matches := hrefRe.FindAllStringSubmatch(body, -1); len(matches) > 0 {
		for _, m := range matches {
			raw = append(raw, m[1])
		}
	} else {
		raw = strings.Fields(body)
	}

	seen := make(map[string]bool)
	var entries []string
	for _, r := range raw {
		e := cleanEntry(r)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		entries = append(entries, e)
	}
	return entries
}

func cleanEntry(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	p := strings.TrimSuffix(u.Path, "/")
	if p == "" || p == "." || p == ".." {
		return ""
	}
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		p = p[idx+1:]
	}
	if p == "" || p == ".." {
		return ""
	}
	return p
}
