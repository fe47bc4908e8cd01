// Package httpfetch is the HTTP client: a shared session across every
// worker, TLS verification disabled (the target is an exposed artifact, not
// a trusted service), automatic redirects disabled (callers follow
// redirects explicitly so they can detect loops), and transport-level
// retries.
package httpfetch

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"time"
)

// Response is the subset of an HTTP response the rest of the crawler needs.
// Body is always non-nil and must be closed by the caller.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// Config configures a Client. Proxy, if non-nil, replaces the transport's
// dial behavior -- set once at client construction, never mid-run.
type Config struct {
	UserAgent string
	Headers   http.Header
	Retry     int
	Timeout   time.Duration
	Proxy     ProxyDialer
}

// ProxyDialer is satisfied by the dialer netcfg.ProxySpec.Dialer builds;
// kept as a narrow interface here so httpfetch never imports netcfg,
// avoiding an import cycle between the two packages.
type ProxyDialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

// Client performs GETs with retry, disabled redirect-following, and
// disabled TLS verification.
type Client struct {
	http      *http.Client
	retry     int
	userAgent string
	headers   http.Header
}

// New builds a Client from cfg. Retry and Timeout are clamped to sane
// minimums; a Retry of 0 is treated as "try once".
//
// The configured Timeout bounds connect and response-header wait only, not
// the whole request lifecycle: http.Client.Timeout caps the entire exchange
// including body-streaming, so a loose object or pack file that legitimately
// takes longer than the configured timeout to stream would be aborted
// mid-write and silently truncate the dump. Instead Timeout is applied to
// the transport's dialer and ResponseHeaderTimeout, the same split the
// teacher's upstream client uses
// (_examples/danielloader-oci-pull-through/internal/proxy/upstream.go), and
// http.Client.Timeout is left unset.
func New(cfg Config) *Client {
	retry := cfg.Retry
	if retry < 0 {
		retry = 0
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	dialer := &net.Dialer{Timeout: timeout}
	transport := &http.Transport{
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // target is an untrusted, exposed artifact
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		IdleConnTimeout:       90 * time.Second,
	}
	if cfg.Proxy != nil {
		transport.DialContext = cfg.Proxy.DialContext
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		retry:     retry,
		userAgent: cfg.UserAgent,
		headers:   cfg.Headers,
	}
}

// Get performs a single GET, retrying transport-level failures up to
// c.retry additional times. The returned Response is populated for any
// completed HTTP exchange, regardless of status code -- callers use the
// response validator to classify non-2xx and soft-404 bodies. Only a
// transport failure that survives every retry, or context cancellation,
// produces an error.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retry; attempt++ {
		if ctx.Err() != nil {
			return nil, &CancelledError{URL: url, Err: ctx.Err()}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}
		for k, vs := range c.headers {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, &CancelledError{URL: url, Err: ctx.Err()}
			}
			lastErr = err
			continue
		}

		return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: resp.Body}, nil
	}

	return nil, &TransportError{URL: url, Attempt: c.retry + 1, Err: lastErr}
}
