// Package config assembles one immutable RunContext per invocation from
// CLI flags: base URL, output directory, worker count, retry count,
// timeout, headers, and proxy configuration.
package config

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/danielloader/gitdump/internal/netcfg"
)

// defaultUserAgent matches the original tool's default (git_dumper.py):
// many exposed-.git hosts gate responses on a browser-shaped User-Agent,
// so the Go http.Client default ("Go-http-client/1.1") is the wrong choice
// of default here.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; rv:78.0) Gecko/20100101 Firefox/78.0"

// RunContext is the immutable configuration for one crawl.
type RunContext struct {
	BaseURL   string
	OutputDir string
	Jobs      int
	Retry     int
	Timeout   time.Duration
	UserAgent string
	Headers   http.Header
	Proxy     *netcfg.ProxySpec
	LogLevel  slog.Level
}

// Parse parses args (excluding the program name) into a RunContext. It
// returns an error for a missing URL/DIR, a malformed header, or an
// unparseable proxy spec -- all argument-validation failures, which abort
// the run before anything is fetched.
func Parse(args []string) (*RunContext, error) {
	fs := flag.NewFlagSet("gitdump", flag.ContinueOnError)

	jobs := fs.IntP("jobs", "j", 10, "number of concurrent workers")
	retry := fs.IntP("retry", "r", 3, "per-request retry count")
	timeout := fs.IntP("timeout", "t", 3, "per-request timeout in seconds")
	userAgent := fs.StringP("user-agent", "u", defaultUserAgent, "HTTP User-Agent header")
	headers := fs.StringArrayP("header", "H", nil, "extra HTTP header NAME=VALUE (repeatable)")
	proxySpec := fs.String("proxy", "", "proxy spec: socks5://[user:pass@]host:port, socks4://..., http://..., or host:port")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	if len(rest) != 2 {
		return nil, fmt.Errorf("config: expected URL and DIR, got %d positional argument(s)", len(rest))
	}

	if *jobs < 1 {
		return nil, fmt.Errorf("config: jobs must be >= 1, got %d", *jobs)
	}
	if *retry < 1 {
		return nil, fmt.Errorf("config: retry must be >= 1, got %d", *retry)
	}
	if *timeout < 1 {
		return nil, fmt.Errorf("config: timeout must be >= 1, got %d", *timeout)
	}

	header := http.Header{}
	for _, h := range *headers {
		name, value, ok := strings.Cut(h, "=")
		if !ok {
			return nil, fmt.Errorf("config: malformed header %q, expected NAME=VALUE", h)
		}
		header.Add(name, value)
	}

	var proxy *netcfg.ProxySpec
	if *proxySpec != "" {
		p, err := netcfg.ParseProxy(*proxySpec)
		if err != nil {
			return nil, err
		}
		proxy = &p
	}

	return &RunContext{
		BaseURL:   NormalizeURL(rest[0]),
		OutputDir: rest[1],
		Jobs:      *jobs,
		Retry:     *retry,
		Timeout:   time.Duration(*timeout) * time.Second,
		UserAgent: *userAgent,
		Headers:   header,
		Proxy:     proxy,
		LogLevel:  parseLogLevel(*logLevel),
	}, nil
}

// NormalizeURL trims a trailing "/", then a trailing "HEAD", then a
// trailing ".git", then trailing "/" again, so the effective base is always
// "<url>/.git/...". Each strip is applied at most once, in that fixed order.
func NormalizeURL(raw string) string {
	u := strings.TrimSuffix(raw, "/")
	u = strings.TrimSuffix(u, "HEAD")
	u = strings.TrimSuffix(u, ".git")
	u = strings.TrimSuffix(u, "/")
	return u
}

// parseLogLevel maps a CLI/env log-level name to a slog.Level, defaulting to
// info for anything unrecognized.
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
