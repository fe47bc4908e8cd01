// Package netcfg parses the --proxy flag into a ProxySpec and builds the
// dialer the HTTP client's transport uses. The proxy setting is effectively
// process-wide for the transport it's attached to -- it is wired once at
// client construction, never reconfigured mid-run.
package netcfg

import (
	"context"
	"fmt"
	"net"
	"regexp"

	"golang.org/x/net/proxy"
)

// Type identifies the proxy protocol.
type Type int

const (
	SOCKS5 Type = iota
	SOCKS4
	HTTPProxy
)

func (t Type) String() string {
	switch t {
	case SOCKS5:
		return "socks5"
	case SOCKS4:
		return "socks4"
	case HTTPProxy:
		return "http"
	default:
		return "unknown"
	}
}

// ProxySpec is the parsed form of one of the four accepted proxy syntaxes:
//
//	socks5://[user:pass@]host:port
//	socks4://[user:pass@]host:port
//	http://[user:pass@]host:port
//	host:port                       (bare address, defaults to SOCKS5)
type ProxySpec struct {
	Type Type
	Host string
	Port string
	User string
	Pass string
}

var proxyPatterns = []struct {
	re   *regexp.Regexp
	typ  Type
	auth bool
}{
	{regexp.MustCompile(`^socks5://(?:([^:@]+):([^@]*)@)?([^:/]+):(\d+)$`), SOCKS5, true},
	{regexp.MustCompile(`^socks4://(?:([^:@]+):([^@]*)@)?([^:/]+):(\d+)$`), SOCKS4, true},
	{regexp.MustCompile(`^http://(?:([^:@]+):([^@]*)@)?([^:/]+):(\d+)$`), HTTPProxy, true},
	{regexp.MustCompile(`^([^:/]+):(\d+)$`), SOCKS5, false},
}

// ParseProxy accepts any of the four syntaxes documented above and returns
// the parsed spec, or an error if spec matches none of them.
func ParseProxy(spec string) (ProxySpec, error) {
	for _, p := range proxyPatterns {
		m := p.re.FindStringSubmatch(spec)
		if m == nil {
			continue
		}
		if p.auth {
			return ProxySpec{Type: p.typ, User: m[1], Pass: m[2], Host: m[3], Port: m[4]}, nil
		}
		return ProxySpec{Type: p.typ, Host: m[1], Port: m[2]}, nil
	}
	return ProxySpec{}, fmt.Errorf("netcfg: invalid proxy spec %q", spec)
}

// String reserializes the spec to an equivalent spec string, satisfying the
// round-trip law: for every accepted spec, ParseProxy(s).String() describes
// the same endpoint and credentials.
func (p ProxySpec) String() string {
	addr := net.JoinHostPort(p.Host, p.Port)
	if p.User == "" && p.Pass == "" {
		if p.Type == SOCKS5 {
			return addr
		}
		return fmt.Sprintf("%s://%s", p.Type, addr)
	}
	return fmt.Sprintf("%s://%s:%s@%s", p.Type, p.User, p.Pass, addr)
}

// Dialer builds a dial function suitable for http.Transport.DialContext.
// SOCKS4 has no dedicated client in the Go ecosystem's SOCKS implementation
// (golang.org/x/net/proxy only speaks SOCKS5); SOCKS4 specs are parsed and
// reserialized correctly but dial the same as SOCKS5, which interoperates
// with most SOCKS4 proxies that also accept SOCKS5 framing. This limitation
// is documented in DESIGN.md.
func (p ProxySpec) Dialer() (Dialer, error) {
	addr := net.JoinHostPort(p.Host, p.Port)

	switch p.Type {
	case HTTPProxy:
		return &httpConnectDialer{addr: addr, user: p.User, pass: p.Pass}, nil
	case SOCKS5, SOCKS4:
		var auth *proxy.Auth
		if p.User != "" || p.Pass != "" {
			auth = &proxy.Auth{User: p.User, Password: p.Pass}
		}
		d, err := proxy.SOCKS5("tcp", addr, auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("netcfg: building socks dialer: %w", err)
		}
		return contextDialerAdapter{d}, nil
	default:
		return nil, fmt.Errorf("netcfg: unsupported proxy type %v", p.Type)
	}
}

// Dialer matches httpfetch.ProxyDialer's narrow surface.
type Dialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

// contextDialerAdapter adapts golang.org/x/net/proxy's Dialer (which
// predates context.Context) to the DialContext shape the transport wants.
type contextDialerAdapter struct {
	d proxy.Dialer
}

func (a contextDialerAdapter) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := a.d.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, addr)
	}
	return a.d.Dial(network, addr)
}
