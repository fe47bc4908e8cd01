package netcfg

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// httpConnectDialer tunnels through an HTTP proxy via CONNECT, the
// equivalent for plain "http://host:port" proxy specs of the SOCKS5 dialer
// used for the other three syntaxes.
type httpConnectDialer struct {
	addr string
	user string
	pass string
}

func (d *httpConnectDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, network, d.addr)
	if err != nil {
		return nil, fmt.Errorf("netcfg: dialing http proxy %s: %w", d.addr, err)
	}

	req := &http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Opaque: addr},
		Host:   addr,
		Header: make(http.Header),
	}
	if d.user != "" || d.pass != "" {
		token := base64.StdEncoding.EncodeToString([]byte(d.user + ":" + d.pass))
		req.Header.Set("Proxy-Authorization", "Basic "+token)
	}

	if err := req.Write(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("netcfg: writing CONNECT request: %w", err)
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), req)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("netcfg: reading CONNECT response: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		conn.Close()
		return nil, fmt.Errorf("netcfg: proxy CONNECT to %s failed: %s", addr, resp.Status)
	}

	return conn, nil
}
