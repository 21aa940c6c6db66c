package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Leoace99/opsctl/internal/targetlist"
)

// OriginProber performs one direct connectivity check against an origin
// target, resolving the domain to the target's explicit IP.
type OriginProber interface {
	Probe(ctx context.Context, t targetlist.Target) Outcome
}

// HTTPOriginProber pins the TCP dial to originIP:port while keeping the Host
// header and SNI on the real domain, so the origin sees a normal request.
type HTTPOriginProber struct {
	Timeout time.Duration
}

func NewHTTPOriginProber(timeout time.Duration) *HTTPOriginProber {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPOriginProber{Timeout: timeout}
}

func (p *HTTPOriginProber) Probe(ctx context.Context, t targetlist.Target) Outcome {
	hostport := t.Domain
	if (t.Scheme == "https" && t.Port != 443) || (t.Scheme == "http" && t.Port != 80) {
		hostport = net.JoinHostPort(t.Domain, strconv.Itoa(t.Port))
	}
	target := fmt.Sprintf("%s://%s%s", t.Scheme, hostport, t.Path)
	pinned := net.JoinHostPort(t.OriginIP, strconv.Itoa(t.Port))

	dialer := &net.Dialer{Timeout: p.Timeout}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, pinned)
		},
		// Reachability check, not a trust check: the origin often serves a
		// cert for the CDN edge or a self-signed one.
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
			ServerName:         t.Domain,
		},
	}
	client := &http.Client{Transport: transport, Timeout: p.Timeout}
	defer transport.CloseIdleConnections()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Outcome{HTTPCode: CodeTransportFailure, ErrorDetail: ClassifyErr(err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Outcome{
			HTTPCode:    CodeTransportFailure,
			Elapsed:     time.Since(start).Seconds(),
			ErrorDetail: ClassifyErr(err),
		}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	return Outcome{
		HTTPCode: strconv.Itoa(resp.StatusCode),
		Elapsed:  time.Since(start).Seconds(),
	}
}
