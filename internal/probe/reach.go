package probe

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/url"
	"time"
)

const userAgent = "opsctl/1.0"

// ReachRequest describes one reachability check.
type ReachRequest struct {
	URL        string
	VerifyCert bool     // false disables TLS verification
	Proxy      *url.URL // nil for a direct check
	// TimeoutIsUnstable marks a timeout as inconclusive (Unstable) instead of
	// Unavailable. Used for the direct plain-HTTP check only.
	TimeoutIsUnstable bool
}

// ReachProber issues one reachability check and classifies the result.
type ReachProber interface {
	Probe(ctx context.Context, r ReachRequest) Status
}

// HTTPReachProber classifies any 2xx/3xx as Healthy, other codes as
// Anomalous, and transport failures by their error pattern. Redirects are
// followed.
type HTTPReachProber struct {
	Timeout time.Duration
}

func NewHTTPReachProber(timeout time.Duration) *HTTPReachProber {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &HTTPReachProber{Timeout: timeout}
}

func (p *HTTPReachProber) Probe(ctx context.Context, r ReachRequest) Status {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: !r.VerifyCert},
	}
	if r.Proxy != nil {
		transport.Proxy = http.ProxyURL(r.Proxy)
	}
	client := &http.Client{Transport: transport, Timeout: p.Timeout}
	defer transport.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return Unavailable("other")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		reason := ClassifyErr(err)
		if r.TimeoutIsUnstable && reason == "timeout" {
			return Unstable("timeout")
		}
		return Unavailable(reason)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return Healthy(resp.StatusCode)
	}
	return Anomalous(resp.StatusCode)
}
