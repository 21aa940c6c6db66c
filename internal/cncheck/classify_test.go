package cncheck

import (
	"context"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Leoace99/opsctl/internal/probe"
)

func TestClassify_DecisionTable(t *testing.T) {
	healthy := probe.Healthy(200)
	anomalous := probe.Anomalous(403)
	unavailable := probe.Unavailable("timeout")

	cases := []struct {
		name            string
		directHTTPS     probe.Status
		proxyHTTPS      probe.Status
		proxyHTTP       probe.Status
		proxyConfigured bool
		want            string
	}{
		// no proxy source: only the direct view counts
		{"noproxy_direct_ok", healthy, probe.ProxyNotConfigured(), probe.ProxyNotConfigured(), false, FinalReachableUnverified},
		{"noproxy_direct_anomalous", anomalous, probe.ProxyNotConfigured(), probe.ProxyNotConfigured(), false, FinalUnreachableUnverified},
		{"noproxy_direct_down", unavailable, probe.ProxyNotConfigured(), probe.ProxyNotConfigured(), false, FinalUnreachableUnverified},

		// proxy source configured, direct healthy
		{"direct_ok_proxy_ok", healthy, healthy, healthy, true, FinalReachable},
		{"direct_ok_proxy_unavailable", healthy, unavailable, unavailable, true, FinalExitPathDiscrepancy},
		// the asymmetry: an anomalous proxy answer is NOT a discrepancy
		{"direct_ok_proxy_anomalous", healthy, anomalous, unavailable, true, FinalReachable},

		// proxy source configured, direct unhealthy
		{"direct_down_proxy_https_ok", unavailable, healthy, unavailable, true, FinalRestricted},
		{"direct_down_proxy_http_ok", unavailable, unavailable, healthy, true, FinalRestricted},
		// the restricted branch needs positively healthy, anomalous is not enough
		{"direct_down_proxy_anomalous", unavailable, anomalous, anomalous, true, FinalNeedsExternal},
		{"direct_down_proxy_down", unavailable, unavailable, unavailable, true, FinalNeedsExternal},
		{"direct_anomalous_proxy_down", anomalous, unavailable, unavailable, true, FinalNeedsExternal},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Classify(c.directHTTPS, c.proxyHTTPS, c.proxyHTTP, c.proxyConfigured)
			require.Equal(t, c.want, got)
		})
	}
}

// fakeReachProber answers by URL scheme and whether a proxy was used.
type fakeReachProber struct {
	mu            sync.Mutex
	direct, proxy map[string]probe.Status // key: "https" / "http"
	calls         []probe.ReachRequest
}

func (f *fakeReachProber) Probe(_ context.Context, r probe.ReachRequest) probe.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r)
	scheme := "http"
	if len(r.URL) >= 5 && r.URL[:5] == "https" {
		scheme = "https"
	}
	if r.Proxy != nil {
		return f.proxy[scheme]
	}
	return f.direct[scheme]
}

// fakeSource scripts Fetch answers; nil means "nothing this attempt".
type fakeSource struct {
	answers []*url.URL
	fetches int
}

func (f *fakeSource) Fetch(context.Context) (*url.URL, bool) {
	i := f.fetches
	f.fetches++
	if i >= len(f.answers) || f.answers[i] == nil {
		return nil, false
	}
	return f.answers[i], true
}

func proxyURL(t *testing.T) *url.URL {
	t.Helper()
	u, err := url.Parse("http://user:pw@10.0.0.9:3128")
	require.NoError(t, err)
	return u
}

func TestChecker_NoProxySource(t *testing.T) {
	pr := &fakeReachProber{direct: map[string]probe.Status{
		"https": probe.Healthy(200),
		"http":  probe.Unstable("timeout"),
	}}
	c := &Checker{Prober: pr, Proxy: nil, MaxProxyRetry: 2, Logger: zap.NewNop()}

	rec := c.CheckDomain(context.Background(), "foo.com")
	require.Equal(t, probe.ProxyNotConfigured(), rec.ProxyHTTPS)
	require.Equal(t, probe.ProxyNotConfigured(), rec.ProxyHTTP)
	require.Equal(t, FinalReachableUnverified, rec.Final)
	require.Len(t, pr.calls, 2, "only the two direct probes run without a source")
}

func TestChecker_ProxyRetryStopsAtFirstHealthy(t *testing.T) {
	pr := &fakeReachProber{
		direct: map[string]probe.Status{"https": probe.Healthy(200), "http": probe.Healthy(200)},
		proxy:  map[string]probe.Status{"https": probe.Healthy(200), "http": probe.Anomalous(502)},
	}
	src := &fakeSource{answers: []*url.URL{proxyURL(t), proxyURL(t), proxyURL(t)}}
	c := &Checker{Prober: pr, Proxy: src, MaxProxyRetry: 3, Logger: zap.NewNop()}

	rec := c.CheckDomain(context.Background(), "bar.com")
	require.Equal(t, 1, src.fetches, "healthy on the first attempt must stop the loop")
	require.Equal(t, FinalReachable, rec.Final)
}

func TestChecker_EmptyFetchConsumesRetrySlot(t *testing.T) {
	pr := &fakeReachProber{
		direct: map[string]probe.Status{"https": probe.Healthy(200), "http": probe.Healthy(200)},
		proxy:  map[string]probe.Status{"https": probe.Healthy(200), "http": probe.Healthy(200)},
	}
	// both attempts yield nothing: proxy statuses stay unavailable and the
	// probes through a proxy never run
	src := &fakeSource{answers: []*url.URL{nil, nil}}
	c := &Checker{Prober: pr, Proxy: src, MaxProxyRetry: 2, Logger: zap.NewNop()}

	rec := c.CheckDomain(context.Background(), "baz.com")
	require.Equal(t, 2, src.fetches)
	require.Equal(t, probe.Unavailable("no_usable_proxy"), rec.ProxyHTTPS)
	require.Equal(t, probe.Unavailable("no_usable_proxy"), rec.ProxyHTTP)
	require.Len(t, pr.calls, 2, "no proxied probes without an endpoint")
	// direct healthy + proxy unavailable -> discrepancy
	require.Equal(t, FinalExitPathDiscrepancy, rec.Final)
}

func TestChecker_RetryNeverExceedsMax(t *testing.T) {
	pr := &fakeReachProber{
		direct: map[string]probe.Status{"https": probe.Unavailable("reset"), "http": probe.Unavailable("reset")},
		proxy:  map[string]probe.Status{"https": probe.Unavailable("timeout"), "http": probe.Unavailable("timeout")},
	}
	src := &fakeSource{answers: []*url.URL{proxyURL(t), proxyURL(t), proxyURL(t), proxyURL(t)}}
	c := &Checker{Prober: pr, Proxy: src, MaxProxyRetry: 2, Logger: zap.NewNop()}

	rec := c.CheckDomain(context.Background(), "qux.com")
	require.Equal(t, 2, src.fetches, "fetches are bounded by maxProxyRetry")
	require.Equal(t, FinalNeedsExternal, rec.Final)
}

func TestChecker_FreshEndpointPerAttempt(t *testing.T) {
	pr := &fakeReachProber{
		direct: map[string]probe.Status{"https": probe.Unavailable("timeout"), "http": probe.Unstable("timeout")},
		proxy:  map[string]probe.Status{"https": probe.Unavailable("proxy_connect"), "http": probe.Unavailable("proxy_connect")},
	}
	a, _ := url.Parse("http://1.1.1.1:3128")
	b, _ := url.Parse("http://2.2.2.2:3128")
	src := &fakeSource{answers: []*url.URL{a, b}}
	c := &Checker{Prober: pr, Proxy: src, MaxProxyRetry: 2, Logger: zap.NewNop()}

	_ = c.CheckDomain(context.Background(), "quux.com")
	require.Equal(t, 2, src.fetches)

	var proxied []*url.URL
	for _, call := range pr.calls {
		if call.Proxy != nil {
			proxied = append(proxied, call.Proxy)
		}
	}
	require.Len(t, proxied, 4) // https+http per attempt
	require.Equal(t, a, proxied[0])
	require.Equal(t, b, proxied[2], "second attempt must use the re-fetched endpoint")
}
