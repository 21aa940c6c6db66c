// Package cncheck classifies public-domain accessibility from a restricted
// vantage point, comparing the direct view against an upstream-proxy view.
package cncheck

import (
	"context"

	"go.uber.org/zap"

	"github.com/Leoace99/opsctl/internal/probe"
	"github.com/Leoace99/opsctl/internal/proxysource"
)

// Final classification strings, one per decision-table branch.
const (
	FinalReachableUnverified   = "reachable (unverified)"
	FinalUnreachableUnverified = "unreachable (unverified)"
	FinalReachable             = "reachable"
	FinalExitPathDiscrepancy   = "reachable with exit-path discrepancy"
	FinalRestricted            = "restricted (HTTPS blocked locally)"
	FinalNeedsExternal         = "unreachable (needs external verification)"
)

// Classify maps the direct and proxy results onto the final classification.
//
// The discrepancy branch deliberately tests "proxy-HTTPS is Unavailable"
// rather than "not healthy": an Anomalous proxy answer still proves the exit
// path works, only an Unavailable one marks the external vantage as blind.
// The restricted branch, by contrast, demands a positively Healthy proxy
// path. The asymmetry is load-bearing; don't symmetrize it.
func Classify(directHTTPS, proxyHTTPS, proxyHTTP probe.Status, proxyConfigured bool) string {
	directOK := directHTTPS.IsHealthy()

	if !proxyConfigured {
		if directOK {
			return FinalReachableUnverified
		}
		return FinalUnreachableUnverified
	}

	if directOK {
		if proxyHTTPS.IsUnavailable() {
			return FinalExitPathDiscrepancy
		}
		return FinalReachable
	}
	if proxyHTTPS.IsHealthy() || proxyHTTP.IsHealthy() {
		return FinalRestricted
	}
	return FinalNeedsExternal
}

// Checker runs the per-domain probe sequence.
type Checker struct {
	Prober        probe.ReachProber
	Proxy         proxysource.Source // nil when no proxy source is configured
	MaxProxyRetry int
	Logger        *zap.Logger
}

// CheckDomain runs the direct probes, then the proxy path, and produces the
// domain's record.
func (c *Checker) CheckDomain(ctx context.Context, domain string) Record {
	directHTTPS := c.Prober.Probe(ctx, probe.ReachRequest{
		URL: "https://" + domain,
		// reachability, not trust: broken or interfered certs must not mask
		// the answer
		VerifyCert: false,
	})
	directHTTP := c.Prober.Probe(ctx, probe.ReachRequest{
		URL:        "http://" + domain,
		VerifyCert: true,
		// plain HTTP often degrades rather than dies under interference; a
		// timeout here is inconclusive, not proof of blocking
		TimeoutIsUnstable: true,
	})

	if directHTTPS.IsUnavailable() {
		diag := probe.DiagnoseDNS(ctx, domain)
		c.Logger.Info("dns_diagnosis",
			zap.String("domain", domain),
			zap.String("class", diag.Class),
			zap.Strings("ips", diag.IPs),
			zap.Strings("nameservers", diag.Nameservers),
			zap.String("error", diag.Err),
		)
	}

	proxyHTTPS, proxyHTTP := c.proxyPath(ctx, domain)
	final := Classify(directHTTPS, proxyHTTPS, proxyHTTP, c.Proxy != nil)

	c.Logger.Info("domain_checked",
		zap.String("domain", domain),
		zap.Stringer("direct_https", directHTTPS),
		zap.Stringer("direct_http", directHTTP),
		zap.Stringer("proxy_https", proxyHTTPS),
		zap.Stringer("proxy_http", proxyHTTP),
		zap.String("final", final),
	)

	return Record{
		Domain:      domain,
		DirectHTTPS: directHTTPS,
		DirectHTTP:  directHTTP,
		ProxyHTTPS:  proxyHTTPS,
		ProxyHTTP:   proxyHTTP,
		Final:       final,
	}
}

// proxyPath probes through freshly fetched proxy endpoints, retrying up to
// MaxProxyRetry times. Each attempt re-fetches: an expired endpoint is part
// of the failure mode being measured. A fetch that yields nothing skips the
// probes but still burns the retry slot.
func (c *Checker) proxyPath(ctx context.Context, domain string) (probe.Status, probe.Status) {
	if c.Proxy == nil {
		return probe.ProxyNotConfigured(), probe.ProxyNotConfigured()
	}

	proxyHTTPS := probe.Unavailable("no_usable_proxy")
	proxyHTTP := probe.Unavailable("no_usable_proxy")

	for i := 0; i < c.MaxProxyRetry; i++ {
		ep, ok := c.Proxy.Fetch(ctx)
		if !ok {
			continue
		}
		proxyHTTPS = c.Prober.Probe(ctx, probe.ReachRequest{
			URL:        "https://" + domain,
			VerifyCert: false,
			Proxy:      ep,
		})
		proxyHTTP = c.Prober.Probe(ctx, probe.ReachRequest{
			URL:        "http://" + domain,
			VerifyCert: true,
			Proxy:      ep,
		})
		if proxyHTTPS.IsHealthy() || proxyHTTP.IsHealthy() {
			break
		}
	}
	return proxyHTTPS, proxyHTTP
}
