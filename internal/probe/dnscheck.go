package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// DNSDiagnosis is attached to a reachability record when the direct HTTPS
// check came back unavailable: it separates resolver trouble from transport
// blocking.
type DNSDiagnosis struct {
	Domain      string
	Class       string // resolves | nxdomain | no_a_record | resolver_error | invalid_name
	IPs         []string
	Nameservers []string
	Err         string
}

var dnsTimeout = 3 * time.Second

// DiagnoseDNS resolves domain with the OS resolver and classifies the result.
func DiagnoseDNS(ctx context.Context, domain string) DNSDiagnosis {
	d := DNSDiagnosis{Domain: strings.TrimSpace(domain)}
	if d.Domain == "" || strings.Contains(d.Domain, "://") {
		d.Class = "invalid_name"
		return d
	}

	ctx, cancel := context.WithTimeout(ctx, dnsTimeout)
	defer cancel()
	r := &net.Resolver{}

	ips, err := r.LookupIP(ctx, "ip", d.Domain)
	if err == nil && len(ips) > 0 {
		for _, ip := range ips {
			d.IPs = append(d.IPs, ip.String())
		}
		d.Class = "resolves"
	} else if err != nil {
		d.Err = err.Error()
		var de *net.DNSError
		if errors.As(err, &de) && de.IsNotFound {
			d.Class = "nxdomain"
		} else {
			d.Class = "resolver_error"
		}
	}

	if ns, err := r.LookupNS(ctx, d.Domain); err == nil && len(ns) > 0 {
		for _, n := range ns {
			d.Nameservers = append(d.Nameservers, strings.TrimSuffix(n.Host, "."))
		}
		// The zone exists but has no address record.
		if d.Class == "nxdomain" {
			d.Class = "no_a_record"
		}
	}

	if d.Class == "" {
		d.Class = "nxdomain"
	}
	return d
}
