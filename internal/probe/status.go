// Package probe holds the shared probe outcome model and the HTTP probers
// used by both the origin monitor and the cn-check classifier.
package probe

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// CodeTransportFailure is the sentinel HTTP code for a failed connection.
const CodeTransportFailure = "000"

// Outcome is the raw result of one origin probe.
type Outcome struct {
	HTTPCode    string  // "000" when the transport failed
	Elapsed     float64 // seconds
	ErrorDetail string  // empty on success
}

// StatusClass tags a reachability check result. It is assigned exactly once
// at the probe boundary; downstream decisions switch on the tag, never on
// formatted text.
type StatusClass int

const (
	ClassHealthy StatusClass = iota
	ClassAnomalous
	ClassUnavailable
	ClassUnstable
	ClassProxyNotConfigured
)

// Status is a tagged reachability outcome. Code is set for Healthy/Anomalous,
// Reason for Unavailable/Unstable.
type Status struct {
	Class  StatusClass
	Code   int
	Reason string
}

func Healthy(code int) Status { return Status{Class: ClassHealthy, Code: code} }
func Anomalous(code int) Status { return Status{Class: ClassAnomalous, Code: code} }
func Unavailable(r string) Status { return Status{Class: ClassUnavailable, Reason: r} }
func Unstable(r string) Status { return Status{Class: ClassUnstable, Reason: r} }
func ProxyNotConfigured() Status { return Status{Class: ClassProxyNotConfigured} }
func (s Status) IsHealthy() bool { return s.Class == ClassHealthy }
func (s Status) IsUnavailable() bool { return s.Class == ClassUnavailable }

func (s Status) String() string {
	switch s.Class {
	case ClassHealthy:
		return fmt.Sprintf("healthy(%d)", s.Code)
	case ClassAnomalous:
		return fmt.Sprintf("anomalous(%d)", s.Code)
	case ClassUnavailable:
		if s.Reason == "" {
			return "unavailable"
		}
		return fmt.Sprintf("unavailable(%s)", s.Reason)
	case ClassUnstable:
		if s.Reason == "" {
			return "unstable"
		}
		return fmt.Sprintf("unstable(%s)", s.Reason)
	case ClassProxyNotConfigured:
		return "proxy_not_configured"
	}
	return "unknown"
}

func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Status) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	name := raw
	arg := ""
	if i := strings.IndexByte(raw, '('); i >= 0 && strings.HasSuffix(raw, ")") {
		name = raw[:i]
		arg = raw[i+1 : len(raw)-1]
	}
	switch name {
	case "healthy":
		var code int
		fmt.Sscanf(arg, "%d", &code)
		*s = Healthy(code)
	case "anomalous":
		var code int
		fmt.Sscanf(arg, "%d", &code)
		*s = Anomalous(code)
	case "unavailable":
		*s = Unavailable(arg)
	case "unstable":
		*s = Unstable(arg)
	case "proxy_not_configured":
		*s = ProxyNotConfigured()
	default:
		return fmt.Errorf("unknown probe status %q", raw)
	}
	return nil
}

// ClassifyErr maps a transport error to one of the fixed reason tokens:
// timeout, reset, ssl_error, refused, proxy_connect, other. Anything
// unclassifiable falls through to "other".
func ClassifyErr(err error) string {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "timeout"
	}
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "timeout") || strings.Contains(s, "timed out") || strings.Contains(s, "deadline exceeded"):
		return "timeout"
	case strings.Contains(s, "reset"):
		return "reset"
	case strings.Contains(s, "tls") || strings.Contains(s, "ssl") || strings.Contains(s, "eof"):
		return "ssl_error"
	case strings.Contains(s, "refused"):
		return "refused"
	case strings.Contains(s, "proxyconnect") || (strings.Contains(s, "proxy") && strings.Contains(s, "connect")):
		return "proxy_connect"
	default:
		return "other"
	}
}
