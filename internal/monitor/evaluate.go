// Package monitor implements the origin subsystem: outcome evaluation, the
// per-target failure streak with its alert throttle, and the fan-out runner.
package monitor

import (
	"fmt"

	"github.com/Leoace99/opsctl/internal/probe"
)

// Evaluate turns a probe outcome into a failure reason, or "" when healthy.
//
// A wrong status code always wins over slowness: slowness is only considered
// once the code matched. The "000" sentinel maps to the transport detail, or
// a generic connect_fail when the prober gave none.
func Evaluate(out probe.Outcome, expectCode string, slowThreshold float64) string {
	if out.HTTPCode != expectCode {
		if out.HTTPCode == probe.CodeTransportFailure {
			if out.ErrorDetail != "" {
				return out.ErrorDetail
			}
			return "connect_fail"
		}
		return "HTTP " + out.HTTPCode
	}
	if out.Elapsed > slowThreshold {
		return fmt.Sprintf("slow response %.3fs", out.Elapsed)
	}
	return ""
}
