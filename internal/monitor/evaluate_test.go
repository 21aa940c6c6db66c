package monitor

import (
	"testing"

	"github.com/Leoace99/opsctl/internal/probe"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name string
		out  probe.Outcome
		want string
	}{
		{"healthy_fast", probe.Outcome{HTTPCode: "200", Elapsed: 0.05}, ""},
		{"wrong_code", probe.Outcome{HTTPCode: "502", Elapsed: 0.05}, "HTTP 502"},
		// a wrong code is reported even when the response was fast; slowness
		// is not consulted at all for code mismatches
		{"wrong_code_slow", probe.Outcome{HTTPCode: "404", Elapsed: 9.9}, "HTTP 404"},
		{"transport_with_detail", probe.Outcome{HTTPCode: "000", ErrorDetail: "timeout"}, "timeout"},
		{"transport_no_detail", probe.Outcome{HTTPCode: "000"}, "connect_fail"},
		{"slow", probe.Outcome{HTTPCode: "200", Elapsed: 3.2}, "slow response 3.200s"},
		{"exactly_threshold_ok", probe.Outcome{HTTPCode: "200", Elapsed: 2.0}, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Evaluate(c.out, "200", 2.0); got != c.want {
				t.Fatalf("Evaluate(%+v)=%q want %q", c.out, got, c.want)
			}
		})
	}
}

func TestEvaluate_CustomExpectCode(t *testing.T) {
	// expecting 204: a 200 is a failure
	if got := Evaluate(probe.Outcome{HTTPCode: "200", Elapsed: 0.1}, "204", 5); got != "HTTP 200" {
		t.Fatalf("got %q", got)
	}
	if got := Evaluate(probe.Outcome{HTTPCode: "204", Elapsed: 0.1}, "204", 5); got != "" {
		t.Fatalf("got %q", got)
	}
}
