package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// SSH runs a remote command on a relay host, passing the message as a single
// shell-quoted argument.
type SSH struct {
	Host    string
	Command string
	KeyFile string
	Opts    []string
	Timeout time.Duration
}

func (s *SSH) Send(ctx context.Context, msg string) error {
	if s.Host == "" || s.Command == "" {
		return errors.New("missing ORIGIN_ALERT_HOST/ORIGIN_ALERT_CMD")
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	argv := append([]string{}, s.Opts...)
	if s.KeyFile != "" {
		argv = append(argv, "-i", s.KeyFile)
	}
	// Quoting keeps spaces, CJK text and emoji as one remote argument.
	argv = append(argv, s.Host, s.Command+" "+shellQuote(msg))

	out, err := exec.CommandContext(ctx, "ssh", argv...).CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if len(detail) > 200 {
			detail = detail[:200]
		}
		return fmt.Errorf("ssh relay failed: %w (%s)", err, detail)
	}
	return nil
}

// shellQuote single-quotes s for POSIX sh, escaping embedded quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
