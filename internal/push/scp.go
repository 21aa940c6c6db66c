// Package push copies the cn result artifact to the remote collection host.
package push

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

type Pusher interface {
	Push(ctx context.Context, localPath string) error
}

// SCP shells out to the system scp binary. Missing destination settings are a
// hard failure: a push was asked for and cannot happen.
type SCP struct {
	User    string
	Host    string
	Dir     string
	KeyFile string
	Opts    []string
	Timeout time.Duration
}

func (s *SCP) Push(ctx context.Context, localPath string) error {
	if s.User == "" || s.Host == "" || s.Dir == "" {
		return errors.New("missing CN_PUSH_USER/CN_PUSH_HOST/CN_PUSH_DIR")
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	argv := append([]string{}, s.Opts...)
	if s.KeyFile != "" {
		argv = append(argv, "-i", s.KeyFile)
	}
	dest := fmt.Sprintf("%s@%s:%s/", s.User, s.Host, strings.TrimRight(s.Dir, "/"))
	argv = append(argv, localPath, dest)

	out, err := exec.CommandContext(ctx, "scp", argv...).CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if len(detail) > 200 {
			detail = detail[:200]
		}
		return fmt.Errorf("scp to %s failed: %w (%s)", dest, err, detail)
	}
	return nil
}
