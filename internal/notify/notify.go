// Package notify delivers alert messages over the configured channel. A
// delivery failure is reported as an error and never escalated: the caller
// logs it and retries on the next failing cycle.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/Leoace99/opsctl/internal/config"
)

type Notifier interface {
	Send(ctx context.Context, msg string) error
}

// Disabled accepts every message without doing anything. Alerting switched
// off is a successful no-op, not an error.
type Disabled struct{}

func (Disabled) Send(context.Context, string) error { return nil }

type unknownMethod string

func (m unknownMethod) Send(context.Context, string) error {
	return fmt.Errorf("unknown alert method: %s", string(m))
}

// FromConfig selects the alert channel. A bogus method still yields a
// Notifier: the mistake surfaces as a delivery failure in the log, the run
// itself keeps going.
func FromConfig(cfg config.Config) Notifier {
	method := strings.ToLower(strings.TrimSpace(cfg.OriginAlertMethod))
	switch method {
	case "", "none", "off", "false", "0":
		return Disabled{}
	case "ssh":
		return &SSH{
			Host:    strings.TrimSpace(cfg.OriginAlertHost),
			Command: strings.TrimSpace(cfg.OriginAlertCmd),
			KeyFile: strings.TrimSpace(cfg.OriginSSHKey),
			Opts:    strings.Fields(cfg.OriginSSHOpts),
		}
	case "telegram", "tg":
		return NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
	}
	return unknownMethod(method)
}
