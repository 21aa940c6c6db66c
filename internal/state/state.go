// Package state persists per-target failure streaks between runs.
package state

import (
	"context"
	"strings"
)

// Streak is the persisted record for one target. The zero value means
// "healthy, never alerted": a target has a record exactly while it is
// failing.
type Streak struct {
	ConsecutiveFailures int   `json:"consecutive_failures"`
	LastAlertUnix       int64 `json:"last_alert_unix"`
}

// Store is a key-value record store addressed by sanitized target name.
//
// Get treats a missing or unreadable record as the zero Streak. A store must
// serialize writes per key; keys are never shared across targets.
type Store interface {
	Get(ctx context.Context, key string) (Streak, error)
	Put(ctx context.Context, key string, s Streak) error
	Clear(ctx context.Context, key string) error
	Snapshot(ctx context.Context) (map[string]Streak, error)
}

// SafeKey keeps alphanumerics and ".-_", replacing anything else, so target
// names can't escape the state directory.
func SafeKey(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, ch := range name {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9',
			ch == '.', ch == '-', ch == '_':
			b.WriteRune(ch)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
