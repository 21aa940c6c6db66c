package monitor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Leoace99/opsctl/internal/metrics"
	"github.com/Leoace99/opsctl/internal/notify"
	"github.com/Leoace99/opsctl/internal/probe"
	"github.com/Leoace99/opsctl/internal/state"
	"github.com/Leoace99/opsctl/internal/targetlist"
)

// BurstAlertLimit is the streak length up to which every failing cycle
// alerts; beyond it the interval throttle kicks in.
const BurstAlertLimit = 10

// Tracker owns one target's read-decide-write cycle: it consumes an already
// evaluated probe result, maintains the persisted streak, and drives alert
// dispatch. Targets never share a state key, so trackers can run one cycle
// per target concurrently.
type Tracker struct {
	Store         state.Store
	Notifier      notify.Notifier
	Logger        *zap.Logger
	AlertInterval time.Duration
	Now           func() time.Time // defaults to time.Now
}

func (tr *Tracker) now() time.Time {
	if tr.Now != nil {
		return tr.Now()
	}
	return time.Now()
}

// Observe applies one probe cycle for a target. failReason comes from
// Evaluate; empty means the probe was healthy.
//
// Recovery clears all persisted state unconditionally. On failure the streak
// is incremented and the alert decision made: every failure alerts while the
// streak is within the burst, afterwards only when AlertInterval has elapsed
// since the last delivered alert. The throttle timestamp moves only after a
// delivery actually succeeded, so a lost alert is retried next cycle instead
// of silently extending the window.
func (tr *Tracker) Observe(ctx context.Context, t targetlist.Target, out probe.Outcome, failReason string) {
	key := state.SafeKey(t.Name)

	if failReason == "" {
		if err := tr.Store.Clear(ctx, key); err != nil {
			tr.Logger.Warn("state_clear_error", zap.String("target", t.Name), zap.Error(err))
		}
		tr.Logger.Info("probe_ok",
			zap.String("target", t.Name),
			zap.String("code", out.HTTPCode),
			zap.Float64("elapsed_s", out.Elapsed),
		)
		return
	}

	st, _ := tr.Store.Get(ctx, key) // read errors mean "absent", by contract
	st.ConsecutiveFailures++
	count := st.ConsecutiveFailures

	now := tr.now()
	send := count <= BurstAlertLimit ||
		now.Unix()-st.LastAlertUnix >= int64(tr.AlertInterval/time.Second)

	if send {
		msg := formatAlert(t, failReason, out.Elapsed, count, now)
		err := tr.Notifier.Send(ctx, msg)
		delivered := err == nil
		metrics.ObserveAlert(delivered)

		detail := "ok"
		if err != nil {
			detail = err.Error()
		}
		tr.Logger.Info("alert_attempt",
			zap.String("target", t.Name),
			zap.Bool("delivered", delivered),
			zap.String("detail", detail),
			zap.Int("count", count),
		)
		if delivered {
			st.LastAlertUnix = now.Unix()
		}
	}

	if err := tr.Store.Put(ctx, key, st); err != nil {
		tr.Logger.Warn("state_put_error", zap.String("target", t.Name), zap.Error(err))
	}

	tr.Logger.Info("probe_fail",
		zap.String("target", t.Name),
		zap.String("reason", failReason),
		zap.String("code", out.HTTPCode),
		zap.Float64("elapsed_s", out.Elapsed),
		zap.Int("count", count),
	)
}

func formatAlert(t targetlist.Target, reason string, elapsed float64, count int, now time.Time) string {
	return fmt.Sprintf(
		"🚨 origin unreachable | name: %s | domain: %s | ip: %s | reason: %s | elapsed: %.3fs | consecutive: %d | at: %s",
		t.Name, t.Domain, t.OriginIP, reason, elapsed, count, now.Format("2006-01-02 15:04:05"),
	)
}
