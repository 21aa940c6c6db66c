package cncheck

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Leoace99/opsctl/internal/metrics"
	"github.com/Leoace99/opsctl/internal/push"
)

// Runner checks every domain, writes the artifact, and optionally pushes it.
// The returned error aggregates write/push problems; probe trouble never
// surfaces here, it lives inside the records.
type Runner struct {
	Logger      *zap.Logger
	Checker     *Checker
	Concurrency int
	ResultFile  string
	Pusher      push.Pusher
	PushEnabled bool
	Now         func() time.Time // defaults to time.Now
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) Run(ctx context.Context, domains []string) (*RunResult, error) {
	started := r.now()
	r.Logger.Info("run_started", zap.Int("domains", len(domains)))

	conc := r.Concurrency
	if conc < 1 {
		conc = 1
	}
	// records are placed by index so the artifact keeps input order no
	// matter how workers interleave
	records := make([]Record, len(domains))
	sem := make(chan struct{}, conc)
	var wg sync.WaitGroup

	for i, d := range domains {
		idx, domain := i, d
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()

			start := time.Now()
			rec := r.Checker.CheckDomain(ctx, domain)
			metrics.ObserveProbe(metrics.SubsystemCN, time.Since(start), rec.DirectHTTPS.IsHealthy())
			records[idx] = rec
		}()
	}
	wg.Wait()

	rr := &RunResult{
		RunID:      uuid.NewString(),
		StartedAt:  started,
		FinishedAt: r.now(),
		Records:    records,
	}

	var errs error
	if err := WriteResult(r.ResultFile, rr); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("write result %s: %w", r.ResultFile, err))
		r.Logger.Error("result_write_error", zap.String("file", r.ResultFile), zap.Error(err))
	} else {
		r.Logger.Info("result_written", zap.String("file", r.ResultFile), zap.String("run_id", rr.RunID))

		if r.PushEnabled {
			err := r.Pusher.Push(ctx, r.ResultFile)
			metrics.ObservePush(err == nil)
			if err != nil {
				// the artifact on disk stays valid either way
				errs = multierr.Append(errs, fmt.Errorf("push result: %w", err))
				r.Logger.Error("push_error", zap.Error(err))
			} else {
				r.Logger.Info("result_pushed", zap.String("file", r.ResultFile))
			}
		}
	}

	r.Logger.Info("run_finished", zap.String("run_id", rr.RunID))
	return rr, errs
}
