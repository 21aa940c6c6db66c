package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Leoace99/opsctl/internal/metrics"
	"github.com/Leoace99/opsctl/internal/probe"
	"github.com/Leoace99/opsctl/internal/targetlist"
)

// Runner probes every target once, fanning out across a bounded worker pool.
// Each target's streak state has its own key, so workers never contend on a
// record.
type Runner struct {
	Logger      *zap.Logger
	Prober      probe.OriginProber
	Tracker     *Tracker
	ExpectCode  string
	Timeout     time.Duration
	Concurrency int
}

func (r *Runner) Run(ctx context.Context, targets []targetlist.Target) {
	conc := r.Concurrency
	if conc < 1 {
		conc = 1
	}
	sem := make(chan struct{}, conc)
	var wg sync.WaitGroup

	for _, tgt := range targets {
		t := tgt
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()

			cctx, cancel := context.WithTimeout(ctx, r.Timeout+2*time.Second)
			defer cancel()

			start := time.Now()
			out := r.Prober.Probe(cctx, t)
			reason := Evaluate(out, r.ExpectCode, t.SlowTime)
			metrics.ObserveProbe(metrics.SubsystemOrigin, time.Since(start), reason == "")

			r.Tracker.Observe(ctx, t, out, reason)
		}()
	}
	wg.Wait()
}
