package cncheck

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Leoace99/opsctl/internal/probe"
)

type fakePusher struct {
	pushed []string
	fail   error
}

func (f *fakePusher) Push(_ context.Context, file string) error {
	f.pushed = append(f.pushed, file)
	return f.fail
}

// orderProber answers healthy for even-numbered domains only, so the artifact
// carries a recognizable per-domain pattern.
type orderProber struct{}

func (orderProber) Probe(_ context.Context, r probe.ReachRequest) probe.Status {
	var n int
	fmt.Sscanf(r.URL, "https://d%d.example", &n)
	if n%2 == 0 {
		return probe.Healthy(200)
	}
	return probe.Unavailable("timeout")
}

func TestRunner_KeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cn_result.json")

	domains := make([]string, 8)
	for i := range domains {
		domains[i] = fmt.Sprintf("d%d.example", i)
	}

	r := &Runner{
		Logger:      zap.NewNop(),
		Checker:     &Checker{Prober: orderProber{}, Logger: zap.NewNop()},
		Concurrency: 4,
		ResultFile:  file,
	}
	rr, err := r.Run(context.Background(), domains)
	require.NoError(t, err)
	require.NotEmpty(t, rr.RunID)
	require.Len(t, rr.Records, 8)

	for i, rec := range rr.Records {
		require.Equal(t, domains[i], rec.Domain, "record %d out of order", i)
		if i%2 == 0 {
			require.Equal(t, FinalReachableUnverified, rec.Final)
		} else {
			require.Equal(t, FinalUnreachableUnverified, rec.Final)
		}
	}
}

func TestRunner_WritesArtifact(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "nested", "cn_result.json")
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	r := &Runner{
		Logger:     zap.NewNop(),
		Checker:    &Checker{Prober: orderProber{}, Logger: zap.NewNop()},
		ResultFile: file,
		Now:        func() time.Time { return started },
	}
	rr, err := r.Run(context.Background(), []string{"d0.example"})
	require.NoError(t, err)

	data, err := os.ReadFile(file)
	require.NoError(t, err)

	var got RunResult
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, rr.RunID, got.RunID)
	require.True(t, got.StartedAt.Equal(started))
	require.Len(t, got.Records, 1)
	require.Equal(t, "healthy(200)", got.Records[0].DirectHTTPS.String())
}

func TestRunner_PushFailureKeepsArtifact(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cn_result.json")
	pusher := &fakePusher{fail: fmt.Errorf("scp: connection refused")}

	r := &Runner{
		Logger:      zap.NewNop(),
		Checker:     &Checker{Prober: orderProber{}, Logger: zap.NewNop()},
		ResultFile:  file,
		Pusher:      pusher,
		PushEnabled: true,
	}
	_, err := r.Run(context.Background(), []string{"d0.example"})
	require.ErrorContains(t, err, "push result")
	require.Equal(t, []string{file}, pusher.pushed)

	// the local artifact survives the failed upload
	_, statErr := os.Stat(file)
	require.NoError(t, statErr)
}

func TestRunner_PushDisabledNeverCalls(t *testing.T) {
	dir := t.TempDir()
	pusher := &fakePusher{}

	r := &Runner{
		Logger:     zap.NewNop(),
		Checker:    &Checker{Prober: orderProber{}, Logger: zap.NewNop()},
		ResultFile: filepath.Join(dir, "cn_result.json"),
		Pusher:     pusher,
	}
	_, err := r.Run(context.Background(), []string{"d0.example"})
	require.NoError(t, err)
	require.Empty(t, pusher.pushed)
}
