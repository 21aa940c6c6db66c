package cncheck

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/Leoace99/opsctl/internal/probe"
)

// Record is one domain's classification for a run.
type Record struct {
	Domain      string       `json:"domain"`
	DirectHTTPS probe.Status `json:"direct_https"`
	DirectHTTP  probe.Status `json:"direct_http"`
	ProxyHTTPS  probe.Status `json:"proxy_https"`
	ProxyHTTP   probe.Status `json:"proxy_http"`
	Final       string       `json:"final"`
}

// RunResult is the run's output artifact. Records keep the input order of
// the domains file regardless of worker scheduling.
type RunResult struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Records    []Record  `json:"records"`
}

// WriteResult writes the artifact as indented JSON, creating the parent
// directory if needed.
func WriteResult(path string, rr *RunResult) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
