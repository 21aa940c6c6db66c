package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore keeps one small JSON record per key in a directory. A corrupt or
// missing file reads as the zero Streak; writes go through a temp file and
// rename so a crashed run can't leave a half-written record.
type FileStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, locks: make(map[string]*sync.Mutex)}
}

func (fs *FileStore) keyLock(key string) *sync.Mutex {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	l := fs.locks[key]
	if l == nil {
		l = &sync.Mutex{}
		fs.locks[key] = l
	}
	return l
}

func (fs *FileStore) path(key string) string {
	return filepath.Join(fs.dir, SafeKey(key)+".json")
}

func (fs *FileStore) Get(_ context.Context, key string) (Streak, error) {
	l := fs.keyLock(key)
	l.Lock()
	defer l.Unlock()

	data, err := os.ReadFile(fs.path(key))
	if err != nil {
		return Streak{}, nil
	}
	var s Streak
	if err := json.Unmarshal(data, &s); err != nil {
		// corrupt record: counter absent
		return Streak{}, nil
	}
	if s.ConsecutiveFailures < 0 {
		s.ConsecutiveFailures = 0
	}
	return s, nil
}

func (fs *FileStore) Put(_ context.Context, key string, s Streak) error {
	l := fs.keyLock(key)
	l.Lock()
	defer l.Unlock()

	if err := os.MkdirAll(fs.dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	tmp := fs.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, fs.path(key))
}

func (fs *FileStore) Clear(_ context.Context, key string) error {
	l := fs.keyLock(key)
	l.Lock()
	defer l.Unlock()

	if err := os.Remove(fs.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (fs *FileStore) Snapshot(ctx context.Context) (map[string]Streak, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Streak{}, nil
		}
		return nil, err
	}
	out := make(map[string]Streak, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		key := strings.TrimSuffix(name, ".json")
		s, err := fs.Get(ctx, key)
		if err != nil {
			continue
		}
		out[key] = s
	}
	return out, nil
}
