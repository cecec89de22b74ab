package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	logx "hwbot/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Files:
//   - <prefix>.cycles.jsonl        (append-only JSON Lines)
//   - <prefix>.notifications.jsonl (append-only JSON Lines)
//
// Reads scan the file; the digest queries once a day, so this is fine for
// the volumes this bot produces.
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	cyclesPath string
	notifPath  string

	cyclesFile *os.File
	notifFile  *os.File
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	prefix := filepath.Join(dir, base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	cyclesPath := prefix + ".cycles.jsonl"
	notifPath := prefix + ".notifications.jsonl"

	cf, err := os.OpenFile(cyclesPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	nf, err := os.OpenFile(notifPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		_ = cf.Close()
		return nil, err
	}

	return &fileStore{
		log:        log,
		cyclesPath: cyclesPath,
		notifPath:  notifPath,
		cyclesFile: cf,
		notifFile:  nf,
	}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err1, err2 error
	if s.cyclesFile != nil {
		err1 = s.cyclesFile.Close()
		s.cyclesFile = nil
	}
	if s.notifFile != nil {
		err2 = s.notifFile.Close()
		s.notifFile = nil
	}
	if err1 != nil {
		return err1
	}
	return err2
}

func (s *fileStore) AppendCycle(ctx context.Context, e CycleEntry) error {
	_ = ctx
	if e.At.IsZero() {
		e.At = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cyclesFile == nil {
		return errors.New("cycles file closed")
	}
	return json.NewEncoder(s.cyclesFile).Encode(e)
}

func (s *fileStore) AppendNotification(ctx context.Context, e NotificationEntry) error {
	_ = ctx
	if e.At.IsZero() {
		e.At = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notifFile == nil {
		return errors.New("notifications file closed")
	}
	return json.NewEncoder(s.notifFile).Encode(e)
}

func (s *fileStore) CycleStats(ctx context.Context, since time.Time) (CycleStats, error) {
	_ = ctx
	var st CycleStats
	err := scanJSONL(s.cyclesPath, func(line []byte) {
		var e CycleEntry
		if json.Unmarshal(line, &e) != nil || e.At.Before(since) {
			return
		}
		st.Total++
		if !e.OK {
			st.Failed++
		}
		if e.Notified {
			st.Notified++
		}
	})
	return st, err
}

func (s *fileStore) RecentNotifications(ctx context.Context, since time.Time, limit int) ([]NotificationEntry, error) {
	_ = ctx
	if limit <= 0 {
		limit = 50
	}
	var out []NotificationEntry
	err := scanJSONL(s.notifPath, func(line []byte) {
		var e NotificationEntry
		if json.Unmarshal(line, &e) != nil || e.At.Before(since) {
			return
		}
		out = append(out, e)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func scanJSONL(path string, fn func(line []byte)) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fn([]byte(line))
	}
	return sc.Err()
}
