package config

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	logx "hwbot/pkg/logx"
)

// Watcher keeps the settings file loaded and publishes validated updates to
// subscribers. Editors tend to emit several write events per save, so reloads
// are debounced and skipped when the content hash is unchanged.
type Watcher struct {
	path string

	mu  sync.RWMutex
	cur *Settings

	subsMu sync.Mutex
	subs   []chan *Settings

	log logx.Logger

	// lastHash tracks the last committed content to avoid redundant publishes.
	lastHash uint64
}

func NewWatcher(path string, log logx.Logger) *Watcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Watcher{path: path, log: log}
}

// Load parses the file (or defaults when absent) and commits the result.
func (w *Watcher) Load() (*Settings, error) {
	s, err := LoadSettings(w.path)
	if err != nil {
		return nil, err
	}
	w.commit(s)
	return s, nil
}

func (w *Watcher) Get() *Settings {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cur
}

func (w *Watcher) commit(s *Settings) {
	w.mu.Lock()
	w.cur = s
	w.lastHash = hashSettings(s)
	w.mu.Unlock()
}

func hashSettings(s *Settings) uint64 {
	if s == nil {
		return 0
	}
	b, err := json.Marshal(s)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}

func (w *Watcher) Subscribe(buffer int) chan *Settings {
	ch := make(chan *Settings, buffer)
	w.subsMu.Lock()
	w.subs = append(w.subs, ch)
	w.subsMu.Unlock()
	return ch
}

func (w *Watcher) publish(s *Settings) {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for _, ch := range w.subs {
		// Deliver the latest; if the subscriber is slow, drop one stale
		// item and retry once.
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}

// Watch blocks until ctx is done, reloading the settings file on change.
// A parse or validation failure keeps the previous settings in effect.
func (w *Watcher) Watch(ctx context.Context) error {
	if w.path == "" {
		<-ctx.Done()
		return nil
	}

	dir := filepath.Dir(w.path)
	file := filepath.Base(w.path)

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	// debounce to avoid reading partial writes
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(250*time.Millisecond, func() {
			b, err := os.ReadFile(w.path)
			if err != nil {
				w.log.Warn("settings read failed", logx.String("path", w.path), logx.Err(err))
				return
			}
			s, err := parseSettings(w.path, b)
			if err != nil {
				w.log.Warn("settings rejected", logx.String("path", w.path), logx.Err(err))
				return
			}

			h := hashSettings(s)
			w.mu.RLock()
			unchanged := h != 0 && h == w.lastHash
			w.mu.RUnlock()
			if unchanged {
				w.log.Debug("settings unchanged; skipping publish")
				return
			}

			w.commit(s)
			w.publish(s)
			w.log.Info("settings reloaded", logx.String("path", w.path))
		})
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		fw, err := fsnotify.NewWatcher()
		if err == nil {
			err = fw.Add(dir)
			if err != nil {
				_ = fw.Close()
			}
		}
		if err != nil {
			w.log.Warn("settings watch unavailable", logx.Err(err), logx.String("dir", dir))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(5 * time.Second):
				continue
			}
		}

		w.log.Debug("settings watcher started", logx.String("file", w.path))

		broken := false
		for !broken {
			select {
			case <-ctx.Done():
				_ = fw.Close()
				return nil
			case ev, ok := <-fw.Events:
				if !ok {
					broken = true
					break
				}
				// Compare by basename; editors rename/replace on save.
				if strings.EqualFold(filepath.Base(ev.Name), file) {
					if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove|fsnotify.Chmod) != 0 {
						debounce()
					}
				}
			case werr, ok := <-fw.Errors:
				if !ok {
					broken = true
					break
				}
				if werr != nil {
					w.log.Warn("settings watch error", logx.Err(werr))
				}
			}
		}

		_ = fw.Close()
		if ctx.Err() != nil {
			return nil
		}
		w.log.Warn("settings watcher stopped; restarting")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Second):
		}
	}
}
