// Package loader hot-reloads config files while the server runs: the
// instrument watchlist and the main config's log level.
package loader

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"finboard/internal/logger"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// WatchlistFile is the on-disk shape of the watchlist YAML.
type WatchlistFile struct {
	Instruments []string `yaml:"instruments"`
}

// WatchlistSnapshot is the read-only view handed to consumers.
type WatchlistSnapshot struct {
	Version     int64
	LoadedAt    time.Time
	Instruments []string
}

// WatchlistLoader loads the instrument watchlist and reloads it on file change.
type WatchlistLoader struct {
	path    string
	watcher *fsnotify.Watcher

	mu       sync.RWMutex
	snapshot WatchlistSnapshot
}

// NewWatchlistLoader reads the watchlist file and starts watching it.
func NewWatchlistLoader(path string) (*WatchlistLoader, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("watchlist loader requires path")
	}
	l := &WatchlistLoader{path: path}
	if err := l.reload(); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watchlist watcher init failed: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watchlist watcher add failed: %w", err)
	}
	l.watcher = watcher
	go l.watchLoop()
	return l, nil
}

func (l *WatchlistLoader) watchLoop() {
	for {
		select {
		case evt, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := l.reload(); err != nil {
				logger.Errorf("watchlist reload failed (%s): %v", evt.Name, err)
			}
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("watchlist watcher error: %v", err)
		}
	}
}

func (l *WatchlistLoader) reload() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("read watchlist failed: %w", err)
	}
	var file WatchlistFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse watchlist failed: %w", err)
	}
	instruments := normalizeInstruments(file.Instruments)
	l.mu.Lock()
	l.snapshot = WatchlistSnapshot{
		Version:     l.snapshot.Version + 1,
		LoadedAt:    time.Now(),
		Instruments: instruments,
	}
	l.mu.Unlock()
	logger.Infof("watchlist loaded: %d instruments", len(instruments))
	return nil
}

// Snapshot returns the current watchlist.
func (l *WatchlistLoader) Snapshot() WatchlistSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	snap := l.snapshot
	snap.Instruments = append([]string(nil), l.snapshot.Instruments...)
	return snap
}

// Close stops the file watcher.
func (l *WatchlistLoader) Close() error {
	if l == nil || l.watcher == nil {
		return nil
	}
	return l.watcher.Close()
}

func normalizeInstruments(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, inst := range in {
		inst = strings.ToUpper(strings.TrimSpace(inst))
		if inst == "" || seen[inst] {
			continue
		}
		seen[inst] = true
		out = append(out, inst)
	}
	sort.Strings(out)
	return out
}
