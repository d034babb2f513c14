package loader

import (
	"fmt"
	"strings"

	"finboard/internal/config"
	"finboard/internal/logger"

	"github.com/fsnotify/fsnotify"
)

// LogLevelWatcher re-reads the main config when it changes on disk and applies
// the app log level without a restart. Only the level is re-applied; every
// other setting still requires a restart.
type LogLevelWatcher struct {
	path    string
	apply   func(level string)
	watcher *fsnotify.Watcher
	last    string
}

// WatchLogLevel starts watching path. apply is called with the new level
// whenever it changes.
func WatchLogLevel(path string, apply func(level string)) (*LogLevelWatcher, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("log level watcher requires path")
	}
	if apply == nil {
		return nil, fmt.Errorf("log level watcher requires apply func")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher init failed: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("config watcher add failed: %w", err)
	}
	w := &LogLevelWatcher{path: path, apply: apply, watcher: watcher}
	go w.watchLoop()
	return w, nil
}

func (w *LogLevelWatcher) watchLoop() {
	for {
		select {
		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("config watcher error: %v", err)
		}
	}
}

func (w *LogLevelWatcher) reload() {
	cfg, err := config.Load(w.path)
	if err != nil {
		logger.Warnf("config reload failed, keeping current log level: %v", err)
		return
	}
	level := cfg.App.LogLevel
	if level == w.last {
		return
	}
	w.last = level
	w.apply(level)
}

// Close stops the watcher.
func (w *LogLevelWatcher) Close() error {
	if w == nil || w.watcher == nil {
		return nil
	}
	return w.watcher.Close()
}
