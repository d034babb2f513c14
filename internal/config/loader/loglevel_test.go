package loader

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchLogLevelAppliesChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  log_level: info\n"), 0o644))

	var mu sync.Mutex
	var applied []string
	w, err := WatchLogLevel(path, func(level string) {
		mu.Lock()
		applied = append(applied, level)
		mu.Unlock()
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, os.WriteFile(path, []byte("app:\n  log_level: debug\n"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(applied) > 0 && applied[len(applied)-1] == "debug"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatchLogLevelIgnoresBrokenConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  log_level: info\n"), 0o644))

	var mu sync.Mutex
	count := 0
	w, err := WatchLogLevel(path, func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, os.WriteFile(path, []byte("app: {{{ broken"), 0o644))

	time.Sleep(200 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, count)
}

func TestWatchLogLevelValidation(t *testing.T) {
	_, err := WatchLogLevel("", func(string) {})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: {}\n"), 0o644))
	_, err = WatchLogLevel(path, nil)
	assert.Error(t, err)
}
