package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/specialistvlad/prune/internal/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, dir string, calls *atomic.Int32) *watch.Watcher {
	t.Helper()
	w, err := watch.New([]string{dir}, func() { calls.Add(1) })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, nil)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return w
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	startWatcher(t, dir, &calls)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte{byte(i)}, 0o644))
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "a burst of writes triggers one callback")
}

func TestWatcher_PauseDropsEvents(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	w := startWatcher(t, dir, &calls)

	w.Pause()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "built.o"), nil, 0o644))
	time.Sleep(300 * time.Millisecond)
	w.Resume()
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, int32(0), calls.Load())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "edited.c"), nil, 0o644))
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := watch.New([]string{filepath.Join(t.TempDir(), "nope")}, func() {})
	assert.Error(t, err)
}
