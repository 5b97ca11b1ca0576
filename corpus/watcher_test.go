package corpus_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delph-in/gomrs/corpus"
)

// waitEvent blocks until an event for the given path arrives or the
// timeout elapses.
func waitEvent(t *testing.T, w *corpus.Watcher, path string) corpus.WatchEvent {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-w.Events():
			require.True(t, ok, "events channel closed early")
			if ev.Path == path {
				return ev
			}
		case <-deadline:
			t.Fatalf("no event for %s", path)
		}
	}
}

func TestWatcherCreateAndDelete(t *testing.T) {
	dir := t.TempDir()
	w, err := corpus.NewWatcher(dir, []string{".mrs"}, 50*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	path := filepath.Join(dir, "item.mrs")
	require.NoError(t, os.WriteFile(path, []byte(rains), 0o644))
	ev := waitEvent(t, w, path)
	assert.Equal(t, corpus.OpCreate, ev.Operation)

	require.NoError(t, os.Remove(path))
	ev = waitEvent(t, w, path)
	assert.Equal(t, corpus.OpDelete, ev.Operation)
}

func TestWatcherFiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	w, err := corpus.NewWatcher(dir, []string{"mrs"}, 50*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	ignored := filepath.Join(dir, "notes.txt")
	watched := filepath.Join(dir, "item.mrs")
	require.NoError(t, os.WriteFile(ignored, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(watched, []byte(rains), 0o644))

	// Only the .mrs file surfaces; the leading-dot-less extension is
	// normalized at construction.
	ev := waitEvent(t, w, watched)
	assert.Equal(t, corpus.OpCreate, ev.Operation)

	select {
	case ev, ok := <-w.Events():
		if ok {
			assert.NotEqual(t, ignored, ev.Path)
		}
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherStopClosesEvents(t *testing.T) {
	dir := t.TempDir()
	w, err := corpus.NewWatcher(dir, []string{".mrs"}, 50*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Stop())

	select {
	case _, ok := <-w.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed after Stop")
	}
}
