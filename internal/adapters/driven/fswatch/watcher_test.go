package fswatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T) (*Watcher, string) {
	t.Helper()

	root := t.TempDir()
	w, err := NewWatcher(root, 10*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })

	return w, root
}

func waitForTrigger(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Trigger():
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for trigger")
	}
}

func TestNewWatcher(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), time.Second)
	require.NoError(t, err)
	defer w.Stop()

	assert.False(t, w.IsRunning())
}

func TestWatcher_StartStop(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), time.Second)
	require.NoError(t, err)

	require.NoError(t, w.Start())
	assert.True(t, w.IsRunning())

	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())

	// Stopping twice is a no-op.
	assert.NoError(t, w.Stop())
}

func TestWatcher_DoubleStart(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), time.Second)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Start())
	assert.Error(t, w.Start())
}

func TestWatcher_TriggersOnMarkdownWrite(t *testing.T) {
	w, root := newTestWatcher(t)

	path := filepath.Join(root, "note.md")
	require.NoError(t, os.WriteFile(path, []byte("# Note"), 0644))

	waitForTrigger(t, w)
}

func TestWatcher_TriggersOnMarkdownRemove(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "note.md")
	require.NoError(t, os.WriteFile(path, []byte("# Note"), 0644))

	w, err := NewWatcher(root, 10*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })

	require.NoError(t, os.Remove(path))

	waitForTrigger(t, w)
}

func TestWatcher_IgnoresNonMarkdown(t *testing.T) {
	w, root := newTestWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(root, "data.txt"), []byte("x"), 0644))

	select {
	case <-w.Trigger():
		t.Fatal("non-markdown file should not trigger")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_WatchesCreatedSubdirectories(t *testing.T) {
	w, root := newTestWatcher(t)

	sub := filepath.Join(root, "nested")
	require.NoError(t, os.Mkdir(sub, 0755))

	// The directory registration races the following write; give the
	// event loop a moment to pick up the create event.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "note.md"), []byte("# Note"), 0644))

	waitForTrigger(t, w)
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	root := t.TempDir()
	w, err := NewWatcher(root, time.Minute)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })

	for i := 0; i < 5; i++ {
		path := filepath.Join(root, "note.md")
		require.NoError(t, os.WriteFile(path, []byte("# Note"), 0644))
	}

	waitForTrigger(t, w)

	// The burst collapses into a single trigger.
	select {
	case <-w.Trigger():
		t.Fatal("burst should produce one trigger within the interval")
	case <-time.After(200 * time.Millisecond):
	}
}
