package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// startWatcher watches dir and runs the watcher until the test ends.
func startWatcher(t *testing.T, dir string, opts Options) *Watcher {
	t.Helper()

	w, err := New(testLogger(), opts)
	require.NoError(t, err)
	require.NoError(t, w.Watch(dir))

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx) //nolint:errcheck // Test goroutine

	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	return w
}

func nextEvent(t *testing.T, w *Watcher, timeout time.Duration) Event {
	t.Helper()

	select {
	case event := <-w.Events():
		return event
	case err := <-w.Errors():
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(timeout):
		t.Fatal("timeout waiting for event")
	}
	return Event{}
}

func TestNew(t *testing.T) {
	w, err := New(testLogger(), Options{})
	require.NoError(t, err)
	require.NotNil(t, w)

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop(), "Stop is idempotent")
}

func TestWatcher_WatchRejectsFiles(t *testing.T) {
	w, err := New(testLogger(), Options{})
	require.NoError(t, err)
	defer w.Stop() //nolint:errcheck // Test cleanup

	file := filepath.Join(t.TempDir(), "take1.wav")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.Error(t, w.Watch(file))
	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "missing")))
}

func TestWatcher_FileCreation(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{SettleDelay: 50 * time.Millisecond})

	testFile := filepath.Join(dir, "take1.wav")
	require.NoError(t, os.WriteFile(testFile, []byte("RIFF audio bytes"), 0o644))

	event := nextEvent(t, w, time.Second)
	assert.Equal(t, EventAdded, event.Type)
	assert.Equal(t, testFile, event.Path)
	assert.Equal(t, int64(16), event.Size)
}

func TestWatcher_ModifiedAfterSettling(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{SettleDelay: 50 * time.Millisecond})

	testFile := filepath.Join(dir, "take1.txt")
	require.NoError(t, os.WriteFile(testFile, []byte("hello"), 0o644))
	assert.Equal(t, EventAdded, nextEvent(t, w, time.Second).Type)

	require.NoError(t, os.WriteFile(testFile, []byte("hello world"), 0o644))
	event := nextEvent(t, w, time.Second)
	assert.Equal(t, EventModified, event.Type)
	assert.Equal(t, int64(11), event.Size)
}

func TestWatcher_FileDeletion(t *testing.T) {
	dir := t.TempDir()
	testFile := filepath.Join(dir, "take1.wav")
	require.NoError(t, os.WriteFile(testFile, []byte("content"), 0o644))

	w := startWatcher(t, dir, Options{})

	require.NoError(t, os.Remove(testFile))

	event := nextEvent(t, w, 500*time.Millisecond)
	assert.Equal(t, EventRemoved, event.Type)
	assert.Equal(t, testFile, event.Path)
}

func TestWatcher_IgnoreHidden(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{IgnoreHidden: true, SettleDelay: 50 * time.Millisecond})

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("secret"), 0o644))
	normalFile := filepath.Join(dir, "normal.txt")
	require.NoError(t, os.WriteFile(normalFile, []byte("content"), 0o644))

	assert.Equal(t, normalFile, nextEvent(t, w, 500*time.Millisecond).Path)

	select {
	case event := <-w.Events():
		t.Fatalf("unexpected event for hidden file: %+v", event)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_ExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{
		Extensions:  []string{".wav"},
		SettleDelay: 50 * time.Millisecond,
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("skip"), 0o644))
	audio := filepath.Join(dir, "take1.wav")
	require.NoError(t, os.WriteFile(audio, []byte("RIFF"), 0o644))

	assert.Equal(t, audio, nextEvent(t, w, time.Second).Path)
}
