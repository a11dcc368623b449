package watcher

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/aligner/internal/aligner"
	"github.com/listenupapp/aligner/internal/domain"
)

func newTestInbox(t *testing.T, inbox, output string) *Inbox {
	t.Helper()

	w, err := New(testLogger(), Options{
		Extensions:  []string{".wav", ".txt"},
		SettleDelay: 30 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	return NewInbox(w, aligner.NewSeeded(7), InboxConfig{
		InboxPath:  inbox,
		OutputPath: output,
	}, testLogger())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestInbox_Process(t *testing.T) {
	inbox := t.TempDir()
	output := filepath.Join(t.TempDir(), "aligned")
	in := newTestInbox(t, inbox, output)

	writeFile(t, filepath.Join(inbox, "take1.wav"), "RIFF")
	writeFile(t, filepath.Join(inbox, "take1.txt"), "hello world\n")

	require.NoError(t, os.MkdirAll(output, 0o755))
	written, err := in.Process(filepath.Join(inbox, "take1.wav"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(output, "take1.TextGrid"), written.TextGridPath)
	assert.Equal(t, filepath.Join(output, "take1_report.txt"), written.ReportPath)

	tg, err := os.ReadFile(written.TextGridPath)
	require.NoError(t, err)
	assert.Contains(t, string(tg), `text = "HELLO"`)
	assert.Contains(t, string(tg), `text = "WORLD"`)

	report, err := os.ReadFile(written.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "File: take1.wav\n")
	assert.Contains(t, string(report), "Word Count: 2\n")
}

func TestInbox_Process_TranscriptPending(t *testing.T) {
	inbox := t.TempDir()
	in := newTestInbox(t, inbox, t.TempDir())

	writeFile(t, filepath.Join(inbox, "take1.wav"), "RIFF")

	_, err := in.Process(filepath.Join(inbox, "take1.wav"))
	assert.ErrorIs(t, err, ErrTranscriptPending)
}

func TestInbox_Process_BlankTranscript(t *testing.T) {
	inbox := t.TempDir()
	output := t.TempDir()
	in := newTestInbox(t, inbox, output)

	writeFile(t, filepath.Join(inbox, "take1.wav"), "RIFF")
	writeFile(t, filepath.Join(inbox, "take1.txt"), "  \n\t")

	_, err := in.Process(filepath.Join(inbox, "take1.wav"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingTranscript))
	assert.Equal(t, "Missing transcript for take1.wav", err.Error())

	entries, err := os.ReadDir(output)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInbox_ProcessExisting_LogsRejectedFiles(t *testing.T) {
	inbox := t.TempDir()
	output := t.TempDir()

	w, err := New(testLogger(), Options{Extensions: []string{".wav", ".txt"}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	var buf bytes.Buffer
	in := NewInbox(w, aligner.NewSeeded(7), InboxConfig{
		InboxPath:  inbox,
		OutputPath: output,
	}, slog.New(slog.NewJSONHandler(&buf, nil)))

	writeFile(t, filepath.Join(inbox, "blank.wav"), "RIFF")
	writeFile(t, filepath.Join(inbox, "blank.txt"), " ")
	writeFile(t, filepath.Join(inbox, "good.wav"), "RIFF")
	writeFile(t, filepath.Join(inbox, "good.txt"), "hello")
	writeFile(t, filepath.Join(inbox, "pending.wav"), "RIFF")

	require.NoError(t, in.ProcessExisting())

	assert.FileExists(t, filepath.Join(output, "good.TextGrid"))
	assert.NoFileExists(t, filepath.Join(output, "blank.TextGrid"))

	logs := buf.String()
	assert.Contains(t, logs, `"error":"Missing transcript for blank.wav"`)
	assert.Contains(t, logs, `"component":"inbox"`)
	assert.NotContains(t, logs, "pending.wav")
}

func TestInbox_AudioFor(t *testing.T) {
	inbox := t.TempDir()
	in := newTestInbox(t, inbox, filepath.Join(inbox, "aligned"))

	writeFile(t, filepath.Join(inbox, "take1.wav"), "RIFF")
	writeFile(t, filepath.Join(inbox, "loud.WAV"), "RIFF")

	tests := []struct {
		name string
		path string
		want string
		ok   bool
	}{
		{"audio itself", filepath.Join(inbox, "take1.wav"), filepath.Join(inbox, "take1.wav"), true},
		{"sidecar", filepath.Join(inbox, "take1.txt"), filepath.Join(inbox, "take1.wav"), true},
		{"sidecar of upper case audio", filepath.Join(inbox, "loud.txt"), filepath.Join(inbox, "loud.WAV"), true},
		{"orphan transcript", filepath.Join(inbox, "other.txt"), "", false},
		{"report output", filepath.Join(inbox, "take1_report.txt"), "", false},
		{"outside inbox", filepath.Join(inbox, "aligned", "take1.wav"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := in.audioFor(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInbox_Run(t *testing.T) {
	inbox := t.TempDir()
	output := filepath.Join(inbox, "aligned")
	in := newTestInbox(t, inbox, output)

	// A pair already present is handled by the initial scan.
	writeFile(t, filepath.Join(inbox, "early.wav"), "RIFF")
	writeFile(t, filepath.Join(inbox, "early.txt"), "good morning")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- in.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(output, "early.TextGrid"))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	// Audio first, transcript later: aligned once the transcript settles.
	writeFile(t, filepath.Join(inbox, "late.wav"), "RIFF")
	time.Sleep(100 * time.Millisecond)
	_, err := os.Stat(filepath.Join(output, "late.TextGrid"))
	assert.True(t, os.IsNotExist(err))

	writeFile(t, filepath.Join(inbox, "late.txt"), "see you later")

	require.Eventually(t, func() bool {
		report, err := os.ReadFile(filepath.Join(output, "late_report.txt"))
		return err == nil && strings.Contains(string(report), "Transcript: see you later\n")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("inbox did not stop")
	}
}
