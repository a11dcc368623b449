package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/listenupapp/aligner/internal/domain"
	"github.com/listenupapp/aligner/internal/format"
	"github.com/listenupapp/aligner/internal/id"
	"github.com/listenupapp/aligner/internal/logger"
)

// DefaultAudioExtensions are the audio files the inbox picks up.
var DefaultAudioExtensions = []string{".wav"}

// ErrTranscriptPending is returned by Process when the sidecar transcript
// has not arrived yet.
var ErrTranscriptPending = errors.New("transcript not present yet")

// Aligner produces an alignment for one entry.
type Aligner interface {
	Align(entry domain.TranscriptEntry) domain.AlignmentResult
}

// InboxConfig configures an Inbox.
type InboxConfig struct {
	InboxPath       string
	OutputPath      string
	AudioExtensions []string
}

// Inbox aligns audio files dropped into a directory once their sidecar
// transcript is present, writing the TextGrid and report to the output
// directory.
type Inbox struct {
	watcher *Watcher
	aligner Aligner
	cfg     InboxConfig
	logger  *logger.Logger
}

// NewInbox creates an inbox processor driven by w.
func NewInbox(w *Watcher, aligner Aligner, cfg InboxConfig, log *slog.Logger) *Inbox {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if len(cfg.AudioExtensions) == 0 {
		cfg.AudioExtensions = DefaultAudioExtensions
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = cfg.InboxPath
	}
	return &Inbox{
		watcher: w,
		aligner: aligner,
		cfg:     cfg,
		logger:  &logger.Logger{Logger: log.With("component", "inbox")},
	}
}

// Run processes pairs already in the inbox, then follows watcher events
// until ctx is cancelled.
func (i *Inbox) Run(ctx context.Context) error {
	if err := os.MkdirAll(i.cfg.OutputPath, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := i.watcher.Watch(i.cfg.InboxPath); err != nil {
		return err
	}

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- i.watcher.Start(ctx)
	}()

	i.logger.Info("Watching inbox",
		"inbox", i.cfg.InboxPath,
		"output", i.cfg.OutputPath)

	if err := i.ProcessExisting(); err != nil {
		i.logger.WithError(err).Warn("Initial inbox scan failed")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-watchErr:
			return err
		case err := <-i.watcher.Errors():
			i.logger.WithError(err).Warn("Inbox watcher error")
		case event := <-i.watcher.Events():
			i.handleEvent(event)
		}
	}
}

func (i *Inbox) handleEvent(event Event) {
	if event.Type == EventRemoved {
		return
	}

	audioPath, ok := i.audioFor(event.Path)
	if !ok {
		return
	}

	if _, err := i.Process(audioPath); err != nil && !errors.Is(err, ErrTranscriptPending) {
		i.logger.WithError(err).Warn("Inbox file not aligned", "file", filepath.Base(audioPath))
	}
}

// ProcessExisting aligns every complete pair currently in the inbox.
func (i *Inbox) ProcessExisting() error {
	entries, err := os.ReadDir(i.cfg.InboxPath)
	if err != nil {
		return fmt.Errorf("read inbox: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || !i.isAudio(e.Name()) {
			continue
		}
		path := filepath.Join(i.cfg.InboxPath, e.Name())
		if _, err := i.Process(path); err != nil && !errors.Is(err, ErrTranscriptPending) {
			i.logger.WithError(err).Warn("Inbox file not aligned", "file", e.Name())
		}
	}
	return nil
}

// Process aligns one audio file with its sidecar transcript and writes
// the documents. A blank transcript is rejected with the same validation
// error a session run reports.
func (i *Inbox) Process(audioPath string) (*format.Written, error) {
	text, err := os.ReadFile(format.SidecarTranscriptPath(audioPath))
	if errors.Is(err, fs.ErrNotExist) {
		i.logger.Debug("Waiting for transcript", "file", filepath.Base(audioPath))
		return nil, ErrTranscriptPending
	}
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, fmt.Errorf("stat audio: %w", err)
	}

	entryID, err := id.NewEntryID()
	if err != nil {
		return nil, fmt.Errorf("generate entry ID: %w", err)
	}
	entry := domain.NewTranscriptEntry(entryID, filepath.Base(audioPath), "", info.Size())
	entry.Transcript = string(text)

	if err := domain.ValidateAll([]domain.TranscriptEntry{*entry}); err != nil {
		return nil, err
	}

	result := i.aligner.Align(*entry)

	written, err := format.WriteFiles(i.cfg.OutputPath, &result)
	if err != nil {
		return nil, err
	}

	i.logger.Info("Inbox file aligned",
		"file", entry.Identifier,
		"words", result.WordCount(),
		"phones", result.PhoneCount(),
		"textgrid", written.TextGridPath,
		"report", written.ReportPath)
	return written, nil
}

// audioFor maps a settled path to the audio file it completes: the audio
// file itself, or the audio file next to a sidecar transcript.
func (i *Inbox) audioFor(path string) (string, bool) {
	if filepath.Dir(path) != filepath.Clean(i.cfg.InboxPath) {
		return "", false
	}

	if i.isAudio(path) {
		return path, true
	}

	base := filepath.Base(path)
	if !strings.EqualFold(filepath.Ext(base), format.TranscriptExt) || strings.HasSuffix(base, format.ReportSuffix) {
		return "", false
	}

	stem := strings.TrimSuffix(path, filepath.Ext(path))
	for _, ext := range i.cfg.AudioExtensions {
		for _, candidate := range []string{stem + ext, stem + strings.ToUpper(ext)} {
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true
			}
		}
	}
	return "", false
}

func (i *Inbox) isAudio(path string) bool {
	return slices.Contains(i.cfg.AudioExtensions, strings.ToLower(filepath.Ext(path)))
}
