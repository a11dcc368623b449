package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/aligner/internal/aligner"
	"github.com/listenupapp/aligner/internal/config"
	"github.com/listenupapp/aligner/internal/format"
	"github.com/listenupapp/aligner/internal/logger"
	"github.com/listenupapp/aligner/internal/watcher"
)

// InboxWatcherHandle wraps the inbox watcher with shutdown capability.
// Watcher is nil when watching is disabled.
type InboxWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *InboxWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	<-h.done
	return h.Watcher.Stop()
}

// ProvideInboxWatcher provides the inbox watcher that aligns audio files
// dropped next to a transcript.
func ProvideInboxWatcher(i do.Injector) (*InboxWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Watch.Enabled {
		log.Info("Inbox watcher disabled by configuration")
		return &InboxWatcherHandle{}, nil
	}

	a := do.MustInvoke[*aligner.Aligner](i)

	extensions := append([]string{format.TranscriptExt}, watcher.DefaultAudioExtensions...)
	w, err := watcher.New(log.Logger, watcher.Options{
		Extensions:   extensions,
		SettleDelay:  cfg.Watch.SettleDelay,
		IgnoreHidden: true,
	})
	if err != nil {
		return nil, err
	}

	inbox := watcher.NewInbox(w, a, watcher.InboxConfig{
		InboxPath:  cfg.Watch.InboxPath,
		OutputPath: cfg.Watch.OutputPath,
	}, log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := inbox.Run(ctx); err != nil {
			log.Error("Inbox watcher error", "error", err)
		}
	}()

	log.Info("Inbox watcher started",
		"inbox", cfg.Watch.InboxPath,
		"output", cfg.Watch.OutputPath,
	)

	return &InboxWatcherHandle{
		Watcher: w,
		cancel:  cancel,
		done:    done,
	}, nil
}
