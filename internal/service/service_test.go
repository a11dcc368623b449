package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/listenupapp/aligner/internal/aligner"
	"github.com/listenupapp/aligner/internal/domain"
	"github.com/listenupapp/aligner/internal/sse"
	"github.com/listenupapp/aligner/internal/store"
	"github.com/listenupapp/aligner/internal/validation"
)

// recordingEmitter keeps every emitted event.
type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(e sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sse.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// countingAligner wraps a seeded aligner and counts calls.
type countingAligner struct {
	mu    sync.Mutex
	calls int
	inner *aligner.Aligner
}

func (c *countingAligner) Align(entry domain.TranscriptEntry) domain.AlignmentResult {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.inner.Align(entry)
}

func (c *countingAligner) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type testServices struct {
	store     *store.Store
	sessions  *SessionService
	alignment *AlignmentService
	aligner   *countingAligner
	events    *recordingEmitter
}

func setupTestServices(t *testing.T, delay time.Duration) (*testServices, func()) {
	t.Helper()

	s, err := store.New(nil, time.Hour)
	require.NoError(t, err)

	al := &countingAligner{inner: aligner.NewSeeded(1)}
	events := &recordingEmitter{}

	svc := &testServices{
		store:     s,
		sessions:  NewSessionService(s, validation.New(), nil),
		alignment: NewAlignmentService(s, al, events, nil, delay),
		aligner:   al,
		events:    events,
	}

	cleanup := func() {
		_ = s.Close()
	}
	return svc, cleanup
}

// createSessionWithEntries creates a session holding one entry per
// filename → transcript pair, in the order given.
func createSessionWithEntries(t *testing.T, svc *testServices, pairs ...[2]string) (*domain.Session, []*domain.TranscriptEntry) {
	t.Helper()
	ctx := context.Background()

	session, err := svc.sessions.CreateSession(ctx)
	require.NoError(t, err)

	entries := make([]*domain.TranscriptEntry, 0, len(pairs))
	for _, p := range pairs {
		entry, err := svc.sessions.AddEntry(ctx, session.ID, AddEntryRequest{Filename: p[0], ContentType: "audio/wav", Size: 44})
		require.NoError(t, err)
		if p[1] != "" {
			entry, err = svc.sessions.SetTranscript(ctx, session.ID, entry.ID, SetTranscriptRequest{Transcript: p[1]})
			require.NoError(t, err)
		}
		entries = append(entries, entry)
	}
	return session, entries
}
