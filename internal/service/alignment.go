package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/listenupapp/aligner/internal/domain"
	domainerrors "github.com/listenupapp/aligner/internal/errors"
	"github.com/listenupapp/aligner/internal/id"
	"github.com/listenupapp/aligner/internal/logger"
	"github.com/listenupapp/aligner/internal/sse"
	"github.com/listenupapp/aligner/internal/store"
)

// Aligner produces timings for one entry.
type Aligner interface {
	Align(entry domain.TranscriptEntry) domain.AlignmentResult
}

// EventEmitter broadcasts run progress.
type EventEmitter interface {
	Emit(event sse.Event)
}

// NoopEmitter discards events.
type NoopEmitter struct{}

// Emit implements EventEmitter as a no-op.
func (NoopEmitter) Emit(sse.Event) {}

// AlignmentService runs alignment over a session's entries.
type AlignmentService struct {
	store   *store.Store
	aligner Aligner
	emitter EventEmitter
	logger  *slog.Logger
	delay   time.Duration

	mu      sync.Mutex
	running map[string]string // session ID -> run ID
}

// NewAlignmentService creates an alignment service. delay is waited before
// each entry to simulate processing time; zero disables it.
func NewAlignmentService(store *store.Store, aligner Aligner, emitter EventEmitter, logger *slog.Logger, delay time.Duration) *AlignmentService {
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	return &AlignmentService{
		store:   store,
		aligner: aligner,
		emitter: emitter,
		logger:  logger,
		delay:   delay,
		running: make(map[string]string),
	}
}

// IsRunning reports whether a run is in flight for the session.
func (s *AlignmentService) IsRunning(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.running[sessionID]
	return ok
}

// Run aligns every entry of the session.
//
// Previous results are cleared first. The batch is validated before any
// entry is aligned; on a validation failure or cancellation the session
// ends failed with no results. Results are stored together once all
// entries are aligned.
func (s *AlignmentService) Run(ctx context.Context, sessionID string) (*domain.Session, error) {
	runID, err := s.Reserve(sessionID)
	if err != nil {
		return nil, err
	}
	return s.Execute(ctx, sessionID, runID)
}

// Reserve claims the session's run slot and returns the ID of the run that
// will hold it. It fails with Conflict when a run is already in flight.
// The caller must pass the run ID to Execute, which releases the slot.
func (s *AlignmentService) Reserve(sessionID string) (string, error) {
	runID := id.NewRunID()
	if !s.acquire(sessionID, runID) {
		return "", domainerrors.Conflict("alignment already running for this session")
	}
	return runID, nil
}

// Execute performs a run reserved with Reserve and releases the slot.
func (s *AlignmentService) Execute(ctx context.Context, sessionID, runID string) (*domain.Session, error) {
	if !s.holds(sessionID, runID) {
		return nil, domainerrors.Conflict("alignment run does not hold the session")
	}
	defer s.release(sessionID)

	log := s.runLogger(sessionID, runID)

	session, err := s.store.UpdateSession(ctx, sessionID, func(session *domain.Session) error {
		if session.IsProcessing() {
			return domainerrors.Conflict("alignment already running for this session")
		}
		session.BeginRun(runID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateAll(session.Entries); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return nil, s.fail(ctx, sessionID, runID, ve.DomainError(), log)
		}
		return nil, s.fail(ctx, sessionID, runID, domainerrors.Wrap(err, domainerrors.CodeInternal, "validate entries"), log)
	}

	total := len(session.Entries)
	start := time.Now()
	log.Info("Alignment started", "entries", total)
	s.emitter.Emit(sse.NewAlignmentStartedEvent(sessionID, runID, total))

	results := make([]domain.AlignmentResult, 0, total)
	for i, entry := range session.Entries {
		if err := s.wait(ctx); err != nil {
			return nil, s.fail(ctx, sessionID, runID,
				domainerrors.Wrap(err, domainerrors.CodeInternal, "alignment cancelled"), log)
		}

		results = append(results, s.aligner.Align(entry))
		s.emitter.Emit(sse.NewAlignmentProgressEvent(sessionID, runID, entry.ID, entry.Identifier, i+1, total))
	}

	session, err = s.store.UpdateSession(ctx, sessionID, func(session *domain.Session) error {
		session.CompleteRun(results)
		return nil
	})
	if err != nil {
		log.Error("Failed to store alignment results", "error", err)
		return nil, err
	}

	elapsed := time.Since(start)
	log.Info("Alignment completed", "entries", total, "elapsed", elapsed)
	s.emitter.Emit(sse.NewAlignmentCompletedEvent(sessionID, runID, len(results), elapsed))

	return session, nil
}

// fail records a failed run and returns cause.
func (s *AlignmentService) fail(ctx context.Context, sessionID, runID string, cause *domainerrors.Error, log *slog.Logger) error {
	// Store the failure even when ctx has been cancelled.
	_, err := s.store.UpdateSession(context.WithoutCancel(ctx), sessionID, func(session *domain.Session) error {
		session.FailRun(cause)
		return nil
	})
	if err != nil {
		log.Error("Failed to record failed run", "error", err)
	}

	log.Warn("Alignment failed", "code", string(cause.Code), "error", cause.Error())
	s.emitter.Emit(sse.NewAlignmentFailedEvent(sessionID, runID, string(cause.Code), cause.Message))
	return cause
}

// wait sleeps for the configured delay or until ctx is done.
func (s *AlignmentService) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AlignmentService) acquire(sessionID, runID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.running[sessionID]; busy {
		return false
	}
	s.running[sessionID] = runID
	return true
}

func (s *AlignmentService) holds(sessionID, runID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running[sessionID] == runID
}

// guardRunID marks a slot held by Guard; run IDs are UUIDs and never match it.
const guardRunID = "guard"

// Guard runs fn while holding the session's run slot, so no run can start
// until fn returns. It fails with Conflict when a run is in flight.
func (s *AlignmentService) Guard(sessionID string, fn func() error) error {
	if !s.acquire(sessionID, guardRunID) {
		return domainerrors.Conflict("alignment is running for this session")
	}
	defer s.release(sessionID)
	return fn()
}

func (s *AlignmentService) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, sessionID)
}

func (s *AlignmentService) runLogger(sessionID, runID string) *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	log := &logger.Logger{Logger: s.logger}
	return log.WithSession(sessionID).WithField("run_id", runID).Logger
}
