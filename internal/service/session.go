// Package service implements the session workflow: collecting audio entries
// and transcripts, running alignment and rendering downloadable documents.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/listenupapp/aligner/internal/domain"
	domainerrors "github.com/listenupapp/aligner/internal/errors"
	"github.com/listenupapp/aligner/internal/format"
	"github.com/listenupapp/aligner/internal/id"
	"github.com/listenupapp/aligner/internal/store"
	"github.com/listenupapp/aligner/internal/validation"
)

// AddEntryRequest describes an uploaded audio file.
type AddEntryRequest struct {
	Filename    string `json:"filename" validate:"required,max=255,filename"`
	ContentType string `json:"content_type" validate:"max=255"`
	Size        int64  `json:"size" validate:"gte=0"`
}

// SetTranscriptRequest replaces an entry's transcript. Blank text is
// accepted here and rejected only when a run starts.
type SetTranscriptRequest struct {
	Transcript string `json:"transcript" validate:"max=100000"`
}

// Document is a rendered download.
type Document struct {
	Name        string
	ContentType string
	Body        string
}

// SessionService manages sessions and their entries.
type SessionService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(store *store.Store, validator *validation.Validator, logger *slog.Logger) *SessionService {
	return &SessionService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// CreateSession starts an empty session.
func (s *SessionService) CreateSession(ctx context.Context) (*domain.Session, error) {
	sessionID, err := id.NewSessionID()
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	session := domain.NewSession(sessionID, s.store.TTL())
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Session created", "session_id", sessionID)
	}
	return session, nil
}

// GetSession returns a session by ID.
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.store.GetSession(ctx, sessionID)
}

// CheckSession returns an error when the session does not exist.
func (s *SessionService) CheckSession(ctx context.Context, sessionID string) error {
	_, err := s.store.GetSession(ctx, sessionID)
	return err
}

// DeleteSession discards a session with all of its entries and results.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Info("Session deleted", "session_id", sessionID)
	}
	return nil
}

// AddEntry registers an uploaded audio file with an empty transcript.
func (s *SessionService) AddEntry(ctx context.Context, sessionID string, req AddEntryRequest) (*domain.TranscriptEntry, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	entryID, err := id.NewEntryID()
	if err != nil {
		return nil, fmt.Errorf("generate entry ID: %w", err)
	}
	entry := domain.NewTranscriptEntry(entryID, req.Filename, req.ContentType, req.Size)

	_, err = s.store.UpdateSession(ctx, sessionID, func(session *domain.Session) error {
		if err := ensureIdle(session); err != nil {
			return err
		}
		session.AddEntry(*entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Debug("Entry added",
			"session_id", sessionID,
			"entry_id", entryID,
			"identifier", req.Filename,
			"size", req.Size)
	}
	return entry, nil
}

// SetTranscript replaces the transcript of an entry.
func (s *SessionService) SetTranscript(ctx context.Context, sessionID, entryID string, req SetTranscriptRequest) (*domain.TranscriptEntry, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var updated domain.TranscriptEntry
	_, err := s.store.UpdateSession(ctx, sessionID, func(session *domain.Session) error {
		if err := ensureIdle(session); err != nil {
			return err
		}
		if !session.SetTranscript(entryID, req.Transcript) {
			return domainerrors.NotFoundf("entry %s not found", entryID)
		}
		entry, _ := session.Entry(entryID)
		updated = *entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// RemoveEntry deletes an entry from the session.
func (s *SessionService) RemoveEntry(ctx context.Context, sessionID, entryID string) error {
	_, err := s.store.UpdateSession(ctx, sessionID, func(session *domain.Session) error {
		if err := ensureIdle(session); err != nil {
			return err
		}
		if !session.RemoveEntry(entryID) {
			return domainerrors.NotFoundf("entry %s not found", entryID)
		}
		return nil
	})
	return err
}

// ListEntries returns the session's entries in upload order.
func (s *SessionService) ListEntries(ctx context.Context, sessionID string) ([]domain.TranscriptEntry, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Entries, nil
}

// Results returns the results of the last completed run, in entry order.
func (s *SessionService) Results(ctx context.Context, sessionID string) ([]domain.AlignmentResult, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Results, nil
}

// Result returns the result for one entry.
func (s *SessionService) Result(ctx context.Context, sessionID, entryID string) (*domain.AlignmentResult, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result, ok := session.Result(entryID)
	if !ok {
		if _, exists := session.Entry(entryID); !exists {
			return nil, domainerrors.NotFoundf("entry %s not found", entryID)
		}
		return nil, domainerrors.NotFoundf("no alignment result for entry %s", entryID)
	}
	return result, nil
}

// TextGrid renders the TextGrid download for an entry.
func (s *SessionService) TextGrid(ctx context.Context, sessionID, entryID string) (*Document, error) {
	result, err := s.Result(ctx, sessionID, entryID)
	if err != nil {
		return nil, err
	}
	return &Document{
		Name:        format.TextGridName(result.Identifier),
		ContentType: format.TextGridContentType,
		Body:        format.TextGrid(result),
	}, nil
}

// Report renders the plaintext report download for an entry.
func (s *SessionService) Report(ctx context.Context, sessionID, entryID string) (*Document, error) {
	result, err := s.Result(ctx, sessionID, entryID)
	if err != nil {
		return nil, err
	}
	return &Document{
		Name:        format.ReportName(result.Identifier),
		ContentType: format.ReportContentType,
		Body:        format.Report(result),
	}, nil
}

// ensureIdle rejects entry changes while a run is reading them.
func ensureIdle(session *domain.Session) error {
	if session.IsProcessing() {
		return domainerrors.Conflict("alignment is running; entries cannot change until it finishes")
	}
	return nil
}
