package domain

import (
	"slices"
	"time"
)

// SessionStatus tracks where a session is in the upload → align cycle.
type SessionStatus string

const (
	// SessionIdle means entries are being collected; no current results.
	SessionIdle SessionStatus = "idle"
	// SessionProcessing means an alignment run is in flight.
	SessionProcessing SessionStatus = "processing"
	// SessionCompleted means Results belong to the current entries.
	SessionCompleted SessionStatus = "completed"
	// SessionFailed means the last run was rejected or cancelled; see LastError.
	SessionFailed SessionStatus = "failed"
)

// Session is the state of one user's alignment workspace: the uploaded
// entries, the results of the latest run and its outcome.
type Session struct {
	ID        string            `json:"id"`
	Status    SessionStatus     `json:"status"`
	Entries   []TranscriptEntry `json:"entries"`
	Results   []AlignmentResult `json:"results,omitempty"`
	LastRunID string            `json:"last_run_id,omitempty"`
	LastError string            `json:"last_error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// NewSession creates an idle session that expires after ttl.
func NewSession(id string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Status:    SessionIdle,
		Entries:   []TranscriptEntry{},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsProcessing reports whether a run is in flight.
func (s *Session) IsProcessing() bool {
	return s.Status == SessionProcessing
}

// AddEntry appends an entry and invalidates previous results.
func (s *Session) AddEntry(entry TranscriptEntry) {
	s.Entries = append(s.Entries, entry)
	s.invalidate()
}

// Entry returns the entry with the given ID.
func (s *Session) Entry(entryID string) (*TranscriptEntry, bool) {
	i := s.indexOf(entryID)
	if i < 0 {
		return nil, false
	}
	return &s.Entries[i], true
}

// SetTranscript replaces the transcript of an entry in place.
// Returns false if the entry does not exist.
func (s *Session) SetTranscript(entryID, text string) bool {
	i := s.indexOf(entryID)
	if i < 0 {
		return false
	}
	s.Entries[i].Transcript = text
	s.invalidate()
	return true
}

// RemoveEntry deletes an entry. Returns false if it does not exist.
func (s *Session) RemoveEntry(entryID string) bool {
	i := s.indexOf(entryID)
	if i < 0 {
		return false
	}
	s.Entries = slices.Delete(s.Entries, i, i+1)
	s.invalidate()
	return true
}

// Result returns the result produced for an entry by the last run.
func (s *Session) Result(entryID string) (*AlignmentResult, bool) {
	for i := range s.Results {
		if s.Results[i].EntryID == entryID {
			return &s.Results[i], true
		}
	}
	return nil, false
}

// BeginRun clears previous results and marks the session as processing.
func (s *Session) BeginRun(runID string) {
	s.Results = nil
	s.LastError = ""
	s.LastRunID = runID
	s.Status = SessionProcessing
	s.touch()
}

// CompleteRun stores the results of a run in one step.
func (s *Session) CompleteRun(results []AlignmentResult) {
	s.Results = results
	s.LastError = ""
	s.Status = SessionCompleted
	s.touch()
}

// FailRun records a rejected or cancelled run. No results are kept.
func (s *Session) FailRun(err error) {
	s.Results = nil
	s.LastError = err.Error()
	s.Status = SessionFailed
	s.touch()
}

func (s *Session) indexOf(entryID string) int {
	return slices.IndexFunc(s.Entries, func(e TranscriptEntry) bool {
		return e.ID == entryID
	})
}

// invalidate drops results that no longer match the entries.
func (s *Session) invalidate() {
	if s.Status != SessionProcessing {
		s.Results = nil
		s.LastError = ""
		s.Status = SessionIdle
	}
	s.touch()
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}
