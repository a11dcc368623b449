// Package domain defines the alignment data model: transcript entries, timed
// intervals, alignment results and the per-user session holding them.
package domain

import (
	"strings"
	"time"
)

// TranscriptEntry is one uploaded audio file and the transcript typed for it.
// Only the file name is used for alignment; the audio itself is never read.
type TranscriptEntry struct {
	ID          string    `json:"id"`
	Identifier  string    `json:"identifier"` // original file name
	Transcript  string    `json:"transcript"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size"`
	AddedAt     time.Time `json:"added_at"`
}

// NewTranscriptEntry creates an entry with an empty transcript.
func NewTranscriptEntry(id, identifier, contentType string, size int64) *TranscriptEntry {
	return &TranscriptEntry{
		ID:          id,
		Identifier:  identifier,
		ContentType: contentType,
		Size:        size,
		AddedAt:     time.Now(),
	}
}

// HasTranscript reports whether the entry carries non-blank transcript text.
func (e *TranscriptEntry) HasTranscript() bool {
	return strings.TrimSpace(e.Transcript) != ""
}
