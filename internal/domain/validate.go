package domain

import (
	"fmt"

	domainerrors "github.com/listenupapp/aligner/internal/errors"
)

// ValidationKind distinguishes the two ways a batch can be rejected.
type ValidationKind string

const (
	// KindNoEntries means no audio files were supplied.
	KindNoEntries ValidationKind = "no_entries"
	// KindMissingTranscript means an entry has a blank transcript.
	KindMissingTranscript ValidationKind = "missing_transcript"
)

// ValidationError reports why a batch of entries cannot be aligned.
// Identifier is set for KindMissingTranscript only.
type ValidationError struct {
	Kind       ValidationKind
	Identifier string
}

// Sentinels for errors.Is; they match any ValidationError of the same kind.
var (
	ErrNoEntries         = &ValidationError{Kind: KindNoEntries}
	ErrMissingTranscript = &ValidationError{Kind: KindMissingTranscript}
)

// Error returns the message shown to the user.
func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindNoEntries:
		return "Please upload at least one audio file"
	case KindMissingTranscript:
		return fmt.Sprintf("Missing transcript for %s", e.Identifier)
	default:
		return "invalid alignment input"
	}
}

// Is matches on Kind so callers can test against the sentinels.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

// DomainError converts the validation failure into a coded API error.
func (e *ValidationError) DomainError() *domainerrors.Error {
	code := domainerrors.CodeNoEntries
	var details any
	if e.Kind == KindMissingTranscript {
		code = domainerrors.CodeMissingTranscript
		details = map[string]string{"identifier": e.Identifier}
	}
	return domainerrors.New(code, e.Error()).WithDetails(details)
}

// ValidateAll checks that alignment may run over entries. It fails with
// ErrNoEntries for an empty list, otherwise with a MissingTranscript error
// naming the first entry whose trimmed transcript is empty.
func ValidateAll(entries []TranscriptEntry) error {
	if len(entries) == 0 {
		return &ValidationError{Kind: KindNoEntries}
	}
	for i := range entries {
		if !entries[i].HasTranscript() {
			return &ValidationError{Kind: KindMissingTranscript, Identifier: entries[i].Identifier}
		}
	}
	return nil
}
