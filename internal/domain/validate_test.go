package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/aligner/internal/errors"
)

func TestValidateAll(t *testing.T) {
	tests := []struct {
		name       string
		entries    []TranscriptEntry
		wantErr    error
		identifier string
	}{
		{
			name:    "no entries",
			entries: nil,
			wantErr: ErrNoEntries,
		},
		{
			name:    "empty slice",
			entries: []TranscriptEntry{},
			wantErr: ErrNoEntries,
		},
		{
			name: "all transcribed",
			entries: []TranscriptEntry{
				{Identifier: "a.wav", Transcript: "HELLO"},
				{Identifier: "b.wav", Transcript: "  world  "},
			},
		},
		{
			name: "empty transcript",
			entries: []TranscriptEntry{
				{Identifier: "a.wav", Transcript: "HELLO"},
				{Identifier: "b.wav", Transcript: ""},
			},
			wantErr:    ErrMissingTranscript,
			identifier: "b.wav",
		},
		{
			name: "whitespace only transcript",
			entries: []TranscriptEntry{
				{Identifier: "a.wav", Transcript: " \t\n "},
			},
			wantErr:    ErrMissingTranscript,
			identifier: "a.wav",
		},
		{
			name: "reports first failure",
			entries: []TranscriptEntry{
				{Identifier: "a.wav", Transcript: "ok"},
				{Identifier: "b.wav"},
				{Identifier: "c.wav"},
			},
			wantErr:    ErrMissingTranscript,
			identifier: "b.wav",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAll(tt.entries)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.identifier, vErr.Identifier)
		})
	}
}

func TestValidationError_Messages(t *testing.T) {
	assert.Equal(t, "Please upload at least one audio file", ValidateAll(nil).Error())

	err := ValidateAll([]TranscriptEntry{{Identifier: "speech.wav"}})
	assert.Equal(t, "Missing transcript for speech.wav", err.Error())
}

func TestValidationError_KindsDoNotCrossMatch(t *testing.T) {
	err := ValidateAll(nil)
	assert.NotErrorIs(t, err, ErrMissingTranscript)
}

func TestValidationError_DomainError(t *testing.T) {
	var vErr *ValidationError
	require.True(t, errors.As(ValidateAll([]TranscriptEntry{{Identifier: "x.wav"}}), &vErr))

	dErr := vErr.DomainError()
	assert.Equal(t, domainerrors.CodeMissingTranscript, dErr.Code)
	assert.Equal(t, "Missing transcript for x.wav", dErr.Message)
	assert.Equal(t, map[string]string{"identifier": "x.wav"}, dErr.Details)
	assert.Equal(t, 400, dErr.HTTPStatus())

	require.True(t, errors.As(ValidateAll(nil), &vErr))
	assert.Equal(t, domainerrors.CodeNoEntries, vErr.DomainError().Code)
}
