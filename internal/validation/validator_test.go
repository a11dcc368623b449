package validation_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/aligner/internal/errors"
	"github.com/listenupapp/aligner/internal/validation"
)

type UploadRequest struct {
	Filename   string `json:"filename" validate:"required,max=255,filename"`
	Transcript string `json:"transcript" validate:"max=10000"`
	PhoneLimit int    `json:"phone_limit,omitempty" validate:"gte=0,lte=1000"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := UploadRequest{
		Filename:   "take1.wav",
		Transcript: "hello world",
		PhoneLimit: 10,
	}

	assert.NoError(t, v.Validate(req))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       UploadRequest
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing filename",
			req:       UploadRequest{Transcript: "hi"},
			wantField: "filename",
			wantMsg:   "is required",
		},
		{
			name:      "filename with directory",
			req:       UploadRequest{Filename: "../etc/passwd"},
			wantField: "filename",
			wantMsg:   "must be a plain file name without directories",
		},
		{
			name:      "filename with backslash",
			req:       UploadRequest{Filename: `dir\take.wav`},
			wantField: "filename",
			wantMsg:   "must be a plain file name without directories",
		},
		{
			name:      "dot-dot filename",
			req:       UploadRequest{Filename: ".."},
			wantField: "filename",
			wantMsg:   "must be a plain file name without directories",
		},
		{
			name:      "transcript too long",
			req:       UploadRequest{Filename: "a.wav", Transcript: strings.Repeat("x", 10001)},
			wantField: "transcript",
			wantMsg:   "must not exceed 10000 characters",
		},
		{
			name:      "negative phone limit",
			req:       UploadRequest{Filename: "a.wav", PhoneLimit: -1},
			wantField: "phone_limit",
			wantMsg:   "must be greater than or equal to 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(UploadRequest{})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	details := domainErr.Details.(map[string]string)

	// Keys use the JSON tag name, not the Go field name.
	assert.Contains(t, details, "filename")
	assert.NotContains(t, details, "Filename")
}

func TestValidator_Var(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Var("filename", "take1.wav", "required,filename"))

	err := v.Var("filename", "a/b.wav", "required,filename")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}
