package store

import (
	domainerrors "github.com/listenupapp/aligner/internal/errors"
)

// Sentinel errors.
var (
	ErrSessionNotFound = domainerrors.NotFound("session not found")
	ErrAlreadyExists   = domainerrors.Conflict("session already exists")
)
