// Package id generates identifiers for sessions, entries and alignment runs.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the identifiers handed out by the API.
const (
	PrefixSession = "sess"
	PrefixEntry   = "ent"
)

// Generate creates a prefixed NanoID, e.g. "ent-V1StGXR8_Z5jdHi6B-myT".
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() (string, error) {
	return Generate(PrefixSession)
}

// NewEntryID returns a fresh transcript entry identifier.
func NewEntryID() (string, error) {
	return Generate(PrefixEntry)
}

// NewRunID returns a random UUID identifying one alignment run.
// Run IDs show up in SSE payloads and log lines next to each other.
func NewRunID() string {
	return uuid.NewString()
}
