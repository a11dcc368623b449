package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/aligner/internal/domain"
)

const sessionPrefix = "session:"

func sessionKey(id string) []byte {
	return []byte(sessionPrefix + id)
}

// CreateSession stores a new session.
func (s *Store) CreateSession(_ context.Context, session *domain.Session) error {
	key := sessionKey(session.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check session exists: %w", err)
	}
	if exists {
		return ErrAlreadyExists
	}

	session.ExpiresAt = time.Now().Add(s.ttl)
	return s.update(func(txn *badger.Txn) error {
		return setWithTTL(txn, key, session, s.ttl)
	})
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(_ context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	if err := s.get(sessionKey(id), &session); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

// UpdateSession loads a session, applies fn and writes it back in a single
// transaction. An error from fn aborts the write and is returned unchanged.
// The session's expiry is pushed out by the store TTL.
func (s *Store) UpdateSession(_ context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error) {
	key := sessionKey(id)
	var updated *domain.Session

	err := s.update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrSessionNotFound
			}
			return err
		}

		var session domain.Session
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		}); err != nil {
			return fmt.Errorf("unmarshal session: %w", err)
		}

		if err := fn(&session); err != nil {
			return err
		}

		session.ExpiresAt = time.Now().Add(s.ttl)
		if err := setWithTTL(txn, key, &session, s.ttl); err != nil {
			return err
		}
		updated = &session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSession removes a session.
func (s *Store) DeleteSession(_ context.Context, id string) error {
	key := sessionKey(id)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check session exists: %w", err)
	}
	if !exists {
		return ErrSessionNotFound
	}
	return s.delete(key)
}

// CountSessions returns the number of live sessions.
func (s *Store) CountSessions(_ context.Context) (int, error) {
	return s.countPrefix([]byte(sessionPrefix))
}
