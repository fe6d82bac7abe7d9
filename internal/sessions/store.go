// Package sessions keeps game sessions in the embedded KV store. Every save
// refreshes the idle timeout, so abandoned games disappear on their own.
package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/maxwell142857/cs5500-group6/internal/game"
	"github.com/maxwell142857/cs5500-group6/internal/kv"
)

const keyPrefix = "session:"

// DefaultTimeout is the idle lifetime of a session.
const DefaultTimeout = time.Hour

// Store implements game.SessionRepository.
type Store struct {
	kv      *kv.Store
	timeout time.Duration
}

// NewStore creates a session store. A non-positive timeout uses
// DefaultTimeout.
func NewStore(s *kv.Store, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{kv: s, timeout: timeout}
}

func key(id string) string { return keyPrefix + id }

// Load returns game.ErrSessionNotFound for unknown or expired ids.
func (s *Store) Load(ctx context.Context, id string) (*game.Session, error) {
	if id == "" {
		return nil, game.ErrSessionNotFound
	}
	data, err := s.kv.Get(key(id))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, game.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	var sess game.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return &sess, nil
}

// Save writes sess and restarts its idle timeout.
func (s *Store) Save(ctx context.Context, sess *game.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", sess.ID, err)
	}
	if err := s.kv.Set(key(sess.ID), data, s.timeout); err != nil {
		return fmt.Errorf("saving session %s: %w", sess.ID, err)
	}
	return nil
}

// Expire removes a session immediately.
func (s *Store) Expire(ctx context.Context, id string) error {
	return s.kv.Delete(key(id))
}

// Count returns the number of live sessions, completed ones included.
func (s *Store) Count() (int, error) {
	keys, err := s.kv.Keys(keyPrefix)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
